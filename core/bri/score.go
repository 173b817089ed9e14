package bri

import (
	"math"
	"sort"
)

// ComputeScore combines the four component ratios under cfg into a single BRI
// value in [0,1], rounded to 2 decimal places, along with each component's
// weighted risk contribution in fixed priority order.
//
// cfg must already satisfy the sum-to-1 invariant; it is enforced at config
// write time, not re-validated here. A raw sum outside [0,1] therefore points
// at a configuration validation gap upstream; detecting and clamping that is
// the caller's job.
func ComputeScore(ratios ComponentRatios, cfg WeightConfig) (float64, []FactorRisk) {
	perFactor := []FactorRisk{
		{Factor: FactorAttendance, Contribution: (1 - ratios.Attendance) * cfg.AttendanceWeight},
		{Factor: FactorMarks, Contribution: (1 - ratios.Marks) * cfg.MarksWeight},
		{Factor: FactorAssignments, Contribution: (1 - ratios.Assignments) * cfg.AssignmentsWeight},
		{Factor: FactorSentiment, Contribution: (1 - ratios.Sentiment) * cfg.SentimentWeight},
	}

	var sum float64
	for _, fr := range perFactor {
		sum += fr.Contribution
	}
	return Round(sum), perFactor
}

// Clamp bounds score to [0,1].
func Clamp(score float64) float64 {
	return math.Max(0, math.Min(1, score))
}

// Round rounds score to 2 decimal places, the precision snapshots store.
func Round(score float64) float64 {
	return math.Round(score*100) / 100
}

// Classify maps a BRI score to its risk tier. Boundary values belong to the
// higher-risk bucket: a score exactly at a threshold lands in the stricter
// tier, which decides who gets flagged for counsellor referral.
func Classify(score float64, cfg WeightConfig) RiskLevel {
	switch {
	case score >= cfg.HighRiskThreshold:
		return RiskHigh
	case score >= cfg.LowRiskThreshold:
		return RiskAtRisk
	default:
		return RiskLow
	}
}

// RankFactors orders components descending by risk contribution and returns
// the names of the top 3. Ties keep the fixed priority order (attendance,
// marks, assignments, sentiment) so the output is deterministic.
func RankFactors(perFactor []FactorRisk) []Factor {
	ranked := make([]FactorRisk, len(perFactor))
	copy(ranked, perFactor)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Contribution > ranked[j].Contribution })

	n := 3
	if len(ranked) < n {
		n = len(ranked)
	}
	factors := make([]Factor, 0, n)
	for _, fr := range ranked[:n] {
		factors = append(factors, fr.Factor)
	}
	return factors
}
