package bri

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/ustawi/core/academics"
	"github.com/trezcool/ustawi/core/sentiment"
)

// Lookback windows. Attendance and sentiment are calendar windows; marks and
// assignments are most-recent-N since their cadence varies per class.
const (
	lookbackDays     = 30
	testResultsLimit = 10
	submissionsLimit = 20
	neutralRatio     = 0.5 // missing-data default; never 0 or 1, to avoid cold-start bias
)

// Aggregator computes the four raw component ratios for a student from the
// external record stores. It performs no writes; the four reads are
// point-in-time, not transactionally consistent, since the BRI is a lagging
// indicator anyway.
type Aggregator struct {
	academicsRepo academics.Repository
	sentimentRepo sentiment.Repository
	readTimeout   time.Duration

	now func() time.Time // mockable
}

func NewAggregator(academicsRepo academics.Repository, sentimentRepo sentiment.Repository, readTimeout time.Duration) *Aggregator {
	return &Aggregator{
		academicsRepo: academicsRepo,
		sentimentRepo: sentimentRepo,
		readTimeout:   readTimeout,
		now:           time.Now,
	}
}

// Aggregate computes ComponentRatios for studentID. An empty window resolves
// to the neutral ratio; a failed or timed-out read is a hard error.
func (agg *Aggregator) Aggregate(ctx context.Context, studentID string) (ComponentRatios, error) {
	since := agg.now().UTC().AddDate(0, 0, -lookbackDays)

	attendance, err := agg.attendanceRatio(ctx, studentID, since)
	if err != nil {
		return ComponentRatios{}, errors.Wrap(err, "aggregating attendance")
	}
	marks, err := agg.marksRatio(ctx, studentID)
	if err != nil {
		return ComponentRatios{}, errors.Wrap(err, "aggregating marks")
	}
	assignments, err := agg.assignmentRatio(ctx, studentID)
	if err != nil {
		return ComponentRatios{}, errors.Wrap(err, "aggregating assignments")
	}
	sentimentRatio, err := agg.sentimentRatio(ctx, studentID, since)
	if err != nil {
		return ComponentRatios{}, errors.Wrap(err, "aggregating sentiment")
	}

	return ComponentRatios{
		Attendance:  attendance,
		Marks:       marks,
		Assignments: assignments,
		Sentiment:   sentimentRatio,
	}, nil
}

func (agg *Aggregator) attendanceRatio(ctx context.Context, studentID string, since time.Time) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, agg.readTimeout)
	defer cancel()

	records, err := agg.academicsRepo.QueryAttendanceSince(ctx, studentID, since)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return neutralRatio, nil
	}
	var present int
	for _, rec := range records {
		if rec.IsPresent {
			present++
		}
	}
	return float64(present) / float64(len(records)), nil
}

func (agg *Aggregator) marksRatio(ctx context.Context, studentID string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, agg.readTimeout)
	defer cancel()

	results, err := agg.academicsRepo.QueryRecentTestResults(ctx, studentID, testResultsLimit)
	if err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return neutralRatio, nil
	}
	var sum float64
	for _, res := range results {
		if res.MaxMarks > 0 {
			sum += res.MarksObtained / res.MaxMarks
		}
	}
	return sum / float64(len(results)), nil
}

func (agg *Aggregator) assignmentRatio(ctx context.Context, studentID string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, agg.readTimeout)
	defer cancel()

	subs, err := agg.academicsRepo.QueryRecentSubmissions(ctx, studentID, submissionsLimit)
	if err != nil {
		return 0, err
	}
	if len(subs) == 0 {
		return neutralRatio, nil
	}
	var onTime int
	for _, sub := range subs {
		if sub.IsOnTime {
			onTime++
		}
	}
	return float64(onTime) / float64(len(subs)), nil
}

func (agg *Aggregator) sentimentRatio(ctx context.Context, studentID string, since time.Time) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, agg.readTimeout)
	defer cancel()

	events, err := agg.sentimentRepo.QueryEventsSince(ctx, studentID, since)
	if err != nil {
		return 0, err
	}
	if len(events) == 0 {
		return neutralRatio, nil
	}
	var sum float64
	for _, evt := range events {
		sum += evt.Score
	}
	return sum / float64(len(events)), nil
}
