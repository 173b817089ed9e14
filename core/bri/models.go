package bri

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// errors
	ErrConfigNotFound   = errors.New("no active weight configuration")
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// RiskLevel is the burnout risk tier derived from a BRI score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskAtRisk RiskLevel = "At Risk"
	RiskHigh   RiskLevel = "High"
)

// Factor names a BRI component as shown to staff and counsellors.
type Factor string

const (
	FactorAttendance  Factor = "Attendance"
	FactorMarks       Factor = "Academic Performance"
	FactorAssignments Factor = "Assignment Completion"
	FactorSentiment   Factor = "Sentiment Analysis"
)

type (
	// WeightConfig is one version of the administrator-managed scoring
	// configuration. Exactly one version is active at a time; mutation
	// appends a new version and deactivates the previous one.
	WeightConfig struct {
		ID                uuid.UUID `db:"id" json:"id"`
		Version           int       `db:"version" json:"version"`
		AttendanceWeight  float64   `db:"attendance_weight" json:"attendance_weight"`
		MarksWeight       float64   `db:"marks_weight" json:"marks_weight"`
		AssignmentsWeight float64   `db:"assignments_weight" json:"assignments_weight"`
		SentimentWeight   float64   `db:"sentiment_weight" json:"sentiment_weight"`
		LowRiskThreshold  float64   `db:"low_risk_threshold" json:"low_risk_threshold"`
		HighRiskThreshold float64   `db:"high_risk_threshold" json:"high_risk_threshold"`
		IsActive          bool      `db:"is_active" json:"is_active"`
		CreatedAt         time.Time `db:"created_at" json:"created_at"`
	}

	// NewWeightConfig is the payload of a configuration update.
	NewWeightConfig struct {
		AttendanceWeight  float64 `json:"attendance_weight" validate:"gte=0,lte=1"`
		MarksWeight       float64 `json:"marks_weight" validate:"gte=0,lte=1"`
		AssignmentsWeight float64 `json:"assignments_weight" validate:"gte=0,lte=1"`
		SentimentWeight   float64 `json:"sentiment_weight" validate:"gte=0,lte=1"`
		LowRiskThreshold  float64 `json:"low_risk_threshold" validate:"gte=0,lte=1"`
		HighRiskThreshold float64 `json:"high_risk_threshold" validate:"gte=0,lte=1"`
	}

	// ComponentRatios are the four normalized "goodness" signals, higher is
	// better; the scoring policy inverts them.
	ComponentRatios struct {
		Attendance  float64 `json:"attendance"`
		Marks       float64 `json:"marks"`
		Assignments float64 `json:"assignments"`
		Sentiment   float64 `json:"sentiment"`
	}

	// FactorRisk is one component's weighted contribution to risk.
	FactorRisk struct {
		Factor       Factor  `json:"factor"`
		Contribution float64 `json:"contribution"`
	}

	// Snapshot is one persisted BRI computation. At most one exists per
	// (student, week start); recomputation within the same week overwrites.
	Snapshot struct {
		ID                  uuid.UUID `db:"id" json:"id"`
		StudentID           string    `db:"student_id" json:"student_id"`
		WeekStartDate       time.Time `db:"week_start_date" json:"week_start_date"`
		Score               float64   `db:"bri_score" json:"bri_score"`
		RiskLevel           RiskLevel `db:"risk_level" json:"risk_level"`
		ContributingFactors []Factor  `db:"-" json:"contributing_factors"`
		CreatedAt           time.Time `db:"created_at" json:"created_at"`
		UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
	}

	// Result is the synchronous payload of one recomputation, mirroring what
	// the "refresh my score" UI action consumes.
	Result struct {
		BRIScore            float64         `json:"bri_score"`
		RiskLevel           RiskLevel       `json:"risk_level"`
		ContributingFactors []Factor        `json:"contributing_factors"`
		ComponentScores     ComponentRatios `json:"component_scores"`
	}

	ConfigRepository interface {
		GetActiveConfig(ctx context.Context) (WeightConfig, error)
		// CreateConfig appends a new version, marks it active and deactivates
		// the previous active version, atomically.
		CreateConfig(ctx context.Context, cfg WeightConfig) (WeightConfig, error)
	}

	SnapshotRepository interface {
		// UpsertSnapshot inserts, or overwrites the existing row for
		// (StudentID, WeekStartDate) preserving its ID and CreatedAt.
		UpsertSnapshot(ctx context.Context, snap Snapshot) (Snapshot, error)
		GetLatestSnapshot(ctx context.Context, studentID string) (Snapshot, error)
		QuerySnapshots(ctx context.Context, studentID string, from, to time.Time) ([]Snapshot, error)
	}
)

// WeekStart truncates t to the start of its ISO week: Monday 00:00 UTC.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	days := (int(t.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	y, m, d := t.AddDate(0, 0, -days).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
