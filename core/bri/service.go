package bri

import (
	"context"
	"fmt"
	"net/mail"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/ustawi/core"
	"github.com/trezcool/ustawi/core/student"
)

// Stage is a step of a single student's recomputation. Steps are strictly
// ordered; later stages consume earlier outputs.
type Stage string

const (
	StagePending     Stage = "Pending"
	StageAggregating Stage = "Aggregating"
	StageScoring     Stage = "Scoring"
	StageClassifying Stage = "Classifying"
	StagePersisting  Stage = "Persisting"
	StageDone        Stage = "Done"
)

// StageError marks a recomputation as Failed at a given stage. No partial
// snapshot or current-BRI mutation is committed when one is returned.
type StageError struct {
	StudentID string
	Stage     Stage
	Err       error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("recomputing BRI for student %s: %s: %v", e.StudentID, e.Stage, e.Err)
}

func (e *StageError) Cause() error { return e.Err }

func (e *StageError) Unwrap() error { return e.Err }

type (
	// SweepFailure is one student's failed recomputation within a sweep.
	SweepFailure struct {
		StudentID string `json:"student_id"`
		Stage     Stage  `json:"stage"`
		Error     string `json:"error"`
	}

	// SweepReport summarizes a full recomputation sweep. Skipped counts the
	// students not started because the sweep was cancelled.
	SweepReport struct {
		Total     int            `json:"total"`
		Succeeded int            `json:"succeeded"`
		Skipped   int            `json:"skipped"`
		Failures  []SweepFailure `json:"failures"`
	}

	// StudentRisk pairs a student with the tier of their current BRI, for
	// dashboard listing and filtering.
	StudentRisk struct {
		student.Student
		RiskLevel RiskLevel `json:"risk_level"`
	}

	Service struct {
		conf     *core.Config
		logger   core.Logger
		stdRepo  student.Repository
		cfgRepo  ConfigRepository
		snapRepo SnapshotRepository
		agg      *Aggregator
		mailSvc  core.EmailService // nil disables alerts

		now func() time.Time // mockable
	}
)

func NewService(
	conf *core.Config,
	logger core.Logger,
	stdRepo student.Repository,
	cfgRepo ConfigRepository,
	snapRepo SnapshotRepository,
	agg *Aggregator,
	mailSvc core.EmailService,
) *Service {
	return &Service{
		conf:     conf,
		logger:   logger,
		stdRepo:  stdRepo,
		cfgRepo:  cfgRepo,
		snapRepo: snapRepo,
		agg:      agg,
		mailSvc:  mailSvc,
		now:      time.Now,
	}
}

// ActiveConfig returns the currently active weight configuration.
func (svc *Service) ActiveConfig(ctx context.Context) (WeightConfig, error) {
	return svc.cfgRepo.GetActiveConfig(ctx)
}

// UpdateConfig validates and persists a new active configuration version.
// The previously active version stays in effect when validation fails.
// Callers are expected to schedule a full Sweep on success.
func (svc *Service) UpdateConfig(ctx context.Context, nc NewWeightConfig, validate *validator.Validate) (WeightConfig, error) {
	if err := nc.Validate(validate); err != nil {
		return WeightConfig{}, err
	}
	cfg := WeightConfig{
		AttendanceWeight:  nc.AttendanceWeight,
		MarksWeight:       nc.MarksWeight,
		AssignmentsWeight: nc.AssignmentsWeight,
		SentimentWeight:   nc.SentimentWeight,
		LowRiskThreshold:  nc.LowRiskThreshold,
		HighRiskThreshold: nc.HighRiskThreshold,
		IsActive:          true,
		CreatedAt:         svc.now().UTC(),
	}
	return svc.cfgRepo.CreateConfig(ctx, cfg)
}

// SeedConfig installs cfg as a new active configuration version without
// payload validation. Bootstrap only; administrator updates go through
// UpdateConfig.
func (svc *Service) SeedConfig(ctx context.Context, cfg WeightConfig) (WeightConfig, error) {
	cfg.IsActive = true
	cfg.CreatedAt = svc.now().UTC()
	return svc.cfgRepo.CreateConfig(ctx, cfg)
}

// Recompute performs one full recomputation for studentID and persists the
// current week's snapshot (upsert: a second run within the same week
// overwrites). All-or-nothing: on failure the existing snapshot and current
// BRI remain untouched and the failing stage is reported via *StageError.
func (svc *Service) Recompute(ctx context.Context, studentID string) (Result, error) {
	fail := func(stage Stage, err error) (Result, error) {
		return Result{}, &StageError{StudentID: studentID, Stage: stage, Err: err}
	}

	// Pending
	std, err := svc.stdRepo.GetStudentByID(ctx, studentID)
	if err != nil {
		return fail(StagePending, err)
	}

	// Aggregating
	ratios, err := svc.agg.Aggregate(ctx, studentID)
	if err != nil {
		return fail(StageAggregating, err)
	}

	// Scoring
	cfg, err := svc.cfgRepo.GetActiveConfig(ctx)
	if err != nil {
		return fail(StageScoring, err)
	}
	score, perFactor := ComputeScore(ratios, cfg)
	if score < 0 || score > 1 {
		// config validation gap upstream; clamp but never silently
		svc.logger.Error(
			fmt.Sprintf("BRI out of range: %v (student %s, config v%d); clamping", score, studentID, cfg.Version),
			errors.Errorf("bri out of range: %v", score),
		)
		score = Clamp(score)
	}

	// Classifying
	level := Classify(score, cfg)
	factors := RankFactors(perFactor)

	// Persisting: snapshot first, then the denormalized pointer, so readers
	// never observe a current value with no backing snapshot.
	prev, err := svc.snapRepo.GetLatestSnapshot(ctx, studentID)
	if err != nil && errors.Cause(err) != ErrSnapshotNotFound {
		return fail(StagePersisting, err)
	}
	newlyHigh := level == RiskHigh && (errors.Cause(err) == ErrSnapshotNotFound || prev.RiskLevel != RiskHigh)

	now := svc.now().UTC()
	snap := Snapshot{
		StudentID:           studentID,
		WeekStartDate:       WeekStart(now),
		Score:               score,
		RiskLevel:           level,
		ContributingFactors: factors,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if _, err = svc.snapRepo.UpsertSnapshot(ctx, snap); err != nil {
		return fail(StagePersisting, err)
	}
	if err = svc.stdRepo.UpdateCurrentBRI(ctx, studentID, score); err != nil {
		return fail(StagePersisting, err)
	}

	// Done
	if newlyHigh {
		svc.sendHighRiskAlert(std, score, factors)
	}
	return Result{
		BRIScore:            score,
		RiskLevel:           level,
		ContributingFactors: factors,
		ComponentScores:     ratios,
	}, nil
}

// Sweep recomputes the BRI of every student over a bounded worker pool.
// Students are independent: one failure never aborts the rest. Cancellation
// is cooperative and takes effect between students; a started recomputation
// runs to completion or failure.
func (svc *Service) Sweep(ctx context.Context) (SweepReport, error) {
	students, err := svc.stdRepo.QueryAllStudents(ctx)
	if err != nil {
		return SweepReport{}, errors.Wrap(err, "querying students")
	}

	report := SweepReport{Total: len(students)}

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		jobs = make(chan student.Student)
	)
	for i := 0; i < svc.conf.BRI.SweepWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// started students run on a context detached from the sweep's
			// cancel signal; the feed loop below is the only cancellation point
			for std := range jobs {
				if _, err := svc.Recompute(context.Background(), std.ID); err != nil {
					failure := SweepFailure{StudentID: std.ID, Error: err.Error()}
					if stageErr, ok := err.(*StageError); ok {
						failure.Stage = stageErr.Stage
					}
					svc.logger.Warn(fmt.Sprintf("sweep: %v", err))
					mu.Lock()
					report.Failures = append(report.Failures, failure)
					mu.Unlock()
					continue
				}
				mu.Lock()
				report.Succeeded++
				mu.Unlock()
			}
		}()
	}

	var dispatched int
feed:
	for _, std := range students {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- std:
			dispatched++
		}
	}
	close(jobs)
	wg.Wait()

	report.Skipped = report.Total - dispatched
	if err := ctx.Err(); err != nil {
		return report, errors.Wrap(err, "sweep cancelled")
	}
	return report, nil
}

// Student fetches one student's profile.
func (svc *Service) Student(ctx context.Context, id string) (student.Student, error) {
	return svc.stdRepo.GetStudentByID(ctx, id)
}

// QuerySnapshots returns a student's snapshot history for charting.
func (svc *Service) QuerySnapshots(ctx context.Context, studentID string, from, to time.Time) ([]Snapshot, error) {
	return svc.snapRepo.QuerySnapshots(ctx, studentID, from, to)
}

// ListStudentsByRisk lists students with the tier of their current BRI,
// highest BRI first, optionally narrowed by class/name filter and to one
// tier. Students with no computed BRI yet are included only when no tier is
// given, with an empty tier, after every scored student.
func (svc *Service) ListStudentsByRisk(ctx context.Context, level RiskLevel, filter student.QueryFilter) ([]StudentRisk, error) {
	cfg, err := svc.cfgRepo.GetActiveConfig(ctx)
	if err != nil {
		return nil, err
	}
	students, err := svc.stdRepo.FilterStudents(ctx, filter)
	if err != nil {
		return nil, err
	}

	listed := make([]StudentRisk, 0, len(students))
	for _, std := range students {
		var stdLevel RiskLevel
		if std.CurrentBRI != nil {
			stdLevel = Classify(*std.CurrentBRI, cfg)
		}
		if level != "" && stdLevel != level {
			continue
		}
		listed = append(listed, StudentRisk{Student: std, RiskLevel: stdLevel})
	}
	sort.SliceStable(listed, func(i, j int) bool {
		a, b := listed[i].CurrentBRI, listed[j].CurrentBRI
		if a == nil || b == nil {
			return b == nil && a != nil
		}
		return *a > *b
	})
	return listed, nil
}

func (svc *Service) sendHighRiskAlert(std student.Student, score float64, factors []Factor) {
	if svc.mailSvc == nil {
		return
	}
	body := fmt.Sprintf(
		"Student %s (class %s) has entered the High burnout risk tier with a BRI of %.2f.\n\nTop contributing factors:\n",
		std.Name, std.Class, score,
	)
	for i, f := range factors {
		body += fmt.Sprintf("  %d. %s\n", i+1, f)
	}
	body += "\nPlease consider scheduling a counselling session."

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{svc.conf.CounsellorEmail},
		Subject: fmt.Sprintf("High burnout risk: %s", std.Name),
		BodyStr: body,
	})
}
