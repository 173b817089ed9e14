package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/ustawi/core/academics"
)

type academicsRepository struct {
	db *sqlx.DB
}

var _ academics.Repository = (*academicsRepository)(nil)

func NewAcademicsRepository(db *sqlx.DB) *academicsRepository {
	return &academicsRepository{db: db}
}

func (repo academicsRepository) QueryAttendanceSince(ctx context.Context, studentID string, since time.Time) ([]academics.AttendanceRecord, error) {
	var recs []academics.AttendanceRecord
	q := `SELECT * FROM attendance_record WHERE student_id = $1 AND date >= $2 ORDER BY date`
	if err := repo.db.SelectContext(ctx, &recs, q, studentID, since); err != nil {
		return nil, errors.Wrap(err, "querying attendance")
	}
	return recs, nil
}

func (repo academicsRepository) QueryRecentTestResults(ctx context.Context, studentID string, limit int) ([]academics.TestResult, error) {
	var results []academics.TestResult
	q := `SELECT * FROM test_result WHERE student_id = $1 ORDER BY created_at DESC LIMIT $2`
	if err := repo.db.SelectContext(ctx, &results, q, studentID, limit); err != nil {
		return nil, errors.Wrap(err, "querying test results")
	}
	return results, nil
}

func (repo academicsRepository) QueryRecentSubmissions(ctx context.Context, studentID string, limit int) ([]academics.Submission, error) {
	var subs []academics.Submission
	q := `SELECT * FROM assignment_submission WHERE student_id = $1 ORDER BY submitted_at DESC LIMIT $2`
	if err := repo.db.SelectContext(ctx, &subs, q, studentID, limit); err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}
	return subs, nil
}
