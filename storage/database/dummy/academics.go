package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/trezcool/ustawi/core/academics"
)

type academicsRepository struct {
	db *academicsTables
}

var _ academics.Repository = (*academicsRepository)(nil) // interface compliance check

// NewAcademicsRepository returns the concrete type so fixtures can reach the
// Add* seeding helpers; callers depend on academics.Repository.
func NewAcademicsRepository(db *DB) *academicsRepository {
	return &academicsRepository{db: db.academics}
}

// AddAttendance seeds attendance records; tests and fixtures only.
func (repo *academicsRepository) AddAttendance(records ...academics.AttendanceRecord) {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.attendance = append(repo.db.attendance, records...)
}

// AddTestResults seeds test results; tests and fixtures only.
func (repo *academicsRepository) AddTestResults(results ...academics.TestResult) {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.testResults = append(repo.db.testResults, results...)
}

// AddSubmissions seeds assignment submissions; tests and fixtures only.
func (repo *academicsRepository) AddSubmissions(subs ...academics.Submission) {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.submissions = append(repo.db.submissions, subs...)
}

func (repo *academicsRepository) QueryAttendanceSince(ctx context.Context, studentID string, since time.Time) ([]academics.AttendanceRecord, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var records []academics.AttendanceRecord
	for _, rec := range repo.db.attendance {
		if rec.StudentID == studentID && !rec.Date.Before(since) {
			records = append(records, rec)
		}
	}
	return records, nil
}

func (repo *academicsRepository) QueryRecentTestResults(ctx context.Context, studentID string, limit int) ([]academics.TestResult, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var results []academics.TestResult
	for _, res := range repo.db.testResults {
		if res.StudentID == studentID {
			results = append(results, res)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].CreatedAt.After(results[j].CreatedAt) })
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (repo *academicsRepository) QueryRecentSubmissions(ctx context.Context, studentID string, limit int) ([]academics.Submission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var subs []academics.Submission
	for _, sub := range repo.db.submissions {
		if sub.StudentID == studentID {
			subs = append(subs, sub)
		}
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].SubmittedAt.After(subs[j].SubmittedAt) })
	if len(subs) > limit {
		subs = subs[:limit]
	}
	return subs, nil
}
