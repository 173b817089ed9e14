package academics

import (
	"context"
	"time"
)

type (
	// AttendanceRecord is one day of a student's attendance.
	AttendanceRecord struct {
		StudentID string    `db:"student_id" json:"student_id"`
		Date      time.Time `db:"date" json:"date"`
		IsPresent bool      `db:"is_present" json:"is_present"`
	}

	// TestResult is a student's mark on one test.
	TestResult struct {
		StudentID     string    `db:"student_id" json:"student_id"`
		MarksObtained float64   `db:"marks_obtained" json:"marks_obtained"`
		MaxMarks      float64   `db:"max_marks" json:"max_marks"`
		CreatedAt     time.Time `db:"created_at" json:"created_at"`
	}

	// Submission is a student's assignment submission.
	Submission struct {
		StudentID   string    `db:"student_id" json:"student_id"`
		IsOnTime    bool      `db:"is_on_time" json:"is_on_time"`
		SubmittedAt time.Time `db:"submitted_at" json:"submitted_at"`
	}

	// Repository is the read-only view of the academic record store the BRI
	// aggregator consumes. The store itself (CRUD, grading, scheduling) is an
	// external collaborator.
	Repository interface {
		// QueryAttendanceSince returns a student's attendance records dated at or after `since`.
		QueryAttendanceSince(ctx context.Context, studentID string, since time.Time) ([]AttendanceRecord, error)
		// QueryRecentTestResults returns up to `limit` results, most recent first.
		QueryRecentTestResults(ctx context.Context, studentID string, limit int) ([]TestResult, error)
		// QueryRecentSubmissions returns up to `limit` submissions, most recent first.
		QueryRecentSubmissions(ctx context.Context, studentID string, limit int) ([]Submission, error)
	}
)
