package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/ustawi/core/academics"
	"github.com/trezcool/ustawi/core/bri"
	"github.com/trezcool/ustawi/core/sentiment"
	"github.com/trezcool/ustawi/core/student"
)

func CreateStudent(t *testing.T, repo student.Repository, name, class string) student.Student {
	t.Helper()

	now := time.Now().UTC()
	std, err := repo.CreateStudent(context.Background(), student.Student{
		Name:      name,
		Class:     class,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return std
}

func CreateWeightConfig(
	t *testing.T,
	repo bri.ConfigRepository,
	attendance, marks, assignments, sentimentWeight, low, high float64,
) bri.WeightConfig {
	t.Helper()

	cfg, err := repo.CreateConfig(context.Background(), bri.WeightConfig{
		AttendanceWeight:  attendance,
		MarksWeight:       marks,
		AssignmentsWeight: assignments,
		SentimentWeight:   sentimentWeight,
		LowRiskThreshold:  low,
		HighRiskThreshold: high,
		IsActive:          true,
		CreatedAt:         time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateConfig() failed: %v", err)
	}
	return cfg
}

// DefaultWeightConfig seeds the shipped default weights
// (0.25/0.25/0.20/0.30, thresholds 0.33/0.66).
func DefaultWeightConfig(t *testing.T, repo bri.ConfigRepository) bri.WeightConfig {
	t.Helper()
	return CreateWeightConfig(t, repo, 0.25, 0.25, 0.20, 0.30, 0.33, 0.66)
}

// AttendanceDays builds one record per day over the `days` most recent days,
// the first `presentDays` of them present.
func AttendanceDays(studentID string, days, presentDays int) []academics.AttendanceRecord {
	now := time.Now().UTC()
	records := make([]academics.AttendanceRecord, 0, days)
	for i := 0; i < days; i++ {
		records = append(records, academics.AttendanceRecord{
			StudentID: studentID,
			Date:      now.AddDate(0, 0, -i),
			IsPresent: i < presentDays,
		})
	}
	return records
}

// TestResults builds `count` results with the given marks ratio.
func TestResults(studentID string, count int, ratio float64) []academics.TestResult {
	now := time.Now().UTC()
	results := make([]academics.TestResult, 0, count)
	for i := 0; i < count; i++ {
		results = append(results, academics.TestResult{
			StudentID:     studentID,
			MarksObtained: ratio * 100,
			MaxMarks:      100,
			CreatedAt:     now.Add(-time.Duration(i) * time.Hour),
		})
	}
	return results
}

// Submissions builds `count` submissions, the first `onTime` of them on time.
func Submissions(studentID string, count, onTime int) []academics.Submission {
	now := time.Now().UTC()
	subs := make([]academics.Submission, 0, count)
	for i := 0; i < count; i++ {
		subs = append(subs, academics.Submission{
			StudentID:   studentID,
			IsOnTime:    i < onTime,
			SubmittedAt: now.Add(-time.Duration(i) * time.Hour),
		})
	}
	return subs
}

func CreateSentimentEvent(t *testing.T, repo sentiment.Repository, studentID, text string, createdAt time.Time) sentiment.Event {
	t.Helper()

	score, label := sentiment.Score(text)
	evt, err := repo.CreateEvent(context.Background(), sentiment.Event{
		StudentID: studentID,
		Text:      text,
		Score:     score,
		Label:     label,
		CreatedAt: createdAt,
	})
	if err != nil {
		t.Fatalf("CreateEvent() failed: %v", err)
	}
	return evt
}
