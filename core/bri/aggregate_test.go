package bri_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/trezcool/ustawi/core/academics"
	"github.com/trezcool/ustawi/core/bri"
	dummydb "github.com/trezcool/ustawi/storage/database/dummy"
	testutil "github.com/trezcool/ustawi/tests"
)

func TestAggregator_Aggregate(t *testing.T) {
	db, _ := dummydb.Open()
	stdRepo := dummydb.NewStudentRepository(db)
	acaRepo := dummydb.NewAcademicsRepository(db)
	sentRepo := dummydb.NewSentimentRepository(db)

	agg := bri.NewAggregator(acaRepo, sentRepo, time.Second)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("no data defaults every ratio to neutral", func(t *testing.T) {
		std := testutil.CreateStudent(t, stdRepo, "Amani", "S5")

		ratios, err := agg.Aggregate(ctx, std.ID)
		if err != nil {
			t.Fatalf("Aggregate() failed: %v", err)
		}
		want := bri.ComponentRatios{Attendance: 0.5, Marks: 0.5, Assignments: 0.5, Sentiment: 0.5}
		if ratios != want {
			t.Errorf("Aggregate() = %+v, want %+v", ratios, want)
		}
	})

	t.Run("ratios computed from records", func(t *testing.T) {
		std := testutil.CreateStudent(t, stdRepo, "Bahati", "S5")

		// 20 days recorded, 18 present
		acaRepo.AddAttendance(testutil.AttendanceDays(std.ID, 20, 18)...)
		// 10 tests at 80%
		acaRepo.AddTestResults(testutil.TestResults(std.ID, 10, 0.8)...)
		// 20 submissions, 14 on time
		acaRepo.AddSubmissions(testutil.Submissions(std.ID, 20, 14)...)
		// one positive, one stressed message
		testutil.CreateSentimentEvent(t, sentRepo, std.ID, "great lesson", now.AddDate(0, 0, -1))
		testutil.CreateSentimentEvent(t, sentRepo, std.ID, "so stressed", now.AddDate(0, 0, -2))

		ratios, err := agg.Aggregate(ctx, std.ID)
		if err != nil {
			t.Fatalf("Aggregate() failed: %v", err)
		}
		assertRatio(t, "attendance", ratios.Attendance, 0.9)
		assertRatio(t, "marks", ratios.Marks, 0.8)
		assertRatio(t, "assignments", ratios.Assignments, 0.7)
		assertRatio(t, "sentiment", ratios.Sentiment, 0.45) // (0.6 + 0.3) / 2
	})

	t.Run("old records fall outside the windows", func(t *testing.T) {
		std := testutil.CreateStudent(t, stdRepo, "Chiku", "S6")

		// attendance and sentiment older than 30 days are ignored
		acaRepo.AddAttendance(academics.AttendanceRecord{
			StudentID: std.ID,
			Date:      now.AddDate(0, 0, -45),
			IsPresent: false,
		})
		testutil.CreateSentimentEvent(t, sentRepo, std.ID, "awful day", now.AddDate(0, 0, -40))

		ratios, err := agg.Aggregate(ctx, std.ID)
		if err != nil {
			t.Fatalf("Aggregate() failed: %v", err)
		}
		assertRatio(t, "attendance", ratios.Attendance, 0.5)
		assertRatio(t, "sentiment", ratios.Sentiment, 0.5)
	})

	t.Run("marks and assignments keep only the most recent N", func(t *testing.T) {
		std := testutil.CreateStudent(t, stdRepo, "Dalila", "S6")

		// 10 recent tests at 100%, then 5 older at 0%: only the 10 count
		acaRepo.AddTestResults(testutil.TestResults(std.ID, 10, 1)...)
		old := testutil.TestResults(std.ID, 5, 0)
		for i := range old {
			old[i].CreatedAt = old[i].CreatedAt.AddDate(0, -6, 0)
		}
		acaRepo.AddTestResults(old...)

		ratios, err := agg.Aggregate(ctx, std.ID)
		if err != nil {
			t.Fatalf("Aggregate() failed: %v", err)
		}
		assertRatio(t, "marks", ratios.Marks, 1)
	})
}

func assertRatio(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s ratio = %v, want %v", name, got, want)
	}
}
