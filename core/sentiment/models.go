package sentiment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Label is the three-way reading of a text's sentiment score.
type Label string

const (
	LabelPositive Label = "Positive"
	LabelNeutral  Label = "Neutral"
	LabelNegative Label = "Negative"
)

type (
	// Event is one scored piece of student text (chat message, complaint,
	// chatbot turn), persisted by the caller at write time so the BRI
	// aggregator can average scores later.
	Event struct {
		ID        uuid.UUID `db:"id" json:"id"`
		StudentID string    `db:"student_id" json:"student_id"`
		Text      string    `db:"text" json:"text"`
		Score     float64   `db:"score" json:"score"`
		Label     Label     `db:"label" json:"label"`
		CreatedAt time.Time `db:"created_at" json:"created_at"`
	}

	Repository interface {
		CreateEvent(ctx context.Context, evt Event) (Event, error)
		// QueryEventsSince returns all of a student's events created at or after `since`.
		QueryEventsSince(ctx context.Context, studentID string, since time.Time) ([]Event, error)
	}
)
