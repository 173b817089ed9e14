package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/ustawi/core/sentiment"
)

type sentimentRepository struct {
	db *sqlx.DB
}

var _ sentiment.Repository = (*sentimentRepository)(nil)

func NewSentimentRepository(db *sqlx.DB) *sentimentRepository {
	return &sentimentRepository{db: db}
}

func (repo sentimentRepository) CreateEvent(ctx context.Context, evt sentiment.Event) (sentiment.Event, error) {
	if evt.ID == uuid.Nil {
		evt.ID = uuid.New()
	}
	if evt.CreatedAt.IsZero() {
		evt.CreatedAt = time.Now().UTC()
	}

	q := `INSERT INTO sentiment_event (id, student_id, text, score, label, created_at)
          VALUES (:id, :student_id, :text, :score, :label, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, evt); err != nil {
		return sentiment.Event{}, errors.Wrap(err, "creating sentiment event")
	}
	return evt, nil
}

func (repo sentimentRepository) QueryEventsSince(ctx context.Context, studentID string, since time.Time) ([]sentiment.Event, error) {
	var evts []sentiment.Event
	q := `SELECT * FROM sentiment_event WHERE student_id = $1 AND created_at >= $2 ORDER BY created_at`
	if err := repo.db.SelectContext(ctx, &evts, q, studentID, since); err != nil {
		return nil, errors.Wrap(err, "querying sentiment events")
	}
	return evts, nil
}
