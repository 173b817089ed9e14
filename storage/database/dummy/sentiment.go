package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/ustawi/core/sentiment"
)

type sentimentRepository struct {
	db *sentimentTable
}

var _ sentiment.Repository = (*sentimentRepository)(nil) // interface compliance check

func NewSentimentRepository(db *DB) sentiment.Repository {
	return &sentimentRepository{db: db.sentiment}
}

func (repo *sentimentRepository) CreateEvent(ctx context.Context, evt sentiment.Event) (sentiment.Event, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if evt.ID == uuid.Nil {
		evt.ID = uuid.New()
	}
	repo.db.table[evt.ID] = &evt
	return evt, nil
}

func (repo *sentimentRepository) QueryEventsSince(ctx context.Context, studentID string, since time.Time) ([]sentiment.Event, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var events []sentiment.Event
	for _, evt := range repo.db.table {
		if evt.StudentID == studentID && !evt.CreatedAt.Before(since) {
			events = append(events, *evt)
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].CreatedAt.Before(events[j].CreatedAt) })
	return events, nil
}
