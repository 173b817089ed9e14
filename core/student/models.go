package student

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("student not found")

type (
	// Student mirrors the slice of the student profile the BRI engine needs.
	// CurrentBRI is a denormalized cache of the latest snapshot's score; nil
	// until the first recomputation succeeds, possibly stale between runs.
	Student struct {
		ID         string     `db:"id" json:"id"`
		Name       string     `db:"name" json:"name"`
		Class      string     `db:"class" json:"class"`
		CurrentBRI *float64   `db:"current_bri" json:"current_bri"`
		CreatedAt  time.Time  `db:"created_at" json:"created_at"`
		UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
	}

	// QueryFilter applies AND on available fields.
	QueryFilter struct {
		Class  string
		Search string // case-insensitive match on Name
	}

	Repository interface {
		CreateStudent(ctx context.Context, std Student) (Student, error)
		GetStudentByID(ctx context.Context, id string) (Student, error)
		QueryAllStudents(ctx context.Context) ([]Student, error)
		FilterStudents(ctx context.Context, filter QueryFilter) ([]Student, error)
		// UpdateCurrentBRI refreshes the denormalized score cache. Callers must
		// only invoke it after the backing snapshot write has succeeded.
		UpdateCurrentBRI(ctx context.Context, id string, score float64) error
	}
)
