package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/ustawi/core/student"
)

// todo: + Masterminds/squirrel

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	if std.ID == "" {
		std.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	std.CreatedAt = now
	std.UpdatedAt = now

	q := `INSERT INTO student (id, name, class, current_bri, created_at, updated_at)
          VALUES (:id, :name, :class, :current_bri, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, std); err != nil {
		return student.Student{}, errors.Wrap(err, "creating student")
	}
	return std, nil
}

func (repo studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	var std student.Student
	q := `SELECT * FROM student WHERE id = $1`
	if err := repo.db.GetContext(ctx, &std, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "getting student")
	}
	return std, nil
}

func (repo studentRepository) QueryAllStudents(ctx context.Context) ([]student.Student, error) {
	var stds []student.Student
	q := `SELECT * FROM student ORDER BY name`
	if err := repo.db.SelectContext(ctx, &stds, q); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return stds, nil
}

func (repo studentRepository) FilterStudents(ctx context.Context, filter student.QueryFilter) ([]student.Student, error) {
	q := `SELECT * FROM student WHERE 1=1`
	args := make([]interface{}, 0, 2)
	if filter.Class != "" {
		args = append(args, filter.Class)
		q += ` AND class = $1`
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		if len(args) == 1 {
			q += ` AND name ILIKE $1`
		} else {
			q += ` AND name ILIKE $2`
		}
	}
	q += ` ORDER BY name`

	var stds []student.Student
	if err := repo.db.SelectContext(ctx, &stds, q, args...); err != nil {
		return nil, errors.Wrap(err, "filtering students")
	}
	return stds, nil
}

func (repo studentRepository) UpdateCurrentBRI(ctx context.Context, id string, score float64) error {
	q := `UPDATE student SET current_bri = $1, updated_at = $2 WHERE id = $3`
	res, err := repo.db.ExecContext(ctx, q, score, time.Now().UTC(), id)
	if err != nil {
		return errors.Wrap(err, "updating current BRI")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.ErrNotFound
	}
	return nil
}
