package dummydb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/ustawi/core/student"
)

type studentRepository struct {
	db *studentTable
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db.student}
}

func (repo *studentRepository) query() []student.Student {
	students := make([]student.Student, 0, len(repo.db.table))
	for _, std := range repo.db.table {
		students = append(students, *std)
	}
	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })
	return students
}

func (repo *studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if std.ID == "" {
		std.ID = uuid.New().String()
	}
	repo.db.table[std.ID] = &std
	return std, nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if std, ok := repo.db.table[id]; ok {
		return *std, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) QueryAllStudents(ctx context.Context) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *studentRepository) FilterStudents(ctx context.Context, filter student.QueryFilter) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := repo.query()

	if filter.Class != "" {
		var filtered []student.Student
		for _, std := range students {
			if std.Class == filter.Class {
				filtered = append(filtered, std)
			}
		}
		students = filtered
	}
	if students != nil && filter.Search != "" {
		var filtered []student.Student
		for _, std := range students {
			if strings.Contains(strings.ToLower(std.Name), strings.ToLower(filter.Search)) {
				filtered = append(filtered, std)
			}
		}
		students = filtered
	}

	return students, nil
}

func (repo *studentRepository) UpdateCurrentBRI(ctx context.Context, id string, score float64) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	std, ok := repo.db.table[id]
	if !ok {
		return student.ErrNotFound
	}
	std.CurrentBRI = &score
	std.UpdatedAt = time.Now().UTC()
	return nil
}
