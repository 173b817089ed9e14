package dummydb

import (
	"sync"

	"github.com/google/uuid"

	"github.com/trezcool/ustawi/core/academics"
	"github.com/trezcool/ustawi/core/bri"
	"github.com/trezcool/ustawi/core/sentiment"
	"github.com/trezcool/ustawi/core/student"
)

type (
	DB struct {
		student   *studentTable
		academics *academicsTables
		sentiment *sentimentTable
		config    *configTable
		snapshot  *snapshotTable
	}

	studentTable struct {
		sync.RWMutex
		table map[string]*student.Student
	}

	academicsTables struct {
		sync.RWMutex
		attendance  []academics.AttendanceRecord
		testResults []academics.TestResult
		submissions []academics.Submission
	}

	sentimentTable struct {
		sync.RWMutex
		table map[uuid.UUID]*sentiment.Event
	}

	configTable struct {
		sync.RWMutex
		versionCount int
		table        map[uuid.UUID]*bri.WeightConfig
	}

	snapshotTable struct {
		sync.RWMutex
		table map[uuid.UUID]*bri.Snapshot
	}
)

func Open() (*DB, error) {
	db := &DB{
		student:   &studentTable{table: make(map[string]*student.Student)},
		academics: &academicsTables{},
		sentiment: &sentimentTable{table: make(map[uuid.UUID]*sentiment.Event)},
		config:    &configTable{table: make(map[uuid.UUID]*bri.WeightConfig)},
		snapshot:  &snapshotTable{table: make(map[uuid.UUID]*bri.Snapshot)},
	}
	return db, nil
}
