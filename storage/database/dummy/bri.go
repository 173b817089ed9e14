package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/ustawi/core/bri"
)

type configRepository struct {
	db *configTable
}

var _ bri.ConfigRepository = (*configRepository)(nil) // interface compliance check

func NewConfigRepository(db *DB) bri.ConfigRepository {
	return &configRepository{db: db.config}
}

func (repo *configRepository) GetActiveConfig(ctx context.Context) (bri.WeightConfig, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, cfg := range repo.db.table {
		if cfg.IsActive {
			return *cfg, nil
		}
	}
	return bri.WeightConfig{}, bri.ErrConfigNotFound
}

func (repo *configRepository) CreateConfig(ctx context.Context, cfg bri.WeightConfig) (bri.WeightConfig, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, prev := range repo.db.table {
		prev.IsActive = false
	}
	repo.db.versionCount++
	cfg.ID = uuid.New()
	cfg.Version = repo.db.versionCount
	cfg.IsActive = true
	repo.db.table[cfg.ID] = &cfg
	return cfg, nil
}

type snapshotRepository struct {
	db *snapshotTable
}

var _ bri.SnapshotRepository = (*snapshotRepository)(nil) // interface compliance check

func NewSnapshotRepository(db *DB) bri.SnapshotRepository {
	return &snapshotRepository{db: db.snapshot}
}

func (repo *snapshotRepository) UpsertSnapshot(ctx context.Context, snap bri.Snapshot) (bri.Snapshot, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// one row per (student, week start)
	for _, existing := range repo.db.table {
		if existing.StudentID == snap.StudentID && existing.WeekStartDate.Equal(snap.WeekStartDate) {
			snap.ID = existing.ID
			snap.CreatedAt = existing.CreatedAt
			repo.db.table[snap.ID] = &snap
			return snap, nil
		}
	}
	snap.ID = uuid.New()
	repo.db.table[snap.ID] = &snap
	return snap, nil
}

func (repo *snapshotRepository) GetLatestSnapshot(ctx context.Context, studentID string) (bri.Snapshot, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var latest *bri.Snapshot
	for _, snap := range repo.db.table {
		if snap.StudentID != studentID {
			continue
		}
		if latest == nil || snap.WeekStartDate.After(latest.WeekStartDate) {
			latest = snap
		}
	}
	if latest == nil {
		return bri.Snapshot{}, bri.ErrSnapshotNotFound
	}
	return *latest, nil
}

func (repo *snapshotRepository) QuerySnapshots(ctx context.Context, studentID string, from, to time.Time) ([]bri.Snapshot, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var snaps []bri.Snapshot
	for _, snap := range repo.db.table {
		if snap.StudentID != studentID {
			continue
		}
		if !from.IsZero() && snap.WeekStartDate.Before(from) {
			continue
		}
		if !to.IsZero() && snap.WeekStartDate.After(to) {
			continue
		}
		snaps = append(snaps, *snap)
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].WeekStartDate.Before(snaps[j].WeekStartDate) })
	return snaps, nil
}
