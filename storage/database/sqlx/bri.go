package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/ustawi/core/bri"
)

type configRepository struct {
	db *sqlx.DB
}

var _ bri.ConfigRepository = (*configRepository)(nil)

func NewConfigRepository(db *sqlx.DB) *configRepository {
	return &configRepository{db: db}
}

func (repo configRepository) GetActiveConfig(ctx context.Context) (bri.WeightConfig, error) {
	var cfg bri.WeightConfig
	q := `SELECT * FROM weight_config WHERE is_active`
	if err := repo.db.GetContext(ctx, &cfg, q); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return bri.WeightConfig{}, bri.ErrConfigNotFound
		}
		return bri.WeightConfig{}, errors.Wrap(err, "getting active config")
	}
	return cfg, nil
}

func (repo configRepository) CreateConfig(ctx context.Context, cfg bri.WeightConfig) (bri.WeightConfig, error) {
	if cfg.ID == uuid.Nil {
		cfg.ID = uuid.New()
	}
	cfg.IsActive = true
	cfg.CreatedAt = time.Now().UTC()

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return bri.WeightConfig{}, errors.Wrap(err, "creating config")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx, `UPDATE weight_config SET is_active = FALSE WHERE is_active`); err != nil {
		return bri.WeightConfig{}, errors.Wrap(err, "deactivating previous config")
	}

	// version is assigned by the DB sequence
	q := `INSERT INTO weight_config (id, attendance_weight, marks_weight, assignments_weight, sentiment_weight,
                                     low_risk_threshold, high_risk_threshold, is_active, created_at)
          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
          RETURNING version`
	row := tx.QueryRowContext(ctx, q,
		cfg.ID, cfg.AttendanceWeight, cfg.MarksWeight, cfg.AssignmentsWeight, cfg.SentimentWeight,
		cfg.LowRiskThreshold, cfg.HighRiskThreshold, cfg.IsActive, cfg.CreatedAt,
	)
	if err = row.Scan(&cfg.Version); err != nil {
		return bri.WeightConfig{}, errors.Wrap(err, "creating config")
	}

	if err = tx.Commit(); err != nil {
		return bri.WeightConfig{}, errors.Wrap(err, "creating config")
	}
	return cfg, nil
}

type snapshotRepository struct {
	db *sqlx.DB
}

var _ bri.SnapshotRepository = (*snapshotRepository)(nil)

func NewSnapshotRepository(db *sqlx.DB) *snapshotRepository {
	return &snapshotRepository{db: db}
}

// snapshotRow carries the pq array column the domain model keeps out of its db mapping.
type snapshotRow struct {
	bri.Snapshot
	Factors pq.StringArray `db:"contributing_factors"`
}

func (r snapshotRow) model() bri.Snapshot {
	snap := r.Snapshot
	snap.ContributingFactors = make([]bri.Factor, len(r.Factors))
	for i, f := range r.Factors {
		snap.ContributingFactors[i] = bri.Factor(f)
	}
	return snap
}

func factorStrings(factors []bri.Factor) pq.StringArray {
	arr := make(pq.StringArray, len(factors))
	for i, f := range factors {
		arr[i] = string(f)
	}
	return arr
}

func (repo snapshotRepository) UpsertSnapshot(ctx context.Context, snap bri.Snapshot) (bri.Snapshot, error) {
	if snap.ID == uuid.Nil {
		snap.ID = uuid.New()
	}
	now := time.Now().UTC()

	// the conflict path keeps the original row's id and created_at
	q := `INSERT INTO bri_snapshot (id, student_id, week_start_date, bri_score, risk_level, contributing_factors, created_at, updated_at)
          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
          ON CONFLICT (student_id, week_start_date) DO UPDATE
              SET bri_score = EXCLUDED.bri_score,
                  risk_level = EXCLUDED.risk_level,
                  contributing_factors = EXCLUDED.contributing_factors,
                  updated_at = EXCLUDED.updated_at
          RETURNING *`
	var row snapshotRow
	err := repo.db.GetContext(ctx, &row, q,
		snap.ID, snap.StudentID, snap.WeekStartDate, snap.Score, snap.RiskLevel,
		factorStrings(snap.ContributingFactors), now, now,
	)
	if err != nil {
		return bri.Snapshot{}, errors.Wrap(err, "upserting snapshot")
	}
	return row.model(), nil
}

func (repo snapshotRepository) GetLatestSnapshot(ctx context.Context, studentID string) (bri.Snapshot, error) {
	var row snapshotRow
	q := `SELECT * FROM bri_snapshot WHERE student_id = $1 ORDER BY week_start_date DESC LIMIT 1`
	if err := repo.db.GetContext(ctx, &row, q, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return bri.Snapshot{}, bri.ErrSnapshotNotFound
		}
		return bri.Snapshot{}, errors.Wrap(err, "getting latest snapshot")
	}
	return row.model(), nil
}

func (repo snapshotRepository) QuerySnapshots(ctx context.Context, studentID string, from, to time.Time) ([]bri.Snapshot, error) {
	var rows []snapshotRow
	q := `SELECT * FROM bri_snapshot WHERE student_id = $1 AND week_start_date >= $2 AND week_start_date <= $3
          ORDER BY week_start_date`
	if err := repo.db.SelectContext(ctx, &rows, q, studentID, from, to); err != nil {
		return nil, errors.Wrap(err, "querying snapshots")
	}
	snaps := make([]bri.Snapshot, len(rows))
	for i, row := range rows {
		snaps[i] = row.model()
	}
	return snaps, nil
}
