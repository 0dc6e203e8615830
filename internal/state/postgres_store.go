package state

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mongrate/mongrate/internal/models"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

type PostgresStore struct {
	db *bun.DB
}

func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(connectionString)))

	db := bun.NewDB(sqldb, pgdialect.New())

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)

	store := &PostgresStore{db: db}

	ctx := context.Background()
	if err := store.InitializeDatabase(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

func (s *PostgresStore) InitializeDatabase(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*models.RunDB)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create migration_runs table: %w", err)
	}

	_, err = s.db.NewCreateTable().
		Model((*models.StageResultDB)(nil)).
		IfNotExists().
		ForeignKey(`("run_id") REFERENCES "migration_runs" ("id") ON DELETE CASCADE`).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create stage_results table: %w", err)
	}

	_, err = s.db.NewCreateIndex().
		Model((*models.StageResultDB)(nil)).
		Index("idx_stage_results_run_id").
		Column("run_id").
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create run_id index: %w", err)
	}

	_, err = s.db.NewCreateIndex().
		Model((*models.RunDB)(nil)).
		Index("idx_migration_runs_status").
		Column("status").
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create status index: %w", err)
	}

	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, run *models.PipelineRun) error {
	_, err := s.db.NewInsert().
		Model(models.RunFromApp(run)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

func (s *PostgresStore) SetRunStatus(ctx context.Context, runID string, status models.RunStatus) error {
	_, err := s.db.NewUpdate().
		Model((*models.RunDB)(nil)).
		Set("status = ?", status).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", runID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update run status: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveStageResult(ctx context.Context, runID string, result models.StageResult) error {
	_, err := s.db.NewInsert().
		Model(models.StageResultFromApp(runID, result)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert stage result: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*models.PipelineRun, error) {
	runDB := new(models.RunDB)
	err := s.db.NewSelect().
		Model(runDB).
		Where("id = ?", runID).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("run %s not found", runID)
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var results []*models.StageResultDB
	err = s.db.NewSelect().
		Model(&results).
		Where("run_id = ?", runID).
		Order("started_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get stage results: %w", err)
	}

	return runDB.ToPipelineRun(results), nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, offset, limit int) ([]*models.PipelineRun, error) {
	var runDBs []*models.RunDB
	query := s.db.NewSelect().
		Model(&runDBs).
		Order("created_at DESC").
		Offset(offset)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	runs := make([]*models.PipelineRun, 0, len(runDBs))
	for _, runDB := range runDBs {
		runs = append(runs, runDB.ToPipelineRun(nil))
	}
	return runs, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
