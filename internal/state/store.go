package state

import (
	"context"

	"github.com/mongrate/mongrate/internal/models"
)

type Store interface {
	CreateRun(ctx context.Context, run *models.PipelineRun) error
	SetRunStatus(ctx context.Context, runID string, status models.RunStatus) error
	SaveStageResult(ctx context.Context, runID string, result models.StageResult) error
	GetRun(ctx context.Context, runID string) (*models.PipelineRun, error)
	ListRuns(ctx context.Context, offset, limit int) ([]*models.PipelineRun, error)
	Close() error
}
