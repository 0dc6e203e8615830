package state

import (
	"context"
	"fmt"

	"github.com/mongrate/mongrate/internal/models"
)

// StateManager wraps a Store with the persistence hooks the pipeline calls as
// a run progresses. It is also the pipeline's StageRecorder.
type StateManager struct {
	store Store
}

func NewStateManager(store Store) *StateManager {
	return &StateManager{store: store}
}

func (m *StateManager) RunStarted(ctx context.Context, run *models.PipelineRun) error {
	if err := m.store.CreateRun(ctx, run); err != nil {
		return fmt.Errorf("failed to record run start: %w", err)
	}
	return nil
}

func (m *StateManager) StageRecorded(ctx context.Context, runID string, result models.StageResult) error {
	if err := m.store.SaveStageResult(ctx, runID, result); err != nil {
		return fmt.Errorf("failed to record stage result: %w", err)
	}
	return nil
}

func (m *StateManager) RunFinished(ctx context.Context, run *models.PipelineRun) error {
	if err := m.store.SetRunStatus(ctx, run.ID, run.Status); err != nil {
		return fmt.Errorf("failed to record run completion: %w", err)
	}
	return nil
}

func (m *StateManager) GetRun(ctx context.Context, runID string) (*models.PipelineRun, error) {
	return m.store.GetRun(ctx, runID)
}

func (m *StateManager) ListRuns(ctx context.Context, offset, limit int) ([]*models.PipelineRun, error) {
	return m.store.ListRuns(ctx, offset, limit)
}
