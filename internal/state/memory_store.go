package state

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mongrate/mongrate/internal/models"
)

// MemoryStore backs the CLI and the tests; runs live only for the process.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[string]*models.PipelineRun
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[string]*models.PipelineRun)}
}

func (s *MemoryStore) CreateRun(ctx context.Context, run *models.PipelineRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.runs[run.ID]; exists {
		return fmt.Errorf("run %s already exists", run.ID)
	}
	s.runs[run.ID] = cloneRun(run)
	return nil
}

func (s *MemoryStore) SetRunStatus(ctx context.Context, runID string, status models.RunStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[runID]
	if !ok {
		return fmt.Errorf("run %s not found", runID)
	}
	run.Status = status
	run.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) SaveStageResult(ctx context.Context, runID string, result models.StageResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[runID]
	if !ok {
		return fmt.Errorf("run %s not found", runID)
	}
	run.Results = append(run.Results, result)
	run.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) GetRun(ctx context.Context, runID string) (*models.PipelineRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[runID]
	if !ok {
		return nil, fmt.Errorf("run %s not found", runID)
	}
	return cloneRun(run), nil
}

func (s *MemoryStore) ListRuns(ctx context.Context, offset, limit int) ([]*models.PipelineRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]*models.PipelineRun, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, cloneRun(run))
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})

	if offset < 0 {
		offset = 0
	}
	if offset >= len(runs) {
		return nil, nil
	}
	runs = runs[offset:]
	if limit > 0 && limit < len(runs) {
		runs = runs[:limit]
	}
	return runs, nil
}

func (s *MemoryStore) Close() error {
	return nil
}

func cloneRun(run *models.PipelineRun) *models.PipelineRun {
	clone := *run
	clone.Results = append([]models.StageResult(nil), run.Results...)
	return &clone
}
