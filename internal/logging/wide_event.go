package logging

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// RunEvent is a single structured log record capturing the full lifecycle of
// one pipeline run. It is populated incrementally as stages complete and
// emitted once at the end of the run.
type RunEvent struct {
	TraceID      string    `json:"trace_id"`
	RunID        string    `json:"run_id"`
	DatabaseName string    `json:"database_name"`
	TableCount   int       `json:"table_count"`
	StartedAt    time.Time `json:"started_at"`

	Stages []StageMetric `json:"stages"`

	Status       string `json:"status"`
	StagesFailed int    `json:"stages_failed"`
	DurationMs   int64  `json:"duration_ms"`
}

type StageMetric struct {
	Stage      string `json:"stage"`
	Status     string `json:"status"`
	DurationMs int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

func NewRunEvent(runID, databaseName string, tableCount int) *RunEvent {
	return &RunEvent{
		TraceID:      uuid.New().String(),
		RunID:        runID,
		DatabaseName: databaseName,
		TableCount:   tableCount,
		StartedAt:    time.Now().UTC(),
	}
}

func (e *RunEvent) RecordStage(stage, status string, durationMs int64, errMsg string) {
	e.Stages = append(e.Stages, StageMetric{
		Stage:      stage,
		Status:     status,
		DurationMs: durationMs,
		Error:      errMsg,
	})
	if errMsg != "" {
		e.StagesFailed++
	}
}

func (e *RunEvent) Finish(status string) {
	e.Status = status
	e.DurationMs = time.Since(e.StartedAt).Milliseconds()
}

func (e *RunEvent) Emit(log *slog.Logger) {
	log.Info("pipeline run",
		"trace_id", e.TraceID,
		"run_id", e.RunID,
		"database_name", e.DatabaseName,
		"table_count", e.TableCount,
		"status", e.Status,
		"stages_attempted", len(e.Stages),
		"stages_failed", e.StagesFailed,
		"duration_ms", e.DurationMs,
	)
}
