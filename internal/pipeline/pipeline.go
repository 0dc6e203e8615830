package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mongrate/mongrate/internal/logging"
	"github.com/mongrate/mongrate/internal/models"
	"github.com/mongrate/mongrate/internal/services"
)

// PlaceholderNarrative marks a stage whose model call failed. The artifact for
// that stage carries this text instead of a completion.
const PlaceholderNarrative = "(stage failed; no model output was produced)"

// StageRecorder persists run progress. Recording failures are logged and do
// not interrupt the run; the artifacts on disk remain the source of truth.
type StageRecorder interface {
	RunStarted(ctx context.Context, run *models.PipelineRun) error
	StageRecorded(ctx context.Context, runID string, result models.StageResult) error
	RunFinished(ctx context.Context, run *models.PipelineRun) error
}

type Pipeline struct {
	client       services.AIClient
	stages       []Stage
	stageTimeout time.Duration
	log          *slog.Logger
	recorder     StageRecorder
}

type Option func(*Pipeline)

func WithStages(stages []Stage) Option {
	return func(p *Pipeline) { p.stages = stages }
}

func WithStageTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.stageTimeout = d }
}

func WithLogger(log *slog.Logger) Option {
	return func(p *Pipeline) { p.log = log }
}

func WithRecorder(r StageRecorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

func New(client services.AIClient, opts ...Option) *Pipeline {
	p := &Pipeline{
		client:       client,
		stages:       DefaultStages(),
		stageTimeout: 2 * time.Minute,
		log:          slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes all four stages in order. A stage failure is recorded on the
// run and execution continues with the next stage; the returned error is
// non-nil only when the schema itself is invalid.
func (p *Pipeline) Run(ctx context.Context, s *models.SchemaDescription) (*models.PipelineRun, error) {
	return p.RunThrough(ctx, s, models.StageDocument)
}

// RunWithID is Run with a caller-chosen run ID, for callers that need the ID
// before the run finishes (the HTTP API starts runs in the background).
func (p *Pipeline) RunWithID(ctx context.Context, runID string, s *models.SchemaDescription) (*models.PipelineRun, error) {
	return p.runThrough(ctx, runID, s, models.StageDocument)
}

// RunThrough executes the stage prefix up to and including the named stage.
// Later stages depend textually on every earlier output, so "run one stage"
// means running its prefix.
func (p *Pipeline) RunThrough(ctx context.Context, s *models.SchemaDescription, last models.StageName) (*models.PipelineRun, error) {
	return p.runThrough(ctx, uuid.New().String(), s, last)
}

func (p *Pipeline) runThrough(ctx context.Context, runID string, s *models.SchemaDescription, last models.StageName) (*models.PipelineRun, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if !validStageName(last) {
		return nil, fmt.Errorf("unknown stage %q", last)
	}

	now := time.Now().UTC()
	run := &models.PipelineRun{
		ID:        runID,
		Schema:    s,
		Status:    models.RunStatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}

	event := logging.NewRunEvent(run.ID, s.DatabaseName, len(s.Tables))

	if p.recorder != nil {
		if err := p.recorder.RunStarted(ctx, run); err != nil {
			p.log.Error("failed to persist run start", "run_id", run.ID, "error", err)
		}
	}

	for _, stage := range p.stages {
		result := p.runStage(ctx, stage, run)
		run.Results = append(run.Results, result)
		run.UpdatedAt = time.Now().UTC()

		event.RecordStage(string(result.Stage), string(result.Status), result.DurationMs, result.Error)

		if p.recorder != nil {
			if err := p.recorder.StageRecorded(ctx, run.ID, result); err != nil {
				p.log.Error("failed to persist stage result", "run_id", run.ID, "stage", stage.Name, "error", err)
			}
		}

		if stage.Name == last {
			break
		}
	}

	run.Status = models.RunStatusCompleted
	if len(run.FailedStages()) == run.Attempts() && run.Attempts() > 0 {
		run.Status = models.RunStatusFailed
	}

	if p.recorder != nil {
		if err := p.recorder.RunFinished(ctx, run); err != nil {
			p.log.Error("failed to persist run completion", "run_id", run.ID, "error", err)
		}
	}

	event.Finish(string(run.Status))
	event.Emit(p.log)

	return run, nil
}

func (p *Pipeline) runStage(ctx context.Context, stage Stage, run *models.PipelineRun) models.StageResult {
	started := time.Now().UTC()
	result := models.StageResult{
		Stage:     stage.Name,
		StartedAt: started,
	}

	prompt := stage.Prompt(run.Schema, run.Results)

	stageCtx, cancel := context.WithTimeout(ctx, p.stageTimeout)
	narrative, err := p.client.GenerateContent(stageCtx, prompt)
	cancel()

	if err != nil {
		p.log.Error("stage failed", "run_id", run.ID, "stage", stage.Name, "error", err)
		result.Status = models.StageStatusFailed
		result.Narrative = PlaceholderNarrative
		result.Error = err.Error()
	} else {
		result.Status = models.StageStatusCompleted
		result.Narrative = services.CleanJSONMarkdown(narrative)
	}

	// The structured payload does not depend on the model call, so a failed
	// stage still yields its deterministic part.
	if stage.Derive != nil {
		structured, deriveErr := stage.Derive(run)
		if deriveErr != nil {
			p.log.Error("stage derivation failed", "run_id", run.ID, "stage", stage.Name, "error", deriveErr)
			if result.Error == "" {
				result.Status = models.StageStatusFailed
				result.Error = deriveErr.Error()
			}
		} else if raw, marshalErr := marshalStructured(structured); marshalErr == nil {
			result.Structured = raw
		}
	}

	result.DurationMs = time.Since(started).Milliseconds()

	p.log.Info("stage attempted",
		"run_id", run.ID,
		"stage", stage.Name,
		"status", result.Status,
		"duration_ms", result.DurationMs,
	)

	return result
}

func validStageName(name models.StageName) bool {
	for _, s := range models.StageOrder {
		if s == name {
			return true
		}
	}
	return false
}
