package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type RunDB struct {
	bun.BaseModel `bun:"table:migration_runs,alias:mr"`

	ID           string             `bun:"id,pk" json:"id"`
	DatabaseName string             `bun:"database_name,notnull" json:"database_name"`
	Schema       *SchemaDescription `bun:"schema,type:jsonb" json:"schema"`
	Status       RunStatus          `bun:"status,notnull,default:'pending'" json:"status"`
	CreatedAt    time.Time          `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt    time.Time          `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

type StageResultDB struct {
	bun.BaseModel `bun:"table:stage_results,alias:sr"`

	ID         uuid.UUID       `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	RunID      string          `bun:"run_id,notnull,unique:run_stage" json:"run_id"`
	Run        *RunDB          `bun:"rel:belongs-to,join:run_id=id,on_delete:CASCADE"`
	Stage      StageName       `bun:"stage,notnull,unique:run_stage" json:"stage"`
	Status     StageStatus     `bun:"status,notnull" json:"status"`
	Narrative  string          `bun:"narrative" json:"narrative"`
	Structured json.RawMessage `bun:"structured,type:jsonb" json:"structured,omitempty"`
	Error      *string         `bun:"error" json:"error,omitempty"`
	StartedAt  time.Time       `bun:"started_at,notnull" json:"started_at"`
	DurationMs int64           `bun:"duration_ms,notnull" json:"duration_ms"`
}

func (r *StageResultDB) ToStageResult() StageResult {
	res := StageResult{
		Stage:      r.Stage,
		Status:     r.Status,
		Narrative:  r.Narrative,
		Structured: r.Structured,
		StartedAt:  r.StartedAt,
		DurationMs: r.DurationMs,
	}
	if r.Error != nil {
		res.Error = *r.Error
	}
	return res
}

func StageResultFromApp(runID string, res StageResult) *StageResultDB {
	db := &StageResultDB{
		RunID:      runID,
		Stage:      res.Stage,
		Status:     res.Status,
		Narrative:  res.Narrative,
		Structured: res.Structured,
		StartedAt:  res.StartedAt,
		DurationMs: res.DurationMs,
	}
	if res.Error != "" {
		db.Error = &res.Error
	}
	return db
}

func (r *RunDB) ToPipelineRun(results []*StageResultDB) *PipelineRun {
	run := &PipelineRun{
		ID:        r.ID,
		Schema:    r.Schema,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	for _, res := range results {
		run.Results = append(run.Results, res.ToStageResult())
	}
	return run
}

func RunFromApp(run *PipelineRun) *RunDB {
	return &RunDB{
		ID:           run.ID,
		DatabaseName: run.Schema.DatabaseName,
		Schema:       run.Schema,
		Status:       run.Status,
		CreatedAt:    run.CreatedAt,
		UpdatedAt:    run.UpdatedAt,
	}
}
