package models

import (
	"encoding/json"
	"time"
)

type StageName string

const (
	StageAnalyze  StageName = "analyze"
	StageMap      StageName = "map"
	StagePlan     StageName = "plan"
	StageDocument StageName = "document"
)

// StageOrder is the fixed execution order of the pipeline. Stage N+1 never
// starts before stage N's result is recorded.
var StageOrder = []StageName{StageAnalyze, StageMap, StagePlan, StageDocument}

type StageStatus string

const (
	StageStatusCompleted StageStatus = "completed"
	StageStatusFailed    StageStatus = "failed"
)

type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// StageResult is the output of a single stage attempt. Results are append-only:
// once recorded on a run they are never mutated.
type StageResult struct {
	Stage      StageName       `json:"stage"`
	Status     StageStatus     `json:"status"`
	Narrative  string          `json:"narrative"`
	Structured json.RawMessage `json:"structured,omitempty"`
	Error      string          `json:"error,omitempty"`
	StartedAt  time.Time       `json:"started_at"`
	DurationMs int64           `json:"duration_ms"`
}

// PipelineRun accumulates stage results for one execution. A run is complete
// when all four stages have been attempted; success is "four attempted", not
// "four succeeded".
type PipelineRun struct {
	ID        string             `json:"id"`
	Schema    *SchemaDescription `json:"schema"`
	Results   []StageResult      `json:"results"`
	Status    RunStatus          `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func (r *PipelineRun) Attempts() int {
	return len(r.Results)
}

func (r *PipelineRun) Result(stage StageName) *StageResult {
	for i := range r.Results {
		if r.Results[i].Stage == stage {
			return &r.Results[i]
		}
	}
	return nil
}

func (r *PipelineRun) FailedStages() []StageName {
	var failed []StageName
	for _, res := range r.Results {
		if res.Status == StageStatusFailed {
			failed = append(failed, res.Stage)
		}
	}
	return failed
}
