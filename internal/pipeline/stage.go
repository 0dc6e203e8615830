package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/mongrate/mongrate/internal/docs"
	"github.com/mongrate/mongrate/internal/mapping"
	"github.com/mongrate/mongrate/internal/models"
	"github.com/mongrate/mongrate/internal/plan"
	"github.com/mongrate/mongrate/internal/schema"
	"github.com/mongrate/mongrate/internal/services"
)

// Stage is one configured step of the pipeline. The four stages share this one
// shape and differ only in their prompt builder and structured deriver.
type Stage struct {
	Name   models.StageName
	Prompt services.PromptBuilder

	// Derive computes the stage's structured payload from the run so far.
	// It is deterministic and independent of the model call.
	Derive func(run *models.PipelineRun) (any, error)
}

// DefaultStages returns the fixed stage sequence {analyze, map, plan, document}.
func DefaultStages() []Stage {
	return []Stage{
		{
			Name:   models.StageAnalyze,
			Prompt: services.BuildAnalyzePrompt,
			Derive: func(run *models.PipelineRun) (any, error) {
				return schema.Analyze(run.Schema), nil
			},
		},
		{
			Name:   models.StageMap,
			Prompt: services.BuildMapPrompt,
			Derive: func(run *models.PipelineRun) (any, error) {
				analysis := schema.Analyze(run.Schema)
				return mapping.Map(run.Schema, analysis), nil
			},
		},
		{
			Name:   models.StagePlan,
			Prompt: services.BuildPlanPrompt,
			Derive: func(run *models.PipelineRun) (any, error) {
				analysis := schema.Analyze(run.Schema)
				m := mapping.Map(run.Schema, analysis)
				return plan.Build(run.Schema, analysis, m), nil
			},
		},
		{
			Name:   models.StageDocument,
			Prompt: services.BuildDocumentPrompt,
			Derive: func(run *models.PipelineRun) (any, error) {
				analysis := schema.Analyze(run.Schema)
				m := mapping.Map(run.Schema, analysis)
				p := plan.Build(run.Schema, analysis, m)
				return docs.Generate(run.Schema, analysis, m, p, run.CreatedAt), nil
			},
		},
	}
}

func marshalStructured(v any) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal structured payload: %w", err)
	}
	return data, nil
}
