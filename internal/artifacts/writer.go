package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mongrate/mongrate/internal/docs"
	"github.com/mongrate/mongrate/internal/models"
	"github.com/mongrate/mongrate/internal/plan"
)

// Fixed artifact names for the three structured stages.
const (
	SchemaAnalysisFile = "schema_analysis.json"
	DataMappingFile    = "data_mapping.json"
	MigrationPlanFile  = "migration_plan.json"
	RunSummaryFile     = "run_summary.json"
)

var stageFiles = map[models.StageName]string{
	models.StageAnalyze: SchemaAnalysisFile,
	models.StageMap:     DataMappingFile,
	models.StagePlan:    MigrationPlanFile,
}

// Writer persists a completed or partial run to a flat output directory.
// Existing files are overwritten unconditionally; writing the same run twice
// produces byte-identical output.
type Writer struct {
	outputDir string
}

func NewWriter(outputDir string) *Writer {
	return &Writer{outputDir: outputDir}
}

// Write emits every artifact for the run. A failed write is fatal only to
// that artifact; the remaining files are still attempted and the first error
// is returned.
func (w *Writer) Write(run *models.PipelineRun) error {
	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	for stage, filename := range stageFiles {
		if res := run.Result(stage); res != nil {
			record(w.writeStageJSON(filename, res))
		}
	}

	if res := run.Result(models.StageDocument); res != nil {
		record(w.writeDocuments(res))
	}
	if res := run.Result(models.StagePlan); res != nil {
		record(w.writeScripts(res))
	}

	record(w.writeSummary(run))

	return firstErr
}

// writeStageJSON merges the stage's structured payload with its narrative and
// status into one JSON document. Map marshaling sorts keys, so the bytes are
// stable across writes.
func (w *Writer) writeStageJSON(filename string, res *models.StageResult) error {
	doc := map[string]any{}
	if len(res.Structured) > 0 {
		if err := json.Unmarshal(res.Structured, &doc); err != nil {
			return fmt.Errorf("failed to decode structured payload for %s: %w", res.Stage, err)
		}
	}
	doc["narrative"] = res.Narrative
	doc["stage_status"] = res.Status
	if res.Error != "" {
		doc["stage_error"] = res.Error
	}

	return w.writeJSON(filename, doc)
}

func (w *Writer) writeDocuments(res *models.StageResult) error {
	var set docs.DocumentSet
	if len(res.Structured) > 0 {
		if err := json.Unmarshal(res.Structured, &set); err != nil {
			return fmt.Errorf("failed to decode document set: %w", err)
		}
	}

	var firstErr error
	for name, content := range set {
		if err := w.writeFile(name+".md", []byte(content)); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (w *Writer) writeScripts(res *models.StageResult) error {
	var p plan.Plan
	if len(res.Structured) == 0 {
		return nil
	}
	if err := json.Unmarshal(res.Structured, &p); err != nil {
		return fmt.Errorf("failed to decode migration plan: %w", err)
	}

	var firstErr error
	write := func(scripts []plan.Script) {
		for _, s := range scripts {
			if err := w.writeFile(s.Filename, []byte(s.Content)); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	write(p.Scripts.SetupScripts)
	write(p.Scripts.MigrationScripts)
	write(p.Scripts.ValidationScripts)
	return firstErr
}

func (w *Writer) writeSummary(run *models.PipelineRun) error {
	summary := map[string]any{
		"run_id":           run.ID,
		"database_name":    run.Schema.DatabaseName,
		"total_tables":     len(run.Schema.Tables),
		"stages_attempted": run.Attempts(),
		"stages_failed":    len(run.FailedStages()),
		"status":           run.Status,
		"created_at":       run.CreatedAt,
	}

	if res := run.Result(models.StagePlan); res != nil && len(res.Structured) > 0 {
		var p plan.Plan
		if err := json.Unmarshal(res.Structured, &p); err == nil {
			summary["total_collections"] = p.Overview.TotalCollections
			summary["complexity_level"] = p.Overview.ComplexityLevel
			summary["estimated_duration"] = p.Timeline.TotalDuration
			summary["migration_phases"] = len(p.Phases)
			summary["risk_level"] = p.RiskAssessment.OverallRiskLevel
		}
	}

	return w.writeJSON(RunSummaryFile, summary)
}

func (w *Writer) writeJSON(filename string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filename, err)
	}
	return w.writeFile(filename, append(data, '\n'))
}

func (w *Writer) writeFile(filename string, data []byte) error {
	path := filepath.Join(w.outputDir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write artifact %s: %w", filename, err)
	}
	return nil
}
