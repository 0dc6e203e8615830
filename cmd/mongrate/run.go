package main

import (
	"encoding/json"
	"fmt"

	"github.com/mongrate/mongrate/internal/artifacts"
	"github.com/mongrate/mongrate/internal/config"
	"github.com/mongrate/mongrate/internal/logger"
	"github.com/mongrate/mongrate/internal/models"
	"github.com/mongrate/mongrate/internal/pipeline"
	"github.com/mongrate/mongrate/internal/plan"
	"github.com/mongrate/mongrate/internal/services"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var useSample bool
	var outputDir string

	cmd := &cobra.Command{
		Use:   "run [schema.json]",
		Short: "Run the full migration pipeline over a schema",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if outputDir != "" {
				cfg.OutputDir = outputDir
			}

			schema, err := resolveSchema(args, useSample)
			if err != nil {
				return err
			}

			p, tracker, err := buildPipeline(cfg)
			if err != nil {
				return err
			}

			run, err := p.Run(cmd.Context(), schema)
			if err != nil {
				return err
			}

			if err := artifacts.NewWriter(cfg.OutputDir).Write(run); err != nil {
				return err
			}

			printSummary(cmd, run, cfg.OutputDir, tracker)
			return nil
		},
	}

	cmd.Flags().BoolVar(&useSample, "sample", false, "use the built-in e-commerce sample schema")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (default from OUTPUT_DIR)")

	return cmd
}

func resolveSchema(args []string, useSample bool) (*models.SchemaDescription, error) {
	if useSample {
		return models.SampleSchema(), nil
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("a schema file is required (or pass --sample)")
	}
	return models.LoadSchema(args[0])
}

func buildPipeline(cfg *config.Config, extra ...pipeline.Option) (*pipeline.Pipeline, *services.CostTracker, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	tracker := services.NewCostTracker()
	client, err := services.NewGeminiAIClient(
		services.WithModel(cfg.ModelName),
		services.WithTemperature(cfg.Temperature),
		services.WithCostTracker(tracker),
	)
	if err != nil {
		return nil, nil, err
	}

	opts := []pipeline.Option{
		pipeline.WithStageTimeout(cfg.StageTimeout),
		pipeline.WithLogger(logger.Log),
	}
	opts = append(opts, extra...)

	return pipeline.New(client, opts...), tracker, nil
}

func printSummary(cmd *cobra.Command, run *models.PipelineRun, outputDir string, tracker *services.CostTracker) {
	cmd.Printf("Run %s: %d stages attempted, %d failed\n", run.ID, run.Attempts(), len(run.FailedStages()))

	if res := run.Result(models.StagePlan); res != nil && len(res.Structured) > 0 {
		var p plan.Plan
		if err := json.Unmarshal(res.Structured, &p); err == nil {
			cmd.Printf("  Tables to migrate:     %d\n", p.Overview.TotalTables)
			cmd.Printf("  Collections to create: %d\n", p.Overview.TotalCollections)
			cmd.Printf("  Complexity level:      %s\n", p.Overview.ComplexityLevel)
			cmd.Printf("  Estimated duration:    %s\n", p.Timeline.TotalDuration)
			cmd.Printf("  Risk level:            %s\n", p.RiskAssessment.OverallRiskLevel)
		}
	}

	if tracker != nil {
		in, out, calls := tracker.Usage()
		cmd.Printf("  Model calls: %d (%d tokens in, %d tokens out)\n", calls, in, out)
	}

	cmd.Printf("  Artifacts written to %s\n", outputDir)
}
