package main

import (
	"fmt"

	"github.com/mongrate/mongrate/internal/artifacts"
	"github.com/mongrate/mongrate/internal/config"
	"github.com/mongrate/mongrate/internal/models"
	"github.com/spf13/cobra"
)

func newStageCmd() *cobra.Command {
	var useSample bool
	var outputDir string

	cmd := &cobra.Command{
		Use:   "stage <analyze|map|plan|document> [schema.json]",
		Short: "Run the pipeline up to and including one stage",
		Long: `Each stage's prompt depends on every earlier stage's output, so running
one stage means running its prefix. Only the named stage's result is printed.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			stageName := models.StageName(args[0])

			cfg := config.Load()
			if outputDir != "" {
				cfg.OutputDir = outputDir
			}

			schema, err := resolveSchema(args[1:], useSample)
			if err != nil {
				return err
			}

			p, _, err := buildPipeline(cfg)
			if err != nil {
				return err
			}

			run, err := p.RunThrough(cmd.Context(), schema, stageName)
			if err != nil {
				return err
			}

			if err := artifacts.NewWriter(cfg.OutputDir).Write(run); err != nil {
				return err
			}

			res := run.Result(stageName)
			if res == nil {
				return fmt.Errorf("stage %s was not attempted", stageName)
			}
			if res.Status == models.StageStatusFailed {
				cmd.Printf("Stage %s failed: %s\n", res.Stage, res.Error)
				return nil
			}
			cmd.Println(res.Narrative)
			return nil
		},
	}

	cmd.Flags().BoolVar(&useSample, "sample", false, "use the built-in e-commerce sample schema")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (default from OUTPUT_DIR)")

	return cmd
}
