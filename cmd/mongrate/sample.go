package main

import (
	"encoding/json"
	"os"

	"github.com/mongrate/mongrate/internal/models"
	"github.com/spf13/cobra"
)

func newSampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sample [file]",
		Short: "Write the built-in e-commerce sample schema to a file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "sample_schema.json"
			if len(args) > 0 {
				path = args[0]
			}

			data, err := json.MarshalIndent(models.SampleSchema(), "", "  ")
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
				return err
			}

			cmd.Printf("Sample schema written to %s\n", path)
			return nil
		},
	}
}
