package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "mongrate",
		Short: "SQL to MongoDB migration advisor",
		Long: `mongrate runs a four-stage LLM pipeline (analyze, map, plan, document)
over a SQL schema description and writes a set of migration advisory
artifacts: structured analyses, documentation and script stubs.`,
		SilenceUsage: true,
	}

	root.AddCommand(newRunCmd())
	root.AddCommand(newStageCmd())
	root.AddCommand(newSampleCmd())
	root.AddCommand(newServeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
