package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/primer/internal/api"
	"github.com/jackzampolin/primer/version"
)

var (
	cfgFile      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "primer",
	Short: "Progressive reading pipeline for PDF documents",
	Long: `Primer turns PDF documents into progressively delivered learning
units. Documents are split into sections, and each section is rewritten
into small content chunks by an LLM as the reader approaches it.

The pipeline includes:
  - Heading-based section detection with a windowed fallback
  - Batched LLM transformation into typed content units
  - Loose JSON decoding that repairs malformed model output
  - Read-ahead scheduling so the next section is ready before it's opened`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.primer/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}
