package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/primer/internal/api"
	"github.com/jackzampolin/primer/internal/ingest"
	"github.com/jackzampolin/primer/internal/segment"
)

// segmentResult is the offline segmentation report.
type segmentResult struct {
	Title    string           `json:"title" yaml:"title"`
	Pages    int              `json:"pages" yaml:"pages"`
	Method   string           `json:"method" yaml:"method"`
	Sections []segmentSection `json:"sections" yaml:"sections"`
}

type segmentSection struct {
	Index     int    `json:"index" yaml:"index"`
	Title     string `json:"title" yaml:"title"`
	StartPage int    `json:"start_page" yaml:"start_page"`
	PageCount int    `json:"page_count" yaml:"page_count"`
}

var segmentCmd = &cobra.Command{
	Use:   "segment <file.pdf>",
	Short: "Segment a PDF into sections without starting a server",
	Long: `Segment extracts page text from a PDF and prints the detected
sections. Useful for checking how a document will be split before
uploading it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelWarn,
		}))

		result, err := ingest.Ingest(ingest.Request{Path: args[0], Logger: logger})
		if err != nil {
			return err
		}

		detected := segment.Detect(result.Pages)
		out := segmentResult{
			Title:    result.Title,
			Pages:    len(result.Pages),
			Method:   string(detected.Method),
			Sections: make([]segmentSection, len(detected.Sections)),
		}
		for i, sec := range detected.Sections {
			out.Sections[i] = segmentSection{
				Index:     i,
				Title:     sec.Title,
				StartPage: sec.StartPageIndex,
				PageCount: len(sec.Pages),
			}
		}
		return api.Output(out)
	},
}

func init() {
	rootCmd.AddCommand(segmentCmd)
}
