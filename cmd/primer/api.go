package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/primer/internal/server/endpoints"
)

var serverURL string

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Commands that call the running server",
	Long: `API commands call the running Primer server via HTTP.

These commands require a running server (primer serve).
Use --server to specify a custom server URL.

Examples:
  primer api health                      # Check server health
  primer api documents upload book.pdf   # Ingest a document
  primer api sections get <doc-id> 2     # Read section 2`,
}

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "Document management commands",
}

var readerCmd = &cobra.Command{
	Use:   "reader",
	Short: "Reading session commands",
}

var sectionsCmd = &cobra.Command{
	Use:   "sections",
	Short: "Section pipeline commands",
}

var llmcallsCmd = &cobra.Command{
	Use:   "llmcalls",
	Short: "LLM call history commands",
}

// getServerURL returns the server URL at runtime (after flag parsing).
func getServerURL() string {
	return serverURL
}

func init() {
	// Add --server flag to api command (persistent so all subcommands inherit it)
	apiCmd.PersistentFlags().StringVar(
		&serverURL, "server", "http://localhost:8090", "Server URL",
	)

	// Health endpoints at top level of api
	apiCmd.AddCommand((&endpoints.HealthEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.StatusEndpoint{}).Command(getServerURL))

	// Documents as subcommand group
	documentsCmd.AddCommand((&endpoints.UploadDocumentEndpoint{}).Command(getServerURL))
	documentsCmd.AddCommand((&endpoints.ListDocumentsEndpoint{}).Command(getServerURL))
	documentsCmd.AddCommand((&endpoints.GetDocumentEndpoint{}).Command(getServerURL))
	documentsCmd.AddCommand((&endpoints.DeleteDocumentEndpoint{}).Command(getServerURL))

	// Reader as subcommand group
	readerCmd.AddCommand((&endpoints.CreateReaderEndpoint{}).Command(getServerURL))

	// Sections as subcommand group
	sectionsCmd.AddCommand((&endpoints.ListSectionsEndpoint{}).Command(getServerURL))
	sectionsCmd.AddCommand((&endpoints.GetSectionEndpoint{}).Command(getServerURL))

	// LLM calls as subcommand group
	llmcallsCmd.AddCommand((&endpoints.ListLLMCallsEndpoint{}).Command(getServerURL))

	apiCmd.AddCommand(documentsCmd)
	apiCmd.AddCommand(readerCmd)
	apiCmd.AddCommand(sectionsCmd)
	apiCmd.AddCommand(llmcallsCmd)
	rootCmd.AddCommand(apiCmd)
}
