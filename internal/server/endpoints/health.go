package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/primer/internal/api"
	"github.com/jackzampolin/primer/internal/svcctx"
)

// HealthResponse is the response for the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// HealthEndpoint handles GET /health.
type HealthEndpoint struct{}

var _ api.Endpoint = (*HealthEndpoint)(nil)

func (e *HealthEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/health", e.handler
}

func (e *HealthEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (e *HealthEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp HealthResponse
			if err := client.Get(cmd.Context(), "/health", &resp); err != nil {
				return err
			}
			fmt.Printf("Status: %s\n", resp.Status)
			return nil
		},
	}
}

// StatusResponse is the detailed status response.
type StatusResponse struct {
	Server    string   `json:"server"`
	Providers []string `json:"providers"`
	Documents int      `json:"documents"`
	LLMCalls  int64    `json:"llm_calls"`
}

// StatusEndpoint handles GET /status.
type StatusEndpoint struct{}

var _ api.Endpoint = (*StatusEndpoint)(nil)

func (e *StatusEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/status", e.handler
}

func (e *StatusEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{Server: "running"}

	if registry := svcctx.RegistryFrom(r.Context()); registry != nil {
		resp.Providers = registry.List()
	}
	if sessions := svcctx.SessionsFrom(r.Context()); sessions != nil {
		resp.Documents = sessions.Count()
	}
	if recorder := svcctx.RecorderFrom(r.Context()); recorder != nil {
		resp.LLMCalls = recorder.Total()
	}

	writeJSON(w, http.StatusOK, resp)
}

func (e *StatusEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Get detailed server status",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp StatusResponse
			if err := client.Get(cmd.Context(), "/status", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ErrorResponse is a standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
