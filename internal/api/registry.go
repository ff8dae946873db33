package api

import (
	"net/http"

	"github.com/spf13/cobra"
)

// Registry holds all registered endpoints.
type Registry struct {
	endpoints []Endpoint
}

// NewRegistry creates a new endpoint registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds an endpoint to the registry.
func (r *Registry) Register(ep Endpoint) {
	r.endpoints = append(r.endpoints, ep)
}

// RegisterRoutes registers all endpoint HTTP routes with the given mux.
// middleware wraps every handler (services injection, logging).
func (r *Registry) RegisterRoutes(mux *http.ServeMux, middleware func(http.HandlerFunc) http.HandlerFunc) {
	for _, ep := range r.endpoints {
		method, path, handler := ep.Route()
		if middleware != nil {
			handler = middleware(handler)
		}
		mux.HandleFunc(method+" "+path, handler)
	}
}

// BuildCommands returns a cobra.Command tree for all registered endpoints.
// Commands are organized by their URL path structure.
// getServerURL is called at runtime to get the server URL.
func (r *Registry) BuildCommands(getServerURL func() string) *cobra.Command {
	apiCmd := &cobra.Command{
		Use:   "api",
		Short: "Commands that call the running server",
		Long: `API commands call the running Primer server via HTTP.

These commands require a running server (primer serve).
Use --server to specify a custom server URL.

Examples:
  primer api health                  # Check server health
  primer api documents upload x.pdf  # Ingest a document
  primer api sections list <doc-id>  # Show section pipeline status`,
	}

	for _, ep := range r.endpoints {
		apiCmd.AddCommand(ep.Command(getServerURL))
	}

	return apiCmd
}

// Endpoints returns all registered endpoints.
func (r *Registry) Endpoints() []Endpoint {
	return r.endpoints
}
