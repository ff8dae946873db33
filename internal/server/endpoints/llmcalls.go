package endpoints

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/primer/internal/api"
	"github.com/jackzampolin/primer/internal/llmcall"
	"github.com/jackzampolin/primer/internal/svcctx"
)

// LLMCallsResponse contains recent transformer calls, newest first.
type LLMCallsResponse struct {
	Calls []*llmcall.Call `json:"calls"`
	Total int64           `json:"total"`
}

// ListLLMCallsEndpoint handles GET /api/llmcalls.
type ListLLMCallsEndpoint struct{}

var _ api.Endpoint = (*ListLLMCallsEndpoint)(nil)

func (e *ListLLMCallsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/llmcalls", e.handler
}

func (e *ListLLMCallsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	recorder := svcctx.RecorderFrom(r.Context())
	if recorder == nil {
		writeError(w, http.StatusServiceUnavailable, "call recorder not initialized")
		return
	}

	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit: %q must be a positive integer", v))
			return
		}
		limit = n
	}

	writeJSON(w, http.StatusOK, LLMCallsResponse{
		Calls: recorder.Recent(limit),
		Total: recorder.Total(),
	})
}

func (e *ListLLMCallsEndpoint) Command(getServerURL func() string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent transformer calls",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			path := "/api/llmcalls"
			if limit > 0 {
				path += "?limit=" + strconv.Itoa(limit)
			}
			var resp LLMCallsResponse
			if err := client.Get(cmd.Context(), path, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 100, "Max results")
	return cmd
}
