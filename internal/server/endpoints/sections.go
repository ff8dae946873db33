package endpoints

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/primer/internal/api"
	"github.com/jackzampolin/primer/internal/pipeline"
	"github.com/jackzampolin/primer/internal/svcctx"
	"github.com/jackzampolin/primer/internal/types"
)

// SectionContent is a transformed section ready for reading.
type SectionContent struct {
	Index int                 `json:"index"`
	Title string              `json:"title"`
	Pages types.SectionResult `json:"pages"`
}

// SectionsResponse reports pipeline state for every section.
type SectionsResponse struct {
	DocumentID string                   `json:"document_id"`
	Mode       string                   `json:"mode"`
	Sections   []pipeline.SectionStatus `json:"sections"`
}

// ListSectionsEndpoint handles GET /api/documents/{id}/sections.
type ListSectionsEndpoint struct{}

var _ api.Endpoint = (*ListSectionsEndpoint)(nil)

func (e *ListSectionsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/documents/{id}/sections", e.handler
}

func (e *ListSectionsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	sessions := svcctx.SessionsFrom(r.Context())
	if sessions == nil {
		writeError(w, http.StatusServiceUnavailable, "session store not initialized")
		return
	}

	doc, err := sessions.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if doc.Reader == nil {
		writeError(w, http.StatusConflict, "no reading mode selected for document")
		return
	}

	writeJSON(w, http.StatusOK, SectionsResponse{
		DocumentID: doc.ID,
		Mode:       string(doc.Reader.Mode()),
		Sections:   doc.Reader.Status(),
	})
}

func (e *ListSectionsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "list <doc-id>",
		Short: "Show pipeline state for every section",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp SectionsResponse
			if err := client.Get(cmd.Context(), "/api/documents/"+args[0]+"/sections", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// GetSectionEndpoint handles GET /api/documents/{id}/sections/{n}.
// Reading a section blocks until it is ready and kicks off a prefetch
// of the next one.
type GetSectionEndpoint struct{}

var _ api.Endpoint = (*GetSectionEndpoint)(nil)

func (e *GetSectionEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/documents/{id}/sections/{n}", e.handler
}

func (e *GetSectionEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	sessions := svcctx.SessionsFrom(r.Context())
	if sessions == nil {
		writeError(w, http.StatusServiceUnavailable, "session store not initialized")
		return
	}

	doc, err := sessions.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if doc.Reader == nil {
		writeError(w, http.StatusConflict, "no reading mode selected for document")
		return
	}

	n, err := strconv.Atoi(r.PathValue("n"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid section index: %q", r.PathValue("n")))
		return
	}
	if n < 0 || n >= doc.Reader.SectionCount() {
		writeError(w, http.StatusNotFound, fmt.Sprintf("section %d out of range", n))
		return
	}

	result, err := doc.Reader.Ensure(r.Context(), n)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("section %d failed: %v", n, err))
		return
	}
	doc.Reader.Enter(r.Context(), n)

	writeJSON(w, http.StatusOK, SectionContent{
		Index: n,
		Title: doc.Sections[n].Title,
		Pages: result,
	})
}

func (e *GetSectionEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <doc-id> <n>",
		Short: "Read a section, waiting for its transformation if needed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp SectionContent
			path := "/api/documents/" + args[0] + "/sections/" + args[1]
			if err := client.Get(cmd.Context(), path, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
