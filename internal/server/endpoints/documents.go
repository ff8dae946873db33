package endpoints

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/primer/internal/api"
	"github.com/jackzampolin/primer/internal/ingest"
	"github.com/jackzampolin/primer/internal/segment"
	"github.com/jackzampolin/primer/internal/session"
	"github.com/jackzampolin/primer/internal/svcctx"
)

// SectionSummary describes one detected section without its page text.
type SectionSummary struct {
	Index          int    `json:"index"`
	Title          string `json:"title"`
	StartPageIndex int    `json:"start_page_index"`
	PageCount      int    `json:"page_count"`
}

// DocumentResponse describes an ingested document.
type DocumentResponse struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	PageCount int              `json:"page_count"`
	Method    string           `json:"method"`
	Mode      string           `json:"mode,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	Sections  []SectionSummary `json:"sections"`
}

// DocumentsListResponse lists ingested documents.
type DocumentsListResponse struct {
	Documents []DocumentResponse `json:"documents"`
	Total     int                `json:"total"`
}

func documentResponse(doc *session.Document) DocumentResponse {
	resp := DocumentResponse{
		ID:        doc.ID,
		Title:     doc.Title,
		PageCount: len(doc.Pages),
		Method:    string(doc.Method),
		CreatedAt: doc.CreatedAt,
		Sections:  make([]SectionSummary, len(doc.Sections)),
	}
	if doc.Reader != nil {
		resp.Mode = string(doc.Reader.Mode())
	}
	for i, sec := range doc.Sections {
		resp.Sections[i] = SectionSummary{
			Index:          i,
			Title:          sec.Title,
			StartPageIndex: sec.StartPageIndex,
			PageCount:      len(sec.Pages),
		}
	}
	return resp
}

// UploadDocumentEndpoint handles POST /api/documents with a multipart PDF upload.
type UploadDocumentEndpoint struct{}

var _ api.Endpoint = (*UploadDocumentEndpoint)(nil)

func (e *UploadDocumentEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/documents", e.handler
}

func (e *UploadDocumentEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	const maxMemory = 100 << 20 // 100MB
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse form: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field required")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("file %s is not a PDF", header.Filename))
		return
	}

	title := r.FormValue("title")
	if title == "" {
		title = strings.TrimSuffix(header.Filename, ".pdf")
	}

	sessions := svcctx.SessionsFrom(r.Context())
	if sessions == nil {
		writeError(w, http.StatusServiceUnavailable, "session store not initialized")
		return
	}
	logger := svcctx.LoggerFrom(r.Context())

	result, err := ingest.FromReader(file, title, logger)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("ingest failed: %v", err))
		return
	}

	detected := segment.Detect(result.Pages)
	doc := sessions.Create(result.Title, result.Pages, detected)

	if logger != nil {
		logger.Info("document ingested",
			"document_id", doc.ID,
			"title", doc.Title,
			"pages", len(doc.Pages),
			"sections", len(doc.Sections),
			"method", detected.Method)
	}

	writeJSON(w, http.StatusCreated, documentResponse(doc))
}

func (e *UploadDocumentEndpoint) Command(getServerURL func() string) *cobra.Command {
	var title string
	cmd := &cobra.Command{
		Use:   "upload <file.pdf>",
		Short: "Upload and segment a PDF document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			path := "/api/documents"
			if title != "" {
				path += "?title=" + url.QueryEscape(title)
			}
			var resp DocumentResponse
			if err := client.PostFile(cmd.Context(), path, "file", args[0], &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Document title (derived from filename if not provided)")
	return cmd
}

// ListDocumentsEndpoint handles GET /api/documents.
type ListDocumentsEndpoint struct{}

var _ api.Endpoint = (*ListDocumentsEndpoint)(nil)

func (e *ListDocumentsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/documents", e.handler
}

func (e *ListDocumentsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	sessions := svcctx.SessionsFrom(r.Context())
	if sessions == nil {
		writeError(w, http.StatusServiceUnavailable, "session store not initialized")
		return
	}

	docs := sessions.List()
	resp := DocumentsListResponse{
		Documents: make([]DocumentResponse, 0, len(docs)),
		Total:     len(docs),
	}
	for _, doc := range docs {
		resp.Documents = append(resp.Documents, documentResponse(doc))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (e *ListDocumentsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List ingested documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp DocumentsListResponse
			if err := client.Get(cmd.Context(), "/api/documents", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// GetDocumentEndpoint handles GET /api/documents/{id}.
type GetDocumentEndpoint struct{}

var _ api.Endpoint = (*GetDocumentEndpoint)(nil)

func (e *GetDocumentEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/documents/{id}", e.handler
}

func (e *GetDocumentEndpoint) handler(w http.ResponseWriter, r *http.Request) {
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
	writeJSON(w, http.StatusOK, documentResponse(doc))
}

func (e *GetDocumentEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <doc-id>",
		Short: "Get a document by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp DocumentResponse
			if err := client.Get(cmd.Context(), "/api/documents/"+args[0], &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// DeleteDocumentEndpoint handles DELETE /api/documents/{id}.
type DeleteDocumentEndpoint struct{}

var _ api.Endpoint = (*DeleteDocumentEndpoint)(nil)

func (e *DeleteDocumentEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/documents/{id}", e.handler
}

func (e *DeleteDocumentEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	sessions := svcctx.SessionsFrom(r.Context())
	if sessions == nil {
		writeError(w, http.StatusServiceUnavailable, "session store not initialized")
		return
	}

	id := r.PathValue("id")
	if err := sessions.Delete(id); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	if logger := svcctx.LoggerFrom(r.Context()); logger != nil {
		logger.Info("document deleted", "document_id", id)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (e *DeleteDocumentEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <doc-id>",
		Short: "Delete a document and all of its pipeline state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			if err := client.Delete(cmd.Context(), "/api/documents/"+args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted %s\n", args[0])
			return nil
		},
	}
}
