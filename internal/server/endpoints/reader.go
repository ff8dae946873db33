package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/primer/internal/api"
	"github.com/jackzampolin/primer/internal/pipeline"
	"github.com/jackzampolin/primer/internal/svcctx"
	"github.com/jackzampolin/primer/internal/transform"
	"github.com/jackzampolin/primer/internal/types"
)

// CreateReaderRequest selects the reading mode for a document.
type CreateReaderRequest struct {
	Mode     string `json:"mode"`
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
}

// ReaderResponse is returned once the first section is ready.
type ReaderResponse struct {
	DocumentID   string                   `json:"document_id"`
	Mode         string                   `json:"mode"`
	Sections     []pipeline.SectionStatus `json:"sections"`
	FirstSection SectionContent           `json:"first_section"`
}

// CreateReaderEndpoint handles POST /api/documents/{id}/reader.
// It installs a section scheduler for the chosen mode and blocks until
// the first section has been transformed.
type CreateReaderEndpoint struct{}

var _ api.Endpoint = (*CreateReaderEndpoint)(nil)

func (e *CreateReaderEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/documents/{id}/reader", e.handler
}

func (e *CreateReaderEndpoint) handler(w http.ResponseWriter, r *http.Request) {
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

	var req CreateReaderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	logger := svcctx.LoggerFrom(r.Context())
	cm := svcctx.ConfigManagerFrom(r.Context())

	modeName := req.Mode
	if modeName == "" && cm != nil {
		modeName = cm.Get().Defaults.Mode
	}
	if modeName == "" {
		modeName = string(types.ModeStudy)
	}
	mode, ok := types.ParseMode(modeName)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid mode %q: use story or study", modeName))
		return
	}

	tcfg := transform.Config{
		Recorder: svcctx.RecorderFrom(r.Context()),
		Logger:   logger,
		Model:    req.Model,
	}
	if cm != nil {
		defaults := cm.Get().Defaults
		tcfg.Temperature = defaults.Temperature
		tcfg.MaxTokens = defaults.MaxTokens
	}

	providerName := req.Provider
	if providerName == "" && cm != nil {
		providerName = cm.Get().Defaults.LLMProvider
	}
	if registry := svcctx.RegistryFrom(r.Context()); registry != nil && providerName != "" {
		client, err := registry.Get(providerName)
		if err != nil {
			if logger != nil {
				logger.Warn("LLM provider unavailable, sections take the fallback path",
					"provider", providerName, "error", err)
			}
		} else {
			tcfg.Client = client
		}
	}

	sched := pipeline.NewScheduler(pipeline.SchedulerConfig{
		DocumentID:  doc.ID,
		Sections:    doc.Sections,
		Mode:        mode,
		Transformer: transform.New(tcfg),
		Logger:      logger,
	})
	if _, err := sessions.AttachReader(doc.ID, sched); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	// The first section gates the response; the next one warms in the
	// background.
	first, err := sched.Ensure(r.Context(), 0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("first section failed: %v", err))
		return
	}
	sched.Enter(r.Context(), 0)

	if logger != nil {
		logger.Info("reader created",
			"document_id", doc.ID,
			"mode", mode,
			"sections", sched.SectionCount())
	}

	writeJSON(w, http.StatusCreated, ReaderResponse{
		DocumentID: doc.ID,
		Mode:       string(mode),
		Sections:   sched.Status(),
		FirstSection: SectionContent{
			Index: 0,
			Title: doc.Sections[0].Title,
			Pages: first,
		},
	})
}

func (e *CreateReaderEndpoint) Command(getServerURL func() string) *cobra.Command {
	var mode, provider, model string
	cmd := &cobra.Command{
		Use:   "create <doc-id>",
		Short: "Select a reading mode and prepare the first section",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			req := CreateReaderRequest{Mode: mode, Provider: provider, Model: model}
			var resp ReaderResponse
			if err := client.Post(cmd.Context(), "/api/documents/"+args[0]+"/reader", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "", "Reading mode: story or study")
	cmd.Flags().StringVar(&provider, "provider", "", "LLM provider name")
	cmd.Flags().StringVar(&model, "model", "", "Model override")
	return cmd
}
