// Package transform converts batches of pages into ordered content
// units via a generative call, with a deterministic sentence-grouping
// fallback when the call fails or returns unusable output.
package transform

import (
	"context"
	"log/slog"

	"github.com/jackzampolin/primer/internal/decode"
	"github.com/jackzampolin/primer/internal/llmcall"
	"github.com/jackzampolin/primer/internal/prompts"
	"github.com/jackzampolin/primer/internal/providers"
	"github.com/jackzampolin/primer/internal/types"
)

// BatchSize is the fixed number of consecutive pages submitted per
// transformation request. Batching keeps request count at roughly a
// third of page count while each response stays small enough to
// decode reliably.
const BatchSize = 3

// Config configures a Transformer.
type Config struct {
	Client      providers.LLMClient
	Model       string
	Temperature float64
	MaxTokens   int
	Recorder    *llmcall.Recorder
	Logger      *slog.Logger
}

// Transformer drives the per-batch transformation call.
type Transformer struct {
	client      providers.LLMClient
	model       string
	temperature float64
	maxTokens   int
	recorder    *llmcall.Recorder
	logger      *slog.Logger
}

// New creates a Transformer. A nil client is allowed; every page then
// takes the fallback path.
func New(cfg Config) *Transformer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Transformer{
		client:      cfg.Client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		recorder:    cfg.Recorder,
		logger:      logger,
	}
}

// BatchContext carries identifiers for call recording. Advisory only.
type BatchContext struct {
	DocumentID   string
	SectionIndex int
	BatchStart   int
}

// TransformBatch issues one transformation request for up to BatchSize
// consecutive pages and returns decoded units keyed by document page
// index. Pages absent from the returned map had no usable decoded
// result; the caller covers them with FallbackUnits. TransformBatch
// never retries and never returns an error.
func (t *Transformer) TransformBatch(ctx context.Context, pages []types.Page, mode types.Mode, bc BatchContext) map[int]types.PageUnits {
	if len(pages) == 0 {
		return nil
	}
	if t.client == nil {
		return map[int]types.PageUnits{}
	}

	req := &providers.ChatRequest{
		Model:       t.model,
		Temperature: t.temperature,
		MaxTokens:   t.maxTokens,
		Messages: []providers.Message{
			{Role: "system", Content: prompts.ChunkSystem(mode)},
			{Role: "user", Content: prompts.ChunkUser(pages)},
		},
	}

	result, err := t.client.Chat(ctx, req)
	if err != nil || result == nil || !result.Success || result.Content == "" {
		t.logger.Warn("transform call failed, falling back",
			"section", bc.SectionIndex, "batch_start", bc.BatchStart, "error", errString(err))
		t.record(result, bc, 0, true)
		return map[int]types.PageUnits{}
	}

	payloads := decode.Pages(result.Content)
	merged := t.mergePayloads(pages, payloads, mode)
	if len(payloads) == 0 {
		t.logger.Warn("transform response undecodable, falling back",
			"section", bc.SectionIndex, "batch_start", bc.BatchStart, "content_len", len(result.Content))
	}
	t.record(result, bc, len(merged), len(merged) < len(pages))
	return merged
}

// mergePayloads maps decoded payloads onto batch pages. Payloads with
// a pageIndex matching a batch page win; leftovers fill the remaining
// pages positionally. Payloads that sanitize to zero units are treated
// as missing so the fallback covers the page.
func (t *Transformer) mergePayloads(pages []types.Page, payloads []decode.PagePayload, mode types.Mode) map[int]types.PageUnits {
	inBatch := make(map[int]bool, len(pages))
	for _, p := range pages {
		inBatch[p.Index] = true
	}

	results := make(map[int]types.PageUnits)
	var unmatched []decode.PagePayload
	for _, payload := range payloads {
		idx := -1
		if payload.PageIndex != nil && inBatch[*payload.PageIndex] {
			idx = *payload.PageIndex
		}
		if idx < 0 || hasResult(results, idx) {
			unmatched = append(unmatched, payload)
			continue
		}
		if pu, ok := sanitize(payload, mode); ok {
			results[idx] = pu
		}
	}

	// Positional fill for payloads without a usable pageIndex.
	for _, p := range pages {
		if len(unmatched) == 0 {
			break
		}
		if hasResult(results, p.Index) {
			continue
		}
		payload := unmatched[0]
		unmatched = unmatched[1:]
		if pu, ok := sanitize(payload, mode); ok {
			results[p.Index] = pu
		}
	}

	return results
}

func hasResult(m map[int]types.PageUnits, idx int) bool {
	_, ok := m[idx]
	return ok
}

// sanitize converts a wire payload into a PageUnits, dropping empty
// chunks, normalizing kinds, and enforcing the mode's quiz rule.
// Returns false if nothing usable remains.
func sanitize(payload decode.PagePayload, mode types.Mode) (types.PageUnits, bool) {
	units := make([]types.ContentUnit, 0, len(payload.Chunks))
	for _, chunk := range payload.Chunks {
		if chunk.Text == "" {
			continue
		}
		unit := types.ContentUnit{
			Text:          chunk.Text,
			Kind:          types.ParseUnitKind(chunk.Kind),
			ImaginePrompt: chunk.ImaginePrompt,
		}
		if rc := sanitizeRecall(chunk.RecallCheck, unit.Kind, mode); rc != nil {
			unit.RecallCheck = rc
		}
		units = append(units, unit)
	}
	if len(units) == 0 {
		return types.PageUnits{}, false
	}
	return types.PageUnits{PageTitle: payload.PageTitle, Units: units}, true
}

// sanitizeRecall enforces that recall checks appear only on
// conceptual/factual units when the mode enables quizzes, and only
// when well-formed. Anything else becomes nil rather than an error.
func sanitizeRecall(rc *decode.RecallPayload, kind types.UnitKind, mode types.Mode) *types.RecallCheck {
	if rc == nil || !mode.QuizzesEnabled() || kind == types.KindNarrative {
		return nil
	}
	check := &types.RecallCheck{
		Question:     rc.Question,
		Options:      rc.Options,
		CorrectIndex: rc.CorrectIndex,
		Hint:         rc.Hint,
	}
	if !check.Valid() {
		return nil
	}
	return check
}

func (t *Transformer) record(result *providers.ChatResult, bc BatchContext, decoded int, fallback bool) {
	if t.recorder == nil {
		return
	}
	t.recorder.Record(llmcall.FromChatResult(result, llmcall.RecordOptions{
		DocumentID:   bc.DocumentID,
		SectionIndex: bc.SectionIndex,
		BatchStart:   bc.BatchStart,
		DecodedPages: decoded,
		FallbackUsed: fallback,
	}))
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
