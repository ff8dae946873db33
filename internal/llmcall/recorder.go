// Package llmcall records transformer API calls for diagnostics.
// Calls are kept in a bounded in-memory ring; nothing is persisted.
package llmcall

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jackzampolin/primer/internal/providers"
)

// Call is one recorded transformer call.
type Call struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	LatencyMs int       `json:"latency_ms"`

	// Context references
	DocumentID   string `json:"document_id,omitempty"`
	SectionIndex int    `json:"section_index"`
	BatchStart   int    `json:"batch_start"`

	// Model info
	Provider string `json:"provider"`
	Model    string `json:"model"`

	// Token usage
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`

	// Outcome
	Success      bool   `json:"success"`
	Error        string `json:"error,omitempty"`
	DecodedPages int    `json:"decoded_pages"`
	FallbackUsed bool   `json:"fallback_used"`
}

// RecordOptions provides batch context for a recorded call.
type RecordOptions struct {
	DocumentID   string
	SectionIndex int
	BatchStart   int
	DecodedPages int
	FallbackUsed bool
}

// FromChatResult builds a Call from a provider result.
// Returns nil if result is nil.
func FromChatResult(result *providers.ChatResult, opts RecordOptions) *Call {
	if result == nil {
		return nil
	}
	return &Call{
		ID:           uuid.New().String(),
		Timestamp:    time.Now(),
		LatencyMs:    int(result.ExecutionTime.Milliseconds()),
		DocumentID:   opts.DocumentID,
		SectionIndex: opts.SectionIndex,
		BatchStart:   opts.BatchStart,
		Provider:     result.Provider,
		Model:        result.ModelUsed,
		InputTokens:  result.PromptTokens,
		OutputTokens: result.CompletionTokens,
		Success:      result.Success,
		Error:        result.ErrorMessage,
		DecodedPages: opts.DecodedPages,
		FallbackUsed: opts.FallbackUsed,
	}
}

// DefaultCapacity is the default ring size.
const DefaultCapacity = 256

// Recorder is a bounded, thread-safe ring of recent calls.
type Recorder struct {
	mu    sync.Mutex
	calls []*Call
	next  int
	total int64
}

// NewRecorder creates a recorder holding up to capacity calls.
func NewRecorder(capacity int) *Recorder {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Recorder{calls: make([]*Call, capacity)}
}

// Record captures a call. Nil calls are ignored so call sites can pass
// FromChatResult output unconditionally.
func (r *Recorder) Record(call *Call) {
	if r == nil || call == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[r.next] = call
	r.next = (r.next + 1) % len(r.calls)
	r.total++
}

// Recent returns up to limit calls, newest first.
func (r *Recorder) Recent(limit int) []*Call {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit <= 0 || limit > len(r.calls) {
		limit = len(r.calls)
	}

	out := make([]*Call, 0, limit)
	for i := 1; i <= len(r.calls) && len(out) < limit; i++ {
		idx := (r.next - i + len(r.calls)) % len(r.calls)
		if r.calls[idx] == nil {
			break
		}
		out = append(out, r.calls[idx])
	}
	return out
}

// Total returns the number of calls recorded over the recorder's lifetime.
func (r *Recorder) Total() int64 {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total
}
