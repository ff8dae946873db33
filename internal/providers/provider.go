// Package providers implements LLM clients for the chunk
// transformation call, with config-driven registration and hot reload.
package providers

import (
	"context"
	"time"
)

// LLMClient is the interface for chat/completion requests.
type LLMClient interface {
	// Chat sends a chat completion request.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error)

	// Name returns the client identifier (e.g., "openrouter").
	Name() string
}

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// ChatRequest is a request to an LLM.
type ChatRequest struct {
	// Required
	Messages []Message `json:"messages"`

	// Model selection (uses client default if empty)
	Model string `json:"model,omitempty"`

	// Generation parameters
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`

	// Request tracking
	RequestID string `json:"-"`
}

// ChatResult is the complete response from an LLM call.
// Transport failures still produce a result with Success false so the
// transformer can record the attempt before falling back.
type ChatResult struct {
	// Response content
	Content string `json:"content"`

	// Token counts
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`

	// Timing
	ExecutionTime time.Duration `json:"execution_time"`

	// Provider info
	Provider  string `json:"provider"`
	ModelUsed string `json:"model_used"`

	// Request tracking
	RequestID string `json:"request_id"`
	Attempts  int    `json:"attempts"`

	// Success/error
	Success      bool   `json:"success"`
	ErrorType    string `json:"error_type,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}
