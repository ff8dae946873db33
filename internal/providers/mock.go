package providers

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

const MockClientName = "mock"

// MockClient is an LLMClient for testing and offline development.
type MockClient struct {
	// Configurable behavior
	Latency      time.Duration
	ShouldFail   bool
	FailAfter    int // Fail after N requests (0 = never)
	ResponseText string

	// ResponseFunc, when set, generates the response per request and
	// takes precedence over ResponseText.
	ResponseFunc func(req *ChatRequest) string

	// State
	requestCount atomic.Int64
}

// NewMockClient creates a new mock client with sensible defaults.
func NewMockClient() *MockClient {
	return &MockClient{
		Latency:      time.Millisecond,
		ResponseText: "mock response",
	}
}

// Name returns the client identifier.
func (c *MockClient) Name() string {
	return MockClientName
}

// Chat sends a mock chat request.
func (c *MockClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	start := time.Now()
	count := c.requestCount.Add(1)

	result := &ChatResult{
		RequestID: fmt.Sprintf("mock-%d", count),
		Provider:  MockClientName,
		ModelUsed: req.Model,
		Attempts:  1,
	}

	if c.ShouldFail {
		result.Success = false
		result.ErrorType = "mock_failure"
		result.ErrorMessage = "mock client configured to fail"
		result.ExecutionTime = time.Since(start)
		return result, fmt.Errorf("mock client configured to fail")
	}
	if c.FailAfter > 0 && int(count) > c.FailAfter {
		result.Success = false
		result.ErrorType = "mock_failure"
		result.ErrorMessage = fmt.Sprintf("mock client failed after %d requests", c.FailAfter)
		result.ExecutionTime = time.Since(start)
		return result, fmt.Errorf("mock client failed after %d requests", c.FailAfter)
	}

	if c.Latency > 0 {
		select {
		case <-time.After(c.Latency):
		case <-ctx.Done():
			result.Success = false
			result.ErrorType = "context_cancelled"
			result.ErrorMessage = ctx.Err().Error()
			result.ExecutionTime = time.Since(start)
			return result, ctx.Err()
		}
	}

	content := c.ResponseText
	if c.ResponseFunc != nil {
		content = c.ResponseFunc(req)
	}

	result.Success = true
	result.Content = content
	result.ExecutionTime = time.Since(start)

	promptTokens := 0
	for _, m := range req.Messages {
		promptTokens += len(m.Content) / 4 // Rough estimate
	}
	result.PromptTokens = promptTokens
	result.CompletionTokens = len(content) / 4
	result.TotalTokens = result.PromptTokens + result.CompletionTokens

	return result, nil
}

// RequestCount returns the number of requests made.
func (c *MockClient) RequestCount() int64 {
	return c.requestCount.Load()
}

// Reset resets the request counter.
func (c *MockClient) Reset() {
	c.requestCount.Store(0)
}

// Verify interface
var _ LLMClient = (*MockClient)(nil)
