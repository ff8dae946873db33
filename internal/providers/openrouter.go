package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
)

const (
	OpenRouterName    = "openrouter"
	OpenRouterBaseURL = "https://openrouter.ai/api/v1"
)

// OpenRouterConfig holds configuration for the OpenRouter client.
type OpenRouterConfig struct {
	APIKey       string
	BaseURL      string
	DefaultModel string
	Timeout      time.Duration
	// Rate limiting
	RPS        float64       // Requests per second (default: 2)
	MaxRetries int           // Transport retry attempts (default: 3)
	RetryDelay time.Duration // Base delay between retries (default: 1s)
}

// OpenRouterClient implements LLMClient using the OpenRouter API.
type OpenRouterClient struct {
	apiKey       string
	baseURL      string
	defaultModel string
	client       *http.Client
	limiter      *RateLimiter
	maxRetries   int
	retryDelay   time.Duration
}

// NewOpenRouterClient creates a new OpenRouter client.
func NewOpenRouterClient(cfg OpenRouterConfig) *OpenRouterClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = OpenRouterBaseURL
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = "anthropic/claude-3.5-sonnet"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.RPS == 0 {
		cfg.RPS = 2.0
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}

	return &OpenRouterClient{
		apiKey:       cfg.APIKey,
		baseURL:      cfg.BaseURL,
		defaultModel: cfg.DefaultModel,
		client:       &http.Client{Timeout: cfg.Timeout},
		limiter:      NewRateLimiter(cfg.RPS),
		maxRetries:   cfg.MaxRetries,
		retryDelay:   cfg.RetryDelay,
	}
}

// Name returns the client identifier.
func (c *OpenRouterClient) Name() string {
	return OpenRouterName
}

// LimiterStatus returns the rate limiter state for status reporting.
func (c *OpenRouterClient) LimiterStatus() RateLimiterStatus {
	return c.limiter.Status()
}

// Chat sends a chat completion request.
func (c *OpenRouterClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	start := time.Now()

	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	model := req.Model
	if model == "" {
		model = c.defaultModel
	}

	orReq := openRouterRequest{
		Model:       model,
		Messages:    make([]openRouterMessage, 0, len(req.Messages)),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	for _, m := range req.Messages {
		orReq.Messages = append(orReq.Messages, openRouterMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	result := &ChatResult{
		RequestID: requestID,
		Provider:  OpenRouterName,
	}

	orResp, attempts, err := c.doRequest(ctx, "/chat/completions", &orReq)
	result.Attempts = attempts
	result.ExecutionTime = time.Since(start)
	if err != nil {
		result.Success = false
		result.ErrorType = "http_error"
		result.ErrorMessage = err.Error()
		return result, err
	}

	if len(orResp.Choices) == 0 {
		result.Success = false
		result.ErrorType = "empty_response"
		result.ErrorMessage = "no choices in response"
		return result, fmt.Errorf("no choices in response")
	}

	result.Success = true
	result.Content = orResp.Choices[0].Message.Content
	result.ModelUsed = orResp.Model
	result.PromptTokens = orResp.Usage.PromptTokens
	result.CompletionTokens = orResp.Usage.CompletionTokens
	result.TotalTokens = orResp.Usage.TotalTokens
	result.ExecutionTime = time.Since(start)
	return result, nil
}

// doRequest posts to OpenRouter with rate limiting and transport-level
// retries on 429 and 5xx. Returns the parsed response and the number
// of attempts made.
func (c *OpenRouterClient) doRequest(ctx context.Context, path string, body *openRouterRequest) (*openRouterResponse, int, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	var orResp *openRouterResponse
	attempts := 0

	err = retry.Do(
		func() error {
			attempts++

			if err := c.limiter.Wait(ctx); err != nil {
				return retry.Unrecoverable(err)
			}

			req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(bodyBytes))
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("failed to create request: %w", err))
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
			req.Header.Set("HTTP-Referer", "https://github.com/jackzampolin/primer")
			req.Header.Set("X-Title", "Primer")

			resp, err := c.client.Do(req)
			if err != nil {
				return fmt.Errorf("request failed: %w", err)
			}
			defer resp.Body.Close()

			respBody, err := io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("failed to read response: %w", err)
			}

			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return fmt.Errorf("OpenRouter error (status %d): %s", resp.StatusCode, string(respBody))
			}
			if resp.StatusCode != http.StatusOK {
				return retry.Unrecoverable(fmt.Errorf("OpenRouter error (status %d): %s", resp.StatusCode, string(respBody)))
			}

			var parsed openRouterResponse
			if err := json.Unmarshal(respBody, &parsed); err != nil {
				return retry.Unrecoverable(fmt.Errorf("failed to unmarshal response: %w", err))
			}
			orResp = &parsed
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.maxRetries)),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.MaxDelay(10*time.Second),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, attempts, err
	}
	return orResp, attempts, nil
}

// OpenRouter API types

type openRouterRequest struct {
	Model       string              `json:"model"`
	Messages    []openRouterMessage `json:"messages"`
	Temperature float64             `json:"temperature,omitempty"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
}

type openRouterMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openRouterResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Verify interface
var _ LLMClient = (*OpenRouterClient)(nil)
