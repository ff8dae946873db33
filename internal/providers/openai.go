package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	OpenAIName         = "openai"
	openAIDefaultModel = "gpt-4o-mini"
)

// OpenAIConfig holds configuration for the OpenAI client.
type OpenAIConfig struct {
	APIKey       string
	BaseURL      string
	DefaultModel string
	Timeout      time.Duration
	RPS          float64
	MaxRetries   int
}

// OpenAIClient implements LLMClient using the official OpenAI SDK.
type OpenAIClient struct {
	apiKey       string
	defaultModel string
	client       openai.Client
	limiter      *RateLimiter
}

// NewOpenAIClient creates a new OpenAI client.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = openAIDefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.RPS == 0 {
		cfg.RPS = 2.0
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIClient{
		apiKey:       cfg.APIKey,
		defaultModel: cfg.DefaultModel,
		client:       openai.NewClient(opts...),
		limiter:      NewRateLimiter(cfg.RPS),
	}
}

// Name returns the client identifier.
func (c *OpenAIClient) Name() string {
	return OpenAIName
}

// LimiterStatus returns the rate limiter state for status reporting.
func (c *OpenAIClient) LimiterStatus() RateLimiterStatus {
	return c.limiter.Status()
}

// Chat sends a chat completion request.
func (c *OpenAIClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	start := time.Now()

	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	result := &ChatResult{
		RequestID: requestID,
		Provider:  OpenAIName,
		Attempts:  1,
	}

	if err := c.limiter.Wait(ctx); err != nil {
		result.Success = false
		result.ErrorType = "context_cancelled"
		result.ErrorMessage = err.Error()
		result.ExecutionTime = time.Since(start)
		return result, err
	}

	model := req.Model
	if model == "" {
		model = c.defaultModel
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case "system":
			messages = append(messages, openai.SystemMessage(m.Content))
		case "assistant":
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: messages,
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	result.ExecutionTime = time.Since(start)
	if err != nil {
		result.Success = false
		result.ErrorType = "api_error"
		result.ErrorMessage = mapOpenAIError(err).Error()
		return result, err
	}

	if len(completion.Choices) == 0 {
		result.Success = false
		result.ErrorType = "empty_response"
		result.ErrorMessage = "no choices in response"
		return result, fmt.Errorf("no choices in response")
	}

	result.Success = true
	result.Content = completion.Choices[0].Message.Content
	result.ModelUsed = completion.Model
	result.PromptTokens = int(completion.Usage.PromptTokens)
	result.CompletionTokens = int(completion.Usage.CompletionTokens)
	result.TotalTokens = int(completion.Usage.TotalTokens)
	return result, nil
}

func mapOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return fmt.Errorf("OpenAI error (status %d): %s", apiErr.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("OpenAI error (status %d)", apiErr.StatusCode)
	}
	return err
}

// Verify interface
var _ LLMClient = (*OpenAIClient)(nil)
