package providers

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestMockClient(t *testing.T) {
	ctx := context.Background()

	t.Run("default response", func(t *testing.T) {
		client := NewMockClient()
		result, err := client.Chat(ctx, &ChatRequest{
			Model:    "test-model",
			Messages: []Message{{Role: "user", Content: "hi"}},
		})
		if err != nil {
			t.Fatalf("Chat: %v", err)
		}
		if !result.Success {
			t.Error("expected Success")
		}
		if result.Content != "mock response" {
			t.Errorf("Content = %q", result.Content)
		}
		if result.ModelUsed != "test-model" {
			t.Errorf("ModelUsed = %q", result.ModelUsed)
		}
		if client.RequestCount() != 1 {
			t.Errorf("RequestCount = %d, want 1", client.RequestCount())
		}
	})

	t.Run("response func overrides text", func(t *testing.T) {
		client := NewMockClient()
		client.ResponseText = "unused"
		client.ResponseFunc = func(req *ChatRequest) string {
			return "echo: " + req.Messages[len(req.Messages)-1].Content
		}
		result, err := client.Chat(ctx, &ChatRequest{
			Messages: []Message{{Role: "user", Content: "ping"}},
		})
		if err != nil {
			t.Fatalf("Chat: %v", err)
		}
		if result.Content != "echo: ping" {
			t.Errorf("Content = %q", result.Content)
		}
	})

	t.Run("should fail", func(t *testing.T) {
		client := NewMockClient()
		client.ShouldFail = true
		result, err := client.Chat(ctx, &ChatRequest{})
		if err == nil {
			t.Fatal("expected error")
		}
		if result.Success {
			t.Error("result should not be Success")
		}
		if result.ErrorType != "mock_failure" {
			t.Errorf("ErrorType = %q", result.ErrorType)
		}
	})

	t.Run("fail after N", func(t *testing.T) {
		client := NewMockClient()
		client.FailAfter = 2
		for i := 0; i < 2; i++ {
			if _, err := client.Chat(ctx, &ChatRequest{}); err != nil {
				t.Fatalf("request %d: %v", i+1, err)
			}
		}
		_, err := client.Chat(ctx, &ChatRequest{})
		if err == nil {
			t.Fatal("third request should fail")
		}
		if !strings.Contains(err.Error(), "after 2 requests") {
			t.Errorf("error = %v", err)
		}

		client.Reset()
		if _, err := client.Chat(ctx, &ChatRequest{}); err != nil {
			t.Errorf("after Reset: %v", err)
		}
	})

	t.Run("cancelled during latency", func(t *testing.T) {
		client := NewMockClient()
		client.Latency = time.Second
		cctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
		defer cancel()
		result, err := client.Chat(cctx, &ChatRequest{})
		if err == nil {
			t.Fatal("expected context error")
		}
		if result.ErrorType != "context_cancelled" {
			t.Errorf("ErrorType = %q", result.ErrorType)
		}
	})
}
