package transform

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackzampolin/primer/internal/decode"
	"github.com/jackzampolin/primer/internal/llmcall"
	"github.com/jackzampolin/primer/internal/providers"
	"github.com/jackzampolin/primer/internal/types"
)

func batchPages(start, n int) []types.Page {
	pages := make([]types.Page, n)
	for i := range pages {
		pages[i] = types.Page{
			Index:            start + i,
			SourcePageNumber: start + i + 1,
			Text:             fmt.Sprintf("Text of page %d. It has sentences.", start+i),
		}
	}
	return pages
}

func pageJSON(idx int, title string) string {
	return fmt.Sprintf(`{"pageIndex": %d, "pageTitle": %q, "chunks": [{"text": "unit for page %d", "kind": "narrative"}]}`, idx, title, idx)
}

func TestTransformBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("nil client yields empty map", func(t *testing.T) {
		tr := New(Config{})
		got := tr.TransformBatch(ctx, batchPages(0, 3), types.ModeStudy, BatchContext{})
		if len(got) != 0 {
			t.Errorf("expected empty map, got %d entries", len(got))
		}
	})

	t.Run("empty batch yields nil", func(t *testing.T) {
		tr := New(Config{Client: providers.NewMockClient()})
		if got := tr.TransformBatch(ctx, nil, types.ModeStudy, BatchContext{}); got != nil {
			t.Errorf("expected nil, got %v", got)
		}
	})

	t.Run("decoded pages keyed by document index", func(t *testing.T) {
		mock := providers.NewMockClient()
		mock.ResponseText = fmt.Sprintf("[%s,%s,%s]",
			pageJSON(6, "a"), pageJSON(7, "b"), pageJSON(8, "c"))

		tr := New(Config{Client: mock})
		got := tr.TransformBatch(ctx, batchPages(6, 3), types.ModeStudy, BatchContext{SectionIndex: 2, BatchStart: 6})
		if len(got) != 3 {
			t.Fatalf("expected 3 pages, got %d", len(got))
		}
		for idx := 6; idx <= 8; idx++ {
			pu, ok := got[idx]
			if !ok {
				t.Fatalf("missing page %d", idx)
			}
			if len(pu.Units) != 1 {
				t.Errorf("page %d: expected 1 unit, got %d", idx, len(pu.Units))
			}
		}
		if got[7].PageTitle != "b" {
			t.Errorf("expected title b for page 7, got %q", got[7].PageTitle)
		}
	})

	t.Run("payloads without pageIndex fill positionally", func(t *testing.T) {
		mock := providers.NewMockClient()
		mock.ResponseText = `[{"pageTitle":"first","chunks":[{"text":"u1","kind":"narrative"}]},
			{"pageTitle":"second","chunks":[{"text":"u2","kind":"narrative"}]}]`

		tr := New(Config{Client: mock})
		got := tr.TransformBatch(ctx, batchPages(3, 3), types.ModeStory, BatchContext{})
		if len(got) != 2 {
			t.Fatalf("expected 2 pages, got %d", len(got))
		}
		if got[3].PageTitle != "first" || got[4].PageTitle != "second" {
			t.Errorf("positional fill out of order: %q, %q", got[3].PageTitle, got[4].PageTitle)
		}
		if _, ok := got[5]; ok {
			t.Error("page 5 should be absent so the fallback covers it")
		}
	})

	t.Run("failed call records and yields empty map", func(t *testing.T) {
		mock := providers.NewMockClient()
		mock.ShouldFail = true
		rec := llmcall.NewRecorder(8)

		tr := New(Config{Client: mock, Recorder: rec})
		got := tr.TransformBatch(ctx, batchPages(0, 3), types.ModeStudy, BatchContext{DocumentID: "doc-1"})
		if len(got) != 0 {
			t.Errorf("expected empty map, got %d entries", len(got))
		}
		calls := rec.Recent(10)
		if len(calls) != 1 {
			t.Fatalf("expected 1 recorded call, got %d", len(calls))
		}
		if calls[0].Success {
			t.Error("expected recorded failure")
		}
		if !calls[0].FallbackUsed {
			t.Error("expected fallback flag on failed call")
		}
	})

	t.Run("undecodable content yields empty map", func(t *testing.T) {
		mock := providers.NewMockClient()
		mock.ResponseText = "The page describes a door."

		tr := New(Config{Client: mock})
		got := tr.TransformBatch(ctx, batchPages(0, 3), types.ModeStudy, BatchContext{})
		if len(got) != 0 {
			t.Errorf("expected empty map, got %d entries", len(got))
		}
	})

	t.Run("exactly one request per batch", func(t *testing.T) {
		mock := providers.NewMockClient()
		mock.ResponseText = "garbage that will not decode"

		tr := New(Config{Client: mock})
		tr.TransformBatch(ctx, batchPages(0, 3), types.ModeStudy, BatchContext{})
		if n := mock.RequestCount(); n != 1 {
			t.Errorf("expected exactly 1 request, got %d", n)
		}
	})
}

func TestSanitize(t *testing.T) {
	validRecall := &decode.RecallPayload{
		Question:     "What is the door?",
		Options:      []string{"a", "b", "c", "d"},
		CorrectIndex: 2,
		Hint:         "threshold",
	}

	t.Run("study mode keeps recall on conceptual units", func(t *testing.T) {
		pu, ok := sanitize(decode.PagePayload{Chunks: []decode.ChunkPayload{
			{Text: "idea", Kind: "conceptual", RecallCheck: validRecall},
		}}, types.ModeStudy)
		if !ok {
			t.Fatal("expected usable payload")
		}
		if pu.Units[0].RecallCheck == nil {
			t.Fatal("expected recall check to survive")
		}
		if pu.Units[0].RecallCheck.CorrectIndex != 2 {
			t.Errorf("unexpected correctIndex %d", pu.Units[0].RecallCheck.CorrectIndex)
		}
	})

	t.Run("story mode strips recall", func(t *testing.T) {
		pu, ok := sanitize(decode.PagePayload{Chunks: []decode.ChunkPayload{
			{Text: "idea", Kind: "conceptual", RecallCheck: validRecall},
		}}, types.ModeStory)
		if !ok {
			t.Fatal("expected usable payload")
		}
		if pu.Units[0].RecallCheck != nil {
			t.Error("story mode must not carry recall checks")
		}
	})

	t.Run("narrative units never carry recall", func(t *testing.T) {
		pu, _ := sanitize(decode.PagePayload{Chunks: []decode.ChunkPayload{
			{Text: "story", Kind: "narrative", RecallCheck: validRecall},
		}}, types.ModeStudy)
		if pu.Units[0].RecallCheck != nil {
			t.Error("narrative unit must not carry a recall check")
		}
	})

	t.Run("malformed recall is dropped", func(t *testing.T) {
		bad := &decode.RecallPayload{
			Question:     "q",
			Options:      []string{"a", "b"}, // needs 4
			CorrectIndex: 0,
		}
		pu, _ := sanitize(decode.PagePayload{Chunks: []decode.ChunkPayload{
			{Text: "fact", Kind: "factual", RecallCheck: bad},
		}}, types.ModeStudy)
		if pu.Units[0].RecallCheck != nil {
			t.Error("malformed recall check must be dropped")
		}
	})

	t.Run("unknown kind normalizes to narrative", func(t *testing.T) {
		pu, _ := sanitize(decode.PagePayload{Chunks: []decode.ChunkPayload{
			{Text: "x", Kind: "poetic"},
		}}, types.ModeStudy)
		if pu.Units[0].Kind != types.KindNarrative {
			t.Errorf("expected narrative, got %s", pu.Units[0].Kind)
		}
	})

	t.Run("empty chunks are unusable", func(t *testing.T) {
		_, ok := sanitize(decode.PagePayload{Chunks: []decode.ChunkPayload{
			{Text: "", Kind: "narrative"},
		}}, types.ModeStudy)
		if ok {
			t.Error("payload with only empty chunks must be unusable")
		}
	})
}
