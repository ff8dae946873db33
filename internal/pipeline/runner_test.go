package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/jackzampolin/primer/internal/providers"
	"github.com/jackzampolin/primer/internal/transform"
	"github.com/jackzampolin/primer/internal/types"
)

func testSection(start, n int) types.Section {
	pages := make([]types.Page, n)
	for i := range pages {
		pages[i] = types.Page{
			Index:            start + i,
			SourcePageNumber: start + i + 1,
			Text:             fmt.Sprintf("Page %d text. More text here. And a third sentence.", start+i),
		}
	}
	return types.Section{Title: "Test", StartPageIndex: start, Pages: pages}
}

// respondAll answers every batch with a payload per requested page by
// echoing pageIndex values from the user message markers.
func respondAll(req *providers.ChatRequest) string {
	var user string
	for _, m := range req.Messages {
		if m.Role == "user" {
			user = m.Content
		}
	}
	var parts []string
	// Page markers look like "=== PAGE 4 (doc page 5) ===".
	for _, line := range strings.Split(user, "\n") {
		var idx, src int
		if _, err := fmt.Sscanf(line, "=== PAGE %d (doc page %d) ===", &idx, &src); err == nil {
			parts = append(parts,
				fmt.Sprintf(`{"pageIndex": %d, "pageTitle": "P%d", "chunks": [{"text": "decoded %d", "kind": "narrative"}]}`, idx, idx, idx))
		}
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func TestRunnerRun(t *testing.T) {
	ctx := context.Background()

	t.Run("healthy client covers every page", func(t *testing.T) {
		mock := providers.NewMockClient()
		mock.ResponseFunc = respondAll

		r := NewRunner(RunnerConfig{Transformer: transform.New(transform.Config{Client: mock})})
		section := testSection(10, 7)
		result := r.Run(ctx, "doc", 1, section, types.ModeStudy)

		if len(result) != 7 {
			t.Fatalf("expected 7 entries, got %d", len(result))
		}
		for i := 0; i < 7; i++ {
			pu, ok := result[i]
			if !ok {
				t.Fatalf("missing entry for page %d", i)
			}
			if len(pu.Units) == 0 {
				t.Errorf("page %d has no units", i)
			}
			if pu.Units[0].Text != fmt.Sprintf("decoded %d", 10+i) {
				t.Errorf("page %d: expected decoded text, got %q", i, pu.Units[0].Text)
			}
		}
		// 7 pages in batches of 3 -> 3 requests
		if n := mock.RequestCount(); n != 3 {
			t.Errorf("expected 3 requests, got %d", n)
		}
	})

	t.Run("failing client still covers every page", func(t *testing.T) {
		mock := providers.NewMockClient()
		mock.ShouldFail = true

		r := NewRunner(RunnerConfig{Transformer: transform.New(transform.Config{Client: mock})})
		section := testSection(0, 5)
		result := r.Run(ctx, "doc", 0, section, types.ModeStory)

		if len(result) != 5 {
			t.Fatalf("expected 5 entries, got %d", len(result))
		}
		for i := 0; i < 5; i++ {
			pu := result[i]
			if len(pu.Units) == 0 {
				t.Errorf("page %d fallback has no units", i)
			}
			for _, u := range pu.Units {
				if u.Kind != types.KindNarrative {
					t.Errorf("fallback unit kind %s, expected narrative", u.Kind)
				}
			}
		}
	})

	t.Run("partial decode mixes results and fallback", func(t *testing.T) {
		mock := providers.NewMockClient()
		// Only page 0 decodes; the rest of the batch is missing.
		mock.ResponseFunc = func(req *providers.ChatRequest) string {
			return `[{"pageIndex": 0, "pageTitle": "P0", "chunks": [{"text": "decoded 0", "kind": "narrative"}]}]`
		}

		r := NewRunner(RunnerConfig{Transformer: transform.New(transform.Config{Client: mock})})
		section := testSection(0, 3)
		result := r.Run(ctx, "doc", 0, section, types.ModeStudy)

		if len(result) != 3 {
			t.Fatalf("expected 3 entries, got %d", len(result))
		}
		if !strings.HasPrefix(result[0].Units[0].Text, "decoded") {
			t.Errorf("expected decoded first page, got %q", result[0].Units[0].Text)
		}
		if strings.HasPrefix(result[1].Units[0].Text, "decoded") {
			t.Errorf("expected fallback for page 1, got %q", result[1].Units[0].Text)
		}
	})

	t.Run("progress reports after each batch", func(t *testing.T) {
		mock := providers.NewMockClient()
		mock.ResponseFunc = respondAll

		var reports [][2]int
		r := NewRunner(RunnerConfig{
			Transformer: transform.New(transform.Config{Client: mock}),
			Progress: func(sectionIndex, processed, total int) {
				reports = append(reports, [2]int{processed, total})
			},
		})
		r.Run(ctx, "doc", 0, testSection(0, 7), types.ModeStudy)

		want := [][2]int{{3, 7}, {6, 7}, {7, 7}}
		if len(reports) != len(want) {
			t.Fatalf("expected %d progress reports, got %d", len(want), len(reports))
		}
		for i := range want {
			if reports[i] != want[i] {
				t.Errorf("report %d: got %v, want %v", i, reports[i], want[i])
			}
		}
	})

	t.Run("empty section yields empty result", func(t *testing.T) {
		r := NewRunner(RunnerConfig{Transformer: transform.New(transform.Config{})})
		result := r.Run(ctx, "doc", 0, types.Section{Title: "Empty"}, types.ModeStudy)
		if len(result) != 0 {
			t.Errorf("expected empty result, got %d entries", len(result))
		}
	})
}
