package decode

import (
	"testing"
)

func TestStripFences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"no fences", `[{"chunks":[]}]`, `[{"chunks":[]}]`},
		{"plain fences", "```\n[1,2]\n```", "[1,2]"},
		{"json language tag", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"missing closing fence", "```json\n{\"a\":1}", `{"a":1}`},
		{"surrounding whitespace", "  \n```\n[]\n```\n  ", "[]"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StripFences(tc.in); got != tc.want {
				t.Errorf("StripFences(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}

	t.Run("idempotent", func(t *testing.T) {
		once := StripFences("```json\n[{\"chunks\":[]}]\n```")
		twice := StripFences(once)
		if once != twice {
			t.Errorf("second strip changed output: %q vs %q", once, twice)
		}
	})
}

func TestItems(t *testing.T) {
	t.Run("array", func(t *testing.T) {
		items := Items(`[{"a":1},{"b":2}]`)
		if len(items) != 2 {
			t.Fatalf("expected 2 items, got %d", len(items))
		}
	})

	t.Run("bare object", func(t *testing.T) {
		items := Items(`{"a":1}`)
		if len(items) != 1 {
			t.Fatalf("expected 1 item, got %d", len(items))
		}
	})

	t.Run("concatenated objects are spliced", func(t *testing.T) {
		items := Items(`{"a":1}{"b":2}`)
		if len(items) != 2 {
			t.Fatalf("expected 2 items, got %d", len(items))
		}
	})

	t.Run("brace inside string literal is not a boundary", func(t *testing.T) {
		items := Items(`{"text":"closing } then {"}{"more":1}`)
		if len(items) != 2 {
			t.Fatalf("expected 2 items, got %d", len(items))
		}
	})

	t.Run("garbage yields nil", func(t *testing.T) {
		if items := Items("not json at all"); items != nil {
			t.Errorf("expected nil, got %d items", len(items))
		}
	})

	t.Run("empty yields nil", func(t *testing.T) {
		if items := Items(""); items != nil {
			t.Errorf("expected nil, got %d items", len(items))
		}
	})
}

func TestPages(t *testing.T) {
	t.Run("well formed response", func(t *testing.T) {
		raw := "```json\n" + `[
			{"pageIndex": 4, "pageTitle": "The Door", "chunks": [
				{"text": "A door appeared.", "kind": "narrative", "imaginePrompt": "a glowing door"},
				{"text": "Doors are thresholds.", "kind": "conceptual",
				 "recallCheck": {"question": "What appeared?", "options": ["a door","a cat","a key","a wall"], "correctIndex": 0, "hint": "threshold"}}
			]}
		]` + "\n```"

		pages := Pages(raw)
		if len(pages) != 1 {
			t.Fatalf("expected 1 page, got %d", len(pages))
		}
		p := pages[0]
		if p.PageIndex == nil || *p.PageIndex != 4 {
			t.Errorf("expected pageIndex 4, got %v", p.PageIndex)
		}
		if p.PageTitle != "The Door" {
			t.Errorf("expected page title, got %q", p.PageTitle)
		}
		if len(p.Chunks) != 2 {
			t.Fatalf("expected 2 chunks, got %d", len(p.Chunks))
		}
		if p.Chunks[1].RecallCheck == nil {
			t.Fatal("expected recall check on second chunk")
		}
		if p.Chunks[1].RecallCheck.CorrectIndex != 0 {
			t.Errorf("unexpected correctIndex %d", p.Chunks[1].RecallCheck.CorrectIndex)
		}
	})

	t.Run("items without chunks are dropped", func(t *testing.T) {
		raw := `[{"pageTitle":"x","chunks":[]},{"note":"no chunks here"},{"chunks":"not an array"}]`
		pages := Pages(raw)
		if len(pages) != 1 {
			t.Fatalf("expected 1 page, got %d", len(pages))
		}
	})

	t.Run("concatenated pages are repaired", func(t *testing.T) {
		raw := `{"pageTitle":"a","chunks":[]}{"pageTitle":"b","chunks":[]}`
		pages := Pages(raw)
		if len(pages) != 2 {
			t.Fatalf("expected 2 pages, got %d", len(pages))
		}
		if pages[0].PageTitle != "a" || pages[1].PageTitle != "b" {
			t.Errorf("unexpected titles %q, %q", pages[0].PageTitle, pages[1].PageTitle)
		}
	})

	t.Run("garbage yields empty slice", func(t *testing.T) {
		pages := Pages("I'm sorry, I can't help with that.")
		if pages == nil {
			t.Fatal("expected non-nil empty slice")
		}
		if len(pages) != 0 {
			t.Errorf("expected 0 pages, got %d", len(pages))
		}
	})

	t.Run("missing pageIndex stays nil", func(t *testing.T) {
		pages := Pages(`[{"pageTitle":"x","chunks":[]}]`)
		if len(pages) != 1 {
			t.Fatalf("expected 1 page, got %d", len(pages))
		}
		if pages[0].PageIndex != nil {
			t.Errorf("expected nil pageIndex, got %d", *pages[0].PageIndex)
		}
	})
}

func TestSpliceObjects(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"adjacent", `{"a":1}{"b":2}`, `{"a":1},{"b":2}`},
		{"whitespace between", "{\"a\":1}\n {\"b\":2}", "{\"a\":1}\n ,{\"b\":2}"},
		{"already valid", `[{"a":1},{"b":2}]`, `[{"a":1},{"b":2}]`},
		{"brace in string", `{"a":"}{"}`, `{"a":"}{"}`},
		{"escaped quote in string", `{"a":"\"}{"}{"b":2}`, `{"a":"\"}{"},{"b":2}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := spliceObjects(tc.in); got != tc.want {
				t.Errorf("spliceObjects(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
