package transform

import (
	"strings"
	"testing"

	"github.com/jackzampolin/primer/internal/types"
)

func TestFallbackUnits(t *testing.T) {
	t.Run("groups sentences in threes", func(t *testing.T) {
		page := types.Page{
			Index:            3,
			SourcePageNumber: 4,
			Text:             "One. Two! Three? Four. Five.",
		}

		pu := FallbackUnits(page)
		if pu.PageTitle != "Page 4" {
			t.Errorf("expected title Page 4, got %q", pu.PageTitle)
		}
		if len(pu.Units) != 2 {
			t.Fatalf("expected 2 units, got %d", len(pu.Units))
		}
		if pu.Units[0].Text != "One.  Two!  Three?" && pu.Units[0].Text != "One. Two! Three?" {
			t.Errorf("unexpected first unit %q", pu.Units[0].Text)
		}
		for i, u := range pu.Units {
			if u.Kind != types.KindNarrative {
				t.Errorf("unit %d: expected narrative, got %s", i, u.Kind)
			}
			if u.RecallCheck != nil {
				t.Errorf("unit %d: fallback must not carry a recall check", i)
			}
			if u.ImaginePrompt != "" {
				t.Errorf("unit %d: fallback must not carry an imagine prompt", i)
			}
		}
	})

	t.Run("no sentence boundaries yields snippet", func(t *testing.T) {
		page := types.Page{SourcePageNumber: 1, Text: strings.Repeat("x", 500)}

		pu := FallbackUnits(page)
		if len(pu.Units) != 1 {
			t.Fatalf("expected 1 unit, got %d", len(pu.Units))
		}
		if len(pu.Units[0].Text) != fallbackSnippetLen {
			t.Errorf("expected %d chars, got %d", fallbackSnippetLen, len(pu.Units[0].Text))
		}
	})

	t.Run("empty page still yields a unit", func(t *testing.T) {
		pu := FallbackUnits(types.Page{SourcePageNumber: 7})
		if len(pu.Units) != 1 {
			t.Fatalf("expected 1 unit, got %d", len(pu.Units))
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		page := types.Page{SourcePageNumber: 2, Text: "Alpha. Beta. Gamma. Delta."}
		a := FallbackUnits(page)
		b := FallbackUnits(page)
		if len(a.Units) != len(b.Units) {
			t.Fatalf("unit counts differ: %d vs %d", len(a.Units), len(b.Units))
		}
		for i := range a.Units {
			if a.Units[i].Text != b.Units[i].Text {
				t.Errorf("unit %d differs across runs", i)
			}
		}
	})
}
