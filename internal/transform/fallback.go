package transform

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jackzampolin/primer/internal/types"
)

const (
	// sentencesPerUnit is how many sentences the fallback groups into
	// one narrative unit.
	sentencesPerUnit = 3
	// fallbackSnippetLen is the excerpt length when no sentence
	// boundaries are found.
	fallbackSnippetLen = 300
)

// sentencePattern matches a sentence ending in terminal punctuation.
var sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]+`)

// FallbackUnits deterministically splits page text into narrative
// units: sentences grouped in runs of three, no imagine prompt, no
// recall check. If no sentences match, a single unit holds the first
// 300 characters. The result is never empty, so a page covered by the
// fallback always has at least one unit.
func FallbackUnits(page types.Page) types.PageUnits {
	sentences := sentencePattern.FindAllString(page.Text, -1)

	var units []types.ContentUnit
	for start := 0; start < len(sentences); start += sentencesPerUnit {
		end := start + sentencesPerUnit
		if end > len(sentences) {
			end = len(sentences)
		}
		text := strings.TrimSpace(strings.Join(sentences[start:end], " "))
		if text == "" {
			continue
		}
		units = append(units, types.ContentUnit{
			Text: text,
			Kind: types.KindNarrative,
		})
	}

	if len(units) == 0 {
		snippet := strings.TrimSpace(page.Text)
		if len(snippet) > fallbackSnippetLen {
			snippet = snippet[:fallbackSnippetLen]
		}
		units = []types.ContentUnit{{
			Text: snippet,
			Kind: types.KindNarrative,
		}}
	}

	return types.PageUnits{
		PageTitle: fallbackTitle(page),
		Units:     units,
	}
}

func fallbackTitle(page types.Page) string {
	return fmt.Sprintf("Page %d", page.SourcePageNumber)
}
