// Package prompts holds the embedded prompt templates for the chunk
// transformation call.
package prompts

import (
	"fmt"
	"strings"

	"github.com/jackzampolin/primer/internal/types"
)

// chunkSystemBase is the shared portion of the transformation system
// prompt. It pins the exact output shape the decoder expects.
const chunkSystemBase = `You transform book pages into small, self-contained reading units.

You will receive one or more pages, each introduced by a marker line:
=== PAGE <n> (doc page <p>) ===

Respond with ONLY a JSON array, one object per page, in page order:
[
  {
    "pageIndex": <n from the marker>,
    "pageTitle": "short title for the page",
    "chunks": [
      {
        "text": "one short, self-contained unit of content",
        "kind": "narrative" | "conceptual" | "factual",
        "imaginePrompt": "optional one-line visual description, or null",
        "recallCheck": null
      }
    ]
  }
]

Rules:
- Every page gets at least one chunk.
- Keep each chunk under roughly 60 words.
- "narrative" for story/flow text, "conceptual" for ideas and
  explanations, "factual" for concrete facts, names, and numbers.
- Do not wrap the JSON in markdown fences or add commentary.`

// quizRuleEnabled extends the contract when the mode generates quizzes.
const quizRuleEnabled = `
- For "conceptual" and "factual" chunks only, you MAY include a recall
  check in place of null:
  "recallCheck": {"question": "...", "options": ["a","b","c","d"], "correctIndex": 0, "hint": "..."}
  Options must have exactly 4 entries. "narrative" chunks always use null.`

// quizRuleDisabled pins recallCheck to null for quiz-free modes.
const quizRuleDisabled = `
- "recallCheck" must always be null in this mode.`

// ChunkSystem returns the transformation system prompt for a mode.
func ChunkSystem(mode types.Mode) string {
	if mode.QuizzesEnabled() {
		return chunkSystemBase + quizRuleEnabled
	}
	return chunkSystemBase + quizRuleDisabled
}

// PageMarker returns the per-page marker line for the user payload.
func PageMarker(pageIndex, sourcePage int) string {
	return fmt.Sprintf("=== PAGE %d (doc page %d) ===", pageIndex, sourcePage)
}

// ChunkUser builds the batched user payload for a set of pages.
func ChunkUser(pages []types.Page) string {
	var b strings.Builder
	for i, p := range pages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(PageMarker(p.Index, p.SourcePageNumber))
		b.WriteString("\n")
		b.WriteString(p.Text)
	}
	return b.String()
}
