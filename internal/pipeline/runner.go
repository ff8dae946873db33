// Package pipeline drives the chunk transformer over sections and
// schedules look-ahead prefetches so a reader is never blocked on the
// next section.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/jackzampolin/primer/internal/transform"
	"github.com/jackzampolin/primer/internal/types"
)

// ProgressFunc receives advisory per-section progress updates
// (pages processed so far out of total). Never gates correctness.
type ProgressFunc func(sectionIndex, processed, total int)

// RunnerConfig configures a Runner.
type RunnerConfig struct {
	Transformer *transform.Transformer
	Logger      *slog.Logger
	Progress    ProgressFunc
}

// Runner processes one section at a time: fixed-size batches in order,
// merged into a total per-page result.
type Runner struct {
	transformer *transform.Transformer
	logger      *slog.Logger
	progress    ProgressFunc
}

// NewRunner creates a Runner.
func NewRunner(cfg RunnerConfig) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		transformer: cfg.Transformer,
		logger:      logger,
		progress:    cfg.Progress,
	}
}

// Run transforms every page of a section, in sequential batches, and
// returns a total SectionResult: exactly one non-empty entry per page
// in the section, keyed by page index within the section. Run never
// fails; pages the transformer cannot cover take the deterministic
// fallback. Batches are sequential to bound request concurrency and
// keep page ordering deterministic.
func (r *Runner) Run(ctx context.Context, docID string, sectionIndex int, section types.Section, mode types.Mode) types.SectionResult {
	total := len(section.Pages)
	result := make(types.SectionResult, total)

	for start := 0; start < total; start += transform.BatchSize {
		end := start + transform.BatchSize
		if end > total {
			end = total
		}
		batch := section.Pages[start:end]

		decoded := r.transformer.TransformBatch(ctx, batch, mode, transform.BatchContext{
			DocumentID:   docID,
			SectionIndex: sectionIndex,
			BatchStart:   start,
		})

		for offset, page := range batch {
			if pu, ok := decoded[page.Index]; ok {
				result[start+offset] = pu
			} else {
				result[start+offset] = transform.FallbackUnits(page)
			}
		}

		if r.progress != nil {
			r.progress(sectionIndex, end, total)
		}
	}

	r.logger.Debug("section transformed",
		"doc_id", docID, "section", sectionIndex, "pages", total)
	return result
}
