package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackzampolin/primer/internal/transform"
	"github.com/jackzampolin/primer/internal/types"
)

// State is a section's position in the prefetch lifecycle.
type State string

const (
	StateNotRequested State = "not_requested"
	StateInFlight     State = "in_flight"
	StateReady        State = "ready"
)

// slot holds one section's pipeline state. Transitions are
// NotRequested -> InFlight -> Ready, enforced by compare-and-set under
// the scheduler mutex; the done channel is closed on Ready so waiters
// can block without polling.
type slot struct {
	state     State
	result    types.SectionResult
	done      chan struct{}
	processed int
}

// SchedulerConfig configures a Scheduler for one document session.
type SchedulerConfig struct {
	DocumentID  string
	Sections    []types.Section
	Mode        types.Mode
	Transformer *transform.Transformer
	Logger      *slog.Logger
}

// Scheduler tracks which sections are requested, in flight, or ready,
// and issues look-ahead requests as the reader moves. Each section is
// invoked at most once; duplicate triggers wait on the in-flight run
// instead of re-requesting.
type Scheduler struct {
	mu       sync.Mutex
	docID    string
	sections []types.Section
	mode     types.Mode
	runner   *Runner
	slots    []*slot
	logger   *slog.Logger
}

// NewScheduler creates a scheduler with every section NotRequested.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	slots := make([]*slot, len(cfg.Sections))
	for i := range slots {
		slots[i] = &slot{state: StateNotRequested, done: make(chan struct{})}
	}
	s := &Scheduler{
		docID:    cfg.DocumentID,
		sections: cfg.Sections,
		mode:     cfg.Mode,
		slots:    slots,
		logger:   logger,
	}
	s.runner = NewRunner(RunnerConfig{
		Transformer: cfg.Transformer,
		Logger:      logger,
		Progress:    s.RecordProgress,
	})
	return s
}

// SectionCount returns the number of sections under management.
func (s *Scheduler) SectionCount() int {
	return len(s.sections)
}

// Mode returns the active reading mode.
func (s *Scheduler) Mode() types.Mode {
	return s.mode
}

// Ensure returns the section's result, requesting it synchronously if
// it was never requested and waiting if it is already in flight.
// This is the jump path: the caller blocks until Ready.
func (s *Scheduler) Ensure(ctx context.Context, index int) (types.SectionResult, error) {
	if index < 0 || index >= len(s.sections) {
		return nil, fmt.Errorf("section index %d out of range [0,%d)", index, len(s.sections))
	}

	sl, claimed := s.claim(index)
	if claimed {
		s.run(ctx, index, sl)
		return sl.result, nil
	}

	select {
	case <-sl.done:
		return sl.result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Enter signals that the reader entered section index's first page.
// If the next section is NotRequested, it is prefetched in the
// background; Ready and InFlight sections are left alone. The prefetch
// outlives the triggering request and is never cancelled.
func (s *Scheduler) Enter(ctx context.Context, index int) {
	next := index + 1
	if next < 0 || next >= len(s.sections) {
		return
	}
	sl, claimed := s.claim(next)
	if !claimed {
		return
	}

	s.logger.Debug("prefetching section", "doc_id", s.docID, "section", next)
	go s.run(context.WithoutCancel(ctx), next, sl)
}

// claim transitions a section NotRequested -> InFlight. Returns the
// slot and whether the caller won the transition and must run it.
func (s *Scheduler) claim(index int) (*slot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl := s.slots[index]
	if sl.state != StateNotRequested {
		return sl, false
	}
	sl.state = StateInFlight
	return sl, true
}

// run executes the section pipeline and publishes the Ready result.
// Exactly one goroutine runs per slot, guarded by claim.
func (s *Scheduler) run(ctx context.Context, index int, sl *slot) {
	result := s.runner.Run(ctx, s.docID, index, s.sections[index], s.mode)

	s.mu.Lock()
	sl.result = result
	sl.state = StateReady
	s.mu.Unlock()
	close(sl.done)
}

// RecordProgress stores a section's advisory pages-processed count.
// Wire this into the Runner's ProgressFunc.
func (s *Scheduler) RecordProgress(sectionIndex, processed, _ int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sectionIndex >= 0 && sectionIndex < len(s.slots) {
		s.slots[sectionIndex].processed = processed
	}
}

// SectionStatus reports one section's state for the API.
type SectionStatus struct {
	Index          int    `json:"index"`
	Title          string `json:"title"`
	StartPageIndex int    `json:"start_page_index"`
	PageCount      int    `json:"page_count"`
	State          State  `json:"state"`
	PagesProcessed int    `json:"pages_processed"`
}

// Status returns the current state of every section.
func (s *Scheduler) Status() []SectionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	statuses := make([]SectionStatus, len(s.sections))
	for i, sec := range s.sections {
		statuses[i] = SectionStatus{
			Index:          i,
			Title:          sec.Title,
			StartPageIndex: sec.StartPageIndex,
			PageCount:      len(sec.Pages),
			State:          s.slots[i].state,
			PagesProcessed: s.slots[i].processed,
		}
	}
	return statuses
}

// StateOf returns a single section's state.
func (s *Scheduler) StateOf(index int) (State, error) {
	if index < 0 || index >= len(s.slots) {
		return "", fmt.Errorf("section index %d out of range [0,%d)", index, len(s.slots))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slots[index].state, nil
}
