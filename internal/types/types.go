// Package types provides shared types used across multiple packages.
// This package has no dependencies on other primer packages to avoid import cycles.
package types

// Page is one page of text extracted from a source document.
// Pages are immutable once extracted and passed by reference into the
// segmentation and transformation layers.
type Page struct {
	// Index is the 0-based position of the page in the document.
	Index int `json:"index"`
	// SourcePageNumber is the 1-based page number in the source PDF.
	SourcePageNumber int `json:"source_page_number"`
	// Text is the raw extracted page text.
	Text string `json:"text"`
}

// Section is a contiguous run of pages treated as one logical unit.
// Sections partition the full page sequence: no gaps, no overlaps,
// no reordering.
type Section struct {
	Title          string `json:"title"`
	StartPageIndex int    `json:"start_page_index"`
	Pages          []Page `json:"pages"`
}

// UnitKind classifies a content unit for presentation.
type UnitKind string

const (
	KindNarrative  UnitKind = "narrative"
	KindConceptual UnitKind = "conceptual"
	KindFactual    UnitKind = "factual"
)

// ParseUnitKind converts a string to a UnitKind.
// Returns KindNarrative if the string is not recognized.
func ParseUnitKind(s string) UnitKind {
	switch UnitKind(s) {
	case KindNarrative, KindConceptual, KindFactual:
		return UnitKind(s)
	default:
		return KindNarrative
	}
}

// RecallCheck is a four-option quiz attached to a conceptual or
// factual unit. It is only present when the active mode enables
// quizzes; narrative units never carry one.
type RecallCheck struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"` // Always 4 entries
	CorrectIndex int      `json:"correct_index"`
	Hint         string   `json:"hint,omitempty"`
}

// Valid reports whether the recall check is well-formed.
func (rc *RecallCheck) Valid() bool {
	if rc == nil {
		return false
	}
	return rc.Question != "" &&
		len(rc.Options) == 4 &&
		rc.CorrectIndex >= 0 && rc.CorrectIndex < 4
}

// ContentUnit is the smallest presentable piece of transformed content.
// Ordering among units on a page is the order they should be presented.
type ContentUnit struct {
	Text          string       `json:"text"`
	Kind          UnitKind     `json:"kind"`
	ImaginePrompt string       `json:"imagine_prompt,omitempty"`
	RecallCheck   *RecallCheck `json:"recall_check,omitempty"`
}

// PageUnits is the per-page transformation result.
type PageUnits struct {
	PageTitle string        `json:"page_title"`
	Units     []ContentUnit `json:"units"`
}

// SectionResult maps page index within a section to its units.
// Once the section pipeline finishes, every page index in the section
// has a non-empty entry, even under total transformer failure.
type SectionResult map[int]PageUnits

// Mode selects the reading experience and governs whether recall
// checks are generated.
type Mode string

const (
	// ModeStory presents content as a continuous narrative; quizzes disabled.
	ModeStory Mode = "story"
	// ModeStudy interleaves recall checks on conceptual/factual units.
	ModeStudy Mode = "study"
)

// QuizzesEnabled reports whether the mode generates recall checks.
func (m Mode) QuizzesEnabled() bool {
	return m == ModeStudy
}

// ParseMode converts a string to a Mode.
// Returns ModeStory and false if the string is not recognized.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeStory, ModeStudy:
		return Mode(s), true
	default:
		return ModeStory, false
	}
}
