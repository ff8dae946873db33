// Package segment partitions an ordered page sequence into sections
// using structural heuristics, with a fixed-window fallback for
// documents with no detectable headings.
package segment

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/jackzampolin/primer/internal/types"
)

// Method indicates which detection tier produced the sections.
type Method string

const (
	// MethodHeadings indicates heading-based detection succeeded.
	MethodHeadings Method = "headings"
	// MethodWindow indicates the fixed-size window fallback was used.
	MethodWindow Method = "window"
	// MethodSingle indicates the whole document became one section.
	MethodSingle Method = "single"
)

// Result is the outcome of section detection.
type Result struct {
	Sections []types.Section
	Method   Method
}

const (
	// shortPageThreshold is the trimmed length below which a page can
	// end the section under construction.
	shortPageThreshold = 100
	// minSectionPages is how many pages a section must accumulate
	// before a short page may close it.
	minSectionPages = 2
	// maxTitleLen caps heading-derived section titles.
	maxTitleLen = 60
	// windowFallbackMinPages is the document size above which a
	// degenerate detection falls back to fixed windows.
	windowFallbackMinPages = 5
)

// headingPattern matches a structural keyword followed by a numeral
// (arabic or roman) at the start of a page's trimmed text.
var headingPattern = regexp.MustCompile(`(?i)^(chapter|section|part|unit|lesson|book|appendix)\s+([0-9]+|[ivxlcdm]+)\b[^\n]*`)

// Detect partitions pages into ordered sections.
//
// A new section starts when a page's trimmed text matches a heading
// pattern, or when the page is short and the current section already
// has more than minSectionPages pages. The first and last pages never
// trigger a short-page split, and a heading on the very first page
// seeds the first section's title rather than splitting.
//
// If detection yields at most one section for a document with more
// than windowFallbackMinPages pages, Detect discards the heading
// result and partitions into fixed-size windows instead.
func Detect(pages []types.Page) Result {
	if len(pages) == 0 {
		return Result{
			Sections: []types.Section{{Title: "Document", StartPageIndex: 0}},
			Method:   MethodSingle,
		}
	}

	sections := detectByHeadings(pages)
	if len(sections) <= 1 && len(pages) > windowFallbackMinPages {
		return Result{Sections: windowPartition(pages), Method: MethodWindow}
	}
	if len(sections) <= 1 {
		return Result{Sections: sections, Method: MethodSingle}
	}
	return Result{Sections: sections, Method: MethodHeadings}
}

// detectByHeadings is the heading/short-page scan. The returned
// sections always cover pages exactly once in order.
func detectByHeadings(pages []types.Page) []types.Section {
	var sections []types.Section
	cur := types.Section{StartPageIndex: pages[0].Index}

	flush := func() {
		if cur.Title == "" {
			cur.Title = fmt.Sprintf("Section %d", len(sections)+1)
		}
		sections = append(sections, cur)
	}

	for i, p := range pages {
		trimmed := strings.TrimSpace(p.Text)
		heading := headingPattern.FindString(trimmed)
		shortPage := len(trimmed) < shortPageThreshold &&
			i != 0 && i != len(pages)-1 &&
			len(cur.Pages) > minSectionPages

		if (heading != "" || shortPage) && len(cur.Pages) > 0 {
			flush()
			cur = types.Section{StartPageIndex: p.Index}
		}

		if heading != "" && len(cur.Pages) == 0 && cur.Title == "" {
			cur.Title = truncateTitle(heading)
		}
		cur.Pages = append(cur.Pages, p)
	}
	flush()

	return sections
}

// windowPartition splits pages into fixed-size windows. Window size is
// max(3, ceil(n / min(8, ceil(n/4)))), so small documents get a few
// broad windows and large documents cap out at 8 windows of at least
// 3 pages each.
func windowPartition(pages []types.Page) []types.Section {
	n := len(pages)
	windows := int(math.Ceil(float64(n) / 4))
	if windows > 8 {
		windows = 8
	}
	size := int(math.Ceil(float64(n) / float64(windows)))
	if size < 3 {
		size = 3
	}

	var sections []types.Section
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		title := "Opening"
		if len(sections) > 0 {
			title = fmt.Sprintf("Section %d", len(sections)+1)
		}
		sections = append(sections, types.Section{
			Title:          title,
			StartPageIndex: pages[start].Index,
			Pages:          pages[start:end],
		})
	}
	return sections
}

// WindowSize returns the fallback window size for an n-page document.
// Exposed for tests and the segment CLI command.
func WindowSize(n int) int {
	if n == 0 {
		return 0
	}
	windows := int(math.Ceil(float64(n) / 4))
	if windows > 8 {
		windows = 8
	}
	size := int(math.Ceil(float64(n) / float64(windows)))
	if size < 3 {
		size = 3
	}
	return size
}

func truncateTitle(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxTitleLen {
		return s[:maxTitleLen]
	}
	return s
}
