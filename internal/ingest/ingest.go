// Package ingest extracts per-page text from PDF documents.
package ingest

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/jackzampolin/primer/internal/types"
)

// Request contains the parameters for ingesting a document.
type Request struct {
	Path   string       // PDF file path
	Title  string       // Document title (optional, derived from filename if empty)
	Logger *slog.Logger // Optional logger for progress updates
}

// Result contains the outcome of a successful ingest.
type Result struct {
	Title string
	Pages []types.Page
}

// Ingest validates the PDF and extracts text for every page, in order.
// Pages with no extractable text still appear (empty string) so page
// numbering stays aligned with the source document.
func Ingest(req Request) (*Result, error) {
	log := req.Logger
	if log == nil {
		log = slog.Default()
	}

	if req.Path == "" {
		return nil, fmt.Errorf("no PDF path provided")
	}
	if _, err := os.Stat(req.Path); err != nil {
		return nil, fmt.Errorf("PDF not found: %s", req.Path)
	}

	// Validate the document and get an authoritative page count first;
	// the text extractor is more forgiving than we want for admission.
	f, err := os.Open(req.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	pageCount, err := api.PageCount(f, nil)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF structure: %w", err)
	}
	if pageCount == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	title := req.Title
	if title == "" {
		title = deriveTitle(req.Path)
	}

	log.Info("starting ingest", "path", filepath.Base(req.Path), "pages", pageCount, "title", title)

	pages, err := extractPages(req.Path, pageCount)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text: %w", err)
	}

	log.Info("ingest complete", "title", title, "pages", len(pages))
	return &Result{Title: title, Pages: pages}, nil
}

// FromReader writes r to a temp file and ingests it. The text
// extractor needs a ReadSeeker with a known size, so uploads go
// through the filesystem.
func FromReader(r io.Reader, title string, logger *slog.Logger) (*Result, error) {
	tmp, err := os.CreateTemp("", "primer-upload-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}
	tmp.Close()

	return Ingest(Request{Path: tmpPath, Title: title, Logger: logger})
}

// extractPages pulls plain text for pages 1..pageCount.
func extractPages(path string, pageCount int) ([]types.Page, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	extractable := reader.NumPage()
	if extractable > pageCount {
		extractable = pageCount
	}

	pages := make([]types.Page, 0, pageCount)
	for num := 1; num <= pageCount; num++ {
		text := ""
		if num <= extractable {
			page := reader.Page(num)
			if !page.V.IsNull() {
				if content, err := page.GetPlainText(nil); err == nil {
					text = normalizeText(content)
				}
			}
		}
		pages = append(pages, types.Page{
			Index:            num - 1,
			SourcePageNumber: num,
			Text:             text,
		})
	}
	return pages, nil
}

// normalizeText collapses extraction artifacts: CRLF, runs of blank
// lines, and trailing whitespace per line.
func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// deriveTitle extracts a title from a PDF filename.
// e.g., "deep-learning-basics.pdf" -> "deep-learning-basics"
func deriveTitle(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
