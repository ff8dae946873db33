package ingest

import (
	"testing"
)

func TestNormalizeText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"crlf", "a\r\nb", "a\nb"},
		{"trailing whitespace", "a  \t\nb", "a\nb"},
		{"collapses blank runs", "a\n\n\n\nb", "a\n\nb"},
		{"trims edges", "\n\n  hello  \n\n", "hello"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := normalizeText(tc.in); got != tc.want {
				t.Errorf("normalizeText(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestDeriveTitle(t *testing.T) {
	cases := map[string]string{
		"/tmp/deep-learning-basics.pdf": "deep-learning-basics",
		"notes.PDF":                     "notes",
		"no-extension":                  "no-extension",
	}
	for path, want := range cases {
		if got := deriveTitle(path); got != want {
			t.Errorf("deriveTitle(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestIngestErrors(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		if _, err := Ingest(Request{}); err == nil {
			t.Error("expected error for empty path")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := Ingest(Request{Path: "/nonexistent/file.pdf"}); err == nil {
			t.Error("expected error for missing file")
		}
	})
}
