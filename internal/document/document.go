// Package document defines the value types shared between the markup
// scanners and the execution engine: source documents, extracted code
// regions, and the closed set of supported markup kinds.
package document

import (
	"fmt"
	"strings"

	"github.com/docrun/docrun/internal/charset"
)

// Markup identifies a supported markup dialect.
type Markup int

// The full set of supported markup kinds is fixed and known at compile
// time; scanners are looked up by kind, never by dynamic dispatch.
const (
	RST Markup = iota
	MyST
	Markdown
	MDX
	Djot
	Norg
)

// String returns the conventional name of the markup kind.
func (m Markup) String() string {
	switch m {
	case RST:
		return "reStructuredText"
	case MyST:
		return "MyST"
	case Markdown:
		return "Markdown"
	case MDX:
		return "MDX"
	case Djot:
		return "Djot"
	case Norg:
		return "Norg"
	}
	return fmt.Sprintf("Markup(%d)", int(m))
}

// Source is one documentation file with its raw bytes and the encoding
// and newline style detected once for the whole document.
type Source struct {
	Path     string
	Raw      []byte
	Text     string // decoded content
	Encoding charset.Encoding
	Newline  string // "\r\n", "\n", "\r", or "" when no newline byte exists
	Markup   Markup
}

// EncodeContent converts text to bytes in the document's encoding.
func (s *Source) EncodeContent(text string) ([]byte, error) {
	return s.Encoding.Encode(text)
}

// Lines splits the decoded content into lines without trailing newline
// characters. Line i of the document is Lines()[i-1].
func (s *Source) Lines() []string {
	text := strings.ReplaceAll(s.Text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

// Region is one evaluable unit extracted from a document.
type Region struct {
	SourcePath string
	Language   string // declared fence language; empty for template blocks
	StartLine  int    // 1-based line of the first content line
	Content    string

	// GroupID is non-empty when the region belongs to a group. Regions
	// sharing a GroupID within one document are evaluated as a single
	// concatenated unit.
	GroupID string

	// GroupEnd is the source line of the group's closing directive,
	// set on every member. Group-write diagnostics anchor here.
	GroupEnd int

	// Skip marks regions excluded from evaluation entirely.
	Skip bool

	// Write-back span: the content occupies source lines
	// [ContentStart, ContentEnd], each prefixed with Indent.
	ContentStart int
	ContentEnd   int
	Indent       string
}

// Grouped reports whether the region belongs to a group.
func (r *Region) Grouped() bool { return r.GroupID != "" }

// SuffixMap maps a file suffix (with leading dot) to a markup kind.
type SuffixMap map[string]Markup

// Lookup returns the markup kind for the file's suffix.
func (m SuffixMap) Lookup(path string) (Markup, bool) {
	idx := strings.LastIndex(path, ".")
	if idx < 0 {
		return 0, false
	}
	kind, ok := m[path[idx:]]
	return kind, ok
}
