// Package stage materializes region content as uniquely named temporary
// files for the invoked command to operate on.
package stage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/docrun/docrun/internal/document"
)

// DefaultTemplate is the staged-file naming template.
const DefaultTemplate = "{prefix}_{source}_l{line}_{unique}{suffix}"

// TemplateError reports an invalid naming template.
type TemplateError struct {
	Template string
	Reason   string
}

func (e TemplateError) Error() string {
	return fmt.Sprintf("invalid temporary file template %q: %s", e.Template, e.Reason)
}

// MaterializationError reports a staged file that could not be written.
// Always fatal for the affected unit.
type MaterializationError struct {
	Path string
	Err  error
}

func (e MaterializationError) Error() string {
	return fmt.Sprintf("creating staged file %s: %v", e.Path, e.Err)
}

func (e MaterializationError) Unwrap() error { return e.Err }

var placeholderRe = regexp.MustCompile(`\{(prefix|source|line|unique|suffix)\}`)

// ValidateTemplate checks the raw template before any execution begins.
// The {suffix} placeholder must appear literally in the template; a
// suffix smuggled in through another placeholder's value does not count.
func ValidateTemplate(tpl string) error {
	if !strings.Contains(tpl, "{suffix}") {
		return TemplateError{Template: tpl, Reason: "missing a {suffix} placeholder"}
	}
	return nil
}

// Materializer writes staged files into Dir using the naming Template.
type Materializer struct {
	Template string
	Prefix   string
	Dir      string // defaults to os.TempDir()
	PadFile  bool
}

// StagedFile is one materialized temporary file. Content is the text
// written, before newline translation and encoding.
type StagedFile struct {
	Path    string
	Content string
}

// Remove deletes the staged file.
func (s *StagedFile) Remove() error { return os.Remove(s.Path) }

// Stage writes content for a unit beginning at startLine of src to a
// fresh temporary file. The file is written in the document's encoding
// and newline style. With PadFile enabled, blank lines are prepended so
// line N of the staged file is line N of the source document.
func (m *Materializer) Stage(src *document.Source, startLine int, suffix, content string) (*StagedFile, error) {
	if !strings.HasPrefix(suffix, ".") {
		return nil, TemplateError{Template: m.Template, Reason: fmt.Sprintf("suffix %q lacks a leading '.'", suffix)}
	}

	if m.PadFile {
		content = strings.Repeat("\n", startLine-1) + content
	}
	out := content
	if src.Newline != "" && src.Newline != "\n" {
		out = strings.ReplaceAll(out, "\n", src.Newline)
	}

	data, err := src.EncodeContent(out)
	if err != nil {
		return nil, MaterializationError{Path: src.Path, Err: err}
	}

	dir := m.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, m.name(src.Path, startLine, suffix))

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, MaterializationError{Path: path, Err: err}
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return nil, MaterializationError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return nil, MaterializationError{Path: path, Err: err}
	}
	return &StagedFile{Path: path, Content: content}, nil
}

// Read returns the staged file's current text, decoded and with
// newlines normalized back to "\n".
func (s *StagedFile) Read(src *document.Source) (string, error) {
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return "", fmt.Errorf("reading staged file %s: %w", s.Path, err)
	}
	text, err := src.Encoding.Decode(raw)
	if err != nil {
		return "", fmt.Errorf("decoding staged file %s: %w", s.Path, err)
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n"), nil
}

// name expands the naming template in a single pass, so placeholder
// values can never introduce further placeholders.
func (m *Materializer) name(sourcePath string, line int, suffix string) string {
	values := map[string]string{
		"prefix": m.Prefix,
		"source": sanitize(filepath.Base(sourcePath)),
		"line":   fmt.Sprintf("%d", line),
		"unique": uuid.NewString(),
		"suffix": suffix,
	}
	return placeholderRe.ReplaceAllStringFunc(m.Template, func(ph string) string {
		return values[ph[1:len(ph)-1]]
	})
}

var nonAlnumRe = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// sanitize replaces non-alphanumeric runs in a source file name with a
// single underscore.
func sanitize(name string) string {
	return strings.Trim(nonAlnumRe.ReplaceAllString(name, "_"), "_")
}
