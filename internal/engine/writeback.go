package engine

import (
	"fmt"
	"os"
	"strings"

	"github.com/docrun/docrun/internal/document"
)

// writeState applies command modifications back into a source document.
// Only individual regions are ever written back; earlier replacements
// shift later region spans, so a running line delta keeps them aligned.
// Exists only under sequential execution.
type writeState struct {
	src   *document.Source
	lines []string
	delta int
	mode  os.FileMode
}

func newWriteState(src *document.Source) *writeState {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(src.Path); err == nil {
		mode = info.Mode().Perm()
	}
	return &writeState{src: src, lines: src.Lines(), mode: mode}
}

// apply replaces the region's content span with newContent when the
// command changed it, re-indenting each non-blank line with the
// region's original indent, and rewrites the document in its detected
// encoding and newline style.
func (w *writeState) apply(r document.Region, newContent string) error {
	if newContent == r.Content {
		return nil
	}

	var newLines []string
	if newContent != "" {
		newLines = strings.Split(strings.TrimSuffix(newContent, "\n"), "\n")
		for i, l := range newLines {
			if strings.TrimSpace(l) != "" {
				newLines[i] = r.Indent + l
			} else {
				newLines[i] = ""
			}
		}
	}

	start := r.ContentStart - 1 + w.delta
	end := r.ContentEnd + w.delta // exclusive
	if start < 0 || end > len(w.lines) || start > end {
		return fmt.Errorf("write-back span %d-%d out of range for %s", r.ContentStart, r.ContentEnd, w.src.Path)
	}

	merged := make([]string, 0, len(w.lines)-(end-start)+len(newLines))
	merged = append(merged, w.lines[:start]...)
	merged = append(merged, newLines...)
	merged = append(merged, w.lines[end:]...)
	w.lines = merged
	w.delta += len(newLines) - (end - start)

	return w.flush()
}

// flush rewrites the source document on disk.
func (w *writeState) flush() error {
	text := strings.Join(w.lines, "\n")
	if nl := w.src.Newline; nl != "" && nl != "\n" {
		text = strings.ReplaceAll(text, "\n", nl)
	}
	data, err := w.src.EncodeContent(text)
	if err != nil {
		return fmt.Errorf("encoding %s for write-back: %w", w.src.Path, err)
	}
	if err := os.WriteFile(w.src.Path, data, w.mode); err != nil {
		return fmt.Errorf("writing %s: %w", w.src.Path, err)
	}
	return nil
}
