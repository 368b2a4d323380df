package engine

import (
	"strings"

	"github.com/docrun/docrun/internal/document"
	"github.com/docrun/docrun/internal/markup"
)

// Unit is one evaluable execution unit: a single region, or a whole
// group evaluated as one concatenated file. Units live for a single
// document evaluation and are never persisted.
type Unit struct {
	Regions []document.Region
	Grouped bool
}

// StartLine is the source line the unit's content begins on.
func (u *Unit) StartLine() int { return u.Regions[0].StartLine }

// EndLine is the anchor for group diagnostics: the closing directive's
// line for groups, the last content line otherwise.
func (u *Unit) EndLine() int {
	if u.Grouped {
		return u.Regions[0].GroupEnd
	}
	return u.Regions[0].ContentEnd
}

// Language is the unit's fence language (the first member's, for
// groups; all members of a group share one by construction upstream).
func (u *Unit) Language() string { return u.Regions[0].Language }

// Content concatenates the unit's regions. With padGroups, blank lines
// are inserted between members so that line numbers in the staged file
// keep corresponding to the source document.
func (u *Unit) Content(padGroups bool) string {
	if len(u.Regions) == 1 {
		return u.Regions[0].Content
	}

	var b strings.Builder
	prevEnd := 0
	for i, r := range u.Regions {
		if i > 0 && padGroups {
			gap := r.StartLine - prevEnd - 1
			for ; gap > 0; gap-- {
				b.WriteString("\n")
			}
		}
		b.WriteString(r.Content)
		prevEnd = r.StartLine + lineCount(r.Content) - 1
	}
	return b.String()
}

func lineCount(content string) int {
	return strings.Count(content, "\n")
}

// buildUnits folds a document's regions into execution units in source
// order. Skipped regions are dropped entirely. A group whose members
// are not contiguous violates the markup contract; write-back safety
// depends on no overlapping groups, so this is a hard parse-level
// error, not a warning.
func buildUnits(path string, regions []document.Region) ([]*Unit, error) {
	var (
		units  []*Unit
		closed = make(map[string]bool)
		open   *Unit
	)

	for _, r := range regions {
		if r.Skip {
			continue
		}
		if !r.Grouped() {
			if open != nil {
				closed[open.Regions[0].GroupID] = true
				open = nil
			}
			units = append(units, &Unit{Regions: []document.Region{r}})
			continue
		}

		if open != nil && open.Regions[0].GroupID == r.GroupID {
			open.Regions = append(open.Regions, r)
			continue
		}
		if open != nil {
			closed[open.Regions[0].GroupID] = true
			open = nil
		}
		if closed[r.GroupID] {
			return nil, markup.ParseError{
				Path:   path,
				Line:   r.StartLine,
				Reason: "group " + r.GroupID + " interleaves with other regions",
			}
		}
		open = &Unit{Regions: []document.Region{r}, Grouped: true}
		units = append(units, open)
	}
	return units, nil
}
