package document

import (
	"fmt"
	"sort"
	"strings"
)

// UsageError reports an invalid suffix assignment or a file whose
// markup kind cannot be determined.
type UsageError struct {
	Message string
}

func (e UsageError) Error() string { return e.Message }

// DefaultSuffixes assigns the conventional file suffixes to each markup
// kind. ".md" defaults to MyST, not Markdown, matching Sphinx projects;
// plain-Markdown suffixes are opt-in.
func DefaultSuffixes() map[Markup][]string {
	return map[Markup][]string{
		RST:      {".rst"},
		MyST:     {".md"},
		Markdown: {},
		MDX:      {".mdx"},
		Djot:     {".dj"},
		Norg:     {".norg"},
	}
}

// BuildSuffixMap folds per-markup suffix lists into a single map,
// rejecting suffixes claimed by two markup kinds. The bare "." suffix
// is the conventional way to disable a markup kind and never counts as
// an overlap.
func BuildSuffixMap(groups map[Markup][]string) (SuffixMap, error) {
	kinds := make([]Markup, 0, len(groups))
	for kind := range groups {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	out := make(SuffixMap)
	owner := make(map[string]Markup)
	for _, kind := range kinds {
		for _, suffix := range groups[kind] {
			if suffix == "." {
				continue
			}
			if !strings.HasPrefix(suffix, ".") {
				return nil, UsageError{Message: fmt.Sprintf("%q does not start with a '.'.", suffix)}
			}
			if prev, ok := owner[suffix]; ok && prev != kind {
				return nil, UsageError{Message: fmt.Sprintf(
					"Overlapping suffixes between %s and %s: %s.", prev, kind, suffix,
				)}
			}
			owner[suffix] = kind
			out[suffix] = kind
		}
	}
	return out, nil
}

// Validate returns an error when any explicitly given file has a suffix
// outside the map.
func (m SuffixMap) Validate(files []string) error {
	for _, f := range files {
		if _, ok := m.Lookup(f); !ok {
			return UsageError{Message: fmt.Sprintf("Markup language not known for %s.", f)}
		}
	}
	return nil
}

// Suffixes returns the mapped suffixes in deterministic order.
func (m SuffixMap) Suffixes() []string {
	out := make([]string, 0, len(m))
	for s := range m {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
