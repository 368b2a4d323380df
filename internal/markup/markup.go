// Package markup extracts code regions from documentation files. Each
// supported markup kind has a line-based scanner that recognizes code
// fences and directive comments; the scanners share the skip/group
// assembly logic so directive semantics are identical across dialects.
package markup

import (
	"fmt"
	"strings"

	"github.com/docrun/docrun/internal/document"
)

// Options controls which blocks become regions and which directive
// comments are honoured.
type Options struct {
	// Languages enables fence languages. A block whose language is not
	// enabled produces no region.
	Languages []string

	// SkipDirectives and GroupDirectives are the directive texts to
	// honour, e.g. "skip docrun[all]" and "group docrun[all]".
	SkipDirectives  []string
	GroupDirectives []string

	// Templates enables template (jinja) blocks for MyST and
	// reStructuredText documents.
	Templates bool
}

// ParseError reports a document that could not be parsed: malformed
// grouping directives or an unterminated fence.
type ParseError struct {
	Path   string
	Line   int
	Reason string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("could not parse %s: line %d: %s", e.Path, e.Line, e.Reason)
}

// SkipDirectives builds the directive texts honoured for skipping. The
// "all" marker is always included.
func SkipDirectives(markers []string) []string {
	return directives("skip", markers)
}

// GroupDirectives builds the directive texts honoured for grouping. The
// "all" marker is always included.
func GroupDirectives(markers []string) []string {
	return directives("group", markers)
}

func directives(verb string, markers []string) []string {
	out := []string{fmt.Sprintf("%s docrun[all]", verb)}
	for _, m := range markers {
		if m == "all" || m == "" {
			continue
		}
		d := fmt.Sprintf("%s docrun[%s]", verb, m)
		if !contains(out, d) {
			out = append(out, d)
		}
	}
	return out
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

// Parse scans one document and returns its regions in source order.
// The returned regions satisfy the engine's contract: groups are
// contiguous, skip applies to the single following block, and malformed
// grouping is a hard error.
func Parse(src *document.Source, opts Options) ([]document.Region, error) {
	var scan func(lines []string, path string) ([]event, error)
	switch src.Markup {
	case document.RST:
		scan = scanRST
	case document.MyST:
		scan = scanMyST
	case document.Markdown:
		scan = scanMarkdown
	case document.MDX:
		scan = scanMDX
	case document.Djot:
		scan = scanDjot
	case document.Norg:
		scan = scanNorg
	default:
		return nil, ParseError{Path: src.Path, Reason: fmt.Sprintf("unsupported markup %s", src.Markup)}
	}

	events, err := scan(src.Lines(), src.Path)
	if err != nil {
		return nil, err
	}
	return assemble(src, events, opts)
}

// event is one scanner finding: a directive comment or a code block.
type event struct {
	// comment text, trimmed; empty for block events
	comment string
	line    int // 1-based line of the comment or fence opener

	block    bool
	language string
	template bool
	region   document.Region // block data without skip/group state
}

// assemble turns scanner events into regions, applying the skip and
// group directive state machine.
func assemble(src *document.Source, events []event, opts Options) ([]document.Region, error) {
	enabled := make(map[string]bool, len(opts.Languages))
	for _, l := range opts.Languages {
		enabled[strings.ToLower(l)] = true
	}

	var (
		regions     []document.Region
		pendingSkip bool
		groupID     string
		groupLine   int
		groupDir    string
		groupCount  int
	)

	for _, ev := range events {
		if !ev.block {
			text := ev.comment
			if _, ok := matchDirective(text, opts.SkipDirectives, "next"); ok {
				pendingSkip = true
				continue
			}
			if d, ok := matchDirective(text, opts.GroupDirectives, "start"); ok {
				if groupID != "" {
					return nil, ParseError{
						Path:   src.Path,
						Line:   ev.line,
						Reason: fmt.Sprintf("%q opened inside an open group started on line %d", text, groupLine),
					}
				}
				groupCount++
				groupID = fmt.Sprintf("g%d", groupCount)
				groupLine = ev.line
				groupDir = d
				continue
			}
			if d, ok := matchDirective(text, opts.GroupDirectives, "end"); ok {
				if groupID == "" {
					return nil, ParseError{
						Path:   src.Path,
						Line:   ev.line,
						Reason: fmt.Sprintf("%q without a matching start", text),
					}
				}
				if d != groupDir {
					return nil, ParseError{
						Path:   src.Path,
						Line:   ev.line,
						Reason: fmt.Sprintf("%q does not close %q started on line %d", text, groupDir, groupLine),
					}
				}
				for i := range regions {
					if regions[i].GroupID == groupID {
						regions[i].GroupEnd = ev.line
					}
				}
				groupID = ""
				continue
			}
			// Not a docrun directive; ordinary comment.
			continue
		}

		wantLang := enabled[strings.ToLower(ev.language)] && ev.language != ""
		wantTemplate := ev.template && opts.Templates
		if !wantLang && !wantTemplate {
			continue
		}
		// A skip directive binds to the next evaluated region; blocks
		// in other languages do not consume it.
		skip := pendingSkip
		pendingSkip = false

		r := ev.region
		r.SourcePath = src.Path
		r.Language = ev.language
		if ev.template {
			r.Language = ""
		}
		if skip {
			r.Skip = true
		} else {
			r.GroupID = groupID
		}
		regions = append(regions, r)
	}

	if groupID != "" {
		return nil, ParseError{
			Path:   src.Path,
			Line:   groupLine,
			Reason: fmt.Sprintf("%q has no matching end", groupDir+": start"),
		}
	}
	return regions, nil
}

// matchDirective reports whether text is "<directive>: <action>" for one
// of the given directives, returning the matching directive.
func matchDirective(text string, dirs []string, action string) (string, bool) {
	text = strings.Join(strings.Fields(text), " ")
	for _, d := range dirs {
		if text == d+": "+action {
			return d, true
		}
	}
	return "", false
}

// dedent strips prefix from each line when present. Blank lines pass
// through untouched.
func dedent(lines []string, prefix string) []string {
	if prefix == "" {
		return lines
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		if strings.HasPrefix(l, prefix) {
			out[i] = l[len(prefix):]
		} else {
			out[i] = strings.TrimLeft(l, " \t")
		}
	}
	return out
}

// joinBody builds region content from body lines. Content always ends
// with a newline unless the body is empty.
func joinBody(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// regionAt builds the span data for a block whose body occupies
// 1-based source lines [startLine, endLine], each prefixed with indent.
func regionAt(body []string, startLine, endLine int, indent string) document.Region {
	return document.Region{
		StartLine:    startLine,
		Content:      joinBody(body),
		ContentStart: startLine,
		ContentEnd:   endLine,
		Indent:       indent,
	}
}
