package markup

import (
	"regexp"
	"strings"
)

// Fence-based dialects (Markdown, MDX, MyST, Djot) share one scanner
// parameterized by the dialect's comment syntax.

var (
	fenceOpenRe   = regexp.MustCompile("^([ \t]*)(`{3,}|~{3,})[ \t]*([^`]*)$")
	htmlComment   = regexp.MustCompile(`^[ \t]*<!---?\s*(.*?)\s*-->[ \t]*$`)
	mdxComment    = regexp.MustCompile(`^[ \t]*\{\s*/\*\s*(.*?)\s*\*/\s*\}[ \t]*$`)
	djotComment   = regexp.MustCompile(`^[ \t]*\{%\s*(.*?)\s*%\}[ \t]*$`)
	percentLine   = regexp.MustCompile(`^%\s*(.*?)\s*$`)
	mystDirective = regexp.MustCompile(`^\{([a-zA-Z0-9_-]+)\}[ \t]*(\S*)`)
)

// commentFunc extracts a directive comment from a single line.
type commentFunc func(line string) (string, bool)

func scanMarkdown(lines []string, path string) ([]event, error) {
	return scanFenced(lines, path, func(line string) (string, bool) {
		return matchOne(line, htmlComment)
	})
}

func scanMDX(lines []string, path string) ([]event, error) {
	return scanFenced(lines, path, func(line string) (string, bool) {
		if t, ok := matchOne(line, mdxComment); ok {
			return t, true
		}
		// MDX files frequently keep plain HTML comments too.
		return matchOne(line, htmlComment)
	})
}

func scanMyST(lines []string, path string) ([]event, error) {
	return scanFenced(lines, path, func(line string) (string, bool) {
		if t, ok := matchOne(line, percentLine); ok {
			return t, true
		}
		return matchOne(line, htmlComment)
	})
}

func scanDjot(lines []string, path string) ([]event, error) {
	return scanFenced(lines, path, func(line string) (string, bool) {
		return matchOne(line, djotComment)
	})
}

func matchOne(line string, re *regexp.Regexp) (string, bool) {
	m := re.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// scanFenced walks the document emitting comment and block events. An
// unterminated fence is a parse error.
func scanFenced(lines []string, path string, comment commentFunc) ([]event, error) {
	var events []event

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if text, ok := comment(line); ok {
			events = append(events, event{comment: text, line: i + 1})
			continue
		}

		m := fenceOpenRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		indent, fence, info := m[1], m[2], strings.TrimSpace(m[3])

		closeAt := -1
		for j := i + 1; j < len(lines); j++ {
			if closesFence(lines[j], fence) {
				closeAt = j
				break
			}
		}
		if closeAt < 0 {
			return nil, ParseError{Path: path, Line: i + 1, Reason: "unterminated code fence"}
		}

		language, template := fenceInfo(info)
		body := dedent(lines[i+1:closeAt], indent)
		events = append(events, event{
			block:    true,
			line:     i + 1,
			language: language,
			template: template,
			region:   regionAt(body, i+2, closeAt, indent),
		})
		i = closeAt
	}
	return events, nil
}

// closesFence reports whether line is a closing fence for the given
// opener: the same character, at least the same length, nothing else.
func closesFence(line, open string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < len(open) {
		return false
	}
	for _, r := range trimmed {
		if byte(r) != open[0] {
			return false
		}
	}
	return true
}

// fenceInfo interprets a fence info string. Plain info uses the first
// word as the language. A braced MyST directive fence is either a
// template block ({jinja}) or a code directive ({code-block} python);
// other directives produce no region.
func fenceInfo(info string) (language string, template bool) {
	if info == "" {
		return "", false
	}
	if m := mystDirective.FindStringSubmatch(info); m != nil {
		name, arg := m[1], m[2]
		switch name {
		case "jinja":
			return "", true
		case "code-block", "code-cell", "code", "sourcecode":
			return arg, false
		default:
			return "", false
		}
	}
	fields := strings.Fields(info)
	return fields[0], false
}
