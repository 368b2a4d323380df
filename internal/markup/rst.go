package markup

import (
	"regexp"
	"strings"
)

var (
	rstDirectiveRe = regexp.MustCompile(`^([ \t]*)\.\. +(code-block|code|sourcecode|jinja)::[ \t]*(\S*)[ \t]*$`)
	rstCommentRe   = regexp.MustCompile(`^[ \t]*\.\. +(.*?)[ \t]*$`)
)

// scanRST walks a reStructuredText document. Code regions come from
// code-block/code/sourcecode directives (and jinja directives for
// template blocks); docrun directives are written as RST comments.
func scanRST(lines []string, path string) ([]event, error) {
	var events []event

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if m := rstDirectiveRe.FindStringSubmatch(line); m != nil {
			indent, name, arg := m[1], m[2], m[3]

			// Skip option lines (:caption: etc.) and blank separators.
			j := i + 1
			for j < len(lines) {
				t := lines[j]
				if strings.TrimSpace(t) == "" {
					j++
					continue
				}
				if deeperThan(t, indent) && strings.HasPrefix(strings.TrimSpace(t), ":") {
					j++
					continue
				}
				break
			}

			// Body: lines indented past the directive, blank lines allowed
			// inside, ending at the first shallower non-blank line.
			start, end := j, j-1
			for j < len(lines) {
				t := lines[j]
				if strings.TrimSpace(t) == "" {
					j++
					continue
				}
				if !deeperThan(t, indent) {
					break
				}
				end = j
				j++
			}
			if end >= start {
				body := lines[start : end+1]
				for len(body) > 0 && strings.TrimSpace(body[0]) == "" {
					start++
					body = body[1:]
				}
				common := commonIndent(body)
				events = append(events, event{
					block:    true,
					line:     i + 1,
					language: arg,
					template: name == "jinja",
					region:   regionAt(dedent(body, common), start+1, end+1, common),
				})
				i = end
				continue
			}
			i = j - 1
			continue
		}

		if m := rstCommentRe.FindStringSubmatch(line); m != nil {
			events = append(events, event{comment: m[1], line: i + 1})
		}
	}
	return events, nil
}

// deeperThan reports whether the line's leading whitespace is longer
// than indent.
func deeperThan(line, indent string) bool {
	return len(leadingWhitespace(line)) > len(indent)
}

func leadingWhitespace(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}

// commonIndent returns the longest whitespace prefix shared by all
// non-blank lines.
func commonIndent(lines []string) string {
	common := ""
	first := true
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		ws := leadingWhitespace(l)
		if first {
			common = ws
			first = false
			continue
		}
		for !strings.HasPrefix(ws, common) {
			common = common[:len(common)-1]
		}
	}
	return common
}
