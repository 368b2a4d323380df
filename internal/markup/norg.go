package markup

import "regexp"

var (
	norgCodeRe    = regexp.MustCompile(`^([ \t]*)@code[ \t]*(\S*)[ \t]*$`)
	norgEndRe     = regexp.MustCompile(`^[ \t]*@end[ \t]*$`)
	norgCommentRe = regexp.MustCompile(`^[ \t]*%\s*(.*?)\s*$`)
)

// scanNorg walks a Norg document. Code regions are @code … @end verbatim
// ranges; docrun directives are % comment lines.
func scanNorg(lines []string, path string) ([]event, error) {
	var events []event

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if m := norgCodeRe.FindStringSubmatch(line); m != nil {
			indent, language := m[1], m[2]

			closeAt := -1
			for j := i + 1; j < len(lines); j++ {
				if norgEndRe.MatchString(lines[j]) {
					closeAt = j
					break
				}
			}
			if closeAt < 0 {
				return nil, ParseError{Path: path, Line: i + 1, Reason: "@code without @end"}
			}

			body := dedent(lines[i+1:closeAt], indent)
			events = append(events, event{
				block:    true,
				line:     i + 1,
				language: language,
				region:   regionAt(body, i+2, closeAt, indent),
			})
			i = closeAt
			continue
		}

		if m := norgCommentRe.FindStringSubmatch(line); m != nil {
			events = append(events, event{comment: m[1], line: i + 1})
		}
	}
	return events, nil
}
