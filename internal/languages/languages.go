// Package languages maps code-fence language names to canonical file
// suffixes for staged temporary files. The table is built once and
// passed explicitly to the engine rather than consulted through any
// package-level cache.
package languages

import "strings"

// DefaultSuffix is used when the language is not recognized.
const DefaultSuffix = ".txt"

// TemplateSuffix is used for template (jinja) blocks, which carry no
// fence language.
const TemplateSuffix = ".jinja"

// suffixes maps a lowercased language name to its canonical suffix.
var suffixes = map[string]string{
	"bash":         ".sh",
	"c":            ".c",
	"c#":           ".cs",
	"c++":          ".cpp",
	"console":      ".sh",
	"cpp":          ".cpp",
	"csharp":       ".cs",
	"css":          ".css",
	"dockerfile":   ".docker",
	"elixir":       ".ex",
	"erlang":       ".erl",
	"go":           ".go",
	"golang":       ".go",
	"haskell":      ".hs",
	"html":         ".html",
	"java":         ".java",
	"javascript":   ".js",
	"js":           ".js",
	"json":         ".json",
	"jsx":          ".jsx",
	"kotlin":       ".kt",
	"lua":          ".lua",
	"make":         ".mak",
	"makefile":     ".mak",
	"markdown":     ".md",
	"objective-c":  ".m",
	"perl":         ".pl",
	"php":          ".php",
	"python":       ".py",
	"r":            ".r",
	"ruby":         ".rb",
	"rust":         ".rs",
	"scala":        ".scala",
	"sh":           ".sh",
	"shell":        ".sh",
	"sql":          ".sql",
	"swift":        ".swift",
	"toml":         ".toml",
	"ts":           ".ts",
	"typescript":   ".ts",
	"xml":          ".xml",
	"yaml":         ".yaml",
	"yml":          ".yaml",
	"zsh":          ".zsh",
}

// Table is an immutable language to suffix mapping.
type Table struct {
	m map[string]string
}

// NewTable builds the default mapping.
func NewTable() *Table {
	return &Table{m: suffixes}
}

// Suffix returns the canonical file suffix for a language, or
// DefaultSuffix when the language is unknown. An empty language (a
// template block) maps to TemplateSuffix.
func (t *Table) Suffix(language string) string {
	if language == "" {
		return TemplateSuffix
	}
	if s, ok := t.m[strings.ToLower(language)]; ok {
		return s
	}
	return DefaultSuffix
}
