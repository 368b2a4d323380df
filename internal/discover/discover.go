// Package discover resolves the documents a run operates on: explicit
// files pass through, directories are walked recursively with suffix,
// depth, exclude-pattern, and gitignore filtering.
package discover

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// Options controls directory walking.
type Options struct {
	// MaxDepth bounds how many path segments below a given root are
	// searched. 0 means unlimited.
	MaxDepth int

	// ExcludePatterns are glob-style patterns matched against the
	// slash-separated path relative to the walked root, and against the
	// file's base name.
	ExcludePatterns []string

	// RespectGitignore filters walked files through the root's
	// .gitignore, when one exists.
	RespectGitignore bool
}

// Documents expands the given paths into a de-duplicated, order-
// preserving list of document files. Explicit file arguments are always
// included; directory arguments are searched for the given suffixes.
func Documents(paths []string, suffixes []string, opts Options) ([]string, error) {
	var (
		out  []string
		seen = make(map[string]bool)
	)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", path, err)
		}
		if !info.IsDir() {
			add(path)
			continue
		}

		matcher := loadGitignore(path, opts.RespectGitignore)
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			rel, relErr := filepath.Rel(path, p)
			if relErr != nil {
				return relErr
			}
			rel = filepath.ToSlash(rel)
			if d.IsDir() {
				if opts.MaxDepth > 0 && rel != "." && depth(rel) >= opts.MaxDepth {
					return filepath.SkipDir
				}
				return nil
			}
			if !hasSuffix(p, suffixes) {
				return nil
			}
			if excluded(rel, opts.ExcludePatterns) {
				return nil
			}
			if matcher != nil && matcher.MatchesPath(rel) {
				return nil
			}
			add(p)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", path, err)
		}
	}
	return out, nil
}

func loadGitignore(root string, enabled bool) *gitignore.GitIgnore {
	if !enabled {
		return nil
	}
	matcher, err := gitignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		// Missing or unreadable .gitignore disables filtering.
		return nil
	}
	return matcher
}

func depth(rel string) int {
	return len(strings.Split(rel, "/"))
}

func hasSuffix(path string, suffixes []string) bool {
	for _, s := range suffixes {
		if s != "." && strings.HasSuffix(path, s) {
			return true
		}
	}
	return false
}

func excluded(rel string, patterns []string) bool {
	base := filepath.Base(rel)
	for _, pat := range patterns {
		if ok, _ := filepath.Match(pat, rel); ok {
			return true
		}
		if ok, _ := filepath.Match(pat, base); ok {
			return true
		}
	}
	return false
}
