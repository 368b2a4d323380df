// Package config loads and validates the optional .docrun YAML file,
// which supplies project-wide defaults that individual flags override.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the parsed .docrun configuration. All fields are
// optional; zero values defer to built-in defaults.
type Config struct {
	Version int `yaml:"version"`

	Languages    []string `yaml:"languages"`
	SkipMarkers  []string `yaml:"skip_markers"`
	GroupMarkers []string `yaml:"group_markers"`

	TempPrefix    string `yaml:"temporary_file_name_prefix"`
	TempTemplate  string `yaml:"temporary_file_template"`
	TempExtension string `yaml:"temporary_file_extension"`

	PadFile   *bool `yaml:"pad_file"`
	PadGroups *bool `yaml:"pad_groups"`

	Jobs       *int `yaml:"jobs"`
	RegionJobs *int `yaml:"region_jobs"`

	Exclude          []string `yaml:"exclude"`
	RespectGitignore *bool    `yaml:"respect_gitignore"`

	FailOnParseError *bool `yaml:"fail_on_parse_error"`
	FailOnGroupWrite *bool `yaml:"fail_on_group_write"`
}

// Prefix returns the configured staged-file name prefix or the default.
func (c *Config) Prefix() string {
	if c.TempPrefix != "" {
		return c.TempPrefix
	}
	return "docrun"
}

// BoolOr resolves an optional boolean against its default.
func BoolOr(v *bool, def bool) bool {
	if v != nil {
		return *v
	}
	return def
}

// IntOr resolves an optional integer against its default.
func IntOr(v *int, def int) int {
	if v != nil {
		return *v
	}
	return def
}

// LoadResult holds the parsed config and the directory it governs.
type LoadResult struct {
	Config   *Config
	RepoRoot string // directory containing .docrun or .git; falls back to workspace
}

// Load reads the .docrun file from the repository root, discovered by
// walking upward from workspace. A missing file yields defaults.
func Load(workspace string) (*LoadResult, error) {
	root, err := findRepoRoot(workspace)
	if err != nil {
		root = workspace
	}

	path := filepath.Join(root, ".docrun")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &LoadResult{Config: &Config{}, RepoRoot: root}, nil
		}
		return nil, fmt.Errorf("reading .docrun: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing .docrun: %w", err)
	}
	return &LoadResult{Config: cfg, RepoRoot: root}, nil
}

// findRepoRoot walks upward from dir looking for a directory containing
// a .docrun file or a .git directory.
func findRepoRoot(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, ".docrun")); err == nil {
			return dir, nil
		}
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("repository root not found")
		}
		dir = parent
	}
}
