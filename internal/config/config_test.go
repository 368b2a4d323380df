package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_FromRepoRoot(t *testing.T) {
	dir := t.TempDir()
	cfg := "version: 1\n" +
		"languages: [python, shell]\n" +
		"skip_markers: [type-check]\n" +
		"pad_file: false\n" +
		"jobs: 4\n"
	if err := os.WriteFile(filepath.Join(dir, ".docrun"), []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.RepoRoot != dir {
		t.Errorf("RepoRoot = %q, want %q", res.RepoRoot, dir)
	}
	c := res.Config
	if c.Version != 1 {
		t.Errorf("Version = %d, want 1", c.Version)
	}
	if len(c.Languages) != 2 || c.Languages[0] != "python" {
		t.Errorf("Languages = %v", c.Languages)
	}
	if len(c.SkipMarkers) != 1 || c.SkipMarkers[0] != "type-check" {
		t.Errorf("SkipMarkers = %v", c.SkipMarkers)
	}
	if BoolOr(c.PadFile, true) {
		t.Error("PadFile = true, want false from config")
	}
	if IntOr(c.Jobs, 1) != 4 {
		t.Errorf("Jobs = %d, want 4", IntOr(c.Jobs, 1))
	}
}

func TestLoad_FromSubdirectory(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ".docrun"), []byte("version: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(root, "docs", "guide")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	res, err := Load(sub)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.RepoRoot != root {
		t.Errorf("RepoRoot = %q, want %q", res.RepoRoot, root)
	}
	if res.Config.Version != 2 {
		t.Errorf("Version = %d, want 2", res.Config.Version)
	}
}

func TestLoad_GitRootWithoutConfig(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(root, "docs")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	res, err := Load(sub)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.RepoRoot != root {
		t.Errorf("RepoRoot = %q, want %q", res.RepoRoot, root)
	}
	// Defaults when no .docrun exists.
	if res.Config.Prefix() != "docrun" {
		t.Errorf("Prefix = %q, want docrun", res.Config.Prefix())
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".docrun"), []byte("languages: [unclosed\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestOptionalAccessors(t *testing.T) {
	v := true
	if !BoolOr(&v, false) {
		t.Error("BoolOr(&true, false) = false")
	}
	if BoolOr(nil, false) {
		t.Error("BoolOr(nil, false) = true")
	}
	n := 7
	if IntOr(&n, 1) != 7 {
		t.Error("IntOr(&7, 1) != 7")
	}
	if IntOr(nil, 3) != 3 {
		t.Error("IntOr(nil, 3) != 3")
	}
}
