package mcp

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/docrun/docrun/internal/config"
	"github.com/docrun/docrun/internal/report"
)

// setup creates a full docrun MCP server + client over in-memory
// transports rooted at workspaceDir.
func setup(t *testing.T, workspaceDir string) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	store := report.NewLRUStore(5, report.NewDiskStoreAt(t.TempDir()))
	server := NewServer(&config.Config{}, store, workspaceDir)

	ct, st := mcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, st, nil)
	if err != nil {
		t.Fatalf("server.Connect: %v", err)
	}

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, ct, nil)
	if err != nil {
		t.Fatalf("client.Connect: %v", err)
	}

	t.Cleanup(func() {
		_ = cs.Close()
		_ = ss.Wait()
	})

	return cs
}

func callTool(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("tool result has no content")
	}
	tc, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("content = %T, want TextContent", res.Content[0])
	}
	return tc.Text
}

func writeWorkspace(t *testing.T, docs map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range docs {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func runID(t *testing.T, text string) string {
	t.Helper()
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "Run: ") {
			return strings.TrimPrefix(line, "Run: ")
		}
	}
	t.Fatalf("no run ID in output:\n%s", text)
	return ""
}

func TestRunTool_Pass(t *testing.T) {
	ws := writeWorkspace(t, map[string]string{
		"doc.md": "```python\nx = 1\n```\n",
	})
	cs := setup(t, ws)

	res := callTool(t, cs, "docrun_run", map[string]any{
		"command":   "cat",
		"languages": []string{"python"},
		"paths":     []string{ws},
	})
	text := resultText(t, res)

	if res.IsError {
		t.Fatalf("IsError = true:\n%s", text)
	}
	if !strings.Contains(text, "Status: PASS") {
		t.Errorf("output missing PASS:\n%s", text)
	}
	if !strings.Contains(text, "code blocks: 1, passed: 1") {
		t.Errorf("output missing counts:\n%s", text)
	}
}

func TestRunTool_FailureAndInspect(t *testing.T) {
	ws := writeWorkspace(t, map[string]string{
		"good.md": "```python\ntrue\n```\n",
		"bad.md":  "```python\nexit 3\n```\n",
	})
	cs := setup(t, ws)

	res := callTool(t, cs, "docrun_run", map[string]any{
		"command":   "sh",
		"languages": []string{"python"},
		"paths":     []string{ws},
	})
	text := resultText(t, res)

	if !strings.Contains(text, "Status: FAIL") {
		t.Errorf("output missing FAIL:\n%s", text)
	}
	if !strings.Contains(text, "Exit code: 3") {
		t.Errorf("output missing exit code:\n%s", text)
	}

	id := runID(t, text)

	inspect := callTool(t, cs, "docrun_inspect", map[string]any{"run_id": id})
	itext := resultText(t, inspect)
	if !strings.Contains(itext, "bad.md") || !strings.Contains(itext, "fail") {
		t.Errorf("inspect output:\n%s", itext)
	}

	byDoc := callTool(t, cs, "docrun_inspect", map[string]any{
		"run_id": id,
		"path":   filepath.Join(ws, "bad.md"),
	})
	btext := resultText(t, byDoc)
	if !strings.Contains(btext, "failed (exit 3)") {
		t.Errorf("per-document output:\n%s", btext)
	}
}

func TestRunTool_MissingArguments(t *testing.T) {
	ws := writeWorkspace(t, nil)
	cs := setup(t, ws)

	res := callTool(t, cs, "docrun_run", map[string]any{
		"command":   "",
		"languages": []string{"python"},
	})
	if !res.IsError {
		t.Error("expected IsError for empty command")
	}

	res = callTool(t, cs, "docrun_inspect", map[string]any{"run_id": "no-such-run"})
	if !res.IsError {
		t.Error("expected IsError for unknown run")
	}
}

func TestInstructionsEmbedded(t *testing.T) {
	if !strings.Contains(Instructions, "docrun_run") {
		t.Error("instructions missing docrun_run")
	}
	if !strings.Contains(Instructions, "docrun_inspect") {
		t.Error("instructions missing docrun_inspect")
	}
}
