// Package mcp provides the docrun MCP server, exposing the region
// execution engine as tools and publishing model instructions.
package mcp

import (
	_ "embed"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	docrun "github.com/docrun/docrun"
	"github.com/docrun/docrun/internal/config"
	"github.com/docrun/docrun/internal/languages"
	"github.com/docrun/docrun/internal/report"
)

//go:embed instructions.md
var Instructions string

// handler holds shared dependencies for all tool handlers.
type handler struct {
	cfg       *config.Config
	store     report.Store
	langs     *languages.Table
	workspace string
}

// NewServer creates an MCP server with the docrun tools registered.
func NewServer(cfg *config.Config, store report.Store, workspace string) *mcp.Server {
	h := &handler{
		cfg:       cfg,
		store:     store,
		langs:     languages.NewTable(),
		workspace: workspace,
	}

	opts := &mcp.ServerOptions{
		Instructions: Instructions,
		Capabilities: &mcp.ServerCapabilities{
			Tools: &mcp.ToolCapabilities{ListChanged: false},
		},
	}
	s := mcp.NewServer(&mcp.Implementation{Name: "docrun", Version: docrun.Version}, opts)

	mcp.AddTool(s, &mcp.Tool{
		Name: "docrun_run",
		Description: `Run a command against code blocks in documentation files.

Code blocks matching the given languages are extracted from each document,
written to temporary files, and the command is invoked on each file in turn.
Grouped blocks are evaluated as one concatenated unit. Results are stored
for drill-down via docrun_inspect.`,
	}, h.runHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name: "docrun_inspect",
		Description: `Drill into results from a docrun_run invocation.

Use the run_id from the tool output; pass a document path to narrow the
result to one file.`,
	}, h.inspectHandler)

	return s
}

// textResult is a helper to build a text-only tool result.
func textResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}

// errorResult is a helper to build an error tool result.
func errorResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}, nil, nil
}
