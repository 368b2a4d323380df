package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/docrun/docrun/internal/report"
)

type inspectParams struct {
	RunID string `json:"run_id" jsonschema:"the run ID from a docrun_run result"`
	Path  string `json:"path,omitempty" jsonschema:"narrow the result to one document path from the run"`
}

func (h *handler) inspectHandler(ctx context.Context, req *mcp.CallToolRequest, params inspectParams) (*mcp.CallToolResult, any, error) {
	if params.RunID == "" {
		return errorResult("run_id is required")
	}

	rr, err := h.store.Load(params.RunID)
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to load run %s: %v", params.RunID, err))
	}

	if params.Path != "" {
		dr, err := rr.ByDocument(params.Path)
		if err != nil {
			return errorResult(err.Error())
		}
		return textResult(formatDocument(rr, dr))
	}

	return textResult(formatInspect(rr))
}

func formatInspect(rr *report.RunResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Run: %s\n", rr.ID)
	fmt.Fprintf(&b, "Command: %s\n", strings.Join(rr.Command, " "))
	fmt.Fprintf(&b, "Exit code: %d\n", rr.ExitCode)
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "Documents:")
	for _, d := range rr.Documents {
		status := "pass"
		for _, u := range d.Units {
			if u.Status != report.StatusSuccess {
				status = "fail"
				break
			}
		}
		if d.ParseError != "" {
			status = "parse error"
		}
		fmt.Fprintf(&b, "  %s: %s (%d blocks)\n", d.Path, status, len(d.Units))
	}

	if len(rr.Errors) > 0 {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "Errors:")
		for _, e := range rr.Errors {
			fmt.Fprintf(&b, "  %s (exit %d)\n", e.Message, e.ExitCode)
		}
	}

	return b.String()
}

func formatDocument(rr *report.RunResult, dr *report.DocumentResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Run: %s\n", rr.ID)
	fmt.Fprintf(&b, "Document: %s\n", dr.Path)
	fmt.Fprintln(&b)

	if dr.ParseError != "" {
		fmt.Fprintf(&b, "Parse error: %s\n", dr.ParseError)
		return b.String()
	}
	if len(dr.Units) == 0 {
		fmt.Fprintln(&b, "No matching code blocks.")
		return b.String()
	}

	fmt.Fprintln(&b, "Code blocks:")
	for _, u := range dr.Units {
		kind := u.Language
		if u.Grouped {
			kind += " (group)"
		}
		if u.Status == report.StatusSuccess {
			fmt.Fprintf(&b, "  line %d: %s: %s\n", u.Line, kind, u.Status)
		} else {
			fmt.Fprintf(&b, "  line %d: %s: %s (exit %d)\n", u.Line, kind, u.Status, u.ExitCode)
		}
	}

	return b.String()
}
