package mcp

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/shlex"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/docrun/docrun/internal/config"
	"github.com/docrun/docrun/internal/discover"
	"github.com/docrun/docrun/internal/document"
	"github.com/docrun/docrun/internal/engine"
	"github.com/docrun/docrun/internal/report"
	"github.com/docrun/docrun/internal/stage"
	"github.com/docrun/docrun/internal/term"
)

type runParams struct {
	Command         string   `json:"command" jsonschema:"the command to run against each code block, e.g. 'python -m mypy'; the staged file path is appended as the last argument"`
	Languages       []string `json:"languages" jsonschema:"code block languages to evaluate, e.g. [\"python\"]"`
	Paths           []string `json:"paths,omitempty" jsonschema:"documentation files or directories to search, relative to the workspace. Defaults to the workspace root."`
	ContinueOnError *bool    `json:"continue_on_error,omitempty" jsonschema:"keep evaluating after a block fails and report the highest exit code. Default: true."`
}

func (h *handler) runHandler(ctx context.Context, req *mcp.CallToolRequest, params runParams) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(params.Command) == "" {
		return errorResult("command is required")
	}
	if len(params.Languages) == 0 {
		return errorResult("languages is required")
	}

	argv, err := shlex.Split(params.Command)
	if err != nil || len(argv) == 0 {
		return errorResult(fmt.Sprintf("cannot parse command %q", params.Command))
	}

	paths := params.Paths
	if len(paths) == 0 {
		paths = []string{h.workspace}
	}

	suffixes, err := document.BuildSuffixMap(document.DefaultSuffixes())
	if err != nil {
		return errorResult(err.Error())
	}
	var files []string
	for _, p := range paths {
		if info, statErr := os.Stat(p); statErr == nil && !info.IsDir() {
			files = append(files, p)
		}
	}
	if err := suffixes.Validate(files); err != nil {
		return errorResult(err.Error())
	}

	docs, err := discover.Documents(paths, suffixes.Suffixes(), discover.Options{
		ExcludePatterns:  h.cfg.Exclude,
		RespectGitignore: config.BoolOr(h.cfg.RespectGitignore, false),
	})
	if err != nil {
		return errorResult(fmt.Sprintf("discovery failed: %v", err))
	}
	if len(docs) == 0 {
		return textResult("No matching documents found.")
	}

	var out strings.Builder
	eng := &engine.Engine{
		Opts: engine.Options{
			Command:          argv,
			Languages:        params.Languages,
			SkipMarkers:      h.cfg.SkipMarkers,
			GroupMarkers:     h.cfg.GroupMarkers,
			TempPrefix:       h.cfg.Prefix(),
			TempTemplate:     stage.DefaultTemplate,
			TempSuffix:       h.cfg.TempExtension,
			PadFile:          config.BoolOr(h.cfg.PadFile, true),
			PadGroups:        config.BoolOr(h.cfg.PadGroups, true),
			UsePTY:           false,
			WriteBack:        false,
			FailOnParseError: config.BoolOr(h.cfg.FailOnParseError, false),
			FailOnGroupWrite: config.BoolOr(h.cfg.FailOnGroupWrite, true),
			ContinueOnError:  config.BoolOr(params.ContinueOnError, true),
			DocumentJobs:     config.IntOr(h.cfg.Jobs, 1),
			RegionJobs:       config.IntOr(h.cfg.RegionJobs, 1),
		},
		Suffixes: suffixes,
		Langs:    h.langs,
		Log:      term.New(&out),
		Stdout:   &out,
		Stderr:   &out,
	}
	rr, runErr := eng.Run(ctx, docs)
	if runErr != nil && rr == nil {
		// Rejected configuration; nothing ran.
		return errorResult(fmt.Sprintf("run failed: %v", runErr))
	}
	_ = h.store.Save(rr)

	return textResult(formatRun(rr, out.String()))
}

// formatRun renders a run summary for the model: status, counts, and
// the per-document failures worth drilling into.
func formatRun(rr *report.RunResult, output string) string {
	var b strings.Builder

	if rr.ExitCode == 0 {
		fmt.Fprintln(&b, "Status: PASS")
	} else {
		fmt.Fprintln(&b, "Status: FAIL")
	}
	fmt.Fprintf(&b, "Run: %s\n", rr.ID)
	fmt.Fprintf(&b, "Exit code: %d\n", rr.ExitCode)
	fmt.Fprintln(&b)

	var units, succeeded int
	for _, d := range rr.Documents {
		units += len(d.Units)
		for _, u := range d.Units {
			if u.Status == report.StatusSuccess {
				succeeded++
			}
		}
	}
	fmt.Fprintf(&b, "Documents: %d, code blocks: %d, passed: %d\n", len(rr.Documents), units, succeeded)

	failed := rr.Failed()
	if len(failed) > 0 {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "Failures:")
		for _, f := range failed {
			fmt.Fprintf(&b, "  %s:%d: %s (exit %d)\n", f.Path, f.Unit.Line, f.Unit.Status, f.Unit.ExitCode)
		}
	}
	for _, d := range rr.Documents {
		if d.ParseError != "" {
			fmt.Fprintf(&b, "  %s: parse error: %s\n", d.Path, d.ParseError)
		}
	}

	if output != "" {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "Output:")
		for _, line := range strings.Split(strings.TrimRight(output, "\n"), "\n") {
			fmt.Fprintf(&b, "    %s\n", line)
		}
	}

	if len(failed) > 0 {
		fmt.Fprintln(&b)
		fmt.Fprintf(&b, "Inspect with docrun_inspect(run_id=%q, path=\"<document>\").\n", rr.ID)
	}

	return b.String()
}
