// Package engine turns discovered documents into command invocations:
// it parses each document into regions, folds them into execution
// units, stages temporary files, runs the configured command, guards
// grouped units against write attempts, and aggregates failures into a
// single process exit status.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/docrun/docrun/internal/document"
	"github.com/docrun/docrun/internal/languages"
	"github.com/docrun/docrun/internal/markup"
	"github.com/docrun/docrun/internal/report"
	"github.com/docrun/docrun/internal/stage"
	"github.com/docrun/docrun/internal/term"
)

// Options configures a run.
type Options struct {
	Command      []string // argv prefix the staged file path is appended to
	Languages    []string
	SkipMarkers  []string
	GroupMarkers []string

	TempPrefix   string
	TempTemplate string
	TempSuffix   string // override; empty derives the suffix from the language

	PadFile   bool
	PadGroups bool
	UsePTY    bool
	WriteBack bool
	Templates bool // evaluate jinja template blocks

	FailOnParseError bool
	FailOnGroupWrite bool
	ContinueOnError  bool

	// Worker counts: 1 sequential, N>1 fixed pool, 0 auto (CPU count).
	DocumentJobs int
	RegionJobs   int

	Verbose bool
}

// Engine evaluates documents. Construct one per invocation.
type Engine struct {
	Opts     Options
	Suffixes document.SuffixMap
	Langs    *languages.Table
	Log      *term.Logger
	Stdout   io.Writer
	Stderr   io.Writer

	// StageDir overrides the staged-file directory; tests use this.
	StageDir string
}

// resolveJobs maps a worker-count option to an effective pool size.
func resolveJobs(n int) (int, error) {
	switch {
	case n < 0:
		return 0, ConfigError{Reason: fmt.Sprintf("worker count %d is negative", n)}
	case n == 0:
		if c := runtime.NumCPU(); c >= 1 {
			return c, nil
		}
		return 1, nil
	default:
		return n, nil
	}
}

// validate rejects bad configurations before any unit is evaluated.
func (e *Engine) validate() (docJobs, regionJobs int, err error) {
	if len(e.Opts.Command) == 0 {
		return 0, 0, ConfigError{Reason: "no command given"}
	}
	if err := stage.ValidateTemplate(e.Opts.TempTemplate); err != nil {
		return 0, 0, ConfigError{Reason: err.Error()}
	}
	if e.Opts.TempSuffix != "" && !strings.HasPrefix(e.Opts.TempSuffix, ".") {
		return 0, 0, ConfigError{Reason: fmt.Sprintf("'%s' does not start with a '.'.", e.Opts.TempSuffix)}
	}

	docJobs, err = resolveJobs(e.Opts.DocumentJobs)
	if err != nil {
		return 0, 0, err
	}
	regionJobs, err = resolveJobs(e.Opts.RegionJobs)
	if err != nil {
		return 0, 0, err
	}

	// Concurrent writers to a document cannot be made safe without a
	// transactional write layer this tool does not have; the combination
	// is rejected outright rather than attempted.
	if (docJobs > 1 || regionJobs > 1) && e.Opts.WriteBack {
		return 0, 0, ConfigError{
			Reason: "write-back requires sequential execution; use --no-write-back with --jobs or --region-jobs",
		}
	}
	return docJobs, regionJobs, nil
}

// Run evaluates every document and returns the structured run result.
// The returned error is a ConfigError for rejected configurations or a
// FatalError under fail-fast; the result is populated either way.
func (e *Engine) Run(ctx context.Context, paths []string) (*report.RunResult, error) {
	docJobs, regionJobs, err := e.validate()
	if err != nil {
		return nil, err
	}

	rr := &report.RunResult{ID: uuid.NewString(), Command: e.Opts.Command}
	agg := &aggregator{}
	docs := make([]report.DocumentResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(docJobs)
	for i, path := range paths {
		g.Go(func() error {
			// A fatal error elsewhere stops scheduling new documents;
			// in-flight ones finish on their own.
			if gctx.Err() != nil {
				docs[i] = report.DocumentResult{Path: path}
				return nil
			}
			dr, err := e.evaluateDocument(gctx, path, regionJobs, agg)
			docs[i] = dr
			return err
		})
	}
	waitErr := g.Wait()

	rr.Documents = docs
	rr.Errors = agg.errors()

	if waitErr != nil {
		var fatal FatalError
		if errors.As(waitErr, &fatal) {
			rr.ExitCode = fatal.ExitCode
			return rr, fatal
		}
		return rr, waitErr
	}

	rr.ExitCode = agg.exitCode()
	return rr, nil
}

// markupOptions builds the scanner options from the run options.
func (e *Engine) markupOptions() markup.Options {
	return markup.Options{
		Languages:       e.Opts.Languages,
		SkipDirectives:  markup.SkipDirectives(e.Opts.SkipMarkers),
		GroupDirectives: markup.GroupDirectives(e.Opts.GroupMarkers),
		Templates:       e.Opts.Templates,
	}
}

// commandString renders the argv for diagnostics, quoting arguments
// containing whitespace.
func commandString(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		if strings.ContainsAny(a, " \t") {
			quoted[i] = "'" + a + "'"
		} else {
			quoted[i] = a
		}
	}
	return strings.Join(quoted, " ")
}
