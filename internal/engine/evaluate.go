package engine

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/docrun/docrun/internal/document"
	"github.com/docrun/docrun/internal/invoke"
	"github.com/docrun/docrun/internal/markup"
	"github.com/docrun/docrun/internal/report"
	"github.com/docrun/docrun/internal/stage"
)

// evaluateDocument parses one document and evaluates its units. The
// returned error is non-nil only for fail-fast fatal outcomes.
func (e *Engine) evaluateDocument(ctx context.Context, path string, regionJobs int, agg *aggregator) (report.DocumentResult, error) {
	dr := report.DocumentResult{Path: path}

	kind, ok := e.Suffixes.Lookup(path)
	if !ok {
		return dr, e.parseFailure(&dr, "Markup language not known for "+path+".", agg)
	}

	src, err := document.Load(path, kind)
	if err != nil {
		return dr, e.parseFailure(&dr, err.Error(), agg)
	}

	regions, err := markup.Parse(src, e.markupOptions())
	if err != nil {
		return dr, e.parseFailure(&dr, err.Error(), agg)
	}

	units, err := buildUnits(path, regions)
	if err != nil {
		return dr, e.parseFailure(&dr, err.Error(), agg)
	}

	var wb *writeState
	if e.Opts.WriteBack {
		// Sequential by configuration; at most one writer per document.
		wb = newWriteState(src)
	}

	if regionJobs == 1 {
		for _, u := range units {
			if ctx.Err() != nil {
				return dr, nil
			}
			res, err := e.evaluateUnit(src, u, wb, agg)
			dr.Units = append(dr.Units, res)
			if err != nil {
				return dr, err
			}
		}
		return dr, nil
	}

	results := make([]report.UnitResult, len(units))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(regionJobs)
	for i, u := range units {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			res, err := e.evaluateUnit(src, u, nil, agg)
			results[i] = res
			return err
		})
	}
	err = g.Wait()
	dr.Units = results
	return dr, err
}

// parseFailure handles a document that could not be parsed: always
// logged, then fatal, collected, or ignored per configuration. When not
// failing on parse errors the document contributes zero regions.
func (e *Engine) parseFailure(dr *report.DocumentResult, msg string, agg *aggregator) error {
	e.Log.Error("%s", msg)
	dr.ParseError = msg
	if !e.Opts.FailOnParseError {
		return nil
	}
	if e.Opts.ContinueOnError {
		agg.collect(msg, 1)
		return nil
	}
	return FatalError{ExitCode: 1, Message: msg}
}

// evaluateUnit stages one unit, invokes the command, and classifies the
// outcome. The returned error is non-nil only for fail-fast fatal
// outcomes. Once dispatched a unit runs to completion; cancellation is
// checked before dispatch, in evaluateDocument.
func (e *Engine) evaluateUnit(src *document.Source, u *Unit, wb *writeState, agg *aggregator) (report.UnitResult, error) {
	res := report.UnitResult{
		Line:     u.StartLine(),
		Language: u.Language(),
		Grouped:  u.Grouped,
		Status:   report.StatusSuccess,
	}

	if e.Opts.Verbose {
		e.Log.Info("Running '%s' on code block at %s line %d",
			commandString(e.Opts.Command), src.Path, u.StartLine())
	}

	suffix := e.Opts.TempSuffix
	if suffix == "" {
		suffix = e.Langs.Suffix(u.Language())
	}

	mat := &stage.Materializer{
		Template: e.Opts.TempTemplate,
		Prefix:   e.Opts.TempPrefix,
		Dir:      e.StageDir,
		PadFile:  e.Opts.PadFile,
	}
	staged, err := mat.Stage(src, u.StartLine(), suffix, u.Content(e.Opts.PadGroups))
	if err != nil {
		return e.fatalUnit(&res, err.Error(), 1, agg)
	}
	defer staged.Remove()

	inv := &invoke.Invoker{
		Args:   e.Opts.Command,
		UsePTY: e.Opts.UsePTY,
		Stdout: e.Stdout,
		Stderr: e.Stderr,
	}
	exitCode, err := inv.Run(staged.Path)
	if err != nil {
		// Launch failures are always logged; the user has no other way
		// to learn the command was not found.
		code := 1
		var invErr invoke.InvocationError
		if errors.As(err, &invErr) {
			code = invErr.ExitCode()
		}
		return e.fatalUnit(&res, err.Error(), code, agg)
	}

	if exitCode != 0 {
		// The command ran and failed; its own output is the diagnostic.
		res.Status = report.StatusFailed
		res.ExitCode = exitCode
		if e.Opts.ContinueOnError {
			agg.collect("Command failed", exitCode)
			return res, nil
		}
		return res, FatalError{ExitCode: exitCode}
	}

	after, err := staged.Read(src)
	if err != nil {
		return e.fatalUnit(&res, err.Error(), 1, agg)
	}

	if u.Grouped {
		return e.guardGroup(src, u, &res, staged.Content, after, agg)
	}

	if wb != nil {
		if err := wb.apply(u.Regions[0], e.unpad(after, u.StartLine())); err != nil {
			return e.fatalUnit(&res, err.Error(), 1, agg)
		}
	}
	return res, nil
}

// guardGroup classifies an attempted mutation of a grouped unit's
// staged file. The source document is never touched either way; the
// policy only controls whether the attempt is fatal.
func (e *Engine) guardGroup(src *document.Source, u *Unit, res *report.UnitResult, before, after string, agg *aggregator) (report.UnitResult, error) {
	if !groupModified(before, after) {
		return *res, nil
	}

	msg := groupWriteMessage(src.Path, u.EndLine(), before, after)
	res.Status = report.StatusGroupWrite

	if !e.Opts.FailOnGroupWrite {
		e.Log.Warn("%s", msg)
		return *res, nil
	}

	e.Log.Error("%s", msg)
	res.ExitCode = 1
	if e.Opts.ContinueOnError {
		agg.collect(msg, 1)
		return *res, nil
	}
	return *res, FatalError{ExitCode: 1, Message: ""}
}

// fatalUnit handles engine-level unit failures (materialization or
// invocation): always logged, then collected or fatal.
func (e *Engine) fatalUnit(res *report.UnitResult, msg string, exitCode int, agg *aggregator) (report.UnitResult, error) {
	e.Log.Error("%s", msg)
	res.Status = report.StatusFailed
	res.ExitCode = exitCode
	if e.Opts.ContinueOnError {
		agg.collect(msg, exitCode)
		return *res, nil
	}
	return *res, FatalError{ExitCode: exitCode, Message: msg}
}

// unpad strips the blank padding lines prepended during staging so the
// written-back content matches the region's own span.
func (e *Engine) unpad(text string, startLine int) string {
	if !e.Opts.PadFile {
		return text
	}
	for i := 0; i < startLine-1 && len(text) > 0 && text[0] == '\n'; i++ {
		text = text[1:]
	}
	return text
}
