// Package report provides structured persistence and retrieval of run
// results: the per-document, per-unit outcomes of running a command
// against documentation code blocks. Stored runs back the MCP
// drill-down tools.
package report

import "fmt"

// Store persists and retrieves run results.
type Store interface {
	Save(result *RunResult) error
	Load(runID string) (*RunResult, error)
}

// RunResult holds the structured outcome of one docrun invocation.
type RunResult struct {
	ID        string           `json:"id"`
	Command   []string         `json:"command"`
	Documents []DocumentResult `json:"documents,omitempty"`
	Errors    []CollectedError `json:"errors,omitempty"`
	ExitCode  int              `json:"exit_code"`
}

// DocumentResult holds the outcomes for one document.
type DocumentResult struct {
	Path       string       `json:"path"`
	ParseError string       `json:"parse_error,omitempty"`
	Units      []UnitResult `json:"units,omitempty"`
}

// UnitResult holds the outcome of one evaluated unit: an individual
// region or a whole group.
type UnitResult struct {
	Line     int    `json:"line"` // source line the unit starts on
	Language string `json:"language,omitempty"`
	Grouped  bool   `json:"grouped,omitempty"`
	Status   string `json:"status"` // success, failed, group-write-rejected
	ExitCode int    `json:"exit_code,omitempty"`
}

// Unit statuses.
const (
	StatusSuccess    = "success"
	StatusFailed     = "failed"
	StatusGroupWrite = "group-write-rejected"
)

// CollectedError is a failure retained under continue-on-error mode.
type CollectedError struct {
	Message  string `json:"message"`
	ExitCode int    `json:"exit_code"`
}

// ByDocument returns the result for one document of the run.
func (r *RunResult) ByDocument(path string) (*DocumentResult, error) {
	for i := range r.Documents {
		if r.Documents[i].Path == path {
			return &r.Documents[i], nil
		}
	}
	return nil, fmt.Errorf("run %s has no document %s", r.ID, path)
}

// Failed returns the units of the run that did not succeed, paired with
// their document paths.
func (r *RunResult) Failed() []FailedUnit {
	var out []FailedUnit
	for _, d := range r.Documents {
		for _, u := range d.Units {
			if u.Status != StatusSuccess {
				out = append(out, FailedUnit{Path: d.Path, Unit: u})
			}
		}
	}
	return out
}

// FailedUnit pairs a non-success unit with its document path.
type FailedUnit struct {
	Path string
	Unit UnitResult
}
