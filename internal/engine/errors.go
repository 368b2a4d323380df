package engine

import (
	"fmt"
	"sync"

	"github.com/docrun/docrun/internal/report"
)

// ExitConfig is the reserved exit code for rejected configurations
// (e.g. write-back combined with parallel workers). It is outside the
// range commonly used by invoked tools so callers can tell the two
// apart.
const ExitConfig = 125

// ConfigError reports an invalid flag combination. Detected before any
// unit is evaluated.
type ConfigError struct {
	Reason string
}

func (e ConfigError) Error() string { return e.Reason }

// FatalError aborts a fail-fast run. ExitCode becomes the process exit
// code; Message may be empty when the failing command already produced
// its own diagnostics.
type FatalError struct {
	ExitCode int
	Message  string
}

func (e FatalError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("command failed with exit code %d", e.ExitCode)
	}
	return e.Message
}

// aggregator accumulates failures across documents and regions.
// Append-only and safe for concurrent writers; the only state shared
// between workers.
type aggregator struct {
	mu   sync.Mutex
	errs []report.CollectedError
}

func (a *aggregator) collect(message string, exitCode int) {
	if exitCode == 0 {
		exitCode = 1
	}
	a.mu.Lock()
	a.errs = append(a.errs, report.CollectedError{Message: message, ExitCode: exitCode})
	a.mu.Unlock()
}

// errors returns the collected failures in collection order.
func (a *aggregator) errors() []report.CollectedError {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]report.CollectedError(nil), a.errs...)
}

// exitCode is the maximum collected exit code; magnitude, not
// collection order, determines the reported code. Zero when nothing
// was collected.
func (a *aggregator) exitCode() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	max := 0
	for _, e := range a.errs {
		if e.ExitCode > max {
			max = e.ExitCode
		}
	}
	return max
}
