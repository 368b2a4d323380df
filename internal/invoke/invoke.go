// Package invoke executes the configured command against staged files
// and classifies the result: the command's own exit code is propagated
// verbatim, while OS-level launch failures are invocation errors.
package invoke

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"syscall"

	"github.com/mattn/go-isatty"
)

// PTYMode selects whether commands run under a pseudo-terminal.
type PTYMode int

const (
	// PTYDetect uses a PTY when our own stdout is a terminal and the
	// platform supports PTYs.
	PTYDetect PTYMode = iota
	// PTYAlways forces a PTY.
	PTYAlways
	// PTYNever disables the PTY.
	PTYNever
)

// ParsePTYMode converts a flag value (yes, no, detect) to a PTYMode.
func ParsePTYMode(s string) (PTYMode, error) {
	switch s {
	case "yes":
		return PTYAlways, nil
	case "no":
		return PTYNever, nil
	case "detect":
		return PTYDetect, nil
	}
	return 0, fmt.Errorf("invalid --use-pty value %q (expected yes, no, or detect)", s)
}

// UsePTY resolves the mode against the current environment.
func (m PTYMode) UsePTY() bool {
	switch m {
	case PTYAlways:
		return true
	case PTYNever:
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd()) && runtime.GOOS != "windows"
}

// InvocationError reports a command that could not be launched at all:
// not found, not executable, or another OS-level failure.
type InvocationError struct {
	Command string
	Err     error
}

func (e InvocationError) Error() string {
	return fmt.Sprintf("error running command '%s': %v", e.Command, e.Err)
}

func (e InvocationError) Unwrap() error { return e.Err }

// ExitCode maps the launch failure to an exit code, using the OS error
// number when one is known: 2 for a missing command, 13 for a
// non-executable one. Failures with no errno report 1.
func (e InvocationError) ExitCode() int {
	var errno syscall.Errno
	if errors.As(e.Err, &errno) {
		return int(errno)
	}
	if errors.Is(e.Err, exec.ErrNotFound) {
		return int(syscall.ENOENT)
	}
	if errors.Is(e.Err, os.ErrPermission) {
		return int(syscall.EACCES)
	}
	return 1
}

// Invoker runs one command with a staged file path appended to its
// argument list.
type Invoker struct {
	Args   []string // argv prefix; never empty
	UsePTY bool
	Stdout io.Writer
	Stderr io.Writer
}

// Run executes the command against the staged file and returns the
// command's exit code. A non-zero exit is not an error at this layer.
// A launched command always runs to completion: cancelling a run stops
// units before they are staged, never a live subprocess.
func (iv *Invoker) Run(stagedPath string) (int, error) {
	argv := make([]string, 0, len(iv.Args)+1)
	argv = append(argv, iv.Args...)
	argv = append(argv, stagedPath)

	cmd := exec.Command(argv[0], argv[1:]...)

	var runErr error
	if iv.UsePTY {
		runErr = runPTY(cmd, iv.Stdout)
	} else {
		cmd.Stdout = iv.Stdout
		cmd.Stderr = iv.Stderr
		runErr = cmd.Run()
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return 0, InvocationError{Command: iv.Args[0], Err: runErr}
	}
	return 0, nil
}
