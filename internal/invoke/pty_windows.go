//go:build windows

package invoke

import (
	"errors"
	"io"
	"os/exec"
)

// runPTY is unavailable on Windows; PTYDetect never selects it here and
// PTYAlways surfaces the error to the caller.
func runPTY(_ *exec.Cmd, _ io.Writer) error {
	return errors.New("PTY is not supported on Windows")
}
