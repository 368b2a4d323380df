//go:build !windows

package invoke

import (
	"io"
	"os/exec"

	"github.com/creack/pty"
)

// runPTY starts the command attached to a fresh pseudo-terminal and
// copies its combined output to stdout.
func runPTY(cmd *exec.Cmd, stdout io.Writer) error {
	f, err := pty.Start(cmd)
	if err != nil {
		return err
	}
	defer f.Close()

	// Reading ends with EIO on Linux when the child closes the slave
	// side; that is the normal EOF condition for a PTY.
	_, _ = io.Copy(stdout, f)

	return cmd.Wait()
}
