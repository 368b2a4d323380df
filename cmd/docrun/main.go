// Command docrun runs commands against code blocks in documentation.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/docrun/docrun/internal/document"
	"github.com/docrun/docrun/internal/engine"
	"github.com/docrun/docrun/internal/term"
)

func main() {
	os.Exit(run())
}

func run() int {
	err := rootCmd.Execute()
	if err == nil {
		return exitCode
	}

	var fatal engine.FatalError
	if errors.As(err, &fatal) {
		// Already reported where it happened.
		return fatal.ExitCode
	}

	var cfgErr engine.ConfigError
	if errors.As(err, &cfgErr) {
		term.Stderr().Error("%s", cfgErr.Reason)
		return engine.ExitConfig
	}

	var usageErr document.UsageError
	if errors.As(err, &usageErr) {
		fmt.Fprintf(os.Stderr, "Error: %s\n", usageErr.Message)
		return 2
	}

	// Flag and argument errors from cobra.
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return 2
}
