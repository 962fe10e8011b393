package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// ExitInterrupted is the status used when a command stops on a signal.
const ExitInterrupted = 130

var (
	stderr io.Writer = os.Stderr
	exit             = os.Exit
)

// ExitCode maps a command error to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	default:
		return 1
	}
}

// Exitf writes a formatted error message to stderr and exits. The status is
// derived from the first error argument, or 1 when there is none.
func Exitf(format string, args ...any) {
	fmt.Fprintf(stderr, format+"\n", args...)
	code := 1
	for _, arg := range args {
		if err, ok := arg.(error); ok {
			if c := ExitCode(err); c != 0 {
				code = c
			}
			break
		}
	}
	exit(code)
}
