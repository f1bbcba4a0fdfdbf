// Package appshell adapts a context-aware run function to a process.
package appshell

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// ExitInterrupted is reported when a signal cancels an otherwise clean run.
const ExitInterrupted = 130

// Main runs run with a context canceled on SIGINT/SIGTERM and exits with
// its status. No arguments means "-h".
func Main(run func(context.Context, []string, io.Writer, io.Writer) int) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	argv := os.Args[1:]
	if len(argv) == 0 {
		argv = []string{"-h"}
	}

	code := run(ctx, argv, os.Stdout, os.Stderr)
	if ctx.Err() != nil && code == 0 {
		code = ExitInterrupted
	}

	stop()
	os.Exit(code)
}
