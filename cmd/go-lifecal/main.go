package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/tartampluch/go-lifecal/internal/cli"
)

// main delegates to runMain so that deferred calls (like closing the log file)
// run before the process exits; os.Exit does not run defers.
func main() {
	os.Exit(runMain())
}

// runMain wires the process environment and returns the exit code.
func runMain() int {
	// Cancel on SIGINT (Ctrl+C) or SIGTERM so `serve` shuts down gracefully.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	env := cli.DefaultEnv()
	defer func() {
		_ = env.Close() // Best effort close
	}()

	return cli.Execute(ctx, env, os.Args[1:])
}
