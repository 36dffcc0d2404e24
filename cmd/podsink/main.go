package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"podsink/internal/runlock"
)

// Exit codes: 0 success (partial batch failures included), 1 configuration
// or setup error, 2 another run already holds the guard.
const (
	exitOK         = 0
	exitConfig     = 1
	exitContention = 2
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(exitCode(err))
	}
	os.Exit(exitOK)
}

func exitCode(err error) int {
	if errors.Is(err, runlock.ErrAlreadyRunning) {
		return exitContention
	}
	return exitConfig
}
