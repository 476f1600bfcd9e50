package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes
const (
	exitCompleted = 0
	exitStopped   = 1
	exitUsage     = 2
)

var errStopped = errors.New("stopped early")

func main() {
	err := newRootCommand().Execute()
	switch {
	case err == nil:
		os.Exit(exitCompleted)
	case errors.Is(err, errStopped):
		os.Exit(exitStopped)
	default:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUsage)
	}
}
