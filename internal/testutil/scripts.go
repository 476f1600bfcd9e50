// Package testutil writes fake solver and producer executables for tests.
package testutil

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

// WriteScript writes an executable /bin/sh script named name into dir and
// returns its path.
func WriteScript(t testing.TB, dir, name, body string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("cannot write script %s: %v", path, err)
	}
	return path
}

// Solver writes a fake solver that prints output and exits with exitCode.
func Solver(t testing.TB, dir, name, output string, exitCode int) string {
	t.Helper()

	outputPath := filepath.Join(dir, name+".out")
	if err := os.WriteFile(outputPath, []byte(output), 0o644); err != nil {
		t.Fatalf("cannot write solver output %s: %v", outputPath, err)
	}
	return WriteScript(t, dir, name, "cat '"+outputPath+"'\nexit "+strconv.Itoa(exitCode))
}

// SleepingSolver writes a fake solver that never answers within a short timeout.
func SleepingSolver(t testing.TB, dir, name string) string {
	t.Helper()
	return WriteScript(t, dir, name, "echo 's SATISFIABLE'\nexec sleep 30")
}
