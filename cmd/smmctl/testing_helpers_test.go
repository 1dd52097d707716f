package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// resetFlags restores every package-level flag to its default.
func resetFlags() {
	verbose, quiet, jsonOut = false, false, false
	logLevel, logFile = "", ""
	initSize, initAlign, initForce = "65536", "0xF", false
	allocFill = ""
	dumpPayload, dumpRaw = "", false
	simSize, simAlign = "1024", "0xF"
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	done := make(chan []byte)
	go func() {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		done <- buf.Bytes()
	}()

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout
	return string(<-done), fnErr
}

// newRegionFile initializes a region file of size bytes with mask 0xF.
func newRegionFile(t *testing.T, size string) string {
	t.Helper()
	resetFlags()
	t.Cleanup(resetFlags)

	path := filepath.Join(t.TempDir(), "heap.smm")
	initSize = size
	_, err := captureOutput(t, func() error {
		return runInit(context.Background(), []string{path})
	})
	require.NoError(t, err)
	return path
}

// writeScript stores a simulate script in a temp file.
func writeScript(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.txt")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o644))
	return path
}
