package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()
	old := os.Stdout
	defer func() { os.Stdout = old }()

	r, w, _ := os.Pipe()
	os.Stdout = w

	done := make(chan struct{})
	var buf bytes.Buffer
	go func() { io.Copy(&buf, r); close(done) }()

	err := fn()
	w.Close()
	<-done
	return buf.String(), err
}

func TestHelp(t *testing.T) {
	out, err := captureStdout(t, func() error {
		return run([]string{"help", "serve"})
	})
	require.NoError(t, err)
	require.Contains(t, out, "serve FLAGS")
}

func TestUnknownCommand(t *testing.T) {
	err := run([]string{"frobnicate"})
	require.ErrorContains(t, err, "unknown command")
}

func TestPrintSDL(t *testing.T) {
	out, err := captureStdout(t, func() error {
		return run([]string{"print-sdl"})
	})
	require.NoError(t, err)
	require.Contains(t, out, "type Product")
	require.Contains(t, out, `@key(fields: "sku variation { id }")`)
}

func TestPrintSDLToFile(t *testing.T) {
	outFile := filepath.Join(t.TempDir(), "schema.graphql")
	require.NoError(t, run([]string{"print-sdl", "-out", outFile}))
	b, err := os.ReadFile(outFile)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(b), "type DeprecatedProduct"))
}
