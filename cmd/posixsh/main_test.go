package main

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// captureStdout redirects os.Stdout for the duration of fn and returns
// everything written to it, the same os.Pipe() technique
// internal/shell's tests use to assert on captured output.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	r, w, err := os.Pipe()
	require.NoError(t, err)

	saved := os.Stdout
	os.Stdout = w
	fn()
	os.Stdout = saved
	w.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(r)
	require.NoError(t, err)
	return buf.String()
}

func TestRunDashCString(t *testing.T) {
	var code int
	out := captureStdout(t, func() {
		code = run([]string{"-c", "echo hi from -c"})
	})
	require.Equal(t, "hi from -c\n", out)
	require.Equal(t, 0, code)
}

func TestRunFileArgument(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "script-*.sh")
	require.NoError(t, err)
	_, err = f.WriteString("echo from-file\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	var code int
	out := captureStdout(t, func() {
		code = run([]string{f.Name()})
	})
	require.Equal(t, "from-file\n", out)
	require.Equal(t, 0, code)
}

func TestRunLastCommandExitCode(t *testing.T) {
	var code int
	captureStdout(t, func() {
		code = run([]string{"-c", "false"})
	})
	require.Equal(t, 1, code)
}

func TestRunExitBuiltinStopsImmediately(t *testing.T) {
	var code int
	out := captureStdout(t, func() {
		code = run([]string{"-c", "exit 9; echo should-not-print\n"})
	})
	require.Equal(t, "", out)
	require.Equal(t, 9, code)
}

func TestRunSyntaxErrorExitsTwo(t *testing.T) {
	var code int
	captureStdout(t, func() {
		code = run([]string{"-c", "if true\n"})
	})
	require.Equal(t, 2, code)
}

func TestRunMissingFileIsAnError(t *testing.T) {
	var code int
	captureStdout(t, func() {
		code = run([]string{"/no/such/file-xyz"})
	})
	require.Equal(t, 1, code)
}

func TestRunPrettyPrintAlsoExecutes(t *testing.T) {
	var code int
	out := captureStdout(t, func() {
		code = run([]string{"--pretty-print", "-c", "echo traced\n"})
	})
	require.Contains(t, out, "traced\n")
	require.Equal(t, 0, code)
}
