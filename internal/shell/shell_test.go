package shell_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Svartorm/PosixShell/internal/lexer"
	"github.com/Svartorm/PosixShell/internal/parser"
	"github.com/Svartorm/PosixShell/internal/shell"
	"github.com/Svartorm/PosixShell/internal/source"
)

// run parses and executes every top-level statement in text against a
// fresh Shell, capturing stdout, and returns (stdout, final status).
func run(t *testing.T, text string) (string, shell.Status) {
	t.Helper()

	r, w, err := os.Pipe()
	require.NoError(t, err)

	sh := shell.New(nil)
	sh.SetFD(1, w)

	src := source.NewString("test", text)
	p := parser.New(lexer.New(src))

	var status shell.Status
	for {
		node, ok, err := p.Parse()
		require.NoError(t, err)
		if !ok {
			break
		}
		if node == nil {
			continue
		}
		status = sh.Run(node)
	}

	w.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(r)
	require.NoError(t, err)
	return buf.String(), status
}

func TestRunEchoArgs(t *testing.T) {
	out, status := run(t, "echo hello world\n")
	require.Equal(t, "hello world\n", out)
	require.Equal(t, shell.StatusOK, status)
}

func TestRunAssignmentThenExpand(t *testing.T) {
	out, _ := run(t, "FOO=bar; echo $FOO\n")
	require.Equal(t, "bar\n", out)
}

func TestRunAndOrShortCircuit(t *testing.T) {
	out, status := run(t, "false && echo should-not-print\n")
	require.Equal(t, "", out)
	require.Equal(t, shell.Status(1), status)

	out, status = run(t, "false || echo fallback\n")
	require.Equal(t, "fallback\n", out)
	require.Equal(t, shell.StatusOK, status)
}

func TestRunNotInvertsTruthiness(t *testing.T) {
	_, status := run(t, "! true\n")
	require.Equal(t, shell.Status(1), status)

	_, status = run(t, "! false\n")
	require.Equal(t, shell.StatusOK, status)
}

func TestRunIfElse(t *testing.T) {
	out, _ := run(t, "if false; then echo a; else echo b; fi\n")
	require.Equal(t, "b\n", out)
}

func TestRunWhileWithBreak(t *testing.T) {
	out, _ := run(t, "while true; do echo x; break; done\n")
	require.Equal(t, "x\n", out)
}

func TestRunForLoop(t *testing.T) {
	out, _ := run(t, "for x in a b c; do echo $x; done\n")
	require.Equal(t, "a\nb\nc\n", out)
}

func TestRunForWithContinue(t *testing.T) {
	out, _ := run(t, "for x in a b c; do if true; then echo $x; continue; fi; echo skip; done\n")
	require.Equal(t, "a\nb\nc\n", out)
}

func TestRunPipeline(t *testing.T) {
	out, status := run(t, "echo hi | cat\n")
	require.Equal(t, "hi\n", out)
	require.Equal(t, shell.StatusOK, status)
}

func TestRunFunctionDeclAndCall(t *testing.T) {
	out, _ := run(t, "greet() { echo hi $*; }\ngreet world wide\n")
	require.Equal(t, "hi world wide\n", out)
}

func TestRunCommandNotFound(t *testing.T) {
	_, status := run(t, "this-command-does-not-exist-xyz\n")
	require.Equal(t, shell.ECCommandNotFound, status)
}

func TestRunExitSentinel(t *testing.T) {
	sh := shell.New(nil)
	src := source.NewString("test", "exit 7\n")
	p := parser.New(lexer.New(src))
	node, ok, err := p.Parse()
	require.NoError(t, err)
	require.True(t, ok)
	status := sh.Run(node)
	require.True(t, status.IsExitRequest())
	require.Equal(t, 7, status.ExitCode())
}

func TestRunBreakLevelTwo(t *testing.T) {
	out, _ := run(t, "for i in a; do for j in x y; do echo $j; break 2; done; echo after-inner; done\necho done\n")
	require.Equal(t, "x\ndone\n", out)
}

func TestStatusBreakContinueEncoding(t *testing.T) {
	lvl, ok := shell.BreakRequest(3).IsBreak()
	require.True(t, ok)
	require.Equal(t, 3, lvl)

	lvl, ok = shell.ContinueRequest(2).IsContinue()
	require.True(t, ok)
	require.Equal(t, 2, lvl)
}

func TestRunEchoSuppressesNewline(t *testing.T) {
	out, _ := run(t, "echo -n hello\n")
	require.Equal(t, "hello", out)
}

func TestRunEchoInterpretsEscapesWithDashE(t *testing.T) {
	out, _ := run(t, `echo -e "a\nb\tc"`+"\n")
	require.Equal(t, "a\nb\tc\n", out)
}

func TestRunEchoDashEDashNCombinedOptionRun(t *testing.T) {
	out, _ := run(t, `echo -ne "x\ny"`+"\n")
	require.Equal(t, "x\ny", out)
}

func TestRunEchoUnrecognizedDashOptIsPlainText(t *testing.T) {
	out, _ := run(t, "echo -x hi\n")
	require.Equal(t, "-x hi\n", out)
}

func TestRunExportListsSortedDeclareLines(t *testing.T) {
	t.Cleanup(func() {
		os.Unsetenv("ZZZ_POSIXSH_TEST")
		os.Unsetenv("AAA_POSIXSH_TEST")
	})

	out, status := run(t, "export ZZZ_POSIXSH_TEST=1; export AAA_POSIXSH_TEST=2; export\n")
	require.Equal(t, shell.StatusOK, status)
	require.Contains(t, out, "declare -x AAA_POSIXSH_TEST=2\n")
	require.Contains(t, out, "declare -x ZZZ_POSIXSH_TEST=1\n")

	aaaIdx := strings.Index(out, "AAA_POSIXSH_TEST")
	zzzIdx := strings.Index(out, "ZZZ_POSIXSH_TEST")
	require.Less(t, aaaIdx, zzzIdx)
}

func TestRunCdDashSwapsWithOldpwd(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()

	start, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(start)

	out, status := run(t, fmt.Sprintf("cd %s\ncd %s\ncd -\n", first, second))
	require.Equal(t, shell.StatusOK, status)

	resolvedFirst, err := filepath.EvalSymlinks(first)
	require.NoError(t, err)
	require.Contains(t, out, resolvedFirst)
}

func TestRunUnsetDashFRemovesFunctionNotVariable(t *testing.T) {
	out, status := run(t, "f() { echo from-func; }\nf=not-a-function\nunset -f f\necho $f\nf\n")
	require.Equal(t, "not-a-function\n", out)
	require.Equal(t, shell.ECCommandNotFound, status)
}
