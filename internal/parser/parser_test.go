package parser_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/Svartorm/PosixShell/internal/ast"
	"github.com/Svartorm/PosixShell/internal/lexer"
	"github.com/Svartorm/PosixShell/internal/parser"
	"github.com/Svartorm/PosixShell/internal/source"
)

func parseOne(t *testing.T, text string) ast.Node {
	t.Helper()
	src := source.NewString("test", text)
	p := parser.New(lexer.New(src))
	node, ok, err := p.Parse()
	require.NoError(t, err)
	require.True(t, ok)
	return node
}

func dump(t *testing.T, n ast.Node) string {
	t.Helper()
	var sb strings.Builder
	ast.Print(&sb, n, 0)
	return sb.String()
}

func TestParseSimpleCommand(t *testing.T) {
	node := parseOne(t, "echo hello world\n")
	got := dump(t, node)
	require.Contains(t, got, `COMMAND "echo"`)
	require.Contains(t, got, `ARGUMENT "hello"`)
	require.Contains(t, got, `ARGUMENT "world"`)
}

func TestParseAssignmentOnly(t *testing.T) {
	node := parseOne(t, "FOO=bar\n")
	got := dump(t, node)
	require.Contains(t, got, "VARIABLE FOO=")
	require.Contains(t, got, `ARGUMENT "bar"`)
}

func TestParsePipeline(t *testing.T) {
	node := parseOne(t, "ls | grep foo | wc -l\n")
	got := dump(t, node)
	require.Contains(t, got, "PIPE")
	require.Contains(t, got, `COMMAND "ls"`)
	require.Contains(t, got, `COMMAND "grep"`)
	require.Contains(t, got, `COMMAND "wc"`)
}

func TestParseAndOr(t *testing.T) {
	node := parseOne(t, "true && echo ok || echo fail\n")
	got := dump(t, node)
	require.Contains(t, got, "OR")
	require.Contains(t, got, "AND")
}

func TestParseNot(t *testing.T) {
	node := parseOne(t, "! true\n")
	got := dump(t, node)
	require.Contains(t, got, "NOT")
}

func TestParseList(t *testing.T) {
	node := parseOne(t, "echo a; echo b; echo c\n")
	list, ok := node.(*ast.CommandList)
	require.True(t, ok)
	require.Len(t, list.Children, 3)
}

func TestParseIfElifElse(t *testing.T) {
	node := parseOne(t, "if true; then echo a; elif false; then echo b; else echo c; fi\n")
	got := dump(t, node)
	require.Contains(t, got, "CONDITIONAL")
	cond, ok := node.(*ast.Conditional)
	require.True(t, ok)
	require.NotNil(t, cond.Else)
	elif, ok := cond.Else.(*ast.Conditional)
	require.True(t, ok)
	require.NotNil(t, elif.Else)
}

func TestParseWhile(t *testing.T) {
	node := parseOne(t, "while true; do echo x; done\n")
	_, ok := node.(*ast.While)
	require.True(t, ok)
}

func TestParseUntil(t *testing.T) {
	node := parseOne(t, "until false; do echo x; done\n")
	_, ok := node.(*ast.Until)
	require.True(t, ok)
}

func TestParseForWithIn(t *testing.T) {
	node := parseOne(t, "for f in a b c; do echo $f; done\n")
	forNode, ok := node.(*ast.For)
	require.True(t, ok)
	require.Equal(t, "f", forNode.Var)
	require.Len(t, forNode.Words, 3)
}

func TestParseForWithoutIn(t *testing.T) {
	node := parseOne(t, "for f; do echo $f; done\n")
	forNode, ok := node.(*ast.For)
	require.True(t, ok)
	require.Nil(t, forNode.Words)
}

func TestParseSubshell(t *testing.T) {
	node := parseOne(t, "(echo a; echo b)\n")
	_, ok := node.(*ast.Subshell)
	require.True(t, ok)
}

func TestParseBraceGroup(t *testing.T) {
	node := parseOne(t, "{ echo a; echo b; }\n")
	list, ok := node.(*ast.CommandList)
	require.True(t, ok)
	require.Len(t, list.Children, 2)
}

func TestParseFuncDec(t *testing.T) {
	node := parseOne(t, "greet() { echo hi; }\n")
	fn, ok := node.(*ast.FuncDec)
	require.True(t, ok)
	require.Equal(t, "greet", fn.Name)
}

func TestParseRedirections(t *testing.T) {
	node := parseOne(t, "cmd < in.txt > out.txt 2>> err.txt\n")
	folder, ok := node.(*ast.RedirFolder)
	require.True(t, ok)
	require.Len(t, folder.Redirs, 3)
	require.Equal(t, 0, folder.Redirs[0].FD)
	require.Equal(t, ast.RedirIn, folder.Redirs[0].Kind)
	require.Equal(t, 1, folder.Redirs[1].FD)
	require.Equal(t, ast.RedirOut, folder.Redirs[1].Kind)
	require.Equal(t, 2, folder.Redirs[2].FD)
	require.Equal(t, ast.RedirAppendOut, folder.Redirs[2].Kind)
}

func TestParseExpansionArgument(t *testing.T) {
	node := parseOne(t, `echo "hello $USER"` + "\n")
	cmd, ok := node.(*ast.Command)
	require.True(t, ok)
	require.Len(t, cmd.Args, 1)
	exp, ok := cmd.Args[0].(*ast.Expansion)
	require.True(t, ok)
	require.True(t, len(exp.Segments) >= 1)
}

func TestParseSyntaxErrorUnexpectedToken(t *testing.T) {
	src := source.NewString("test", "then echo bad\n")
	p := parser.New(lexer.New(src))
	_, _, err := p.Parse()
	require.Error(t, err)
	var perr *parser.ParseError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, "PARSER_UNEXPECTED_TOKEN", perr.Kind)
}

func TestParseEOFReturnsFalse(t *testing.T) {
	src := source.NewString("test", "")
	p := parser.New(lexer.New(src))
	node, ok, err := p.Parse()
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, node)
}

// TestParseStructuralRoundTrip checks spec.md §8's round-trip property:
// syntactically identical scripts, textually different only in
// whitespace, produce structurally equal trees. Position is excluded
// from the comparison since it records source offsets, not structure.
func TestParseStructuralRoundTrip(t *testing.T) {
	a := parseOne(t, "if true; then echo   a  ; else echo b; fi\n")
	b := parseOne(t, "if true\nthen\n  echo a\nelse\n  echo b\nfi\n")

	diff := cmp.Diff(a, b, cmpopts.IgnoreTypes(ast.Position{}))
	require.Empty(t, diff, "structurally equivalent scripts produced different trees:\n%s", diff)
}

func TestParseBlankLine(t *testing.T) {
	src := source.NewString("test", "\necho a\n")
	p := parser.New(lexer.New(src))
	node, ok, err := p.Parse()
	require.NoError(t, err)
	require.True(t, ok)
	require.Nil(t, node)

	node, ok, err = p.Parse()
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, node)
}
