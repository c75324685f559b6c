package expand_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Svartorm/PosixShell/internal/ast"
	"github.com/Svartorm/PosixShell/internal/expand"
	"github.com/Svartorm/PosixShell/internal/store"
)

func norm(text string) ast.ExpSegment {
	return ast.ExpSegment{Kind: ast.ExpArgNorm, Text: text}
}

func dq(text string) ast.ExpSegment {
	return ast.ExpSegment{Kind: ast.ExpArgDQ, Text: text}
}

func TestExpandPlainVariable(t *testing.T) {
	vars := store.NewVariableStore()
	vars.Set("NAME", "world")

	n := &ast.Expansion{Segments: []ast.ExpSegment{dq("hello $NAME")}}
	got, err := expand.Expand(n, expand.Context{Vars: vars})
	require.NoError(t, err)
	require.Equal(t, "hello world", got)
}

func TestExpandBraceForm(t *testing.T) {
	vars := store.NewVariableStore()
	vars.Set("POSIXSH_TEST_DIR", "/home/x")

	n := &ast.Expansion{Segments: []ast.ExpSegment{dq("${POSIXSH_TEST_DIR}/bin")}}
	got, err := expand.Expand(n, expand.Context{Vars: vars})
	require.NoError(t, err)
	require.Equal(t, "/home/x/bin", got)
}

func TestExpandEnvTakesPrecedenceOverStore(t *testing.T) {
	os.Setenv("POSIXSH_TEST_VAR", "from-env")
	defer os.Unsetenv("POSIXSH_TEST_VAR")

	vars := store.NewVariableStore()
	vars.Set("POSIXSH_TEST_VAR", "from-store")

	n := &ast.Expansion{Segments: []ast.ExpSegment{dq("$POSIXSH_TEST_VAR")}}
	got, err := expand.Expand(n, expand.Context{Vars: vars})
	require.NoError(t, err)
	require.Equal(t, "from-env", got)
}

func TestExpandUnsetVariableIsEmpty(t *testing.T) {
	vars := store.NewVariableStore()
	n := &ast.Expansion{Segments: []ast.ExpSegment{dq("[$NOPE]")}}
	got, err := expand.Expand(n, expand.Context{Vars: vars})
	require.NoError(t, err)
	require.Equal(t, "[]", got)
}

func TestExpandNormalSegmentPassesThroughVerbatim(t *testing.T) {
	n := &ast.Expansion{Segments: []ast.ExpSegment{norm(`literal $NOTHING here`)}}
	got, err := expand.Expand(n, expand.Context{})
	require.NoError(t, err)
	require.Equal(t, `literal $NOTHING here`, got)
}

func TestExpandEscapedDollarSign(t *testing.T) {
	n := &ast.Expansion{Segments: []ast.ExpSegment{dq(`price: \$5`)}}
	got, err := expand.Expand(n, expand.Context{})
	require.NoError(t, err)
	require.Equal(t, "price: $5", got)
}

func TestExpandStarJoinsPositional(t *testing.T) {
	n := &ast.Expansion{Segments: []ast.ExpSegment{dq("$*")}}
	got, err := expand.Expand(n, expand.Context{Positional: []string{"a", "b", "c"}})
	require.NoError(t, err)
	require.Equal(t, "a b c", got)
}

func TestExpandRandomUsesInjectedSource(t *testing.T) {
	n := &ast.Expansion{Segments: []ast.ExpSegment{dq("$RANDOM")}}
	got, err := expand.Expand(n, expand.Context{Rand: func() int { return 42 }})
	require.NoError(t, err)
	require.Equal(t, "42", got)
}

func TestExpandMultipleSegments(t *testing.T) {
	vars := store.NewVariableStore()
	vars.Set("A", "x")
	vars.Set("B", "y")
	n := &ast.Expansion{Segments: []ast.ExpSegment{dq("$A"), norm("-"), dq("$B")}}
	got, err := expand.Expand(n, expand.Context{Vars: vars})
	require.NoError(t, err)
	require.Equal(t, "x-y", got)
}

func TestExpandMissingClosingBraceErrors(t *testing.T) {
	n := &ast.Expansion{Segments: []ast.ExpSegment{dq("${HOME")}}
	_, err := expand.Expand(n, expand.Context{})
	require.Error(t, err)
}
