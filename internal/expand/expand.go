// Package expand resolves the DOUBLE_QUOTE-typed segments of an
// ast.Expansion into their final string value: variable substitution,
// $RANDOM, $*/$@, and the backslash-dollar escape, ported from
// original_source/src/lexer/expansion.c's handle_expension.
package expand

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/Svartorm/PosixShell/internal/ast"
	"github.com/Svartorm/PosixShell/internal/store"
)

// Context supplies the dynamic values an expansion may reference beyond
// the variable store: the positional parameter list behind $*/$@, and
// the PRNG behind $RANDOM. Rand defaults to a package-level source when
// nil, but callers (tests, or a future `set -R seed`) may inject one.
type Context struct {
	Vars       *store.VariableStore
	Positional []string
	Rand       func() int
}

// Expand computes n's current string value. It is re-evaluated from
// scratch on every call rather than caching a result on the node, so a
// variable changed between two references to the same parsed word (e.g.
// inside a loop body) is observed correctly (spec.md §9's redesign note
// on the expansion node's value).
func Expand(n *ast.Expansion, ctx Context) (string, error) {
	var sb strings.Builder
	for _, seg := range n.Segments {
		if seg.Kind == ast.ExpArgNorm {
			sb.WriteString(seg.Text)
			continue
		}
		resolved, err := expandSegment(seg.Text, ctx)
		if err != nil {
			return "", err
		}
		sb.WriteString(resolved)
	}
	return sb.String(), nil
}

// isSpecialChar reports whether c ends a variable name inside a
// double-quoted segment: anything other than a letter, digit or '_'. A
// name starting with one of ? $ # * @ is that single character alone, so
// "$?end" reads as "$?" followed by "end" and "[$X]" ends the name at
// "]" — the same split the lexer's bare (unquoted) expansion path makes
// (internal/lexer/word.go's scanBareExpansion).
func isSpecialChar(c rune) bool {
	return !(c == '_' || unicode.IsLetter(c) || unicode.IsDigit(c))
}

func expandSegment(text string, ctx Context) (string, error) {
	runes := []rune(text)
	var sb strings.Builder

	for i := 0; i < len(runes); {
		c := runes[i]

		if c == '\\' {
			if i+1 < len(runes) && runes[i+1] == '$' {
				sb.WriteRune('$')
				i += 2
				continue
			}
			sb.WriteRune(c)
			i++
			continue
		}

		if c != '$' {
			sb.WriteRune(c)
			i++
			continue
		}

		i++
		if i >= len(runes) {
			return "", fmt.Errorf("expand: missing variable name")
		}

		bracket := false
		if runes[i] == '{' {
			i++
			if i >= len(runes) {
				return "", fmt.Errorf("expand: missing variable name")
			}
			bracket = true
		}

		nameStart := i
		if strings.ContainsRune("?$#*@", runes[i]) {
			i++
		} else {
			for i < len(runes) && !isSpecialChar(runes[i]) {
				i++
			}
		}
		name := string(runes[nameStart:i])

		if bracket {
			if i >= len(runes) || runes[i] != '}' {
				return "", fmt.Errorf("expand: missing '}'")
			}
			i++
		}

		switch {
		case name == "RANDOM":
			sb.WriteString(strconv.Itoa(ctx.randValue()))
		case name == "*" || name == "@":
			sb.WriteString(strings.Join(ctx.Positional, " "))
		default:
			if v, ok := lookup(name, ctx.Vars); ok {
				sb.WriteString(v)
			}
		}
	}

	return sb.String(), nil
}

// lookup checks the process environment first, then the shell's own
// variable store, matching original_source's getenv()-before-
// hash_variable_get() order.
func lookup(name string, vars *store.VariableStore) (string, bool) {
	if v, ok := os.LookupEnv(name); ok {
		return v, true
	}
	if vars == nil {
		return "", false
	}
	return vars.Get(name)
}

func (c Context) randValue() int {
	if c.Rand != nil {
		return c.Rand()
	}
	return defaultRand()
}
