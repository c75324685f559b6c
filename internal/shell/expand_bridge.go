package shell

import (
	"github.com/Svartorm/PosixShell/internal/ast"
	"github.com/Svartorm/PosixShell/internal/expand"
)

// expandNode runs internal/expand against this shell's current variable
// store and positional parameters.
func (s *Shell) expandNode(n *ast.Expansion) (string, error) {
	return expand.Expand(n, expand.Context{
		Vars:       s.Vars,
		Positional: s.Positional,
	})
}
