package shell

import (
	"fmt"

	"github.com/Svartorm/PosixShell/internal/ast"
	"github.com/Svartorm/PosixShell/internal/invariant"
)

// Run walks node and returns its exit status, the single entry point
// original_source/src/ast/ast_exec.c's ast_exec corresponds to. It
// records the result as "$?" before returning, matching spec.md §4.5's
// "every node sets $?" rule, except for the control sentinels
// (break/continue/exit) that must reach their handler unmodified.
func (s *Shell) Run(node ast.Node) Status {
	if node == nil {
		return StatusOK
	}

	status := s.dispatch(node)
	if !isEscaping(status) {
		s.setStatus(status)
	}
	return status
}

func (s *Shell) dispatch(node ast.Node) Status {
	switch n := node.(type) {
	case *ast.CommandList:
		status := StatusOK
		for _, c := range n.Children {
			status = s.Run(c)
			if isEscaping(status) {
				return status
			}
		}
		return status

	case *ast.Pipe:
		return s.runPipeline(n)

	case *ast.Not:
		body := s.Run(n.Body)
		if isEscaping(body) {
			return body
		}
		if body.Truthy() {
			return Status(1)
		}
		return StatusOK

	case *ast.And:
		left := s.Run(n.Left)
		if isEscaping(left) || !left.Truthy() {
			return left
		}
		return s.Run(n.Right)

	case *ast.Or:
		left := s.Run(n.Left)
		if isEscaping(left) || left.Truthy() {
			return left
		}
		return s.Run(n.Right)

	case *ast.Subshell:
		return s.runSubshell(n)

	case *ast.Command:
		return s.runCommand(n)

	case *ast.Variable:
		return s.runAssignment(n)

	case *ast.Conditional:
		return s.runConditional(n)

	case *ast.While:
		return s.runWhile(n)

	case *ast.Until:
		return s.runUntil(n)

	case *ast.For:
		return s.runFor(n)

	case *ast.FuncDec:
		s.Funcs.Set(n.Name, n.Body)
		return StatusOK

	case *ast.RedirFolder:
		return s.runRedirFolder(n)

	case *ast.Argument, *ast.Expansion:
		// Bare argument/expansion reached as a statement by itself (not
		// expected from the grammar, but harmless): evaluate for side
		// effects only (e.g. $RANDOM has none) and succeed.
		if _, err := s.resolveWord(n); err != nil {
			fmt.Fprintln(s.Stderr(), err)
			return ECUnknown
		}
		return StatusOK

	default:
		invariant.Invariant(false, "unhandled ast node %T", node)
		return ECUnknown
	}
}

// runAssignment implements a bare VARIABLE statement (no command word),
// which simple_command parsing already folds into a Command's
// Assignments — this handles a Variable reaching Run directly (e.g. a
// for-loop's induction variable is set directly by runFor, not via this
// path, but funcdec bodies or future callers may construct one).
func (s *Shell) runAssignment(n *ast.Variable) Status {
	val, err := s.resolveWord(n.Value)
	if err != nil {
		fmt.Fprintln(s.Stderr(), err)
		return ECUnknown
	}
	s.Vars.Set(n.Name, val)
	return StatusOK
}

// runSubshell runs Body against a cloned variable/function scope so
// mutations inside it do not escape, without a real OS fork — Go cannot
// safely continue running the runtime's goroutines/GC after fork(2), so
// this interpreter follows the same in-process-clone approach real-world
// Go shell implementations use instead (documented in DESIGN.md).
func (s *Shell) runSubshell(n *ast.Subshell) Status {
	child := s.clone()
	return child.Run(n.Body)
}
