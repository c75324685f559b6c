package shell

import (
	"os"

	"github.com/Svartorm/PosixShell/internal/ast"
)

// isEscaping reports whether a status must stop in-flight evaluation and
// propagate unchanged: break, continue, or an exit request.
func isEscaping(s Status) bool {
	if _, ok := s.IsBreak(); ok {
		return true
	}
	if _, ok := s.IsContinue(); ok {
		return true
	}
	return s.IsExitRequest()
}

// runConditional walks an if/elif/else chain: Else is either another
// *ast.Conditional (an elif) or a plain body (the final else), or nil.
func (s *Shell) runConditional(n *ast.Conditional) Status {
	cond := s.Run(n.Cond)
	if isEscaping(cond) {
		return cond
	}
	if cond.Truthy() {
		return s.Run(n.Then)
	}
	if n.Else != nil {
		return s.Run(n.Else)
	}
	return StatusOK
}

// runWhile and runUntil thread `break n`/`continue n` explicitly through
// return values rather than a global loop-depth counter (spec.md §9's
// redesign note): level 1 is consumed here, anything deeper is
// re-encoded one level shallower and handed to the caller.
func (s *Shell) runWhile(n *ast.While) Status {
	status := StatusOK
	for {
		cond := s.Run(n.Cond)
		if isEscaping(cond) {
			return cond
		}
		if !cond.Truthy() {
			return status
		}

		body := s.Run(n.Body)
		if lvl, ok := body.IsBreak(); ok {
			if lvl <= 1 {
				return status
			}
			return BreakRequest(lvl - 1)
		}
		if lvl, ok := body.IsContinue(); ok {
			if lvl <= 1 {
				continue
			}
			return ContinueRequest(lvl - 1)
		}
		if body.IsExitRequest() {
			return body
		}
		status = body
	}
}

func (s *Shell) runUntil(n *ast.Until) Status {
	status := StatusOK
	for {
		cond := s.Run(n.Cond)
		if isEscaping(cond) {
			return cond
		}
		if cond.Truthy() {
			return status
		}

		body := s.Run(n.Body)
		if lvl, ok := body.IsBreak(); ok {
			if lvl <= 1 {
				return status
			}
			return BreakRequest(lvl - 1)
		}
		if lvl, ok := body.IsContinue(); ok {
			if lvl <= 1 {
				continue
			}
			return ContinueRequest(lvl - 1)
		}
		if body.IsExitRequest() {
			return body
		}
		status = body
	}
}

// runFor iterates n.Words (resolved once up front) or, if n.Words is
// nil, the shell's current positional parameters — the parser's default
// for a bare "for name; do ... done" (internal/parser/control.go).
func (s *Shell) runFor(n *ast.For) Status {
	var words []string
	if n.Words == nil {
		words = s.Positional
	} else {
		for _, w := range n.Words {
			v, err := s.resolveWord(w)
			if err != nil {
				return ECUnknown
			}
			words = append(words, v)
		}
	}

	status := StatusOK
	for _, w := range words {
		// spec.md §6: "for uses setenv to propagate the loop variable to
		// children" — external commands in the body need to see it too.
		s.Vars.Set(n.Var, w)
		os.Setenv(n.Var, w)

		body := s.Run(n.Body)

		// spec.md §4.5: "execute body, unset the variable" after each
		// iteration, before the next assignment or the loop's exit.
		s.Vars.Delete(n.Var)
		os.Unsetenv(n.Var)

		if lvl, ok := body.IsBreak(); ok {
			if lvl <= 1 {
				return status
			}
			return BreakRequest(lvl - 1)
		}
		if lvl, ok := body.IsContinue(); ok {
			if lvl <= 1 {
				continue
			}
			return ContinueRequest(lvl - 1)
		}
		if body.IsExitRequest() {
			return body
		}
		status = body
	}
	return status
}
