package shell

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/Svartorm/PosixShell/internal/ast"
)

// runCommand applies a simple command's assignments, then — if it has no
// command word — returns, or otherwise resolves argv[0] against
// functions, builtins, and finally $PATH in that order (spec.md §4.5).
func (s *Shell) runCommand(c *ast.Command) Status {
	for _, v := range c.Assignments {
		val, err := s.resolveWord(v.Value)
		if err != nil {
			fmt.Fprintln(s.Stderr(), err)
			return ECUnknown
		}
		s.Vars.Set(v.Name, val)
	}

	name, args, err := s.resolveArgv(c)
	if err != nil {
		fmt.Fprintln(s.Stderr(), err)
		return ECUnknown
	}
	if name == "" {
		return StatusOK
	}

	if body, ok := s.Funcs.Get(name); ok {
		return s.callFunction(body, args)
	}
	if b, ok := builtins[name]; ok {
		return b(s, args)
	}
	return s.runExternal(name, args)
}

func (s *Shell) resolveArgv(c *ast.Command) (string, []string, error) {
	name := c.Name
	if c.NameExpr != nil {
		exp, ok := c.NameExpr.(*ast.Expansion)
		if !ok {
			return "", nil, fmt.Errorf("resolveArgv: NameExpr is %T, not *ast.Expansion", c.NameExpr)
		}
		v, err := s.expandNode(exp)
		if err != nil {
			return "", nil, err
		}
		name = v
	}

	args := make([]string, 0, len(c.Args))
	for _, a := range c.Args {
		v, err := s.resolveWord(a)
		if err != nil {
			return "", nil, err
		}
		args = append(args, v)
	}
	return name, args, nil
}

// callFunction runs body with Positional swapped to args for its
// duration. Functions share the caller's variable scope — POSIX gives
// functions no automatic locals — only the positional parameters behind
// $* and $@ are scoped per call; $# is a store variable and keeps the
// value it had before the call.
func (s *Shell) callFunction(body ast.Node, args []string) Status {
	saved := s.Positional
	s.Positional = args
	status := s.Run(body)
	s.Positional = saved
	return status
}

// runExternal resolves name against $PATH and runs it as a child
// process, wiring this shell's current fd table through — fd 0/1/2 as
// Stdin/Stdout/Stderr, fd >= 3 as ExtraFiles — and letting the child
// inherit the real process environment (cmd.Env left nil), since
// `export` (builtins.go) sets real OS env vars rather than keeping a
// separate exported-names set.
func (s *Shell) runExternal(name string, args []string) Status {
	path, err := exec.LookPath(name)
	if err != nil {
		fmt.Fprintf(s.Stderr(), "%s: command not found\n", name)
		if suggestion := s.suggestCommand(name); suggestion != "" {
			fmt.Fprintf(s.Stderr(), "posixsh: did you mean %q?\n", suggestion)
		}
		return ECCommandNotFound
	}

	cmd := exec.Command(path, args...)
	cmd.Stdin = s.Stdin()
	cmd.Stdout = s.Stdout()
	cmd.Stderr = s.Stderr()
	cmd.ExtraFiles = s.extraFiles()

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Status(exitErr.ExitCode())
		}
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			fmt.Fprintf(s.Stderr(), "%s: %s\n", name, pathErr.Err)
			return ECCommandNotExecutable
		}
		fmt.Fprintln(s.Stderr(), err)
		return ECForkProblem
	}
	return StatusOK
}

// extraFiles builds the exec.Cmd.ExtraFiles slice for every fd >= 3
// contiguously open in this shell's fd table. A redirection that leaves
// a gap (fd 3 unset but fd 4 set) truncates the slice at the gap —
// POSIX shells rarely use fds that high, and resolving a gapped table
// would need the dup2-renumbering exec.Cmd does not expose.
func (s *Shell) extraFiles() []*os.File {
	var extra []*os.File
	for fd := 3; ; fd++ {
		f := s.FD(fd)
		if f == nil {
			break
		}
		extra = append(extra, f)
	}
	return extra
}

// suggestCommand fuzzy-matches name against every executable on $PATH,
// for the "command not found" hint (SPEC_FULL.md's domain-stack wiring
// of github.com/lithammer/fuzzysearch).
func (s *Shell) suggestCommand(name string) string {
	var candidates []string
	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !e.IsDir() {
				candidates = append(candidates, e.Name())
			}
		}
	}
	if len(candidates) == 0 {
		return ""
	}

	ranks := fuzzy.RankFindNormalizedFold(name, candidates)
	if len(ranks) == 0 {
		return ""
	}
	sort.Slice(ranks, func(i, j int) bool { return ranks[i].Distance < ranks[j].Distance })
	return ranks[0].Target
}
