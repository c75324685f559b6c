package shell

import (
	"fmt"
	"os"
	"strconv"

	"github.com/Svartorm/PosixShell/internal/ast"
)

// runRedirFolder applies n.Redirs left to right, runs n.Inner, then
// restores every touched fd to what it held before — spec.md §5's "fd
// table restoration" invariant.
func (s *Shell) runRedirFolder(n *ast.RedirFolder) Status {
	type saved struct {
		fd   int
		prev *os.File
	}
	var restores []saved
	var opened []*os.File

	restore := func() {
		for i := len(restores) - 1; i >= 0; i-- {
			s.SetFD(restores[i].fd, restores[i].prev)
		}
		for _, f := range opened {
			_ = f.Close()
		}
	}

	for _, r := range n.Redirs {
		prev, opened2, err := s.applyRedir(r)
		if err != nil {
			restore()
			fmt.Fprintf(s.Stderr(), "%s\n", err)
			return ECUnknown
		}
		restores = append(restores, saved{fd: r.FD, prev: prev})
		if opened2 != nil {
			opened = append(opened, opened2)
		}
	}

	status := s.Run(n.Inner)
	restore()
	return status
}

// applyRedir installs r's target at r.FD, returning the fd's previous
// occupant (for restoration) and, if a new *os.File was opened (as
// opposed to a dup of an existing one), that file (so it is closed once
// the redirection's scope ends).
func (s *Shell) applyRedir(r *ast.Redir) (*os.File, *os.File, error) {
	path, err := s.resolveWord(r.Path)
	if err != nil {
		return nil, nil, err
	}

	switch r.Kind {
	case ast.RedirIn:
		f, err := os.OpenFile(path, os.O_RDONLY, 0)
		if err != nil {
			return nil, nil, err
		}
		return s.SetFD(r.FD, f), f, nil

	case ast.RedirOut:
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return nil, nil, err
		}
		return s.SetFD(r.FD, f), f, nil

	case ast.RedirAppendOut:
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, err
		}
		return s.SetFD(r.FD, f), f, nil

	case ast.RedirRW:
		f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
		if err != nil {
			return nil, nil, err
		}
		return s.SetFD(r.FD, f), f, nil

	case ast.RedirDupIn, ast.RedirDupOut:
		if path == "-" {
			return s.SetFD(r.FD, nil), nil, nil
		}
		srcFD, err := strconv.Atoi(path)
		if err != nil {
			return nil, nil, fmt.Errorf("redir: bad fd %q", path)
		}
		src := s.FD(srcFD)
		if src == nil {
			return nil, nil, fmt.Errorf("redir: fd %d not open", srcFD)
		}
		return s.SetFD(r.FD, src), nil, nil
	}

	return nil, nil, fmt.Errorf("redir: unknown kind %d", r.Kind)
}

// resolveWord evaluates an ARGUMENT or EXPANSION node to its string
// value, used for both redirection targets and (in command.go) argv.
func (s *Shell) resolveWord(n ast.Node) (string, error) {
	switch v := n.(type) {
	case *ast.Argument:
		return v.Value, nil
	case *ast.Expansion:
		return s.expandNode(v)
	}
	return "", fmt.Errorf("resolveWord: unsupported node %T", n)
}
