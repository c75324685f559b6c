package shell

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/Svartorm/PosixShell/internal/invariant"
	"github.com/Svartorm/PosixShell/internal/shlog"
	"github.com/Svartorm/PosixShell/internal/store"
)

// Shell holds the interpreter's live state: the variable and function
// stores, the positional parameter list, and the fd table a redirection
// may have swapped entries into for the duration of a command (spec.md
// §5). fd 0/1/2 start out aliased to the process's real stdin/stdout/
// stderr; fd >= 3 only exist once a redirection (or `N>&M` dup) creates
// them, and back exec.Cmd.ExtraFiles when an external command runs.
type Shell struct {
	Vars  *store.VariableStore
	Funcs *store.FunctionStore

	Positional []string

	fds map[int]*os.File

	log *slog.Logger
}

// New builds a Shell with the seeded special variables
// original_source/src/variables/shell_variables.c's shell_variables_init
// sets up: "#" (arg count), "?" (exit status), "UID", and "$" (pid).
func New(args []string) *Shell {
	vars := store.NewVariableStore()
	vars.Set("#", strconv.Itoa(len(args)))
	vars.Set("?", "0")
	vars.Set("UID", strconv.Itoa(os.Getuid()))
	vars.Set("$", strconv.Itoa(os.Getpid()))

	return &Shell{
		Vars:       vars,
		Funcs:      store.NewFunctionStore(),
		Positional: args,
		fds: map[int]*os.File{
			0: os.Stdin,
			1: os.Stdout,
			2: os.Stderr,
		},
		log: shlog.Get().With("component", "shell"),
	}
}

// FD returns the file currently backing descriptor n, or nil if n has
// never been opened or redirected.
func (s *Shell) FD(n int) *os.File {
	return s.fds[n]
}

// SetFD installs f as descriptor n, returning the previous occupant (nil
// if none) so a redirection can restore it afterward.
func (s *Shell) SetFD(n int, f *os.File) *os.File {
	prev := s.fds[n]
	s.fds[n] = f
	return prev
}

func (s *Shell) Stdin() *os.File  { return s.fds[0] }
func (s *Shell) Stdout() *os.File { return s.fds[1] }
func (s *Shell) Stderr() *os.File { return s.fds[2] }

// clone returns a Shell with independent variable and function stores
// and its own copy of the fd table, sharing only the Positional slice,
// for subshells (spec.md §4.5) and pipeline stages.
func (s *Shell) clone() *Shell {
	fds := make(map[int]*os.File, len(s.fds))
	for n, f := range s.fds {
		fds[n] = f
	}
	return &Shell{
		Vars:       s.Vars.Clone(),
		Funcs:      s.Funcs.Clone(),
		Positional: s.Positional,
		fds:        fds,
		log:        s.log,
	}
}

// setStatus records status as "$?" for the next expansion of that
// variable, per spec.md §3/§4.5.
func (s *Shell) setStatus(status Status) {
	invariant.NotNil(s.Vars, "s.Vars")
	s.Vars.Set("?", strconv.Itoa(status.Shell()))
}

// Close releases resources the Shell owns (not the inherited
// os.Stdin/Stdout/Stderr, which the caller owns).
func (s *Shell) Close() {
	s.Vars.Destroy()
	s.Funcs.Destroy()
}
