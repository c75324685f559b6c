package shell

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/Svartorm/PosixShell/internal/lexer"
	"github.com/Svartorm/PosixShell/internal/parser"
	"github.com/Svartorm/PosixShell/internal/source"
)

// builtin is a builtin command's implementation: argv (not including
// the command name itself) in, a Status out.
type builtin func(s *Shell, args []string) Status

// builtins is the fixed builtin table spec.md §4.5 names: echo, true,
// false, exit, break, continue, ".", export, cd, unset.
var builtins = map[string]builtin{
	"echo":     builtinEcho,
	"true":     builtinTrue,
	"false":    builtinFalse,
	"exit":     builtinExit,
	"break":    builtinBreak,
	"continue": builtinContinue,
	".":        builtinDot,
	"export":   builtinExport,
	"cd":       builtinCd,
	"unset":    builtinUnset,
}

// builtinEcho implements spec.md §4.5's echo: a leading run of arguments
// beginning with '-' whose subsequent characters are all in {n,e,E} are
// options ("-n" suppresses the trailing newline, "-e" enables
// backslash-escape processing, "-E" disables it again); the first
// argument that isn't shaped like an option word terminates option
// parsing.
func builtinEcho(s *Shell, args []string) Status {
	noNewline := false
	interpretEscapes := false

	i := 0
	for ; i < len(args); i++ {
		opts := args[i]
		if len(opts) < 2 || opts[0] != '-' {
			break
		}
		flags := opts[1:]
		valid := true
		for _, c := range flags {
			if c != 'n' && c != 'e' && c != 'E' {
				valid = false
				break
			}
		}
		if !valid {
			break
		}
		for _, c := range flags {
			switch c {
			case 'n':
				noNewline = true
			case 'e':
				interpretEscapes = true
			case 'E':
				interpretEscapes = false
			}
		}
	}

	text := strings.Join(args[i:], " ")
	if interpretEscapes {
		text = echoEscape(text)
	}

	fmt.Fprint(s.Stdout(), text)
	if !noNewline {
		fmt.Fprintln(s.Stdout())
	}
	return StatusOK
}

// echoEscape processes the three backslash sequences spec.md §4.5 names
// for "-e": \n, \t, \\. Anything else following a backslash passes
// through literally, backslash included.
func echoEscape(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case 'n':
				b.WriteByte('\n')
				i++
				continue
			case 't':
				b.WriteByte('\t')
				i++
				continue
			case '\\':
				b.WriteByte('\\')
				i++
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func builtinTrue(s *Shell, args []string) Status  { return StatusOK }
func builtinFalse(s *Shell, args []string) Status { return Status(1) }

func builtinExit(s *Shell, args []string) Status {
	if len(args) == 0 {
		last, _ := s.Vars.Get("?")
		n, _ := strconv.Atoi(last)
		return ExitRequest(n)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(s.Stderr(), "exit: %s: numeric argument required\n", args[0])
		return ExitRequest(2)
	}
	return ExitRequest(n)
}

func builtinBreak(s *Shell, args []string) Status {
	return BreakRequest(levelArg(args))
}

func builtinContinue(s *Shell, args []string) Status {
	return ContinueRequest(levelArg(args))
}

func levelArg(args []string) int {
	if len(args) == 0 {
		return 1
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// builtinDot implements `.`: run a file's statements one at a time in
// this shell's current scope (not a subshell), the way
// original_source/src/main.c's top-level loop runs the script it was
// given.
func builtinDot(s *Shell, args []string) Status {
	if len(args) == 0 {
		fmt.Fprintln(s.Stderr(), ".: filename argument required")
		return Status(2)
	}

	src, err := source.NewFile(args[0])
	if err != nil {
		fmt.Fprintf(s.Stderr(), ".: %s: %s\n", args[0], err)
		return ECCommandNotFound
	}

	p := parser.New(lexer.New(src))
	status := StatusOK
	for {
		node, ok, err := p.Parse()
		if err != nil {
			fmt.Fprintln(s.Stderr(), err)
			return ECSyntax
		}
		if !ok {
			break
		}
		if node == nil {
			continue
		}
		status = s.Run(node)
		if isEscaping(status) {
			return status
		}
	}
	return status
}

// builtinExport implements spec.md §4.5's export: with arguments, each
// either assigns (NAME=value, set in both the shell's store and the
// real environment) or marks an already-set variable exported; with no
// arguments, lists every exported name in original_source's
// variables.c "declare -x NAME=VALUE" format, sorted, since the real
// process environment doubles as this interpreter's exported set
// (command.go's runExternal relies on that same equivalence).
func builtinExport(s *Shell, args []string) Status {
	if len(args) == 0 {
		env := os.Environ()
		sort.Strings(env)
		for _, kv := range env {
			idx := strings.IndexByte(kv, '=')
			if idx < 0 {
				continue
			}
			fmt.Fprintf(s.Stdout(), "declare -x %s=%s\n", kv[:idx], kv[idx+1:])
		}
		return StatusOK
	}

	for _, a := range args {
		if idx := strings.IndexByte(a, '='); idx >= 0 {
			name, value := a[:idx], a[idx+1:]
			s.Vars.Set(name, value)
			os.Setenv(name, value)
			continue
		}
		if v, ok := s.Vars.Get(a); ok {
			os.Setenv(a, v)
		}
	}
	return StatusOK
}

// builtinCd implements spec.md §4.5's cd, including "cd -": swap to
// $OLDPWD and echo the new directory, the way original_source's
// variables.c does for its listing behavior.
func builtinCd(s *Shell, args []string) Status {
	target := ""
	printTarget := false

	switch {
	case len(args) > 0 && args[0] == "-":
		old, ok := s.Vars.Get("OLDPWD")
		if !ok || old == "" {
			fmt.Fprintln(s.Stderr(), "cd: OLDPWD not set")
			return Status(1)
		}
		target = old
		printTarget = true
	case len(args) > 0:
		target = args[0]
	default:
		target = os.Getenv("HOME")
	}

	oldWd, _ := os.Getwd()
	if err := os.Chdir(target); err != nil {
		fmt.Fprintf(s.Stderr(), "cd: %s\n", err)
		return Status(1)
	}
	newWd, _ := os.Getwd()
	os.Setenv("OLDPWD", oldWd)
	os.Setenv("PWD", newWd)
	s.Vars.Set("OLDPWD", oldWd)
	s.Vars.Set("PWD", newWd)
	if printTarget {
		fmt.Fprintln(s.Stdout(), newWd)
	}
	return StatusOK
}

// builtinUnset implements spec.md §4.5's "unset [-v|-f] name": -v
// (the default) removes a shell variable from both the store and the
// real environment; -f removes a function from the function store.
func builtinUnset(s *Shell, args []string) Status {
	fromFuncs := false
	if len(args) > 0 && (args[0] == "-v" || args[0] == "-f") {
		fromFuncs = args[0] == "-f"
		args = args[1:]
	}

	for _, name := range args {
		if fromFuncs {
			s.Funcs.Delete(name)
			continue
		}
		s.Vars.Delete(name)
		os.Unsetenv(name)
	}
	return StatusOK
}
