// Command posixsh is the interpreter's CLI entry point: lex, parse, and
// execute a script from -c, a file argument, or stdin, following
// original_source/src/main.c's one-statement-at-a-time drive loop and
// exit-code conventions (spec.md §6).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Svartorm/PosixShell/internal/ast"
	"github.com/Svartorm/PosixShell/internal/lexer"
	"github.com/Svartorm/PosixShell/internal/parser"
	"github.com/Svartorm/PosixShell/internal/shell"
	"github.com/Svartorm/PosixShell/internal/source"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	var (
		prettyPrint bool
		cmdString   string
	)

	exitCode := 0

	rootCmd := &cobra.Command{
		Use:           "posixsh [file]",
		Short:         "A small POSIX-style shell interpreter",
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := resolveSource(cmdString, args)
			if err != nil {
				exitCode = 1
				return err
			}

			exitCode = interpret(src, prettyPrint)
			return nil
		},
	}

	rootCmd.Flags().BoolVar(&prettyPrint, "pretty-print", false, "print the parsed AST before executing each top-level command")
	rootCmd.Flags().StringVarP(&cmdString, "command", "c", "", "treat <string> as the entire script")

	rootCmd.SetArgs(argv)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if exitCode == 0 {
			exitCode = 1
		}
	}
	return exitCode
}

// resolveSource implements spec.md §6's three input modes: -c <string>
// wins over a file argument, which wins over a stdin fallback.
func resolveSource(cmdString string, args []string) (*source.Source, error) {
	if cmdString != "" {
		return source.NewString("-c", cmdString), nil
	}
	if len(args) == 1 {
		return source.NewFile(args[0])
	}
	return source.NewStdin(os.Stdin)
}

// interpret drives the parse/execute loop original_source/src/main.c
// runs: one top-level statement at a time, so a later syntax error
// doesn't discard output already produced by earlier statements. A
// syntax error aborts the whole script (spec.md §7); a command-not-found
// logs and the loop continues; an `exit n` sentinel returns immediately.
func interpret(src *source.Source, prettyPrint bool) int {
	// No positional parameters at top level: cobra.MaximumNArgs(1) leaves
	// no room for a script to receive its own "$1 $2 ..." beyond the file
	// name it was read from, so $*/$@/$# start empty.
	sh := shell.New(nil)
	defer sh.Close()

	p := parser.New(lexer.New(src))

	status := shell.StatusOK
	for {
		node, ok, err := p.Parse()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error: Parsing failed")
			return shell.ECSyntax.Shell()
		}
		if !ok {
			break
		}
		if node == nil {
			continue
		}

		if prettyPrint {
			ast.Print(os.Stdout, node, 0)
		}

		status = sh.Run(node)

		if status == shell.ECCommandNotFound {
			fmt.Fprintln(os.Stderr, "Error: Command not found.")
			continue
		}
		if status.IsExitRequest() {
			return status.ExitCode()
		}
	}
	return status.Shell()
}
