package ast

import (
	"fmt"
	"io"
	"strings"
)

// Print writes an indented textual form of tree to w, for the CLI's
// --pretty-print flag (spec.md §6).
func Print(w io.Writer, n Node, depth int) {
	indent := strings.Repeat("  ", depth)
	if n == nil {
		fmt.Fprintf(w, "%s<nil>\n", indent)
		return
	}

	switch v := n.(type) {
	case *CommandList:
		fmt.Fprintf(w, "%sCOMMAND_LIST\n", indent)
		for _, c := range v.Children {
			Print(w, c, depth+1)
		}
	case *Pipe:
		fmt.Fprintf(w, "%sPIPE\n", indent)
		Print(w, v.Left, depth+1)
		Print(w, v.Right, depth+1)
	case *Not:
		fmt.Fprintf(w, "%sNOT\n", indent)
		Print(w, v.Body, depth+1)
	case *And:
		fmt.Fprintf(w, "%sAND\n", indent)
		Print(w, v.Left, depth+1)
		Print(w, v.Right, depth+1)
	case *Or:
		fmt.Fprintf(w, "%sOR\n", indent)
		Print(w, v.Left, depth+1)
		Print(w, v.Right, depth+1)
	case *Subshell:
		fmt.Fprintf(w, "%sSUBSHELL\n", indent)
		Print(w, v.Body, depth+1)
	case *Command:
		fmt.Fprintf(w, "%sCOMMAND %q\n", indent, v.Name)
		for _, a := range v.Assignments {
			Print(w, a, depth+1)
		}
		for _, a := range v.Args {
			Print(w, a, depth+1)
		}
	case *Argument:
		fmt.Fprintf(w, "%sARGUMENT %q\n", indent, v.Value)
	case *Expansion:
		fmt.Fprintf(w, "%sEXPANSION\n", indent)
		for _, s := range v.Segments {
			kind := "EXPARG_NORM"
			if s.Kind == ExpArgDQ {
				kind = "EXPARG_DQ"
			}
			fmt.Fprintf(w, "%s  %s %q\n", indent, kind, s.Text)
		}
	case *Variable:
		fmt.Fprintf(w, "%sVARIABLE %s=\n", indent, v.Name)
		Print(w, v.Value, depth+1)
	case *Conditional:
		fmt.Fprintf(w, "%sCONDITIONAL\n", indent)
		Print(w, v.Cond, depth+1)
		Print(w, v.Then, depth+1)
		if v.Else != nil {
			Print(w, v.Else, depth+1)
		}
	case *While:
		fmt.Fprintf(w, "%sWHILE\n", indent)
		Print(w, v.Cond, depth+1)
		Print(w, v.Body, depth+1)
	case *Until:
		fmt.Fprintf(w, "%sUNTIL\n", indent)
		Print(w, v.Cond, depth+1)
		Print(w, v.Body, depth+1)
	case *For:
		fmt.Fprintf(w, "%sFOR %s\n", indent, v.Var)
		for _, word := range v.Words {
			Print(w, word, depth+1)
		}
		Print(w, v.Body, depth+1)
	case *FuncDec:
		fmt.Fprintf(w, "%sFUNCDEC %s\n", indent, v.Name)
		Print(w, v.Body, depth+1)
	case *RedirFolder:
		fmt.Fprintf(w, "%sREDIR_FOLDER\n", indent)
		Print(w, v.Inner, depth+1)
		for _, r := range v.Redirs {
			Print(w, r, depth+1)
		}
	case *Redir:
		fmt.Fprintf(w, "%sREDIR kind=%d fd=%d\n", indent, v.Kind, v.FD)
		Print(w, v.Path, depth+1)
	default:
		fmt.Fprintf(w, "%s<unknown %T>\n", indent, n)
	}
}
