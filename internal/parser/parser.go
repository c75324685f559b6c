// Package parser implements the recursive-descent parser from spec.md
// §4.3: one token of lookahead via internal/lexer's Peek/Pop, building
// internal/ast trees ready for internal/shell to walk.
package parser

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Svartorm/PosixShell/internal/ast"
	"github.com/Svartorm/PosixShell/internal/invariant"
	"github.com/Svartorm/PosixShell/internal/lexer"
	"github.com/Svartorm/PosixShell/internal/shlog"
	"github.com/Svartorm/PosixShell/internal/token"
)

// ParseError reports a syntax error at a specific token. The Kind field is
// always "PARSER_UNEXPECTED_TOKEN" today; it exists so callers can match on
// it without parsing the message (spec.md §7's error taxonomy).
type ParseError struct {
	Pos   token.Position
	Kind  string
	Msg   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s: %s", e.Pos.Line, e.Pos.Column, e.Kind, e.Msg)
}

// Parser consumes a token stream and builds one ast.Node per call to
// Parse, mirroring the original interpreter's one-statement-at-a-time
// read/parse/execute loop (spec.md §4.1, original_source/src/main.c).
type Parser struct {
	lex *lexer.Lexer
	log *slog.Logger
}

// New creates a Parser reading from lex.
func New(lex *lexer.Lexer) *Parser {
	invariant.NotNil(lex, "lex")
	return &Parser{lex: lex, log: shlog.Get().With("component", "parser")}
}

// Parse reads and parses one top-level statement: `input := (list)?
// (LF|EOF)`. It returns (nil, true, nil) for a blank line and
// (nil, false, nil) at end of input — callers loop on Parse until ok is
// false or err is non-nil. A list holding a single and_or is returned as
// that node itself rather than wrapped in an *ast.CommandList.
func (p *Parser) Parse() (ast.Node, bool, error) {
	t := p.peek()
	if t.Kind == token.LF {
		p.pop()
		return nil, true, nil
	}
	if t.Kind == token.EOF {
		return nil, false, nil
	}

	list, err := p.parseList()
	if err != nil {
		return nil, false, err
	}

	t = p.peek()
	switch t.Kind {
	case token.LF:
		p.pop()
	case token.EOF:
		// Allowed: a final statement with no trailing newline.
	default:
		return nil, false, p.unexpected(t)
	}
	if len(list.Children) == 1 {
		return list.Children[0], true, nil
	}
	return list, true, nil
}

func (p *Parser) peek() token.Token { return p.lex.Peek() }
func (p *Parser) pop() token.Token  { return p.lex.Pop() }

func (p *Parser) atAny(kinds ...token.Kind) bool {
	cur := p.peek().Kind
	for _, k := range kinds {
		if cur == k {
			return true
		}
	}
	return false
}

func (p *Parser) skipLF() {
	for p.peek().Kind == token.LF {
		p.pop()
	}
}

func (p *Parser) expect(kind token.Kind) (token.Token, error) {
	t := p.peek()
	if t.Kind != kind {
		return token.Token{}, p.unexpected(t)
	}
	return p.pop(), nil
}

func (p *Parser) unexpected(t token.Token) error {
	return &ParseError{Pos: t.Pos, Kind: "PARSER_UNEXPECTED_TOKEN", Msg: fmt.Sprintf("unexpected %s", t)}
}

// parseList implements `list := and_or ((';') and_or)* (';')?` — the
// top-level production, which (unlike compound_list) treats LF as the
// statement terminator rather than an internal separator.
func (p *Parser) parseList() (*ast.CommandList, error) {
	start := p.peek().Pos
	first, err := p.parseAndOr()
	if err != nil {
		return nil, err
	}
	children := []ast.Node{first}

	for p.peek().Kind == token.SEMI {
		p.pop()
		if t := p.peek(); t.Kind == token.LF || t.Kind == token.EOF {
			break
		}
		next, err := p.parseAndOr()
		if err != nil {
			return nil, err
		}
		children = append(children, next)
	}

	return &ast.CommandList{Pos: astPos(start), Children: children}, nil
}

// parseCompoundList implements `compound_list := LF* and_or ((';' | LF)
// LF* and_or)* (';')? LF*`, used inside blocks where a reserved closing
// word (one of stop) or EOF ends the body in place of a dedicated
// terminator token.
func (p *Parser) parseCompoundList(stop ...token.Kind) (*ast.CommandList, error) {
	p.skipLF()
	start := p.peek().Pos

	if p.atAny(stop...) || p.peek().Kind == token.EOF {
		return nil, p.unexpected(p.peek())
	}

	first, err := p.parseAndOr()
	if err != nil {
		return nil, err
	}
	children := []ast.Node{first}

	for {
		t := p.peek()
		if t.Kind != token.SEMI && t.Kind != token.LF {
			break
		}
		p.pop()
		p.skipLF()
		if p.atAny(stop...) || p.peek().Kind == token.EOF {
			break
		}
		next, err := p.parseAndOr()
		if err != nil {
			return nil, err
		}
		children = append(children, next)
	}

	return &ast.CommandList{Pos: astPos(start), Children: children}, nil
}

// parseAndOr implements `and_or := pipeline ((AND|OR) LF* pipeline)*`.
func (p *Parser) parseAndOr() (ast.Node, error) {
	left, err := p.parsePipeline()
	if err != nil {
		return nil, err
	}

	for {
		t := p.peek()
		if t.Kind != token.AND && t.Kind != token.OR {
			break
		}
		p.pop()
		p.skipLF()
		right, err := p.parsePipeline()
		if err != nil {
			return nil, err
		}
		if t.Kind == token.AND {
			left = &ast.And{Pos: astPos(t.Pos), Left: left, Right: right}
		} else {
			left = &ast.Or{Pos: astPos(t.Pos), Left: left, Right: right}
		}
	}
	return left, nil
}

// parsePipeline implements `pipeline := [NOT] command (PIPE LF* command)*`.
func (p *Parser) parsePipeline() (ast.Node, error) {
	negate := false
	var notPos token.Position
	if p.peek().Kind == token.NOT {
		notPos = p.pop().Pos
		negate = true
	}

	node, err := p.parseCommand()
	if err != nil {
		return nil, err
	}

	for p.peek().Kind == token.PIPE {
		pipeTok := p.pop()
		p.skipLF()
		right, err := p.parseCommand()
		if err != nil {
			return nil, err
		}
		node = &ast.Pipe{Pos: astPos(pipeTok.Pos), Left: node, Right: right}
	}

	if negate {
		node = &ast.Not{Pos: astPos(notPos), Body: node}
	}
	return node, nil
}

// parseCommand implements:
//
//	command := funcdec (redirection)*
//	         | shell_command (redirection)*
//	         | simple_command
func (p *Parser) parseCommand() (ast.Node, error) {
	switch p.peek().Kind {
	case token.FUNCTION_WORD:
		return p.parseFuncDec()
	case token.LBRACE:
		return p.parseBraceGroup()
	case token.LPAREN:
		return p.parseSubshell()
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.UNTIL:
		return p.parseUntil()
	case token.FOR:
		return p.parseFor()
	default:
		return p.parseSimpleCommand()
	}
}

// parseSimpleCommand implements:
//
//	simple_command := (assignment | redirection)*
//	                  [WORD (WORD | EXPANDABLE | redirection)*]
func (p *Parser) parseSimpleCommand() (ast.Node, error) {
	start := p.peek().Pos
	var assigns []*ast.Variable
	var redirs []*ast.Redir

prefix:
	for {
		t := p.peek()
		switch {
		case t.Kind == token.ASSIGNMENT_WORD:
			p.pop()
			assigns = append(assigns, assignmentFromToken(t))
		case isRedirStart(t):
			r, err := p.parseRedir()
			if err != nil {
				return nil, err
			}
			redirs = append(redirs, r)
		default:
			break prefix
		}
	}

	t := p.peek()
	if t.Kind != token.WORD && t.Kind != token.EXPANDABLE {
		if len(assigns) == 0 && len(redirs) == 0 {
			return nil, p.unexpected(t)
		}
		cmd := &ast.Command{Pos: astPos(start), Assignments: assigns}
		return foldRedirs(astPos(start), cmd, redirs), nil
	}

	nameTok := p.pop()
	cmd := &ast.Command{Pos: astPos(start), Assignments: assigns}
	if nameTok.Kind == token.WORD {
		cmd.Name = nameTok.Value
	} else {
		cmd.NameExpr = expansionFromToken(nameTok)
	}

	for {
		t := p.peek()
		switch {
		case t.Kind == token.WORD:
			p.pop()
			cmd.Args = append(cmd.Args, &ast.Argument{Pos: astPos(t.Pos), Value: t.Value})
		case t.Kind == token.EXPANDABLE:
			p.pop()
			cmd.Args = append(cmd.Args, expansionFromToken(t))
		case t.Kind >= token.IF && t.Kind <= token.DONE:
			// Reserved words are only special in command position; after
			// the command name they are ordinary arguments (`echo done`).
			p.pop()
			cmd.Args = append(cmd.Args, &ast.Argument{Pos: astPos(t.Pos), Value: t.Value})
		case t.Kind == token.ASSIGNMENT_WORD:
			// After the command name NAME=value is an argument (`export A=1`).
			p.pop()
			if len(t.Expansions) > 0 {
				cmd.Args = append(cmd.Args, expansionFromToken(t))
			} else {
				cmd.Args = append(cmd.Args, &ast.Argument{Pos: astPos(t.Pos), Value: t.Value})
			}
		case isRedirStart(t):
			r, err := p.parseRedir()
			if err != nil {
				return nil, err
			}
			redirs = append(redirs, r)
		default:
			return foldRedirs(astPos(start), cmd, redirs), nil
		}
	}
}

func isRedirStart(t token.Token) bool {
	return t.Kind == token.IO_NUMBER || t.IsRedirection()
}

// parseRedir implements `redirection := [IO_NUMBER] redir_op WORD`,
// defaulting the target fd per spec.md §4.3 when no IO_NUMBER precedes
// the operator: `<`, `<&` default to 0; `>`, `>>`, `>&`, `<>` default to 1.
func (p *Parser) parseRedir() (*ast.Redir, error) {
	start := p.peek().Pos
	fd := -1
	if p.peek().Kind == token.IO_NUMBER {
		n, err := strconv.Atoi(p.peek().Value)
		if err != nil {
			return nil, p.unexpected(p.peek())
		}
		fd = n
		p.pop()
	}

	opTok := p.pop()
	kind, ok := redirKindFor(opTok.Kind)
	if !ok {
		return nil, p.unexpected(opTok)
	}
	if fd < 0 {
		fd = defaultFD(kind)
	}

	target := p.peek()
	if target.Kind != token.WORD && target.Kind != token.EXPANDABLE {
		return nil, p.unexpected(target)
	}
	p.pop()

	var path ast.Node
	if target.Kind == token.WORD {
		path = &ast.Argument{Pos: astPos(target.Pos), Value: target.Value}
	} else {
		path = expansionFromToken(target)
	}

	return &ast.Redir{Pos: astPos(start), Kind: kind, FD: fd, Path: path}, nil
}

func redirKindFor(k token.Kind) (ast.RedirKind, bool) {
	switch k {
	case token.REDIR_IN:
		return ast.RedirIn, true
	case token.REDIR_OUT:
		return ast.RedirOut, true
	case token.REDIR_APP_OUT:
		return ast.RedirAppendOut, true
	case token.REDIR_DUP_IN:
		return ast.RedirDupIn, true
	case token.REDIR_DUP_OUT:
		return ast.RedirDupOut, true
	case token.REDIR_RW:
		return ast.RedirRW, true
	}
	return 0, false
}

func defaultFD(k ast.RedirKind) int {
	switch k {
	case ast.RedirIn, ast.RedirDupIn:
		return 0
	default:
		return 1
	}
}

func foldRedirs(pos ast.Position, inner ast.Node, redirs []*ast.Redir) ast.Node {
	if len(redirs) == 0 {
		return inner
	}
	return &ast.RedirFolder{Pos: pos, Inner: inner, Redirs: redirs}
}

func astPos(p token.Position) ast.Position {
	return ast.Position{Line: p.Line, Column: p.Column}
}

// expansionFromToken converts an EXPANDABLE token's segment list into an
// ast.Expansion, per the expansion_list model in spec.md §3.
func expansionFromToken(t token.Token) *ast.Expansion {
	segs := make([]ast.ExpSegment, len(t.Expansions))
	for i, s := range t.Expansions {
		kind := ast.ExpArgNorm
		if s.Type == token.DOUBLE_QUOTE {
			kind = ast.ExpArgDQ
		}
		segs[i] = ast.ExpSegment{Kind: kind, Text: s.Text}
	}
	return &ast.Expansion{Pos: astPos(t.Pos), Segments: segs}
}

// assignmentFromToken splits an ASSIGNMENT_WORD at its first '=' into a
// name and a value node. The lexer guarantees the "name=" prefix is
// always literal text living in the first NORMAL-or-DOUBLE_QUOTE segment
// (lexWord flushes accumulated literal text before starting a new
// segment on '$'), so splitting the raw Value or the first segment's
// Text both land on the same index.
func assignmentFromToken(t token.Token) *ast.Variable {
	if len(t.Expansions) == 0 {
		idx := strings.IndexByte(t.Value, '=')
		return &ast.Variable{
			Pos:   astPos(t.Pos),
			Name:  t.Value[:idx],
			Value: &ast.Argument{Pos: astPos(t.Pos), Value: t.Value[idx+1:]},
		}
	}

	segs := make([]token.Segment, len(t.Expansions))
	copy(segs, t.Expansions)
	idx := strings.IndexByte(segs[0].Text, '=')
	name := segs[0].Text[:idx]
	segs[0] = token.Segment{Type: segs[0].Type, Text: segs[0].Text[idx+1:]}

	valTok := token.Token{Kind: token.EXPANDABLE, Pos: t.Pos, Expansions: segs}
	return &ast.Variable{Pos: astPos(t.Pos), Name: name, Value: expansionFromToken(valTok)}
}
