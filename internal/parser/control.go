package parser

import (
	"github.com/Svartorm/PosixShell/internal/ast"
	"github.com/Svartorm/PosixShell/internal/token"
)

// parseFuncDec implements `funcdec := FUNCTION_WORD LF* command`. The
// lexer retypes a WORD to FUNCTION_WORD when it is immediately followed
// by "()" but deliberately leaves those two characters unconsumed, so
// they still arrive here as ordinary LPAREN/RPAREN tokens.
func (p *Parser) parseFuncDec() (ast.Node, error) {
	start := p.peek().Pos
	nameTok := p.pop()

	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	p.skipLF()

	body, err := p.parseCommand()
	if err != nil {
		return nil, err
	}

	redirs, err := p.parseTrailingRedirs()
	if err != nil {
		return nil, err
	}
	fd := &ast.FuncDec{Pos: astPos(start), Name: nameTok.Value, Body: body}
	return foldRedirs(astPos(start), fd, redirs), nil
}

// parseBraceGroup implements `'{' compound_list '}'`. Grouping with
// braces has no dedicated AST node: it only scopes how far compound_list
// reads and where trailing redirections attach, so the group's body is
// returned as-is.
func (p *Parser) parseBraceGroup() (ast.Node, error) {
	start := p.peek().Pos
	p.pop() // '{'

	body, err := p.parseCompoundList(token.RBRACE)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}

	redirs, err := p.parseTrailingRedirs()
	if err != nil {
		return nil, err
	}
	return foldRedirs(astPos(start), body, redirs), nil
}

// parseSubshell implements `'(' compound_list ')'`.
func (p *Parser) parseSubshell() (ast.Node, error) {
	start := p.pop().Pos // '('

	body, err := p.parseCompoundList(token.RPAREN)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	redirs, err := p.parseTrailingRedirs()
	if err != nil {
		return nil, err
	}
	sh := &ast.Subshell{Pos: astPos(start), Body: body}
	return foldRedirs(astPos(start), sh, redirs), nil
}

// parseIf implements:
//
//	rule_if := IF compound_list THEN compound_list
//	           (ELIF compound_list THEN compound_list)*
//	           (ELSE compound_list)? FI
//
// elif clauses are represented as nested *ast.Conditional values chained
// through Else, matching the executor's recursive evaluation (spec.md
// §4.5: a CONDITIONAL's Else is itself walked as a node).
func (p *Parser) parseIf() (ast.Node, error) {
	start := p.pop().Pos // IF

	cond, err := p.parseCompoundList(token.THEN)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.THEN); err != nil {
		return nil, err
	}
	then, err := p.parseCompoundList(token.ELIF, token.ELSE, token.FI)
	if err != nil {
		return nil, err
	}

	root := &ast.Conditional{Pos: astPos(start), Cond: cond, Then: then}
	cur := root

	for p.peek().Kind == token.ELIF {
		elifPos := p.pop().Pos
		elifCond, err := p.parseCompoundList(token.THEN)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.THEN); err != nil {
			return nil, err
		}
		elifThen, err := p.parseCompoundList(token.ELIF, token.ELSE, token.FI)
		if err != nil {
			return nil, err
		}
		next := &ast.Conditional{Pos: astPos(elifPos), Cond: elifCond, Then: elifThen}
		cur.Else = next
		cur = next
	}

	if p.peek().Kind == token.ELSE {
		p.pop()
		elseBody, err := p.parseCompoundList(token.FI)
		if err != nil {
			return nil, err
		}
		cur.Else = elseBody
	}

	if _, err := p.expect(token.FI); err != nil {
		return nil, err
	}

	redirs, err := p.parseTrailingRedirs()
	if err != nil {
		return nil, err
	}
	return foldRedirs(astPos(start), root, redirs), nil
}

// parseWhile implements `rule_while := WHILE compound_list DO compound_list DONE`.
func (p *Parser) parseWhile() (ast.Node, error) {
	start := p.pop().Pos
	cond, err := p.parseCompoundList(token.DO)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.DO); err != nil {
		return nil, err
	}
	body, err := p.parseCompoundList(token.DONE)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.DONE); err != nil {
		return nil, err
	}
	redirs, err := p.parseTrailingRedirs()
	if err != nil {
		return nil, err
	}
	w := &ast.While{Pos: astPos(start), Cond: cond, Body: body}
	return foldRedirs(astPos(start), w, redirs), nil
}

// parseUntil implements `rule_until := UNTIL compound_list DO compound_list DONE`.
func (p *Parser) parseUntil() (ast.Node, error) {
	start := p.pop().Pos
	cond, err := p.parseCompoundList(token.DO)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.DO); err != nil {
		return nil, err
	}
	body, err := p.parseCompoundList(token.DONE)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.DONE); err != nil {
		return nil, err
	}
	redirs, err := p.parseTrailingRedirs()
	if err != nil {
		return nil, err
	}
	u := &ast.Until{Pos: astPos(start), Cond: cond, Body: body}
	return foldRedirs(astPos(start), u, redirs), nil
}

// parseFor implements:
//
//	rule_for := FOR WORD ( (';' | LF+ IN WORD* (';'|LF) )? )
//	            LF* DO compound_list DONE
//
// With no "in wordlist" clause, Words is left nil and the executor
// iterates the positional parameters instead (spec.md §4.5's default for
// a bare "for name; do ... done").
func (p *Parser) parseFor() (ast.Node, error) {
	start := p.pop().Pos // FOR

	nameTok, err := p.expect(token.WORD)
	if err != nil {
		return nil, err
	}

	p.skipLF()

	var words []ast.Node
	switch p.peek().Kind {
	case token.IN:
		p.pop()
		for {
			t := p.peek()
			if t.Kind != token.WORD && t.Kind != token.EXPANDABLE {
				break
			}
			p.pop()
			words = append(words, wordNode(t))
		}
		t := p.peek()
		if t.Kind != token.SEMI && t.Kind != token.LF {
			return nil, p.unexpected(t)
		}
		p.pop()
	case token.SEMI:
		p.pop()
	}

	p.skipLF()
	if _, err := p.expect(token.DO); err != nil {
		return nil, err
	}
	body, err := p.parseCompoundList(token.DONE)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.DONE); err != nil {
		return nil, err
	}

	redirs, err := p.parseTrailingRedirs()
	if err != nil {
		return nil, err
	}
	f := &ast.For{Pos: astPos(start), Var: nameTok.Value, Words: words, Body: body}
	return foldRedirs(astPos(start), f, redirs), nil
}

// parseTrailingRedirs consumes the `(redirection)*` suffix that follows
// funcdec and every shell_command alternative.
func (p *Parser) parseTrailingRedirs() ([]*ast.Redir, error) {
	var redirs []*ast.Redir
	for isRedirStart(p.peek()) {
		r, err := p.parseRedir()
		if err != nil {
			return nil, err
		}
		redirs = append(redirs, r)
	}
	return redirs, nil
}

func wordNode(t token.Token) ast.Node {
	if t.Kind == token.EXPANDABLE {
		return expansionFromToken(t)
	}
	return &ast.Argument{Pos: astPos(t.Pos), Value: t.Value}
}
