// Package lexer implements the stateful, context-sensitive tokenizer
// described in spec.md §4.2: a character stream in, a token stream out,
// with one token of lookahead via Peek.
package lexer

import (
	"log/slog"
	"strings"
	"unicode"

	"github.com/Svartorm/PosixShell/internal/invariant"
	"github.com/Svartorm/PosixShell/internal/shlog"
	"github.com/Svartorm/PosixShell/internal/source"
	"github.com/Svartorm/PosixShell/internal/token"
)

// Mode is one of the lexer's coarse scanning states. The Lexer only ever
// stores Normal in its mode field; quoted, escaped and expansion content
// is consumed by dedicated scan functions (word.go) within a single
// token, and the other values are not stored (quoted and expansion
// content never spans a token boundary — an EXPANDABLE token captures an
// entire word, embedded quotes and all, as spec.md §3's expansion_list
// models).
type Mode int

const (
	Normal Mode = iota
	SingleQuote
	DoubleQuote
	Escaped
	Expansion
	ErrorMode
)

func (m Mode) String() string {
	switch m {
	case Normal:
		return "NORMAL"
	case SingleQuote:
		return "SQUOTE"
	case DoubleQuote:
		return "DQUOTE"
	case Escaped:
		return "ESCAPED"
	case Expansion:
		return "EXPANSION"
	case ErrorMode:
		return "ERROR"
	}
	return "?"
}

// Lexer tokenizes shell source text read from a source.Source.
type Lexer struct {
	src    *source.Source
	mode   Mode
	log    *slog.Logger
	line   int
	column int

	peeked    *token.Token
	hasPeeked bool
}

// New creates a Lexer over src.
func New(src *source.Source) *Lexer {
	invariant.NotNil(src, "src")
	return &Lexer{
		src:    src,
		mode:   Normal,
		log:    shlog.Get().With("component", "lexer", "source", src.Name()),
		line:   1,
		column: 1,
	}
}

// Peek returns the next token without consuming it. Repeated Peek calls
// with no intervening Pop return the same token (spec.md §4.2).
func (l *Lexer) Peek() token.Token {
	if !l.hasPeeked {
		tok := l.scan()
		l.peeked = &tok
		l.hasPeeked = true
	}
	return *l.peeked
}

// Pop returns and consumes the next token.
func (l *Lexer) Pop() token.Token {
	if l.hasPeeked {
		tok := *l.peeked
		l.hasPeeked = false
		l.peeked = nil
		return tok
	}
	return l.scan()
}

func (l *Lexer) peekCh() rune   { return l.src.Peek() }
func (l *Lexer) peekAt(n int) rune {
	return l.src.PeekAt(n)
}

func (l *Lexer) getCh() rune {
	ch := l.src.Get()
	if ch == '\n' {
		l.line++
		l.column = 1
	} else if ch != source.EOF {
		l.column++
	}
	return ch
}

func isStopChar(ch rune) bool {
	switch ch {
	case ' ', '\t', ';', '\n', '|', '&', '!', '(', ')', '{', '}', source.EOF, '<', '>':
		return true
	}
	return false
}

func isIdentStart(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isIdentPart(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch) || unicode.IsDigit(ch)
}

// scan produces exactly one token, starting and ending in Normal mode.
func (l *Lexer) scan() token.Token {
	l.mode = Normal

	for {
		l.skipBlanks()

		if l.peekCh() == '#' {
			l.skipComment()
			continue
		}

		// Line-continuation before we've committed to any token: "\" + "\n"
		// produces no token and resumes scanning (spec.md §4.2).
		if l.peekCh() == '\\' && l.peekAt(1) == '\n' {
			l.getCh()
			l.getCh()
			continue
		}

		break
	}

	start := l.pos()
	ch := l.peekCh()

	l.log.Debug("dispatch", "mode", l.mode, "ch", string(ch))

	switch ch {
	case source.EOF:
		return l.tok(token.EOF, "", start)

	case '\n':
		l.getCh()
		return l.tok(token.LF, "\n", start)

	case ';':
		l.getCh()
		return l.tok(token.SEMI, ";", start)

	case '(':
		l.getCh()
		return l.tok(token.LPAREN, "(", start)

	case ')':
		l.getCh()
		return l.tok(token.RPAREN, ")", start)

	case '{':
		l.getCh()
		return l.tok(token.LBRACE, "{", start)

	case '}':
		l.getCh()
		return l.tok(token.RBRACE, "}", start)

	case '|':
		if l.peekAt(1) == '|' {
			l.getCh()
			l.getCh()
			return l.tok(token.OR, "||", start)
		}
		l.getCh()
		return l.tok(token.PIPE, "|", start)

	case '&':
		if l.peekAt(1) == '&' {
			l.getCh()
			l.getCh()
			return l.tok(token.AND, "&&", start)
		}
		// Bare '&' (backgrounding) is a non-goal; surface it as an error
		// token so the parser reports a syntax error rather than silently
		// accepting background jobs.
		l.getCh()
		return l.tok(token.ERROR, "&", start)

	case '!':
		l.getCh()
		return l.tok(token.NOT, "!", start)

	case '<':
		return l.lexRedirStartingWith('<', start)

	case '>':
		return l.lexRedirStartingWith('>', start)
	}

	if unicode.IsDigit(ch) {
		if tok, ok := l.tryIONumber(start); ok {
			return tok
		}
		// Falls through to word scanning: the digit run is part of a WORD.
	}

	return l.lexWord(start)
}

func (l *Lexer) pos() token.Position {
	return token.Position{Line: l.line, Column: l.column, Offset: l.src.Offset()}
}

func (l *Lexer) tok(kind token.Kind, value string, start token.Position) token.Token {
	return token.Token{Kind: kind, Value: value, Pos: start}
}

func (l *Lexer) skipBlanks() {
	for l.peekCh() == ' ' || l.peekCh() == '\t' {
		l.getCh()
	}
}

func (l *Lexer) skipComment() {
	for l.peekCh() != '\n' && l.peekCh() != source.EOF {
		l.getCh()
	}
}

// lexRedirStartingWith handles maximal-munch redirection operators:
// ">>", ">|", "<&", ">&", "<>", else a lone ">" or "<".
func (l *Lexer) lexRedirStartingWith(first rune, start token.Position) token.Token {
	second := l.peekAt(1)

	switch {
	case first == '>' && second == '>':
		l.getCh()
		l.getCh()
		return l.tok(token.REDIR_APP_OUT, ">>", start)
	case first == '<' && second == '>':
		l.getCh()
		l.getCh()
		return l.tok(token.REDIR_RW, "<>", start)
	case first == '<' && second == '&':
		l.getCh()
		l.getCh()
		return l.tok(token.REDIR_DUP_IN, "<&", start)
	case first == '>' && second == '&':
		l.getCh()
		l.getCh()
		return l.tok(token.REDIR_DUP_OUT, ">&", start)
	case first == '>' && second == '|':
		l.getCh()
		l.getCh()
		// ">|" is textually distinct from ">" but this spec's redirection
		// set does not model noclobber-override as its own kind, so it is
		// folded into REDIR_OUT (both truncate-and-write fd 1 by default).
		return l.tok(token.REDIR_OUT, ">|", start)
	}

	l.getCh()
	if first == '<' {
		return l.tok(token.REDIR_IN, "<", start)
	}
	return l.tok(token.REDIR_OUT, ">", start)
}

// tryIONumber consumes a digit run and, only if it is immediately
// followed by '<' or '>', returns it as an IO_NUMBER token. Otherwise it
// consumes nothing and reports ok=false so the caller falls back to word
// scanning (spec.md §4.2).
func (l *Lexer) tryIONumber(start token.Position) (token.Token, bool) {
	n := 0
	for unicode.IsDigit(l.peekAt(n)) {
		n++
	}
	next := l.peekAt(n)
	if next != '<' && next != '>' {
		return token.Token{}, false
	}

	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteRune(l.getCh())
	}
	return l.tok(token.IO_NUMBER, sb.String(), start), true
}
