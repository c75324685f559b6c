package lexer

import (
	"regexp"
	"strings"

	"github.com/Svartorm/PosixShell/internal/source"
	"github.com/Svartorm/PosixShell/internal/token"
)

var assignmentPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*=`)

// specialVarChars are the single-character names recognized after a bare
// '$' or at the start of '${...}', per spec.md §4.2/§4.4; RANDOM is
// scanned as an ordinary identifier.
const specialVarChars = "?$#*@"

// lexWord scans a WORD/EXPANDABLE/ASSIGNMENT_WORD/FUNCTION_WORD token
// starting at the stream's current position. It accumulates an ordered
// list of segments (NORMAL: literal, already-resolved text; DOUBLE_QUOTE:
// raw text that still needs the §4.4 escape/variable substitution pass),
// crossing single- and double-quoted runs and bare "$name" references
// without ending the token, per the expansion_list model in spec.md §3.
func (l *Lexer) lexWord(start token.Position) token.Token {
	var segs []token.Segment
	var cur strings.Builder
	curType := token.NORMAL

	flush := func() {
		if cur.Len() > 0 {
			segs = append(segs, token.Segment{Type: curType, Text: cur.String()})
			cur.Reset()
		}
	}

	for {
		ch := l.peekCh()

		if isStopChar(ch) {
			break
		}

		switch ch {
		case '\'':
			l.getCh()
			text, ok := l.scanSingleQuoted()
			if !ok {
				return l.tok(token.ERROR, "unterminated single quote", start)
			}
			if curType != token.NORMAL {
				flush()
				curType = token.NORMAL
			}
			cur.WriteString(text)
			continue

		case '"':
			l.getCh()
			text, ok := l.scanDoubleQuoted()
			if !ok {
				return l.tok(token.ERROR, "unterminated double quote", start)
			}
			flush()
			segs = append(segs, token.Segment{Type: token.DOUBLE_QUOTE, Text: text})
			curType = token.NORMAL
			continue

		case '\\':
			if l.peekAt(1) == '\n' {
				// Line continuation inside a word: drop both characters.
				l.getCh()
				l.getCh()
				continue
			}
			l.getCh()
			next := l.getCh()
			if next == source.EOF {
				return l.tok(token.ERROR, "trailing backslash", start)
			}
			if curType != token.NORMAL {
				flush()
				curType = token.NORMAL
			}
			cur.WriteRune(next)
			continue

		case '$':
			text, ok := l.scanBareExpansion()
			if !ok {
				return l.tok(token.ERROR, "bad variable reference", start)
			}
			flush()
			segs = append(segs, token.Segment{Type: token.DOUBLE_QUOTE, Text: text})
			curType = token.NORMAL
			continue
		}

		cur.WriteRune(l.getCh())
	}
	flush()

	value := joinSegments(segs)
	if value == "" {
		// Nothing was consumed (e.g. we were called directly on a stop
		// character); treat as an error token so callers do not spin.
		return l.tok(token.ERROR, "", start)
	}

	kind := token.WORD
	for _, s := range segs {
		if s.Type == token.DOUBLE_QUOTE {
			kind = token.EXPANDABLE
			break
		}
	}

	tok := token.Token{Kind: kind, Value: value, Pos: start}
	if kind == token.EXPANDABLE {
		tok.Expansions = segs
	}

	if retyped, ok := l.asFunctionWord(tok); ok {
		return retyped
	}
	if kind == token.WORD {
		if kw, ok := token.ReservedWords[value]; ok {
			tok.Kind = kw
			return tok
		}
	}
	if assignmentPattern.MatchString(segs[0].Text) {
		tok.Kind = token.ASSIGNMENT_WORD
		return tok
	}

	return tok
}

func joinSegments(segs []token.Segment) string {
	var sb strings.Builder
	for _, s := range segs {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// scanSingleQuoted copies verbatim until the closing quote. EOF before
// the closing quote is an error (spec.md §4.2).
func (l *Lexer) scanSingleQuoted() (string, bool) {
	var sb strings.Builder
	for {
		ch := l.getCh()
		if ch == source.EOF {
			return "", false
		}
		if ch == '\'' {
			return sb.String(), true
		}
		sb.WriteRune(ch)
	}
}

// scanDoubleQuoted copies the content between quotes, recognizing only
// \" \` \\ as escapes (kept verbatim, both characters, so the expansion
// engine can reprocess them per §4.4); '$' and any other character pass
// through literally. EOF before the closing quote is an error.
func (l *Lexer) scanDoubleQuoted() (string, bool) {
	var sb strings.Builder
	for {
		ch := l.getCh()
		if ch == source.EOF {
			return "", false
		}
		if ch == '"' {
			return sb.String(), true
		}
		if ch == '\\' {
			next := l.peekCh()
			if next == '"' || next == '`' || next == '\\' {
				sb.WriteRune(ch)
				sb.WriteRune(l.getCh())
				continue
			}
			sb.WriteRune(ch)
			continue
		}
		sb.WriteRune(ch)
	}
}

// scanBareExpansion scans a bare (unquoted) "$name" or "${name}" reference
// and returns its raw text (including the leading '$') for the expansion
// engine to resolve later. An empty name, or '$' at EOF, is an error.
func (l *Lexer) scanBareExpansion() (string, bool) {
	var sb strings.Builder
	sb.WriteRune(l.getCh()) // consume '$'

	if l.peekCh() == source.EOF {
		return "", false
	}

	if l.peekCh() == '{' {
		sb.WriteRune(l.getCh())
		nameStart := true
		for {
			ch := l.peekCh()
			if ch == '}' {
				sb.WriteRune(l.getCh())
				return sb.String(), true
			}
			if ch == source.EOF {
				return "", false
			}
			if nameStart && isSpecialVarChar(ch) {
				sb.WriteRune(l.getCh())
				nameStart = false
				continue
			}
			if !isIdentPart(ch) {
				return "", false
			}
			sb.WriteRune(l.getCh())
			nameStart = false
		}
	}

	// Bare $name, $?, $$, $#, $*, $@ — a single special char stands alone.
	if isSpecialVarChar(l.peekCh()) {
		sb.WriteRune(l.getCh())
		return sb.String(), true
	}

	if !isIdentStart(l.peekCh()) {
		return "", false
	}
	for isIdentPart(l.peekCh()) {
		sb.WriteRune(l.getCh())
	}
	return sb.String(), true
}

func isSpecialVarChar(ch rune) bool {
	return strings.ContainsRune(specialVarChars, ch)
}

// asFunctionWord checks whether tok is immediately followed (modulo
// whitespace) by "()", retyping it to FUNCTION_WORD without consuming
// the parens — the parser's funcdec rule consumes them (spec.md §3/§4.3).
func (l *Lexer) asFunctionWord(tok token.Token) (token.Token, bool) {
	if tok.Kind != token.WORD {
		return tok, false
	}

	n := 0
	for l.peekAt(n) == ' ' || l.peekAt(n) == '\t' {
		n++
	}
	if l.peekAt(n) != '(' {
		return tok, false
	}
	n++
	for l.peekAt(n) == ' ' || l.peekAt(n) == '\t' {
		n++
	}
	if l.peekAt(n) != ')' {
		return tok, false
	}

	tok.Kind = token.FUNCTION_WORD
	return tok, true
}
