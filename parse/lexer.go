// Package parse turns normalized calculator input into a small expression AST.
//
// The grammar is deliberately closed: numeric literals, identifiers (with an
// optional "np." qualifier), the arithmetic operators + - * / // % **,
// parentheses and call argument lists. Anything else is a syntax error, which
// is what keeps string literals, attribute access and indexing out of every
// consumer of the AST.
package parse

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrSyntax is matched by every lexing and parsing failure.
var ErrSyntax = errors.New("syntax error")

// SyntaxError reports malformed input at a byte offset.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Pos, e.Msg)
}

func (e *SyntaxError) Is(target error) bool { return target == ErrSyntax }

// TokenType represents the kind of token.
type TokenType int

const (
	EOF TokenType = iota
	NUMBER
	IDENT
	PLUS    // "+"
	MINUS   // "-"
	STAR    // "*"
	SLASH   // "/"
	DSLASH  // "//"
	PERCENT // "%"
	POW     // "**"
	LPAREN  // "("
	RPAREN  // ")"
	COMMA   // ","
)

var tokenNames = map[TokenType]string{
	EOF:     "end of input",
	NUMBER:  "number",
	IDENT:   "identifier",
	PLUS:    "'+'",
	MINUS:   "'-'",
	STAR:    "'*'",
	SLASH:   "'/'",
	DSLASH:  "'//'",
	PERCENT: "'%'",
	POW:     "'**'",
	LPAREN:  "'('",
	RPAREN:  "')'",
	COMMA:   "','",
}

func (t TokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return "token(" + strconv.Itoa(int(t)) + ")"
}

// Token is a lexical token.
type Token struct {
	Type   TokenType
	Lexeme string
	Pos    int
}

// qualifier is the only namespace prefix the lexer accepts.
const qualifier = "np"

type lexer struct {
	src    string
	start  int
	cur    int
	tokens []Token
}

// Lex scans src into tokens terminated by EOF.
func Lex(src string) ([]Token, error) {
	l := &lexer{src: src}
	for {
		l.skipSpace()
		if l.cur >= len(l.src) {
			l.tokens = append(l.tokens, Token{Type: EOF, Pos: l.cur})
			return l.tokens, nil
		}
		l.start = l.cur
		if err := l.scan(); err != nil {
			return nil, err
		}
	}
}

func (l *lexer) skipSpace() {
	for l.cur < len(l.src) {
		switch l.src[l.cur] {
		case ' ', '\t', '\n', '\r':
			l.cur++
		default:
			return
		}
	}
}

func (l *lexer) peekAt(n int) byte {
	if l.cur+n >= len(l.src) {
		return 0
	}
	return l.src[l.cur+n]
}

func (l *lexer) emit(tt TokenType) {
	l.tokens = append(l.tokens, Token{Type: tt, Lexeme: l.src[l.start:l.cur], Pos: l.start})
}

func (l *lexer) scan() error {
	ch := l.src[l.cur]
	switch {
	case isDigit(ch) || (ch == '.' && isDigit(l.peekAt(1))):
		return l.number()
	case isIdentStart(ch):
		return l.ident()
	}
	l.cur++
	switch ch {
	case '+':
		l.emit(PLUS)
	case '-':
		l.emit(MINUS)
	case '*':
		if l.peekAt(0) == '*' {
			l.cur++
			l.emit(POW)
		} else {
			l.emit(STAR)
		}
	case '/':
		if l.peekAt(0) == '/' {
			l.cur++
			l.emit(DSLASH)
		} else {
			l.emit(SLASH)
		}
	case '%':
		l.emit(PERCENT)
	case '(':
		l.emit(LPAREN)
	case ')':
		l.emit(RPAREN)
	case ',':
		l.emit(COMMA)
	default:
		r := []rune(l.src[l.start:])[0]
		return &SyntaxError{Pos: l.start, Msg: fmt.Sprintf("unexpected character %q", r)}
	}
	return nil
}

func (l *lexer) number() error {
	for isDigit(l.peekAt(0)) {
		l.cur++
	}
	if l.peekAt(0) == '.' {
		l.cur++
		for isDigit(l.peekAt(0)) {
			l.cur++
		}
	}
	if c := l.peekAt(0); c == 'e' || c == 'E' {
		n := 1
		if s := l.peekAt(1); s == '+' || s == '-' {
			n = 2
		}
		if isDigit(l.peekAt(n)) {
			l.cur += n
			for isDigit(l.peekAt(0)) {
				l.cur++
			}
		}
	}
	if isIdentStart(l.peekAt(0)) || l.peekAt(0) == '.' {
		return &SyntaxError{Pos: l.cur, Msg: fmt.Sprintf("malformed number %q", l.src[l.start:l.cur+1])}
	}
	l.emit(NUMBER)
	return nil
}

func (l *lexer) ident() error {
	for isIdentPart(l.peekAt(0)) {
		l.cur++
	}
	if l.peekAt(0) == '.' {
		if l.src[l.start:l.cur] != qualifier || !isIdentStart(l.peekAt(1)) {
			return &SyntaxError{Pos: l.cur, Msg: "attribute access is not allowed"}
		}
		l.cur++
		for isIdentPart(l.peekAt(0)) {
			l.cur++
		}
		if l.peekAt(0) == '.' {
			return &SyntaxError{Pos: l.cur, Msg: "attribute access is not allowed"}
		}
	}
	l.emit(IDENT)
	return nil
}

func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool { return c == '_' || (c|0x20 >= 'a' && c|0x20 <= 'z') }
func isIdentPart(c byte) bool  { return isIdentStart(c) || isDigit(c) }

// IsIdentifier reports whether s is a single bare or np-qualified identifier.
func IsIdentifier(s string) bool {
	toks, err := Lex(s)
	return err == nil && len(toks) == 2 && toks[0].Type == IDENT && toks[0].Lexeme == strings.TrimSpace(s)
}

// SplitTopLevel splits s on sep, ignoring separators nested inside
// parentheses. Segments are returned untrimmed.
func SplitTopLevel(s string, sep byte) []string {
	var parts []string
	depth, last := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case sep:
			if depth == 0 {
				parts = append(parts, s[last:i])
				last = i + 1
			}
		}
	}
	return append(parts, s[last:])
}
