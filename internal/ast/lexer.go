package ast

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// eof represents a marker rune for the end of the input.
const eof = rune(0)

// LexError reports the first character the lexer could not classify. Tokens
// recognized before it are still returned by Tokenize.
type LexError struct {
	Pos  Position
	Char string
	Msg  string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%s at %s", e.Msg, e.Pos)
}

// Token returns the offending input as an ILLEGAL token so a parser can report
// it in place.
func (e *LexError) Token() Token {
	return Token{Type: ILLEGAL, Raw: e.Char, Line: e.Pos.Line, Pos: e.Pos.Column, Offset: e.Pos.Offset}
}

// Lexer represents a lexical scanner over a query string.
type Lexer struct {
	src  string
	off  int
	line int
	pos  int
}

// NewLexer returns a new instance of Lexer.
func NewLexer(src string) *Lexer {
	return &Lexer{
		src:  src,
		line: 1,
		pos:  1,
	}
}

// Tokenize scans the whole input. Whitespace is never emitted and the final
// EOF token is not included. On a lexical error the tokens scanned so far are
// returned together with a *LexError.
func Tokenize(src string) ([]Token, error) {
	l := NewLexer(src)
	var tokens []Token
	for {
		tok, err := l.Scan()
		if err != nil {
			return tokens, err
		}
		if tok.Type == EOF {
			return tokens, nil
		}
		tokens = append(tokens, tok)
	}
}

// Scan returns the next token.
func (l *Lexer) Scan() (Token, error) {
	l.skipWS()
	if l.off >= len(l.src) {
		return l.newToken(EOF, 0), nil
	}
	for _, scan := range []func() (Token, bool, error){
		l.scanString,
		l.scanNumber,
		l.scanSymbol,
		l.scanWord,
	} {
		tok, ok, err := scan()
		if err != nil {
			return Token{}, err
		}
		if ok {
			return tok, nil
		}
	}
	return Token{}, l.scanIllegal()
}

func (l *Lexer) position() Position {
	return Position{Line: l.line, Column: l.pos, Offset: l.off}
}

// newToken builds a token from the next n bytes and advances past them.
func (l *Lexer) newToken(typ TokenType, n int) Token {
	tok := Token{
		Type:   typ,
		Raw:    l.src[l.off : l.off+n],
		Line:   l.line,
		Pos:    l.pos,
		Offset: l.off,
	}
	l.advance(n)
	return tok
}

func (l *Lexer) skipWS() {
	for {
		ch := l.peek()
		if !isWS(ch) {
			return
		}
		l.advance(utf8.RuneLen(ch))
	}
}

// scans a single-quoted string literal
func (l *Lexer) scanString() (Token, bool, error) {
	if l.peek() != '\'' {
		return Token{}, false, nil
	}
	start := l.position()
	n := 1
	for {
		ch, size := l.peekAt(n)
		switch {
		case size == 0:
			return Token{}, false, &LexError{Pos: start, Char: "'", Msg: "unterminated string literal"}
		case ch == '\\':
			_, esc := l.peekAt(n + 1)
			if esc == 0 {
				return Token{}, false, &LexError{Pos: start, Char: "'", Msg: "unterminated string literal"}
			}
			n += 1 + esc
		case ch == '\'':
			return l.newToken(STRING, n+1), true, nil
		default:
			n += size
		}
	}
}

// scans a signed number literal: [+-]? (digits [. digits?] | . digits) ([eE] [+-]? digits)?
func (l *Lexer) scanNumber() (Token, bool, error) {
	n := 0
	if ch, _ := l.peekAt(0); ch == '+' || ch == '-' {
		n++
	}
	intDigits := l.digitsAt(n)
	n += intDigits
	fracDigits := 0
	if ch, _ := l.peekAt(n); ch == '.' {
		fracDigits = l.digitsAt(n + 1)
		if intDigits > 0 || fracDigits > 0 {
			n += 1 + fracDigits
		}
	}
	if intDigits == 0 && fracDigits == 0 {
		return Token{}, false, nil
	}
	if ch, _ := l.peekAt(n); ch == 'e' || ch == 'E' {
		m := n + 1
		if sign, _ := l.peekAt(m); sign == '+' || sign == '-' {
			m++
		}
		if exp := l.digitsAt(m); exp > 0 {
			n = m + exp
		}
	}
	return l.newToken(NUMBER, n), true, nil
}

func (l *Lexer) scanSymbol() (Token, bool, error) {
	rest := l.src[l.off:]
	for _, sym := range symbols {
		if strings.HasPrefix(rest, sym.str) {
			return l.newToken(sym.typ, len(sym.str)), true, nil
		}
	}
	return Token{}, false, nil
}

// scanWord scans an identifier and classifies it as a keyword when the whole
// word matches one, ignoring case.
func (l *Lexer) scanWord() (Token, bool, error) {
	if ch := l.peek(); !isLetter(ch) && ch != '_' {
		return Token{}, false, nil
	}
	n := 0
	for {
		ch, size := l.peekAt(n)
		if size == 0 || !isIdent(ch) {
			break
		}
		n += size
	}
	typ := IDENT
	if kw, ok := keywords[strings.ToUpper(l.src[l.off:l.off+n])]; ok {
		typ = kw
	}
	return l.newToken(typ, n), true, nil
}

func (l *Lexer) scanIllegal() error {
	ch := l.peek()
	return &LexError{
		Pos:  l.position(),
		Char: string(ch),
		Msg:  fmt.Sprintf("unexpected character %q", ch),
	}
}

func (l *Lexer) peek() rune {
	ch, _ := l.peekAt(0)
	return ch
}

// peekAt decodes the rune n bytes ahead of the cursor. The size is 0 at the
// end of input.
func (l *Lexer) peekAt(n int) (rune, int) {
	if l.off+n >= len(l.src) {
		return eof, 0
	}
	return utf8.DecodeRuneInString(l.src[l.off+n:])
}

func (l *Lexer) digitsAt(n int) int {
	count := 0
	for {
		ch, _ := l.peekAt(n + count)
		if !isDigit(ch) {
			return count
		}
		count++
	}
}

// advance moves the cursor n bytes forward, tracking line and column.
func (l *Lexer) advance(n int) {
	end := l.off + n
	for l.off < end {
		ch, size := utf8.DecodeRuneInString(l.src[l.off:])
		l.off += size
		if ch == '\n' {
			l.line++
			l.pos = 1
		} else {
			l.pos++
		}
	}
}

func isWS(ch rune) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f' || ch == '\v'
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func isLetter(ch rune) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z')
}

func isIdent(ch rune) bool {
	return isLetter(ch) || isDigit(ch) || ch == '_'
}

type symbolEntry struct {
	typ TokenType
	str string
}

var (
	// Ordered longest-first so multi-char symbols match before single-char prefixes.
	symbols = []symbolEntry{
		{NEQ, "!="},
		{NEQ, "<>"},
		{LTE, "<="},
		{GTE, ">="},
		{STAR, "*"},
		{COMMA, ","},
		{LPAREN, "("},
		{RPAREN, ")"},
		{SEMI, ";"},
		{EQ, "="},
		{LT, "<"},
		{GT, ">"},
	}

	keywords = map[string]TokenType{
		"SELECT": SELECT,
		"FROM":   FROM,
		"WHERE":  WHERE,
		"AND":    AND,
		"OR":     OR,
		"AS":     AS,
	}
)
