package ast

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// SyntaxError reports the token at which parsing stopped and the token types
// the grammar would have accepted there.
type SyntaxError struct {
	Token    Token
	Expected []TokenType
	// State is the parser state the error was detected in.
	State int
}

func (e *SyntaxError) Error() string {
	var got string
	switch e.Token.Type {
	case EOF:
		got = "unexpected end of input"
	case ILLEGAL:
		got = fmt.Sprintf("unexpected character %q", e.Token.Raw)
	default:
		got = fmt.Sprintf("unexpected token %q", e.Token.Raw)
	}
	msg := fmt.Sprintf("%s at line %d position %d", got, e.Token.Line, e.Token.Pos)
	if len(e.Expected) > 0 {
		names := make([]string, len(e.Expected))
		for i, tt := range e.Expected {
			names[i] = tt.String()
		}
		msg += "; expected one of: " + strings.Join(names, ", ")
	}
	return msg
}

// Expects reports whether tt is in the expected set.
func (e *SyntaxError) Expects(tt TokenType) bool {
	for _, x := range e.Expected {
		if x == tt {
			return true
		}
	}
	return false
}

// Context returns a window of src around the error position with a caret
// under the offending token.
func (e *SyntaxError) Context(src string, span int) string {
	return Snippet(src, e.Token.Offset, span)
}

// Parser is a table-driven shift/reduce parser over a token slice.
type Parser struct {
	tokens []Token
	pos    int
	end    Token
	states []int
	values []interface{}
}

// NewParser returns a parser over tokens. The tokens must not include EOF.
func NewParser(tokens []Token) *Parser {
	return &Parser{
		tokens: tokens,
		end:    endToken(tokens),
	}
}

// ParseString tokenizes and parses src. A lexical error is returned unchanged.
func ParseString(src string) (*Select, error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	return NewParser(tokens).Parse()
}

// Parse parses a complete token sequence.
func Parse(tokens []Token) (*Select, error) {
	return NewParser(tokens).Parse()
}

// Parse runs the parser to completion. It returns the statement or a
// *SyntaxError; no partial tree is ever returned.
func (p *Parser) Parse() (*Select, error) {
	p.pos = 0
	p.states = []int{0}
	p.values = p.values[:0]

	for {
		state := p.states[len(p.states)-1]
		tok := p.peek()
		act := tables.actions[state][tok.Type]

		switch act.kind {
		case actShift:
			p.states = append(p.states, act.n)
			p.values = append(p.values, tok)
			p.pos++

		case actReduce:
			prod := grammar[act.n]
			n := len(prod.rhs)
			args := make([]interface{}, n)
			copy(args, p.values[len(p.values)-n:])
			p.values = p.values[:len(p.values)-n]
			p.states = p.states[:len(p.states)-n]
			top := p.states[len(p.states)-1]
			p.states = append(p.states, tables.gotos[top][prod.lhs])
			p.values = append(p.values, prod.reduce(args))

		case actAccept:
			return p.values[len(p.values)-1].(*Select), nil

		default:
			return nil, &SyntaxError{
				Token:    tok,
				Expected: tables.expected(state),
				State:    state,
			}
		}
	}
}

func (p *Parser) peek() Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return p.end
}

// endToken builds the EOF token positioned just after the last token.
func endToken(tokens []Token) Token {
	end := Token{Type: EOF, Line: 1, Pos: 1}
	if len(tokens) == 0 {
		return end
	}
	last := tokens[len(tokens)-1]
	end.Line, end.Pos = last.Line, last.Pos
	end.Offset = last.Offset + len(last.Raw)
	for _, ch := range last.Raw {
		if ch == '\n' {
			end.Line++
			end.Pos = 1
		} else {
			end.Pos++
		}
	}
	return end
}

// Snippet returns at most span bytes of src on either side of offset, followed
// by a line with a caret under offset. The window is clamped to src and moved
// onto rune boundaries.
func Snippet(src string, offset, span int) string {
	if offset < 0 {
		offset = 0
	}
	if offset > len(src) {
		offset = len(src)
	}
	if span < 0 {
		span = 0
	}
	start := offset - span
	if start < 0 {
		start = 0
	}
	end := offset + span
	if end > len(src) {
		end = len(src)
	}
	for start > 0 && !utf8.RuneStart(src[start]) {
		start--
	}
	for end < len(src) && !utf8.RuneStart(src[end]) {
		end++
	}

	// Keep only the line containing the offset.
	if i := strings.LastIndexByte(src[start:offset], '\n'); i >= 0 {
		start += i + 1
	}
	if i := strings.IndexByte(src[offset:end], '\n'); i >= 0 {
		end = offset + i
	}

	window := src[start:end]
	caret := strings.Repeat(" ", utf8.RuneCountInString(src[start:offset])) + "^"
	return strings.ReplaceAll(window, "\t", " ") + "\n" + caret
}
