package ast

import (
	"encoding/json"
	"fmt"
)

type Token struct {
	// Type categorizes the token.
	Type TokenType
	// Raw is the original text for this token. String literals keep their quotes.
	Raw string
	// Line is the 1-indexed line on which this token appears in the query.
	Line int
	// Pos is the 1-indexed position (in runes) where this token appears on its line.
	Pos int
	// Offset is the 0-indexed byte offset of the token in the query.
	Offset int
}

func (t Token) String() string {
	if t.Type == EOF {
		return "EOF"
	}
	return t.Raw
}

// Category is the display class of the token in a token table.
func (t Token) Category() string {
	return t.Type.Category()
}

func (t Token) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type     TokenType `json:"type"`
		Category string    `json:"category"`
		Raw      string    `json:"raw"`
		Line     int       `json:"line"`
		Pos      int       `json:"pos"`
	}{t.Type, t.Category(), t.Raw, t.Line, t.Pos})
}

// TokenType represents a lexical token kind.
type TokenType int

func (t TokenType) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", t.String())), nil
}

const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF

	// Symbols
	STAR   // *
	COMMA  // ,
	LPAREN // (
	RPAREN // )
	SEMI   // ;

	// Comparison operators
	EQ  // =
	NEQ // != or <>
	LT  // <
	LTE // <=
	GT  // >
	GTE // >=

	// Keywords
	SELECT
	FROM
	WHERE
	AND
	OR
	AS

	// Literals
	NUMBER // 123, -4.5, 1e3
	STRING // 'foo'

	// Identifiers
	IDENT // table_name, column_name, alias

	numTokenTypes
)

var tokenNames = [...]string{
	ILLEGAL: "ILLEGAL",
	EOF:     "EOF",
	STAR:    "STAR",
	COMMA:   "COMMA",
	LPAREN:  "LPAREN",
	RPAREN:  "RPAREN",
	SEMI:    "SEMI",
	EQ:      "EQ",
	NEQ:     "NEQ",
	LT:      "LT",
	LTE:     "LTE",
	GT:      "GT",
	GTE:     "GTE",
	SELECT:  "SELECT",
	FROM:    "FROM",
	WHERE:   "WHERE",
	AND:     "AND",
	OR:      "OR",
	AS:      "AS",
	NUMBER:  "NUMBER",
	STRING:  "STRING",
	IDENT:   "IDENT",
}

func (t TokenType) String() string {
	if t >= 0 && t < numTokenTypes {
		return tokenNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Symbol returns the literal spelling of fixed tokens, or the kind name for
// tokens whose text varies.
func (t TokenType) Symbol() string {
	switch t {
	case STAR:
		return "*"
	case COMMA:
		return ","
	case LPAREN:
		return "("
	case RPAREN:
		return ")"
	case SEMI:
		return ";"
	case EQ:
		return "="
	case NEQ:
		return "!="
	case LT:
		return "<"
	case LTE:
		return "<="
	case GT:
		return ">"
	case GTE:
		return ">="
	case NUMBER:
		return "number"
	case STRING:
		return "string"
	case IDENT:
		return "identifier"
	case EOF:
		return "end of input"
	}
	return t.String()
}

// Category groups token types the way the token table displays them.
func (t TokenType) Category() string {
	switch {
	case t.IsKeyword():
		return "RESERVED"
	case t.IsComparison():
		return "OPERATOR"
	case t >= STAR && t <= SEMI:
		return "SYMBOL"
	case t == IDENT:
		return "IDENTIFIER"
	case t == NUMBER:
		return "NUMBER"
	case t == STRING:
		return "STRING"
	}
	return t.String()
}

func (t TokenType) IsKeyword() bool {
	return t >= SELECT && t <= AS
}

func (t TokenType) IsComparison() bool {
	return t >= EQ && t <= GTE
}

// Position is a location in the query text.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
	Offset int `json:"offset"`
}

func (p Position) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

func (t Token) Position() Position {
	return Position{Line: t.Line, Column: t.Pos, Offset: t.Offset}
}
