package ast

import "strings"

// Node is any node of the syntax tree. The set of node types is closed: every
// implementation lives in this file.
type Node interface {
	node()
}

// Select represents a full SELECT query.
type Select struct {
	Columns ColumnList
	Table   *Table
	Where   *WhereClause // nil when the query has no WHERE
}

func (*Select) node() {}

// ColumnList is either *Wildcard or *Columns.
type ColumnList interface {
	Node
	columnList()
}

// Wildcard is the * column list.
type Wildcard struct {
	Pos Position
}

func (*Wildcard) node()       {}
func (*Wildcard) columnList() {}

// Columns is an explicit, ordered column list.
type Columns struct {
	List []*Column
}

func (*Columns) node()       {}
func (*Columns) columnList() {}

// Column represents a single item in the SELECT list.
type Column struct {
	Name  *Ident
	Alias *Ident // nil without AS
}

func (*Column) node() {}

// Table is the single table named in FROM.
type Table struct {
	Name *Ident
}

func (*Table) node() {}

// WhereClause wraps exactly one boolean expression.
type WhereClause struct {
	Expr BoolExpr
}

func (*WhereClause) node() {}

// BoolExpr is one of *Or, *And, *Parens or *Compare.
type BoolExpr interface {
	Node
	boolExpr()
}

type Or struct {
	Left  BoolExpr
	Right BoolExpr
}

func (*Or) node()     {}
func (*Or) boolExpr() {}

type And struct {
	Left  BoolExpr
	Right BoolExpr
}

func (*And) node()     {}
func (*And) boolExpr() {}

// Parens keeps explicit grouping visible to later phases.
type Parens struct {
	Expr BoolExpr
}

func (*Parens) node()     {}
func (*Parens) boolExpr() {}

// Compare is `value op value`. Op is one of EQ, NEQ, LT, LTE, GT, GTE.
type Compare struct {
	Op    TokenType
	OpPos Position
	Left  Value
	Right Value
}

func (*Compare) node()     {}
func (*Compare) boolExpr() {}

// Value is one of *Ident, *Number or *String.
type Value interface {
	Node
	value()
}

// Ident is a table, column or alias name.
type Ident struct {
	Name string
	Pos  Position
}

func (*Ident) node()  {}
func (*Ident) value() {}

// Number is a numeric literal as written.
type Number struct {
	Literal string
	Pos     Position
}

func (*Number) node()  {}
func (*Number) value() {}

// String is a string literal as written, quotes included.
type String struct {
	Literal string
	Pos     Position
}

func (*String) node()  {}
func (*String) value() {}

// Value returns the literal's text without quotes, with backslash escapes
// resolved.
func (s *String) Value() string {
	lit := s.Literal
	if len(lit) >= 2 && lit[0] == '\'' && lit[len(lit)-1] == '\'' {
		lit = lit[1 : len(lit)-1]
	}
	if !strings.Contains(lit, `\`) {
		return lit
	}
	var b strings.Builder
	for i := 0; i < len(lit); i++ {
		if lit[i] == '\\' && i+1 < len(lit) {
			i++
		}
		b.WriteByte(lit[i])
	}
	return b.String()
}
