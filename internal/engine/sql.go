package engine

import (
	"fmt"
	"strings"

	"github.com/kevin-cantwell/sqlfront/internal/ast"
)

// ToSQL converts a checked Select into a SQLite SQL string. Identifiers are
// quoted with backticks, which SQLite never reads as string literals, and
// every comparison and connective is parenthesized, so the grouping SQLite
// sees is the grouping of the tree.
func ToSQL(sel *ast.Select) string {
	var b strings.Builder

	b.WriteString("SELECT ")
	switch cols := sel.Columns.(type) {
	case *ast.Wildcard:
		b.WriteString("*")
	case *ast.Columns:
		for i, col := range cols.List {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(quoteIdent(col.Name.Name))
			if col.Alias != nil {
				b.WriteString(" AS ")
				b.WriteString(quoteIdent(col.Alias.Name))
			}
		}
	}

	if sel.Table != nil {
		b.WriteString(" FROM ")
		b.WriteString(quoteIdent(sel.Table.Name.Name))
	}

	if sel.Where != nil {
		b.WriteString(" WHERE ")
		b.WriteString(exprToSQL(sel.Where.Expr))
	}

	return b.String()
}

func exprToSQL(expr ast.BoolExpr) string {
	switch e := expr.(type) {
	case *ast.Or:
		return fmt.Sprintf("(%s OR %s)", exprToSQL(e.Left), exprToSQL(e.Right))
	case *ast.And:
		return fmt.Sprintf("(%s AND %s)", exprToSQL(e.Left), exprToSQL(e.Right))
	case *ast.Parens:
		// the inner expression is already wrapped
		return exprToSQL(e.Expr)
	case *ast.Compare:
		return fmt.Sprintf("(%s %s %s)", valueToSQL(e.Left), tokenToSQLOp(e.Op), valueToSQL(e.Right))
	}
	return "?"
}

func valueToSQL(v ast.Value) string {
	switch e := v.(type) {
	case *ast.Ident:
		return quoteIdent(e.Name)
	case *ast.Number:
		return e.Literal
	case *ast.String:
		return quoteLiteral(e.Value())
	}
	return "?"
}

func tokenToSQLOp(t ast.TokenType) string {
	switch t {
	case ast.EQ:
		return "="
	case ast.NEQ:
		return "!="
	case ast.LT:
		return "<"
	case ast.LTE:
		return "<="
	case ast.GT:
		return ">"
	case ast.GTE:
		return ">="
	default:
		return "?"
	}
}

func quoteIdent(s string) string {
	if s == "*" {
		return "*"
	}
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
