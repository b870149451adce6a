package ast

import (
	"fmt"
	"strings"
)

// Children returns the direct children of n in source order.
func Children(n Node) []Node {
	switch n := n.(type) {
	case *Select:
		var out []Node
		if n.Columns != nil {
			out = append(out, n.Columns)
		}
		if n.Table != nil {
			out = append(out, n.Table)
		}
		if n.Where != nil {
			out = append(out, n.Where)
		}
		return out
	case *Columns:
		out := make([]Node, len(n.List))
		for i, col := range n.List {
			out[i] = col
		}
		return out
	case *Column:
		if n.Alias != nil {
			return []Node{n.Name, n.Alias}
		}
		return []Node{n.Name}
	case *Table:
		return []Node{n.Name}
	case *WhereClause:
		return []Node{n.Expr}
	case *Or:
		return []Node{n.Left, n.Right}
	case *And:
		return []Node{n.Left, n.Right}
	case *Parens:
		return []Node{n.Expr}
	case *Compare:
		return []Node{n.Left, n.Right}
	case *Wildcard, *Ident, *Number, *String:
		return nil
	default:
		panic(fmt.Sprintf("ast: unexpected node %T", n))
	}
}

// Walk visits n and its descendants depth-first. Returning false from fn skips
// the children of the node just visited.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, child := range Children(n) {
		Walk(child, fn)
	}
}

// CountNodes returns the number of nodes in the tree rooted at n.
func CountNodes(n Node) int {
	count := 0
	Walk(n, func(Node) bool {
		count++
		return true
	})
	return count
}

// Label is the one-line description of n used by Dump and tree renderers.
func Label(n Node) string {
	switch n := n.(type) {
	case *Select:
		return "SELECT"
	case *Wildcard:
		return "STAR"
	case *Columns:
		return "COLUMN_LIST"
	case *Column:
		return "COLUMN"
	case *Table:
		return "TABLE"
	case *WhereClause:
		return "WHERE_CLAUSE"
	case *Or:
		return "OR"
	case *And:
		return "AND"
	case *Parens:
		return "PARENS"
	case *Compare:
		return "COMPARE " + n.Op.Symbol()
	case *Ident:
		return "IDENT: " + n.Name
	case *Number:
		return "NUMBER: " + n.Literal
	case *String:
		return "STRING: " + n.Literal
	}
	return fmt.Sprintf("%T", n)
}

// Dump renders the tree rooted at n as indented text, one node per line.
func Dump(n Node) string {
	var b strings.Builder
	var dump func(n Node, depth int)
	dump = func(n Node, depth int) {
		b.WriteString(strings.Repeat("  ", depth))
		if col, ok := n.(*Column); ok && col.Alias != nil {
			b.WriteString(Label(n))
			b.WriteString("\n")
			dump(col.Name, depth+1)
			b.WriteString(strings.Repeat("  ", depth+1))
			b.WriteString("ALIAS: " + col.Alias.Name + "\n")
			return
		}
		b.WriteString(Label(n))
		b.WriteString("\n")
		for _, child := range Children(n) {
			dump(child, depth+1)
		}
	}
	if n != nil {
		dump(n, 0)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Format renders sel back into canonical query text.
func Format(sel *Select) string {
	var b strings.Builder
	b.WriteString("SELECT ")
	switch cols := sel.Columns.(type) {
	case *Wildcard:
		b.WriteString("*")
	case *Columns:
		for i, col := range cols.List {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(col.Name.Name)
			if col.Alias != nil {
				b.WriteString(" AS ")
				b.WriteString(col.Alias.Name)
			}
		}
	}
	if sel.Table != nil {
		b.WriteString(" FROM ")
		b.WriteString(sel.Table.Name.Name)
	}
	if sel.Where != nil {
		b.WriteString(" WHERE ")
		b.WriteString(FormatExpr(sel.Where.Expr))
	}
	return b.String()
}

// FormatExpr renders a boolean expression. Grouping appears only where the
// tree has a Parens node.
func FormatExpr(e BoolExpr) string {
	switch e := e.(type) {
	case *Or:
		return FormatExpr(e.Left) + " OR " + FormatExpr(e.Right)
	case *And:
		return FormatExpr(e.Left) + " AND " + FormatExpr(e.Right)
	case *Parens:
		return "(" + FormatExpr(e.Expr) + ")"
	case *Compare:
		return formatValue(e.Left) + " " + e.Op.Symbol() + " " + formatValue(e.Right)
	}
	return ""
}

func formatValue(v Value) string {
	switch v := v.(type) {
	case *Ident:
		return v.Name
	case *Number:
		return v.Literal
	case *String:
		return v.Literal
	}
	return ""
}
