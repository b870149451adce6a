package semantic

import (
	"github.com/kevin-cantwell/sqlfront/internal/ast"
	"github.com/kevin-cantwell/sqlfront/internal/schema"
)

// Analyze checks sel against sch and builds its symbol and type tables.
//
// A missing or unknown table is fatal: the single error is returned with no
// symbols. Unknown columns are reported one by one and analysis continues.
// Analyze keeps no state between calls and never modifies sch.
func Analyze(sel *ast.Select, sch *schema.Schema) (Symbols, []TypeRow, []error) {
	a := &analyzer{schema: sch}
	a.run(sel)
	return a.symbols, a.types, a.errs
}

type analyzer struct {
	schema  *schema.Schema
	table   *schema.Table
	symbols Symbols
	types   []TypeRow
	errs    []error
}

func (a *analyzer) run(sel *ast.Select) {
	name, pos, ok := resolveTable(sel, a.schema)
	if !ok {
		a.errs = append(a.errs, &Error{Kind: NoTable})
		return
	}
	table, ok := a.schema.Lookup(name)
	if !ok {
		a.errs = append(a.errs, &Error{Kind: TableNotFound, Name: name, Pos: pos})
		return
	}
	a.table = table

	a.symbols = append(a.symbols, Symbol{
		Name:  table.Name,
		Type:  "TABLE",
		Scope: GlobalScope,
		Kind:  KindTable,
		Size:  table.RowSize(),
	})

	switch cols := sel.Columns.(type) {
	case *ast.Wildcard:
		a.expandWildcard()
	case *ast.Columns:
		for _, col := range cols.List {
			a.selectColumn(col)
		}
	}

	if sel.Where != nil {
		a.checkWhere(sel.Where.Expr)
	}
}

func (a *analyzer) expandWildcard() {
	scope := SelectScope(a.table.Name)
	offset := 0
	for _, col := range a.table.Columns {
		a.symbols = append(a.symbols, Symbol{
			Name:   col.Name,
			Type:   col.Type,
			Scope:  scope,
			Kind:   KindColumn,
			Size:   col.Size,
			Offset: offset,
		})
		a.types = append(a.types, a.typeRow(col, scope, NoAlias))
		offset += col.Size
	}
}

func (a *analyzer) selectColumn(col *ast.Column) {
	def, ok := a.table.Column(col.Name.Name)
	if !ok {
		a.errs = append(a.errs, &Error{
			Kind:  ColumnNotFoundInSelect,
			Name:  col.Name.Name,
			Table: a.table.Name,
			Pos:   col.Name.Pos,
		})
		return
	}
	scope := SelectScope(a.table.Name)
	sym := Symbol{
		Name:   def.Name,
		Type:   def.Type,
		Scope:  scope,
		Kind:   KindColumn,
		Size:   def.Size,
		Offset: a.table.Offset(def.Name),
	}
	alias := NoAlias
	if col.Alias != nil {
		alias = col.Alias.Name
		sym.Name = alias
		sym.Kind = KindVariable
	}
	a.symbols = append(a.symbols, sym)
	a.types = append(a.types, a.typeRow(def, scope, alias))
}

func (a *analyzer) checkWhere(expr ast.BoolExpr) {
	scope := WhereScope(a.table.Name)
	for _, id := range whereIdents(expr) {
		def, ok := a.table.Column(id.Name)
		if !ok {
			a.errs = append(a.errs, &Error{
				Kind:  ColumnNotFoundInWhere,
				Name:  id.Name,
				Table: a.table.Name,
				Pos:   id.Pos,
			})
			continue
		}
		if _, seen := a.symbols.Find(def.Name, scope); seen {
			continue
		}
		a.symbols = append(a.symbols, Symbol{
			Name:   def.Name,
			Type:   def.Type,
			Scope:  scope,
			Kind:   KindColumn,
			Size:   def.Size,
			Offset: a.table.Offset(def.Name),
		})
	}
}

func (a *analyzer) typeRow(col *schema.Column, scope, alias string) TypeRow {
	return TypeRow{
		Name:  col.Name,
		Type:  col.Type,
		Size:  col.Size,
		Table: a.table.Name,
		Scope: scope,
		Alias: alias,
	}
}

// resolveTable returns the table named in FROM. When the tree has no Table
// node it falls back to the first identifier that names a schema table.
func resolveTable(sel *ast.Select, sch *schema.Schema) (string, ast.Position, bool) {
	if sel == nil {
		return "", ast.Position{}, false
	}
	if sel.Table != nil && sel.Table.Name != nil {
		return sel.Table.Name.Name, sel.Table.Name.Pos, true
	}
	var found *ast.Ident
	ast.Walk(sel, func(n ast.Node) bool {
		if found != nil {
			return false
		}
		if id, ok := n.(*ast.Ident); ok {
			if _, known := sch.Lookup(id.Name); known {
				found = id
			}
		}
		return true
	})
	if found == nil {
		return "", ast.Position{}, false
	}
	return found.Name, found.Pos, true
}

// whereIdents returns every identifier operand in expr, left to right,
// duplicates included.
func whereIdents(expr ast.BoolExpr) []*ast.Ident {
	var idents []*ast.Ident
	ast.Walk(expr, func(n ast.Node) bool {
		if id, ok := n.(*ast.Ident); ok {
			idents = append(idents, id)
		}
		return true
	})
	return idents
}
