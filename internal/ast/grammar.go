package ast

import (
	"fmt"
	"sort"
	"strings"
)

// symbol is a grammar symbol. Terminals share their values with TokenType;
// nonterminals start at ntBase.
type symbol int

const ntBase symbol = 100

const (
	ntStart symbol = ntBase + iota
	ntStatement
	ntColumnList
	ntColumns
	ntColumn
	ntTableRef
	ntWhereClause
	ntBoolExpr
	ntBoolTerm
	ntBoolFactor
	ntComparison
	ntValue
	ntCompOp
)

var ntNames = map[symbol]string{
	ntStart:       "start",
	ntStatement:   "statement",
	ntColumnList:  "column_list",
	ntColumns:     "columns",
	ntColumn:      "column",
	ntTableRef:    "table_ref",
	ntWhereClause: "where_clause",
	ntBoolExpr:    "bool_expr",
	ntBoolTerm:    "bool_term",
	ntBoolFactor:  "bool_factor",
	ntComparison:  "comparison",
	ntValue:       "value",
	ntCompOp:      "comp_op",
}

func (s symbol) terminal() bool {
	return s < ntBase
}

func (s symbol) String() string {
	if s.terminal() {
		return TokenType(s).String()
	}
	return ntNames[s]
}

// production is one grammar rule. reduce builds the AST value for the left
// hand side from the values of the right hand side symbols; terminals
// contribute their Token.
type production struct {
	lhs    symbol
	rhs    []symbol
	reduce func(args []interface{}) interface{}
}

func (p production) String() string {
	parts := make([]string, len(p.rhs))
	for i, s := range p.rhs {
		parts[i] = s.String()
	}
	return p.lhs.String() + " := " + strings.Join(parts, " ")
}

func term(tt TokenType) symbol { return symbol(tt) }

// grammar is the statement grammar with optional parts expanded so that no
// rule derives the empty string. Rule 0 is the augmented start rule.
//
//	statement     := SELECT column_list FROM table_ref where_clause? SEMI?
//	column_list   := STAR | column (COMMA column)*
//	column        := identifier (AS identifier)?
//	table_ref     := identifier
//	where_clause  := WHERE bool_expr
//	bool_expr     := bool_expr OR bool_term | bool_term
//	bool_term     := bool_term AND bool_factor | bool_factor
//	bool_factor   := comparison | LPAREN bool_expr RPAREN
//	comparison    := value comp_op value
//	value         := identifier | NUMBER | STRING
//	comp_op       := EQ | NEQ | LT | LTE | GT | GTE
var grammar = []production{
	{ntStart, []symbol{ntStatement}, first},

	{ntStatement, []symbol{term(SELECT), ntColumnList, term(FROM), ntTableRef}, reduceSelect},
	{ntStatement, []symbol{term(SELECT), ntColumnList, term(FROM), ntTableRef, term(SEMI)}, reduceSelect},
	{ntStatement, []symbol{term(SELECT), ntColumnList, term(FROM), ntTableRef, ntWhereClause}, reduceSelect},
	{ntStatement, []symbol{term(SELECT), ntColumnList, term(FROM), ntTableRef, ntWhereClause, term(SEMI)}, reduceSelect},

	{ntColumnList, []symbol{term(STAR)}, func(args []interface{}) interface{} {
		return &Wildcard{Pos: args[0].(Token).Position()}
	}},
	{ntColumnList, []symbol{ntColumns}, first},
	{ntColumns, []symbol{ntColumn}, func(args []interface{}) interface{} {
		return &Columns{List: []*Column{args[0].(*Column)}}
	}},
	{ntColumns, []symbol{ntColumns, term(COMMA), ntColumn}, func(args []interface{}) interface{} {
		cols := args[0].(*Columns)
		cols.List = append(cols.List, args[2].(*Column))
		return cols
	}},
	{ntColumn, []symbol{term(IDENT)}, func(args []interface{}) interface{} {
		return &Column{Name: ident(args[0])}
	}},
	{ntColumn, []symbol{term(IDENT), term(AS), term(IDENT)}, func(args []interface{}) interface{} {
		return &Column{Name: ident(args[0]), Alias: ident(args[2])}
	}},
	{ntTableRef, []symbol{term(IDENT)}, func(args []interface{}) interface{} {
		return &Table{Name: ident(args[0])}
	}},
	{ntWhereClause, []symbol{term(WHERE), ntBoolExpr}, func(args []interface{}) interface{} {
		return &WhereClause{Expr: args[1].(BoolExpr)}
	}},

	{ntBoolExpr, []symbol{ntBoolExpr, term(OR), ntBoolTerm}, func(args []interface{}) interface{} {
		return &Or{Left: args[0].(BoolExpr), Right: args[2].(BoolExpr)}
	}},
	{ntBoolExpr, []symbol{ntBoolTerm}, first},
	{ntBoolTerm, []symbol{ntBoolTerm, term(AND), ntBoolFactor}, func(args []interface{}) interface{} {
		return &And{Left: args[0].(BoolExpr), Right: args[2].(BoolExpr)}
	}},
	{ntBoolTerm, []symbol{ntBoolFactor}, first},
	{ntBoolFactor, []symbol{ntComparison}, first},
	{ntBoolFactor, []symbol{term(LPAREN), ntBoolExpr, term(RPAREN)}, func(args []interface{}) interface{} {
		return &Parens{Expr: args[1].(BoolExpr)}
	}},
	{ntComparison, []symbol{ntValue, ntCompOp, ntValue}, func(args []interface{}) interface{} {
		op := args[1].(Token)
		return &Compare{Op: op.Type, OpPos: op.Position(), Left: args[0].(Value), Right: args[2].(Value)}
	}},

	{ntValue, []symbol{term(IDENT)}, func(args []interface{}) interface{} {
		return ident(args[0])
	}},
	{ntValue, []symbol{term(NUMBER)}, func(args []interface{}) interface{} {
		tok := args[0].(Token)
		return &Number{Literal: tok.Raw, Pos: tok.Position()}
	}},
	{ntValue, []symbol{term(STRING)}, func(args []interface{}) interface{} {
		tok := args[0].(Token)
		return &String{Literal: tok.Raw, Pos: tok.Position()}
	}},

	{ntCompOp, []symbol{term(EQ)}, first},
	{ntCompOp, []symbol{term(NEQ)}, first},
	{ntCompOp, []symbol{term(LT)}, first},
	{ntCompOp, []symbol{term(LTE)}, first},
	{ntCompOp, []symbol{term(GT)}, first},
	{ntCompOp, []symbol{term(GTE)}, first},
}

func first(args []interface{}) interface{} {
	return args[0]
}

func ident(v interface{}) *Ident {
	tok := v.(Token)
	return &Ident{Name: tok.Raw, Pos: tok.Position()}
}

func reduceSelect(args []interface{}) interface{} {
	sel := &Select{
		Columns: args[1].(ColumnList),
		Table:   args[3].(*Table),
	}
	if len(args) > 4 {
		if where, ok := args[4].(*WhereClause); ok {
			sel.Where = where
		}
	}
	return sel
}

// SLR(1) tables, built once from grammar.

type actionKind uint8

const (
	actError actionKind = iota
	actShift
	actReduce
	actAccept
)

type action struct {
	kind actionKind
	n    int // target state for shifts, production index for reductions
}

type item struct {
	prod int
	dot  int
}

func (it item) next() (symbol, bool) {
	rhs := grammar[it.prod].rhs
	if it.dot >= len(rhs) {
		return 0, false
	}
	return rhs[it.dot], true
}

type transition struct {
	sym   symbol
	state int
}

type parseTables struct {
	states  [][]item
	actions [][]action // [state][TokenType]
	gotos   []map[symbol]int
}

var tables = mustBuildTables()

func mustBuildTables() *parseTables {
	tbl, conflicts := buildTables()
	if len(conflicts) > 0 {
		panic("grammar is not SLR(1):\n" + strings.Join(conflicts, "\n"))
	}
	return tbl
}

// buildTables computes the canonical LR(0) collection and fills the ACTION
// table with FOLLOW-set lookaheads. Every conflict found is reported.
func buildTables() (*parseTables, []string) {
	follow := followSets()
	tbl := &parseTables{}
	index := map[string]int{}

	addState := func(items []item) int {
		key := itemsKey(items)
		if i, ok := index[key]; ok {
			return i
		}
		index[key] = len(tbl.states)
		tbl.states = append(tbl.states, items)
		tbl.gotos = append(tbl.gotos, map[symbol]int{})
		return len(tbl.states) - 1
	}

	addState(closure([]item{{prod: 0}}))
	var transitions [][]transition
	for s := 0; s < len(tbl.states); s++ {
		var trans []transition
		for _, sym := range nextSymbols(tbl.states[s]) {
			trans = append(trans, transition{sym: sym, state: addState(gotoItems(tbl.states[s], sym))})
		}
		transitions = append(transitions, trans)
	}

	var conflicts []string
	tbl.actions = make([][]action, len(tbl.states))
	for s, items := range tbl.states {
		row := make([]action, numTokenTypes)
		set := func(tt TokenType, act action) {
			if prev := row[tt]; prev.kind != actError && prev != act {
				conflicts = append(conflicts, fmt.Sprintf("state %d on %s: %s vs %s", s, tt, describe(prev), describe(act)))
				return
			}
			row[tt] = act
		}
		for _, tr := range transitions[s] {
			if tr.sym.terminal() {
				set(TokenType(tr.sym), action{kind: actShift, n: tr.state})
			} else {
				tbl.gotos[s][tr.sym] = tr.state
			}
		}
		for _, it := range items {
			if _, more := it.next(); more {
				continue
			}
			if it.prod == 0 {
				set(EOF, action{kind: actAccept})
				continue
			}
			for _, tt := range sortedTerminals(follow[grammar[it.prod].lhs]) {
				set(tt, action{kind: actReduce, n: it.prod})
			}
		}
		tbl.actions[s] = row
	}
	return tbl, conflicts
}

func describe(a action) string {
	switch a.kind {
	case actShift:
		return fmt.Sprintf("shift %d", a.n)
	case actReduce:
		return fmt.Sprintf("reduce %s", grammar[a.n])
	case actAccept:
		return "accept"
	}
	return "error"
}

// expected lists, in TokenType order, the terminals the parser can act on in
// the given state.
func (tbl *parseTables) expected(state int) []TokenType {
	var out []TokenType
	for tt, act := range tbl.actions[state] {
		if act.kind != actError {
			out = append(out, TokenType(tt))
		}
	}
	return out
}

func closure(kernel []item) []item {
	items := append([]item(nil), kernel...)
	seen := map[item]bool{}
	for _, it := range items {
		seen[it] = true
	}
	for i := 0; i < len(items); i++ {
		sym, ok := items[i].next()
		if !ok || sym.terminal() {
			continue
		}
		for p, prod := range grammar {
			if prod.lhs != sym {
				continue
			}
			it := item{prod: p}
			if !seen[it] {
				seen[it] = true
				items = append(items, it)
			}
		}
	}
	sort.Slice(items, func(a, b int) bool {
		if items[a].prod != items[b].prod {
			return items[a].prod < items[b].prod
		}
		return items[a].dot < items[b].dot
	})
	return items
}

func gotoItems(items []item, sym symbol) []item {
	var kernel []item
	for _, it := range items {
		if next, ok := it.next(); ok && next == sym {
			kernel = append(kernel, item{prod: it.prod, dot: it.dot + 1})
		}
	}
	return closure(kernel)
}

func nextSymbols(items []item) []symbol {
	seen := map[symbol]bool{}
	var out []symbol
	for _, it := range items {
		if sym, ok := it.next(); ok && !seen[sym] {
			seen[sym] = true
			out = append(out, sym)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}

func itemsKey(items []item) string {
	var b strings.Builder
	for _, it := range items {
		fmt.Fprintf(&b, "%d.%d;", it.prod, it.dot)
	}
	return b.String()
}

// firstSets relies on the grammar having no empty productions.
func firstSets() map[symbol]map[symbol]bool {
	firsts := map[symbol]map[symbol]bool{}
	for _, prod := range grammar {
		firsts[prod.lhs] = map[symbol]bool{}
	}
	for changed := true; changed; {
		changed = false
		for _, prod := range grammar {
			for sym := range firstOf(firsts, prod.rhs[0]) {
				if !firsts[prod.lhs][sym] {
					firsts[prod.lhs][sym] = true
					changed = true
				}
			}
		}
	}
	return firsts
}

func firstOf(firsts map[symbol]map[symbol]bool, sym symbol) map[symbol]bool {
	if sym.terminal() {
		return map[symbol]bool{sym: true}
	}
	return firsts[sym]
}

func followSets() map[symbol]map[symbol]bool {
	firsts := firstSets()
	follow := map[symbol]map[symbol]bool{}
	for _, prod := range grammar {
		follow[prod.lhs] = map[symbol]bool{}
	}
	follow[ntStart][term(EOF)] = true
	for changed := true; changed; {
		changed = false
		add := func(dst symbol, src map[symbol]bool) {
			for sym := range src {
				if !follow[dst][sym] {
					follow[dst][sym] = true
					changed = true
				}
			}
		}
		for _, prod := range grammar {
			for i, sym := range prod.rhs {
				if sym.terminal() {
					continue
				}
				if i+1 < len(prod.rhs) {
					add(sym, firstOf(firsts, prod.rhs[i+1]))
				} else {
					add(sym, follow[prod.lhs])
				}
			}
		}
	}
	return follow
}

func sortedTerminals(set map[symbol]bool) []TokenType {
	var out []TokenType
	for sym := range set {
		out = append(out, TokenType(sym))
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}
