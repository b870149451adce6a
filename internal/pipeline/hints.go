package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/kevin-cantwell/sqlfront/internal/ast"
	"github.com/kevin-cantwell/sqlfront/internal/schema"
	"github.com/kevin-cantwell/sqlfront/internal/semantic"
)

const (
	maxCloseMatches = 3
	closeMatchRatio = 0.5
)

const (
	hintFrom       = "Add the FROM clause: FROM <table>"
	hintComma      = "A comma may be missing between columns, e.g. SELECT col1, col2"
	hintAlias      = "To alias a column use AS: SELECT col AS alias"
	hintParens     = "Check that the parentheses in the WHERE expression are balanced"
	hintComparison = "A comparison operator is missing: =, !=, <>, <, <=, >, >="
	hintIllegal    = "Remove the invalid character; strings go in single quotes and identifiers use letters, digits and _"
	hintUnclosed   = "Close the string literal with a single quote: 'text'"
	hintEmpty      = "Write a query such as SELECT id, name FROM students"
)

// lexicalHint returns the hint for a character the lexer rejected.
func lexicalHint(char string) string {
	if char == "'" {
		return hintUnclosed
	}
	return hintIllegal
}

// expectedHints maps a terminal the parser expected to the hint shown for it.
// Entries are checked in order.
var expectedHints = []struct {
	tokens []ast.TokenType
	hint   string
}{
	{[]ast.TokenType{ast.FROM}, hintFrom},
	{[]ast.TokenType{ast.COMMA}, hintComma},
	{[]ast.TokenType{ast.AS}, hintAlias},
	{[]ast.TokenType{ast.LPAREN, ast.RPAREN}, hintParens},
	{[]ast.TokenType{ast.EQ, ast.NEQ, ast.LT, ast.LTE, ast.GT, ast.GTE}, hintComparison},
}

// SyntaxHints returns the hints for a syntax error.
func SyntaxHints(err *ast.SyntaxError) []string {
	var hints []string
	if err.Token.Type == ast.ILLEGAL {
		hints = append(hints, lexicalHint(err.Token.Raw))
	}
	for _, eh := range expectedHints {
		for _, tt := range eh.tokens {
			if err.Expects(tt) {
				hints = append(hints, eh.hint)
				break
			}
		}
	}
	if err.Token.Type == ast.IDENT {
		var keywords []string
		for _, tt := range err.Expected {
			if tt.IsKeyword() {
				keywords = append(keywords, tt.String())
			}
		}
		if m := CloseMatches(strings.ToUpper(err.Token.Raw), keywords); len(m) > 0 {
			hints = append(hints, fmt.Sprintf("%q is not a keyword; did you mean %s?", err.Token.Raw, strings.Join(m, " or ")))
		}
	}
	return hints
}

// SemanticHints returns suggestions for the unresolved names in errs.
func SemanticHints(errs []error, sch *schema.Schema) []string {
	var hints []string
	for _, err := range errs {
		semErr, ok := err.(*semantic.Error)
		if !ok {
			continue
		}
		switch semErr.Kind {
		case semantic.NoTable:
			hints = append(hints, hintFrom)
		case semantic.TableNotFound:
			tables := sch.TableNames()
			if m := CloseMatches(semErr.Name, tables); len(m) > 0 {
				hints = append(hints, "Did you mean: "+strings.Join(m, ", ")+"?")
			}
			hints = append(hints, "Table not found. Available tables: "+strings.Join(tables, ", "))
		case semantic.ColumnNotFoundInSelect, semantic.ColumnNotFoundInWhere:
			table, ok := sch.Lookup(semErr.Table)
			if !ok {
				continue
			}
			cols := table.ColumnNames()
			if m := CloseMatches(semErr.Name, cols); len(m) > 0 {
				hints = append(hints, "Did you mean: "+strings.Join(m, ", ")+"?")
			} else {
				hints = append(hints, "Columns available in table "+table.Name+": "+strings.Join(cols, ", "))
			}
		}
	}
	return hints
}

// CloseMatches returns up to three candidates whose similarity ratio to word
// is at least 0.5, best first. Ties keep candidate order.
func CloseMatches(word string, candidates []string) []string {
	type scored struct {
		s     string
		ratio float64
	}
	target := strings.Split(word, "")
	var matches []scored
	for _, c := range candidates {
		ratio := difflib.NewMatcher(strings.Split(c, ""), target).Ratio()
		if ratio >= closeMatchRatio {
			matches = append(matches, scored{c, ratio})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].ratio > matches[j].ratio
	})
	var out []string
	for i := 0; i < len(matches) && i < maxCloseMatches; i++ {
		out = append(out, matches[i].s)
	}
	return out
}

// Examples returns a well-formed query and a counterexample illustrating the
// mistakes typical of phase.
func Examples(phase Phase) (good, bad string) {
	switch phase {
	case Lexical:
		return "SELECT id, name FROM students", "SELECT id, name FROM students WHERE name = \"Ana\"  -- double quotes are not valid"
	case Syntactic:
		return "SELECT col1, col2 FROM table1 WHERE col1 >= 0", "SELECT col1 col2 FROM table1  -- missing comma"
	}
	return "SELECT id, name FROM students WHERE age > 18", "SELECT id, apellido FROM students  -- 'apellido' does not exist"
}
