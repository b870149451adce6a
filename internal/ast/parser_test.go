package ast

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestParseBasicSelect(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(*testing.T, *Select)
	}{
		{
			name:  "select star",
			input: "SELECT * FROM students",
			check: func(t *testing.T, sel *Select) {
				if _, ok := sel.Columns.(*Wildcard); !ok {
					t.Errorf("expected wildcard, got %T", sel.Columns)
				}
				if sel.Table == nil || sel.Table.Name.Name != "students" {
					t.Errorf("expected FROM students, got %+v", sel.Table)
				}
				if sel.Where != nil {
					t.Errorf("expected no WHERE, got %+v", sel.Where)
				}
			},
		},
		{
			name:  "select columns with trailing semicolon",
			input: "SELECT id, name FROM students;",
			check: func(t *testing.T, sel *Select) {
				cols, ok := sel.Columns.(*Columns)
				if !ok || len(cols.List) != 2 {
					t.Fatalf("expected 2 columns, got %+v", sel.Columns)
				}
				if cols.List[0].Name.Name != "id" || cols.List[1].Name.Name != "name" {
					t.Errorf("unexpected column order: %s, %s", cols.List[0].Name.Name, cols.List[1].Name.Name)
				}
			},
		},
		{
			name:  "aliases and where",
			input: "SELECT name AS estudiante, gpa AS promedio FROM students WHERE gpa > 4.0",
			check: func(t *testing.T, sel *Select) {
				cols := sel.Columns.(*Columns)
				if len(cols.List) != 2 {
					t.Fatalf("expected 2 columns, got %d", len(cols.List))
				}
				for i, alias := range []string{"estudiante", "promedio"} {
					if cols.List[i].Alias == nil || cols.List[i].Alias.Name != alias {
						t.Errorf("column %d: expected alias %q, got %+v", i, alias, cols.List[i].Alias)
					}
				}
				cmp, ok := sel.Where.Expr.(*Compare)
				if !ok {
					t.Fatalf("expected comparison, got %T", sel.Where.Expr)
				}
				if cmp.Op != GT {
					t.Errorf("expected >, got %s", cmp.Op)
				}
				if left, ok := cmp.Left.(*Ident); !ok || left.Name != "gpa" {
					t.Errorf("expected left ident gpa, got %+v", cmp.Left)
				}
				if right, ok := cmp.Right.(*Number); !ok || right.Literal != "4.0" {
					t.Errorf("expected right number 4.0, got %+v", cmp.Right)
				}
			},
		},
		{
			name:  "string literal comparison",
			input: "select name from students where name = 'Ana'",
			check: func(t *testing.T, sel *Select) {
				cmp := sel.Where.Expr.(*Compare)
				if s, ok := cmp.Right.(*String); !ok || s.Literal != "'Ana'" {
					t.Errorf("expected string literal 'Ana', got %+v", cmp.Right)
				}
			},
		},
		{
			name:  "literal on both sides",
			input: "SELECT id FROM t WHERE 1 <> 2;",
			check: func(t *testing.T, sel *Select) {
				cmp := sel.Where.Expr.(*Compare)
				if cmp.Op != NEQ {
					t.Errorf("expected NEQ, got %s", cmp.Op)
				}
				if cmp.OpPos.Column != 26 {
					t.Errorf("expected operator at column 26, got %d", cmp.OpPos.Column)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := ParseString(tt.input)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}
			tt.check(t, sel)
		})
	}
}

func TestParsePrecedence(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"a = 1 OR b = 2 AND c = 3", "Or(a, And(b, c))"},
		{"a = 1 AND b = 2 OR c = 3", "Or(And(a, b), c)"},
		{"a = 1 OR b = 2 OR c = 3", "Or(Or(a, b), c)"},
		{"a = 1 AND b = 2 AND c = 3", "And(And(a, b), c)"},
		{"(a = 1 OR b = 2) AND c = 3", "And(Parens(Or(a, b)), c)"},
		{"((a = 1))", "Parens(Parens(a))"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			sel, err := ParseString("SELECT * FROM t WHERE " + tt.input)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}
			if got := shape(sel.Where.Expr); got != tt.want {
				t.Errorf("want %s, got %s", tt.want, got)
			}
		})
	}
}

// shape renders a boolean expression naming each comparison by its left
// identifier.
func shape(e BoolExpr) string {
	switch e := e.(type) {
	case *Or:
		return "Or(" + shape(e.Left) + ", " + shape(e.Right) + ")"
	case *And:
		return "And(" + shape(e.Left) + ", " + shape(e.Right) + ")"
	case *Parens:
		return "Parens(" + shape(e.Expr) + ")"
	case *Compare:
		return e.Left.(*Ident).Name
	}
	return "?"
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		token    TokenType
		raw      string
		column   int
		expected []TokenType
	}{
		{
			name:     "missing FROM",
			input:    "SELECT id, name students;",
			token:    IDENT,
			raw:      "students",
			column:   17,
			expected: []TokenType{COMMA, FROM, AS},
		},
		{
			name:     "missing column list",
			input:    "SELECT FROM students",
			token:    FROM,
			raw:      "FROM",
			column:   8,
			expected: []TokenType{STAR, IDENT},
		},
		{
			name:     "missing table",
			input:    "SELECT * FROM",
			token:    EOF,
			column:   14,
			expected: []TokenType{IDENT},
		},
		{
			name:     "empty where",
			input:    "SELECT * FROM t WHERE",
			token:    EOF,
			column:   22,
			expected: []TokenType{LPAREN, NUMBER, STRING, IDENT},
		},
		{
			name:     "missing right operand",
			input:    "SELECT * FROM t WHERE a >",
			token:    EOF,
			column:   26,
			expected: []TokenType{NUMBER, STRING, IDENT},
		},
		{
			name:     "trailing input",
			input:    "SELECT * FROM t extra",
			token:    IDENT,
			raw:      "extra",
			column:   17,
			expected: []TokenType{EOF, SEMI, WHERE},
		},
		{
			name:     "second statement",
			input:    "SELECT * FROM t;;",
			token:    SEMI,
			raw:      ";",
			column:   17,
			expected: []TokenType{EOF},
		},
		{
			name:     "unclosed paren",
			input:    "SELECT * FROM t WHERE (a = 1",
			token:    EOF,
			column:   29,
			expected: []TokenType{RPAREN, OR},
		},
		{
			name:     "comparison without operator",
			input:    "SELECT * FROM t WHERE a 1",
			token:    NUMBER,
			raw:      "1",
			column:   25,
			expected: []TokenType{EOF, RPAREN, SEMI, EQ, NEQ, LT, LTE, GT, GTE, AND, OR},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := ParseString(tt.input)
			if sel != nil {
				t.Errorf("expected no tree, got %+v", sel)
			}
			var synErr *SyntaxError
			if !errors.As(err, &synErr) {
				t.Fatalf("expected *SyntaxError, got %v", err)
			}
			if synErr.Token.Type != tt.token || synErr.Token.Raw != tt.raw {
				t.Errorf("want token %s %q, got %s %q", tt.token, tt.raw, synErr.Token.Type, synErr.Token.Raw)
			}
			if synErr.Token.Pos != tt.column {
				t.Errorf("want column %d, got %d", tt.column, synErr.Token.Pos)
			}
			if !reflect.DeepEqual(synErr.Expected, tt.expected) {
				t.Errorf("want expected set %v, got %v", tt.expected, synErr.Expected)
			}
		})
	}
}

func TestParseErrorMessage(t *testing.T) {
	_, err := ParseString("SELECT id, name students;")
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	for _, want := range []string{`"students"`, "line 1 position 17", "FROM"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q does not mention %q", msg, want)
		}
	}
	var synErr *SyntaxError
	if errors.As(err, &synErr) && !synErr.Expects(FROM) {
		t.Errorf("expected FROM in %v", synErr.Expected)
	}

	_, err = ParseString("SELECT * FROM")
	if err == nil || !strings.Contains(err.Error(), "unexpected end of input") {
		t.Errorf("expected end of input message, got %v", err)
	}
}

func TestParseIllegalToken(t *testing.T) {
	input := "SELECT id @ FROM students"
	tokens, err := Tokenize(input)
	var lexErr *LexError
	if !errors.As(err, &lexErr) {
		t.Fatalf("expected lexical error, got %v", err)
	}
	_, err = Parse(append(tokens, lexErr.Token()))
	var synErr *SyntaxError
	if !errors.As(err, &synErr) {
		t.Fatalf("expected syntax error, got %v", err)
	}
	if synErr.Token.Type != ILLEGAL || synErr.Token.Pos != 11 {
		t.Errorf("expected ILLEGAL at column 11, got %s at %d", synErr.Token.Type, synErr.Token.Pos)
	}
	if !strings.Contains(synErr.Error(), "unexpected character") {
		t.Errorf("unexpected message %q", synErr.Error())
	}
}

func TestParseEmpty(t *testing.T) {
	_, err := Parse(nil)
	var synErr *SyntaxError
	if !errors.As(err, &synErr) {
		t.Fatalf("expected syntax error, got %v", err)
	}
	if synErr.Token.Type != EOF || synErr.Token.Line != 1 || synErr.Token.Pos != 1 {
		t.Errorf("expected EOF at 1:1, got %+v", synErr.Token)
	}
	if !reflect.DeepEqual(synErr.Expected, []TokenType{SELECT}) {
		t.Errorf("expected only SELECT, got %v", synErr.Expected)
	}
}

func TestParseLexErrorPassthrough(t *testing.T) {
	_, err := ParseString("SELECT 'abc")
	var lexErr *LexError
	if !errors.As(err, &lexErr) {
		t.Fatalf("expected *LexError, got %v", err)
	}
}

func TestParserReuse(t *testing.T) {
	tokens, err := Tokenize("SELECT a, b FROM t WHERE a = 1 AND (b = 2 OR b = 3)")
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}
	p := NewParser(tokens)
	first, err := p.Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := p.Parse()
		if err != nil {
			t.Fatalf("parse %d: %v", i, err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("parse %d produced a different tree", i)
		}
	}
}

func TestGrammarHasNoConflicts(t *testing.T) {
	tbl, conflicts := buildTables()
	if len(conflicts) > 0 {
		t.Fatalf("conflicts:\n%s", strings.Join(conflicts, "\n"))
	}
	if len(tbl.states) != len(tbl.actions) || len(tbl.states) != len(tbl.gotos) {
		t.Errorf("table size mismatch: %d states, %d action rows, %d goto rows", len(tbl.states), len(tbl.actions), len(tbl.gotos))
	}
	for _, prod := range grammar {
		if len(prod.rhs) == 0 {
			t.Errorf("empty production %s", prod)
		}
	}
}

func TestDump(t *testing.T) {
	sel, err := ParseString("SELECT name AS n FROM t WHERE a = 1")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	want := strings.Join([]string{
		"SELECT",
		"  COLUMN_LIST",
		"    COLUMN",
		"      IDENT: name",
		"      ALIAS: n",
		"  TABLE",
		"    IDENT: t",
		"  WHERE_CLAUSE",
		"    COMPARE =",
		"      IDENT: a",
		"      NUMBER: 1",
	}, "\n")
	if got := Dump(sel); got != want {
		t.Errorf("want:\n%s\ngot:\n%s", want, got)
	}
	if n := CountNodes(sel); n != 11 {
		t.Errorf("expected 11 nodes, got %d", n)
	}
}

func TestDumpPartialTree(t *testing.T) {
	sel := &Select{Table: &Table{Name: &Ident{Name: "students"}}}
	want := "SELECT\n  TABLE\n    IDENT: students"
	if got := Dump(sel); got != want {
		t.Errorf("want:\n%s\ngot:\n%s", want, got)
	}
	if n := CountNodes(sel); n != 3 {
		t.Errorf("expected 3 nodes, got %d", n)
	}
	if n := CountNodes(&Select{}); n != 1 {
		t.Errorf("expected 1 node for an empty select, got %d", n)
	}
}

func TestWalkSkipsChildren(t *testing.T) {
	sel, err := ParseString("SELECT * FROM t WHERE (a = 1 OR b = 2) AND c = 3")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	var idents []string
	Walk(sel, func(n Node) bool {
		if _, ok := n.(*Parens); ok {
			return false
		}
		if id, ok := n.(*Ident); ok {
			idents = append(idents, id.Name)
		}
		return true
	})
	if want := []string{"t", "c"}; !reflect.DeepEqual(idents, want) {
		t.Errorf("want %v, got %v", want, idents)
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"select * from students;", "SELECT * FROM students"},
		{
			"select name as n from t where (a = 1 or b <> 'x') and c >= 2;",
			"SELECT name AS n FROM t WHERE (a = 1 OR b != 'x') AND c >= 2",
		},
		{"SELECT a,b FROM t WHERE a=-1.5e3", "SELECT a, b FROM t WHERE a = -1.5e3"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			sel, err := ParseString(tt.input)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}
			got := Format(sel)
			if got != tt.want {
				t.Fatalf("want %q, got %q", tt.want, got)
			}
			again, err := ParseString(got)
			if err != nil {
				t.Fatalf("formatted query does not parse: %v", err)
			}
			if Format(again) != got {
				t.Errorf("format is not stable: %q", Format(again))
			}
		})
	}
}

func TestSnippet(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		offset int
		span   int
		want   string
	}{
		{"middle", "SELECT id, name students;", 16, 5, "name stude\n     ^"},
		{"offset past end", "abc", 100, 3, "abc\n   ^"},
		{"negative offset", "abc", -5, 1, "a\n^"},
		{"empty source", "", 0, 10, "\n^"},
		{"second line", "SELECT *\nFROM x", 9, 20, "FROM x\n^"},
		{"first line", "SELECT *\nFROM x", 7, 20, "SELECT *\n       ^"},
		{"rune boundary", "SELECT 'María' x", 13, 1, "ía\n ^"},
		{"tabs", "a\tb", 2, 5, "a b\n  ^"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Snippet(tt.src, tt.offset, tt.span); got != tt.want {
				t.Errorf("want %q, got %q", tt.want, got)
			}
		})
	}
}
