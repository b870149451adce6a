package engine

import (
	"testing"

	"github.com/kevin-cantwell/sqlfront/internal/ast"
)

func TestToSQL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "wildcard",
			input: "SELECT * FROM students;",
			want:  "SELECT * FROM `students`",
		},
		{
			name:  "columns and alias",
			input: "SELECT id, name AS estudiante FROM students",
			want:  "SELECT `id`, `name` AS `estudiante` FROM `students`",
		},
		{
			name:  "simple where",
			input: "SELECT name FROM students WHERE age > 25",
			want:  "SELECT `name` FROM `students` WHERE (`age` > 25)",
		},
		{
			name:  "precedence",
			input: "SELECT id FROM t WHERE a = 1 OR b <> 'x' AND c = 2",
			want:  "SELECT `id` FROM `t` WHERE ((`a` = 1) OR ((`b` != 'x') AND (`c` = 2)))",
		},
		{
			name:  "explicit grouping",
			input: "SELECT id FROM t WHERE (a = 1 OR b = 2) AND c <= -3.5",
			want:  "SELECT `id` FROM `t` WHERE (((`a` = 1) OR (`b` = 2)) AND (`c` <= -3.5))",
		},
		{
			name:  "string escapes",
			input: `SELECT id FROM t WHERE name = 'it\'s'`,
			want:  "SELECT `id` FROM `t` WHERE (`name` = 'it''s')",
		},
		{
			name:  "literal on the left",
			input: "SELECT id FROM t WHERE 18 <= age",
			want:  "SELECT `id` FROM `t` WHERE (18 <= `age`)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := ast.ParseString(tt.input)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got := ToSQL(sel); got != tt.want {
				t.Errorf("want:\n%s\ngot:\n%s", tt.want, got)
			}
		})
	}
}

func TestQuoteIdent(t *testing.T) {
	tests := map[string]string{
		"name":   "`name`",
		"*":      "*",
		"we`ird": "`we``ird`",
		`say"hi`: "`say\"hi`",
	}
	for in, want := range tests {
		if got := quoteIdent(in); got != want {
			t.Errorf("quoteIdent(%q): want %s, got %s", in, want, got)
		}
	}
}
