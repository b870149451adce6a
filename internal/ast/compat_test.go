package ast_test

import (
	"testing"

	aftership "github.com/AfterShip/clickhouse-sql-parser/parser"

	"github.com/kevin-cantwell/sqlfront/internal/ast"
)

// Every query the front-end accepts must also be accepted, after formatting,
// by an independent SQL parser.
func TestFormattedQueriesParseElsewhere(t *testing.T) {
	queries := []string{
		"SELECT * FROM students",
		"SELECT id, name FROM students;",
		"SELECT name AS estudiante, gpa AS promedio FROM students WHERE gpa > 4.0",
		"SELECT title FROM courses WHERE credits >= 3 AND (title = 'Algebra' OR title <> 'Physics')",
		"SELECT student_id FROM enrollments WHERE grade < 3.5 OR grade = 5 AND course_id != 2",
	}
	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			sel, err := ast.ParseString(q)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}
			formatted := ast.Format(sel)
			stmts, err := aftership.NewParser(formatted).ParseStmts()
			if err != nil {
				t.Fatalf("%q rejected: %v", formatted, err)
			}
			if len(stmts) != 1 {
				t.Errorf("expected 1 statement, got %d", len(stmts))
			}
		})
	}
}
