package pipeline

import (
	"reflect"
	"testing"

	"github.com/kevin-cantwell/sqlfront/internal/ast"
	"github.com/kevin-cantwell/sqlfront/internal/schema"
	"github.com/kevin-cantwell/sqlfront/internal/semantic"
)

func TestCloseMatches(t *testing.T) {
	tests := []struct {
		word       string
		candidates []string
		want       []string
	}{
		{"FORM", []string{"FROM", "AS"}, []string{"FROM"}},
		{"nmae", []string{"id", "name", "age", "gpa"}, []string{"name", "age"}},
		{"studnets", []string{"students", "courses", "enrollments"}, []string{"students"}},
		{"xyz", []string{"id", "name"}, nil},
		{"aaaa", []string{"aaab", "aaac", "aaad", "aaae"}, []string{"aaab", "aaac", "aaad"}},
		{"gpa", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			if got := CloseMatches(tt.word, tt.candidates); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("want %v, got %v", tt.want, got)
			}
		})
	}
}

func TestSyntaxHints(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{"SELECT id, name students", []string{hintFrom, hintComma, hintAlias}},
		{"SELECT * FROM t WHERE (a = 1", []string{hintParens}},
		{"SELECT * FROM t WHERE a", []string{hintComparison}},
		{"SELECT * FROM", nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			_, err := ast.ParseString(tt.query)
			synErr, ok := err.(*ast.SyntaxError)
			if !ok {
				t.Fatalf("expected syntax error, got %v", err)
			}
			if got := SyntaxHints(synErr); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("want %q, got %q", tt.want, got)
			}
		})
	}
}

func TestSemanticHints(t *testing.T) {
	sch := schema.Default()
	errs := []error{
		&semantic.Error{Kind: semantic.TableNotFound, Name: "course"},
		&semantic.Error{Kind: semantic.ColumnNotFoundInWhere, Name: "titel", Table: "courses"},
		&semantic.Error{Kind: semantic.ColumnNotFoundInSelect, Name: "x", Table: "missing"},
	}
	want := []string{
		"Did you mean: courses?",
		"Table not found. Available tables: students, courses, enrollments",
		"Did you mean: title?",
	}
	if got := SemanticHints(errs, sch); !reflect.DeepEqual(got, want) {
		t.Errorf("want %q, got %q", want, got)
	}
}

func TestExamples(t *testing.T) {
	for _, p := range Phases {
		good, bad := Examples(p)
		if _, err := ast.ParseString(good); err != nil {
			t.Errorf("%s: example does not parse: %v", p, err)
		}
		if good == bad {
			t.Errorf("%s: counterexample equals example", p)
		}
	}
}
