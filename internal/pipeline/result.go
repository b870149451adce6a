package pipeline

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/kevin-cantwell/sqlfront/internal/ast"
	"github.com/kevin-cantwell/sqlfront/internal/semantic"
)

// Phase names a compiler phase.
type Phase string

const (
	Lexical   Phase = "lexical"
	Syntactic Phase = "syntactic"
	Semantic  Phase = "semantic"
)

// Phases lists the phases in the order they run.
var Phases = []Phase{Lexical, Syntactic, Semantic}

func (p Phase) rank() int {
	for i, ph := range Phases {
		if ph == p {
			return i
		}
	}
	return -1
}

// ParsePhase accepts a phase name.
func ParsePhase(s string) (Phase, error) {
	p := Phase(s)
	if p.rank() < 0 {
		return "", errors.Errorf("unknown phase %q (want lexical, syntactic or semantic)", s)
	}
	return p, nil
}

// Diagnostic is an error found by one phase. Line and Column are 1-based and
// zero when the error has no position.
type Diagnostic struct {
	Phase   Phase  `json:"phase"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

func (d Diagnostic) String() string {
	kind := ""
	if d.Kind != "" {
		kind = " [" + d.Kind + "]"
	}
	if d.Line > 0 {
		return fmt.Sprintf("%s error%s at line %d, column %d: %s", d.Phase, kind, d.Line, d.Column, d.Message)
	}
	return fmt.Sprintf("%s error%s: %s", d.Phase, kind, d.Message)
}

type Metrics struct {
	Tokens   int `json:"tokens"`
	ASTNodes int `json:"ast_nodes"`
	Symbols  int `json:"symbols"`
}

// Result holds every artifact one analysis produced. Fields of phases that
// did not run are empty.
type Result struct {
	Query   string             `json:"query"`
	Tokens  []ast.Token        `json:"tokens"`
	AST     *ast.Select        `json:"-"`
	ASTText string             `json:"ast,omitempty"`
	SQL     string             `json:"sql,omitempty"`
	Symbols semantic.Symbols   `json:"symbols"`
	Types   []semantic.TypeRow `json:"types"`
	Errors  []Diagnostic       `json:"errors"`
	Hints   []string           `json:"hints"`
	Snippet string             `json:"snippet,omitempty"`
	// Phase is the last phase that ran.
	Phase   Phase   `json:"phase"`
	Metrics Metrics `json:"metrics"`
}

// OK reports whether all three phases ran without errors.
func (r *Result) OK() bool {
	return r.Phase == Semantic && len(r.Errors) == 0
}

// Failed reports whether the given phase produced an error.
func (r *Result) Failed(p Phase) bool {
	for _, d := range r.Errors {
		if d.Phase == p {
			return true
		}
	}
	return false
}

// Summary is a one-paragraph account of how far the query got.
func (r *Result) Summary() string {
	switch {
	case r.OK():
		return fmt.Sprintf(
			"The query passed all three phases: %d tokens, an AST of %d nodes and %d symbols resolved against the schema.",
			r.Metrics.Tokens, r.Metrics.ASTNodes, r.Metrics.Symbols)
	case len(r.Errors) == 0:
		return fmt.Sprintf("Analysis stopped after the %s phase with no errors so far.", r.Phase)
	default:
		return fmt.Sprintf("Analysis stopped in the %s phase with %d error(s); fix the first one and run again.",
			r.Phase, len(r.Errors))
	}
}

func (r *Result) addError(d Diagnostic) {
	r.Errors = append(r.Errors, d)
}

func (r *Result) addHints(hints ...string) {
	for _, h := range hints {
		if !contains(r.Hints, h) {
			r.Hints = append(r.Hints, h)
		}
	}
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
