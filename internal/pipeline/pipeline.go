package pipeline

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/kevin-cantwell/sqlfront/internal/ast"
	"github.com/kevin-cantwell/sqlfront/internal/logger"
	"github.com/kevin-cantwell/sqlfront/internal/schema"
	"github.com/kevin-cantwell/sqlfront/internal/semantic"
)

var log = logger.Get("pipeline")

// DefaultSnippetSpan is how many bytes of context a snippet shows on each
// side of an error.
const DefaultSnippetSpan = 30

// Pipeline runs the lexical, syntactic and semantic phases over a query. It
// holds no per-query state, so one Pipeline may serve concurrent callers as
// long as its schema source is safe for concurrent use.
type Pipeline struct {
	src       schema.Source
	stopAfter Phase
	span      int
}

type Option func(*Pipeline)

// WithStopAfter ends every run after phase p.
func WithStopAfter(p Phase) Option {
	return func(pl *Pipeline) {
		pl.stopAfter = p
	}
}

// WithSnippetSpan sets the snippet context width.
func WithSnippetSpan(n int) Option {
	return func(pl *Pipeline) {
		pl.span = n
	}
}

// New returns a pipeline checking queries against the schemas src yields. A
// nil src means the built-in schema.
func New(src schema.Source, opts ...Option) *Pipeline {
	if src == nil {
		src = schema.Static(schema.Default())
	}
	p := &Pipeline{
		src:       src,
		stopAfter: Semantic,
		span:      DefaultSnippetSpan,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Analyze runs the phases in order and stops at the first phase that cannot
// hand a complete artifact to the next one.
func (p *Pipeline) Analyze(query string) *Result {
	res := &Result{Query: query}
	input, ok := p.lex(res)
	if !ok || p.stopAfter == Lexical {
		return res
	}
	if !p.parse(res, input) || p.stopAfter == Syntactic {
		return res
	}
	p.analyze(res)
	return res
}

// lex fills the lexical artifacts of res and returns the parser input.
func (p *Pipeline) lex(res *Result) ([]ast.Token, bool) {
	res.Phase = Lexical
	tokens, err := ast.Tokenize(res.Query)
	res.Tokens = tokens
	res.Metrics.Tokens = len(tokens)
	log.Debugf("lexical: %d tokens", len(tokens))

	if err != nil {
		var lexErr *ast.LexError
		if !errors.As(err, &lexErr) {
			res.addError(Diagnostic{Phase: Lexical, Kind: "LexError", Message: err.Error()})
			return nil, false
		}
		log.Debugf("lexical: %v", lexErr)
		res.addError(Diagnostic{
			Phase:   Lexical,
			Kind:    "LexError",
			Message: lexErr.Msg,
			Line:    lexErr.Pos.Line,
			Column:  lexErr.Pos.Column,
		})
		res.Snippet = ast.Snippet(res.Query, lexErr.Pos.Offset, p.span)
		res.addHints(lexicalHint(lexErr.Char))
		if len(tokens) == 0 {
			return nil, false
		}
		// Continue with what was recognized; the parser reports the bad
		// character as an ILLEGAL token where it sits.
		return append(tokens[:len(tokens):len(tokens)], lexErr.Token()), true
	}
	if len(tokens) == 0 {
		res.addError(Diagnostic{Phase: Lexical, Kind: "Empty", Message: "no tokens produced; the query is empty"})
		res.addHints(hintEmpty)
		return nil, false
	}
	return tokens, true
}

func (p *Pipeline) parse(res *Result, input []ast.Token) bool {
	res.Phase = Syntactic
	sel, err := ast.Parse(input)
	if err != nil {
		var synErr *ast.SyntaxError
		if !errors.As(err, &synErr) {
			res.addError(Diagnostic{Phase: Syntactic, Kind: "SyntaxError", Message: err.Error()})
			return false
		}
		log.Debugf("syntactic: %v (state %d)", synErr, synErr.State)
		res.addError(Diagnostic{
			Phase:   Syntactic,
			Kind:    "SyntaxError",
			Message: synErr.Error(),
			Line:    synErr.Token.Line,
			Column:  synErr.Token.Pos,
		})
		if res.Snippet == "" {
			res.Snippet = synErr.Context(res.Query, p.span)
		}
		res.addHints(SyntaxHints(synErr)...)
		return false
	}
	res.AST = sel
	res.ASTText = ast.Dump(sel)
	res.SQL = ast.Format(sel)
	res.Metrics.ASTNodes = ast.CountNodes(sel)
	log.Debugf("syntactic: %d AST nodes", res.Metrics.ASTNodes)
	return true
}

func (p *Pipeline) analyze(res *Result) {
	res.Phase = Semantic
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("semantic: analyzer panic: %v", r)
			res.addError(Diagnostic{
				Phase:   Semantic,
				Kind:    "Internal",
				Message: fmt.Sprintf("semantic analysis failed: %v", r),
			})
		}
	}()

	sch, err := p.src.Schema()
	if err != nil {
		log.Warningf("semantic: %v", err)
		res.addError(Diagnostic{Phase: Semantic, Kind: "Schema", Message: err.Error()})
		return
	}
	symbols, types, errs := semantic.Analyze(res.AST, sch)
	res.Symbols = symbols
	res.Types = types
	res.Metrics.Symbols = len(symbols)
	for _, err := range errs {
		d := Diagnostic{Phase: Semantic, Kind: "SemanticError", Message: err.Error()}
		if semErr, ok := err.(*semantic.Error); ok {
			d.Kind = semErr.Kind.String()
			d.Line = semErr.Pos.Line
			d.Column = semErr.Pos.Column
			if res.Snippet == "" && semErr.Pos.Line > 0 {
				res.Snippet = ast.Snippet(res.Query, semErr.Pos.Offset, p.span)
			}
		}
		res.addError(d)
	}
	res.addHints(SemanticHints(errs, sch)...)
	log.Debugf("semantic: %d symbols, %d errors", len(symbols), len(errs))
}
