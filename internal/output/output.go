package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/kevin-cantwell/sqlfront/internal/ast"
	"github.com/kevin-cantwell/sqlfront/internal/engine"
	"github.com/kevin-cantwell/sqlfront/internal/pipeline"
)

// Writer writes query results.
type Writer interface {
	WriteResult(res *pipeline.Result) error
	WriteHeader(cols []string) error
	WriteRow(cols []string, vals []interface{}) error
	Flush() error
}

// WriteRows sends the columns and every row of rows to w.
func WriteRows(w Writer, rows *engine.Rows) error {
	if err := w.WriteHeader(rows.Columns); err != nil {
		return err
	}
	for _, vals := range rows.Values {
		if err := w.WriteRow(rows.Columns, vals); err != nil {
			return err
		}
	}
	return w.Flush()
}

var tokenColumns = []string{"type", "category", "lexeme", "line", "column"}

// WriteTokens writes one row per token.
func WriteTokens(w Writer, tokens []ast.Token) error {
	if err := w.WriteHeader(tokenColumns); err != nil {
		return err
	}
	for _, tok := range tokens {
		vals := []interface{}{tok.Type.String(), tok.Category(), tok.Raw, tok.Line, tok.Pos}
		if err := w.WriteRow(tokenColumns, vals); err != nil {
			return err
		}
	}
	return w.Flush()
}

// JSONWriter writes JSON lines to an io.Writer.
type JSONWriter struct {
	w io.Writer
}

func NewJSONWriter(w io.Writer) *JSONWriter {
	return &JSONWriter{w: w}
}

// WriteResult writes the whole analysis as a single line.
func (jw *JSONWriter) WriteResult(res *pipeline.Result) error {
	b, err := json.Marshal(res)
	if err != nil {
		return errors.Wrap(err, "encode result")
	}
	_, err = fmt.Fprintln(jw.w, string(b))
	return err
}

// WriteHeader is a no-op; every JSON line carries its own keys.
func (jw *JSONWriter) WriteHeader(cols []string) error {
	return nil
}

func (jw *JSONWriter) WriteRow(cols []string, vals []interface{}) error {
	rec := make(map[string]interface{}, len(cols))
	for i, col := range cols {
		rec[col] = vals[i]
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "encode row")
	}
	_, err = fmt.Fprintln(jw.w, string(b))
	return err
}

func (jw *JSONWriter) Flush() error {
	return nil
}
