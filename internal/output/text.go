package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/kevin-cantwell/sqlfront/internal/ast"
	"github.com/kevin-cantwell/sqlfront/internal/pipeline"
	"github.com/kevin-cantwell/sqlfront/internal/schema"
)

// TextRenderer writes human-readable reports. Rows written with WriteRow are
// buffered and rendered as one table on Flush.
type TextRenderer struct {
	w     io.Writer
	color bool

	header []string
	rows   [][]string
}

func NewTextRenderer(w io.Writer, colored bool) *TextRenderer {
	return &TextRenderer{w: w, color: colored}
}

func (tr *TextRenderer) paint(attr color.Attribute, s string) string {
	if !tr.color {
		return s
	}
	c := color.New(attr)
	c.EnableColor()
	return c.SprintFunc()(s)
}

func (tr *TextRenderer) section(title string) {
	fmt.Fprintf(tr.w, "\n%s\n", tr.paint(color.FgHiCyan, "== "+title+" =="))
}

func (tr *TextRenderer) table(header []string, rows [][]string) {
	table := tablewriter.NewWriter(tr.w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.AppendBulk(rows)
	table.Render()
}

// WriteResult renders each artifact res carries, followed by its errors,
// hints and metrics.
func (tr *TextRenderer) WriteResult(res *pipeline.Result) error {
	fmt.Fprintf(tr.w, "Query: %s\n", res.Query)

	if len(res.Tokens) > 0 {
		tr.Tokens(res.Tokens)
	}
	if res.AST != nil {
		tr.section("Syntax tree")
		fmt.Fprintln(tr.w, res.ASTText)
		fmt.Fprintf(tr.w, "\nSQL: %s\n", res.SQL)
	}
	if len(res.Symbols) > 0 {
		tr.section("Symbol table")
		rows := make([][]string, 0, len(res.Symbols))
		for _, sym := range res.Symbols {
			rows = append(rows, []string{
				sym.Name, sym.Type, sym.Scope, sym.Kind.String(),
				strconv.Itoa(sym.Size), strconv.Itoa(sym.Offset),
			})
		}
		tr.table([]string{"Name", "Type", "Scope", "Kind", "Size", "Offset"}, rows)
	}
	if len(res.Types) > 0 {
		tr.section("Type table")
		rows := make([][]string, 0, len(res.Types))
		for _, row := range res.Types {
			rows = append(rows, []string{
				row.Name, row.Type, strconv.Itoa(row.Size), row.Table, row.Scope, row.Alias,
			})
		}
		tr.table([]string{"Name", "Type", "Size", "Table", "Scope", "Alias"}, rows)
	}

	if len(res.Errors) > 0 {
		tr.section("Errors")
		for _, d := range res.Errors {
			fmt.Fprintln(tr.w, tr.paint(color.FgHiRed, d.String()))
		}
		if res.Snippet != "" {
			fmt.Fprintf(tr.w, "\n%s\n", res.Snippet)
		}
	}
	if len(res.Hints) > 0 {
		tr.section("Hints")
		for _, h := range res.Hints {
			fmt.Fprintln(tr.w, tr.paint(color.FgHiYellow, "- "+h))
		}
		if len(res.Errors) > 0 {
			good, bad := pipeline.Examples(res.Phase)
			fmt.Fprintf(tr.w, "\nCorrect:   %s\nIncorrect: %s\n", tr.paint(color.FgHiGreen, good), bad)
		}
	}

	tr.section("Summary")
	fmt.Fprintf(tr.w, "Phase: %s\nTokens: %d  AST nodes: %d  Symbols: %d\n",
		res.Phase, res.Metrics.Tokens, res.Metrics.ASTNodes, res.Metrics.Symbols)
	status := tr.paint(color.FgHiGreen, res.Summary())
	if !res.OK() && len(res.Errors) > 0 {
		status = tr.paint(color.FgHiRed, res.Summary())
	}
	fmt.Fprintln(tr.w, status)
	return nil
}

// Tokens renders a token table.
func (tr *TextRenderer) Tokens(tokens []ast.Token) {
	tr.section("Tokens")
	rows := make([][]string, 0, len(tokens))
	for i, tok := range tokens {
		rows = append(rows, []string{
			strconv.Itoa(i + 1), tok.Type.String(), tok.Category(), tok.Raw,
			strconv.Itoa(tok.Line), strconv.Itoa(tok.Pos),
		})
	}
	tr.table([]string{"#", "Type", "Category", "Lexeme", "Line", "Column"}, rows)
}

// Schema renders the tables and columns of sch.
func (tr *TextRenderer) Schema(sch *schema.Schema) {
	for _, t := range sch.Tables {
		tr.section(fmt.Sprintf("Table %q (%d bytes per row)", t.Name, t.RowSize()))
		rows := make([][]string, 0, len(t.Columns))
		for _, c := range t.Columns {
			rows = append(rows, []string{c.Name, strings.ToUpper(c.Type), strconv.Itoa(c.Size), strconv.Itoa(t.Offset(c.Name))})
		}
		tr.table([]string{"Column", "Type", "Size", "Offset"}, rows)
	}
}

func (tr *TextRenderer) WriteHeader(cols []string) error {
	tr.header = cols
	return nil
}

func (tr *TextRenderer) WriteRow(cols []string, vals []interface{}) error {
	tr.header = cols
	row := make([]string, len(vals))
	for i, v := range vals {
		if v == nil {
			row[i] = "NULL"
			continue
		}
		row[i] = fmt.Sprint(v)
	}
	tr.rows = append(tr.rows, row)
	return nil
}

// Flush renders the buffered rows and a row count.
func (tr *TextRenderer) Flush() error {
	if tr.header != nil {
		tr.table(tr.header, tr.rows)
	}
	_, err := fmt.Fprintf(tr.w, "(%d rows)\n", len(tr.rows))
	tr.header, tr.rows = nil, nil
	return err
}
