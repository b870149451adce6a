package engine

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/kevin-cantwell/sqlfront/internal/ast"
	"github.com/kevin-cantwell/sqlfront/internal/logger"
)

var log = logger.Get("engine")

var demoDDL = []string{
	`CREATE TABLE students (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		age INTEGER NOT NULL,
		gpa REAL
	)`,
	`CREATE TABLE courses (
		id INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		credits INTEGER NOT NULL
	)`,
	`CREATE TABLE enrollments (
		student_id INTEGER NOT NULL,
		course_id INTEGER NOT NULL,
		grade TEXT,
		FOREIGN KEY (student_id) REFERENCES students(id),
		FOREIGN KEY (course_id) REFERENCES courses(id)
	)`,
}

type demoTable struct {
	name    string
	columns []string
	rows    [][]interface{}
}

var demoData = []demoTable{
	{
		name:    "students",
		columns: []string{"id", "name", "age", "gpa"},
		rows: [][]interface{}{
			{1, "Ana Torres", 20, 3.4},
			{2, "Luis Pérez", 22, 3.8},
			{3, "María Gómez", 19, 3.1},
			{4, "Carlos Díaz", 21, 2.9},
			{5, "Laura Méndez", 23, 3.6},
		},
	},
	{
		name:    "courses",
		columns: []string{"id", "title", "credits"},
		rows: [][]interface{}{
			{10, "Compiladores", 4},
			{11, "Bases de Datos", 3},
			{12, "Redes de Computadores", 4},
		},
	},
	{
		name:    "enrollments",
		columns: []string{"student_id", "course_id", "grade"},
		rows: [][]interface{}{
			{1, 10, "A"},
			{1, 11, "B"},
			{2, 10, "A"},
			{3, 12, "C"},
			{4, 11, "B"},
		},
	},
}

// Rows is the result of a demo query.
type Rows struct {
	Columns []string
	Values  [][]interface{}
}

// Records returns each row keyed by column name.
func (r *Rows) Records() []map[string]interface{} {
	recs := make([]map[string]interface{}, 0, len(r.Values))
	for _, vals := range r.Values {
		rec := make(map[string]interface{}, len(r.Columns))
		for i, col := range r.Columns {
			rec[col] = vals[i]
		}
		recs = append(recs, rec)
	}
	return recs
}

// Demo is an in-memory database holding the sample students, courses and
// enrollments that the built-in schema describes.
type Demo struct {
	db *sql.DB
}

// OpenDemo creates and populates a fresh demo database.
func OpenDemo(ctx context.Context) (*Demo, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(-1)

	d := &Demo{db: db}
	if err := d.load(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

func (d *Demo) load(ctx context.Context) (finalErr error) {
	txn, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer func() {
		if finalErr != nil {
			_ = txn.Rollback()
		} else {
			finalErr = txn.Commit()
		}
	}()

	for _, ddl := range demoDDL {
		if _, err := txn.ExecContext(ctx, ddl); err != nil {
			return errors.Wrap(err, "create table")
		}
	}
	for _, t := range demoData {
		for _, row := range t.rows {
			if err := insertRow(ctx, txn, t.name, t.columns, row); err != nil {
				return errors.Wrapf(err, "insert into %s", t.name)
			}
		}
		log.Debugf("demo: loaded %d rows into %s", len(t.rows), t.name)
	}
	return nil
}

func insertRow(ctx context.Context, txn *sql.Tx, table string, columns []string, vals []interface{}) error {
	cols := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, col := range columns {
		cols[i] = quoteIdent(col)
		placeholders[i] = "?"
	}
	insertSQL := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table),
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "))
	_, err := txn.ExecContext(ctx, insertSQL, vals...)
	return err
}

// Query runs sel and collects its rows. sel should already have passed
// semantic analysis against the built-in schema.
func (d *Demo) Query(ctx context.Context, sel *ast.Select) (*Rows, error) {
	if sel == nil {
		return nil, errors.New("no query to run")
	}
	sqlStr := ToSQL(sel)
	log.Debugf("demo: %s", sqlStr)

	rows, err := d.db.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, errors.Wrapf(err, "query %s", sqlStr)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, "columns")
	}
	if want := selectedNames(sel); want != nil && !equalNames(want, cols) {
		return nil, errors.Errorf("query %s returned columns %v, want %v", sqlStr, cols, want)
	}
	out := &Rows{Columns: cols}
	for rows.Next() {
		vals := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errors.Wrap(err, "scan")
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		out.Values = append(out.Values, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "rows")
	}
	return out, nil
}

// selectedNames returns the result column names sel asks for, or nil for *.
func selectedNames(sel *ast.Select) []string {
	cols, ok := sel.Columns.(*ast.Columns)
	if !ok {
		return nil
	}
	names := make([]string, len(cols.List))
	for i, col := range cols.List {
		names[i] = col.Name.Name
		if col.Alias != nil {
			names[i] = col.Alias.Name
		}
	}
	return names
}

func equalNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !strings.EqualFold(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Close releases the database.
func (d *Demo) Close() error {
	return d.db.Close()
}
