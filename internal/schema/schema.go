package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
)

var (
	ErrNoTables        = errors.New("schema declares no tables")
	ErrDuplicateTable  = errors.New("table declared more than once")
	ErrDuplicateColumn = errors.New("column declared more than once")
	ErrInvalidSize     = errors.New("column size must not be negative")
)

//go:embed default.json
var defaultDocument []byte

// Schema is the set of tables queries are checked against. It is never
// modified after it has been decoded.
type Schema struct {
	// Tables in declaration order.
	Tables []*Table
}

type Table struct {
	Name string
	// Columns in declaration order.
	Columns []*Column
}

type Column struct {
	Name string
	Type string
	Size int
}

// Lookup returns the table with the given name. Names are case-sensitive.
func (s *Schema) Lookup(name string) (*Table, bool) {
	for _, t := range s.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// TableNames returns the table names in declaration order.
func (s *Schema) TableNames() []string {
	names := make([]string, len(s.Tables))
	for i, t := range s.Tables {
		names[i] = t.Name
	}
	return names
}

// Column returns the named column.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// ColumnNames returns the column names in declaration order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Offset is the sum of the sizes of the columns declared before name, or -1
// when the table has no such column.
func (t *Table) Offset(name string) int {
	offset := 0
	for _, c := range t.Columns {
		if c.Name == name {
			return offset
		}
		offset += c.Size
	}
	return -1
}

// RowSize is the sum of all column sizes.
func (t *Table) RowSize() int {
	size := 0
	for _, c := range t.Columns {
		size += c.Size
	}
	return size
}

// Default returns the built-in students/courses/enrollments schema.
func Default() *Schema {
	s, err := Parse(bytes.NewReader(defaultDocument))
	if err != nil {
		panic(errors.Wrap(err, "embedded schema"))
	}
	return s
}

// Load reads a schema document from path.
func Load(path string) (*Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open schema")
	}
	defer f.Close()
	s, err := Parse(f)
	if err != nil {
		return nil, errors.Wrapf(err, "load schema %s", path)
	}
	return s, nil
}

// Parse decodes a document of the form
//
//	{"tables": {"<table>": {"<column>": {"type": "<TYPE>", "size": <int>}}}}
//
// keeping tables and columns in the order they are written. Other top-level
// keys are ignored.
func Parse(r io.Reader) (*Schema, error) {
	dec := json.NewDecoder(r)

	s := &Schema{}
	seen := false
	err := readObject(dec, func(key string) error {
		if key != "tables" {
			var skip json.RawMessage
			return dec.Decode(&skip)
		}
		seen = true
		return readObject(dec, func(name string) error {
			if _, dup := s.Lookup(name); dup {
				return errors.Wrapf(ErrDuplicateTable, "%q", name)
			}
			t, err := readTable(dec, name)
			if err != nil {
				return err
			}
			s.Tables = append(s.Tables, t)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if !seen || len(s.Tables) == 0 {
		return nil, ErrNoTables
	}
	return s, nil
}

func readTable(dec *json.Decoder, name string) (*Table, error) {
	t := &Table{Name: name}
	err := readObject(dec, func(col string) error {
		if _, dup := t.Column(col); dup {
			return errors.Wrapf(ErrDuplicateColumn, "%s.%s", name, col)
		}
		var decl struct {
			Type string `json:"type"`
			Size int    `json:"size"`
		}
		if err := dec.Decode(&decl); err != nil {
			return errors.Wrapf(err, "column %s.%s", name, col)
		}
		if decl.Size < 0 {
			return errors.Wrapf(ErrInvalidSize, "%s.%s", name, col)
		}
		t.Columns = append(t.Columns, &Column{Name: col, Type: decl.Type, Size: decl.Size})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// readObject consumes one JSON object and calls fn for every key with the
// decoder positioned at that key's value. fn must consume the value.
func readObject(dec *json.Decoder, fn func(key string) error) error {
	tok, err := dec.Token()
	if err != nil {
		return errors.Wrap(err, "decode schema")
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.Errorf("decode schema: expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return errors.Wrap(err, "decode schema")
		}
		key, ok := tok.(string)
		if !ok {
			return errors.Errorf("decode schema: expected key, got %v", tok)
		}
		if err := fn(key); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil {
		return errors.Wrap(err, "decode schema")
	}
	return nil
}
