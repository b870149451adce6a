package semantic

import (
	"fmt"

	"github.com/kevin-cantwell/sqlfront/internal/ast"
)

type ErrorKind int

const (
	// NoTable means the query names no table at all.
	NoTable ErrorKind = iota
	TableNotFound
	ColumnNotFoundInSelect
	ColumnNotFoundInWhere
)

var errorKindNames = [...]string{
	NoTable:                "NoTable",
	TableNotFound:          "TableNotFound",
	ColumnNotFoundInSelect: "ColumnNotFoundInSelect",
	ColumnNotFoundInWhere:  "ColumnNotFoundInWhere",
}

func (k ErrorKind) String() string {
	if k >= 0 && int(k) < len(errorKindNames) {
		return errorKindNames[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Fatal reports whether analysis stops at an error of this kind.
func (k ErrorKind) Fatal() bool {
	return k == NoTable || k == TableNotFound
}

// Error is a semantic error. Name is the unresolved identifier; Table is the
// table it was looked up in, if any.
type Error struct {
	Kind  ErrorKind
	Name  string
	Table string
	Pos   ast.Position
}

func (e *Error) Error() string {
	switch e.Kind {
	case NoTable:
		return "no table found in query"
	case TableNotFound:
		return fmt.Sprintf("table %q does not exist", e.Name)
	case ColumnNotFoundInSelect:
		return fmt.Sprintf("column %q in SELECT does not exist in table %q", e.Name, e.Table)
	case ColumnNotFoundInWhere:
		return fmt.Sprintf("column %q in WHERE does not exist in table %q", e.Name, e.Table)
	}
	return e.Kind.String() + ": " + e.Name
}
