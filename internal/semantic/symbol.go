package semantic

import "fmt"

const (
	// GlobalScope is the scope of the table symbol.
	GlobalScope = "GLOBAL"
	// NoAlias fills TypeRow.Alias for columns selected without AS.
	NoAlias = "-"
)

// Kind is the role a symbol plays in the query.
type Kind int

const (
	KindTable Kind = iota
	KindColumn
	KindVariable
)

var kindNames = [...]string{
	KindTable:    "table",
	KindColumn:   "column",
	KindVariable: "variable",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Symbol is a name resolved against the schema.
type Symbol struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Scope string `json:"scope"`
	Kind  Kind   `json:"kind"`
	Size  int    `json:"size"`
	// Offset is the position of the column within the table row, in bytes.
	Offset int `json:"offset"`
}

// Symbols is the symbol table of one analysis, in emission order.
type Symbols []Symbol

// Find returns the first symbol with the given name and scope.
func (s Symbols) Find(name, scope string) (Symbol, bool) {
	for _, sym := range s {
		if sym.Name == name && sym.Scope == scope {
			return sym, true
		}
	}
	return Symbol{}, false
}

// InScope returns the symbols recorded for scope.
func (s Symbols) InScope(scope string) Symbols {
	var out Symbols
	for _, sym := range s {
		if sym.Scope == scope {
			out = append(out, sym)
		}
	}
	return out
}

// TypeRow describes one selected column.
type TypeRow struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Size  int    `json:"size"`
	Table string `json:"table"`
	Scope string `json:"scope"`
	Alias string `json:"alias"`
}

// SelectScope and WhereScope name the clause scopes of table.
func SelectScope(table string) string { return table + ".SELECT" }
func WhereScope(table string) string  { return table + ".WHERE" }
