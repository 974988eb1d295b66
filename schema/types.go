// Package schema keeps live SQLite tables in step with declared table specs.
//
// Ensuring a table creates it when absent and appends any declared column
// the live table lacks. Existing columns are never renamed, retyped or
// dropped; mismatches are reported as drift instead.
package schema

import (
	"strings"

	"github.com/clanvault/clanvault/tools"
)

// ColumnType is the declared SQL type of a column.
type ColumnType string

// Supported column types. BOOLEAN gets NUMERIC affinity in SQLite.
const (
	TypeText    ColumnType = "TEXT"
	TypeInteger ColumnType = "INTEGER"
	TypeReal    ColumnType = "REAL"
	TypeBoolean ColumnType = "BOOLEAN"
)

// ColumnSpec declares one column of a table.
type ColumnSpec struct {
	Name          string     `json:"name"`
	Type          ColumnType `json:"type"`
	PrimaryKey    bool       `json:"primaryKey,omitempty"`
	AutoIncrement bool       `json:"autoIncrement,omitempty"`
}

// TableSpec declares the target schema of one table.
type TableSpec struct {
	Name        string       `json:"name"`
	Columns     []ColumnSpec `json:"columns"`
	Indexes     []string     `json:"indexes,omitempty"`     // Columns that get a single-column index
	Endpoint    string       `json:"endpoint,omitempty"`    // API endpoint the rows are mirrored from
	Description string       `json:"description,omitempty"` // How rows are appended or updated
}

// ParseColumnType maps a type name, in any case, to a supported ColumnType.
func ParseColumnType(str string) (ColumnType, bool) {
	switch strings.ToUpper(strings.TrimSpace(str)) {
	case "TEXT":
		return TypeText, true
	case "INTEGER":
		return TypeInteger, true
	case "REAL":
		return TypeReal, true
	case "BOOLEAN":
		return TypeBoolean, true
	default:
		return "", false
	}
}

// ParseColumnSpec builds a ColumnSpec from a declaration such as
// "INTEGER PRIMARY KEY AUTOINCREMENT" or "TEXT".
func ParseColumnSpec(name, decl string) (ColumnSpec, error) {
	fields := strings.Fields(strings.ToUpper(decl))
	if len(fields) == 0 {
		return ColumnSpec{}, tools.InvalidTypeErr(name, decl)
	}

	typ, ok := ParseColumnType(fields[0])
	if !ok {
		return ColumnSpec{}, tools.InvalidTypeErr(name, fields[0])
	}

	col := ColumnSpec{Name: name, Type: typ}

	rest := fields[1:]
	for len(rest) > 0 {
		switch {
		case len(rest) >= 2 && rest[0] == "PRIMARY" && rest[1] == "KEY":
			col.PrimaryKey = true
			rest = rest[2:]
		case rest[0] == "AUTOINCREMENT":
			col.AutoIncrement = true
			rest = rest[1:]
		default:
			return ColumnSpec{}, tools.InvalidTypeErr(name, decl)
		}
	}

	if err := col.validateConstraints(); err != nil {
		return ColumnSpec{}, err
	}

	return col, nil
}

func (c ColumnSpec) validateConstraints() error {
	typ, _ := ParseColumnType(string(c.Type))
	if c.AutoIncrement && !(c.PrimaryKey && typ == TypeInteger) {
		return tools.InvalidConstraintErr(c.Name, "AUTOINCREMENT requires INTEGER PRIMARY KEY")
	}
	return nil
}

// Declaration renders the column's type and constraint suffix, e.g.
// "INTEGER PRIMARY KEY AUTOINCREMENT".
func (c ColumnSpec) Declaration() string {
	decl := string(c.Type)
	if typ, ok := ParseColumnType(decl); ok {
		decl = string(typ)
	}
	if c.PrimaryKey {
		decl += " PRIMARY KEY"
	}
	if c.AutoIncrement {
		decl += " AUTOINCREMENT"
	}
	return decl
}

// Column returns the declared column with the given name.
func (t TableSpec) Column(name string) (ColumnSpec, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnSpec{}, false
}

// Validate checks identifiers, types, constraints and index columns.
// A spec that fails validation must not reach the database.
func (t TableSpec) Validate() error {
	if err := tools.ValidateTableName(t.Name); err != nil {
		return tools.InvalidSpecErr(t.Name, err)
	}
	if len(t.Columns) == 0 {
		return tools.InvalidSpecErr(t.Name, tools.ErrNoColumns)
	}

	seen := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		if err := tools.ValidateColumnName(c.Name); err != nil {
			return tools.InvalidSpecErr(t.Name, err)
		}
		// sqlite column names are case-insensitive
		key := strings.ToLower(c.Name)
		if seen[key] {
			return tools.InvalidSpecErr(t.Name, tools.DuplicateColumnErr(t.Name, c.Name))
		}
		seen[key] = true

		if _, ok := ParseColumnType(string(c.Type)); !ok {
			return tools.InvalidSpecErr(t.Name, tools.InvalidTypeErr(c.Name, string(c.Type)))
		}
		if err := c.validateConstraints(); err != nil {
			return tools.InvalidSpecErr(t.Name, err)
		}
	}

	for _, col := range t.Indexes {
		if err := tools.ValidateColumnName(col); err != nil {
			return tools.InvalidSpecErr(t.Name, err)
		}
		if !seen[strings.ToLower(col)] {
			return tools.InvalidSpecErr(t.Name, tools.UnknownIndexColumnErr(t.Name, col))
		}
	}

	return nil
}
