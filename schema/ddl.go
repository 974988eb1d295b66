package schema

import (
	"fmt"
	"strings"

	"github.com/clanvault/clanvault/tools"
)

// Identifiers reaching these builders have passed TableSpec.Validate.

// CreateTableSQL builds the CREATE TABLE IF NOT EXISTS statement for spec.
func CreateTableSQL(spec TableSpec) string {
	defs := make([]string, len(spec.Columns))
	for i, c := range spec.Columns {
		defs[i] = tools.QuoteIdentifier(c.Name) + " " + c.Declaration()
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		tools.QuoteIdentifier(spec.Name), strings.Join(defs, ", "))
}

// AddColumnSQL builds the ALTER TABLE statement that appends col to table.
// Only the declared type is sent: sqlite cannot add a PRIMARY KEY column.
func AddColumnSQL(table string, col ColumnSpec) string {
	typ := string(col.Type)
	if t, ok := ParseColumnType(typ); ok {
		typ = string(t)
	}
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s",
		tools.QuoteIdentifier(table), tools.QuoteIdentifier(col.Name), typ)
}

// IndexName returns the deterministic name of the index on table(column).
func IndexName(table, column string) string {
	return "idx_" + table + "_" + column
}

// CreateIndexSQL builds the CREATE INDEX IF NOT EXISTS statement for table(column).
func CreateIndexSQL(table, column string) string {
	return fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s(%s)",
		tools.QuoteIdentifier(IndexName(table, column)),
		tools.QuoteIdentifier(table), tools.QuoteIdentifier(column))
}
