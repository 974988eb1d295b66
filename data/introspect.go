package data

import (
	"context"
	"database/sql"
	"fmt"
)

// Column is one row of pragma_table_info for a live table.
type Column struct {
	CID     int            `db:"cid" json:"-"`
	Name    string         `db:"name" json:"name"`
	Type    string         `db:"type" json:"type"`
	NotNull bool           `db:"notnull" json:"notNull,omitempty"`
	Default sql.NullString `db:"dflt_value" json:"-"`
	PK      int            `db:"pk" json:"pk,omitempty"`
}

// Index is one row of pragma_index_list for a live table.
type Index struct {
	Name    string   `db:"name" json:"name"`
	Unique  bool     `db:"unique" json:"unique,omitempty"`
	Origin  string   `db:"origin" json:"origin"`
	Columns []string `db:"-" json:"columns"`
}

// Table is the live schema of one table.
type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
	Indexes []Index  `json:"indexes,omitempty"`
}

// TableExists reports whether a table with the given name exists.
// Names compare case-insensitively, as sqlite resolves them.
func (db *Database) TableExists(ctx context.Context, table string) (bool, error) {
	var count int
	err := db.Client.QueryRowxContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ? COLLATE NOCASE", table).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Columns returns the live columns of table in declaration order.
// A missing table yields an empty slice, not an error.
func (db *Database) Columns(ctx context.Context, table string) ([]Column, error) {
	var cols []Column
	err := db.Client.SelectContext(ctx, &cols, `
		SELECT cid, name, type, "notnull", dflt_value, pk
		FROM pragma_table_info(?)
		ORDER BY cid ASC`, table)
	if err != nil {
		return nil, fmt.Errorf("read columns of %s: %w", table, err)
	}
	return cols, nil
}

// Indexes returns the live indexes of table, including their columns.
func (db *Database) Indexes(ctx context.Context, table string) ([]Index, error) {
	var idxs []Index
	err := db.Client.SelectContext(ctx, &idxs, `
		SELECT name, "unique", origin
		FROM pragma_index_list(?)
		ORDER BY name ASC`, table)
	if err != nil {
		return nil, fmt.Errorf("read indexes of %s: %w", table, err)
	}

	for i := range idxs {
		err := db.Client.SelectContext(ctx, &idxs[i].Columns, `
			SELECT name FROM pragma_index_info(?) ORDER BY seqno ASC`, idxs[i].Name)
		if err != nil {
			return nil, fmt.Errorf("read index %s: %w", idxs[i].Name, err)
		}
	}

	return idxs, nil
}

// Tables returns the live schema of every user table, sorted by name.
func (db *Database) Tables(ctx context.Context) ([]Table, error) {
	var names []string
	err := db.Client.SelectContext(ctx, &names, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}

	tbls := make([]Table, 0, len(names))
	for _, name := range names {
		cols, err := db.Columns(ctx, name)
		if err != nil {
			return nil, err
		}
		idxs, err := db.Indexes(ctx, name)
		if err != nil {
			return nil, err
		}
		tbls = append(tbls, Table{Name: name, Columns: cols, Indexes: idxs})
	}

	return tbls, nil
}
