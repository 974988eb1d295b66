package schema

import (
	"context"
	"fmt"
	"strings"

	"github.com/clanvault/clanvault/data"
)

// Action names the kind of step an ensure run performs.
type Action string

const (
	ActionValidate    Action = "validate"
	ActionCreateTable Action = "create_table"
	ActionInspect     Action = "inspect"
	ActionAddColumn   Action = "add_column"
	ActionCreateIndex Action = "create_index"

	// ActionRun marks a whole run in history rather than one table step.
	ActionRun Action = "run"
)

// Statement is one DDL statement an ensure run would issue.
type Statement struct {
	Action Action `json:"action"`
	Target string `json:"target"`
	SQL    string `json:"sql"`
	Note   string `json:"note,omitempty"`
}

// Drift is an existing column whose live definition differs from its declaration.
// Drift is reported, never migrated.
type Drift struct {
	Column   string `json:"column"`
	Declared string `json:"declared"`
	Live     string `json:"live"`
}

func (d Drift) String() string {
	return fmt.Sprintf("column %s declared %q but live as %q", d.Column, d.Declared, d.Live)
}

// TablePlan is the dry-run result for one table.
type TablePlan struct {
	Table       string      `json:"table"`
	Exists      bool        `json:"exists"`
	Fingerprint string      `json:"fingerprint"`
	Statements  []Statement `json:"statements"`
	Drift       []Drift     `json:"drift,omitempty"`
	Retained    []string    `json:"retained,omitempty"` // Live columns no longer declared
}

// UpToDate reports whether ensuring the table would change nothing.
func (p TablePlan) UpToDate() bool {
	return p.Exists && len(p.Statements) == 0
}

const notePrimaryKey = "PRIMARY KEY not applied: sqlite cannot add key columns to an existing table"

// Plan introspects the live table and returns the statements EnsureTable
// would issue for spec, without executing any of them.
func (e *Ensurer) Plan(ctx context.Context, spec TableSpec) (TablePlan, error) {
	if err := spec.Validate(); err != nil {
		return TablePlan{Table: spec.Name}, err
	}

	plan := TablePlan{Table: spec.Name, Fingerprint: Fingerprint(spec)}

	exists, err := e.db.TableExists(ctx, spec.Name)
	if err != nil {
		return plan, err
	}
	plan.Exists = exists

	if !exists {
		plan.Statements = append(plan.Statements, Statement{
			Action: ActionCreateTable,
			Target: spec.Name,
			SQL:    CreateTableSQL(spec),
		})
		for _, col := range indexColumns(spec) {
			plan.Statements = append(plan.Statements, indexStatement(spec.Name, col))
		}
		return plan, nil
	}

	live, err := e.db.Columns(ctx, spec.Name)
	if err != nil {
		return plan, err
	}

	diff := diffColumns(spec, live)
	for _, col := range diff.missing {
		plan.Statements = append(plan.Statements, addColumnStatement(spec.Name, col))
	}
	plan.Drift = diff.drift
	plan.Retained = diff.retained

	existing, err := e.indexNames(ctx, spec.Name)
	if err != nil {
		return plan, err
	}
	for _, col := range indexColumns(spec) {
		if !existing[strings.ToLower(IndexName(spec.Name, col))] {
			plan.Statements = append(plan.Statements, indexStatement(spec.Name, col))
		}
	}

	return plan, nil
}

func addColumnStatement(table string, col ColumnSpec) Statement {
	st := Statement{
		Action: ActionAddColumn,
		Target: table + "." + col.Name,
		SQL:    AddColumnSQL(table, col),
	}
	if col.PrimaryKey {
		st.Note = notePrimaryKey
	}
	return st
}

func indexStatement(table, col string) Statement {
	return Statement{
		Action: ActionCreateIndex,
		Target: IndexName(table, col),
		SQL:    CreateIndexSQL(table, col),
	}
}

type columnDiff struct {
	missing  []ColumnSpec
	drift    []Drift
	retained []string
}

// diffColumns compares declared columns against the live ones.
// Names compare case-insensitively, as sqlite does.
func diffColumns(spec TableSpec, live []data.Column) columnDiff {
	var diff columnDiff

	liveByName := make(map[string]data.Column, len(live))
	for _, c := range live {
		liveByName[strings.ToLower(c.Name)] = c
	}

	declared := make(map[string]bool, len(spec.Columns))
	for _, c := range spec.Columns {
		key := strings.ToLower(c.Name)
		declared[key] = true

		lc, ok := liveByName[key]
		if !ok {
			diff.missing = append(diff.missing, c)
			continue
		}

		want := keyedType(string(c.Type), c.PrimaryKey)
		got := keyedType(lc.Type, lc.PK > 0)
		if !strings.EqualFold(want, got) {
			diff.drift = append(diff.drift, Drift{Column: c.Name, Declared: want, Live: got})
		}
	}

	for _, c := range live {
		if !declared[strings.ToLower(c.Name)] {
			diff.retained = append(diff.retained, c.Name)
		}
	}

	return diff
}

// keyedType renders a type plus the primary key flag. AUTOINCREMENT is left
// out because pragma_table_info does not expose it.
func keyedType(typ string, pk bool) string {
	if t, ok := ParseColumnType(typ); ok {
		typ = string(t)
	}
	if pk {
		return typ + " PRIMARY KEY"
	}
	return typ
}

// indexColumns returns the spec's index columns without duplicates, in order.
func indexColumns(spec TableSpec) []string {
	seen := make(map[string]bool, len(spec.Indexes))
	cols := make([]string, 0, len(spec.Indexes))
	for _, col := range spec.Indexes {
		key := strings.ToLower(col)
		if seen[key] {
			continue
		}
		seen[key] = true
		cols = append(cols, col)
	}
	return cols
}

func (e *Ensurer) indexNames(ctx context.Context, table string) (map[string]bool, error) {
	idxs, err := e.db.Indexes(ctx, table)
	if err != nil {
		return nil, err
	}
	names := make(map[string]bool, len(idxs))
	for _, idx := range idxs {
		names[strings.ToLower(idx.Name)] = true
	}
	return names, nil
}
