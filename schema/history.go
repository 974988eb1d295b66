package schema

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/clanvault/clanvault/data"
	"github.com/clanvault/clanvault/tools"
)

// HistoryTable stores one row per outcome of every recorded ensure run.
const HistoryTable = "schema_ensure_log"

// HistorySpec is the declared schema of HistoryTable. It is realized
// through the same ensure path as every other table.
func HistorySpec() TableSpec {
	return TableSpec{
		Name: HistoryTable,
		Columns: []ColumnSpec{
			{Name: "id", Type: TypeInteger, PrimaryKey: true, AutoIncrement: true},
			{Name: "run_id", Type: TypeText},
			{Name: "table_name", Type: TypeText},
			{Name: "action", Type: TypeText},
			{Name: "target", Type: TypeText},
			{Name: "status", Type: TypeText},
			{Name: "error", Type: TypeText},
			{Name: "fingerprint", Type: TypeText},
			{Name: "created_at", Type: TypeText},
		},
		Indexes:     []string{"run_id", "table_name"},
		Description: "One row per schema step of every ensure run",
	}
}

const insertHistory = `
INSERT INTO ` + HistoryTable + ` (run_id, table_name, action, target, status, error, fingerprint, created_at)
VALUES (:run_id, :table_name, :action, :target, :status, :error, :fingerprint, :created_at)
`

// HistoryEntry is one row of HistoryTable.
type HistoryEntry struct {
	RunID       string         `db:"run_id" json:"runId"`
	TableName   string         `db:"table_name" json:"table"`
	Action      string         `db:"action" json:"action"`
	Target      string         `db:"target" json:"target"`
	Status      string         `db:"status" json:"status"`
	Error       sql.NullString `db:"error" json:"-"`
	Fingerprint string         `db:"fingerprint" json:"fingerprint"`
	CreatedAt   string         `db:"created_at" json:"createdAt"`
}

// RunSummary aggregates the history rows of one run.
type RunSummary struct {
	RunID     string `db:"run_id" json:"runId"`
	StartedAt string `db:"started_at" json:"startedAt"`
	Tables    int    `db:"tables" json:"tables"`
	Applied   int    `db:"applied" json:"applied"`
	Failed    int    `db:"failed" json:"failed"`
	Cancelled bool   `db:"cancelled" json:"cancelled,omitempty"`
}

// History records ensure runs in HistoryTable.
type History struct {
	db      *data.Database
	ensurer *Ensurer

	mu      sync.Mutex
	ensured bool
}

// NewHistory returns a History that realizes its table through ensurer.
func NewHistory(db *data.Database, ensurer *Ensurer) *History {
	return &History{db: db, ensurer: ensurer}
}

// NewHistoryReader returns a History that only reads runs. Record fails
// with ErrHistoryReadOnly and the history table is never created.
func NewHistoryReader(db *data.Database) *History {
	return &History{db: db}
}

func (h *History) ensure(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.ensured {
		return nil
	}
	if h.ensurer == nil {
		return tools.ErrHistoryReadOnly
	}
	if _, err := h.ensurer.ensureTable(ctx, HistorySpec(), h.ensurer.log); err != nil {
		return fmt.Errorf("ensure %s: %w", HistoryTable, err)
	}
	h.ensured = true
	return nil
}

// Record writes every outcome of report in a single transaction.
func (h *History) Record(ctx context.Context, report Report) error {
	if err := h.ensure(ctx); err != nil {
		return err
	}

	tx, err := h.db.Client.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareNamedContext(ctx, insertHistory)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	createdAt := report.StartedAt.UTC().Format(time.RFC3339)
	for _, t := range report.Tables {
		for _, o := range t.Outcomes {
			entry := HistoryEntry{
				RunID:       report.RunID,
				TableName:   t.Table,
				Action:      string(o.Action),
				Target:      o.Target,
				Status:      string(o.Status),
				Error:       sql.NullString{String: o.ErrText(), Valid: o.Err != nil},
				Fingerprint: t.Fingerprint,
				CreatedAt:   createdAt,
			}
			if _, err := stmt.ExecContext(ctx, entry); err != nil {
				return fmt.Errorf("insert history row: %w", err)
			}
		}
	}

	if report.Cancelled {
		marker := HistoryEntry{
			RunID:     report.RunID,
			Action:    string(ActionRun),
			Target:    report.RunID,
			Status:    string(StatusCancelled),
			CreatedAt: createdAt,
		}
		if len(report.Pending) > 0 {
			marker.Error = sql.NullString{String: "not reached: " + strings.Join(report.Pending, ", "), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, marker); err != nil {
			return fmt.Errorf("insert run marker: %w", err)
		}
	}

	return tx.Commit()
}

// Runs returns summaries of the most recent runs, newest first.
func (h *History) Runs(ctx context.Context, limit int) ([]RunSummary, error) {
	exists, err := h.db.TableExists(ctx, HistoryTable)
	if err != nil || !exists {
		return nil, err
	}

	var runs []RunSummary
	err = h.db.Client.SelectContext(ctx, &runs, `
		SELECT run_id,
			MIN(created_at) AS started_at,
			COUNT(DISTINCT NULLIF(table_name, '')) AS tables,
			SUM(CASE WHEN status = 'applied' THEN 1 ELSE 0 END) AS applied,
			SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END) AS failed,
			MAX(CASE WHEN action = 'run' AND status = 'cancelled' THEN 1 ELSE 0 END) AS cancelled
		FROM `+HistoryTable+`
		GROUP BY run_id
		ORDER BY MIN(id) DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	return runs, nil
}

// Entries returns every recorded outcome of one run in insertion order.
func (h *History) Entries(ctx context.Context, runID string) ([]HistoryEntry, error) {
	exists, err := h.db.TableExists(ctx, HistoryTable)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, tools.TableNotFoundErr(HistoryTable)
	}

	var entries []HistoryEntry
	err = h.db.Client.SelectContext(ctx, &entries, `
		SELECT run_id, table_name, action, target, status, error, fingerprint, created_at
		FROM `+HistoryTable+`
		WHERE run_id = ?
		ORDER BY id ASC`, runID)
	if err != nil {
		return nil, err
	}
	return entries, nil
}
