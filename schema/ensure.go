package schema

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/clanvault/clanvault/data"
	"github.com/clanvault/clanvault/tools"
)

// Status is the result of one ensure step.
type Status string

const (
	StatusApplied   Status = "applied"
	StatusUnchanged Status = "unchanged"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Outcome records what happened to one step of an ensure run.
type Outcome struct {
	Action Action `json:"action"`
	Target string `json:"target"`
	SQL    string `json:"sql,omitempty"`
	Status Status `json:"status"`
	Note   string `json:"note,omitempty"`
	Err    error  `json:"-"`
}

// ErrText returns the failure message, or "" when the step did not fail.
func (o Outcome) ErrText() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// TableResult collects every outcome of ensuring one table.
type TableResult struct {
	Table       string    `json:"table"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	Created     bool      `json:"created"`
	Outcomes    []Outcome `json:"outcomes"`
	Drift       []Drift   `json:"drift,omitempty"`
	Retained    []string  `json:"retained,omitempty"`
}

// Count returns the number of outcomes with the given status.
func (r TableResult) Count(status Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

// Err joins every failed outcome, or returns nil when nothing failed.
func (r TableResult) Err() error {
	var errs []error
	for _, o := range r.Outcomes {
		if o.Status == StatusFailed {
			errs = append(errs, fmt.Errorf("%s %s: %w", o.Action, o.Target, o.Err))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", tools.ErrEnsureFailed, errors.Join(errs...))
}

// Report is the result of one EnsureAll run.
type Report struct {
	RunID      string        `json:"runId"`
	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt time.Time     `json:"finishedAt"`
	Tables     []TableResult `json:"tables"`
	Cancelled  bool          `json:"cancelled,omitempty"`
	Pending    []string      `json:"pending,omitempty"` // Tables not reached before cancellation
}

// Count returns the number of outcomes with the given status across all tables.
func (r Report) Count(status Status) int {
	n := 0
	for _, t := range r.Tables {
		n += t.Count(status)
	}
	return n
}

// Err joins the errors of every table that had a failed step.
func (r Report) Err() error {
	var errs []error
	for _, t := range r.Tables {
		if err := t.Err(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Options configures an Ensurer.
type Options struct {
	Workers          int           // Concurrent statements per phase (default 1)
	StatementTimeout time.Duration // Per-statement timeout (0 disables)
	History          bool          // Record EnsureAll runs in schema_ensure_log
	Logger           *slog.Logger  // Defaults to tools.Logger
}

// Ensurer brings live tables up to their declared specs.
type Ensurer struct {
	db      *data.Database
	workers int
	timeout time.Duration
	log     *slog.Logger
	history *History
}

// NewEnsurer returns an Ensurer operating on db.
func NewEnsurer(db *data.Database, opts Options) *Ensurer {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Logger == nil {
		opts.Logger = tools.Logger
	}

	e := &Ensurer{
		db:      db,
		workers: opts.Workers,
		timeout: opts.StatementTimeout,
		log:     opts.Logger,
	}
	if opts.History {
		e.history = NewHistory(db, e)
	}
	return e
}

// History returns the run history recorder, or nil when history is disabled.
func (e *Ensurer) History() *History {
	return e.history
}

// EnsureTable creates spec's table if absent, appends missing columns and
// creates missing indexes. It returns only after every statement finished.
// The returned error joins every failed step; successful steps are kept.
func (e *Ensurer) EnsureTable(ctx context.Context, spec TableSpec) (TableResult, error) {
	return e.ensureTable(ctx, spec, e.log)
}

// EnsureAll ensures specs in order under one run ID. A failing table does
// not stop the ones after it; a cancelled context does.
func (e *Ensurer) EnsureAll(ctx context.Context, specs []TableSpec) (Report, error) {
	report := Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
	log := e.log.With("run_id", report.RunID)
	log.Info("ensure run started", "tables", len(specs))

	for i, spec := range specs {
		if ctx.Err() != nil {
			for _, rest := range specs[i:] {
				report.Pending = append(report.Pending, rest.Name)
			}
			break
		}
		res, _ := e.ensureTable(ctx, spec, log)
		report.Tables = append(report.Tables, res)
	}
	if ctx.Err() != nil {
		report.Cancelled = true
	}
	report.FinishedAt = time.Now().UTC()

	err := report.Err()
	if ctx.Err() != nil {
		err = errors.Join(err, ctx.Err())
	}

	if e.history != nil {
		// a cancelled run gets a marker row even when no table was reached
		if herr := e.history.Record(context.WithoutCancel(ctx), report); herr != nil {
			log.Error("record ensure history failed", "error", herr)
			err = errors.Join(err, herr)
		}
	}

	log.Info("ensure run finished",
		"tables", len(report.Tables),
		"applied", report.Count(StatusApplied),
		"failed", report.Count(StatusFailed),
		"duration_ms", report.FinishedAt.Sub(report.StartedAt).Milliseconds())

	return report, err
}

func (e *Ensurer) ensureTable(ctx context.Context, spec TableSpec, log *slog.Logger) (TableResult, error) {
	res := TableResult{Table: spec.Name}
	log = log.With("table", spec.Name)

	if err := spec.Validate(); err != nil {
		res.Outcomes = append(res.Outcomes, Outcome{
			Action: ActionValidate,
			Target: spec.Name,
			Status: StatusFailed,
			Err:    err,
		})
		log.Error("table spec rejected", "error", err)
		return res, err
	}
	res.Fingerprint = Fingerprint(spec)

	// Step 1: create
	existed, lookupErr := e.db.TableExists(ctx, spec.Name)
	if lookupErr != nil {
		log.Warn("table lookup failed", "error", lookupErr)
	}

	create := e.run(ctx, log, Statement{Action: ActionCreateTable, Target: spec.Name, SQL: CreateTableSQL(spec)})
	if create.Status == StatusApplied && existed {
		create.Status = StatusUnchanged
	}
	res.Created = create.Status == StatusApplied && lookupErr == nil
	res.Outcomes = append(res.Outcomes, create)
	logOutcome(log, create)

	indexCols := indexColumns(spec)

	if create.Status == StatusFailed {
		// nothing to patch on a table that may not exist
		skipped := []Outcome{{Action: ActionInspect, Target: spec.Name, Status: StatusSkipped}}
		for _, col := range indexCols {
			st := indexStatement(spec.Name, col)
			skipped = append(skipped, Outcome{Action: st.Action, Target: st.Target, SQL: st.SQL, Status: StatusSkipped})
		}
		res.Outcomes = append(res.Outcomes, skipped...)
		return res, res.Err()
	}

	// Step 2: patch missing columns
	live, err := e.db.Columns(ctx, spec.Name)
	if err != nil {
		o := Outcome{Action: ActionInspect, Target: spec.Name, Status: StatusFailed, Err: err}
		res.Outcomes = append(res.Outcomes, o)
		logOutcome(log, o)
	} else {
		diff := diffColumns(spec, live)
		res.Drift = diff.drift
		res.Retained = diff.retained

		for _, d := range diff.drift {
			log.Warn("column drift", "column", d.Column, "declared", d.Declared, "live", d.Live)
		}
		if len(diff.retained) > 0 {
			log.Debug("undeclared columns retained", "columns", diff.retained)
		}

		stmts := make([]Statement, len(diff.missing))
		for i, col := range diff.missing {
			stmts[i] = addColumnStatement(spec.Name, col)
		}
		for _, o := range e.runAll(ctx, log, stmts) {
			res.Outcomes = append(res.Outcomes, o)
			logOutcome(log, o)
		}
	}

	// Step 3: indexes
	if len(indexCols) > 0 {
		existing, err := e.indexNames(ctx, spec.Name)
		if err != nil {
			log.Warn("index lookup failed", "error", err)
		}

		var stmts []Statement
		for _, col := range indexCols {
			st := indexStatement(spec.Name, col)
			if existing[strings.ToLower(st.Target)] {
				res.Outcomes = append(res.Outcomes, Outcome{
					Action: st.Action, Target: st.Target, SQL: st.SQL, Status: StatusUnchanged,
				})
				continue
			}
			stmts = append(stmts, st)
		}
		for _, o := range e.runAll(ctx, log, stmts) {
			res.Outcomes = append(res.Outcomes, o)
			logOutcome(log, o)
		}
	}

	log.Info("table ensured",
		"created", res.Created,
		"applied", res.Count(StatusApplied),
		"failed", res.Count(StatusFailed),
		"drift", len(res.Drift),
		"fingerprint", res.Fingerprint)

	return res, res.Err()
}

// runAll dispatches every statement as its own task, bounded by the worker
// limit, and waits for all of them. Outcomes keep the order of stmts.
func (e *Ensurer) runAll(ctx context.Context, log *slog.Logger, stmts []Statement) []Outcome {
	outcomes := make([]Outcome, len(stmts))

	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, st := range stmts {
		i, st := i, st
		g.Go(func() error {
			outcomes[i] = e.run(ctx, log, st)
			return nil
		})
	}
	g.Wait()

	return outcomes
}

func (e *Ensurer) run(ctx context.Context, log *slog.Logger, st Statement) Outcome {
	o := Outcome{Action: st.Action, Target: st.Target, SQL: st.SQL, Note: st.Note}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	stepLog := log.With("action", st.Action, "target", st.Target)
	if _, err := data.ExecContextWithRetry(ctx, stepLog, e.db.Client, st.SQL); err != nil {
		o.Status = StatusFailed
		o.Err = err
		return o
	}
	o.Status = StatusApplied
	return o
}

var appliedMessages = map[Action]string{
	ActionCreateTable: "table created",
	ActionAddColumn:   "column added",
	ActionCreateIndex: "index created",
}

func logOutcome(log *slog.Logger, o Outcome) {
	switch o.Status {
	case StatusFailed:
		log.Error("schema step failed", "action", o.Action, "target", o.Target, "error", o.Err)
	case StatusApplied:
		args := []any{"action", o.Action, "target", o.Target}
		if o.Note != "" {
			args = append(args, "note", o.Note)
		}
		log.Info(appliedMessages[o.Action], args...)
	default:
		log.Debug("schema step "+string(o.Status), "action", o.Action, "target", o.Target)
	}
}
