package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/clanvault/clanvault/catalog"
	"github.com/clanvault/clanvault/config"
	"github.com/clanvault/clanvault/data"
	"github.com/clanvault/clanvault/schema"
	"github.com/clanvault/clanvault/tools"
)

// target holds the flags shared by every command that opens the database.
type target struct {
	db      string
	catalog string
	tables  string
}

func (t *target) setFlags(f *flag.FlagSet, cfg config.Config, withCatalog bool) {
	f.StringVar(&t.db, "db", cfg.DBPath, "database file name, path, or libsql:// URL")
	if withCatalog {
		f.StringVar(&t.catalog, "catalog", cfg.CatalogPath, "YAML catalogue file (default: embedded)")
		f.StringVar(&t.tables, "tables", "", "comma-separated table names (default: all)")
	}
}

func (t *target) open(ctx context.Context, cfg config.Config) (*data.Database, error) {
	return data.Open(ctx, cfg.ResolveDBPath(t.db), cfg.AuthToken)
}

func (t *target) specs() ([]schema.TableSpec, error) {
	var (
		specs []schema.TableSpec
		err   error
	)
	if t.catalog != "" {
		specs, err = catalog.Load(t.catalog)
	} else {
		specs, err = catalog.Default()
	}
	if err != nil {
		return nil, err
	}
	return catalog.Select(specs, splitList(t.tables))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// fail logs msg with err and any extra attributes and returns ExitFailure.
func fail(msg string, err error, attrs ...any) subcommands.ExitStatus {
	tools.Logger.Error(msg, append([]any{"error", err}, attrs...)...)
	return subcommands.ExitFailure
}

type ensureCmd struct {
	cfg       config.Config
	target    target
	noHistory bool
	json      bool
}

func (*ensureCmd) Name() string     { return "ensure" }
func (*ensureCmd) Synopsis() string { return "Create missing tables, columns and indexes" }
func (*ensureCmd) Usage() string {
	return `ensure [-db path] [-catalog file] [-tables A01_ClanInfo,...] [-no-history] [-json]

Bring every catalogue table up to its declared schema. Tables are created
when absent, missing columns are appended and missing indexes created.
Nothing is ever dropped or retyped.
`
}

func (c *ensureCmd) SetFlags(f *flag.FlagSet) {
	c.target.setFlags(f, c.cfg, true)
	f.BoolVar(&c.noHistory, "no-history", !c.cfg.HistoryEnabled, "do not record the run in "+schema.HistoryTable)
	f.BoolVar(&c.json, "json", false, "print the run report as JSON")
}

func (c *ensureCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	specs, err := c.target.specs()
	if err != nil {
		return fail("load catalogue failed", err, "catalog", c.target.catalog)
	}

	db, err := c.target.open(ctx, c.cfg)
	if err != nil {
		return fail("open database failed", err, "db", c.target.db)
	}
	defer db.Close()

	ensurer := schema.NewEnsurer(db, schema.Options{
		Workers:          c.cfg.Workers,
		StatementTimeout: c.cfg.StatementTimeout,
		History:          !c.noHistory,
	})

	report, err := ensurer.EnsureAll(ctx, specs)
	if c.json {
		if werr := writeJSON(os.Stdout, report); werr != nil {
			return fail("write report failed", werr)
		}
	} else {
		printReport(os.Stdout, report)
	}

	if err != nil {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func printReport(w io.Writer, report schema.Report) {
	for _, t := range report.Tables {
		state := "ok"
		switch {
		case t.Count(schema.StatusFailed) > 0:
			state = "FAILED"
		case t.Created:
			state = "created"
		case t.Count(schema.StatusApplied) > 0:
			state = "patched"
		}
		fmt.Fprintf(w, "%-28s %s\n", t.Table, state)
		for _, o := range t.Outcomes {
			if o.Status == schema.StatusFailed {
				fmt.Fprintf(w, "    %s %s: %s\n", o.Action, o.Target, o.ErrText())
			} else if o.Status == schema.StatusApplied && o.Action != schema.ActionCreateTable {
				fmt.Fprintf(w, "    + %s\n", o.SQL)
			}
			if o.Note != "" {
				fmt.Fprintf(w, "      note: %s\n", o.Note)
			}
		}
		for _, d := range t.Drift {
			fmt.Fprintf(w, "    drift: %s\n", d)
		}
	}
	fmt.Fprintf(w, "\nrun %s: %d tables, %d applied, %d failed\n",
		report.RunID, len(report.Tables),
		report.Count(schema.StatusApplied), report.Count(schema.StatusFailed))
	if report.Cancelled {
		fmt.Fprintf(w, "run cancelled; not reached: %s\n", strings.Join(report.Pending, ", "))
	}
}

type planCmd struct {
	cfg    config.Config
	target target
	json   bool
}

func (*planCmd) Name() string     { return "plan" }
func (*planCmd) Synopsis() string { return "Show the DDL ensure would run, without running it" }
func (*planCmd) Usage() string {
	return `plan [-db path] [-catalog file] [-tables ...] [-json]

Compare the catalogue against the live database and print the statements
that ensure would issue, plus any column drift.
`
}

func (c *planCmd) SetFlags(f *flag.FlagSet) {
	c.target.setFlags(f, c.cfg, true)
	f.BoolVar(&c.json, "json", false, "print plans as JSON")
}

func (c *planCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	specs, err := c.target.specs()
	if err != nil {
		return fail("load catalogue failed", err, "catalog", c.target.catalog)
	}

	db, err := c.target.open(ctx, c.cfg)
	if err != nil {
		return fail("open database failed", err, "db", c.target.db)
	}
	defer db.Close()

	ensurer := schema.NewEnsurer(db, schema.Options{})

	plans := make([]schema.TablePlan, 0, len(specs))
	for _, spec := range specs {
		plan, err := ensurer.Plan(ctx, spec)
		if err != nil {
			return fail("plan failed", err, "table", spec.Name)
		}
		plans = append(plans, plan)
	}

	if c.json {
		if err := writeJSON(os.Stdout, plans); err != nil {
			return fail("write plans failed", err)
		}
		return subcommands.ExitSuccess
	}

	pending := 0
	for _, p := range plans {
		if p.UpToDate() && len(p.Drift) == 0 {
			continue
		}
		fmt.Printf("-- %s\n", p.Table)
		for _, st := range p.Statements {
			fmt.Printf("%s;\n", st.SQL)
			pending++
		}
		for _, d := range p.Drift {
			fmt.Printf("-- drift: %s\n", d)
		}
	}
	fmt.Printf("-- %d statement(s) pending across %d table(s)\n", pending, len(plans))

	return subcommands.ExitSuccess
}
