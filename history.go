package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/clanvault/clanvault/config"
	"github.com/clanvault/clanvault/schema"
)

type historyCmd struct {
	cfg    config.Config
	target target
	limit  int
	runID  string
	json   bool
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "List recorded ensure runs" }
func (*historyCmd) Usage() string {
	return `history [-db path] [-n 10] [-run id] [-json]

List the most recent ensure runs, or every step of one run.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	c.target.setFlags(f, c.cfg, false)
	f.IntVar(&c.limit, "n", 10, "number of runs to list")
	f.StringVar(&c.runID, "run", "", "show the steps of this run")
	f.BoolVar(&c.json, "json", false, "print as JSON")
}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.limit <= 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}

	db, err := c.target.open(ctx, c.cfg)
	if err != nil {
		return fail("open database failed", err, "db", c.target.db)
	}
	defer db.Close()

	h := schema.NewHistoryReader(db)

	if c.runID != "" {
		entries, err := h.Entries(ctx, c.runID)
		if err != nil {
			return fail("read run failed", err, "run_id", c.runID)
		}
		if c.json {
			if err := writeJSON(os.Stdout, entries); err != nil {
				return fail("write history failed", err)
			}
			return subcommands.ExitSuccess
		}
		for _, e := range entries {
			fmt.Printf("%s %-28s %-13s %-9s %s", e.CreatedAt, e.TableName, e.Action, e.Status, e.Target)
			if e.Error.Valid {
				fmt.Printf("  (%s)", e.Error.String)
			}
			fmt.Println()
		}
		return subcommands.ExitSuccess
	}

	runs, err := h.Runs(ctx, c.limit)
	if err != nil {
		return fail("read history failed", err)
	}
	if c.json {
		if err := writeJSON(os.Stdout, runs); err != nil {
			return fail("write history failed", err)
		}
		return subcommands.ExitSuccess
	}
	if len(runs) == 0 {
		fmt.Println("no recorded runs")
		return subcommands.ExitSuccess
	}
	for _, r := range runs {
		fmt.Printf("%s  %s  tables=%d applied=%d failed=%d", r.RunID, r.StartedAt, r.Tables, r.Applied, r.Failed)
		if r.Cancelled {
			fmt.Print("  cancelled")
		}
		fmt.Println()
	}
	return subcommands.ExitSuccess
}
