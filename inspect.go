package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/clanvault/clanvault/config"
	"github.com/clanvault/clanvault/data"
	"github.com/clanvault/clanvault/tools"
)

type inspectCmd struct {
	cfg    config.Config
	target target
	table  string
}

func (*inspectCmd) Name() string     { return "inspect" }
func (*inspectCmd) Synopsis() string { return "Print the live schema as JSON" }
func (*inspectCmd) Usage() string {
	return `inspect [-db path] [-table name]

Print the live columns and indexes of every table, or of one table.
`
}

func (c *inspectCmd) SetFlags(f *flag.FlagSet) {
	c.target.setFlags(f, c.cfg, false)
	f.StringVar(&c.table, "table", "", "only this table")
}

func (c *inspectCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	db, err := c.target.open(ctx, c.cfg)
	if err != nil {
		return fail("open database failed", err, "db", c.target.db)
	}
	defer db.Close()

	var out any
	if c.table == "" {
		out, err = db.Tables(ctx)
	} else {
		out, err = inspectTable(ctx, db, c.table)
	}
	if err != nil {
		return fail("inspect failed", err, "table", c.table)
	}

	if err := writeJSON(os.Stdout, out); err != nil {
		return fail("write schema failed", err)
	}
	return subcommands.ExitSuccess
}

func inspectTable(ctx context.Context, db *data.Database, name string) (data.Table, error) {
	if err := tools.ValidateTableName(name); err != nil {
		return data.Table{}, err
	}
	exists, err := db.TableExists(ctx, name)
	if err != nil {
		return data.Table{}, err
	}
	if !exists {
		return data.Table{}, tools.TableNotFoundErr(name)
	}

	cols, err := db.Columns(ctx, name)
	if err != nil {
		return data.Table{}, err
	}
	idxs, err := db.Indexes(ctx, name)
	if err != nil {
		return data.Table{}, fmt.Errorf("indexes: %w", err)
	}
	return data.Table{Name: name, Columns: cols, Indexes: idxs}, nil
}
