package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/clanvault/clanvault/backup"
	"github.com/clanvault/clanvault/config"
)

type backupCmd struct {
	cfg    config.Config
	target target
	dest   string
}

func (*backupCmd) Name() string     { return "backup" }
func (*backupCmd) Synopsis() string { return "Snapshot the database to a directory or S3" }
func (*backupCmd) Usage() string {
	return `backup [-db path] [-dest dir|s3://bucket/prefix]

Write a consistent snapshot of a local database, compress it with snappy
and store it at the destination.
`
}

func (c *backupCmd) SetFlags(f *flag.FlagSet) {
	c.target.setFlags(f, c.cfg, false)
	f.StringVar(&c.dest, "dest", c.cfg.BackupDest, "local directory or s3://bucket/prefix")
}

func (c *backupCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	db, err := c.target.open(ctx, c.cfg)
	if err != nil {
		return fail("open database failed", err, "db", c.target.db)
	}
	defer db.Close()

	store, err := backup.OpenDestination(ctx, c.dest, backup.S3Config{
		Region:       c.cfg.S3Region,
		Endpoint:     c.cfg.S3Endpoint,
		UsePathStyle: c.cfg.S3PathStyle,
	})
	if err != nil {
		return fail("open backup destination failed", err, "dest", c.dest)
	}

	res, err := backup.Run(ctx, db, store)
	if err != nil {
		return fail("backup failed", err)
	}

	fmt.Printf("%s/%s (%d -> %d bytes)\n", c.dest, res.Object, res.RawBytes, res.StoredBytes)
	return subcommands.ExitSuccess
}
