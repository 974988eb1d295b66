package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/subcommands"

	"github.com/clanvault/clanvault/config"
	"github.com/clanvault/clanvault/tools"
)

func main() {
	cfg := config.Load()
	tools.InitLogger(os.Stderr, cfg.LogLevel)

	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")

	subcommands.Register(&ensureCmd{cfg: cfg}, "schema")
	subcommands.Register(&planCmd{cfg: cfg}, "schema")
	subcommands.Register(&inspectCmd{cfg: cfg}, "schema")
	subcommands.Register(&historyCmd{cfg: cfg}, "schema")
	subcommands.Register(&backupCmd{cfg: cfg}, "maintenance")

	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	status := subcommands.Execute(ctx)
	stop()

	os.Exit(int(status))
}
