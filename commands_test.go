package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/subcommands"

	"github.com/clanvault/clanvault/schema"
	"github.com/clanvault/clanvault/tools"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"A01_ClanInfo", []string{"A01_ClanInfo"}},
		{" A01_ClanInfo, ,B01_PlayerLog ", []string{"A01_ClanInfo", "B01_PlayerLog"}},
	}

	for _, tt := range tests {
		got := splitList(tt.in)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("splitList(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTargetSpecs(t *testing.T) {
	tg := target{tables: "A02_ClanMembers,D01_Achievements"}
	specs, err := tg.specs()
	if err != nil {
		t.Fatalf("specs: %v", err)
	}
	if len(specs) != 2 || specs[0].Name != "A02_ClanMembers" || specs[1].Name != "D01_Achievements" {
		t.Errorf("specs = %v", specs)
	}

	tg.tables = "Nope"
	if _, err := tg.specs(); err == nil {
		t.Error("specs accepted an unknown table")
	}
}

func TestPrintReport(t *testing.T) {
	report := schema.Report{
		RunID: "run-1",
		Tables: []schema.TableResult{
			{
				Table:   "Foo",
				Created: true,
				Outcomes: []schema.Outcome{
					{Action: schema.ActionCreateTable, Target: "Foo", Status: schema.StatusApplied},
				},
			},
			{
				Table: "Bar",
				Outcomes: []schema.Outcome{
					{Action: schema.ActionCreateTable, Target: "Bar", Status: schema.StatusUnchanged},
					{Action: schema.ActionAddColumn, Target: "Bar.v", SQL: "ALTER TABLE [Bar] ADD COLUMN [v] TEXT", Status: schema.StatusApplied},
					{Action: schema.ActionAddColumn, Target: "Bar.w", Status: schema.StatusFailed, Err: errors.New("disk full")},
				},
			},
		},
	}

	var buf bytes.Buffer
	printReport(&buf, report)
	out := buf.String()

	for _, want := range []string{
		"Foo", "created",
		"Bar", "FAILED",
		"+ ALTER TABLE [Bar] ADD COLUMN [v] TEXT",
		"add_column Bar.w: disk full",
		"run run-1: 2 tables, 2 applied, 1 failed",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestFailLogsStructuredError(t *testing.T) {
	prev := tools.Logger
	defer func() { tools.Logger = prev }()

	var buf bytes.Buffer
	tools.Logger = slog.New(slog.NewJSONHandler(&buf, nil))

	status := fail("open database failed", errors.New("disk I/O error"), "db", "clan.db")
	if status != subcommands.ExitFailure {
		t.Errorf("status = %v, want ExitFailure", status)
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "open database failed" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["error"] != "disk I/O error" {
		t.Errorf("error = %v, want disk I/O error", entry["error"])
	}
	if entry["db"] != "clan.db" {
		t.Errorf("db = %v, want clan.db", entry["db"])
	}
}

func TestPrintReportCancelled(t *testing.T) {
	var buf bytes.Buffer
	printReport(&buf, schema.Report{RunID: "run-2", Cancelled: true, Pending: []string{"A01_ClanInfo", "B01_PlayerLog"}})

	if !strings.Contains(buf.String(), "not reached: A01_ClanInfo, B01_PlayerLog") {
		t.Errorf("report missing pending tables:\n%s", buf.String())
	}
}
