package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/trezcool/ustawi/core"
	"github.com/trezcool/ustawi/core/bri"
	dummydb "github.com/trezcool/ustawi/storage/database/dummy"
	testutil "github.com/trezcool/ustawi/tests"
)

type testLogger struct{}

func (testLogger) Debug(msg string, args ...interface{}) {}
func (testLogger) Info(msg string, args ...interface{})  {}
func (testLogger) Warn(msg string, args ...interface{})  {}
func (testLogger) Error(msg string, args ...interface{}) {}
func (testLogger) Fatal(msg string, args ...interface{}) { log.New(os.Stderr, "", 0).Fatal(msg) }

func setup(t *testing.T) (*commandLine, *dummydb.DB) {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}

	conf := &core.Config{
		TestMode: true,
		BRI: core.BRIConfig{
			SweepWorkers: 2,
			ReadTimeout:  time.Second,
		},
	}
	agg := bri.NewAggregator(
		dummydb.NewAcademicsRepository(db),
		dummydb.NewSentimentRepository(db),
		conf.BRI.ReadTimeout,
	)
	briSvc := bri.NewService(
		conf,
		testLogger{},
		dummydb.NewStudentRepository(db),
		dummydb.NewConfigRepository(db),
		dummydb.NewSnapshotRepository(db),
		agg,
		nil,
	)

	return &commandLine{briSvc: briSvc}, db
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, fsys fs.FS, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "down-to":
			if len(args) == 0 {
				return fmt.Errorf("down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_sweep(t *testing.T) {
	cli, db := setup(t)

	stdRepo := dummydb.NewStudentRepository(db)
	testutil.DefaultWeightConfig(t, dummydb.NewConfigRepository(db))
	std1 := testutil.CreateStudent(t, stdRepo, "Amani Otieno", "S5 MCB")
	std2 := testutil.CreateStudent(t, stdRepo, "Neema Abalo", "S5 MCB")

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "sweep all", args: []string{"sweep"}},
		{name: "recompute without student", args: []string{"recompute"}, wantErr: errHelp},
		{name: "recompute one", args: []string{"recompute", "-student", std1.ID}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
		})
	}

	// both students have a current BRI after the sweep
	for _, std := range []string{std1.ID, std2.ID} {
		refreshed, err := stdRepo.GetStudentByID(context.Background(), std)
		if err != nil {
			t.Fatalf("GetStudentByID() failed: %v", err)
		}
		if refreshed.CurrentBRI == nil {
			t.Errorf("student %s has no current BRI after sweep", std)
		}
	}
}
