package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"

	"github.com/trezcool/ustawi/core/bri"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db     *sql.DB
	briSvc *bri.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [args] - manage database migrations (up, down, status, ...)")
	fmt.Println("  sweep - recompute the BRI of every student")
	fmt.Println("  recompute -student ID - recompute one student's BRI")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	recomputeCmd := flag.NewFlagSet("recompute", flag.ExitOnError)
	recomputeStudent := recomputeCmd.String("student", "", "The student's ID.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "sweep":
		return cli.sweep()
	case "recompute":
		if err := recomputeCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *recomputeStudent == "" {
			recomputeCmd.Usage()
			return errHelp
		}
		return cli.recompute(*recomputeStudent)
	default:
		cli.printUsage()
		return errHelp
	}
}
