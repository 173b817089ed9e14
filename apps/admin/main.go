package main

import (
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/ustawi/core"
	"github.com/trezcool/ustawi/core/bri"
	emailsvc "github.com/trezcool/ustawi/services/email"
	logsvc "github.com/trezcool/ustawi/services/logger"
	"github.com/trezcool/ustawi/storage/database"
	sqlxrepos "github.com/trezcool/ustawi/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	svcLogger := logsvc.NewRollbarLogger(logger, conf)
	svcLogger.Enable(!conf.Debug)

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())

	sdb := sqlx.NewDb(db, conf.Database.Engine)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, svcLogger)
	}
	agg := bri.NewAggregator(
		sqlxrepos.NewAcademicsRepository(sdb),
		sqlxrepos.NewSentimentRepository(sdb),
		conf.BRI.ReadTimeout,
	)
	briSvc := bri.NewService(
		conf,
		svcLogger,
		sqlxrepos.NewStudentRepository(sdb),
		sqlxrepos.NewConfigRepository(sdb),
		sqlxrepos.NewSnapshotRepository(sdb),
		agg,
		mailSvc,
	)

	// start CLI
	cli := commandLine{
		db:     db,
		briSvc: briSvc,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
