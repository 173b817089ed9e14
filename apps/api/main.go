package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/trezcool/ustawi/apps/api/echo"
	"github.com/trezcool/ustawi/core"
	"github.com/trezcool/ustawi/core/bri"
	emailsvc "github.com/trezcool/ustawi/services/email"
	logsvc "github.com/trezcool/ustawi/services/logger"
	"github.com/trezcool/ustawi/storage/database"
	sqlxrepos "github.com/trezcool/ustawi/storage/database/sqlx"
)

// defaultWeightConfig seeds a fresh deployment so scoring works out of the box.
var defaultWeightConfig = bri.WeightConfig{
	AttendanceWeight:  0.25,
	MarksWeight:       0.25,
	AssignmentsWeight: 0.20,
	SentimentWeight:   0.30,
	LowRiskThreshold:  0.33,
	HighRiskThreshold: 0.66,
}

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// set up repositories
	stdRepo := sqlxrepos.NewStudentRepository(db)
	acaRepo := sqlxrepos.NewAcademicsRepository(db)
	sentRepo := sqlxrepos.NewSentimentRepository(db)
	cfgRepo := sqlxrepos.NewConfigRepository(db)
	snapRepo := sqlxrepos.NewSnapshotRepository(db)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	agg := bri.NewAggregator(acaRepo, sentRepo, conf.BRI.ReadTimeout)
	briSvc := bri.NewService(conf, logger, stdRepo, cfgRepo, snapRepo, agg, mailSvc)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	bri.InitValidators(validate, translator)

	if err = seedWeightConfig(briSvc); err != nil {
		logger.Fatal(fmt.Sprintf("seeding weight config: %v", err), err)
	}

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err = http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:          conf,
			Logger:        logger,
			BRISvc:        briSvc,
			SentimentRepo: sentRepo,
			Validate:      validate,
			Translator:    translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return sqlx.NewDb(db, conf.Database.Engine), nil
}

func seedWeightConfig(svc *bri.Service) error {
	ctx := context.Background()
	if _, err := svc.ActiveConfig(ctx); err == nil {
		return nil
	} else if err != bri.ErrConfigNotFound {
		return err
	}
	_, err := svc.SeedConfig(ctx, defaultWeightConfig)
	return err
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
