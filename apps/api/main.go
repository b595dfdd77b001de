package main

import (
	"context"
	"database/sql"
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

	echoapi "github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/apps/api/echo"
	"github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/core"
	"github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/core/evaluation"
	"github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/core/level"
	"github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/core/program"
	"github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/core/user"
	cachesvc "github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/services/cache"
	emailsvc "github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/services/email"
	logsvc "github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/services/logger"
	pdfsvc "github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/services/pdf"
	schedsvc "github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/services/scheduler"
	"github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/storage/database"
	sqlxrepos "github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()
	if err := conf.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

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
	dbx := sqlx.NewDb(db, conf.Database.Engine)

	// set up cache
	var cache core.Cache
	if conf.Redis.Enabled {
		cache = cachesvc.NewRedisCache(conf)
	} else {
		cache = cachesvc.NewMemoryCache()
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	plans, err := level.LoadPlans(conf.PlansDatasetPath)
	if err != nil {
		logger.Fatal(fmt.Sprintf("loading plans dataset: %v", err), err)
	}

	usrRepo := sqlxrepos.NewUserRepository(dbx)
	evalRepo := sqlxrepos.NewEvaluationRepository(dbx)
	lvlRepo := sqlxrepos.NewLevelRepository(dbx)

	usrSvc := user.NewService(conf, usrRepo, mailSvc)
	evalSvc := evaluation.NewService(conf, evalRepo, cache, mailSvc, logger)
	programSvc := program.NewService(sqlxrepos.NewProgramRepository(dbx), evalSvc, cache, logger)
	lvlSvc := level.NewService(lvlRepo, plans)
	pdfProxy := pdfsvc.NewProxy(logger)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	core.ParseEmailTemplates(conf, logger)

	user.LoadCommonPasswords(conf, logger)

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
	// Start Release Reminders

	reminder := schedsvc.NewReleaseReminder(evalRepo, lvlRepo, usrSvc, mailSvc, logger)
	reminder.Start()
	defer reminder.Stop()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			UserSvc:    usrSvc,
			ProgramSvc: programSvc,
			EvalSvc:    evalSvc,
			LevelSvc:   lvlSvc,
			PDFSvc:     pdfProxy,
			Validate:   validate,
			Translator: translator,
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

func setUpDB(conf *core.Config) (*sql.DB, error) {
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
	return db, nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
