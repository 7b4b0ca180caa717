package main

import (
	"context"
	"expvar"
	"fmt"
	"net/http"
	_ "net/http/pprof"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	echoapi "github.com/trezcool/academy/apps/api/echo"
	"github.com/trezcool/academy/core"
	"github.com/trezcool/academy/core/academy"
	"github.com/trezcool/academy/core/payment"
	"github.com/trezcool/academy/core/player"
	"github.com/trezcool/academy/core/registration"
	"github.com/trezcool/academy/core/schedule"
	"github.com/trezcool/academy/core/user"
	appfs "github.com/trezcool/academy/fs"
	"github.com/trezcool/academy/services/email"
	"github.com/trezcool/academy/services/logger"
	"github.com/trezcool/academy/services/paypal"
	"github.com/trezcool/academy/services/session"
	"github.com/trezcool/academy/storage/database"
	"github.com/trezcool/academy/storage/database/inmem"
	"github.com/trezcool/academy/storage/database/sqlx"
)

type repositories struct {
	db            core.Pinger
	users         user.Repository
	registrations registration.Repository
	sessions      schedule.Repository
	players       player.Repository
	payments      payment.Repository
	academies     academy.Repository
	close         func() error
}

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	local, err := logsvc.NewLocalLogger(conf)
	if err != nil {
		panic(fmt.Sprintf("setting up local logger: %v", err))
	}
	logger := logsvc.NewRollbarLogger(local.Named("api"), conf)
	logger.Enable(!conf.Debug)
	defer logger.Sync()

	dbLogger := logsvc.NewRollbarLogger(local.Named("db"), conf)
	dbLogger.Enable(!conf.Debug)

	repos, err := setUpRepositories(conf, dbLogger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = repos.close(); err != nil {
			dbLogger.Error("Failed to close", err)
		}
	}()

	sessions, err := setUpSessionStore(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up session store: %v", err), err)
	}

	tmpls, err := core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("parsing email templates: %v", err), err)
	}
	mailSvc := emailsvc.NewService(conf, tmpls, logger)

	// a nil *paypalsvc.Client must not end up inside the interface
	var gateway payment.Gateway
	if client := paypalsvc.NewClient(conf); client != nil {
		gateway = client
	} else {
		logger.Warn("PayPal is not configured: only manual payments are available")
	}

	usrSvc := user.NewService(repos.users, mailSvc, conf)
	playerSvc := player.NewService(repos.players, usrSvc)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	user.LoadCommonPasswords(appfs.FS, appfs.CommonPasswords, logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:       conf,
		Logger:     logger,
		Validate:   validate,
		Translator: translator,
		DB:         repos.db,
		Sessions:   sessions,

		UserSvc:         usrSvc,
		RegistrationSvc: registration.NewService(repos.registrations, usrSvc, mailSvc, conf, logger),
		ScheduleSvc:     schedule.NewService(repos.sessions, usrSvc),
		PlayerSvc:       playerSvc,
		PaymentSvc:      payment.NewService(repos.payments, gateway, playerSvc, logger),
		AcademySvc:      academy.NewService(repos.academies),
	})

	go server.Start()

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

		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

// setUpRepositories opens & migrates Postgres when a database URL is configured.
// Without one, data lives in memory and is lost on restart.
func setUpRepositories(conf *core.Config, logger core.Logger) (*repositories, error) {
	if conf.Database.URL == "" {
		logger.Warn("DATABASE_URL is not set: using the in-memory store")
		db := inmemdb.Open()
		return &repositories{
			db:            db,
			users:         inmemdb.NewUserRepository(db),
			registrations: inmemdb.NewRegistrationRepository(db),
			sessions:      inmemdb.NewSessionRepository(db),
			players:       inmemdb.NewPlayerRepository(db),
			payments:      inmemdb.NewPaymentRepository(db),
			academies:     inmemdb.NewAcademyRepository(db),
			close:         func() error { return nil },
		}, nil
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}
	if err = database.Migrate(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &repositories{
		db:            db,
		users:         sqlxrepos.NewUserRepository(db),
		registrations: sqlxrepos.NewRegistrationRepository(db, logger),
		sessions:      sqlxrepos.NewSessionRepository(db),
		players:       sqlxrepos.NewPlayerRepository(db),
		payments:      sqlxrepos.NewPaymentRepository(db),
		academies:     sqlxrepos.NewAcademyRepository(db),
		close:         db.Close,
	}, nil
}

func setUpSessionStore(conf *core.Config) (sessionsvc.Store, error) {
	if conf.Redis.URL == "" {
		return sessionsvc.NewMemoryStore(conf.Server.SessionTTL), nil
	}
	store, err := sessionsvc.NewRedisStore(conf.Redis.URL, conf.Server.SessionTTL)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to redis")
	}
	return store, nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
