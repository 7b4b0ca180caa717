package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/academy/core"
	"github.com/trezcool/academy/core/academy"
	"github.com/trezcool/academy/core/payment"
	"github.com/trezcool/academy/core/player"
	"github.com/trezcool/academy/core/registration"
	"github.com/trezcool/academy/core/schedule"
	"github.com/trezcool/academy/core/user"
	"github.com/trezcool/academy/services/session"
)

type (
	ServerDeps struct {
		Conf           *core.Config
		Logger         core.Logger
		Validate       *validator.Validate
		Translator     ut.Translator
		DB             core.Pinger
		Sessions       sessionsvc.Store
		DisableReqLogs bool

		UserSvc         user.ServiceInterface
		RegistrationSvc registration.ServiceInterface
		ScheduleSvc     schedule.ServiceInterface
		PlayerSvc       player.ServiceInterface
		PaymentSvc      payment.ServiceInterface
		AcademySvc      academy.ServiceInterface
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = s.appHTTPErrorHandler
	s.app.Debug = conf.Debug && !conf.TestMode

	s.app.GET("/", s.home)

	g := s.app.Group("/api", s.sessionMiddleware)
	auth := authRequired
	admin := roleRequired(user.RoleAdmin)

	registerHealthAPI(g, s.deps.DB, conf)
	registerAuthAPI(g, auth, s.deps.UserSvc, s.deps.Sessions, conf, s.deps.Validate, s.deps.Logger)
	registerUserAPI(g, auth, admin, s.deps.UserSvc, s.deps.Validate)
	registerRegistrationAPI(g, auth, admin, s.deps.RegistrationSvc, conf, s.deps.Validate)
	registerScheduleAPI(g, auth, s.deps.ScheduleSvc, s.deps.Validate)
	registerPlayerAPI(g, auth, s.deps.PlayerSvc, s.deps.Validate)
	registerPaymentAPI(g, auth, admin, s.deps.PaymentSvc, s.deps.Validate)
	registerCoachAPI(g, auth, s.deps.UserSvc, s.deps.ScheduleSvc)
	registerAcademyAPI(g, auth, s.deps.AcademySvc, s.deps.Validate)
}

// Start blocks until the server stops. Errors other than a graceful close are sent to Errors().
func (s *Server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Host); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already signaled
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to the "+s.deps.Conf.AppName+" API!")
}
