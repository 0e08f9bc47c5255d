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
	"go.uber.org/dig"

	"github.com/ilmhub/ilm/core"
	"github.com/ilmhub/ilm/core/activity"
	"github.com/ilmhub/ilm/core/calendar"
	"github.com/ilmhub/ilm/core/content"
	"github.com/ilmhub/ilm/core/event"
	"github.com/ilmhub/ilm/core/forum"
	"github.com/ilmhub/ilm/core/graph"
	"github.com/ilmhub/ilm/core/group"
	"github.com/ilmhub/ilm/core/hadith"
	"github.com/ilmhub/ilm/core/job"
	"github.com/ilmhub/ilm/core/quiz"
	"github.com/ilmhub/ilm/core/user"
)

type (
	// ServerDeps is filled by dig. Tests build it by hand.
	ServerDeps struct {
		dig.In

		Conf       *core.Config
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator
		Calendar   calendar.Converter

		UserSvc     user.Service
		EventSvc    event.Service
		JobSvc      job.Service
		GroupSvc    group.Service
		ContentSvc  content.Service
		ActivitySvc activity.Service
		QuizSvc     quiz.Service
		HadithSvc   hadith.Service
		ForumSvc    forum.Service
		GraphSvc    graph.Service
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		auth     *authenticator
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ http.Handler = (*Server)(nil)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		auth:     newAuthenticator(deps.Conf, deps.UserSvc),
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
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	mw := middlewares{
		jwt:         s.auth.jwt(false),
		optionalJWT: s.auth.jwt(true),
		limiter:     newIPRateLimiter(conf.Server.RateLimitRPS, conf.Server.RateLimitBurst, conf.Server.TrustProxy).middleware(),
		auth:        s.auth,
	}

	registerUserAPI(v1, mw, s.deps.UserSvc, s.deps.Validate)
	registerEventAPI(v1, mw, s.deps.EventSvc, s.deps.Validate)
	registerJobAPI(v1, mw, s.deps.JobSvc, s.deps.Validate)
	registerGroupAPI(v1, mw, s.deps.GroupSvc, s.deps.Validate)
	registerContentAPI(v1, mw, s.deps.ContentSvc, s.deps.Validate)
	registerActivityAPI(v1, mw, s.deps.ActivitySvc)
	registerQuizAPI(v1, mw, s.deps.QuizSvc, s.deps.Validate)
	registerHadithAPI(v1, mw, s.deps.HadithSvc, s.deps.ActivitySvc, s.deps.Validate)
	registerForumAPI(v1, mw, s.deps.ForumSvc, s.deps.Validate)
	registerCalendarAPI(v1, s.deps.Calendar)
	registerGraphAPI(v1, mw, s.deps.GraphSvc)
}

// Start blocks until the server stops. Errors other than a normal close go to Errors().
func (s *Server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
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
	default:
	}
}

// GenerateToken signs a token for usr. Used by the admin CLI and tests.
func (s *Server) GenerateToken(usr user.User) (string, error) {
	return s.auth.generateToken(s.auth.userClaims(usr))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Ilm API!")
}
