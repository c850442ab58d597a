package echoweb

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/trezcool/masomo-web/core"
	"github.com/trezcool/masomo-web/core/gateway"
	"github.com/trezcool/masomo-web/core/identity"
	"github.com/trezcool/masomo-web/core/navigation"
)

const signInBurst = 5

type (
	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		Sessions   core.SessionStore
		Caches     *gateway.Registry
		Resolver   *identity.Resolver
		Validate   *validator.Validate
		Translator ut.Translator
	}

	Server struct {
		app      *echo.Echo
		addr     string
		errors   chan error
		shutdown chan os.Signal
	}

	// handler holds what the pages need to serve a request.
	handler struct {
		conf       *core.Config
		logger     core.Logger
		sessions   core.SessionStore
		caches     *gateway.Registry
		resolver   *identity.Resolver
		validate   *validator.Validate
		translator ut.Translator
		now        func() time.Time
	}
)

func NewServer(deps ServerDeps) (*Server, error) {
	r, err := newRenderer()
	if err != nil {
		return nil, errors.Wrap(err, "parsing templates")
	}

	s := &Server{
		app:      echo.New(),
		addr:     deps.Conf.Server.Addr,
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)

	h := &handler{
		conf:       deps.Conf,
		logger:     deps.Logger,
		sessions:   deps.Sessions,
		caches:     deps.Caches,
		resolver:   deps.Resolver,
		validate:   deps.Validate,
		translator: deps.Translator,
		now:        time.Now,
	}
	s.setup(h, r)
	return s, nil
}

func (s *Server) setup(h *handler, r *renderer) {
	conf := h.conf

	s.app.HideBanner = true
	s.app.Debug = conf.Debug
	s.app.Renderer = r
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(h, s.signalShutdown)
	s.app.Server.ReadTimeout = conf.Server.ReadTimeout
	s.app.Server.WriteTimeout = conf.Server.WriteTimeout
	if conf.Debug {
		s.app.Logger.SetLevel(log.DEBUG)
	} else {
		s.app.Logger.SetLevel(log.INFO)
	}

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.Secure())
	s.app.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLookup:    "form:" + csrfField,
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSecure:   conf.Session.Secure,
		CookieSameSite: http.SameSiteLaxMode,
	}))
	s.app.Use(h.identityGate, h.roleGuard)

	signInLimiter := noopMiddleware
	if conf.Web.SignInRateLimit > 0 {
		signInLimiter = middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(conf.Web.SignInRateLimit),
				Burst:     signInBurst,
				ExpiresIn: 3 * time.Minute,
			},
		))
	}

	registerAuthPages(s.app, h, signInLimiter)
	registerCoursePages(s.app, h)
	registerAdminPages(s.app, h)
	registerTeacherPages(s.app, h)
	registerStudentPages(s.app, h)
	registerParentPages(s.app, h)
	registerAccountantPages(s.app, h)
}

// Start listens on the configured address; the server error, if any, is sent to Errors.
func (s *Server) Start() {
	if err := s.app.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error { return s.errors }

func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

func (s *Server) Shutdown(ctx context.Context) error { return s.app.Shutdown(ctx) }

func (s *Server) Close() error { return s.app.Close() }

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func noopMiddleware(next echo.HandlerFunc) echo.HandlerFunc { return next }

// route registers the GET (and POST when set) handlers of a page.
func route(app *echo.Echo, r navigation.Route, get, post echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	app.GET(r.Pattern, get)
	if post != nil {
		app.POST(r.Pattern, post, m...)
	}
}
