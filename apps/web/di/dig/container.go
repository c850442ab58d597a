package dig_container

import (
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	echoweb "github.com/trezcool/masomo-web/apps/web/echo"
	"github.com/trezcool/masomo-web/core"
	"github.com/trezcool/masomo-web/core/gateway"
	"github.com/trezcool/masomo-web/core/identity"
	backendsvc "github.com/trezcool/masomo-web/services/backend"
	logsvc "github.com/trezcool/masomo-web/services/logger"
	sessionsvc "github.com/trezcool/masomo-web/services/session"
)

// SessionParam carries the session store and, with the redis driver, its client (nil otherwise).
type SessionParam struct {
	dig.Out
	Store core.SessionStore
	Redis *redis.Client
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "WEB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newValidator() *validator.Validate { return validator.New() }

func newMetricsRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

func newCaches(conf *core.Config, reg *prometheus.Registry) *gateway.Registry {
	return gateway.NewRegistry(backendsvc.NewClient(conf), gateway.RegistryOptions{
		Cache: gateway.Options{
			KeepUnusedFor: conf.Cache.KeepUnusedFor,
			Metrics:       gateway.NewMetrics(reg),
		},
		MaxSessions: conf.Cache.MaxSessions,
		IdleTTL:     conf.Cache.SessionIdleTTL,
	})
}

func newResolver(conf *core.Config, caches *gateway.Registry) *identity.Resolver {
	return identity.NewResolver(caches, conf.Identity.LoadingWait)
}

func newSessionStore(conf *core.Config) SessionParam {
	if conf.Session.Driver == core.SessionDriverRedis {
		client := redis.NewClient(&redis.Options{Addr: conf.Session.RedisAddr})
		return SessionParam{Store: sessionsvc.NewRedisStore(client, conf), Redis: client}
	}
	return SessionParam{Store: sessionsvc.NewCookieStore(conf)}
}

func newServer(
	conf *core.Config,
	logger core.Logger,
	sessions core.SessionStore,
	caches *gateway.Registry,
	resolver *identity.Resolver,
	validate *validator.Validate,
	translator ut.Translator,
) (*echoweb.Server, error) {
	return echoweb.NewServer(echoweb.ServerDeps{
		Conf:       conf,
		Logger:     logger,
		Sessions:   sessions,
		Caches:     caches,
		Resolver:   resolver,
		Validate:   validate,
		Translator: translator,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newValidator))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newMetricsRegistry))
	must(c.Provide(newCaches))
	must(c.Provide(newResolver))
	must(c.Provide(newSessionStore))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
