package main

import (
	"fmt"
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	echoweb "github.com/trezcool/masomo-web/apps/web/echo"
	"github.com/trezcool/masomo-web/core"
	"github.com/trezcool/masomo-web/core/gateway"
	"github.com/trezcool/masomo-web/core/identity"
	"github.com/trezcool/masomo-web/core/school"
	"github.com/trezcool/masomo-web/core/user"
	backendsvc "github.com/trezcool/masomo-web/services/backend"
	logsvc "github.com/trezcool/masomo-web/services/logger"
	sessionsvc "github.com/trezcool/masomo-web/services/session"
)

func startManual() {
	// =========================================================================
	// Set up Dependencies

	conf, err := core.NewConfig()
	must(err)

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "WEB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// set up the gateway
	caches := gateway.NewRegistry(backendsvc.NewClient(conf), gateway.RegistryOptions{
		Cache: gateway.Options{
			KeepUnusedFor: conf.Cache.KeepUnusedFor,
			Metrics:       gateway.NewMetrics(reg),
		},
		MaxSessions: conf.Cache.MaxSessions,
		IdleTTL:     conf.Cache.SessionIdleTTL,
	})
	resolver := identity.NewResolver(caches, conf.Identity.LoadingWait)

	// set up sessions
	var sessions core.SessionStore
	var rdb *redis.Client
	if conf.Session.Driver == core.SessionDriverRedis {
		rdb = redis.NewClient(&redis.Options{Addr: conf.Session.RedisAddr})
		sessions = sessionsvc.NewRedisStore(rdb, conf)
	} else {
		sessions = sessionsvc.NewCookieStore(conf)
	}

	// =========================================================================
	// Initialize App

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	school.InitValidators(validate, translator)

	server, err := echoweb.NewServer(
		echoweb.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			Sessions:   sessions,
			Caches:     caches,
			Resolver:   resolver,
			Validate:   validate,
			Translator: translator,
		},
	)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up server: %v", err), err)
	}

	run(conf, logger, reg, rdb, server)
}
