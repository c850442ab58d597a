package main

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	dig_container "github.com/trezcool/masomo-web/apps/web/di/dig"
	echoweb "github.com/trezcool/masomo-web/apps/web/echo"
	"github.com/trezcool/masomo-web/core"
	"github.com/trezcool/masomo-web/core/school"
	"github.com/trezcool/masomo-web/core/user"
)

type appParams struct {
	dig.In

	Conf       *core.Config
	Logger     core.Logger
	Metrics    *prometheus.Registry
	Redis      *redis.Client `optional:"true"`
	Validate   *validator.Validate
	Translator ut.Translator
}

func startWithDig() {
	c := dig_container.New()

	// validators are registered before the server parses a single form
	must(c.Invoke(func(p appParams) {
		core.InitValidators(p.Validate, p.Translator)
		user.InitValidators(p.Validate, p.Translator)
		school.InitValidators(p.Validate, p.Translator)
	}))

	must(c.Invoke(func(p appParams, server *echoweb.Server) {
		run(p.Conf, p.Logger, p.Metrics, p.Redis, server)
	}))
}
