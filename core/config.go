package core

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	SessionDriverCookie = "cookie"
	SessionDriverRedis  = "redis"
)

type (
	Config struct {
		AppName   string
		Env       string // DEV (local; default), TEST, QA, PROD
		Build     string
		Debug     bool
		TestMode  bool
		SecretKey string

		Server   ServerConfig
		Backend  BackendConfig
		Session  SessionConfig
		Cache    CacheConfig
		Identity IdentityConfig
		Web      WebConfig

		RollbarToken string
	}

	ServerConfig struct {
		Addr            string
		DebugAddr       string
		Host            string
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		ShutdownTimeout time.Duration
		DisableReqLogs  bool
	}

	BackendConfig struct {
		BaseURL string
		Timeout time.Duration // 0: rely on the transport's own timeouts
	}

	SessionConfig struct {
		Driver     string // cookie | redis
		CookieName string
		TTL        time.Duration
		Secure     bool
		RedisAddr  string
	}

	CacheConfig struct {
		KeepUnusedFor  time.Duration
		MaxSessions    int
		SessionIdleTTL time.Duration
	}

	IdentityConfig struct {
		LoadingWait time.Duration
	}

	WebConfig struct {
		EnforceRoleRoutes bool
		SignInRateLimit   float64 // requests per second, per client IP
	}
)

// NewConfig loads the configuration from defaults, `config/.env.<env>` (if it exists) and the environment.
// Environment variables are prefixed with the current env, eg. `DEV_BACKEND_BASEURL`.
func NewConfig() (*Config, error) {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("appName", "Masomo")
	conf.SetDefault("build", "develop")
	conf.SetDefault("debug", true)
	conf.SetDefault("testMode", false)
	conf.SetDefault("secretKey", "poq5-wer)enb$+57=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	conf.SetDefault("rollbarToken", "")

	conf.SetDefault("server.addr", ":8000")
	conf.SetDefault("server.debugAddr", ":4000")
	conf.SetDefault("server.host", "localhost")
	conf.SetDefault("server.readTimeout", 15*time.Second)
	conf.SetDefault("server.writeTimeout", 30*time.Second)
	conf.SetDefault("server.shutdownTimeout", 10*time.Second)
	conf.SetDefault("server.disableReqLogs", false)

	conf.SetDefault("backend.baseURL", "http://localhost:3000")
	conf.SetDefault("backend.timeout", time.Duration(0))

	conf.SetDefault("session.driver", SessionDriverCookie)
	conf.SetDefault("session.cookieName", "access")
	conf.SetDefault("session.ttl", 7*24*time.Hour)
	conf.SetDefault("session.secure", false)
	conf.SetDefault("session.redisAddr", "127.0.0.1:6379")

	conf.SetDefault("cache.keepUnusedFor", 60*time.Second)
	conf.SetDefault("cache.maxSessions", 10000)
	conf.SetDefault("cache.sessionIdleTTL", 30*time.Minute)

	conf.SetDefault("identity.loadingWait", 3*time.Second)

	conf.SetDefault("web.enforceRoleRoutes", false)
	conf.SetDefault("web.signInRateLimit", 1.0)

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	case "PROD":
		conf.SetDefault("debug", false)
		conf.SetDefault("session.secure", true)
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	if root, err := projectRoot(); err == nil {
		dotEnvPath := filepath.Join(root, "config", ".env."+strings.ToLower(env))
		if _, err := os.Stat(dotEnvPath); err == nil {
			if err := godotenv.Load(dotEnvPath); err != nil {
				return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
			}
		} else if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "stat %s", dotEnvPath)
		}
	}
	conf.AutomaticEnv()

	c := &Config{
		AppName:   conf.GetString("appName"),
		Env:       env,
		Build:     conf.GetString("build"),
		Debug:     conf.GetBool("debug"),
		TestMode:  conf.GetBool("testMode"),
		SecretKey: conf.GetString("secretKey"),
		Server: ServerConfig{
			Addr:            conf.GetString("server.addr"),
			DebugAddr:       conf.GetString("server.debugAddr"),
			Host:            conf.GetString("server.host"),
			ReadTimeout:     conf.GetDuration("server.readTimeout"),
			WriteTimeout:    conf.GetDuration("server.writeTimeout"),
			ShutdownTimeout: conf.GetDuration("server.shutdownTimeout"),
			DisableReqLogs:  conf.GetBool("server.disableReqLogs"),
		},
		Backend: BackendConfig{
			BaseURL: strings.TrimRight(conf.GetString("backend.baseURL"), "/"),
			Timeout: conf.GetDuration("backend.timeout"),
		},
		Session: SessionConfig{
			Driver:     conf.GetString("session.driver"),
			CookieName: conf.GetString("session.cookieName"),
			TTL:        conf.GetDuration("session.ttl"),
			Secure:     conf.GetBool("session.secure"),
			RedisAddr:  conf.GetString("session.redisAddr"),
		},
		Cache: CacheConfig{
			KeepUnusedFor:  conf.GetDuration("cache.keepUnusedFor"),
			MaxSessions:    conf.GetInt("cache.maxSessions"),
			SessionIdleTTL: conf.GetDuration("cache.sessionIdleTTL"),
		},
		Identity: IdentityConfig{
			LoadingWait: conf.GetDuration("identity.loadingWait"),
		},
		Web: WebConfig{
			EnforceRoleRoutes: conf.GetBool("web.enforceRoleRoutes"),
			SignInRateLimit:   conf.GetFloat64("web.signInRateLimit"),
		},
		RollbarToken: conf.GetString("rollbarToken"),
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) validate() error {
	if c.Backend.BaseURL == "" {
		return errors.New("config: backend.baseURL is required")
	}
	switch c.Session.Driver {
	case SessionDriverCookie, SessionDriverRedis:
	default:
		return errors.Errorf("config: unknown session.driver %q", c.Session.Driver)
	}
	if c.Session.CookieName == "" {
		return errors.New("config: session.cookieName is required")
	}
	if !c.Debug && !c.TestMode && len(c.SecretKey) < 32 {
		return errors.New("config: secretKey must be at least 32 characters")
	}
	return nil
}

// projectRoot walks up from the working directory to the directory holding go.mod.
// go test changes the working directory to the package being tested.
func projectRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	dir := wd
	for {
		if fi, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil && !fi.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return wd, nil
		}
		dir = parent
	}
}
