package logsvc

import (
	"log"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
	"github.com/rollbar/rollbar-go"
	rollbarerrors "github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/masomo-web/core"
	"github.com/trezcool/masomo-web/core/gateway"
	"github.com/trezcool/masomo-web/core/user"
)

// RollbarLogger prints to a std logger and reports to Rollbar (when enabled).
type RollbarLogger struct {
	std *log.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(rollbarerrors.StackTracer)
	return &RollbarLogger{std: std}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// prepare builds the rollbar arguments.
// expected fmt: msg | error, *http.Request, map[string]interface{}, *user.Me
//
// The signed-in user becomes the rollbar person. Extra maps are merged into one,
// along with the status of any backend error.
func (l RollbarLogger) prepare(msg string, args []interface{}) []interface{} {
	var usr *user.Me
	var extras map[string]interface{}
	addExtra := func(k string, v interface{}) {
		if extras == nil {
			extras = make(map[string]interface{})
		}
		extras[k] = v
	}

	newArgs := make([]interface{}, 0, len(args)+2)
	newArgs = append(newArgs, msg)
	for _, arg := range args {
		switch v := arg.(type) {
		case *user.Me:
			if usr == nil {
				usr = v
			}
		case user.Me:
			if usr == nil {
				usr = &v
			}
		case map[string]interface{}:
			for k, val := range v {
				addExtra(k, val)
			}
		case error:
			var gErr *gateway.Error
			if errors.As(v, &gErr) {
				addExtra("backend_status", gErr.Status)
			}
			newArgs = append(newArgs, v)
		default:
			newArgs = append(newArgs, arg)
		}
	}

	if usr != nil {
		rollbar.SetPerson(strconv.Itoa(usr.UserID), usr.FullName(), usr.Email)
	} else {
		rollbar.ClearPerson()
	}
	if extras != nil {
		newArgs = append(newArgs, extras)
	}
	return newArgs
}

func (l RollbarLogger) print(msg string, args []interface{}) {
	l.std.Println(msg)
	for _, arg := range args {
		switch v := arg.(type) {
		case *user.Me, user.Me:
			continue
		case *http.Request:
			l.std.Printf("%s %s\n", v.Method, v.URL.Path)
		default:
			l.std.Printf("%+v\n", arg)
		}
	}
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	rollbar.Debug(l.prepare(msg, args)...)
	l.print(msg, args)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	rollbar.Info(l.prepare(msg, args)...)
	l.print(msg, args)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	rollbar.Warning(l.prepare(msg, args)...)
	l.print(msg, args)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	rollbar.Error(l.prepare(msg, args)...)
	l.print(msg, args)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	rollbar.Critical(l.prepare(msg, args)...)
	l.print(msg, args)
	l.std.Fatal(msg)
}
