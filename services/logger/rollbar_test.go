package logsvc

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/masomo-web/core"
	"github.com/trezcool/masomo-web/core/gateway"
	"github.com/trezcool/masomo-web/core/user"
)

func TestRollbarLogger(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := NewRollbarLogger(log.New(buf, "", 0), &core.Config{Env: "TEST"})
	logger.Enable(false)

	me := &user.Me{UserID: 9, FirstName: "Ada", Email: "ada@school.io"}
	logger.Error("backend call failed", fmt.Errorf("boom"), me, map[string]interface{}{"path": "/"})

	assert.Equal(t, "backend call failed\nboom\nmap[path:/]\n", buf.String())
	assert.NotContains(t, buf.String(), "ada@school.io", "the person is not printed")
}

func TestRollbarLogger_prepare(t *testing.T) {
	logger := RollbarLogger{}
	me := user.Me{UserID: 9}

	args := logger.prepare("msg", []interface{}{me, errors.New("boom"), &me})
	assert.Len(t, args, 2, "users are sent as the rollbar person, not as data")
	assert.Equal(t, "msg", args[0])
}

func TestRollbarLogger_prepareExtras(t *testing.T) {
	logger := RollbarLogger{}
	backendErr := errors.Wrap(&gateway.Error{Status: http.StatusBadGateway, Message: "down"}, "reading courses")

	args := logger.prepare("msg", []interface{}{
		backendErr,
		map[string]interface{}{"path": "/teacher/lessons"},
		map[string]interface{}{"query": "getCoursesByTeacher"},
	})
	if assert.Len(t, args, 3) {
		assert.Equal(t, backendErr, args[1])
		assert.Equal(t, map[string]interface{}{
			"path":           "/teacher/lessons",
			"query":          "getCoursesByTeacher",
			"backend_status": http.StatusBadGateway,
		}, args[2])
	}
}

func TestRollbarLogger_printRequest(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := NewRollbarLogger(log.New(buf, "", 0), &core.Config{Env: "TEST"})
	logger.Enable(false)

	logger.Warn("slow page", httptest.NewRequest(http.MethodGet, "/parents/payments?student_id=3", nil))
	assert.Equal(t, "slow page\nGET /parents/payments\n", buf.String())
}
