// Package school declares the typed contracts of the school REST backend: request inputs with
// their validation rules, response shapes, and the gateway reads and mutations over them.
package school

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/trezcool/masomo-web/core"
	"github.com/trezcool/masomo-web/core/gateway"
)

// PersonRef is a user embedded in another resource (teacher, student, curator...).
type PersonRef struct {
	ID             int    `json:"id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Patronym       string `json:"patronym,omitempty"`
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Specialization string `json:"specialization,omitempty"`
	GroupID        int    `json:"group_id,omitempty"`
}

func (p *PersonRef) FullName() string {
	if p == nil {
		return ""
	}
	return core.FullName(p.FirstName, p.LastName, p.Patronym)
}

// CourseRef is a course embedded in another resource.
type CourseRef struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	TeacherID   int    `json:"teacher_id,omitempty"`
	CourseID    int    `json:"course_id,omitempty"`
}

// Day returns the date part of an ISO timestamp ("2024-09-01T00:00:00Z" -> "2024-09-01").
func Day(ts string) string {
	if len(ts) >= len(core.DateLayout) {
		return ts[:len(core.DateLayout)]
	}
	return ts
}

// query builds the query string of a read, skipping unset values.
type query struct {
	url.Values
}

func newQuery() query { return query{url.Values{}} }

func (q query) int(key string, v int) query {
	if v > 0 {
		q.Set(key, strconv.Itoa(v))
	}
	return q
}

func (q query) str(key, v string) query {
	if v != "" {
		q.Set(key, v)
	}
	return q
}

func (q query) bool(key string, v *bool) query {
	if v != nil {
		q.Set(key, strconv.FormatBool(*v))
	}
	return q
}

func get(path string, q query) gateway.Request {
	return gateway.Request{Method: http.MethodGet, Path: path, Query: q.Values}
}

func send(method, path string, body interface{}) gateway.Request {
	return gateway.Request{Method: method, Path: path, Body: body}
}

func pathf(format string, args ...interface{}) string {
	return fmt.Sprintf(format, args...)
}

func tags(t ...gateway.Tag) []gateway.Tag { return t }
