package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// Request describes one call to the school backend.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   interface{}
}

// Transport performs Requests against the backend, decoding the JSON response into `out`.
// A non-empty token is attached as a bearer credential; requests are otherwise anonymous.
// Failures are reported as *Error.
type Transport interface {
	Do(ctx context.Context, token string, req Request, out interface{}) error
}

// fingerprint identifies a read: name, method, path, sorted query and body (for reads carried by POST).
func (r Request) fingerprint(name string) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(r.Method)
	b.WriteByte(' ')
	b.WriteString(r.Path)
	if q := r.Query.Encode(); q != "" { // Encode sorts by key
		b.WriteByte('?')
		b.WriteString(q)
	}
	if r.Body != nil {
		if data, err := json.Marshal(r.Body); err == nil {
			b.WriteByte(' ')
			b.Write(data)
		}
	}
	return b.String()
}

// Error is the structured error surfaced to callers for network and HTTP failures.
type Error struct {
	Status  int               // 0 for network errors
	Message string
	Fields  map[string]string // per-field messages sent by the backend, if any
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Status != 0 {
		msg = http.StatusText(e.Status)
	}
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("backend: %d %s", e.Status, msg)
	}
	return "backend: " + msg
}

func (e *Error) Unwrap() error { return e.Err }

// IsUnauthorized reports whether err is an authorization failure from the backend.
func IsUnauthorized(err error) bool {
	var gErr *Error
	return errors.As(err, &gErr) && gErr.Status == http.StatusUnauthorized
}

// AsError returns the *Error within err's chain, wrapping any other error as a network error.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var gErr *Error
	if errors.As(err, &gErr) {
		return gErr
	}
	return &Error{Message: err.Error(), Err: err}
}
