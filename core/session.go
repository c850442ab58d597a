package core

import "net/http"

// SessionStore holds the Session Token of a browser session.
// An empty token with a nil error means the session is unauthenticated.
type SessionStore interface {
	Token(r *http.Request) (string, error)
	// SetToken stores the token. persistent tokens survive browser restarts,
	// the others die with the browser session.
	SetToken(w http.ResponseWriter, r *http.Request, token string, persistent bool) error
	Clear(w http.ResponseWriter, r *http.Request) error
}
