package sessionsvc

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/crypto/nacl/secretbox"

	"github.com/trezcool/masomo-web/core"
)

const nonceSize = 24

var cookieSalt = []byte("masomo.web.services.session.cookie")

// CookieStore keeps the session token in the browser, sealed in a cookie.
type CookieStore struct {
	name   string
	ttl    time.Duration
	secure bool
	key    [32]byte
}

var _ core.SessionStore = (*CookieStore)(nil)

func NewCookieStore(conf *core.Config) *CookieStore {
	return &CookieStore{
		name:   conf.Session.CookieName,
		ttl:    conf.Session.TTL,
		secure: conf.Session.Secure,
		key:    sha256.Sum256(append(append([]byte(nil), cookieSalt...), conf.SecretKey...)),
	}
}

// Token returns the session token, or "" when there is none.
// A cookie that fails to open is treated as absent.
func (s *CookieStore) Token(r *http.Request) (string, error) {
	cookie, err := r.Cookie(s.name)
	if err != nil || cookie.Value == "" {
		return "", nil
	}
	token, ok := s.open(cookie.Value)
	if !ok {
		return "", nil
	}
	return token, nil
}

func (s *CookieStore) SetToken(w http.ResponseWriter, r *http.Request, token string, persistent bool) error {
	sealed, err := s.seal(token)
	if err != nil {
		return err
	}
	http.SetCookie(w, newCookie(s.name, sealed, s.ttl, s.secure, persistent))
	return nil
}

func (s *CookieStore) Clear(w http.ResponseWriter, r *http.Request) error {
	http.SetCookie(w, expiredCookie(s.name, s.secure))
	return nil
}

func (s *CookieStore) seal(token string) (string, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", errors.Wrap(err, "generating nonce")
	}
	box := secretbox.Seal(nonce[:], []byte(token), &nonce, &s.key)
	return base64.RawURLEncoding.EncodeToString(box), nil
}

func (s *CookieStore) open(value string) (string, bool) {
	box, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil || len(box) < nonceSize+secretbox.Overhead {
		return "", false
	}
	var nonce [nonceSize]byte
	copy(nonce[:], box[:nonceSize])
	token, ok := secretbox.Open(nil, box[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", false
	}
	return string(token), true
}

// newCookie returns the session cookie. Non-persistent cookies die with the browser session.
func newCookie(name, value string, ttl time.Duration, secure, persistent bool) *http.Cookie {
	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	if persistent && ttl > 0 {
		cookie.Expires = time.Now().Add(ttl)
		cookie.MaxAge = int(ttl.Seconds())
	}
	return cookie
}

func expiredCookie(name string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
