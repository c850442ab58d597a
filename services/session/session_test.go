package sessionsvc

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-web/core"
)

func testConfig() *core.Config {
	return &core.Config{
		SecretKey: "test-secret-key-that-is-long-enough!!",
		Session: core.SessionConfig{
			CookieName: "access",
			TTL:        time.Hour,
		},
	}
}

// replay returns a request carrying the cookies set on rec.
func replay(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, testConfig()), mr
}

func TestStores(t *testing.T) {
	redisStore, _ := newRedisStore(t)
	stores := map[string]core.SessionStore{
		"cookie": NewCookieStore(testConfig()),
		"redis":  redisStore,
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			// no cookie
			token, err := store.Token(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			assert.Empty(t, token)

			// set
			rec := httptest.NewRecorder()
			require.NoError(t, store.SetToken(rec, httptest.NewRequest(http.MethodPost, "/signin", nil), "jwt-token", true))
			cookies := rec.Result().Cookies()
			require.Len(t, cookies, 1)
			assert.Equal(t, "access", cookies[0].Name)
			assert.NotEqual(t, "jwt-token", cookies[0].Value, "the token is never exposed as is")
			assert.True(t, cookies[0].HttpOnly)
			assert.Equal(t, 3600, cookies[0].MaxAge)

			req := replay(rec)
			token, err = store.Token(req)
			require.NoError(t, err)
			assert.Equal(t, "jwt-token", token)

			// clear
			rec = httptest.NewRecorder()
			require.NoError(t, store.Clear(rec, req))
			cleared := rec.Result().Cookies()
			require.Len(t, cleared, 1)
			assert.Equal(t, -1, cleared[0].MaxAge)
		})
	}
}

func TestCookieStore_SessionCookie(t *testing.T) {
	store := NewCookieStore(testConfig())
	rec := httptest.NewRecorder()
	require.NoError(t, store.SetToken(rec, httptest.NewRequest(http.MethodPost, "/signin", nil), "tok", false))

	cookie := rec.Result().Cookies()[0]
	assert.Zero(t, cookie.MaxAge)
	assert.True(t, cookie.Expires.IsZero())
}

func TestCookieStore_Tampered(t *testing.T) {
	store := NewCookieStore(testConfig())
	rec := httptest.NewRecorder()
	require.NoError(t, store.SetToken(rec, httptest.NewRequest(http.MethodPost, "/signin", nil), "tok", true))
	sealed := rec.Result().Cookies()[0].Value
	flipped := "A" + sealed[1:]
	if sealed[0] == 'A' {
		flipped = "B" + sealed[1:]
	}

	tests := []struct {
		name  string
		value string
	}{
		{name: "garbage", value: "not-base64!"},
		{name: "too short", value: "AAAA"},
		{name: "flipped", value: flipped},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(&http.Cookie{Name: "access", Value: tc.value})
			token, err := store.Token(req)
			assert.NoError(t, err)
			assert.Empty(t, token)
		})
	}

	// another secret cannot open it
	conf := testConfig()
	conf.SecretKey = "another-secret-key-that-is-long-enough"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "access", Value: sealed})
	token, _ := NewCookieStore(conf).Token(req)
	assert.Empty(t, token)
}

func TestRedisStore(t *testing.T) {
	store, mr := newRedisStore(t)

	rec := httptest.NewRecorder()
	require.NoError(t, store.SetToken(rec, httptest.NewRequest(http.MethodPost, "/signin", nil), "tok", false))
	req := replay(rec)
	id := rec.Result().Cookies()[0].Value

	got, err := mr.Get("session:" + id)
	require.NoError(t, err)
	assert.Equal(t, "tok", got)
	assert.Equal(t, time.Hour, mr.TTL("session:"+id))

	// signing in again replaces the session
	rec = httptest.NewRecorder()
	require.NoError(t, store.SetToken(rec, req, "tok2", true))
	assert.False(t, mr.Exists("session:"+id))

	// expired sessions are absent
	req = replay(rec)
	mr.FastForward(2 * time.Hour)
	token, err := store.Token(req)
	require.NoError(t, err)
	assert.Empty(t, token)

	// unknown ids are ignored
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "access", Value: "../../etc"})
	token, err = store.Token(req)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestRedisStore_Unavailable(t *testing.T) {
	store, mr := newRedisStore(t)
	rec := httptest.NewRecorder()
	require.NoError(t, store.SetToken(rec, httptest.NewRequest(http.MethodPost, "/signin", nil), "tok", true))
	req := replay(rec)

	mr.Close()
	_, err := store.Token(req)
	assert.Error(t, err)
}
