package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-web/core/gateway"
	"github.com/trezcool/masomo-web/core/user"
)

// stubBackend answers the identity endpoint with canned responses per token.
type stubBackend struct {
	mu     sync.Mutex
	calls  int
	users  map[string]user.Me
	status int           // forced error status, if any
	delay  chan struct{} // blocks fetches until closed, if set
}

func (b *stubBackend) Do(ctx context.Context, token string, req gateway.Request, out interface{}) error {
	b.mu.Lock()
	b.calls++
	status, delay := b.status, b.delay
	usr, ok := b.users[token]
	b.mu.Unlock()

	if delay != nil {
		<-delay
	}
	if status != 0 {
		return &gateway.Error{Status: status}
	}
	if !ok {
		return &gateway.Error{Status: http.StatusUnauthorized, Message: "invalid token"}
	}
	data, _ := json.Marshal(user.MeResponse{Success: true, Data: &usr})
	return json.Unmarshal(data, out)
}

func (b *stubBackend) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

func newResolver(b *stubBackend, wait time.Duration) *Resolver {
	return NewResolver(gateway.NewRegistry(b, gateway.RegistryOptions{}), wait)
}

func signedToken(t *testing.T, exp time.Time) string {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": 1, "exp": exp.Unix()}).SignedString([]byte("secret"))
	require.NoError(t, err)
	return tok
}

func TestResolve_NoToken(t *testing.T) {
	b := &stubBackend{}
	res := newResolver(b, time.Second).Resolve(context.Background(), "")

	assert.Equal(t, Unauthenticated, res.State)
	assert.NoError(t, res.Err)
	assert.False(t, res.TokenRejected)
	assert.Equal(t, 0, b.callCount())
}

func TestResolve_Authenticated(t *testing.T) {
	b := &stubBackend{users: map[string]user.Me{"tok": {ID: 3, FirstName: "Ada", Role: user.RoleTeacher}}}
	r := newResolver(b, time.Second)

	res := r.Resolve(context.Background(), "tok")
	require.True(t, res.IsAuthenticated())
	assert.Equal(t, "Ada", res.User.FirstName)
	assert.Equal(t, user.RoleTeacher, res.Role())

	// served from the session cache
	res = r.Resolve(context.Background(), "tok")
	assert.True(t, res.IsAuthenticated())
	assert.Equal(t, 1, b.callCount())

	assert.True(t, r.Peek("tok").IsAuthenticated())
}

func TestResolve_Unauthorized(t *testing.T) {
	b := &stubBackend{}
	r := newResolver(b, time.Second)

	res := r.Resolve(context.Background(), "bad")
	assert.Equal(t, Unauthenticated, res.State)
	assert.True(t, res.TokenRejected)
	assert.True(t, gateway.IsUnauthorized(res.Err))

	// the session cache was dropped: nothing left to peek
	assert.Equal(t, Checking, r.Peek("bad").State)
}

func TestResolve_BackendFailure(t *testing.T) {
	b := &stubBackend{status: http.StatusBadGateway}
	r := newResolver(b, time.Second)

	res := r.Resolve(context.Background(), "tok")
	assert.Equal(t, Unauthenticated, res.State)
	assert.False(t, res.TokenRejected, "only authorization failures clear the token")
	assert.Error(t, res.Err)

	// public pages see the failure without refetching
	peek := r.Peek("tok")
	assert.Equal(t, Unauthenticated, peek.State)
	assert.Equal(t, 1, b.callCount())
}

func TestResolve_EmptyIdentity(t *testing.T) {
	b := &emptyBackend{}
	r := NewResolver(gateway.NewRegistry(b, gateway.RegistryOptions{}), time.Second)

	res := r.Resolve(context.Background(), "tok")
	assert.Equal(t, Unauthenticated, res.State)
	assert.Equal(t, ErrNoIdentity, res.Err)
}

type emptyBackend struct{}

func (emptyBackend) Do(_ context.Context, _ string, _ gateway.Request, out interface{}) error {
	return json.Unmarshal([]byte(`{"success":false,"data":null}`), out)
}

func TestResolve_LoadingWait(t *testing.T) {
	b := &stubBackend{
		users: map[string]user.Me{"tok": {ID: 3, Role: user.RoleStudent}},
		delay: make(chan struct{}),
	}
	r := newResolver(b, 20*time.Millisecond)

	res := r.Resolve(context.Background(), "tok")
	assert.True(t, res.IsLoading())
	assert.Nil(t, res.User)
	assert.True(t, r.Peek("tok").IsLoading())

	close(b.delay)
	assert.Eventually(t, func() bool {
		return r.Peek("tok").IsAuthenticated()
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, b.callCount())
}

func TestResolve_ExpiredToken(t *testing.T) {
	b := &stubBackend{}
	r := newResolver(b, time.Second)

	expired := signedToken(t, time.Now().Add(-time.Hour))
	res := r.Resolve(context.Background(), expired)
	assert.Equal(t, Unauthenticated, res.State)
	assert.True(t, res.TokenRejected)
	assert.NoError(t, res.Err)
	assert.Equal(t, 0, b.callCount())
}

func TestExpired(t *testing.T) {
	r := newResolver(&stubBackend{}, time.Second)

	assert.True(t, r.Expired(signedToken(t, time.Now().Add(-time.Minute))))
	assert.False(t, r.Expired(signedToken(t, time.Now().Add(time.Hour))))
	assert.False(t, r.Expired("opaque-session-token"))
}

func TestForget(t *testing.T) {
	b := &stubBackend{users: map[string]user.Me{"tok": {ID: 3, Role: user.RoleAdmin}}}
	r := newResolver(b, time.Second)

	r.Resolve(context.Background(), "tok")
	r.Forget("tok")
	assert.Equal(t, Checking, r.Peek("tok").State)

	r.Resolve(context.Background(), "tok")
	assert.Equal(t, 2, b.callCount())
}
