package identity

import (
	"context"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-web/core/gateway"
	"github.com/trezcool/masomo-web/core/user"
)

var ErrNoIdentity = errors.New("backend returned no identity")

// Resolution is the outcome of resolving a session token.
type Resolution struct {
	State State
	User  *user.Me
	Err   error

	// TokenRejected is set when the token is expired or refused by the backend.
	// The session store must drop it.
	TokenRejected bool
}

func (r Resolution) IsAuthenticated() bool { return r.State == Authenticated && r.User != nil }

func (r Resolution) IsLoading() bool { return r.State == Checking }

// Role returns the user's role, or "" when not authenticated.
func (r Resolution) Role() user.Role {
	if r.User == nil {
		return ""
	}
	return r.User.Role
}

// Resolver turns session tokens into identities through the session's query cache.
type Resolver struct {
	caches *gateway.Registry
	wait   time.Duration
	parser *jwt.Parser
	now    func() time.Time
}

// NewResolver returns a Resolver that blocks at most wait on a pending identity fetch.
func NewResolver(caches *gateway.Registry, wait time.Duration) *Resolver {
	return &Resolver{
		caches: caches,
		wait:   wait,
		parser: new(jwt.Parser),
		now:    time.Now,
	}
}

// Resolve resolves token into an identity. An empty or expired token is unauthenticated
// without any backend call. A pending fetch outliving the loading wait resolves to Checking;
// it completes in the background and a later call picks up its result.
func (r *Resolver) Resolve(ctx context.Context, token string) Resolution {
	state, res, ok := r.start(token)
	if !ok {
		return res
	}

	if r.wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.wait)
		defer cancel()
	}
	me := gateway.Read(ctx, r.caches.For(token), user.GetMe, struct{}{})
	return r.settle(state, token, me)
}

// Peek returns the cached identity of token without ever calling the backend.
func (r *Resolver) Peek(token string) Resolution {
	state, res, ok := r.start(token)
	if !ok {
		return res
	}
	return r.settle(state, token, gateway.Peek(r.caches.For(token), user.GetMe, struct{}{}))
}

// Forget drops every cached read of token's session.
func (r *Resolver) Forget(token string) {
	r.caches.Drop(token)
}

// Expired reports whether token is a JWT whose expiry is in the past.
// Tokens that are not JWTs never expire.
func (r *Resolver) Expired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := r.parser.ParseUnverified(token, claims); err != nil {
		return false
	}
	if _, ok := claims["exp"]; !ok {
		return false
	}
	return !claims.VerifyExpiresAt(r.now().Unix(), true)
}

func (r *Resolver) start(token string) (State, Resolution, bool) {
	if token == "" {
		state, _ := Transition(Unknown, NoToken)
		return state, Resolution{State: state}, false
	}
	if r.Expired(token) {
		state, _ := Transition(Unknown, NoToken)
		r.Forget(token)
		return state, Resolution{State: state, TokenRejected: true}, false
	}
	state, _ := Transition(Unknown, TokenFound)
	return state, Resolution{}, true
}

func (r *Resolver) settle(state State, token string, me gateway.Result[user.MeResponse]) Resolution {
	switch {
	case me.IsLoading:
		return Resolution{State: state}
	case me.IsError:
		next, _ := Transition(state, FetchFailed)
		res := Resolution{State: next, Err: me.Err}
		if gateway.IsUnauthorized(me.Err) {
			res.TokenRejected = true
			r.Forget(token)
		}
		return res
	case !me.Data.Success || me.Data.Data == nil:
		next, _ := Transition(state, FetchFailed)
		return Resolution{State: next, Err: ErrNoIdentity}
	}
	next, _ := Transition(state, FetchSucceeded)
	usr := *me.Data.Data
	return Resolution{State: next, User: &usr}
}
