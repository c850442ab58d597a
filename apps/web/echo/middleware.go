package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/masomo-web/core/gateway"
	"github.com/trezcool/masomo-web/core/identity"
	"github.com/trezcool/masomo-web/core/navigation"
	"github.com/trezcool/masomo-web/core/user"
)

const (
	contextSessionKey = "session"
	signOutPath       = "/signout"
)

var errHttpForbidden = echo.NewHTTPError(http.StatusForbidden, "permission denied")

// session is the per-request view of a browser session.
type session struct {
	Token    string
	Identity identity.Resolution
	Cache    *gateway.Cache
}

func (s *session) user() *user.Me {
	if s == nil {
		return nil
	}
	return s.Identity.User
}

func getSession(ctx echo.Context) *session {
	sess, _ := ctx.Get(contextSessionKey).(*session)
	return sess
}

// identityGate resolves the identity of every request. Public routes only peek at the cached identity
// and never block; protected routes wait for it, render the loading page while it is being checked
// and redirect to sign in when there is none.
func (h *handler) identityGate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		req := ctx.Request()
		token, err := h.sessions.Token(req)
		if err != nil {
			h.logger.Warn("reading session token", err)
			token = ""
		}

		path := req.URL.Path
		if path == signOutPath {
			ctx.Set(contextSessionKey, &session{Token: token, Cache: h.caches.For(token)})
			return next(ctx)
		}

		var res identity.Resolution
		public := navigation.IsPublic(path)
		if public {
			res = h.resolver.Peek(token)
		} else {
			res = h.resolver.Resolve(req.Context(), token)
		}
		if res.TokenRejected {
			if err := h.sessions.Clear(ctx.Response(), req); err != nil {
				h.logger.Warn("clearing rejected session token", err)
			}
			token = ""
		}

		sess := &session{Token: token, Identity: res, Cache: h.caches.For(token)}
		ctx.Set(contextSessionKey, sess)

		switch {
		case public:
		case res.IsLoading():
			return h.render(ctx, http.StatusOK, "loading", page{Title: "Loading"})
		case !res.IsAuthenticated():
			return ctx.Redirect(http.StatusSeeOther, navigation.SignIn.Path())
		}
		return next(ctx)
	}
}

// roleGuard answers 403 on protected pages outside the navigation of the user's role.
// It only runs when web.enforceRoleRoutes is set.
func (h *handler) roleGuard(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if !h.conf.Web.EnforceRoleRoutes {
			return next(ctx)
		}
		path := ctx.Request().URL.Path
		if path == signOutPath || navigation.IsPublic(path) {
			return next(ctx)
		}
		if !navigation.Allows(getSession(ctx).Identity.Role(), path) {
			return errHttpForbidden
		}
		return next(ctx)
	}
}
