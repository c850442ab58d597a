package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-web/core"
	"github.com/trezcool/masomo-web/core/gateway"
	"github.com/trezcool/masomo-web/core/navigation"
	"github.com/trezcool/masomo-web/core/user"
)

const (
	msgSignInFailed       = "Sign in failed. Please check your credentials."
	msgRegistrationFailed = "Registration failed. Please try again."
)

func registerAuthPages(app *echo.Echo, h *handler, limiter echo.MiddlewareFunc) {
	route(app, navigation.SignIn, h.signInPage, h.signIn, limiter)
	route(app, navigation.Registration, h.registrationPage, h.register, limiter)
	app.POST(signOutPath, h.signOut)
}

func (h *handler) signInPage(ctx echo.Context) error {
	return h.signInView(ctx, nil)
}

func (h *handler) signInView(ctx echo.Context, f *form) error {
	return h.render(ctx, http.StatusOK, "signin", page{Title: "Sign In", Form: f})
}

// signIn exchanges the credentials for a session token. Without the remember box,
// the token dies with the browser session.
func (h *handler) signIn(ctx echo.Context) error {
	var creds user.Credentials
	err := h.bindForm(ctx, &creds)
	if err == nil {
		err = startSession(h, ctx, user.SignIn, creds, ctx.FormValue("remember") == "true")
	}
	if isRejection(err) {
		err = core.NewValidationError(errors.New(msgSignInFailed))
	}
	return h.submitted(ctx, err, "", navigation.Home.Path(), func(f *form) error {
		return h.signInView(ctx, f)
	})
}

func (h *handler) registrationPage(ctx echo.Context) error {
	return h.registrationView(ctx, nil)
}

func (h *handler) registrationView(ctx echo.Context, f *form) error {
	if f == nil {
		f = &form{Values: map[string][]string{"role": {string(user.RoleStudent)}}}
	}
	return h.render(ctx, http.StatusOK, "registration", page{Title: "Registration", Form: f})
}

func (h *handler) register(ctx echo.Context) error {
	var nu user.NewUser
	err := h.bindForm(ctx, &nu)
	if err == nil {
		err = startSession(h, ctx, user.Register, nu, false)
	}
	if isRejection(err) {
		err = rejection(err, msgRegistrationFailed)
	}
	return h.submitted(ctx, err, "Welcome to Masomo!", navigation.Home.Path(), func(f *form) error {
		return h.registrationView(ctx, f)
	})
}

// startSession sends body through m and stores the returned token in place of the current one.
func startSession[B any](h *handler, ctx echo.Context, m gateway.Mutation[B, user.TokenResponse], body B, persistent bool) error {
	resp, err := gateway.Mutate(ctx.Request().Context(), h.caches.For(""), m, body)
	if err != nil {
		return err
	}
	if !resp.Success || resp.Token == "" {
		return &gateway.Error{Status: http.StatusUnauthorized, Message: "no token returned"}
	}
	if old := getSession(ctx).Token; old != "" && old != resp.Token {
		h.resolver.Forget(old)
	}
	return errors.Wrap(
		h.sessions.SetToken(ctx.Response(), ctx.Request(), resp.Token, persistent),
		"storing session token",
	)
}

// isRejection reports whether the backend refused the request (4xx).
func isRejection(err error) bool {
	var gErr *gateway.Error
	return errors.As(err, &gErr) && gErr.Status >= 400 && gErr.Status < 500
}

// rejection turns a backend rejection into a form error, keeping the message and
// field errors sent by the backend.
func rejection(err error, fallback string) error {
	gErr := gateway.AsError(err)
	msg := gErr.Message
	if msg == "" {
		msg = fallback
	}
	flds := make([]core.FieldError, 0, len(gErr.Fields))
	for fld, fErr := range gErr.Fields {
		flds = append(flds, core.FieldError{Field: fld, Error: fErr})
	}
	return core.NewValidationError(errors.New(msg), flds...)
}

func (h *handler) signOut(ctx echo.Context) error {
	h.endSession(ctx)
	return ctx.Redirect(http.StatusSeeOther, navigation.SignIn.Path())
}
