package echoweb

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-web/core"
	"github.com/trezcool/masomo-web/core/gateway"
	"github.com/trezcool/masomo-web/core/navigation"
	"github.com/trezcool/masomo-web/core/school"
)

var errInvalidForm = errors.New("the form holds invalid values")

// bindForm binds the request into input, then cleans and validates it.
// prepare runs between binding and validation, eg. to set fields the form does not carry.
func (h *handler) bindForm(ctx echo.Context, input interface{}, prepare ...func()) error {
	if err := ctx.Bind(input); err != nil {
		return core.NewValidationError(errInvalidForm)
	}
	for _, fn := range prepare {
		fn()
	}
	return school.Validate(h.validate, input)
}

// submitted finishes a form post. On success it flashes msg and redirects to `to`;
// on a form failure it renders the page again through view.
func (h *handler) submitted(ctx echo.Context, err error, msg, to string, view func(*form) error) error {
	if err == nil {
		setFlash(ctx, msg)
		return ctx.Redirect(http.StatusSeeOther, to)
	}
	if gateway.IsUnauthorized(err) {
		h.endSession(ctx)
		return ctx.Redirect(http.StatusSeeOther, navigation.SignIn.Path())
	}
	f, err := h.formFailure(ctx, err)
	if err != nil {
		return err
	}
	return view(f)
}

// formFailure turns validation and backend errors into form errors. Any other error is returned.
func (h *handler) formFailure(ctx echo.Context, err error) (*form, error) {
	f := &form{Name: ctx.FormValue(formField), Values: formValues(ctx)}

	err = core.TranslateValidation(err, h.translator)
	var vErr *core.ValidationError
	var gErr *gateway.Error
	switch {
	case errors.As(err, &vErr):
		f.Errors = vErr.FieldMap()
		if vErr.Err != nil {
			f.Error = vErr.Err.Error()
		}
	case errors.As(err, &gErr):
		f.Error = gErr.Message
		if f.Error == "" {
			f.Error = http.StatusText(gErr.Status)
		}
		f.Errors = gErr.Fields
	default:
		return nil, err
	}
	if !f.Failed() {
		f.Error = "the form could not be saved"
	}
	return f, nil
}

func formValues(ctx echo.Context) url.Values {
	values, err := ctx.FormParams()
	if err != nil {
		return nil
	}
	return values
}

// endSession forgets the session's cached data and clears its token.
func (h *handler) endSession(ctx echo.Context) {
	sess := getSession(ctx)
	if sess == nil {
		return
	}
	h.resolver.Forget(sess.Token)
	if err := h.sessions.Clear(ctx.Response(), ctx.Request()); err != nil {
		h.logger.Warn("clearing session token", err)
	}
}

func readOptions(ctx echo.Context, skip bool) []gateway.ReadOption {
	opts := []gateway.ReadOption{gateway.SkipWhen(skip)}
	if ctx.QueryParam("refresh") != "" {
		opts = append(opts, gateway.Fresh())
	}
	return opts
}

// read serves q through the session's cache.
func read[P, R any](ctx echo.Context, q gateway.Query[P, R], params P) gateway.Result[R] {
	return gateway.Read(ctx.Request().Context(), getSession(ctx).Cache, q, params, readOptions(ctx, false)...)
}

// readIf serves q only when cond holds; otherwise the result is skipped.
func readIf[P, R any](ctx echo.Context, cond bool, q gateway.Query[P, R], params P) gateway.Result[R] {
	return gateway.Read(ctx.Request().Context(), getSession(ctx).Cache, q, params, readOptions(ctx, !cond)...)
}

func mutate[B, R any](ctx echo.Context, m gateway.Mutation[B, R], body B) (R, error) {
	return gateway.Mutate(ctx.Request().Context(), getSession(ctx).Cache, m, body)
}
