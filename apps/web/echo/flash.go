package echoweb

import (
	"encoding/base64"
	"net/http"

	"github.com/labstack/echo/v4"
)

const flashCookie = "flash"

// setFlash stores a one-time message shown by the next rendered page.
func setFlash(ctx echo.Context, msg string) {
	if msg == "" {
		return
	}
	ctx.SetCookie(&http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString([]byte(msg)),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func popFlash(ctx echo.Context) string {
	cookie, err := ctx.Cookie(flashCookie)
	if err != nil || cookie.Value == "" {
		return ""
	}
	ctx.SetCookie(&http.Cookie{
		Name:     flashCookie,
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	msg, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return ""
	}
	return string(msg)
}
