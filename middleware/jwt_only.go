package middleware

import (
	"net/http"

	goLogin "github.com/MrEthical07/goLogin"
)

// RequireJWTOnly returns middleware that validates the token signature, expiry
// and application tag without contacting the session cache.
func RequireJWTOnly(engine *goLogin.Engine) func(http.Handler) http.Handler {
	return Guard(engine, goLogin.ModeJWTOnly)
}
