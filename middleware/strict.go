package middleware

import (
	"net/http"

	goLogin "github.com/MrEthical07/goLogin"
)

// RequireStrict guards a handler with cache-backed session validation.
func RequireStrict(engine *goLogin.Engine) func(http.Handler) http.Handler {
	return Guard(engine, goLogin.ModeStrict)
}
