package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	goLogin "github.com/MrEthical07/goLogin"
)

type claimsContextKey struct{}

// SessionClaimsFromContext returns the claims stored by Guard.
func SessionClaimsFromContext(ctx context.Context) (*goLogin.SessionClaims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(*goLogin.SessionClaims)
	return claims, ok
}

// Guard rejects requests without a valid bearer session token. Rejections are
// written as the engine's JSON error envelope.
func Guard(engine *goLogin.Engine, mode goLogin.ValidationMode) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				WriteError(w, goLogin.AsError(goLogin.ErrEngineNotReady))
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				WriteError(w, &goLogin.Error{Kind: goLogin.KindUnauthorized, Message: goLogin.MessageSessionInvalid})
				return
			}

			ctx := RequestContext(r)
			claims, err := engine.ValidateSession(ctx, token, mode)
			if err != nil {
				WriteError(w, goLogin.AsError(err))
				return
			}

			ctx = context.WithValue(ctx, claimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestContext returns r's context carrying the caller's IP and user agent
// for audit events.
func RequestContext(r *http.Request) context.Context {
	return goLogin.WithUserAgent(goLogin.WithClientIP(r.Context(), clientIP(r)), r.UserAgent())
}

// WriteError writes err's envelope with its status code.
func WriteError(w http.ResponseWriter, err *goLogin.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode())
	_ = json.NewEncoder(w).Encode(err.Envelope())
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := strings.TrimSpace(value[len(bearer):])
	if token == "" {
		return "", false
	}

	return token, true
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host := r.RemoteAddr
	if i := strings.LastIndexByte(host, ':'); i > 0 {
		host = host[:i]
	}
	return strings.Trim(host, "[]")
}
