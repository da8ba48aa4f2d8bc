package main

import (
	"encoding/json"
	"log/slog"
	"net/http"

	goLogin "github.com/MrEthical07/goLogin"
	"github.com/MrEthical07/goLogin/middleware"
	"github.com/gorilla/mux"
)

// maxBodyBytes bounds a login request body.
const maxBodyBytes = 1 << 16

func newRouter(engine *goLogin.Engine, metrics http.Handler, logger *slog.Logger) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/login", loginHandler(engine, logger)).Methods(http.MethodPost)
	r.Handle("/session", middleware.RequireStrict(engine)(http.HandlerFunc(sessionHandler))).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodGet)
	if metrics != nil {
		r.Handle("/metrics", metrics).Methods(http.MethodGet)
	}
	return r
}

// loginHandler decodes an invocation body and answers with the engine's
// response or error envelope.
func loginHandler(engine *goLogin.Engine, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var inv goLogin.Invocation
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err := dec.Decode(&inv); err != nil {
			logger.InfoContext(r.Context(), "malformed login body", "error", err)
			middleware.WriteError(w, &goLogin.Error{Kind: goLogin.KindValidation, Message: "Malformed request body"})
			return
		}

		engine.Handle(middleware.RequestContext(r), inv, func(err error, resp *goLogin.Response) {
			if err != nil {
				middleware.WriteError(w, goLogin.AsError(err))
				return
			}
			writeJSON(w, http.StatusOK, resp)
		})
	}
}

func sessionHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.SessionClaimsFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, &goLogin.Error{Kind: goLogin.KindUnauthorized, Message: goLogin.MessageSessionInvalid})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"email":       claims.Email,
		"application": claims.Application,
		"roles":       claims.Roles,
		"sessionID":   claims.SessionID,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
