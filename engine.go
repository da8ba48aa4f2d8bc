package goLogin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	internalaudit "github.com/MrEthical07/goLogin/internal/audit"
	"github.com/MrEthical07/goLogin/internal/flows"
	"github.com/MrEthical07/goLogin/jwt"
	"github.com/MrEthical07/goLogin/validation"
)

// Engine runs the login pipeline against its injected collaborators.
//
// Engine methods are safe for concurrent use. Each invocation opens its own
// cache connection and shares no mutable state with other invocations beyond
// metrics and the audit dispatcher.
type Engine struct {
	config     Config
	cache      CacheConnector
	userStore  UserStore
	hasher     Hasher
	validator  *validation.Validator
	jwtManager *jwt.Manager
	audit      *internalaudit.Dispatcher
	metrics    *Metrics
	logger     *slog.Logger
	flows      flows.Service
}

// Close drains and stops the audit dispatcher.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were discarded because the
// dispatcher buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a copy of the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return (*Metrics)(nil).Snapshot()
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// Login authenticates req and issues a session.
//
// Stages run strictly in order: open cache connection, validate credentials,
// read the user record, check the verified flag, compare the salted hash,
// sign the token, write the cache entry. The first failing stage ends the
// pipeline. The cache connection is released on every exit path. Failures are
// always *Error.
func (e *Engine) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if e == nil || !e.flows.Initialized() {
		return nil, internalError(ErrEngineNotReady)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	out := e.flows.Login(ctx, req.Email, req.Password)
	if e.metrics.LatencyEnabled() {
		e.metrics.Observe(MetricLoginLatency, time.Since(start))
	}

	email := strings.TrimSpace(req.Email)
	if out.Failure == flows.LoginFailureNone && out.Result != nil {
		e.logger.InfoContext(ctx, "login succeeded", "email", email, "session_id", out.Result.SessionID)
		return &LoginResult{
			SessionID: out.Result.SessionID,
			Token:     out.Result.Token,
			ExpiresAt: out.Result.ExpiresAt,
		}, nil
	}

	lerr := loginError(out)
	if lerr.Kind == KindInternal {
		e.logger.ErrorContext(ctx, "login failed", "email", email, "stage", out.Stage, "error", out.Err)
	} else {
		e.logger.InfoContext(ctx, "login rejected", "email", email, "stage", out.Stage, "status", lerr.StatusCode())
	}
	return nil, lerr
}

// Invoke runs Login behind the invocation contract: the payload carries the
// credentials and success is wrapped as {"success":true,"data":{...}}.
func (e *Engine) Invoke(ctx context.Context, inv Invocation) (*Response, error) {
	res, err := e.Login(ctx, inv.Payload)
	if err != nil {
		return nil, err
	}
	return &Response{Success: true, Data: res}, nil
}

// Handle is the callback form of Invoke. cb is invoked exactly once, with
// either an error or a response. A panic inside the pipeline is reported as an
// internal error.
func (e *Engine) Handle(ctx context.Context, inv Invocation, cb Callback) {
	resp, err := e.invokeRecover(ctx, inv)
	if cb == nil {
		return
	}
	if err != nil {
		cb(err, nil)
		return
	}
	cb(nil, resp)
}

func (e *Engine) invokeRecover(ctx context.Context, inv Invocation) (resp *Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e != nil && e.logger != nil {
				e.logger.ErrorContext(ctx, "login panicked", "panic", r)
			}
			resp, err = nil, internalError(fmt.Errorf("panic: %v", r))
		}
	}()
	return e.Invoke(ctx, inv)
}

// ValidateSession verifies a session token. ModeJWTOnly checks signature,
// expiry and application tag. ModeStrict also requires the cache entry for the
// token's session ID to hold the same token, using a connection opened and
// released within the call.
func (e *Engine) ValidateSession(ctx context.Context, token string, mode ValidationMode) (*SessionClaims, error) {
	if e == nil || !e.flows.Initialized() {
		return nil, internalError(ErrEngineNotReady)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	res := e.flows.Validate(ctx, token, int(mode))
	switch res.Failure {
	case flows.ValidateFailureNone:
		return res.Claims, nil
	case flows.ValidateFailureUnauthorized:
		return nil, newError(KindUnauthorized, MessageSessionInvalid, wrapCause(ErrTokenInvalid, res.Err))
	case flows.ValidateFailureSessionNotFound, flows.ValidateFailureSessionMismatch:
		return nil, newError(KindUnauthorized, MessageSessionInvalid, wrapCause(ErrSessionNotFound, res.Err))
	case flows.ValidateFailureCacheUnavailable:
		e.logger.ErrorContext(ctx, "session validation failed", "error", res.Err)
		return nil, internalError(wrapCause(ErrCacheUnavailable, res.Err))
	case flows.ValidateFailureInvalidMode:
		return nil, internalError(fmt.Errorf("invalid validation mode %d", int(mode)))
	default:
		return nil, internalError(res.Err)
	}
}

func loginError(out flows.LoginOutcome) *Error {
	switch out.Failure {
	case flows.LoginFailureInvalidInput:
		var verr *validation.Errors
		if errors.As(out.Err, &verr) {
			return &Error{
				Kind:    KindValidation,
				Message: verr.Error(),
				Details: verr.Violations,
				cause:   out.Err,
			}
		}
		return newError(KindValidation, out.Err.Error(), out.Err)
	case flows.LoginFailureUserNotFound:
		return newError(KindNotFound, MessageUserNotFound, wrapCause(ErrUserNotFound, out.Err))
	case flows.LoginFailureUnverified:
		return newError(KindUnauthorized, MessageUserNotVerified, ErrUserNotVerified)
	case flows.LoginFailureInvalidPassword:
		return newError(KindUnauthorized, MessageInvalidPassword, ErrInvalidPassword)
	}

	switch out.Stage {
	case flows.StageCacheConnect:
		if errors.Is(out.Err, ErrEngineNotReady) {
			return internalError(out.Err)
		}
		return internalError(wrapCause(ErrCacheUnavailable, out.Err))
	case flows.StageStore:
		return internalError(wrapCause(ErrSessionStoreFailed, out.Err))
	default:
		return internalError(out.Err)
	}
}

func wrapCause(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	if errors.Is(cause, sentinel) {
		return cause
	}
	return fmt.Errorf("%w: %w", sentinel, cause)
}
