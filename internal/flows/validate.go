package flows

import (
	"context"
	"errors"

	"github.com/MrEthical07/goLogin/jwt"
)

// ValidateFailureKind classifies validation failures for root-level mapping.
type ValidateFailureKind int

const (
	ValidateFailureNone ValidateFailureKind = iota
	ValidateFailureUnauthorized
	ValidateFailureInvalidMode
	ValidateFailureSessionNotFound
	ValidateFailureSessionMismatch
	ValidateFailureCacheUnavailable
)

// ValidateResult returns either claims or a classified failure.
type ValidateResult struct {
	Failure ValidateFailureKind
	Err     error
	Claims  *jwt.SessionClaims
}

// ValidateDeps captures jwt-only/strict validation dependencies. Mode values
// are supplied by the host package to avoid an import cycle.
type ValidateDeps struct {
	ParseToken   func(string) (*jwt.SessionClaims, error)
	ConnectCache func(context.Context) (CacheConn, error)
	Segment      string
	ModeJWTOnly  int
	ModeStrict   int
	EntryMissing error

	MetricInc func(int)
	EmitAudit func(ctx context.Context, event string, success bool, email, sessionID string, err error, metadata func() map[string]string)
	Warn      func(string, ...any)

	MetricSuccess int
	MetricFailure int
	FailureEvent  string
}

// RunValidate verifies a session token and, in strict mode, confirms the cached
// copy under the session's ID matches it.
func RunValidate(ctx context.Context, token string, mode int, deps ValidateDeps) (res ValidateResult) {
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, string, error, func() map[string]string) {}
	}
	if deps.Warn == nil {
		deps.Warn = func(string, ...any) {}
	}

	defer func() {
		if res.Failure == ValidateFailureNone {
			deps.MetricInc(deps.MetricSuccess)
			return
		}
		deps.MetricInc(deps.MetricFailure)
		var email, sid string
		if res.Claims != nil {
			email, sid = res.Claims.Email, res.Claims.SessionID
		}
		kind := res.Failure
		deps.EmitAudit(ctx, deps.FailureEvent, false, email, sid, res.Err, func() map[string]string {
			return map[string]string{"reason": kind.String()}
		})
		res.Claims = nil
	}()

	if mode != deps.ModeJWTOnly && mode != deps.ModeStrict {
		return ValidateResult{Failure: ValidateFailureInvalidMode}
	}

	claims, err := deps.ParseToken(token)
	if err != nil {
		return ValidateResult{Failure: ValidateFailureUnauthorized, Err: err}
	}
	if mode == deps.ModeJWTOnly {
		return ValidateResult{Claims: claims}
	}

	conn, err := deps.ConnectCache(ctx)
	if err != nil {
		return ValidateResult{Failure: ValidateFailureCacheUnavailable, Err: err, Claims: claims}
	}
	defer func() {
		if err := conn.Disconnect(); err != nil {
			deps.Warn("gologin: cache disconnect failed", "session_id", claims.SessionID, "error", err)
		}
	}()

	cached, err := conn.Get(ctx, deps.Segment, claims.SessionID)
	if err != nil {
		if deps.EntryMissing != nil && errors.Is(err, deps.EntryMissing) {
			return ValidateResult{Failure: ValidateFailureSessionNotFound, Err: err, Claims: claims}
		}
		return ValidateResult{Failure: ValidateFailureCacheUnavailable, Err: err, Claims: claims}
	}
	if cached != token {
		return ValidateResult{Failure: ValidateFailureSessionMismatch, Claims: claims}
	}

	return ValidateResult{Claims: claims}
}

func (k ValidateFailureKind) String() string {
	switch k {
	case ValidateFailureNone:
		return "none"
	case ValidateFailureUnauthorized:
		return "token_invalid"
	case ValidateFailureInvalidMode:
		return "invalid_mode"
	case ValidateFailureSessionNotFound:
		return "session_not_found"
	case ValidateFailureSessionMismatch:
		return "session_mismatch"
	case ValidateFailureCacheUnavailable:
		return "cache_unavailable"
	default:
		return "unknown"
	}
}
