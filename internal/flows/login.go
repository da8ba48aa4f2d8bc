package flows

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Login pipeline stages. A failure outcome names the stage it stopped at.
const (
	StageCacheConnect = "cache_connect"
	StageValidate     = "validate"
	StageLookup       = "lookup"
	StageVerified     = "verified"
	StagePassword     = "password"
	StageIssue        = "issue"
	StageStore        = "store"
)

// LoginFailureKind classifies login failures for root-level mapping.
type LoginFailureKind int

const (
	LoginFailureNone LoginFailureKind = iota
	LoginFailureInvalidInput
	LoginFailureUserNotFound
	LoginFailureUnverified
	LoginFailureInvalidPassword
	LoginFailureInternal
)

// LoginUserRecord is a flow-local view of the stored credential material.
type LoginUserRecord struct {
	Email        string
	PasswordHash string
	PasswordSalt string
	Verified     bool
}

// LoginResult is the flow-local success payload.
type LoginResult struct {
	Email     string
	SessionID string
	Token     string
	ExpiresAt time.Time
}

// LoginOutcome returns either a result or a classified failure.
type LoginOutcome struct {
	Result  *LoginResult
	Failure LoginFailureKind
	Stage   string
	Err     error
}

// CacheConn is one invocation-scoped cache connection.
type CacheConn interface {
	Set(ctx context.Context, segment, id, value string, ttl time.Duration) error
	Get(ctx context.Context, segment, id string) (string, error)
	Disconnect() error
}

// LoginMetrics carries metric IDs needed by the login flow.
type LoginMetrics struct {
	LoginSuccess     int
	LoginFailure     int
	ValidationFailed int
	UserNotFound     int
	Unverified       int
	InvalidPassword  int
	InternalError    int
	SessionCreated   int
}

// LoginEvents carries audit event names used by the login flow.
type LoginEvents struct {
	LoginSuccess string
	LoginFailure string
}

// LoginErrors carries sentinels the flow needs to classify collaborator errors.
type LoginErrors struct {
	EngineNotReady  error
	UserNotFound    error
	UserNotVerified error
	InvalidPassword error
}

// LoginDeps captures login pipeline dependencies.
type LoginDeps struct {
	Segment    string
	SessionTTL func() time.Duration
	Now        func() time.Time

	ConnectCache        func(context.Context) (CacheConn, error)
	ValidateCredentials func(email, password string) error
	GetUser             func(context.Context, string) (LoginUserRecord, error)
	HashPassword        func(password, salt string) (string, error)
	EqualHash           func(candidate, stored string) bool
	IssueToken          func(email string) (sessionID, token string, err error)

	MetricInc func(int)
	EmitAudit func(ctx context.Context, event string, success bool, email, sessionID string, err error, metadata func() map[string]string)
	Warn      func(string, ...any)

	Metrics LoginMetrics
	Events  LoginEvents
	Errors  LoginErrors
}

// RunLogin executes the ordered login pipeline. The cache connection is opened
// first and released on every exit path once it was obtained.
func RunLogin(ctx context.Context, email, password string, deps LoginDeps) (out LoginOutcome) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, string, error, func() map[string]string) {}
	}
	if deps.Warn == nil {
		deps.Warn = func(string, ...any) {}
	}
	if deps.ConnectCache == nil ||
		deps.ValidateCredentials == nil ||
		deps.GetUser == nil ||
		deps.HashPassword == nil ||
		deps.EqualHash == nil ||
		deps.IssueToken == nil ||
		deps.SessionTTL == nil {
		return LoginOutcome{Failure: LoginFailureInternal, Stage: StageCacheConnect, Err: deps.Errors.EngineNotReady}
	}

	email = strings.TrimSpace(email)

	fail := func(kind LoginFailureKind, stage string, metric int, err error) LoginOutcome {
		deps.MetricInc(metric)
		deps.MetricInc(deps.Metrics.LoginFailure)
		deps.EmitAudit(ctx, deps.Events.LoginFailure, false, email, "", err, func() map[string]string {
			return map[string]string{"reason": stage}
		})
		return LoginOutcome{Failure: kind, Stage: stage, Err: err}
	}

	conn, err := deps.ConnectCache(ctx)
	if err != nil {
		return fail(LoginFailureInternal, StageCacheConnect, deps.Metrics.InternalError, err)
	}
	defer func() {
		if err := conn.Disconnect(); err != nil {
			deps.Warn("gologin: cache disconnect failed", "email", email, "stage", out.Stage, "error", err)
		}
	}()

	if err := deps.ValidateCredentials(email, password); err != nil {
		return fail(LoginFailureInvalidInput, StageValidate, deps.Metrics.ValidationFailed, err)
	}

	user, err := deps.GetUser(ctx, email)
	if err != nil {
		if deps.Errors.UserNotFound != nil && errors.Is(err, deps.Errors.UserNotFound) {
			return fail(LoginFailureUserNotFound, StageLookup, deps.Metrics.UserNotFound, err)
		}
		return fail(LoginFailureInternal, StageLookup, deps.Metrics.InternalError, err)
	}

	// Unverified accounts never reach the hashing primitive.
	if !user.Verified {
		return fail(LoginFailureUnverified, StageVerified, deps.Metrics.Unverified, deps.Errors.UserNotVerified)
	}

	candidate, err := deps.HashPassword(password, user.PasswordSalt)
	password = ""
	if err != nil {
		return fail(LoginFailureInternal, StagePassword, deps.Metrics.InternalError, err)
	}
	if !deps.EqualHash(candidate, user.PasswordHash) {
		return fail(LoginFailureInvalidPassword, StagePassword, deps.Metrics.InvalidPassword, deps.Errors.InvalidPassword)
	}

	sessionID, token, err := deps.IssueToken(email)
	if err != nil {
		return fail(LoginFailureInternal, StageIssue, deps.Metrics.InternalError, err)
	}

	ttl := deps.SessionTTL()
	issuedAt := deps.Now()
	if err := conn.Set(ctx, deps.Segment, sessionID, token, ttl); err != nil {
		return fail(LoginFailureInternal, StageStore, deps.Metrics.InternalError, err)
	}

	deps.MetricInc(deps.Metrics.SessionCreated)
	deps.MetricInc(deps.Metrics.LoginSuccess)
	deps.EmitAudit(ctx, deps.Events.LoginSuccess, true, email, sessionID, nil, nil)

	return LoginOutcome{
		Result: &LoginResult{
			Email:     email,
			SessionID: sessionID,
			Token:     token,
			ExpiresAt: issuedAt.Add(ttl),
		},
		Stage: StageStore,
	}
}
