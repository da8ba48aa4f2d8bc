package goLogin

import (
	"context"
	"fmt"
	"time"

	"github.com/MrEthical07/goLogin/internal/flows"
	"github.com/MrEthical07/goLogin/password"
	"github.com/MrEthical07/goLogin/session"
	"github.com/MrEthical07/goLogin/userstore"
)

func (e *Engine) initFlows() {
	connect := func(ctx context.Context) (flows.CacheConn, error) {
		conn, err := e.cache.Connect(ctx)
		if err != nil {
			return nil, err
		}
		return conn, nil
	}
	metricInc := func(id int) { e.metricInc(MetricID(id)) }
	warn := func(msg string, args ...any) { e.logger.Warn(msg, args...) }

	e.flows = flows.New(flows.Deps{
		Login: flows.LoginDeps{
			Segment:             e.config.Cache.Segment,
			SessionTTL:          func() time.Duration { return e.jwtManager.TTL() },
			ConnectCache:        connect,
			ValidateCredentials: e.validator.Credentials,
			GetUser: func(ctx context.Context, email string) (flows.LoginUserRecord, error) {
				rec, err := e.userStore.Get(ctx, e.config.UserStore.Table, email)
				if err != nil {
					return flows.LoginUserRecord{}, err
				}
				return flows.LoginUserRecord{
					Email:        rec.Email,
					PasswordHash: rec.PasswordHash,
					PasswordSalt: rec.PasswordSalt,
					Verified:     rec.Verified,
				}, nil
			},
			HashPassword: e.hasher.Hash,
			EqualHash:    password.Equal,
			IssueToken: func(email string) (string, string, error) {
				return e.jwtManager.Issue(email, nil)
			},
			MetricInc: metricInc,
			EmitAudit: e.emitAudit,
			Warn:      warn,
			Metrics: flows.LoginMetrics{
				LoginSuccess:     int(MetricLoginSuccess),
				LoginFailure:     int(MetricLoginFailure),
				ValidationFailed: int(MetricLoginValidationFailed),
				UserNotFound:     int(MetricLoginUserNotFound),
				Unverified:       int(MetricLoginUnverified),
				InvalidPassword:  int(MetricLoginInvalidPassword),
				InternalError:    int(MetricLoginInternalError),
				SessionCreated:   int(MetricSessionCreated),
			},
			Events: flows.LoginEvents{
				LoginSuccess: auditEventLoginSuccess,
				LoginFailure: auditEventLoginFailure,
			},
			Errors: flows.LoginErrors{
				EngineNotReady:  ErrEngineNotReady,
				UserNotFound:    userstore.ErrNotFound,
				UserNotVerified: ErrUserNotVerified,
				InvalidPassword: ErrInvalidPassword,
			},
		},
		Validate: flows.ValidateDeps{
			ParseToken: func(token string) (*SessionClaims, error) {
				claims, err := e.jwtManager.Parse(token)
				if err != nil {
					return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
				}
				return claims, nil
			},
			ConnectCache:  connect,
			Segment:       e.config.Cache.Segment,
			ModeJWTOnly:   int(ModeJWTOnly),
			ModeStrict:    int(ModeStrict),
			EntryMissing:  session.ErrEntryNotFound,
			MetricInc:     metricInc,
			EmitAudit:     e.emitAudit,
			Warn:          warn,
			MetricSuccess: int(MetricSessionValidateSuccess),
			MetricFailure: int(MetricSessionValidateFailure),
			FailureEvent:  auditEventSessionValidateFailure,
		},
	})
}
