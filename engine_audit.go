package goLogin

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/goLogin/session"
	"github.com/MrEthical07/goLogin/userstore"
	"github.com/MrEthical07/goLogin/validation"
)

const (
	auditEventLoginSuccess           = "login_success"
	auditEventLoginFailure           = "login_failure"
	auditEventSessionValidateFailure = "session_validate_failure"
)

// AuditErrorCode is the stable error classification recorded on audit events.
type AuditErrorCode string

const (
	auditErrValidation      AuditErrorCode = "validation_failed"
	auditErrUserNotFound    AuditErrorCode = "user_not_found"
	auditErrUnverified      AuditErrorCode = "user_not_verified"
	auditErrInvalidPassword AuditErrorCode = "invalid_password"
	auditErrInvalidToken    AuditErrorCode = "invalid_token"
	auditErrSessionNotFound AuditErrorCode = "session_not_found"
	auditErrUnavailable     AuditErrorCode = "backend_unavailable"
	auditErrInternal        AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	email string,
	sessionID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}
	if ua := userAgentFromContext(ctx); ua != "" {
		if metadata == nil {
			metadata = make(map[string]string, 1)
		}
		metadata["user_agent"] = ua
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Email:     email,
		SessionID: sessionID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	var verr *validation.Errors
	switch {
	case errors.As(err, &verr):
		return auditErrValidation
	case errors.Is(err, ErrUserNotFound), errors.Is(err, userstore.ErrNotFound):
		return auditErrUserNotFound
	case errors.Is(err, ErrUserNotVerified):
		return auditErrUnverified
	case errors.Is(err, ErrInvalidPassword):
		return auditErrInvalidPassword
	case errors.Is(err, ErrTokenInvalid):
		return auditErrInvalidToken
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, session.ErrEntryNotFound):
		return auditErrSessionNotFound
	case errors.Is(err, ErrCacheUnavailable), errors.Is(err, session.ErrRedisUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}
