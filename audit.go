package tokenauth

import (
	"context"
	"errors"
	"time"

	internalaudit "github.com/vqnguyen/tokenauth/internal/audit"
	"github.com/vqnguyen/tokenauth/internal/rate"
	"github.com/vqnguyen/tokenauth/revocation"
)

const (
	auditEventAuthSuccess           = "auth_success"
	auditEventAuthFailure           = "auth_failure"
	auditEventAuthRateLimited       = "auth_rate_limited"
	auditEventTokenIssued           = "token_issued"
	auditEventRefreshSuccess        = "refresh_success"
	auditEventRefreshRejected       = "refresh_rejected"
	auditEventLogout                = "logout"
	auditEventLogoutNoop            = "logout_noop"
	auditEventRevocationWritten     = "revocation_written"
	auditEventRevocationSweep       = "revocation_sweep"
	auditEventRegisterSuccess       = "register_success"
	auditEventRegisterDuplicate     = "register_duplicate"
	auditEventRegisterFailure       = "register_failure"
	auditEventPasswordChangeSuccess = "password_change_success"
	auditEventPasswordChangeFailure = "password_change_failure"
)

// AuditErrorCode is the stable failure identifier carried on audit events.
type AuditErrorCode string

const (
	auditErrUnauthenticated AuditErrorCode = "unauthenticated"
	auditErrUnauthorized    AuditErrorCode = "unauthorized"
	auditErrMalformedToken  AuditErrorCode = "malformed_token"
	auditErrUserNotFound    AuditErrorCode = "user_not_found"
	auditErrRateLimited     AuditErrorCode = "rate_limited"
	auditErrDuplicate       AuditErrorCode = "duplicate"
	auditErrPasswordPolicy  AuditErrorCode = "password_policy"
	auditErrPasswordReuse   AuditErrorCode = "password_reuse"
	auditErrSigningFailure  AuditErrorCode = "signing_failure"
	auditErrUnavailable     AuditErrorCode = "backend_unavailable"
	auditErrInternal        AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	tokenID string,
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

	event := internalaudit.Event{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		UserID:    userID,
		TokenID:   tokenID,
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

	switch {
	case errors.Is(err, ErrUnauthenticated):
		return auditErrUnauthenticated
	case errors.Is(err, ErrUnauthorized):
		return auditErrUnauthorized
	case errors.Is(err, ErrMalformedToken):
		return auditErrMalformedToken
	case errors.Is(err, ErrUserNotFound):
		return auditErrUserNotFound
	case errors.Is(err, ErrAuthRateLimited), errors.Is(err, rate.ErrRateLimited):
		return auditErrRateLimited
	case errors.Is(err, ErrPrincipalExists):
		return auditErrDuplicate
	case errors.Is(err, ErrWeakPassword):
		return auditErrPasswordPolicy
	case errors.Is(err, ErrPasswordReuse):
		return auditErrPasswordReuse
	case errors.Is(err, ErrSigningFailure):
		return auditErrSigningFailure
	case errors.Is(err, rate.ErrRedisUnavailable),
		errors.Is(err, revocation.ErrRedisUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}
