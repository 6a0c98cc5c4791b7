package tokenauth

import (
	"context"
	"errors"
	"time"

	internalaudit "github.com/vqnguyen/tokenauth/internal/audit"
	"github.com/vqnguyen/tokenauth/internal/rate"
	"github.com/vqnguyen/tokenauth/revocation"
	"github.com/vqnguyen/tokenauth/token"
)

// Engine is the token lifecycle service. Instances are configured through
// [Builder.Build] and immutable afterwards; every method is safe for
// concurrent use.
type Engine struct {
	config      Config
	tokens      *token.Manager
	revocations *revocation.Store
	principals  PrincipalRepository
	hasher      PasswordHasher
	rateLimiter *rate.Limiter
	audit       *internalaudit.Dispatcher
	metrics     *Metrics

	// clock is the single wall-clock source per operation; one read per
	// call avoids skew between the expiry and revocation checks.
	clock func() time.Time
}

// Close flushes and stops the audit dispatcher. The Engine must not be used
// after Close.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were discarded due to
// dispatcher backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of all counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) now() time.Time {
	if e == nil || e.clock == nil {
		return time.Now()
	}
	return e.clock()
}

// Authenticate validates username/password against the principal store and
// issues a fresh token on success. Unknown usernames fail with
// ErrUserNotFound; password mismatches fail with ErrUnauthenticated and
// count against the login attempt budget when throttling is enabled.
func (e *Engine) Authenticate(ctx context.Context, username, password string) (AuthResult, error) {
	if e == nil || e.principals == nil || e.hasher == nil {
		return AuthResult{}, ErrEngineNotReady
	}

	ip := clientIPFromContext(ctx)
	if e.rateLimiter != nil {
		if err := e.rateLimiter.Check(ctx, username, ip); err != nil {
			if errors.Is(err, rate.ErrRateLimited) {
				e.metricInc(MetricAuthRateLimited)
				e.emitAudit(ctx, auditEventAuthRateLimited, false, "", "", ErrAuthRateLimited, func() map[string]string {
					return map[string]string{"identifier": username}
				})
				return AuthResult{}, ErrAuthRateLimited
			}
			return AuthResult{}, err
		}
	}

	if password == "" {
		return AuthResult{}, e.failAuth(ctx, username, "", "empty_password", ErrUnauthenticated)
	}

	principal, err := e.principals.FindByUsername(ctx, username)
	if err != nil {
		return AuthResult{}, err
	}
	if principal == nil {
		return AuthResult{}, e.failAuth(ctx, username, "", "user_not_found", ErrUserNotFound)
	}

	ok, err := e.hasher.Verify(password, principal.CredentialHash)
	if err != nil || !ok {
		return AuthResult{}, e.failAuth(ctx, username, principal.ID, "password_mismatch", ErrUnauthenticated)
	}
	password = ""

	raw, claims, err := e.issue(principal)
	if err != nil {
		e.metricInc(MetricAuthFailure)
		e.emitAudit(ctx, auditEventAuthFailure, false, principal.ID, "", err, func() map[string]string {
			return map[string]string{"identifier": username, "reason": "issue_failed"}
		})
		return AuthResult{}, err
	}

	if e.rateLimiter != nil {
		if err := e.rateLimiter.Reset(ctx, username, ip); err != nil {
			return AuthResult{}, err
		}
	}

	e.metricInc(MetricAuthSuccess)
	e.emitAudit(ctx, auditEventAuthSuccess, true, principal.ID, claims.ID, nil, func() map[string]string {
		return map[string]string{"identifier": username}
	})

	return AuthResult{Token: raw, Authenticated: true}, nil
}

// failAuth records a failed credential check: attempt counter, metric,
// audit event. The returned error is always the caller-supplied sentinel so
// backend faults in the limiter take precedence only as rate limits.
func (e *Engine) failAuth(ctx context.Context, username, userID, reason string, sentinel error) error {
	if e.rateLimiter != nil {
		if err := e.rateLimiter.Increment(ctx, username, clientIPFromContext(ctx)); err != nil {
			if errors.Is(err, rate.ErrRateLimited) {
				e.metricInc(MetricAuthRateLimited)
				e.emitAudit(ctx, auditEventAuthRateLimited, false, userID, "", ErrAuthRateLimited, func() map[string]string {
					return map[string]string{"identifier": username}
				})
				return ErrAuthRateLimited
			}
			return err
		}
	}

	e.metricInc(MetricAuthFailure)
	e.emitAudit(ctx, auditEventAuthFailure, false, userID, "", sentinel, func() map[string]string {
		return map[string]string{"identifier": username, "reason": reason}
	})

	return sentinel
}
