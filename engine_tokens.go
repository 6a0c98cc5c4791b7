package tokenauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vqnguyen/tokenauth/token"
)

// Issue builds fresh claims for principal and returns the signed token.
// Every issuance gets a new unique token id; nothing is written to the
// revocation store.
func (e *Engine) Issue(ctx context.Context, principal *Principal) (string, error) {
	if e == nil || e.tokens == nil {
		return "", ErrEngineNotReady
	}
	if principal == nil {
		return "", ErrUserNotFound
	}

	raw, claims, err := e.issue(principal)
	if err != nil {
		return "", err
	}

	e.emitAudit(ctx, auditEventTokenIssued, true, principal.ID, claims.ID, nil, nil)
	return raw, nil
}

func (e *Engine) issue(principal *Principal) (string, *token.Claims, error) {
	scope := BuildScope(principal.Roles)

	raw, claims, err := e.tokens.Mint(principal.ID, principal.Username, scope)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrSigningFailure, err)
	}

	e.metricInc(MetricTokenIssued)
	return raw, claims, nil
}

// Verify decodes raw, checks its signature, effective expiry, and
// revocation status, in that order, and returns the claims on success.
//
// With refreshCheck false the effective expiry is the token's own exp
// claim; with refreshCheck true it is issuance plus the refreshable grace
// window, so an expired-for-API-use token can still pass for refresh.
func (e *Engine) Verify(ctx context.Context, raw string, refreshCheck bool) (*token.Claims, error) {
	if e == nil || e.tokens == nil || e.revocations == nil {
		return nil, ErrEngineNotReady
	}
	if e.metrics.LatencyEnabled() {
		start := time.Now()
		defer e.metrics.Observe(MetricVerifyLatency, time.Since(start))
	}

	claims, err := e.tokens.Parse(raw)
	if err != nil {
		if errors.Is(err, token.ErrSignature) {
			e.metricInc(MetricVerifyBadSignature)
			return nil, ErrUnauthenticated
		}
		e.metricInc(MetricVerifyMalformed)
		return nil, ErrMalformedToken
	}

	now := e.now()
	deadline := claims.ExpiresAt.Time
	if refreshCheck {
		deadline = e.tokens.RefreshDeadline(claims)
	}
	if !now.Before(deadline) {
		e.metricInc(MetricVerifyExpired)
		return nil, ErrUnauthenticated
	}

	revoked, err := e.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		e.metricInc(MetricVerifyRevoked)
		return nil, ErrUnauthorized
	}

	e.metricInc(MetricVerifySuccess)
	return claims, nil
}

// Refresh exchanges a token inside its refreshable window for a fresh one.
// When the old token has not yet reached its own expiry, its id is revoked
// before the new token is minted so the rotation leaves at most one
// acceptable token. A token past its grace window fails with
// ErrUnauthenticated and writes nothing.
func (e *Engine) Refresh(ctx context.Context, raw string) (AuthResult, error) {
	if e == nil || e.principals == nil {
		return AuthResult{}, ErrEngineNotReady
	}

	claims, err := e.Verify(ctx, raw, true)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshRejected, false, "", "", err, nil)
		return AuthResult{}, err
	}

	now := e.now()
	if now.Before(claims.ExpiresAt.Time) {
		// Still valid for API calls: revoke before minting so the old
		// token cannot be used or refreshed again. The record is kept
		// for the whole grace window, not just until exp.
		if err := e.revoke(ctx, claims); err != nil {
			e.metricInc(MetricRefreshFailure)
			e.emitAudit(ctx, auditEventRefreshRejected, false, claims.UserID, claims.ID, err, nil)
			return AuthResult{}, err
		}
	}

	principal, err := e.principals.FindByUsername(ctx, claims.Subject)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		return AuthResult{}, err
	}
	if principal == nil {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshRejected, false, claims.UserID, claims.ID, ErrUnauthenticated, func() map[string]string {
			return map[string]string{"reason": "principal_missing"}
		})
		return AuthResult{}, ErrUnauthenticated
	}

	newRaw, newClaims, err := e.issue(principal)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshRejected, false, principal.ID, claims.ID, err, nil)
		return AuthResult{}, err
	}

	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, auditEventRefreshSuccess, true, principal.ID, newClaims.ID, nil, func() map[string]string {
		return map[string]string{"rotated_from": claims.ID}
	})

	return AuthResult{Token: newRaw, Authenticated: true}, nil
}

// Logout revokes raw's token id. Any verification failure is absorbed into
// a successful no-op: a token that is already unusable needs no revocation,
// and repeating a logout must never surface an error. Only backend write
// failures propagate.
func (e *Engine) Logout(ctx context.Context, raw string) error {
	if e == nil || e.revocations == nil {
		return ErrEngineNotReady
	}

	claims, err := e.Verify(ctx, raw, true)
	if err != nil {
		e.metricInc(MetricLogoutNoop)
		e.emitAudit(ctx, auditEventLogoutNoop, true, "", "", err, nil)
		return nil
	}

	if err := e.revoke(ctx, claims); err != nil {
		return err
	}

	e.metricInc(MetricLogout)
	e.emitAudit(ctx, auditEventLogout, true, claims.UserID, claims.ID, nil, nil)
	return nil
}

// Introspect reduces Verify's typed failures to a single boolean: valid
// means raw would pass Verify without a refresh check right now. Callers
// deliberately cannot distinguish expired from revoked from malformed here.
// Backend failures still surface as errors rather than as valid=false.
func (e *Engine) Introspect(ctx context.Context, raw string) (IntrospectResult, error) {
	if e == nil {
		return IntrospectResult{}, ErrEngineNotReady
	}

	_, err := e.Verify(ctx, raw, false)
	if err != nil {
		if errors.Is(err, ErrUnauthenticated) || errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrMalformedToken) {
			return IntrospectResult{Valid: false}, nil
		}
		return IntrospectResult{}, err
	}

	return IntrospectResult{Valid: true}, nil
}

// revoke writes claims' id to the revocation store, retained until the end
// of the refresh grace window. Retaining only until exp would let a
// logged-out token reappear through Refresh once its record was pruned.
func (e *Engine) revoke(ctx context.Context, claims *token.Claims) error {
	horizon := e.tokens.RefreshDeadline(claims)
	if err := e.revocations.Revoke(ctx, claims.ID, horizon, e.now()); err != nil {
		return err
	}
	e.metricInc(MetricRevocationWritten)
	e.emitAudit(ctx, auditEventRevocationWritten, true, claims.UserID, claims.ID, nil, nil)
	return nil
}
