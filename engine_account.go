package tokenauth

import (
	"context"

	"github.com/google/uuid"
)

// Register creates a principal under the configured default role and
// returns it with the credential hash cleared. Usernames are unique;
// registering an existing one fails with ErrPrincipalExists.
func (e *Engine) Register(ctx context.Context, username, password string) (*Principal, error) {
	if e == nil || e.principals == nil || e.hasher == nil {
		return nil, ErrEngineNotReady
	}
	if username == "" {
		e.emitAudit(ctx, auditEventRegisterFailure, false, "", "", ErrWeakPassword, func() map[string]string {
			return map[string]string{"reason": "empty_username"}
		})
		return nil, ErrWeakPassword
	}
	if len(password) < e.config.Account.MinPasswordLength {
		e.emitAudit(ctx, auditEventRegisterFailure, false, "", "", ErrWeakPassword, func() map[string]string {
			return map[string]string{"reason": "password_too_short"}
		})
		return nil, ErrWeakPassword
	}

	existing, err := e.principals.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		e.metricInc(MetricRegisterDuplicate)
		e.emitAudit(ctx, auditEventRegisterDuplicate, false, existing.ID, "", ErrPrincipalExists, nil)
		return nil, ErrPrincipalExists
	}

	hash, err := e.hasher.Hash(password)
	if err != nil {
		e.emitAudit(ctx, auditEventRegisterFailure, false, "", "", err, func() map[string]string {
			return map[string]string{"reason": "hash_failed"}
		})
		return nil, err
	}
	password = ""

	principal := Principal{
		ID:             uuid.NewString(),
		Username:       username,
		CredentialHash: hash,
		Roles:          []RoleRef{{Name: e.config.Account.DefaultRole}},
	}

	if err := e.principals.Create(ctx, principal); err != nil {
		e.emitAudit(ctx, auditEventRegisterFailure, false, principal.ID, "", err, func() map[string]string {
			return map[string]string{"reason": "create_failed"}
		})
		return nil, err
	}

	e.metricInc(MetricRegisterSuccess)
	e.emitAudit(ctx, auditEventRegisterSuccess, true, principal.ID, "", nil, nil)

	principal.CredentialHash = ""
	return &principal, nil
}

// ChangePassword verifies the old credential, rejects reuse of the same
// password, and stores a fresh hash. Outstanding tokens stay valid until
// they expire; there is no per-user session index to invalidate.
func (e *Engine) ChangePassword(ctx context.Context, principalID, oldPassword, newPassword string) error {
	if e == nil || e.principals == nil || e.hasher == nil {
		return ErrEngineNotReady
	}
	if principalID == "" || oldPassword == "" || newPassword == "" {
		return ErrUnauthenticated
	}
	if len(newPassword) < e.config.Account.MinPasswordLength {
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, principalID, "", ErrWeakPassword, func() map[string]string {
			return map[string]string{"reason": "password_too_short"}
		})
		return ErrWeakPassword
	}

	principal, err := e.principals.FindByID(ctx, principalID)
	if err != nil {
		return err
	}
	if principal == nil {
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, principalID, "", ErrUserNotFound, func() map[string]string {
			return map[string]string{"reason": "principal_missing"}
		})
		return ErrUserNotFound
	}

	oldOK, err := e.hasher.Verify(oldPassword, principal.CredentialHash)
	if err != nil || !oldOK {
		e.metricInc(MetricPasswordChangeInvalidOld)
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, principalID, "", ErrUnauthenticated, func() map[string]string {
			return map[string]string{"reason": "invalid_old_password"}
		})
		return ErrUnauthenticated
	}

	same, err := e.hasher.Verify(newPassword, principal.CredentialHash)
	if err == nil && same {
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, principalID, "", ErrPasswordReuse, func() map[string]string {
			return map[string]string{"reason": "password_reuse"}
		})
		return ErrPasswordReuse
	}

	newHash, err := e.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	oldPassword = ""
	newPassword = ""

	if err := e.principals.UpdateCredential(ctx, principalID, newHash); err != nil {
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, principalID, "", err, func() map[string]string {
			return map[string]string{"reason": "update_failed"}
		})
		return err
	}

	e.metricInc(MetricPasswordChangeSuccess)
	e.emitAudit(ctx, auditEventPasswordChangeSuccess, true, principalID, "", nil, nil)

	return nil
}
