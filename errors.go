package tokenauth

import "errors"

var (
	// ErrUnauthenticated covers bad credentials, bad signatures, and expired
	// tokens. Callers must not be able to distinguish which of the three
	// occurred from the error alone.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrUnauthorized is returned when a structurally valid, unexpired token
	// has been revoked.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrMalformedToken is returned when a token cannot be decoded at all.
	ErrMalformedToken = errors.New("malformed token")
	// ErrUserNotFound is returned by Authenticate when no principal matches
	// the supplied username.
	ErrUserNotFound = errors.New("user not found")
	// ErrSigningFailure indicates signer misconfiguration discovered at
	// issuance time. It is fatal and unretryable, and deliberately distinct
	// from the four user-facing failure kinds.
	ErrSigningFailure = errors.New("token signing failed")
	// ErrPrincipalExists is returned by Register for duplicate usernames.
	ErrPrincipalExists = errors.New("principal already exists")
	// ErrAuthRateLimited is returned when the login attempt budget for an
	// identifier or IP is exhausted.
	ErrAuthRateLimited = errors.New("authentication rate limited")
	// ErrWeakPassword is returned when a password fails the minimum policy.
	ErrWeakPassword = errors.New("password policy violation")
	// ErrPasswordReuse is returned by ChangePassword when the new password
	// equals the current one.
	ErrPasswordReuse = errors.New("new password must be different from current password")
	// ErrEngineNotReady is returned when an Engine is used before Build
	// completed or after a nil receiver.
	ErrEngineNotReady = errors.New("engine not initialized")
)
