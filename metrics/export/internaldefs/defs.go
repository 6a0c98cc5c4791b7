package internaldefs

import (
	tokenauth "github.com/vqnguyen/tokenauth"
)

// CounterDef maps an engine counter to its exported metric name.
type CounterDef struct {
	ID   tokenauth.MetricID
	Name string
	Help string
}

// HistogramDef maps an engine histogram to its exported metric name.
type HistogramDef struct {
	ID   tokenauth.MetricID
	Name string
	Help string
}

var CounterDefs = []CounterDef{
	{ID: tokenauth.MetricAuthSuccess, Name: "tokenauth_auth_success_total", Help: "Successful credential authentications."},
	{ID: tokenauth.MetricAuthFailure, Name: "tokenauth_auth_failure_total", Help: "Failed credential authentications."},
	{ID: tokenauth.MetricAuthRateLimited, Name: "tokenauth_auth_rate_limited_total", Help: "Rate-limited authentication attempts."},
	{ID: tokenauth.MetricTokenIssued, Name: "tokenauth_token_issued_total", Help: "Signed tokens minted."},
	{ID: tokenauth.MetricVerifySuccess, Name: "tokenauth_verify_success_total", Help: "Tokens accepted by verification."},
	{ID: tokenauth.MetricVerifyMalformed, Name: "tokenauth_verify_malformed_total", Help: "Tokens rejected as malformed."},
	{ID: tokenauth.MetricVerifyBadSignature, Name: "tokenauth_verify_bad_signature_total", Help: "Tokens rejected for signature mismatch."},
	{ID: tokenauth.MetricVerifyExpired, Name: "tokenauth_verify_expired_total", Help: "Tokens rejected as expired."},
	{ID: tokenauth.MetricVerifyRevoked, Name: "tokenauth_verify_revoked_total", Help: "Tokens rejected as revoked."},
	{ID: tokenauth.MetricRefreshSuccess, Name: "tokenauth_refresh_success_total", Help: "Successful token refreshes."},
	{ID: tokenauth.MetricRefreshFailure, Name: "tokenauth_refresh_failure_total", Help: "Failed token refreshes."},
	{ID: tokenauth.MetricLogout, Name: "tokenauth_logout_total", Help: "Logouts that revoked a token."},
	{ID: tokenauth.MetricLogoutNoop, Name: "tokenauth_logout_noop_total", Help: "Logouts absorbed as no-ops."},
	{ID: tokenauth.MetricRevocationWritten, Name: "tokenauth_revocation_written_total", Help: "Revocation records written."},
	{ID: tokenauth.MetricRevocationPurged, Name: "tokenauth_revocation_purged_total", Help: "Revocation records purged by the sweeper."},
	{ID: tokenauth.MetricRegisterSuccess, Name: "tokenauth_register_success_total", Help: "Successful registrations."},
	{ID: tokenauth.MetricRegisterDuplicate, Name: "tokenauth_register_duplicate_total", Help: "Registrations rejected as duplicate."},
	{ID: tokenauth.MetricPasswordChangeSuccess, Name: "tokenauth_password_change_success_total", Help: "Successful password changes."},
	{ID: tokenauth.MetricPasswordChangeInvalidOld, Name: "tokenauth_password_change_invalid_old_total", Help: "Password changes with invalid old password."},
}

var HistogramDefs = []HistogramDef{
	{ID: tokenauth.MetricVerifyLatency, Name: "tokenauth_verify_latency_seconds", Help: "Verify latency histogram."},
}

// HistogramBounds are the engine's fixed bucket upper bounds in seconds.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix holds metric-name-safe spellings of HistogramBounds.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates raw to the fixed bucket count.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into cumulative le counts.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
