package tokenauth

import (
	"errors"
	"net/http"
)

// ErrorDescriptor is the stable machine-readable form of a failure, intended
// for boundary layers that serialize errors into API responses. Codes are
// fixed; messages may be reworded without breaking clients.
type ErrorDescriptor struct {
	Code    int
	Message string
	Status  int
}

// errorTable maps sentinel errors to descriptors. The mapping is an explicit
// ordered table resolved with errors.Is at lookup time, never by matching
// type or message names at runtime.
var errorTable = []struct {
	err  error
	desc ErrorDescriptor
}{
	{ErrPrincipalExists, ErrorDescriptor{Code: 1002, Message: "user existed", Status: http.StatusBadRequest}},
	{ErrUserNotFound, ErrorDescriptor{Code: 1003, Message: "user not existed", Status: http.StatusNotFound}},
	{ErrWeakPassword, ErrorDescriptor{Code: 1005, Message: "password policy violation", Status: http.StatusBadRequest}},
	{ErrUnauthenticated, ErrorDescriptor{Code: 1006, Message: "unauthenticated", Status: http.StatusUnauthorized}},
	{ErrUnauthorized, ErrorDescriptor{Code: 1007, Message: "you do not have permission", Status: http.StatusForbidden}},
	{ErrMalformedToken, ErrorDescriptor{Code: 1008, Message: "malformed token", Status: http.StatusBadRequest}},
	{ErrPasswordReuse, ErrorDescriptor{Code: 1009, Message: "password reuse rejected", Status: http.StatusBadRequest}},
	{ErrAuthRateLimited, ErrorDescriptor{Code: 1010, Message: "too many attempts", Status: http.StatusTooManyRequests}},
}

var uncategorizedDescriptor = ErrorDescriptor{
	Code:    9999,
	Message: "uncategorized error",
	Status:  http.StatusInternalServerError,
}

// DescriptorFor resolves err to its boundary descriptor. Wrapped errors
// resolve through errors.Is; anything outside the table (including
// ErrSigningFailure and backend I/O failures) maps to the uncategorized
// internal descriptor.
func DescriptorFor(err error) ErrorDescriptor {
	for _, entry := range errorTable {
		if errors.Is(err, entry.err) {
			return entry.desc
		}
	}
	return uncategorizedDescriptor
}
