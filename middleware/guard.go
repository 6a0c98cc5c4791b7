package middleware

import (
	"context"
	"net/http"
	"strings"

	tokenauth "github.com/vqnguyen/tokenauth"
	"github.com/vqnguyen/tokenauth/token"
)

type claimsContextKey struct{}

// ClaimsFromContext returns the verified claims injected by a guard.
func ClaimsFromContext(ctx context.Context) (*token.Claims, bool) {
	c, ok := ctx.Value(claimsContextKey{}).(*token.Claims)
	return c, ok
}

// Guard verifies the bearer token on every request and injects the claims
// into the request context. Rejections use the engine's error-to-status
// mapping, so an expired token yields 401 and a revoked one 403.
func Guard(engine *tokenauth.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			raw, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := engine.Verify(r.Context(), raw, false)
			if err != nil {
				desc := tokenauth.DescriptorFor(err)
				http.Error(w, desc.Message, desc.Status)
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireScope wraps Guard and additionally demands that the verified
// token's scope contains entry, e.g. "ROLE_ADMIN" or a permission name.
func RequireScope(engine *tokenauth.Engine, entry string) func(http.Handler) http.Handler {
	guard := Guard(engine)
	return func(next http.Handler) http.Handler {
		return guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok || !scopeContains(claims.Scope, entry) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

func scopeContains(scope, entry string) bool {
	for _, s := range strings.Fields(scope) {
		if s == entry {
			return true
		}
	}
	return false
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	raw := value[len(bearer):]
	if raw == "" {
		return "", false
	}

	return raw, true
}
