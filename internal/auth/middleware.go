package auth

import (
	"context"
	"net/http"
	"strings"
)

// CookieName is the cookie checked when no Authorization header is sent
const CookieName = "token"

type claimsKey struct{}

// Middleware extracts a token from the Authorization Bearer header or the
// "token" cookie and, when valid, stores its claims in the request context.
// Missing or invalid tokens pass through unauthenticated; handlers decide
// what to do with an anonymous caller.
func Middleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := tokenFromRequest(r)
			if tokenStr == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := ValidateToken(secret, tokenStr)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(h[len("Bearer "):])
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

// WithClaims returns a context carrying claims
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// GetClaims retrieves the claims from the context, or nil if absent
func GetClaims(ctx context.Context) *Claims {
	c, _ := ctx.Value(claimsKey{}).(*Claims)
	return c
}

// OwnerFromContext returns the authenticated user id, or "" for anonymous
// callers
func OwnerFromContext(ctx context.Context) string {
	if c := GetClaims(ctx); c != nil {
		return c.Owner()
	}
	return ""
}
