package middleware

import (
	"context"
	"net/http"
	"strings"

	jwtinfra "github.com/ainager-onboarding/internal/infrastructure/jwt"
)

type contextKey string

const claimsKey contextKey = "claims"

// TicketVerifier is satisfied by *jwtinfra.Provider.
type TicketVerifier interface {
	Verify(token string) (*jwtinfra.Claims, error)
}

// Ticket returns middleware that validates the Bearer onboarding ticket and injects its claims into context.
func Ticket(verifier TicketVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeJSONError(w, http.StatusUnauthorized, "missing or invalid authorization header")
				return
			}
			claims, err := verifier.Verify(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired ticket")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// WithClaims stores ticket claims in ctx.
func WithClaims(ctx context.Context, c *jwtinfra.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

// ClaimsFromContext extracts ticket claims from the request context.
func ClaimsFromContext(ctx context.Context) (*jwtinfra.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*jwtinfra.Claims)
	return c, ok
}
