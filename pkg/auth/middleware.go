package auth

import (
	"context"
	"net/http"
	"strings"

	"hostlink/pkg/models"
)

type contextKey string

const claimsContextKey contextKey = "auth_claims"

// ClaimsFromContext returns the authenticated claims stored by
// Middleware, or nil if the request was not authenticated.
func ClaimsFromContext(ctx context.Context) *models.AuthClaims {
	claims, _ := ctx.Value(claimsContextKey).(*models.AuthClaims)
	return claims
}

// Middleware validates the Bearer token and stores the claims in the
// request context.
func (j *JWTManager) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Invalid authorization header format", http.StatusUnauthorized)
			return
		}

		claims, err := j.ValidateToken(parts[1])
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// AdminMiddleware validates the Bearer token and requires admin
// privileges.
func (j *JWTManager) AdminMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return j.Middleware(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		if claims == nil || !claims.IsAdmin {
			http.Error(w, "Admin privileges required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
