// Package auth validates bearer tokens and enforces role-based access
// on the API routes. Tokens are minted outside this service.
package auth

import (
	"net/http"
	"strings"
)

// Middleware wraps a handler with JWT validation and the route policy.
type Middleware struct {
	secret []byte
	policy Policy
}

// NewMiddleware constructs the middleware with the given signing secret.
func NewMiddleware(secret []byte, policy Policy) *Middleware {
	return &Middleware{secret: secret, policy: policy}
}

// Wrap enforces the policy on every request. Exempt and unknown routes
// pass through untouched; the mux decides what to do with them.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.policy.IsExempt(r) {
			next.ServeHTTP(w, r)
			return
		}
		required, ok := m.policy.RequiredRole(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		role, subject, err := m.authenticate(r)
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !RoleAtLeast(role, required) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), role, subject)))
	})
}

func (m *Middleware) authenticate(r *http.Request) (Role, string, error) {
	claims, err := ParseJWT(bearerToken(r), m.secret)
	if err != nil {
		return "", "", err
	}
	role, ok := NormalizeRole(claims.Role)
	if !ok {
		return "", "", ErrInvalidToken
	}
	return role, claims.Subject, nil
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
