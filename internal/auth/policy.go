package auth

import (
	"net/http"
	"strings"
)

// Policy decides which role a request needs. Reads require viewer,
// mutations require operator, and manual fund adjustments require
// admin; health and metrics endpoints are exempt.
type Policy struct {
	ExemptPaths []string
}

// DefaultPolicy covers the service's route surface.
func DefaultPolicy() Policy {
	return Policy{ExemptPaths: []string{"/healthz", "/metrics"}}
}

// IsExempt reports whether the request bypasses authentication.
func (p Policy) IsExempt(r *http.Request) bool {
	for _, path := range p.ExemptPaths {
		if r.URL.Path == path {
			return true
		}
	}
	return false
}

// RequiredRole returns the minimum role for the request. The second
// return is false when the route is unknown to the policy, in which
// case the middleware lets the mux produce its own 404.
func (p Policy) RequiredRole(r *http.Request) (Role, bool) {
	if !strings.HasPrefix(r.URL.Path, "/api/") {
		return "", false
	}
	if r.Method == http.MethodGet {
		return RoleViewer, true
	}
	if r.URL.Path == "/api/v1/fund/transactions" {
		return RoleAdmin, true
	}
	return RoleOperator, true
}
