package auth

import "context"

type contextKey string

const (
	roleKey    contextKey = "auth.role"
	subjectKey contextKey = "auth.subject"
)

// WithIdentity stores the authenticated identity on the context.
func WithIdentity(ctx context.Context, role Role, subject string) context.Context {
	ctx = context.WithValue(ctx, roleKey, role)
	return context.WithValue(ctx, subjectKey, subject)
}

// RoleFromContext returns the authenticated role, empty if none.
func RoleFromContext(ctx context.Context) Role {
	role, _ := ctx.Value(roleKey).(Role)
	return role
}

// SubjectFromContext returns the authenticated subject, empty if none.
func SubjectFromContext(ctx context.Context) string {
	subject, _ := ctx.Value(subjectKey).(string)
	return subject
}
