package auth

import "errors"

var (
	// ErrUnauthorized means no usable credentials were presented.
	ErrUnauthorized = errors.New("auth: missing credentials")

	// ErrInvalidToken means the token failed signature or claim checks.
	ErrInvalidToken = errors.New("auth: token rejected")

	// ErrForbidden means the authenticated role is insufficient.
	ErrForbidden = errors.New("auth: insufficient role")
)
