package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the token claims the service cares about. Identity
// management lives outside this service; tokens are minted by the
// surrounding shell and only validated here.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// ParseJWT validates an HS256 bearer token and returns its claims.
func ParseJWT(token string, secret []byte) (*Claims, error) {
	if token == "" || len(secret) == 0 {
		return nil, ErrUnauthorized
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
