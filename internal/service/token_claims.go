package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry lee el claim exp sin verificar la firma. El token es opaco para
// el cliente; si no es un JWT o no trae exp, ok es false.
func TokenExpiry(token string) (time.Time, bool) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
