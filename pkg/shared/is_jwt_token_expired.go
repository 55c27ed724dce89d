package shared

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// IsJWTTokenExpired returns true if the token's exp claim lies in the past.
// Tokens without an exp claim never expire; tokens that cannot be parsed are
// treated as expired.
func IsJWTTokenExpired(accessToken string) bool {
	token, _, err := new(jwt.Parser).ParseUnverified(accessToken, jwt.MapClaims{})
	if err != nil {
		return true
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return true
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return false
	}
	return exp-float64(time.Now().Unix()) <= 0
}
