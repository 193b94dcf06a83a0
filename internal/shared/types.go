package shared

import "github.com/golang-jwt/jwt/v5"

// Token types carried in the "type" claim.
const (
	TokenTypeAccess = "access"
)

// AuthClaims is the payload of an access token.
type AuthClaims struct {
	UserID   string `json:"user_id"`
	UserName string `json:"username"`
	Type     string `json:"type"`
	jwt.RegisteredClaims
}
