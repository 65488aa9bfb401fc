package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload is the identity snapshot embedded in a token.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Email  string
	Role   string
	JTI    string
}

// AccessTokenClaims is the JWT claim set issued by the identity provider.
type AccessTokenClaims struct {
	UserID uuid.UUID `json:"uid"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
	jwt.RegisteredClaims
}
