package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/gymstackhq/gymstack-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	AccountID uuid.UUID
	Email     string
	Role      enums.Role
}

// AccessTokenClaims represents the typed JWT issued to callers.
type AccessTokenClaims struct {
	AccountID uuid.UUID  `json:"account_id"`
	Email     string     `json:"email"`
	Role      enums.Role `json:"role"`
	jwt.RegisteredClaims
}
