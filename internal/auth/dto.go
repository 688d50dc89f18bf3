package auth

import (
	"github.com/google/uuid"

	"github.com/gymstackhq/gymstack-backend/internal/accounts"
)

// LoginRequest carries the credentials for any account role.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the signed token plus the sanitized account.
type LoginResponse struct {
	Token string               `json:"token"`
	User  *accounts.AccountDTO `json:"user"`
}

// SignupRequest registers a new client gym against a plan.
type SignupRequest struct {
	Email     string    `json:"email" validate:"required,email"`
	Password  string    `json:"password" validate:"required,min=8"`
	GymName   string    `json:"gym_name" validate:"required"`
	OwnerName string    `json:"owner_name" validate:"required"`
	Phone     *string   `json:"phone,omitempty"`
	Address   *string   `json:"address,omitempty"`
	PlanID    uuid.UUID `json:"plan_id" validate:"required"`
}

// SignupResponse acknowledges the pending registration.
type SignupResponse struct {
	AccountID uuid.UUID `json:"account_id"`
	Status    string    `json:"status"`
}

// VerifyEmailRequest checks whether an email is already registered.
type VerifyEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// VerifyEmailResponse reports registration state without leaking more.
type VerifyEmailResponse struct {
	Exists bool `json:"exists"`
}
