package accounts

import (
	"time"

	"github.com/google/uuid"

	"github.com/gymstackhq/gymstack-backend/pkg/db/models"
	"github.com/gymstackhq/gymstack-backend/pkg/enums"
)

// AccountDTO is the transport shape that omits the password hash.
type AccountDTO struct {
	ID            uuid.UUID           `json:"id"`
	Email         string              `json:"email"`
	Role          enums.Role          `json:"role"`
	Status        enums.AccountStatus `json:"status"`
	GymName       string              `json:"gym_name"`
	OwnerName     string              `json:"owner_name"`
	Phone         *string             `json:"phone,omitempty"`
	Address       *string             `json:"address,omitempty"`
	EmailVerified bool                `json:"email_verified"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// CreateAccountDTO holds the data required by the repo to persist a new account.
type CreateAccountDTO struct {
	Email        string
	PasswordHash string
	Role         enums.Role
	Status       enums.AccountStatus
	GymName      string
	OwnerName    string
	Phone        *string
	Address      *string
}

// UpdateProfileDTO carries the mutable profile fields.
type UpdateProfileDTO struct {
	GymName   *string
	OwnerName *string
	Phone     *string
	Address   *string
}

func FromModel(a *models.Account) *AccountDTO {
	if a == nil {
		return nil
	}

	return &AccountDTO{
		ID:            a.ID,
		Email:         a.Email,
		Role:          a.Role,
		Status:        a.Status,
		GymName:       a.GymName,
		OwnerName:     a.OwnerName,
		Phone:         a.Phone,
		Address:       a.Address,
		EmailVerified: a.EmailVerified,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

func (c CreateAccountDTO) ToModel() *models.Account {
	status := c.Status
	if status == "" {
		status = enums.AccountStatusPending
	}

	return &models.Account{
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		Role:         c.Role,
		Status:       status,
		GymName:      c.GymName,
		OwnerName:    c.OwnerName,
		Phone:        c.Phone,
		Address:      c.Address,
	}
}
