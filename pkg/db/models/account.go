package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/gymstackhq/gymstack-backend/pkg/enums"
)

// Account is a login identity: the platform super admin or a client gym.
type Account struct {
	ID            uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email         string              `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash  string              `gorm:"column:password_hash;not null"`
	Role          enums.Role          `gorm:"column:role;type:text;not null"`
	Status        enums.AccountStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	GymName       string              `gorm:"column:gym_name;not null"`
	OwnerName     string              `gorm:"column:owner_name;not null"`
	Phone         *string             `gorm:"column:phone"`
	Address       *string             `gorm:"column:address"`
	EmailVerified bool                `gorm:"column:email_verified;not null;default:false"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
