package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gymstackhq/gymstack-backend/pkg/enums"
)

// Subscription links a client gym to a plan for a date range. Dates are
// stored as YYYY-MM-DD text so comparisons stay purely lexicographic.
// The most recent row by created_at is the authoritative one.
type Subscription struct {
	ID               uuid.UUID                `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID        uuid.UUID                `gorm:"column:account_id;type:uuid;not null;index"`
	PlanID           uuid.UUID                `gorm:"column:plan_id;type:uuid;not null;index"`
	StartDate        string                   `gorm:"column:start_date;type:text;not null"`
	EndDate          string                   `gorm:"column:end_date;type:text;not null"`
	Status           enums.SubscriptionStatus `gorm:"column:status;type:text;not null;default:'trial'"`
	AmountPaid       decimal.Decimal          `gorm:"column:amount_paid;type:numeric(12,2);not null;default:0"`
	PaymentStatus    enums.PaymentStatus      `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	PaymentMethod    *string                  `gorm:"column:payment_method"`
	PaymentReference *string                  `gorm:"column:payment_reference"`
	CreatedAt        time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time                `gorm:"column:updated_at;autoUpdateTime"`

	Plan *Plan `gorm:"foreignKey:PlanID"`
}
