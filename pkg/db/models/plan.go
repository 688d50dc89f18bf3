package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/gymstackhq/gymstack-backend/pkg/enums"
)

// Plan is a platform subscription tier a gym can sign up under.
type Plan struct {
	ID             uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name           string           `gorm:"column:name;not null;uniqueIndex"`
	Description    *string          `gorm:"column:description"`
	Price          decimal.Decimal  `gorm:"column:price;type:numeric(12,2);not null"`
	DurationMonths int              `gorm:"column:duration_months;not null"`
	Features       pq.StringArray   `gorm:"column:features;type:text[];default:ARRAY[]::text[]"`
	IsTrial        bool             `gorm:"column:is_trial;not null;default:false"`
	Status         enums.PlanStatus `gorm:"column:status;type:text;not null;default:'active'"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
