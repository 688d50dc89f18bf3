package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MemberPayment records a payment collected from a gym member. Rows are
// append-only; payments are recorded manually by the gym, there is no
// external processor.
type MemberPayment struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID     uuid.UUID       `gorm:"column:account_id;type:uuid;not null;index"`
	MemberID      uuid.UUID       `gorm:"column:member_id;type:uuid;not null;index"`
	Amount        decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null"`
	PaymentDate   string          `gorm:"column:payment_date;type:text;not null"`
	PaymentMethod string          `gorm:"column:payment_method;not null;default:'cash'"`
	UPIID         *string         `gorm:"column:upi_id"`
	ForMonth      *string         `gorm:"column:for_month"`
	Notes         *string         `gorm:"column:notes"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`

	Member *Member `gorm:"foreignKey:MemberID"`
}
