package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gymstackhq/gymstack-backend/pkg/enums"
)

// Member is a gym member owned by a client account. MemberCode is the
// human-facing identifier printed on cards and embedded in QR payloads;
// the QR payload is generated once at creation and never rewritten.
type Member struct {
	ID             uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID      uuid.UUID          `gorm:"column:account_id;type:uuid;not null;index:idx_members_account_code,unique,priority:1"`
	MemberCode     string             `gorm:"column:member_code;not null;index:idx_members_account_code,unique,priority:2"`
	Name           string             `gorm:"column:name;not null"`
	Email          *string            `gorm:"column:email"`
	Phone          *string            `gorm:"column:phone"`
	MembershipPlan string             `gorm:"column:membership_plan;not null"`
	AmountPaid     decimal.Decimal    `gorm:"column:amount_paid;type:numeric(12,2);not null;default:0"`
	PaymentMethod  string             `gorm:"column:payment_method;not null;default:'cash'"`
	UPIID          *string            `gorm:"column:upi_id"`
	Notes          *string            `gorm:"column:notes"`
	StartDate      string             `gorm:"column:start_date;type:text;not null"`
	EndDate        string             `gorm:"column:end_date;type:text;not null"`
	Status         enums.MemberStatus `gorm:"column:status;type:text;not null;default:'active'"`
	QRPayload      string             `gorm:"column:qr_payload;type:text;not null"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
