package subscriptions

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gymstackhq/gymstack-backend/pkg/db/models"
	"github.com/gymstackhq/gymstack-backend/pkg/enums"
)

// SubscriptionDTO is the transport shape for a client subscription.
type SubscriptionDTO struct {
	ID               uuid.UUID                `json:"id"`
	AccountID        uuid.UUID                `json:"account_id"`
	PlanID           uuid.UUID                `json:"plan_id"`
	PlanName         string                   `json:"plan_name,omitempty"`
	StartDate        string                   `json:"start_date"`
	EndDate          string                   `json:"end_date"`
	Status           enums.SubscriptionStatus `json:"status"`
	AmountPaid       decimal.Decimal          `json:"amount_paid"`
	PaymentStatus    enums.PaymentStatus      `json:"payment_status"`
	PaymentMethod    *string                  `json:"payment_method,omitempty"`
	PaymentReference *string                  `json:"payment_reference,omitempty"`
	CreatedAt        time.Time                `json:"created_at"`
}

// CreateSubscriptionDTO holds the data required to persist a subscription.
type CreateSubscriptionDTO struct {
	AccountID        uuid.UUID
	PlanID           uuid.UUID
	StartDate        string
	EndDate          string
	Status           enums.SubscriptionStatus
	AmountPaid       decimal.Decimal
	PaymentStatus    enums.PaymentStatus
	PaymentMethod    *string
	PaymentReference *string
}

func FromModel(s *models.Subscription) *SubscriptionDTO {
	if s == nil {
		return nil
	}
	dto := &SubscriptionDTO{
		ID:               s.ID,
		AccountID:        s.AccountID,
		PlanID:           s.PlanID,
		StartDate:        s.StartDate,
		EndDate:          s.EndDate,
		Status:           s.Status,
		AmountPaid:       s.AmountPaid,
		PaymentStatus:    s.PaymentStatus,
		PaymentMethod:    s.PaymentMethod,
		PaymentReference: s.PaymentReference,
		CreatedAt:        s.CreatedAt,
	}
	if s.Plan != nil {
		dto.PlanName = s.Plan.Name
	}
	return dto
}

// FromModels maps a slice of subscription rows.
func FromModels(rows []models.Subscription) []SubscriptionDTO {
	out := make([]SubscriptionDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}

func (c CreateSubscriptionDTO) ToModel() *models.Subscription {
	status := c.Status
	if status == "" {
		status = enums.SubscriptionStatusTrial
	}
	paymentStatus := c.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = enums.PaymentStatusPending
	}
	return &models.Subscription{
		AccountID:        c.AccountID,
		PlanID:           c.PlanID,
		StartDate:        c.StartDate,
		EndDate:          c.EndDate,
		Status:           status,
		AmountPaid:       c.AmountPaid,
		PaymentStatus:    paymentStatus,
		PaymentMethod:    c.PaymentMethod,
		PaymentReference: c.PaymentReference,
	}
}
