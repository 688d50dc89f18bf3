package plans

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gymstackhq/gymstack-backend/pkg/db/models"
	"github.com/gymstackhq/gymstack-backend/pkg/enums"
)

// PlanDTO is the transport shape for a subscription plan.
type PlanDTO struct {
	ID             uuid.UUID        `json:"id"`
	Name           string           `json:"name"`
	Description    *string          `json:"description,omitempty"`
	Price          decimal.Decimal  `json:"price"`
	DurationMonths int              `json:"duration_months"`
	Features       []string         `json:"features"`
	IsTrial        bool             `json:"is_trial"`
	Status         enums.PlanStatus `json:"status"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// PlanDetailDTO adds the subscriber count to the base plan shape.
type PlanDetailDTO struct {
	PlanDTO
	Subscribers int64 `json:"subscribers"`
}

// CreatePlanRequest is the admin payload for a new plan.
type CreatePlanRequest struct {
	Name           string   `json:"name" validate:"required"`
	Description    *string  `json:"description,omitempty"`
	Price          string   `json:"price" validate:"required"`
	DurationMonths int      `json:"duration_months" validate:"required,gt=0"`
	Features       []string `json:"features,omitempty"`
	IsTrial        bool     `json:"is_trial"`
}

// UpdatePlanRequest carries the mutable plan fields; nil means unchanged.
type UpdatePlanRequest struct {
	Name           *string  `json:"name,omitempty"`
	Description    *string  `json:"description,omitempty"`
	Price          *string  `json:"price,omitempty"`
	DurationMonths *int     `json:"duration_months,omitempty" validate:"omitempty,gt=0"`
	Features       []string `json:"features,omitempty"`
	IsTrial        *bool    `json:"is_trial,omitempty"`
}

// PlanStatsDTO summarizes one plan's subscription activity.
type PlanStatsDTO struct {
	PlanID            uuid.UUID         `json:"plan_id"`
	Name              string            `json:"name"`
	TotalSubscribers  int64             `json:"total_subscribers"`
	ActiveSubscribers int64             `json:"active_subscribers"`
	TotalRevenue      decimal.Decimal   `json:"total_revenue"`
	MonthlyTrend      []MonthlyTrendDTO `json:"monthly_trend"`
}

// MonthlyTrendDTO is one month's signup/revenue bucket.
type MonthlyTrendDTO struct {
	Month   string          `json:"month"`
	Signups int64           `json:"signups"`
	Revenue decimal.Decimal `json:"revenue"`
}

func FromModel(p *models.Plan) *PlanDTO {
	if p == nil {
		return nil
	}
	return &PlanDTO{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Price:          p.Price,
		DurationMonths: p.DurationMonths,
		Features:       append([]string(nil), p.Features...),
		IsTrial:        p.IsTrial,
		Status:         p.Status,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func fromModels(rows []models.Plan) []PlanDTO {
	out := make([]PlanDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
