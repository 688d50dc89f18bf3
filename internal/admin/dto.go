package admin

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gymstackhq/gymstack-backend/internal/accounts"
	"github.com/gymstackhq/gymstack-backend/internal/subscriptions"
)

// DashboardDTO is the super-admin landing summary.
type DashboardDTO struct {
	TotalClients     int64           `json:"total_clients"`
	ActiveClients    int64           `json:"active_clients"`
	PendingApprovals int64           `json:"pending_approvals"`
	BlockedClients   int64           `json:"blocked_clients"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	MonthRevenue     decimal.Decimal `json:"month_revenue"`
	RecentSignups    int64           `json:"recent_signups"`
}

// ClientRowDTO is one row of the admin client listing, joined to the
// client's most recent subscription.
type ClientRowDTO struct {
	accounts.AccountDTO
	Subscription *subscriptions.SubscriptionDTO `json:"subscription,omitempty"`
}

// ClientDetailDTO adds the member count and full subscription history.
type ClientDetailDTO struct {
	accounts.AccountDTO
	MembersCount  int64                           `json:"members_count"`
	Subscriptions []subscriptions.SubscriptionDTO `json:"subscriptions"`
}

// CreateClientRequest provisions a client without the signup queue:
// the account lands approved and the subscription confirmed.
type CreateClientRequest struct {
	Email     string    `json:"email" validate:"required,email"`
	Password  string    `json:"password" validate:"required,min=8"`
	GymName   string    `json:"gym_name" validate:"required"`
	OwnerName string    `json:"owner_name" validate:"required"`
	Phone     *string   `json:"phone,omitempty"`
	Address   *string   `json:"address,omitempty"`
	PlanID    uuid.UUID `json:"plan_id" validate:"required"`
}

// UpdateClientStatusRequest moves a client between lifecycle states.
type UpdateClientStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=approved blocked pending"`
}
