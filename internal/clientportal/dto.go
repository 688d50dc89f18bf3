package clientportal

import (
	"github.com/shopspring/decimal"

	"github.com/gymstackhq/gymstack-backend/internal/accounts"
	"github.com/gymstackhq/gymstack-backend/internal/members"
	"github.com/gymstackhq/gymstack-backend/internal/subscriptions"
)

// UpdateProfileRequest carries the mutable gym profile fields.
type UpdateProfileRequest struct {
	GymName   *string `json:"gym_name,omitempty"`
	OwnerName *string `json:"owner_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Address   *string `json:"address,omitempty"`
}

// DashboardDTO is the client portal landing summary.
type DashboardDTO struct {
	TotalMembers        int64                          `json:"total_members"`
	ActiveMembers       int64                          `json:"active_members"`
	ExpiredMembers      int64                          `json:"expired_members"`
	MonthRevenue        decimal.Decimal                `json:"month_revenue"`
	ExpiringToday       []members.MemberDTO            `json:"expiring_today"`
	ExpiringTomorrow    []members.MemberDTO            `json:"expiring_tomorrow"`
	RecentMembers       []members.MemberDTO            `json:"recent_members"`
	CurrentSubscription *subscriptions.SubscriptionDTO `json:"current_subscription,omitempty"`
}

// ExpiringMembersDTO groups members by how soon they lapse.
type ExpiringMembersDTO struct {
	Today    []members.MemberDTO `json:"today"`
	Tomorrow []members.MemberDTO `json:"tomorrow"`
	ThisWeek []members.MemberDTO `json:"this_week"`
}

// RevenueDTO is the tenant's collections picture for one year.
type RevenueDTO struct {
	Year      string                `json:"year"`
	Monthly   []members.MonthTotal  `json:"monthly"`
	ByMethod  []members.MethodTotal `json:"by_method"`
	ByPlan    []members.PlanRevenue `json:"by_plan"`
	YearTotal decimal.Decimal       `json:"year_total"`
}

// SubscriptionStatusDTO reports where the gym's own subscription
// stands. Expiry is always derived from the dates at call time.
type SubscriptionStatusDTO struct {
	Subscription   *subscriptions.SubscriptionDTO `json:"subscription,omitempty"`
	DaysRemaining  int                            `json:"days_remaining"`
	IsExpired      bool                           `json:"is_expired"`
	IsExpiringSoon bool                           `json:"is_expiring_soon"`
}

// ProfileDTO aliases the account transport shape, hash already omitted.
type ProfileDTO = accounts.AccountDTO
