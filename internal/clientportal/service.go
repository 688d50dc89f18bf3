package clientportal

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gymstackhq/gymstack-backend/internal/accounts"
	"github.com/gymstackhq/gymstack-backend/internal/members"
	"github.com/gymstackhq/gymstack-backend/internal/subscriptions"
	"github.com/gymstackhq/gymstack-backend/pkg/dates"
	"github.com/gymstackhq/gymstack-backend/pkg/db"
	"github.com/gymstackhq/gymstack-backend/pkg/db/models"
	"github.com/gymstackhq/gymstack-backend/pkg/enums"
	pkgerrors "github.com/gymstackhq/gymstack-backend/pkg/errors"
)

// expiringSoonDays is the warning window surfaced to gyms before their
// own subscription lapses.
const expiringSoonDays = 7

// Service exposes the self-serve portal for an authenticated client
// gym. The accountID always comes from the resolved client access.
type Service interface {
	Profile(ctx context.Context, accountID uuid.UUID) (*ProfileDTO, error)
	UpdateProfile(ctx context.Context, accountID uuid.UUID, req UpdateProfileRequest) (*ProfileDTO, error)
	Dashboard(ctx context.Context, accountID uuid.UUID) (*DashboardDTO, error)
	Subscriptions(ctx context.Context, accountID uuid.UUID) ([]subscriptions.SubscriptionDTO, error)
	ExpiringMembers(ctx context.Context, accountID uuid.UUID) (*ExpiringMembersDTO, error)
	Revenue(ctx context.Context, accountID uuid.UUID, year string) (*RevenueDTO, error)
	SubscriptionStatus(ctx context.Context, accountID uuid.UUID) (*SubscriptionStatusDTO, error)
}

type accountStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, dto accounts.UpdateProfileDTO) error
}

type subscriptionStore interface {
	LatestByAccount(ctx context.Context, accountID uuid.UUID) (*models.Subscription, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]models.Subscription, error)
}

type memberStore interface {
	CountByStatus(ctx context.Context, accountID uuid.UUID) (map[enums.MemberStatus]int64, error)
	ListExpiringBetween(ctx context.Context, accountID uuid.UUID, from, to string) ([]models.Member, error)
	ListCreatedSince(ctx context.Context, accountID uuid.UUID, since time.Time) ([]models.Member, error)
	SumPaymentsSince(ctx context.Context, accountID uuid.UUID, fromDate string) (decimal.Decimal, error)
	MonthlyPaymentTotals(ctx context.Context, accountID uuid.UUID, year string) ([]members.MonthTotal, error)
	PaymentMethodTotals(ctx context.Context, accountID uuid.UUID) ([]members.MethodTotal, error)
	PlanRevenueTotals(ctx context.Context, accountID uuid.UUID) ([]members.PlanRevenue, error)
}

// ServiceParams packages the dependencies for the client portal.
type ServiceParams struct {
	DB *db.Client
}

type service struct {
	accounts accountStore
	subs     subscriptionStore
	members  memberStore
	today    func() string
	now      func() time.Time
}

// NewService builds a client portal service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	gdb := params.DB.DB()
	return &service{
		accounts: accounts.NewRepository(gdb),
		subs:     subscriptions.NewRepository(gdb),
		members:  members.NewRepository(gdb),
		today:    dates.Today,
		now:      time.Now,
	}, nil
}

// Profile returns the gym's own account, hash stripped by the DTO.
func (s *service) Profile(ctx context.Context, accountID uuid.UUID) (*ProfileDTO, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load profile")
	}
	return accounts.FromModel(account), nil
}

// UpdateProfile applies the provided fields and returns the fresh row.
func (s *service) UpdateProfile(ctx context.Context, accountID uuid.UUID, req UpdateProfileRequest) (*ProfileDTO, error) {
	if req.GymName != nil && strings.TrimSpace(*req.GymName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gym name cannot be empty")
	}
	if req.OwnerName != nil && strings.TrimSpace(*req.OwnerName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner name cannot be empty")
	}
	if err := s.accounts.UpdateProfile(ctx, accountID, accounts.UpdateProfileDTO{
		GymName:   req.GymName,
		OwnerName: req.OwnerName,
		Phone:     req.Phone,
		Address:   req.Address,
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update profile")
	}
	return s.Profile(ctx, accountID)
}

// Dashboard assembles the portal landing view in one call.
func (s *service) Dashboard(ctx context.Context, accountID uuid.UUID) (*DashboardDTO, error) {
	byStatus, err := s.members.CountByStatus(ctx, accountID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count members")
	}
	var total int64
	for _, n := range byStatus {
		total += n
	}

	today := s.today()
	monthStart := dates.YearMonth(today) + "-01"
	monthRevenue, err := s.members.SumPaymentsSince(ctx, accountID, monthStart)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sum month revenue")
	}

	expToday, err := s.members.ListExpiringBetween(ctx, accountID, today, today)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list expiring today")
	}
	tomorrow, err := dates.AddDays(today, 1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "derive tomorrow")
	}
	expTomorrow, err := s.members.ListExpiringBetween(ctx, accountID, tomorrow, tomorrow)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list expiring tomorrow")
	}

	recent, err := s.members.ListCreatedSince(ctx, accountID, s.now().AddDate(0, 0, -7))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list recent members")
	}

	dash := &DashboardDTO{
		TotalMembers:     total,
		ActiveMembers:    byStatus[enums.MemberStatusActive],
		ExpiredMembers:   byStatus[enums.MemberStatusExpired],
		MonthRevenue:     monthRevenue,
		ExpiringToday:    members.FromModels(expToday),
		ExpiringTomorrow: members.FromModels(expTomorrow),
		RecentMembers:    members.FromModels(recent),
	}

	sub, err := s.subs.LatestByAccount(ctx, accountID)
	switch {
	case err == nil:
		dash.CurrentSubscription = subscriptions.FromModel(sub)
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load subscription")
	}
	return dash, nil
}

// Subscriptions returns the gym's full subscription history.
func (s *service) Subscriptions(ctx context.Context, accountID uuid.UUID) ([]subscriptions.SubscriptionDTO, error) {
	rows, err := s.subs.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list subscriptions")
	}
	return subscriptions.FromModels(rows), nil
}

// ExpiringMembers buckets active members by how soon they lapse: today,
// tomorrow, and the rest of the coming week.
func (s *service) ExpiringMembers(ctx context.Context, accountID uuid.UUID) (*ExpiringMembersDTO, error) {
	today := s.today()
	tomorrow, err := dates.AddDays(today, 1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "derive tomorrow")
	}
	weekEnd, err := dates.AddDays(today, expiringSoonDays)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "derive week end")
	}

	rows, err := s.members.ListExpiringBetween(ctx, accountID, today, weekEnd)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list expiring members")
	}

	out := &ExpiringMembersDTO{
		Today:    []members.MemberDTO{},
		Tomorrow: []members.MemberDTO{},
		ThisWeek: []members.MemberDTO{},
	}
	for i := range rows {
		dto := *members.FromModel(&rows[i])
		switch rows[i].EndDate {
		case today:
			out.Today = append(out.Today, dto)
		case tomorrow:
			out.Tomorrow = append(out.Tomorrow, dto)
		default:
			out.ThisWeek = append(out.ThisWeek, dto)
		}
	}
	return out, nil
}

// Revenue reports the year's monthly collections plus the all-time
// payment-method and plan breakdowns.
func (s *service) Revenue(ctx context.Context, accountID uuid.UUID, year string) (*RevenueDTO, error) {
	year = strings.TrimSpace(year)
	if year == "" {
		year = s.today()[:4]
	}
	if len(year) != 4 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "year must be YYYY")
	}
	for _, r := range year {
		if r < '0' || r > '9' {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "year must be YYYY")
		}
	}

	monthly, err := s.members.MonthlyPaymentTotals(ctx, accountID, year)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sum monthly revenue")
	}
	byMethod, err := s.members.PaymentMethodTotals(ctx, accountID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sum revenue by method")
	}
	byPlan, err := s.members.PlanRevenueTotals(ctx, accountID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sum revenue by plan")
	}

	yearTotal := decimal.Zero
	for _, m := range monthly {
		yearTotal = yearTotal.Add(m.Total)
	}
	return &RevenueDTO{
		Year:      year,
		Monthly:   monthly,
		ByMethod:  byMethod,
		ByPlan:    byPlan,
		YearTotal: yearTotal,
	}, nil
}

// SubscriptionStatus reports the gym's latest subscription with derived
// expiry fields. DaysRemaining never goes below zero.
func (s *service) SubscriptionStatus(ctx context.Context, accountID uuid.UUID) (*SubscriptionStatusDTO, error) {
	sub, err := s.subs.LatestByAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &SubscriptionStatusDTO{IsExpired: true}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load subscription")
	}

	today := s.today()
	expired := dates.IsExpired(sub.EndDate, today)
	days := 0
	if !expired {
		days, err = dates.DaysUntil(today, sub.EndDate)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "derive days remaining")
		}
	}
	return &SubscriptionStatusDTO{
		Subscription:   subscriptions.FromModel(sub),
		DaysRemaining:  days,
		IsExpired:      expired,
		IsExpiringSoon: !expired && days <= expiringSoonDays,
	}, nil
}
