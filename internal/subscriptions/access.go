package subscriptions

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gymstackhq/gymstack-backend/pkg/dates"
	"github.com/gymstackhq/gymstack-backend/pkg/db/models"
	"github.com/gymstackhq/gymstack-backend/pkg/enums"
	pkgerrors "github.com/gymstackhq/gymstack-backend/pkg/errors"
)

// ClientAccess is the per-request tenancy context resolved for a client
// account: who they are and the subscription window that admits them.
type ClientAccess struct {
	AccountID      uuid.UUID
	Email          string
	GymName        string
	SubscriptionID uuid.UUID
	PlanID         uuid.UUID
	StartDate      string
	EndDate        string
	Status         enums.SubscriptionStatus
}

// AccessResolver decides, from storage, whether a client account may use
// the platform right now. It is consulted on every client request; there
// is deliberately no cache, so an admin block takes effect immediately.
type AccessResolver struct {
	accounts accountFinder
	subs     latestActiveFinder
	today    func() string
}

type accountFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
}

type latestActiveFinder interface {
	LatestActiveByAccount(ctx context.Context, accountID uuid.UUID) (*models.Subscription, error)
}

// NewAccessResolver builds the resolver from its two lookups.
func NewAccessResolver(accounts accountFinder, subs latestActiveFinder) (*AccessResolver, error) {
	if accounts == nil {
		return nil, fmt.Errorf("accounts finder is required")
	}
	if subs == nil {
		return nil, fmt.Errorf("subscriptions finder is required")
	}
	return &AccessResolver{accounts: accounts, subs: subs, today: dates.Today}, nil
}

// Resolve loads the account and its latest active subscription and checks
// the admission rules: account approved, subscription status active,
// window not past. Trial rows do not open the portal. Every failure maps
// to a forbidden error with a caller-safe reason.
func (r *AccessResolver) Resolve(ctx context.Context, accountID uuid.UUID) (*ClientAccess, error) {
	account, err := r.accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account no longer exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load account")
	}

	if account.Role != enums.RoleClient {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "client access required")
	}
	if account.Status != enums.AccountStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account is not approved")
	}

	sub, err := r.subs.LatestActiveByAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "no active subscription")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load subscription")
	}

	if sub.Status != enums.SubscriptionStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "no active subscription")
	}
	if dates.IsExpired(sub.EndDate, r.today()) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "subscription has expired")
	}

	return &ClientAccess{
		AccountID:      account.ID,
		Email:          account.Email,
		GymName:        account.GymName,
		SubscriptionID: sub.ID,
		PlanID:         sub.PlanID,
		StartDate:      sub.StartDate,
		EndDate:        sub.EndDate,
		Status:         sub.Status,
	}, nil
}
