package auth

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/gymstackhq/gymstack-backend/internal/accounts"
	"github.com/gymstackhq/gymstack-backend/internal/plans"
	"github.com/gymstackhq/gymstack-backend/internal/subscriptions"
	"github.com/gymstackhq/gymstack-backend/pkg/config"
	"github.com/gymstackhq/gymstack-backend/pkg/dates"
	"github.com/gymstackhq/gymstack-backend/pkg/db"
	"github.com/gymstackhq/gymstack-backend/pkg/enums"
	pkgerrors "github.com/gymstackhq/gymstack-backend/pkg/errors"
	"github.com/gymstackhq/gymstack-backend/pkg/security"
)

// SignupService handles the client onboarding transaction.
type SignupService interface {
	Signup(ctx context.Context, req SignupRequest) (*SignupResponse, error)
}

// SignupServiceParams packages the dependencies for the signup flow.
type SignupServiceParams struct {
	DB             *db.Client
	PasswordConfig config.PasswordConfig
}

type signupService struct {
	db          *db.Client
	passwordCfg config.PasswordConfig
	today       func() string
}

// NewSignupService builds a signup service with the provided dependencies.
func NewSignupService(params SignupServiceParams) (SignupService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &signupService{
		db:          params.DB,
		passwordCfg: params.PasswordConfig,
		today:       dates.Today,
	}, nil
}

// Signup creates the pending account and its first subscription in one
// transaction; a failure on either insert leaves no orphaned rows.
func (s *signupService) Signup(ctx context.Context, req SignupRequest) (*SignupResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var resp *SignupResponse
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		accountRepo := accounts.NewRepository(tx)
		planRepo := plans.NewRepository(tx)
		subRepo := subscriptions.NewRepository(tx)

		if _, err := accountRepo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check account email")
		}

		plan, err := planRepo.FindByID(ctx, req.PlanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "unknown plan")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load plan")
		}
		if plan.Status != enums.PlanStatusActive {
			return pkgerrors.New(pkgerrors.CodeValidation, "plan is not open for signup")
		}

		account, err := accountRepo.Create(ctx, accounts.CreateAccountDTO{
			Email:        email,
			PasswordHash: passwordHash,
			Role:         enums.RoleClient,
			Status:       enums.AccountStatusPending,
			GymName:      req.GymName,
			OwnerName:    req.OwnerName,
			Phone:        req.Phone,
			Address:      req.Address,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create account")
		}

		startDate := s.today()
		endDate, err := dates.AddMonths(startDate, plan.DurationMonths)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "derive end date")
		}

		status := enums.SubscriptionStatusActive
		if plan.IsTrial {
			status = enums.SubscriptionStatusTrial
		}

		if _, err := subRepo.Create(ctx, subscriptions.CreateSubscriptionDTO{
			AccountID:     account.ID,
			PlanID:        plan.ID,
			StartDate:     startDate,
			EndDate:       endDate,
			Status:        status,
			AmountPaid:    plan.Price,
			PaymentStatus: enums.PaymentStatusPending,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create subscription")
		}

		resp = &SignupResponse{
			AccountID: account.ID,
			Status:    string(enums.AccountStatusPending),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
