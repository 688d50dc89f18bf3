package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gymstackhq/gymstack-backend/internal/accounts"
	pkgAuth "github.com/gymstackhq/gymstack-backend/pkg/auth"
	"github.com/gymstackhq/gymstack-backend/pkg/config"
	"github.com/gymstackhq/gymstack-backend/pkg/db/models"
	"github.com/gymstackhq/gymstack-backend/pkg/enums"
	pkgerrors "github.com/gymstackhq/gymstack-backend/pkg/errors"
	"github.com/gymstackhq/gymstack-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	VerifyEmail(ctx context.Context, req VerifyEmailRequest) (*VerifyEmailResponse, error)
}

type service struct {
	accounts accountRepository
	subs     subscriptionChecker
	jwtCfg   config.JWTConfig
	now      func() time.Time
}

type accountRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
}

type subscriptionChecker interface {
	LatestByAccount(ctx context.Context, accountID uuid.UUID) (*models.Subscription, error)
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	AccountRepo      accountRepository
	SubscriptionRepo subscriptionChecker
	JWTConfig        config.JWTConfig
}

// NewService constructs a login service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.AccountRepo == nil {
		return nil, fmt.Errorf("account repository is required")
	}
	if params.SubscriptionRepo == nil {
		return nil, fmt.Errorf("subscription repository is required")
	}
	return &service{
		accounts: params.AccountRepo,
		subs:     params.SubscriptionRepo,
		jwtCfg:   params.JWTConfig,
		now:      time.Now,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	account, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	switch account.Status {
	case enums.AccountStatusBlocked:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account is blocked")
	case enums.AccountStatusPending:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account is awaiting approval")
	}

	if account.Role == enums.RoleClient {
		if _, err := s.subs.LatestByAccount(ctx, account.ID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeForbidden, "no subscription on record")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load subscription")
		}
	}

	token, err := pkgAuth.MintAccessToken(s.jwtCfg, s.now().UTC(), pkgAuth.AccessTokenPayload{
		AccountID: account.ID,
		Email:     account.Email,
		Role:      account.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	return &LoginResponse{
		Token: token,
		User:  accounts.FromModel(account),
	}, nil
}

func (s *service) VerifyEmail(ctx context.Context, req VerifyEmailRequest) (*VerifyEmailResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	if _, err := s.accounts.FindByEmail(ctx, email); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &VerifyEmailResponse{Exists: false}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup email")
	}
	return &VerifyEmailResponse{Exists: true}, nil
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.Account, error) {
	input := normalizeEmail(email)
	if input == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	account, err := s.accounts.FindByEmail(ctx, input)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup account")
	}

	valid, err := security.VerifyPassword(password, account.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return account, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
