package plans

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gymstackhq/gymstack-backend/pkg/db/models"
	"github.com/gymstackhq/gymstack-backend/pkg/enums"
	pkgerrors "github.com/gymstackhq/gymstack-backend/pkg/errors"
)

// Service defines the behavior needed by the plan controllers.
type Service interface {
	List(ctx context.Context) ([]PlanDTO, error)
	ListPublicActive(ctx context.Context) ([]PlanDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*PlanDetailDTO, error)
	Create(ctx context.Context, req CreatePlanRequest) (*PlanDTO, error)
	Update(ctx context.Context, id uuid.UUID, req UpdatePlanRequest) (*PlanDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetStatus(ctx context.Context, id uuid.UUID, status enums.PlanStatus) (*PlanDTO, error)
	Stats(ctx context.Context, id uuid.UUID) (*PlanStatsDTO, error)
}

type repository interface {
	Create(ctx context.Context, plan *models.Plan) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Plan, error)
	FindByName(ctx context.Context, name string) (*models.Plan, error)
	List(ctx context.Context) ([]models.Plan, error)
	ListActive(ctx context.Context) ([]models.Plan, error)
	Save(ctx context.Context, plan *models.Plan) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.PlanStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountSubscribers(ctx context.Context, planID uuid.UUID) (int64, error)
	CountActiveSubscribers(ctx context.Context, planID uuid.UUID) (int64, error)
	SumConfirmedRevenue(ctx context.Context, planID uuid.UUID) (decimal.Decimal, error)
	MonthlyTrend(ctx context.Context, planID uuid.UUID, sinceMonth string) ([]MonthlyTrendRow, error)
}

type service struct {
	repo repository
	now  func() time.Time
}

// NewService constructs a plan service backed by the provided repository.
func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("plans repository is required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) List(ctx context.Context) ([]PlanDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list plans")
	}
	return fromModels(rows), nil
}

func (s *service) ListPublicActive(ctx context.Context) ([]PlanDTO, error) {
	rows, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list active plans")
	}
	return fromModels(rows), nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*PlanDetailDTO, error) {
	plan, err := s.findPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	subscribers, err := s.repo.CountSubscribers(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count subscribers")
	}
	return &PlanDetailDTO{PlanDTO: *FromModel(plan), Subscribers: subscribers}, nil
}

func (s *service) Create(ctx context.Context, req CreatePlanRequest) (*PlanDTO, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "plan name is required")
	}
	price, err := parsePrice(req.Price)
	if err != nil {
		return nil, err
	}
	if req.DurationMonths <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "duration must be at least one month")
	}

	if _, err := s.repo.FindByName(ctx, name); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "a plan with this name already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check plan name")
	}

	plan := &models.Plan{
		Name:           name,
		Description:    req.Description,
		Price:          price,
		DurationMonths: req.DurationMonths,
		Features:       pq.StringArray(req.Features),
		IsTrial:        req.IsTrial,
		Status:         enums.PlanStatusActive,
	}
	if err := s.repo.Create(ctx, plan); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create plan")
	}
	return FromModel(plan), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdatePlanRequest) (*PlanDTO, error) {
	plan, err := s.findPlan(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "plan name cannot be empty")
		}
		if name != plan.Name {
			if _, err := s.repo.FindByName(ctx, name); err == nil {
				return nil, pkgerrors.New(pkgerrors.CodeConflict, "a plan with this name already exists")
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check plan name")
			}
		}
		plan.Name = name
	}
	if req.Description != nil {
		plan.Description = req.Description
	}
	if req.Price != nil {
		price, err := parsePrice(*req.Price)
		if err != nil {
			return nil, err
		}
		plan.Price = price
	}
	if req.DurationMonths != nil {
		if *req.DurationMonths <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duration must be at least one month")
		}
		plan.DurationMonths = *req.DurationMonths
	}
	if req.Features != nil {
		plan.Features = pq.StringArray(req.Features)
	}
	if req.IsTrial != nil {
		plan.IsTrial = *req.IsTrial
	}

	if err := s.repo.Save(ctx, plan); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update plan")
	}
	return FromModel(plan), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.findPlan(ctx, id); err != nil {
		return err
	}
	active, err := s.repo.CountActiveSubscribers(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count active subscribers")
	}
	if active > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "cannot delete a plan with active subscriptions")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete plan")
	}
	return nil
}

func (s *service) SetStatus(ctx context.Context, id uuid.UUID, status enums.PlanStatus) (*PlanDTO, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid plan status")
	}
	plan, err := s.findPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update plan status")
	}
	plan.Status = status
	return FromModel(plan), nil
}

func (s *service) Stats(ctx context.Context, id uuid.UUID) (*PlanStatsDTO, error) {
	plan, err := s.findPlan(ctx, id)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.CountSubscribers(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count subscribers")
	}
	active, err := s.repo.CountActiveSubscribers(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count active subscribers")
	}
	revenue, err := s.repo.SumConfirmedRevenue(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sum revenue")
	}

	since := s.now().UTC().AddDate(0, -11, 0).Format("2006-01")
	trend, err := s.repo.MonthlyTrend(ctx, id, since)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load monthly trend")
	}

	months := make([]MonthlyTrendDTO, 0, len(trend))
	for _, row := range trend {
		months = append(months, MonthlyTrendDTO{
			Month:   row.Month,
			Signups: row.Signups,
			Revenue: row.Revenue,
		})
	}

	return &PlanStatsDTO{
		PlanID:            plan.ID,
		Name:              plan.Name,
		TotalSubscribers:  total,
		ActiveSubscribers: active,
		TotalRevenue:      revenue,
		MonthlyTrend:      months,
	}, nil
}

func (s *service) findPlan(ctx context.Context, id uuid.UUID) (*models.Plan, error) {
	plan, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "plan not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load plan")
	}
	return plan, nil
}

func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "price must be a decimal number")
	}
	if price.IsNegative() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	return price, nil
}
