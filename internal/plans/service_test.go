package plans

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gymstackhq/gymstack-backend/pkg/db/models"
	"github.com/gymstackhq/gymstack-backend/pkg/enums"
	pkgerrors "github.com/gymstackhq/gymstack-backend/pkg/errors"
)

type stubRepo struct {
	plans       map[uuid.UUID]*models.Plan
	byName      map[string]*models.Plan
	active      map[uuid.UUID]int64
	subscribers map[uuid.UUID]int64
	revenue     map[uuid.UUID]decimal.Decimal
	trend       []MonthlyTrendRow
	deleted     []uuid.UUID
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		plans:       map[uuid.UUID]*models.Plan{},
		byName:      map[string]*models.Plan{},
		active:      map[uuid.UUID]int64{},
		subscribers: map[uuid.UUID]int64{},
		revenue:     map[uuid.UUID]decimal.Decimal{},
	}
}

func (s *stubRepo) add(plan *models.Plan) *models.Plan {
	if plan.ID == uuid.Nil {
		plan.ID = uuid.New()
	}
	s.plans[plan.ID] = plan
	s.byName[plan.Name] = plan
	return plan
}

func (s *stubRepo) Create(ctx context.Context, plan *models.Plan) error {
	s.add(plan)
	return nil
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Plan, error) {
	plan, ok := s.plans[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return plan, nil
}

func (s *stubRepo) FindByName(ctx context.Context, name string) (*models.Plan, error) {
	plan, ok := s.byName[name]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return plan, nil
}

func (s *stubRepo) List(ctx context.Context) ([]models.Plan, error) {
	out := make([]models.Plan, 0, len(s.plans))
	for _, p := range s.plans {
		out = append(out, *p)
	}
	return out, nil
}

func (s *stubRepo) ListActive(ctx context.Context) ([]models.Plan, error) {
	out := []models.Plan{}
	for _, p := range s.plans {
		if p.Status == enums.PlanStatusActive {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *stubRepo) Save(ctx context.Context, plan *models.Plan) error {
	s.plans[plan.ID] = plan
	return nil
}

func (s *stubRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.PlanStatus) error {
	if plan, ok := s.plans[id]; ok {
		plan.Status = status
	}
	return nil
}

func (s *stubRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.plans, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubRepo) CountSubscribers(ctx context.Context, planID uuid.UUID) (int64, error) {
	return s.subscribers[planID], nil
}

func (s *stubRepo) CountActiveSubscribers(ctx context.Context, planID uuid.UUID) (int64, error) {
	return s.active[planID], nil
}

func (s *stubRepo) SumConfirmedRevenue(ctx context.Context, planID uuid.UUID) (decimal.Decimal, error) {
	return s.revenue[planID], nil
}

func (s *stubRepo) MonthlyTrend(ctx context.Context, planID uuid.UUID, sinceMonth string) ([]MonthlyTrendRow, error) {
	return s.trend, nil
}

func newTestService(t *testing.T, repo *stubRepo) Service {
	t.Helper()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func TestCreatePlanValidation(t *testing.T) {
	svc := newTestService(t, newStubRepo())
	ctx := context.Background()

	cases := []struct {
		name string
		req  CreatePlanRequest
	}{
		{"empty name", CreatePlanRequest{Price: "29.00", DurationMonths: 1}},
		{"bad price", CreatePlanRequest{Name: "Basic", Price: "abc", DurationMonths: 1}},
		{"negative price", CreatePlanRequest{Name: "Basic", Price: "-1", DurationMonths: 1}},
		{"zero duration", CreatePlanRequest{Name: "Basic", Price: "29.00"}},
	}
	for _, tc := range cases {
		if _, err := svc.Create(ctx, tc.req); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		} else if code := errCode(t, err); code != pkgerrors.CodeValidation {
			t.Fatalf("%s: expected validation code, got %s", tc.name, code)
		}
	}
}

func TestCreatePlanDuplicateName(t *testing.T) {
	repo := newStubRepo()
	repo.add(&models.Plan{Name: "Basic", Status: enums.PlanStatusActive})
	svc := newTestService(t, repo)

	_, err := svc.Create(context.Background(), CreatePlanRequest{
		Name: "Basic", Price: "29.00", DurationMonths: 1,
	})
	if err == nil {
		t.Fatal("expected conflict for duplicate name")
	}
	if code := errCode(t, err); code != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict code, got %s", code)
	}
}

func TestCreatePlanSucceeds(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)

	dto, err := svc.Create(context.Background(), CreatePlanRequest{
		Name:           "  Pro ",
		Price:          "59.00",
		DurationMonths: 1,
		Features:       []string{"CSV export"},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if dto.Name != "Pro" {
		t.Fatalf("expected trimmed name, got %q", dto.Name)
	}
	if dto.Status != enums.PlanStatusActive {
		t.Fatalf("new plans should default to active, got %s", dto.Status)
	}
	if !dto.Price.Equal(decimal.RequireFromString("59.00")) {
		t.Fatalf("unexpected price %s", dto.Price)
	}
}

func TestDeletePlanBlockedByActiveSubscriptions(t *testing.T) {
	repo := newStubRepo()
	plan := repo.add(&models.Plan{Name: "Basic", Status: enums.PlanStatusActive})
	repo.active[plan.ID] = 3
	svc := newTestService(t, repo)

	err := svc.Delete(context.Background(), plan.ID)
	if err == nil {
		t.Fatal("expected delete to be blocked")
	}
	if code := errCode(t, err); code != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %s", code)
	}
	if len(repo.deleted) != 0 {
		t.Fatal("plan should not have been deleted")
	}
}

func TestDeletePlanWithoutSubscribers(t *testing.T) {
	repo := newStubRepo()
	plan := repo.add(&models.Plan{Name: "Basic", Status: enums.PlanStatusActive})
	svc := newTestService(t, repo)

	if err := svc.Delete(context.Background(), plan.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != plan.ID {
		t.Fatal("expected plan to be deleted")
	}
}

func TestGetByIDNotFound(t *testing.T) {
	svc := newTestService(t, newStubRepo())

	_, err := svc.GetByID(context.Background(), uuid.New())
	if err == nil {
		t.Fatal("expected not found")
	}
	if code := errCode(t, err); code != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found code, got %s", code)
	}
}

func TestSetStatus(t *testing.T) {
	repo := newStubRepo()
	plan := repo.add(&models.Plan{Name: "Basic", Status: enums.PlanStatusActive})
	svc := newTestService(t, repo)

	dto, err := svc.SetStatus(context.Background(), plan.ID, enums.PlanStatusInactive)
	if err != nil {
		t.Fatalf("set status failed: %v", err)
	}
	if dto.Status != enums.PlanStatusInactive {
		t.Fatalf("expected inactive, got %s", dto.Status)
	}

	if _, err := svc.SetStatus(context.Background(), plan.ID, "archived"); err == nil {
		t.Fatal("expected invalid status to be rejected")
	}
}

func TestStatsAggregates(t *testing.T) {
	repo := newStubRepo()
	plan := repo.add(&models.Plan{Name: "Pro", Status: enums.PlanStatusActive})
	repo.subscribers[plan.ID] = 10
	repo.active[plan.ID] = 4
	repo.revenue[plan.ID] = decimal.RequireFromString("590.00")
	repo.trend = []MonthlyTrendRow{
		{Month: "2026-07", Signups: 3, Revenue: decimal.RequireFromString("177.00")},
		{Month: "2026-08", Signups: 7, Revenue: decimal.RequireFromString("413.00")},
	}
	svc := newTestService(t, repo)

	stats, err := svc.Stats(context.Background(), plan.ID)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.TotalSubscribers != 10 || stats.ActiveSubscribers != 4 {
		t.Fatalf("unexpected subscriber counts %+v", stats)
	}
	if !stats.TotalRevenue.Equal(decimal.RequireFromString("590.00")) {
		t.Fatalf("unexpected revenue %s", stats.TotalRevenue)
	}
	if len(stats.MonthlyTrend) != 2 || stats.MonthlyTrend[1].Month != "2026-08" {
		t.Fatalf("unexpected trend %+v", stats.MonthlyTrend)
	}
}

func TestListPublicActiveFiltersInactive(t *testing.T) {
	repo := newStubRepo()
	repo.add(&models.Plan{Name: "Basic", Status: enums.PlanStatusActive})
	repo.add(&models.Plan{Name: "Legacy", Status: enums.PlanStatusInactive})
	svc := newTestService(t, repo)

	active, err := svc.ListPublicActive(context.Background())
	if err != nil {
		t.Fatalf("list active failed: %v", err)
	}
	if len(active) != 1 || active[0].Name != "Basic" {
		t.Fatalf("unexpected active plans %+v", active)
	}
}

func errCode(t *testing.T, err error) pkgerrors.Code {
	t.Helper()
	coded := pkgerrors.As(err)
	if coded == nil {
		t.Fatalf("expected coded error, got %v", err)
	}
	return coded.Code()
}
