package admin

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gymstackhq/gymstack-backend/internal/accounts"
	"github.com/gymstackhq/gymstack-backend/internal/subscriptions"
	"github.com/gymstackhq/gymstack-backend/pkg/config"
	"github.com/gymstackhq/gymstack-backend/pkg/db/models"
	"github.com/gymstackhq/gymstack-backend/pkg/enums"
	pkgerrors "github.com/gymstackhq/gymstack-backend/pkg/errors"
	"github.com/gymstackhq/gymstack-backend/pkg/pagination"
)

const testToday = "2026-08-30"

var testNow = time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

type stubPlatform struct {
	accounts map[uuid.UUID]*models.Account
	subs     map[uuid.UUID][]*models.Subscription
	plans    map[uuid.UUID]*models.Plan

	memberCounts     map[uuid.UUID]int64
	confirmedTotal   decimal.Decimal
	confirmedMonth   decimal.Decimal
	paymentConfirmed []uuid.UUID
	deleteOrder      []string
}

func newStubPlatform() *stubPlatform {
	return &stubPlatform{
		accounts:     make(map[uuid.UUID]*models.Account),
		subs:         make(map[uuid.UUID][]*models.Subscription),
		plans:        make(map[uuid.UUID]*models.Plan),
		memberCounts: make(map[uuid.UUID]int64),
	}
}

func (s *stubPlatform) FindByID(_ context.Context, id uuid.UUID) (*models.Account, error) {
	account, ok := s.accounts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *account
	return &copied, nil
}

func (s *stubPlatform) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	for _, account := range s.accounts {
		if account.Email == email {
			copied := *account
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubPlatform) Create(_ context.Context, dto accounts.CreateAccountDTO) (*models.Account, error) {
	account := dto.ToModel()
	account.ID = uuid.New()
	account.CreatedAt = testNow
	s.accounts[account.ID] = account
	copied := *account
	return &copied, nil
}

func (s *stubPlatform) UpdateStatus(_ context.Context, id uuid.UUID, status enums.AccountStatus) error {
	if account, ok := s.accounts[id]; ok {
		account.Status = status
	}
	return nil
}

func (s *stubPlatform) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.accounts, id)
	s.deleteOrder = append(s.deleteOrder, "account")
	return nil
}

func (s *stubPlatform) ListClients(_ context.Context, filter accounts.ClientFilter, _ pagination.Params) ([]models.Account, int64, error) {
	var rows []models.Account
	for _, account := range s.accounts {
		if account.Role != enums.RoleClient {
			continue
		}
		if filter.Status != "" && account.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !strings.Contains(account.GymName, filter.Search) {
			continue
		}
		rows = append(rows, *account)
	}
	return rows, int64(len(rows)), nil
}

func (s *stubPlatform) ListAllClients(_ context.Context) ([]models.Account, error) {
	rows, _, err := s.ListClients(context.Background(), accounts.ClientFilter{}, pagination.Params{})
	return rows, err
}

func (s *stubPlatform) CountClientsByStatus(_ context.Context) (map[enums.AccountStatus]int64, error) {
	out := make(map[enums.AccountStatus]int64)
	for _, account := range s.accounts {
		if account.Role == enums.RoleClient {
			out[account.Status]++
		}
	}
	return out, nil
}

func (s *stubPlatform) CountClientsCreatedSince(_ context.Context, since time.Time) (int64, error) {
	var total int64
	for _, account := range s.accounts {
		if account.Role == enums.RoleClient && !account.CreatedAt.Before(since) {
			total++
		}
	}
	return total, nil
}

func (s *stubPlatform) LatestByAccount(_ context.Context, accountID uuid.UUID) (*models.Subscription, error) {
	rows := s.subs[accountID]
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *rows[len(rows)-1]
	return &copied, nil
}

func (s *stubPlatform) LatestByAccounts(_ context.Context, accountIDs []uuid.UUID) (map[uuid.UUID]*models.Subscription, error) {
	out := make(map[uuid.UUID]*models.Subscription)
	for _, id := range accountIDs {
		if rows := s.subs[id]; len(rows) > 0 {
			copied := *rows[len(rows)-1]
			out[id] = &copied
		}
	}
	return out, nil
}

func (s *stubPlatform) ListByAccount(_ context.Context, accountID uuid.UUID) ([]models.Subscription, error) {
	var rows []models.Subscription
	for _, sub := range s.subs[accountID] {
		rows = append(rows, *sub)
	}
	return rows, nil
}

func (s *stubPlatform) CreateSub(_ context.Context, dto subscriptions.CreateSubscriptionDTO) (*models.Subscription, error) {
	sub := dto.ToModel()
	sub.ID = uuid.New()
	sub.CreatedAt = testNow
	if plan, ok := s.plans[dto.PlanID]; ok {
		sub.Plan = plan
	}
	s.subs[dto.AccountID] = append(s.subs[dto.AccountID], sub)
	copied := *sub
	return &copied, nil
}

func (s *stubPlatform) UpdatePaymentStatus(_ context.Context, id uuid.UUID, status enums.PaymentStatus) error {
	for _, rows := range s.subs {
		for _, sub := range rows {
			if sub.ID == id {
				sub.PaymentStatus = status
				s.paymentConfirmed = append(s.paymentConfirmed, id)
			}
		}
	}
	return nil
}

func (s *stubPlatform) DeleteByAccount(_ context.Context, accountID uuid.UUID) error {
	delete(s.subs, accountID)
	s.deleteOrder = append(s.deleteOrder, "subscriptions")
	return nil
}

func (s *stubPlatform) SumConfirmedRevenue(_ context.Context) (decimal.Decimal, error) {
	return s.confirmedTotal, nil
}

func (s *stubPlatform) SumConfirmedRevenueSince(_ context.Context, _ string) (decimal.Decimal, error) {
	return s.confirmedMonth, nil
}

func (s *stubPlatform) Count(_ context.Context, accountID uuid.UUID) (int64, error) {
	return s.memberCounts[accountID], nil
}

func (s *stubPlatform) DeletePaymentsByAccount(_ context.Context, _ uuid.UUID) error {
	s.deleteOrder = append(s.deleteOrder, "payments")
	return nil
}

func (s *stubPlatform) DeleteAttendanceByAccount(_ context.Context, _ uuid.UUID) error {
	s.deleteOrder = append(s.deleteOrder, "attendance")
	return nil
}

func (s *stubPlatform) DeleteAllByAccount(_ context.Context, _ uuid.UUID) error {
	s.deleteOrder = append(s.deleteOrder, "members")
	return nil
}

// subAdapter maps the stub's CreateSub onto the tx store shape.
type subAdapter struct{ *stubPlatform }

func (a subAdapter) Create(ctx context.Context, dto subscriptions.CreateSubscriptionDTO) (*models.Subscription, error) {
	return a.CreateSub(ctx, dto)
}

type stubTx struct{}

func (stubTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTestService(stub *stubPlatform) *service {
	return &service{
		tx:       stubTx{},
		accounts: stub,
		subs:     subAdapter{stub},
		members:  stub,
		storesFor: func(*gorm.DB) txStores {
			return txStores{
				accounts: stub,
				subs:     subAdapter{stub},
				members:  stub,
				plans:    stubPlanStore{stub},
			}
		},
		passwordCfg: testPasswordConfig(),
		today:       func() string { return testToday },
		now:         func() time.Time { return testNow },
	}
}

type stubPlanStore struct{ *stubPlatform }

func (s stubPlanStore) FindByID(_ context.Context, id uuid.UUID) (*models.Plan, error) {
	plan, ok := s.plans[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *plan
	return &copied, nil
}

func seedClient(stub *stubPlatform, gym string, status enums.AccountStatus) *models.Account {
	account := &models.Account{
		ID:        uuid.New(),
		Email:     strings.ToLower(gym) + "@example.com",
		Role:      enums.RoleClient,
		Status:    status,
		GymName:   gym,
		OwnerName: "Owner " + gym,
		CreatedAt: testNow.AddDate(0, 0, -10),
	}
	stub.accounts[account.ID] = account
	return account
}

func seedPlan(stub *stubPlatform, name string, trial bool) *models.Plan {
	plan := &models.Plan{
		ID:             uuid.New(),
		Name:           name,
		Price:          decimal.NewFromInt(29),
		DurationMonths: 1,
		IsTrial:        trial,
		Status:         enums.PlanStatusActive,
	}
	stub.plans[plan.ID] = plan
	return plan
}

func errCode(t *testing.T, err error) pkgerrors.Code {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	return typed.Code()
}

func TestDashboardAggregates(t *testing.T) {
	stub := newStubPlatform()
	seedClient(stub, "IronWorks", enums.AccountStatusApproved)
	seedClient(stub, "FlexZone", enums.AccountStatusPending)
	blocked := seedClient(stub, "OldGym", enums.AccountStatusBlocked)
	blocked.CreatedAt = testNow.AddDate(0, 0, -90)
	stub.confirmedTotal = decimal.NewFromInt(500)
	stub.confirmedMonth = decimal.NewFromInt(120)

	svc := newTestService(stub)
	dash, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if dash.TotalClients != 3 || dash.ActiveClients != 1 || dash.PendingApprovals != 1 || dash.BlockedClients != 1 {
		t.Fatalf("unexpected totals: %+v", dash)
	}
	if !dash.TotalRevenue.Equal(decimal.NewFromInt(500)) || !dash.MonthRevenue.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("unexpected revenue: %+v", dash)
	}
	if dash.RecentSignups != 2 {
		t.Fatalf("expected 2 recent signups, got %d", dash.RecentSignups)
	}
}

func TestListClientsJoinsLatestSubscription(t *testing.T) {
	stub := newStubPlatform()
	client := seedClient(stub, "IronWorks", enums.AccountStatusApproved)
	plan := seedPlan(stub, "Basic", false)
	stub.subs[client.ID] = []*models.Subscription{
		{ID: uuid.New(), AccountID: client.ID, PlanID: plan.ID, Plan: plan, StartDate: "2026-08-01", EndDate: "2026-09-01", Status: enums.SubscriptionStatusActive, PaymentStatus: enums.PaymentStatusConfirmed},
	}
	seedClient(stub, "FlexZone", enums.AccountStatusPending)

	svc := newTestService(stub)
	rows, meta, err := svc.ListClients(context.Background(), accounts.ClientFilter{}, pagination.Params{Page: 1, Limit: 25})
	if err != nil {
		t.Fatalf("list clients: %v", err)
	}
	if meta.Total != 2 {
		t.Fatalf("expected total 2, got %d", meta.Total)
	}
	var joined, bare int
	for _, row := range rows {
		if row.Subscription != nil {
			joined++
			if row.Subscription.PlanName != "Basic" {
				t.Fatalf("expected plan name joined, got %q", row.Subscription.PlanName)
			}
		} else {
			bare++
		}
	}
	if joined != 1 || bare != 1 {
		t.Fatalf("expected one joined and one bare row, got %d/%d", joined, bare)
	}
}

func TestGetClientDetail(t *testing.T) {
	stub := newStubPlatform()
	client := seedClient(stub, "IronWorks", enums.AccountStatusApproved)
	stub.memberCounts[client.ID] = 42
	plan := seedPlan(stub, "Basic", false)
	stub.subs[client.ID] = []*models.Subscription{
		{ID: uuid.New(), AccountID: client.ID, PlanID: plan.ID, StartDate: "2026-07-01", EndDate: "2026-08-01", Status: enums.SubscriptionStatusExpired, PaymentStatus: enums.PaymentStatusConfirmed},
		{ID: uuid.New(), AccountID: client.ID, PlanID: plan.ID, StartDate: "2026-08-01", EndDate: "2026-09-01", Status: enums.SubscriptionStatusActive, PaymentStatus: enums.PaymentStatusConfirmed},
	}

	svc := newTestService(stub)
	detail, err := svc.GetClient(context.Background(), client.ID)
	if err != nil {
		t.Fatalf("get client: %v", err)
	}
	if detail.MembersCount != 42 {
		t.Fatalf("expected 42 members, got %d", detail.MembersCount)
	}
	if len(detail.Subscriptions) != 2 {
		t.Fatalf("expected full history, got %d rows", len(detail.Subscriptions))
	}

	if _, err := svc.GetClient(context.Background(), uuid.New()); errCode(t, err) != pkgerrors.CodeNotFound {
		t.Fatal("expected not found for unknown client")
	}
}

func TestCreateClientBypassesApprovalQueue(t *testing.T) {
	stub := newStubPlatform()
	plan := seedPlan(stub, "Basic", false)

	svc := newTestService(stub)
	row, err := svc.CreateClient(context.Background(), CreateClientRequest{
		Email:     "New@Gym.IO",
		Password:  "strongpass",
		GymName:   "NewGym",
		OwnerName: "Nina",
		PlanID:    plan.ID,
	})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	if row.Status != enums.AccountStatusApproved {
		t.Fatalf("expected approved account, got %s", row.Status)
	}
	if row.Email != "new@gym.io" {
		t.Fatalf("expected lowercased email, got %s", row.Email)
	}
	if row.Subscription == nil {
		t.Fatal("expected subscription on response")
	}
	if row.Subscription.PaymentStatus != enums.PaymentStatusConfirmed {
		t.Fatalf("expected confirmed payment, got %s", row.Subscription.PaymentStatus)
	}
	if row.Subscription.StartDate != testToday || row.Subscription.EndDate != "2026-09-30" {
		t.Fatalf("unexpected window: %s..%s", row.Subscription.StartDate, row.Subscription.EndDate)
	}
}

func TestCreateClientDuplicateEmail(t *testing.T) {
	stub := newStubPlatform()
	seedClient(stub, "IronWorks", enums.AccountStatusApproved)
	plan := seedPlan(stub, "Basic", false)

	svc := newTestService(stub)
	_, err := svc.CreateClient(context.Background(), CreateClientRequest{
		Email:     "ironworks@example.com",
		Password:  "strongpass",
		GymName:   "Copy",
		OwnerName: "Cody",
		PlanID:    plan.ID,
	})
	if code := errCode(t, err); code != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %s", code)
	}
}

func TestApproveConfirmsTrialPayment(t *testing.T) {
	stub := newStubPlatform()
	client := seedClient(stub, "IronWorks", enums.AccountStatusPending)
	trialPlan := seedPlan(stub, "Free Trial", true)
	sub := &models.Subscription{
		ID: uuid.New(), AccountID: client.ID, PlanID: trialPlan.ID, Plan: trialPlan,
		StartDate: "2026-08-20", EndDate: "2026-09-20",
		Status: enums.SubscriptionStatusTrial, PaymentStatus: enums.PaymentStatusPending,
	}
	stub.subs[client.ID] = []*models.Subscription{sub}

	svc := newTestService(stub)
	dto, err := svc.UpdateClientStatus(context.Background(), client.ID, UpdateClientStatusRequest{Status: "approved"})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if dto.Status != enums.AccountStatusApproved {
		t.Fatalf("expected approved, got %s", dto.Status)
	}
	if len(stub.paymentConfirmed) != 1 || stub.paymentConfirmed[0] != sub.ID {
		t.Fatalf("expected trial payment confirmed, got %v", stub.paymentConfirmed)
	}
}

func TestApproveNonTrialLeavesPaymentAlone(t *testing.T) {
	stub := newStubPlatform()
	client := seedClient(stub, "IronWorks", enums.AccountStatusPending)
	plan := seedPlan(stub, "Basic", false)
	stub.subs[client.ID] = []*models.Subscription{{
		ID: uuid.New(), AccountID: client.ID, PlanID: plan.ID, Plan: plan,
		Status: enums.SubscriptionStatusActive, PaymentStatus: enums.PaymentStatusPending,
	}}

	svc := newTestService(stub)
	if _, err := svc.UpdateClientStatus(context.Background(), client.ID, UpdateClientStatusRequest{Status: "approved"}); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if len(stub.paymentConfirmed) != 0 {
		t.Fatal("non-trial payment must stay pending")
	}
}

func TestUpdateStatusRejectsActive(t *testing.T) {
	stub := newStubPlatform()
	client := seedClient(stub, "IronWorks", enums.AccountStatusApproved)

	svc := newTestService(stub)
	_, err := svc.UpdateClientStatus(context.Background(), client.ID, UpdateClientStatusRequest{Status: "active"})
	if code := errCode(t, err); code != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %s", code)
	}
}

func TestDeleteClientCascadeOrder(t *testing.T) {
	stub := newStubPlatform()
	client := seedClient(stub, "IronWorks", enums.AccountStatusApproved)

	svc := newTestService(stub)
	if err := svc.DeleteClient(context.Background(), client.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	want := []string{"payments", "attendance", "members", "subscriptions", "account"}
	if len(stub.deleteOrder) != len(want) {
		t.Fatalf("unexpected cascade: %v", stub.deleteOrder)
	}
	for i, step := range want {
		if stub.deleteOrder[i] != step {
			t.Fatalf("cascade order %v, want %v", stub.deleteOrder, want)
		}
	}
}

func TestExportClientsCSV(t *testing.T) {
	stub := newStubPlatform()
	client := seedClient(stub, "IronWorks", enums.AccountStatusApproved)
	plan := seedPlan(stub, "Basic", false)
	stub.subs[client.ID] = []*models.Subscription{{
		ID: uuid.New(), AccountID: client.ID, PlanID: plan.ID, Plan: plan,
		StartDate: "2026-08-01", EndDate: "2026-09-01",
		Status: enums.SubscriptionStatusActive, PaymentStatus: enums.PaymentStatusConfirmed,
	}}

	svc := newTestService(stub)
	var buf strings.Builder
	if err := svc.ExportClientsCSV(context.Background(), &buf); err != nil {
		t.Fatalf("export: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus one row, got %d lines", len(lines))
	}
	if !strings.Contains(lines[1], "IronWorks") || !strings.Contains(lines[1], "Basic") {
		t.Fatalf("unexpected row: %s", lines[1])
	}
}
