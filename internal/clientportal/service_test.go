package clientportal

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gymstackhq/gymstack-backend/internal/accounts"
	"github.com/gymstackhq/gymstack-backend/internal/members"
	"github.com/gymstackhq/gymstack-backend/pkg/db/models"
	"github.com/gymstackhq/gymstack-backend/pkg/enums"
	pkgerrors "github.com/gymstackhq/gymstack-backend/pkg/errors"
)

const testToday = "2026-08-30"

var testNow = time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

type stubPortal struct {
	account      *models.Account
	subsByAcct   []*models.Subscription
	memberCounts map[enums.MemberStatus]int64
	expiring     []models.Member
	recent       []models.Member
	monthSum     decimal.Decimal
	monthly      []members.MonthTotal
	byMethod     []members.MethodTotal
	byPlan       []members.PlanRevenue

	profileUpdates []accounts.UpdateProfileDTO
}

func (s *stubPortal) FindByID(_ context.Context, id uuid.UUID) (*models.Account, error) {
	if s.account == nil || s.account.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.account
	return &copied, nil
}

func (s *stubPortal) UpdateProfile(_ context.Context, _ uuid.UUID, dto accounts.UpdateProfileDTO) error {
	s.profileUpdates = append(s.profileUpdates, dto)
	if dto.GymName != nil {
		s.account.GymName = *dto.GymName
	}
	if dto.OwnerName != nil {
		s.account.OwnerName = *dto.OwnerName
	}
	return nil
}

func (s *stubPortal) LatestByAccount(_ context.Context, _ uuid.UUID) (*models.Subscription, error) {
	if len(s.subsByAcct) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.subsByAcct[len(s.subsByAcct)-1]
	return &copied, nil
}

func (s *stubPortal) ListByAccount(_ context.Context, _ uuid.UUID) ([]models.Subscription, error) {
	var rows []models.Subscription
	for _, sub := range s.subsByAcct {
		rows = append(rows, *sub)
	}
	return rows, nil
}

func (s *stubPortal) CountByStatus(_ context.Context, _ uuid.UUID) (map[enums.MemberStatus]int64, error) {
	return s.memberCounts, nil
}

func (s *stubPortal) ListExpiringBetween(_ context.Context, _ uuid.UUID, from, to string) ([]models.Member, error) {
	var rows []models.Member
	for _, m := range s.expiring {
		if m.EndDate >= from && m.EndDate <= to {
			rows = append(rows, m)
		}
	}
	return rows, nil
}

func (s *stubPortal) ListCreatedSince(_ context.Context, _ uuid.UUID, since time.Time) ([]models.Member, error) {
	var rows []models.Member
	for _, m := range s.recent {
		if !m.CreatedAt.Before(since) {
			rows = append(rows, m)
		}
	}
	return rows, nil
}

func (s *stubPortal) SumPaymentsSince(_ context.Context, _ uuid.UUID, _ string) (decimal.Decimal, error) {
	return s.monthSum, nil
}

func (s *stubPortal) MonthlyPaymentTotals(_ context.Context, _ uuid.UUID, _ string) ([]members.MonthTotal, error) {
	return s.monthly, nil
}

func (s *stubPortal) PaymentMethodTotals(_ context.Context, _ uuid.UUID) ([]members.MethodTotal, error) {
	return s.byMethod, nil
}

func (s *stubPortal) PlanRevenueTotals(_ context.Context, _ uuid.UUID) ([]members.PlanRevenue, error) {
	return s.byPlan, nil
}

func newTestService(stub *stubPortal) *service {
	return &service{
		accounts: stub,
		subs:     stub,
		members:  stub,
		today:    func() string { return testToday },
		now:      func() time.Time { return testNow },
	}
}

func testAccount() *models.Account {
	return &models.Account{
		ID:        uuid.New(),
		Email:     "gym@example.com",
		Role:      enums.RoleClient,
		Status:    enums.AccountStatusApproved,
		GymName:   "IronWorks",
		OwnerName: "Asha",
	}
}

func expiringMember(code, endDate string) models.Member {
	return models.Member{
		ID:             uuid.New(),
		MemberCode:     code,
		Name:           "Member " + code,
		MembershipPlan: "Monthly",
		StartDate:      "2026-08-01",
		EndDate:        endDate,
		Status:         enums.MemberStatusActive,
	}
}

func errCode(t *testing.T, err error) pkgerrors.Code {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	return typed.Code()
}

func TestProfileOmitsPasswordHash(t *testing.T) {
	stub := &stubPortal{account: testAccount()}
	stub.account.PasswordHash = "$argon2id$secret"

	svc := newTestService(stub)
	profile, err := svc.Profile(context.Background(), stub.account.ID)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.GymName != "IronWorks" || profile.Email != "gym@example.com" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
}

func TestUpdateProfileRejectsEmptyNames(t *testing.T) {
	stub := &stubPortal{account: testAccount()}
	svc := newTestService(stub)

	empty := "   "
	_, err := svc.UpdateProfile(context.Background(), stub.account.ID, UpdateProfileRequest{GymName: &empty})
	if code := errCode(t, err); code != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %s", code)
	}
	if len(stub.profileUpdates) != 0 {
		t.Fatal("invalid update must not reach storage")
	}
}

func TestUpdateProfileAppliesFields(t *testing.T) {
	stub := &stubPortal{account: testAccount()}
	svc := newTestService(stub)

	gym := "IronWorks Elite"
	profile, err := svc.UpdateProfile(context.Background(), stub.account.ID, UpdateProfileRequest{GymName: &gym})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if profile.GymName != "IronWorks Elite" {
		t.Fatalf("expected updated gym name, got %s", profile.GymName)
	}
}

func TestDashboardAssemblesView(t *testing.T) {
	account := testAccount()
	stub := &stubPortal{
		account: account,
		memberCounts: map[enums.MemberStatus]int64{
			enums.MemberStatusActive:  8,
			enums.MemberStatusExpired: 2,
		},
		monthSum: decimal.NewFromInt(4200),
		expiring: []models.Member{
			expiringMember("MEM0001", testToday),
			expiringMember("MEM0002", "2026-08-31"),
			expiringMember("MEM0003", "2026-09-10"),
		},
		recent: []models.Member{
			{ID: uuid.New(), MemberCode: "MEM0009", Name: "New", Status: enums.MemberStatusActive, CreatedAt: testNow.AddDate(0, 0, -2)},
			{ID: uuid.New(), MemberCode: "MEM0001", Name: "Old", Status: enums.MemberStatusActive, CreatedAt: testNow.AddDate(0, 0, -20)},
		},
		subsByAcct: []*models.Subscription{{
			ID: uuid.New(), AccountID: account.ID,
			StartDate: "2026-08-01", EndDate: "2026-09-01",
			Status: enums.SubscriptionStatusActive, PaymentStatus: enums.PaymentStatusConfirmed,
		}},
	}

	svc := newTestService(stub)
	dash, err := svc.Dashboard(context.Background(), account.ID)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if dash.TotalMembers != 10 || dash.ActiveMembers != 8 || dash.ExpiredMembers != 2 {
		t.Fatalf("unexpected counts: %+v", dash)
	}
	if !dash.MonthRevenue.Equal(decimal.NewFromInt(4200)) {
		t.Fatalf("unexpected revenue: %s", dash.MonthRevenue)
	}
	if len(dash.ExpiringToday) != 1 || dash.ExpiringToday[0].MemberCode != "MEM0001" {
		t.Fatalf("unexpected expiring today: %+v", dash.ExpiringToday)
	}
	if len(dash.ExpiringTomorrow) != 1 || dash.ExpiringTomorrow[0].MemberCode != "MEM0002" {
		t.Fatalf("unexpected expiring tomorrow: %+v", dash.ExpiringTomorrow)
	}
	if len(dash.RecentMembers) != 1 || dash.RecentMembers[0].MemberCode != "MEM0009" {
		t.Fatalf("unexpected recent members: %+v", dash.RecentMembers)
	}
	if dash.CurrentSubscription == nil {
		t.Fatal("expected current subscription")
	}
}

func TestExpiringMembersBuckets(t *testing.T) {
	stub := &stubPortal{
		account: testAccount(),
		expiring: []models.Member{
			expiringMember("MEM0001", testToday),
			expiringMember("MEM0002", "2026-08-31"),
			expiringMember("MEM0003", "2026-09-03"),
			expiringMember("MEM0004", "2026-09-20"),
		},
	}

	svc := newTestService(stub)
	out, err := svc.ExpiringMembers(context.Background(), stub.account.ID)
	if err != nil {
		t.Fatalf("expiring members: %v", err)
	}
	if len(out.Today) != 1 || out.Today[0].MemberCode != "MEM0001" {
		t.Fatalf("unexpected today bucket: %+v", out.Today)
	}
	if len(out.Tomorrow) != 1 || out.Tomorrow[0].MemberCode != "MEM0002" {
		t.Fatalf("unexpected tomorrow bucket: %+v", out.Tomorrow)
	}
	if len(out.ThisWeek) != 1 || out.ThisWeek[0].MemberCode != "MEM0003" {
		t.Fatalf("unexpected week bucket: %+v", out.ThisWeek)
	}
}

func TestRevenueDefaultsToCurrentYear(t *testing.T) {
	stub := &stubPortal{
		account: testAccount(),
		monthly: []members.MonthTotal{
			{Month: "2026-07", Total: decimal.NewFromInt(1000)},
			{Month: "2026-08", Total: decimal.NewFromInt(1500)},
		},
		byMethod: []members.MethodTotal{{PaymentMethod: "cash", Total: decimal.NewFromInt(2500), Count: 5}},
		byPlan:   []members.PlanRevenue{{MembershipPlan: "Monthly", Total: decimal.NewFromInt(2500)}},
	}

	svc := newTestService(stub)
	out, err := svc.Revenue(context.Background(), stub.account.ID, "")
	if err != nil {
		t.Fatalf("revenue: %v", err)
	}
	if out.Year != "2026" {
		t.Fatalf("expected current year default, got %s", out.Year)
	}
	if !out.YearTotal.Equal(decimal.NewFromInt(2500)) {
		t.Fatalf("unexpected year total: %s", out.YearTotal)
	}

	if _, err := svc.Revenue(context.Background(), stub.account.ID, "20x6"); errCode(t, err) != pkgerrors.CodeValidation {
		t.Fatal("expected validation error for malformed year")
	}
}

func TestSubscriptionStatusDerivations(t *testing.T) {
	account := testAccount()

	cases := []struct {
		name         string
		endDate      string
		wantExpired  bool
		wantSoon     bool
		wantDaysLeft int
	}{
		{"expired yesterday", "2026-08-29", true, false, 0},
		{"ends today", testToday, false, true, 0},
		{"ends in a week", "2026-09-06", false, true, 7},
		{"ends next month", "2026-09-30", false, false, 31},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubPortal{
				account: account,
				subsByAcct: []*models.Subscription{{
					ID: uuid.New(), AccountID: account.ID,
					StartDate: "2026-08-01", EndDate: tc.endDate,
					Status: enums.SubscriptionStatusActive, PaymentStatus: enums.PaymentStatusConfirmed,
				}},
			}
			svc := newTestService(stub)
			out, err := svc.SubscriptionStatus(context.Background(), account.ID)
			if err != nil {
				t.Fatalf("status: %v", err)
			}
			if out.IsExpired != tc.wantExpired || out.IsExpiringSoon != tc.wantSoon {
				t.Fatalf("expired=%v soon=%v, want %v/%v", out.IsExpired, out.IsExpiringSoon, tc.wantExpired, tc.wantSoon)
			}
			if out.DaysRemaining != tc.wantDaysLeft {
				t.Fatalf("days remaining %d, want %d", out.DaysRemaining, tc.wantDaysLeft)
			}
		})
	}
}

func TestSubscriptionStatusWithoutSubscription(t *testing.T) {
	stub := &stubPortal{account: testAccount()}
	svc := newTestService(stub)
	out, err := svc.SubscriptionStatus(context.Background(), stub.account.ID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !out.IsExpired || out.Subscription != nil {
		t.Fatalf("expected expired empty status, got %+v", out)
	}
}
