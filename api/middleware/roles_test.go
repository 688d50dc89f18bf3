package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gymstackhq/gymstack-backend/internal/subscriptions"
	"github.com/gymstackhq/gymstack-backend/pkg/db/models"
	"github.com/gymstackhq/gymstack-backend/pkg/enums"
)

type stubAccountFinder struct {
	account *models.Account
}

func (s stubAccountFinder) FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	if s.account == nil || s.account.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.account, nil
}

type stubSubscriptionFinder struct {
	sub *models.Subscription
}

func (s stubSubscriptionFinder) LatestActiveByAccount(ctx context.Context, accountID uuid.UUID) (*models.Subscription, error) {
	if s.sub == nil || s.sub.AccountID != accountID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.sub, nil
}

func newTestResolver(t *testing.T, account *models.Account, sub *models.Subscription) *subscriptions.AccessResolver {
	t.Helper()
	resolver, err := subscriptions.NewAccessResolver(stubAccountFinder{account: account}, stubSubscriptionFinder{sub: sub})
	if err != nil {
		t.Fatalf("build resolver: %v", err)
	}
	return resolver
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func requestWithIdentity(accountID uuid.UUID, role enums.Role) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := WithAccountID(req.Context(), accountID.String())
	ctx = WithRole(ctx, string(role))
	return req.WithContext(ctx)
}

func TestRequireSuperAdminRejectsClient(t *testing.T) {
	handler := RequireSuperAdmin(nil)(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithIdentity(uuid.New(), enums.RoleClient))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}
}

func TestRequireSuperAdminAllowsSuperAdmin(t *testing.T) {
	handler := RequireSuperAdmin(nil)(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithIdentity(uuid.New(), enums.RoleSuperAdmin))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
}

func TestRequireClientResolvesAccessIntoContext(t *testing.T) {
	accountID := uuid.New()
	account := &models.Account{
		ID:      accountID,
		Email:   "gym@example.com",
		GymName: "Iron Works",
		Role:    enums.RoleClient,
		Status:  enums.AccountStatusApproved,
	}
	sub := &models.Subscription{
		ID:        uuid.New(),
		AccountID: accountID,
		PlanID:    uuid.New(),
		StartDate: "2020-01-01",
		EndDate:   "2099-01-01",
		Status:    enums.SubscriptionStatusActive,
	}

	var access *subscriptions.ClientAccess
	handler := RequireClient(newTestResolver(t, account, sub), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		access = ClientAccessFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithIdentity(accountID, enums.RoleClient))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if access == nil {
		t.Fatal("expected client access in context")
	}
	if access.AccountID != accountID {
		t.Fatalf("expected account %s got %s", accountID, access.AccountID)
	}
	if access.SubscriptionID != sub.ID {
		t.Fatalf("expected subscription %s got %s", sub.ID, access.SubscriptionID)
	}
}

func TestRequireClientRejectsBlockedAccount(t *testing.T) {
	accountID := uuid.New()
	account := &models.Account{
		ID:     accountID,
		Role:   enums.RoleClient,
		Status: enums.AccountStatusBlocked,
	}

	handler := RequireClient(newTestResolver(t, account, nil), nil)(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithIdentity(accountID, enums.RoleClient))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}
}

func TestRequireClientRejectsExpiredSubscription(t *testing.T) {
	accountID := uuid.New()
	account := &models.Account{
		ID:     accountID,
		Role:   enums.RoleClient,
		Status: enums.AccountStatusApproved,
	}
	sub := &models.Subscription{
		ID:        uuid.New(),
		AccountID: accountID,
		StartDate: "2020-01-01",
		EndDate:   "2020-02-01",
		Status:    enums.SubscriptionStatusActive,
	}

	handler := RequireClient(newTestResolver(t, account, sub), nil)(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithIdentity(accountID, enums.RoleClient))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}
}

func TestRequireClientRejectsSuperAdmin(t *testing.T) {
	handler := RequireClient(newTestResolver(t, nil, nil), nil)(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithIdentity(uuid.New(), enums.RoleSuperAdmin))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}
}

func TestRequireAuthenticatedPassesSuperAdminWithoutResolution(t *testing.T) {
	handler := RequireAuthenticated(newTestResolver(t, nil, nil), nil)(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithIdentity(uuid.New(), enums.RoleSuperAdmin))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
}

func TestRequireAuthenticatedRunsClientAdmission(t *testing.T) {
	accountID := uuid.New()
	account := &models.Account{
		ID:     accountID,
		Role:   enums.RoleClient,
		Status: enums.AccountStatusPending,
	}

	handler := RequireAuthenticated(newTestResolver(t, account, nil), nil)(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithIdentity(accountID, enums.RoleClient))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}
}

func TestRequireAuthenticatedRejectsUnknownRole(t *testing.T) {
	handler := RequireAuthenticated(newTestResolver(t, nil, nil), nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := WithAccountID(req.Context(), uuid.NewString())
	ctx = WithRole(ctx, "auditor")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req.WithContext(ctx))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}
}
