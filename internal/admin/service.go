package admin

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gymstackhq/gymstack-backend/internal/accounts"
	"github.com/gymstackhq/gymstack-backend/internal/members"
	"github.com/gymstackhq/gymstack-backend/internal/plans"
	"github.com/gymstackhq/gymstack-backend/internal/subscriptions"
	"github.com/gymstackhq/gymstack-backend/pkg/config"
	"github.com/gymstackhq/gymstack-backend/pkg/dates"
	"github.com/gymstackhq/gymstack-backend/pkg/db"
	"github.com/gymstackhq/gymstack-backend/pkg/db/models"
	"github.com/gymstackhq/gymstack-backend/pkg/enums"
	pkgerrors "github.com/gymstackhq/gymstack-backend/pkg/errors"
	"github.com/gymstackhq/gymstack-backend/pkg/pagination"
	"github.com/gymstackhq/gymstack-backend/pkg/security"
)

// Service exposes the super-admin operations over client gyms.
type Service interface {
	Dashboard(ctx context.Context) (*DashboardDTO, error)
	ListClients(ctx context.Context, filter accounts.ClientFilter, page pagination.Params) ([]ClientRowDTO, *pagination.Meta, error)
	GetClient(ctx context.Context, clientID uuid.UUID) (*ClientDetailDTO, error)
	CreateClient(ctx context.Context, req CreateClientRequest) (*ClientRowDTO, error)
	UpdateClientStatus(ctx context.Context, clientID uuid.UUID, req UpdateClientStatusRequest) (*accounts.AccountDTO, error)
	DeleteClient(ctx context.Context, clientID uuid.UUID) error
	ExportClientsCSV(ctx context.Context, w io.Writer) error
}

// accountStore is the account surface the service reads through.
type accountStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	ListClients(ctx context.Context, filter accounts.ClientFilter, page pagination.Params) ([]models.Account, int64, error)
	ListAllClients(ctx context.Context) ([]models.Account, error)
	CountClientsByStatus(ctx context.Context) (map[enums.AccountStatus]int64, error)
	CountClientsCreatedSince(ctx context.Context, since time.Time) (int64, error)
}

type subscriptionStore interface {
	LatestByAccount(ctx context.Context, accountID uuid.UUID) (*models.Subscription, error)
	LatestByAccounts(ctx context.Context, accountIDs []uuid.UUID) (map[uuid.UUID]*models.Subscription, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]models.Subscription, error)
	SumConfirmedRevenue(ctx context.Context) (decimal.Decimal, error)
	SumConfirmedRevenueSince(ctx context.Context, fromDate string) (decimal.Decimal, error)
}

type memberCounter interface {
	Count(ctx context.Context, accountID uuid.UUID) (int64, error)
}

// txStores bundles the per-transaction repositories used by the
// multi-statement admin flows.
type txStores struct {
	accounts accountTxStore
	subs     subscriptionTxStore
	members  memberTxStore
	plans    planTxStore
}

type accountTxStore interface {
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	Create(ctx context.Context, dto accounts.CreateAccountDTO) (*models.Account, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.AccountStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type subscriptionTxStore interface {
	Create(ctx context.Context, dto subscriptions.CreateSubscriptionDTO) (*models.Subscription, error)
	LatestByAccount(ctx context.Context, accountID uuid.UUID) (*models.Subscription, error)
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status enums.PaymentStatus) error
	DeleteByAccount(ctx context.Context, accountID uuid.UUID) error
}

type memberTxStore interface {
	DeletePaymentsByAccount(ctx context.Context, accountID uuid.UUID) error
	DeleteAttendanceByAccount(ctx context.Context, accountID uuid.UUID) error
	DeleteAllByAccount(ctx context.Context, accountID uuid.UUID) error
}

type planTxStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Plan, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams packages the dependencies for the admin service.
type ServiceParams struct {
	DB             *db.Client
	PasswordConfig config.PasswordConfig
}

type service struct {
	tx          txRunner
	accounts    accountStore
	subs        subscriptionStore
	members     memberCounter
	storesFor   func(tx *gorm.DB) txStores
	passwordCfg config.PasswordConfig
	today       func() string
	now         func() time.Time
}

// NewService builds an admin service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	gdb := params.DB.DB()
	return &service{
		tx:       params.DB,
		accounts: accounts.NewRepository(gdb),
		subs:     subscriptions.NewRepository(gdb),
		members:  members.NewRepository(gdb),
		storesFor: func(tx *gorm.DB) txStores {
			return txStores{
				accounts: accounts.NewRepository(tx),
				subs:     subscriptions.NewRepository(tx),
				members:  members.NewRepository(tx),
				plans:    plans.NewRepository(tx),
			}
		},
		passwordCfg: params.PasswordConfig,
		today:       dates.Today,
		now:         time.Now,
	}, nil
}

// Dashboard aggregates the platform totals for the admin landing page.
// Revenue counts confirmed subscription payments only.
func (s *service) Dashboard(ctx context.Context) (*DashboardDTO, error) {
	byStatus, err := s.accounts.CountClientsByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count clients")
	}
	var total int64
	for _, n := range byStatus {
		total += n
	}

	totalRevenue, err := s.subs.SumConfirmedRevenue(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sum revenue")
	}
	monthStart := dates.YearMonth(s.today()) + "-01"
	monthRevenue, err := s.subs.SumConfirmedRevenueSince(ctx, monthStart)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sum month revenue")
	}

	recent, err := s.accounts.CountClientsCreatedSince(ctx, s.now().AddDate(0, 0, -30))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count recent signups")
	}

	return &DashboardDTO{
		TotalClients:     total,
		ActiveClients:    byStatus[enums.AccountStatusApproved],
		PendingApprovals: byStatus[enums.AccountStatusPending],
		BlockedClients:   byStatus[enums.AccountStatusBlocked],
		TotalRevenue:     totalRevenue,
		MonthRevenue:     monthRevenue,
		RecentSignups:    recent,
	}, nil
}

// ListClients returns one page of client gyms, each joined to its most
// recent subscription.
func (s *service) ListClients(ctx context.Context, filter accounts.ClientFilter, page pagination.Params) ([]ClientRowDTO, *pagination.Meta, error) {
	page = page.Normalize()
	rows, total, err := s.accounts.ListClients(ctx, filter, page)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list clients")
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for i := range rows {
		ids = append(ids, rows[i].ID)
	}
	latest, err := s.subs.LatestByAccounts(ctx, ids)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load latest subscriptions")
	}

	out := make([]ClientRowDTO, 0, len(rows))
	for i := range rows {
		row := ClientRowDTO{AccountDTO: *accounts.FromModel(&rows[i])}
		if sub, ok := latest[rows[i].ID]; ok {
			row.Subscription = subscriptions.FromModel(sub)
		}
		out = append(out, row)
	}
	meta := pagination.NewMeta(page, total)
	return out, &meta, nil
}

// GetClient returns one client with member count and full subscription
// history.
func (s *service) GetClient(ctx context.Context, clientID uuid.UUID) (*ClientDetailDTO, error) {
	account, err := s.findClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	membersCount, err := s.members.Count(ctx, clientID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count members")
	}
	history, err := s.subs.ListByAccount(ctx, clientID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load subscription history")
	}
	return &ClientDetailDTO{
		AccountDTO:    *accounts.FromModel(account),
		MembersCount:  membersCount,
		Subscriptions: subscriptions.FromModels(history),
	}, nil
}

// CreateClient provisions an approved client with a confirmed
// subscription, skipping the signup approval queue. Account and
// subscription land in one transaction.
func (s *service) CreateClient(ctx context.Context, req CreateClientRequest) (*ClientRowDTO, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var out *ClientRowDTO
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		stores := s.storesFor(tx)

		if _, err := stores.accounts.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check account email")
		}

		plan, err := stores.plans.FindByID(ctx, req.PlanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "unknown plan")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load plan")
		}

		account, err := stores.accounts.Create(ctx, accounts.CreateAccountDTO{
			Email:        email,
			PasswordHash: passwordHash,
			Role:         enums.RoleClient,
			Status:       enums.AccountStatusApproved,
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

		sub, err := stores.subs.Create(ctx, subscriptions.CreateSubscriptionDTO{
			AccountID:     account.ID,
			PlanID:        plan.ID,
			StartDate:     startDate,
			EndDate:       endDate,
			Status:        status,
			AmountPaid:    plan.Price,
			PaymentStatus: enums.PaymentStatusConfirmed,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create subscription")
		}

		out = &ClientRowDTO{
			AccountDTO:   *accounts.FromModel(account),
			Subscription: subscriptions.FromModel(sub),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateClientStatus moves a client between approved, blocked and
// pending. Approving a client whose latest subscription sits on a trial
// plan also confirms that subscription's payment, in the same
// transaction.
func (s *service) UpdateClientStatus(ctx context.Context, clientID uuid.UUID, req UpdateClientStatusRequest) (*accounts.AccountDTO, error) {
	status, err := enums.ParseAccountStatus(req.Status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	switch status {
	case enums.AccountStatusApproved, enums.AccountStatusBlocked, enums.AccountStatusPending:
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status must be approved, blocked or pending")
	}

	var updated *models.Account
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		stores := s.storesFor(tx)

		account, err := stores.accounts.FindByID(ctx, clientID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load client")
		}
		if account.Role != enums.RoleClient {
			return pkgerrors.New(pkgerrors.CodeValidation, "account is not a client")
		}

		if err := stores.accounts.UpdateStatus(ctx, clientID, status); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update client status")
		}
		account.Status = status

		if status == enums.AccountStatusApproved {
			sub, err := stores.subs.LatestByAccount(ctx, clientID)
			switch {
			case err == nil:
				if sub.Plan != nil && sub.Plan.IsTrial && sub.PaymentStatus != enums.PaymentStatusConfirmed {
					if err := stores.subs.UpdatePaymentStatus(ctx, sub.ID, enums.PaymentStatusConfirmed); err != nil {
						return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "confirm trial payment")
					}
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
				// approvable even before any subscription exists
			default:
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load latest subscription")
			}
		}

		updated = account
		return nil
	})
	if err != nil {
		return nil, err
	}
	return accounts.FromModel(updated), nil
}

// DeleteClient removes the client and everything it owns, deepest rows
// first, in one transaction.
func (s *service) DeleteClient(ctx context.Context, clientID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		stores := s.storesFor(tx)

		account, err := stores.accounts.FindByID(ctx, clientID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load client")
		}
		if account.Role != enums.RoleClient {
			return pkgerrors.New(pkgerrors.CodeValidation, "account is not a client")
		}

		if err := stores.members.DeletePaymentsByAccount(ctx, clientID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete member payments")
		}
		if err := stores.members.DeleteAttendanceByAccount(ctx, clientID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete attendance")
		}
		if err := stores.members.DeleteAllByAccount(ctx, clientID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete members")
		}
		if err := stores.subs.DeleteByAccount(ctx, clientID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete subscriptions")
		}
		if err := stores.accounts.Delete(ctx, clientID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete account")
		}
		return nil
	})
}

var clientCSVHeader = []string{
	"Gym Name", "Owner", "Email", "Phone", "Status",
	"Plan", "Subscription Status", "Start Date", "End Date", "Registered",
}

// ExportClientsCSV streams every client gym as CSV, latest subscription
// joined in.
func (s *service) ExportClientsCSV(ctx context.Context, w io.Writer) error {
	rows, err := s.accounts.ListAllClients(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list clients for export")
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for i := range rows {
		ids = append(ids, rows[i].ID)
	}
	latest, err := s.subs.LatestByAccounts(ctx, ids)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load latest subscriptions")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(clientCSVHeader); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write csv header")
	}
	for i := range rows {
		account := &rows[i]
		record := []string{
			account.GymName,
			account.OwnerName,
			account.Email,
			stringOrEmpty(account.Phone),
			account.Status.String(),
			"", "", "", "",
			account.CreatedAt.Format("2006-01-02"),
		}
		if sub, ok := latest[account.ID]; ok {
			if sub.Plan != nil {
				record[5] = sub.Plan.Name
			}
			record[6] = sub.Status.String()
			record[7] = sub.StartDate
			record[8] = sub.EndDate
		}
		if err := cw.Write(record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write csv row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "flush csv")
	}
	return nil
}

func (s *service) findClient(ctx context.Context, clientID uuid.UUID) (*models.Account, error) {
	account, err := s.accounts.FindByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load client")
	}
	if account.Role != enums.RoleClient {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
	}
	return account, nil
}

func stringOrEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
