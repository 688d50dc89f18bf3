package subscriptions

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gymstackhq/gymstack-backend/pkg/db/models"
	"github.com/gymstackhq/gymstack-backend/pkg/enums"
)

// Repository exposes subscription persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a subscriptions repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a subscription and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateSubscriptionDTO) (*models.Subscription, error) {
	sub := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(sub).Error; err != nil {
		return nil, err
	}
	return sub, nil
}

// LatestByAccount returns the account's most recent subscription with its plan.
func (r *Repository) LatestByAccount(ctx context.Context, accountID uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.WithContext(ctx).
		Preload("Plan").
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// LatestActiveByAccount returns the account's most recent subscription
// carrying status = active. Trial rows never count: the portal stays
// closed until the subscription is activated.
func (r *Repository) LatestActiveByAccount(ctx context.Context, accountID uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.WithContext(ctx).
		Preload("Plan").
		Where("account_id = ? AND status = ?", accountID, enums.SubscriptionStatusActive).
		Order("created_at DESC").
		First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListByAccount returns the account's full subscription history with plans.
func (r *Repository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]models.Subscription, error) {
	var rows []models.Subscription
	if err := r.db.WithContext(ctx).
		Preload("Plan").
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdatePaymentStatus sets the payment status on a subscription row.
func (r *Repository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status enums.PaymentStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("id = ?", id).
		UpdateColumn("payment_status", status).Error
}

// UpdateStatus sets the lifecycle status on a subscription row.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.SubscriptionStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("id = ?", id).
		UpdateColumn("status", status).Error
}

// DeleteByAccount removes all subscriptions owned by the account.
func (r *Repository) DeleteByAccount(ctx context.Context, accountID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.Subscription{}, "account_id = ?", accountID).Error
}

// LatestByAccounts loads the newest subscription per account for the
// given set, plan preloaded. Accounts with no subscription are absent
// from the result.
func (r *Repository) LatestByAccounts(ctx context.Context, accountIDs []uuid.UUID) (map[uuid.UUID]*models.Subscription, error) {
	if len(accountIDs) == 0 {
		return map[uuid.UUID]*models.Subscription{}, nil
	}
	var rows []models.Subscription
	if err := r.db.WithContext(ctx).
		Preload("Plan").
		Where("account_id IN ?", accountIDs).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]*models.Subscription, len(accountIDs))
	for i := range rows {
		sub := &rows[i]
		if _, seen := out[sub.AccountID]; !seen {
			out[sub.AccountID] = sub
		}
	}
	return out, nil
}

// SumConfirmedRevenue totals amount_paid across confirmed subscriptions.
func (r *Repository) SumConfirmedRevenue(ctx context.Context) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Select("COALESCE(SUM(amount_paid), 0) AS total").
		Where("payment_status = ?", enums.PaymentStatusConfirmed).
		Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

// SumConfirmedRevenueSince totals confirmed revenue for subscriptions
// starting on or after the given day.
func (r *Repository) SumConfirmedRevenueSince(ctx context.Context, fromDate string) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Select("COALESCE(SUM(amount_paid), 0) AS total").
		Where("payment_status = ? AND start_date >= ?", enums.PaymentStatusConfirmed, fromDate).
		Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}
