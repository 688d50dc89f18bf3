package plans

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gymstackhq/gymstack-backend/pkg/db/models"
	"github.com/gymstackhq/gymstack-backend/pkg/enums"
)

// Repository exposes plan persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a plans repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a plan model.
func (r *Repository) Create(ctx context.Context, plan *models.Plan) error {
	return r.db.WithContext(ctx).Create(plan).Error
}

// FindByID loads a plan by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Plan, error) {
	var plan models.Plan
	if err := r.db.WithContext(ctx).First(&plan, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

// FindByName loads a plan by its unique name.
func (r *Repository) FindByName(ctx context.Context, name string) (*models.Plan, error) {
	var plan models.Plan
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

// List returns all plans ordered by price.
func (r *Repository) List(ctx context.Context) ([]models.Plan, error) {
	var rows []models.Plan
	if err := r.db.WithContext(ctx).Order("price ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListActive returns plans available for signup.
func (r *Repository) ListActive(ctx context.Context) ([]models.Plan, error) {
	var rows []models.Plan
	if err := r.db.WithContext(ctx).
		Where("status = ?", enums.PlanStatusActive).
		Order("price ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Save persists the full plan model.
func (r *Repository) Save(ctx context.Context, plan *models.Plan) error {
	return r.db.WithContext(ctx).Save(plan).Error
}

// UpdateStatus sets the plan status.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.PlanStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Plan{}).
		Where("id = ?", id).
		UpdateColumn("status", status).Error
}

// Delete removes a plan row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Plan{}, "id = ?", id).Error
}

// CountSubscribers counts all subscriptions ever taken on the plan.
func (r *Repository) CountSubscribers(ctx context.Context, planID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("plan_id = ?", planID).
		Count(&total).Error
	return total, err
}

// CountActiveSubscribers counts non-expired subscriptions on the plan.
func (r *Repository) CountActiveSubscribers(ctx context.Context, planID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("plan_id = ? AND status IN ?", planID,
			[]enums.SubscriptionStatus{enums.SubscriptionStatusTrial, enums.SubscriptionStatusActive}).
		Count(&total).Error
	return total, err
}

// SumConfirmedRevenue totals confirmed subscription payments for the plan.
func (r *Repository) SumConfirmedRevenue(ctx context.Context, planID uuid.UUID) (decimal.Decimal, error) {
	var out struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Select("COALESCE(SUM(amount_paid), 0) AS total").
		Where("plan_id = ? AND payment_status = ?", planID, enums.PaymentStatusConfirmed).
		Scan(&out).Error
	return out.Total, err
}

// MonthlyTrendRow is one month of plan signups and confirmed revenue.
type MonthlyTrendRow struct {
	Month   string
	Signups int64
	Revenue decimal.Decimal
}

// MonthlyTrend buckets signups and confirmed revenue by month since the cutoff.
func (r *Repository) MonthlyTrend(ctx context.Context, planID uuid.UUID, sinceMonth string) ([]MonthlyTrendRow, error) {
	var rows []MonthlyTrendRow
	err := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Select(`substring(start_date from 1 for 7) AS month,
			COUNT(*) AS signups,
			COALESCE(SUM(amount_paid) FILTER (WHERE payment_status = 'confirmed'), 0) AS revenue`).
		Where("plan_id = ? AND substring(start_date from 1 for 7) >= ?", planID, sinceMonth).
		Group("month").
		Order("month ASC").
		Find(&rows).Error
	return rows, err
}
