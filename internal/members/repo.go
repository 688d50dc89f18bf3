package members

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gymstackhq/gymstack-backend/pkg/db/models"
	"github.com/gymstackhq/gymstack-backend/pkg/enums"
	"github.com/gymstackhq/gymstack-backend/pkg/pagination"
)

// Repository exposes member, payment and attendance persistence for a
// single tenant. Every query is scoped by account_id.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a members repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Filter narrows a member listing.
type Filter struct {
	Search string
	Status string
	Plan   string
}

// ExpireOverdue flips active members whose end date has passed to
// expired. Runs as a blanket UPDATE ahead of each listing so status in
// the database never lags the calendar by more than one list call.
func (r *Repository) ExpireOverdue(ctx context.Context, accountID uuid.UUID, today string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("account_id = ? AND status = ? AND end_date < ?", accountID, enums.MemberStatusActive, today).
		Update("status", enums.MemberStatusExpired)
	return res.RowsAffected, res.Error
}

// List returns one page of the tenant's members, newest first.
func (r *Repository) List(ctx context.Context, accountID uuid.UUID, filter Filter, page pagination.Params) ([]models.Member, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("account_id = ?", accountID)

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where(
			"name ILIKE ? OR member_code ILIKE ? OR phone ILIKE ?",
			pattern, pattern, pattern,
		)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Plan != "" {
		query = query.Where("membership_plan = ?", filter.Plan)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Member
	if err := query.
		Order("created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ListAll returns every member of the tenant, used for CSV export.
func (r *Repository) ListAll(ctx context.Context, accountID uuid.UUID) ([]models.Member, error) {
	var rows []models.Member
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the tenant's total member count, expired included.
func (r *Repository) Count(ctx context.Context, accountID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("account_id = ?", accountID).
		Count(&total).Error
	return total, err
}

// CountByStatus buckets the tenant's members by status.
func (r *Repository) CountByStatus(ctx context.Context, accountID uuid.UUID) (map[enums.MemberStatus]int64, error) {
	type bucket struct {
		Status enums.MemberStatus
		Total  int64
	}
	var rows []bucket
	if err := r.db.WithContext(ctx).
		Model(&models.Member{}).
		Select("status, COUNT(*) AS total").
		Where("account_id = ?", accountID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[enums.MemberStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Total
	}
	return out, nil
}

// CountByPlan buckets the tenant's members by membership plan name.
func (r *Repository) CountByPlan(ctx context.Context, accountID uuid.UUID) ([]PlanCountDTO, error) {
	var rows []PlanCountDTO
	if err := r.db.WithContext(ctx).
		Model(&models.Member{}).
		Select("membership_plan, COUNT(*) AS count").
		Where("account_id = ?", accountID).
		Group("membership_plan").
		Order("count DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Create inserts a member row.
func (r *Repository) Create(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).Create(member).Error
}

// FindByID loads one member belonging to the tenant.
func (r *Repository) FindByID(ctx context.Context, accountID, memberID uuid.UUID) (*models.Member, error) {
	var member models.Member
	if err := r.db.WithContext(ctx).
		Where("account_id = ? AND id = ?", accountID, memberID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// Save persists the full member row.
func (r *Repository) Save(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).Save(member).Error
}

// Delete removes the member row itself; dependent payment and
// attendance rows are deleted separately inside the same transaction.
func (r *Repository) Delete(ctx context.Context, accountID, memberID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("account_id = ? AND id = ?", accountID, memberID).
		Delete(&models.Member{}).Error
}

// ListExpiringBetween returns active members whose end date falls in
// the inclusive [from, to] window, soonest first.
func (r *Repository) ListExpiringBetween(ctx context.Context, accountID uuid.UUID, from, to string) ([]models.Member, error) {
	var rows []models.Member
	if err := r.db.WithContext(ctx).
		Where("account_id = ? AND status = ? AND end_date >= ? AND end_date <= ?",
			accountID, enums.MemberStatusActive, from, to).
		Order("end_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CreatePayment inserts a payment row.
func (r *Repository) CreatePayment(ctx context.Context, payment *models.MemberPayment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

// ListPaymentsByMember returns a member's payments, newest first.
func (r *Repository) ListPaymentsByMember(ctx context.Context, accountID, memberID uuid.UUID) ([]models.MemberPayment, error) {
	var rows []models.MemberPayment
	if err := r.db.WithContext(ctx).
		Where("account_id = ? AND member_id = ?", accountID, memberID).
		Order("payment_date DESC, created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// DeletePaymentsByMember removes all of a member's payment rows.
func (r *Repository) DeletePaymentsByMember(ctx context.Context, accountID, memberID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("account_id = ? AND member_id = ?", accountID, memberID).
		Delete(&models.MemberPayment{}).Error
}

// SumPaymentsSince totals payments dated on or after the given day.
func (r *Repository) SumPaymentsSince(ctx context.Context, accountID uuid.UUID, fromDate string) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.MemberPayment{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("account_id = ? AND payment_date >= ?", accountID, fromDate).
		Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

// MonthlyPaymentTotals buckets payment sums by calendar month for the
// given year. Months come back as "YYYY-MM".
func (r *Repository) MonthlyPaymentTotals(ctx context.Context, accountID uuid.UUID, year string) ([]MonthTotal, error) {
	var rows []MonthTotal
	if err := r.db.WithContext(ctx).
		Model(&models.MemberPayment{}).
		Select("substring(payment_date from 1 for 7) AS month, COALESCE(SUM(amount), 0) AS total").
		Where("account_id = ? AND payment_date LIKE ?", accountID, year+"-%").
		Group("month").
		Order("month ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// MonthTotal is one month's payment sum.
type MonthTotal struct {
	Month string          `json:"month"`
	Total decimal.Decimal `json:"total"`
}

// PaymentMethodTotals buckets payment sums by collection method.
func (r *Repository) PaymentMethodTotals(ctx context.Context, accountID uuid.UUID) ([]MethodTotal, error) {
	var rows []MethodTotal
	if err := r.db.WithContext(ctx).
		Model(&models.MemberPayment{}).
		Select("payment_method, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Where("account_id = ?", accountID).
		Group("payment_method").
		Order("total DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// MethodTotal is one payment method's collected sum.
type MethodTotal struct {
	PaymentMethod string          `json:"payment_method"`
	Total         decimal.Decimal `json:"total"`
	Count         int64           `json:"count"`
}

// PlanRevenueTotals buckets payment sums by the paying member's plan.
func (r *Repository) PlanRevenueTotals(ctx context.Context, accountID uuid.UUID) ([]PlanRevenue, error) {
	var rows []PlanRevenue
	if err := r.db.WithContext(ctx).
		Model(&models.MemberPayment{}).
		Select("members.membership_plan AS membership_plan, COALESCE(SUM(member_payments.amount), 0) AS total").
		Joins("JOIN members ON members.id = member_payments.member_id").
		Where("member_payments.account_id = ?", accountID).
		Group("members.membership_plan").
		Order("total DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// PlanRevenue is one membership plan's collected sum.
type PlanRevenue struct {
	MembershipPlan string          `json:"membership_plan"`
	Total          decimal.Decimal `json:"total"`
}

// FindAttendance loads the member's record for one day, if any.
func (r *Repository) FindAttendance(ctx context.Context, accountID, memberID uuid.UUID, date string) (*models.AttendanceRecord, error) {
	var record models.AttendanceRecord
	if err := r.db.WithContext(ctx).
		Where("account_id = ? AND member_id = ? AND date = ?", accountID, memberID, date).
		First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// CreateAttendance inserts a check-in row.
func (r *Repository) CreateAttendance(ctx context.Context, record *models.AttendanceRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// SetCheckOut stamps the check-out time on an open record.
func (r *Repository) SetCheckOut(ctx context.Context, recordID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.AttendanceRecord{}).
		Where("id = ?", recordID).
		Update("check_out_time", at).Error
}

// ListAttendanceSince returns the member's records from the given day
// onward, newest first.
func (r *Repository) ListAttendanceSince(ctx context.Context, accountID, memberID uuid.UUID, fromDate string) ([]models.AttendanceRecord, error) {
	var rows []models.AttendanceRecord
	if err := r.db.WithContext(ctx).
		Where("account_id = ? AND member_id = ? AND date >= ?", accountID, memberID, fromDate).
		Order("date DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// DeleteAttendanceByMember removes all of a member's attendance rows.
func (r *Repository) DeleteAttendanceByMember(ctx context.Context, accountID, memberID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("account_id = ? AND member_id = ?", accountID, memberID).
		Delete(&models.AttendanceRecord{}).Error
}

// DeleteAllByAccount removes every member of the tenant. Used by the
// admin cascade when a client account is removed.
func (r *Repository) DeleteAllByAccount(ctx context.Context, accountID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.Member{}, "account_id = ?", accountID).Error
}

// DeletePaymentsByAccount removes every payment row of the tenant.
func (r *Repository) DeletePaymentsByAccount(ctx context.Context, accountID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.MemberPayment{}, "account_id = ?", accountID).Error
}

// DeleteAttendanceByAccount removes every attendance row of the tenant.
func (r *Repository) DeleteAttendanceByAccount(ctx context.Context, accountID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.AttendanceRecord{}, "account_id = ?", accountID).Error
}

// ListCreatedSince returns members registered on or after the given
// instant, newest first. Feeds the client dashboard's recent list.
func (r *Repository) ListCreatedSince(ctx context.Context, accountID uuid.UUID, since time.Time) ([]models.Member, error) {
	var rows []models.Member
	if err := r.db.WithContext(ctx).
		Where("account_id = ? AND created_at >= ?", accountID, since).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
