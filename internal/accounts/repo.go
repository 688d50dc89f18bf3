package accounts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gymstackhq/gymstack-backend/pkg/db/models"
	"github.com/gymstackhq/gymstack-backend/pkg/enums"
	"github.com/gymstackhq/gymstack-backend/pkg/pagination"
)

// Repository exposes account persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an accounts repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new account and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateAccountDTO) (*models.Account, error) {
	account := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		return nil, err
	}
	return account, nil
}

// FindByEmail retrieves the account matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// FindByID loads an account by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// UpdateStatus sets the account lifecycle status.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.AccountStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", id).
		UpdateColumn("status", status).Error
}

// UpdateProfile applies the non-nil profile fields.
func (r *Repository) UpdateProfile(ctx context.Context, id uuid.UUID, dto UpdateProfileDTO) error {
	updates := map[string]any{}
	if dto.GymName != nil {
		updates["gym_name"] = *dto.GymName
	}
	if dto.OwnerName != nil {
		updates["owner_name"] = *dto.OwnerName
	}
	if dto.Phone != nil {
		updates["phone"] = dto.Phone
	}
	if dto.Address != nil {
		updates["address"] = dto.Address
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// MarkEmailVerified flips the email_verified flag.
func (r *Repository) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", id).
		UpdateColumn("email_verified", true).Error
}

// Delete removes an account; dependent rows cascade at the schema level.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Account{}, "id = ?", id).Error
}

// ClientFilter narrows the admin client listing.
type ClientFilter struct {
	Search string
	Status enums.AccountStatus
}

// ListClients returns a page of client accounts plus the total row count.
func (r *Repository) ListClients(ctx context.Context, filter ClientFilter, page pagination.Params) ([]models.Account, int64, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("role = ?", enums.RoleClient)

	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("gym_name ILIKE ? OR owner_name ILIKE ? OR email ILIKE ?", like, like, like)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	n := page.Normalize()
	var rows []models.Account
	if err := q.Order("created_at DESC").
		Limit(n.Limit).
		Offset(page.Offset()).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ListAllClients streams every client account ordered by creation, for exports.
func (r *Repository) ListAllClients(ctx context.Context) ([]models.Account, error) {
	var rows []models.Account
	if err := r.db.WithContext(ctx).
		Where("role = ?", enums.RoleClient).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CountClientsByStatus groups client accounts by lifecycle status.
func (r *Repository) CountClientsByStatus(ctx context.Context) (map[enums.AccountStatus]int64, error) {
	type row struct {
		Status enums.AccountStatus
		Total  int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Select("status, COUNT(*) AS total").
		Where("role = ?", enums.RoleClient).
		Group("status").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[enums.AccountStatus]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.Total
	}
	return out, nil
}

// CountClientsCreatedSince counts client accounts registered on or
// after the given instant.
func (r *Repository) CountClientsCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("role = ? AND created_at >= ?", enums.RoleClient, since).
		Count(&total).Error
	return total, err
}
