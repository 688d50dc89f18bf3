package accounts

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/gymstackhq/gymstack-backend/pkg/config"
	"github.com/gymstackhq/gymstack-backend/pkg/db"
	"github.com/gymstackhq/gymstack-backend/pkg/enums"
	pkgerrors "github.com/gymstackhq/gymstack-backend/pkg/errors"
	"github.com/gymstackhq/gymstack-backend/pkg/security"
)

// EnsureSuperAdmin guarantees the configured super-admin account exists
// before the API starts serving. Argon2 hashes cannot be precomputed in
// SQL migrations, so the seed happens here at boot. Idempotent: an
// existing account with the configured email is left untouched.
func EnsureSuperAdmin(ctx context.Context, client *db.Client, cfg config.BootstrapConfig, passwordCfg config.PasswordConfig) error {
	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeInternal, "bootstrap admin email required")
	}
	if cfg.AdminPassword == "" {
		return pkgerrors.New(pkgerrors.CodeInternal, "bootstrap admin password required")
	}

	return client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		if _, err := repo.FindByEmail(ctx, email); err == nil {
			return nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check admin account")
		}

		hash, err := security.HashPassword(cfg.AdminPassword, passwordCfg)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash admin password")
		}
		if _, err := repo.Create(ctx, CreateAccountDTO{
			Email:        email,
			PasswordHash: hash,
			Role:         enums.RoleSuperAdmin,
			Status:       enums.AccountStatusActive,
			GymName:      "Platform",
			OwnerName:    "Administrator",
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create admin account")
		}
		return nil
	})
}
