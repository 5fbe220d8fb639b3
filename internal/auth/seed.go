package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/security"
	"gorm.io/gorm"
)

// EnsureAdminSeed creates the bootstrap admin account when the seed
// credentials are configured and no account exists for that email. An
// existing account is left untouched, including its password.
func EnsureAdminSeed(ctx context.Context, client *db.Client, adminCfg config.AdminConfig, passwordCfg config.PasswordConfig, logg *logger.Logger) error {
	email := strings.ToLower(strings.TrimSpace(adminCfg.SeedEmail))
	if email == "" || adminCfg.SeedPassword == "" {
		return nil
	}

	repo := users.NewRepository(client.DB())
	if _, err := repo.FindByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := security.HashPassword(adminCfg.SeedPassword, passwordCfg)
	if err != nil {
		return err
	}

	role := models.SystemRoleAdmin
	if _, err := repo.Create(ctx, users.CreateUserDTO{
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Store",
		LastName:     "Admin",
		SystemRole:   &role,
	}); err != nil {
		if db.IsUniqueViolation(err, "idx_users_email") {
			return nil
		}
		return err
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "email", email), "seeded admin account")
	}
	return nil
}
