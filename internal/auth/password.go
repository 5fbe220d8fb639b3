package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccountService covers password maintenance and account removal for the
// authenticated user.
type AccountService interface {
	ChangePassword(ctx context.Context, userID uuid.UUID, req ChangePasswordRequest) error
	ChangePasswordWithConfirm(ctx context.Context, userID uuid.UUID, req ChangePasswordConfirmRequest) error
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
}

type accountUserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type accountService struct {
	users       accountUserRepository
	passwordCfg config.PasswordConfig
}

// AccountServiceParams bundles the dependencies for the account service.
type AccountServiceParams struct {
	UserRepo       accountUserRepository
	PasswordConfig config.PasswordConfig
}

// NewAccountService constructs the account maintenance service.
func NewAccountService(params AccountServiceParams) (AccountService, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	return &accountService{
		users:       params.UserRepo,
		passwordCfg: params.PasswordConfig,
	}, nil
}

// ChangePassword verifies the current credential and stores a new one. The
// new password must differ from the current password.
func (s *accountService) ChangePassword(ctx context.Context, userID uuid.UUID, req ChangePasswordRequest) error {
	user, err := s.verifyCurrent(ctx, userID, req.CurrentPassword)
	if err != nil {
		return err
	}

	same, err := security.VerifyPassword(req.NewPassword, user.PasswordHash)
	if err != nil && !errors.Is(err, security.ErrInvalidHash) {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "compare passwords")
	}
	if same {
		return pkgerrors.New(pkgerrors.CodeValidation, "new password must differ from the current password")
	}

	return s.store(ctx, userID, req.NewPassword)
}

// ChangePasswordWithConfirm verifies the current credential and requires the
// new password to be confirmed.
func (s *accountService) ChangePasswordWithConfirm(ctx context.Context, userID uuid.UUID, req ChangePasswordConfirmRequest) error {
	if req.NewPassword != req.ConfirmPassword {
		return pkgerrors.New(pkgerrors.CodeValidation, "password confirmation does not match")
	}
	if _, err := s.verifyCurrent(ctx, userID, req.CurrentPassword); err != nil {
		return err
	}
	return s.store(ctx, userID, req.NewPassword)
}

// DeleteAccount removes the user row; cart items cascade.
func (s *accountService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete account")
	}
	return nil
}

func (s *accountService) verifyCurrent(ctx context.Context, userID uuid.UUID, current string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	valid, err := security.VerifyPassword(current, user.PasswordHash)
	if err != nil {
		if errors.Is(err, security.ErrInvalidHash) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return user, nil
}

func (s *accountService) store(ctx context.Context, userID uuid.UUID, newPassword string) error {
	hash, err := security.HashPassword(newPassword, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	if err := s.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update password")
	}
	return nil
}
