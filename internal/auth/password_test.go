package auth

import (
	"context"
	"testing"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stubAccountRepo struct {
	user    *models.User
	findErr error

	updatedHash string
	deletedID   uuid.UUID
}

func (s *stubAccountRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.user, nil
}

func (s *stubAccountRepo) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	s.updatedHash = hash
	return nil
}

func (s *stubAccountRepo) Delete(ctx context.Context, id uuid.UUID) error {
	s.deletedID = id
	return nil
}

func buildAccountService(t *testing.T, repo *stubAccountRepo) AccountService {
	t.Helper()
	svc, err := NewAccountService(AccountServiceParams{
		UserRepo:       repo,
		PasswordConfig: config.PasswordConfig{},
	})
	if err != nil {
		t.Fatalf("build account service: %v", err)
	}
	return svc
}

func TestChangePasswordSuccess(t *testing.T) {
	repo := &stubAccountRepo{user: &models.User{
		ID:           uuid.New(),
		PasswordHash: mustHashPassword(t, "old-password"),
	}}
	svc := buildAccountService(t, repo)

	err := svc.ChangePassword(context.Background(), repo.user.ID, ChangePasswordRequest{
		CurrentPassword: "old-password",
		NewPassword:     "brand-new-password",
	})
	if err != nil {
		t.Fatalf("change password: %v", err)
	}
	if repo.updatedHash == "" {
		t.Fatal("expected new hash to be stored")
	}
	ok, err := security.VerifyPassword("brand-new-password", repo.updatedHash)
	if err != nil || !ok {
		t.Fatalf("stored hash does not match new password: ok=%v err=%v", ok, err)
	}
}

func TestChangePasswordRejectsWrongCurrent(t *testing.T) {
	repo := &stubAccountRepo{user: &models.User{
		ID:           uuid.New(),
		PasswordHash: mustHashPassword(t, "old-password"),
	}}
	svc := buildAccountService(t, repo)

	err := svc.ChangePassword(context.Background(), repo.user.ID, ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "brand-new-password",
	})
	assertUnauthorized(t, err)
	if repo.updatedHash != "" {
		t.Fatal("hash must not change on failed verification")
	}
}

func TestChangePasswordRejectsReuse(t *testing.T) {
	repo := &stubAccountRepo{user: &models.User{
		ID:           uuid.New(),
		PasswordHash: mustHashPassword(t, "same-password"),
	}}
	svc := buildAccountService(t, repo)

	err := svc.ChangePassword(context.Background(), repo.user.ID, ChangePasswordRequest{
		CurrentPassword: "same-password",
		NewPassword:     "same-password",
	})
	if err == nil {
		t.Fatal("expected validation error for reused password")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestChangePasswordWithConfirmMismatch(t *testing.T) {
	repo := &stubAccountRepo{user: &models.User{
		ID:           uuid.New(),
		PasswordHash: mustHashPassword(t, "old-password"),
	}}
	svc := buildAccountService(t, repo)

	err := svc.ChangePasswordWithConfirm(context.Background(), repo.user.ID, ChangePasswordConfirmRequest{
		CurrentPassword: "old-password",
		NewPassword:     "new-password-1",
		ConfirmPassword: "new-password-2",
	})
	if err == nil {
		t.Fatal("expected validation error for confirmation mismatch")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if repo.updatedHash != "" {
		t.Fatal("hash must not change on mismatch")
	}
}

func TestChangePasswordWithConfirmAllowsReuse(t *testing.T) {
	// Unlike the profile variant, the settings flow only requires a matching
	// confirmation.
	repo := &stubAccountRepo{user: &models.User{
		ID:           uuid.New(),
		PasswordHash: mustHashPassword(t, "same-password"),
	}}
	svc := buildAccountService(t, repo)

	err := svc.ChangePasswordWithConfirm(context.Background(), repo.user.ID, ChangePasswordConfirmRequest{
		CurrentPassword: "same-password",
		NewPassword:     "same-password",
		ConfirmPassword: "same-password",
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
}

func TestDeleteAccount(t *testing.T) {
	repo := &stubAccountRepo{user: &models.User{ID: uuid.New()}}
	svc := buildAccountService(t, repo)

	if err := svc.DeleteAccount(context.Background(), repo.user.ID); err != nil {
		t.Fatalf("delete account: %v", err)
	}
	if repo.deletedID != repo.user.ID {
		t.Fatalf("expected delete for %s, got %s", repo.user.ID, repo.deletedID)
	}
}

func TestDeleteAccountNotFound(t *testing.T) {
	repo := &stubAccountRepo{findErr: gorm.ErrRecordNotFound}
	svc := buildAccountService(t, repo)

	err := svc.DeleteAccount(context.Background(), uuid.New())
	if err == nil {
		t.Fatal("expected not found error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}
