package users

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/migrate"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupUsersTestRepo(t *testing.T) *Repository {
	t.Helper()

	// The pragma rides in the DSN so every pooled connection enforces FKs.
	dsn := filepath.Join(t.TempDir(), "users_test.db") + "?_foreign_keys=on"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	client := db.FromGorm(conn)
	require.NoError(t, migrate.AutoMigrate(client))

	return NewRepository(client.DB())
}

func seedUser(t *testing.T, repo *Repository, email string) *models.User {
	t.Helper()
	user, err := repo.Create(context.Background(), CreateUserDTO{
		Email:        email,
		PasswordHash: "$argon2id$fake",
		FirstName:    "Test",
		LastName:     "User",
	})
	require.NoError(t, err)
	return user
}

func TestUsersRepoCreateAndFind(t *testing.T) {
	repo := setupUsersTestRepo(t)
	ctx := context.Background()

	created := seedUser(t, repo, "shopper@example.com")
	require.NotEqual(t, uuid.Nil, created.ID)
	assert.True(t, created.IsActive)

	byEmail, err := repo.FindByEmail(ctx, "shopper@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "shopper@example.com", byID.Email)
}

func TestUsersRepoFindMissing(t *testing.T) {
	repo := setupUsersTestRepo(t)
	ctx := context.Background()

	_, err := repo.FindByEmail(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUsersRepoDuplicateEmail(t *testing.T) {
	repo := setupUsersTestRepo(t)
	ctx := context.Background()

	seedUser(t, repo, "dup@example.com")
	_, err := repo.Create(ctx, CreateUserDTO{
		Email:        "dup@example.com",
		PasswordHash: "$argon2id$fake",
		FirstName:    "Other",
		LastName:     "User",
	})
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err, "idx_users_email"))
}

func TestUsersRepoUpdateLastLogin(t *testing.T) {
	repo := setupUsersTestRepo(t)
	ctx := context.Background()

	user := seedUser(t, repo, "login@example.com")
	require.Nil(t, user.LastLoginAt)

	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.UpdateLastLogin(ctx, user.ID, at))

	reloaded, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.LastLoginAt)
	assert.WithinDuration(t, at, *reloaded.LastLoginAt, time.Second)
}

func TestUsersRepoUpdatePasswordHash(t *testing.T) {
	repo := setupUsersTestRepo(t)
	ctx := context.Background()

	user := seedUser(t, repo, "rotate@example.com")
	require.NoError(t, repo.UpdatePasswordHash(ctx, user.ID, "$argon2id$new"))

	reloaded, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "$argon2id$new", reloaded.PasswordHash)
}

func TestUsersRepoDelete(t *testing.T) {
	repo := setupUsersTestRepo(t)
	ctx := context.Background()

	user := seedUser(t, repo, "leaving@example.com")
	require.NoError(t, repo.Delete(ctx, user.ID))

	_, err := repo.FindByID(ctx, user.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUsersRepoListPagesNewestFirst(t *testing.T) {
	repo := setupUsersTestRepo(t)
	ctx := context.Background()

	var ids []uuid.UUID
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		user := seedUser(t, repo, email)
		ids = append(ids, user.ID)
		time.Sleep(2 * time.Millisecond)
	}

	first, err := repo.List(ctx, nil, 2)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, ids[2], first[0].ID)
	assert.Equal(t, ids[1], first[1].ID)

	cursor := &pagination.Cursor{CreatedAt: first[1].CreatedAt, ID: first[1].ID}
	rest, err := repo.List(ctx, cursor, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, ids[0], rest[0].ID)
}
