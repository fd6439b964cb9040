package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"app_backend/internal/feature/users/domain"
	"app_backend/internal/feature/users/domain/entity"
)

// setupTestDB prepares an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")

	// Create User table
	err = db.AutoMigrate(&entity.User{})
	require.NoError(t, err, "failed to migrate table")

	return db
}

func TestNewUserGorm(t *testing.T) {
	db := setupTestDB(t)

	repo := NewUserGorm(db)

	assert.NotNil(t, repo, "repository is nil")
	assert.NotNil(t, repo.db, "database connection is nil")
}

func TestUserGorm_Create(t *testing.T) {
	t.Run("successful user creation", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserGorm(db)

		user := &entity.User{
			Email:    "test@example.com",
			Password: "hashed_password",
			IsActive: true,
		}

		err := repo.Create(context.Background(), user)

		assert.NoError(t, err, "failed to create user")
		assert.NotZero(t, user.ID, "ID is not set")
		assert.False(t, user.CreatedAt.IsZero(), "CreatedAt is not set")
		assert.False(t, user.UpdatedAt.IsZero(), "UpdatedAt is not set")
	})

	t.Run("duplicate email returns domain error", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserGorm(db)

		user1 := &entity.User{Email: "duplicate@example.com", Password: "password1"}
		err := repo.Create(context.Background(), user1)
		require.NoError(t, err, "failed to create first user")

		// Create second user with the same email
		user2 := &entity.User{Email: "duplicate@example.com", Password: "password2"}
		err = repo.Create(context.Background(), user2)

		assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
	})
}

func TestUserGorm_FindByEmail(t *testing.T) {
	t.Run("existing user", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserGorm(db)

		seed := &entity.User{Email: "find@example.com", Password: "hash", IsStaff: true}
		require.NoError(t, repo.Create(context.Background(), seed))

		found, err := repo.FindByEmail(context.Background(), "find@example.com")

		require.NoError(t, err)
		assert.Equal(t, seed.ID, found.ID)
		assert.True(t, found.IsStaff)
	})

	t.Run("missing user", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserGorm(db)

		_, err := repo.FindByEmail(context.Background(), "nobody@example.com")

		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestUserGorm_FindByID(t *testing.T) {
	t.Run("existing user", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserGorm(db)

		seed := &entity.User{Email: "byid@example.com", Password: "hash"}
		require.NoError(t, repo.Create(context.Background(), seed))

		found, err := repo.FindByID(context.Background(), seed.ID)

		require.NoError(t, err)
		assert.Equal(t, "byid@example.com", found.Email)
	})

	t.Run("missing user", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserGorm(db)

		_, err := repo.FindByID(context.Background(), 9999)

		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestUserGorm_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserGorm(db)

	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		require.NoError(t, repo.Create(context.Background(), &entity.User{Email: email, Password: "hash"}))
	}

	users, err := repo.List(context.Background())

	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "a@example.com", users[0].Email, "list must be ordered by id")
}

func TestUserGorm_Update(t *testing.T) {
	t.Run("successful update", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserGorm(db)

		user := &entity.User{Email: "update@example.com", Password: "hash"}
		require.NoError(t, repo.Create(context.Background(), user))

		user.FirstName = "Updated"
		user.IsStaff = true
		require.NoError(t, repo.Update(context.Background(), user))

		found, err := repo.FindByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, "Updated", found.FirstName)
		assert.True(t, found.IsStaff)
	})

	t.Run("update to a taken email", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserGorm(db)

		require.NoError(t, repo.Create(context.Background(), &entity.User{Email: "taken@example.com", Password: "hash"}))
		user := &entity.User{Email: "mine@example.com", Password: "hash"}
		require.NoError(t, repo.Create(context.Background(), user))

		user.Email = "taken@example.com"
		err := repo.Update(context.Background(), user)

		assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
	})
}
