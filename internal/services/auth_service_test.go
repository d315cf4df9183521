package services

import (
	"testing"

	"github.com/projectflow/projectflow-api/internal/models"
	"github.com/projectflow/projectflow-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAuthService(t *testing.T) *AuthService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.User{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return NewAuthService(repository.NewUserRepository(db))
}

func TestAuthService_Signup(t *testing.T) {
	service := setupAuthService(t)

	user, err := service.Signup(SignupInput{
		Name:     "Alice",
		Email:    "Alice@Example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)

	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, models.RoleClient, user.Role)
	assert.NotEqual(t, "supersecret", user.PasswordHash)
}

func TestAuthService_SignupDuplicateEmail(t *testing.T) {
	service := setupAuthService(t)

	_, err := service.Signup(SignupInput{Name: "Alice", Email: "alice@example.com", Password: "supersecret"})
	require.NoError(t, err)

	_, err = service.Signup(SignupInput{Name: "Other", Email: "ALICE@example.com", Password: "supersecret"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthService_SignupShortPassword(t *testing.T) {
	service := setupAuthService(t)

	_, err := service.Signup(SignupInput{Name: "Alice", Email: "alice@example.com", Password: "short"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestAuthService_SignupInvalidRole(t *testing.T) {
	service := setupAuthService(t)

	_, err := service.Signup(SignupInput{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "supersecret",
		Role:     "Manager",
	})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestAuthService_Login(t *testing.T) {
	service := setupAuthService(t)

	created, err := service.Signup(SignupInput{Name: "Alice", Email: "alice@example.com", Password: "supersecret"})
	require.NoError(t, err)

	user, err := service.Login(LoginInput{Email: "ALICE@example.com", Password: "supersecret"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	_, err = service.Login(LoginInput{Email: "alice@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.Login(LoginInput{Email: "nobody@example.com", Password: "supersecret"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_EnsureSuperAdmin(t *testing.T) {
	service := setupAuthService(t)

	created, err := service.EnsureSuperAdmin("Administrator", "Admin@Example.com", "supersecret")
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", created.Email)
	assert.Equal(t, models.RoleSuperAdmin, created.Role)

	again, err := service.EnsureSuperAdmin("Administrator", "admin@example.com", "supersecret")
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)

	user, err := service.Login(LoginInput{Email: "admin@example.com", Password: "supersecret"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
}
