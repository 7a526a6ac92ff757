package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

func newAuthService(t *testing.T, limiter LoginLimiter) (*AuthService, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	svc := NewAuthService(config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 60,
		BcryptCost:            bcrypt.MinCost,
	}, AuthDependencies{
		UserRepo: store.Users(),
		Limiter:  limiter,
	})
	return svc, store
}

func TestRegisterThenLogin(t *testing.T) {
	svc, _ := newAuthService(t, nil)
	ctx := context.Background()

	user, token, _, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cret", domain.RoleCustomer)
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, domain.RoleCustomer, user.Role)
	assert.NotEmpty(t, token)

	loggedIn, loginToken, _, err := svc.Login(ctx, "alice@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	claims, err := svc.TokenManager().ParseToken(loginToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, domain.RoleCustomer, claims.Role)
}

func TestRegisterDefaultsToCustomer(t *testing.T) {
	svc, _ := newAuthService(t, nil)

	user, _, _, err := svc.Register(context.Background(), "Bob", "bob@example.com", "pw", "")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, user.Role)
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	svc, _ := newAuthService(t, nil)

	_, _, _, err := svc.Register(context.Background(), "Eve", "eve@example.com", "pw", domain.Role("superuser"))
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperrors.ToDomainError(err).HTTPStatus)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthService(t, nil)
	ctx := context.Background()

	_, _, _, err := svc.Register(ctx, "Alice", "alice@example.com", "pw", domain.RoleCustomer)
	require.NoError(t, err)

	_, _, _, err = svc.Register(ctx, "Other Alice", "Alice@Example.com", "pw2", domain.RoleCustomer)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperrors.ToDomainError(err).HTTPStatus)
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc, _ := newAuthService(t, nil)
	ctx := context.Background()

	_, _, _, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cret", domain.RoleCustomer)
	require.NoError(t, err)

	_, _, _, err = svc.Login(ctx, "alice@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, apperrors.ToDomainError(err).HTTPStatus)

	_, _, _, err = svc.Login(ctx, "nobody@example.com", "whatever")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, apperrors.ToDomainError(err).HTTPStatus)
}

type denyAllLimiter struct{}

func (denyAllLimiter) Allow(context.Context, string) (bool, error) { return false, nil }

func TestLoginThrottled(t *testing.T) {
	svc, _ := newAuthService(t, denyAllLimiter{})
	ctx := context.Background()

	_, _, _, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cret", domain.RoleCustomer)
	require.NoError(t, err)

	_, _, _, err = svc.Login(ctx, "alice@example.com", "s3cret")
	require.Error(t, err)
	assert.Equal(t, http.StatusTooManyRequests, apperrors.ToDomainError(err).HTTPStatus)
}
