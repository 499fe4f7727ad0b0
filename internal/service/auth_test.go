package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rongwang/nailpos-server/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestLoginIssuesRoleToken(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateSalesPerson(ctx, models.SalesPersonRequest{Name: "Mpho", Email: "mpho@example.com", Role: models.RoleManager})
	require.NoError(t, err)

	resp, err := svc.Login(ctx, models.LoginRequest{Email: " mpho@example.com ", Password: testPassword})
	require.NoError(t, err)
	assert.Equal(t, models.RoleManager, resp.Role)
	assert.Equal(t, 3600, resp.ExpiresIn)

	// The test clock is in the past, so expiry is not checked here
	token, err := jwt.Parse(resp.Token, func(*jwt.Token) (interface{}, error) { return []byte("test-secret-key"), nil },
		jwt.WithoutClaimsValidation())
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, resp.UserID, claims["sub"])
	assert.Equal(t, "Manager", claims["role"])
}

func TestLoginLockout(t *testing.T) {
	svc, repo, clk := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateSalesPerson(ctx, models.SalesPersonRequest{Name: "Mpho", Email: "mpho@example.com"})
	require.NoError(t, err)

	bad := models.LoginRequest{Email: "mpho@example.com", Password: "nope"}
	good := models.LoginRequest{Email: "mpho@example.com", Password: testPassword}

	_, err = svc.Login(ctx, bad)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// A success in between resets the count
	_, err = svc.Login(ctx, good)
	require.NoError(t, err)

	_, err = svc.Login(ctx, bad)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, bad)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, bad)
	assert.ErrorIs(t, err, ErrLockedOut)

	_, err = svc.Login(ctx, good)
	assert.ErrorIs(t, err, ErrLockedOut)

	clk.advance(2*time.Minute + time.Second)
	_, err = svc.Login(ctx, good)
	require.NoError(t, err)

	user, err := repo.GetIdentityUserByEmail(ctx, "mpho@example.com")
	require.NoError(t, err)
	assert.Zero(t, user.AccessFailedCount)
	assert.Nil(t, user.LockoutEnd)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ghost@example.com", Password: testPassword})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginWithoutRoleRefused(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, repo.CreateIdentityUser(ctx, &models.IdentityUser{
		Email:          "norole@example.com",
		UserName:       "norole@example.com",
		PasswordHash:   string(hash),
		EmailConfirmed: true,
	}))

	resp, err := svc.Login(ctx, models.LoginRequest{Email: "norole@example.com", Password: testPassword})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, resp)
}

func TestHighestRole(t *testing.T) {
	assert.Equal(t, models.RoleAdmin, highestRole([]models.Role{models.RoleSales, models.RoleAdmin, models.RoleManager}))
	assert.Equal(t, models.RoleSales, highestRole([]models.Role{models.RoleSales}))
	assert.Equal(t, models.Role(""), highestRole(nil))
}
