package api_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/rongwang/nailpos-server/internal/api/testutils"
	"github.com/rongwang/nailpos-server/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRosterLifecycle(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	headers := testutils.AuthHeaders(testCtx.AdminJWT)

	// Test case 1: New member gets a login with the temporary password
	w := testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/admin/salespeople", models.SalesPersonRequest{
		Name:  "Thandi",
		Email: "thandi@example.com",
	}, headers)
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.SalesPerson
	testutils.DecodeJSON(t, w, &created)
	assert.Equal(t, models.RoleSales, created.Role)
	require.NotNil(t, created.IdentityUserID)

	login := models.LoginRequest{Email: "thandi@example.com", Password: testutils.TempPassword}
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/auth/login", login, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var auth models.AuthResponse
	testutils.DecodeJSON(t, w, &auth)
	assert.Equal(t, models.RoleSales, auth.Role)

	// Test case 2: Duplicate email is a validation problem
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/admin/salespeople", models.SalesPersonRequest{
		Name:  "Other Thandi",
		Email: "thandi@example.com",
	}, headers)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Test case 3: Promotion moves the account to the new role
	w = testutils.PerformRequest(testCtx.Router, http.MethodPut, fmt.Sprintf("/api/admin/salespeople/%d", created.ID), models.SalesPersonRequest{
		Name:  "Thandi",
		Email: "thandi@example.com",
		Role:  models.RoleManager,
	}, headers)
	require.Equal(t, http.StatusOK, w.Code)

	roles, err := testCtx.Repository.GetUserRoles(context.Background(), *created.IdentityUserID)
	require.NoError(t, err)
	assert.Equal(t, []models.Role{models.RoleManager}, roles)

	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/auth/login", login, nil)
	require.Equal(t, http.StatusOK, w.Code)
	testutils.DecodeJSON(t, w, &auth)
	assert.Equal(t, models.RoleManager, auth.Role)

	// Test case 4: Delete removes the roster entry only
	w = testutils.PerformRequest(testCtx.Router, http.MethodDelete, fmt.Sprintf("/api/admin/salespeople/%d", created.ID), nil, headers)
	require.Equal(t, http.StatusOK, w.Code)

	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, fmt.Sprintf("/api/admin/salespeople/%d", created.ID), nil, headers)
	assert.Equal(t, http.StatusNotFound, w.Code)

	user, err := testCtx.Repository.GetIdentityUserByEmail(context.Background(), "thandi@example.com")
	require.NoError(t, err)
	assert.NotNil(t, user)

	w = testutils.PerformRequest(testCtx.Router, http.MethodDelete, fmt.Sprintf("/api/admin/salespeople/%d", created.ID), nil, headers)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRosterValidation(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	headers := testutils.AuthHeaders(testCtx.AdminJWT)

	// Unknown role fails binding
	w := testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/admin/salespeople", map[string]string{
		"name":  "Sipho",
		"email": "sipho@example.com",
		"role":  "Owner",
	}, headers)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Bad email fails binding
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/admin/salespeople", models.SalesPersonRequest{
		Name:  "Sipho",
		Email: "not-an-email",
	}, headers)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPOSSalesPeople(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	w := testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/pos/salespeople", nil, testutils.AuthHeaders(testCtx.SalesJWT))
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		SalesPeople []models.SalesPerson `json:"salesPeople"`
	}
	testutils.DecodeJSON(t, w, &response)
	assert.Len(t, response.SalesPeople, 3)
}
