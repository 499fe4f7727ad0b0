package api_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/rongwang/nailpos-server/internal/api/testutils"
	"github.com/rongwang/nailpos-server/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListServices(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	w := testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/pos/services", nil, testutils.AuthHeaders(testCtx.SalesJWT))
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Status   string           `json:"status"`
		Services []models.Service `json:"services"`
	}
	testutils.DecodeJSON(t, w, &response)
	require.Len(t, response.Services, 2)
	assert.Equal(t, "Manicure", response.Services[0].Name)
	assert.Equal(t, "Pedicure", response.Services[1].Name)
}

func TestGetServicePrice(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	headers := testutils.AuthHeaders(testCtx.SalesJWT)
	manicure := testCtx.ServiceID(t, "Manicure")

	w := testutils.PerformRequest(testCtx.Router, http.MethodGet, fmt.Sprintf("/api/pos/services/%d/price", manicure), nil, headers)
	require.Equal(t, http.StatusOK, w.Code)

	var response models.PriceResponse
	testutils.DecodeJSON(t, w, &response)
	assert.Equal(t, manicure, response.ServiceID)
	assert.True(t, decimal.NewFromInt(180).Equal(response.Price))

	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/pos/services/999/price", nil, headers)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/pos/services/abc/price", nil, headers)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateAndUpdateService(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	headers := testutils.AuthHeaders(testCtx.ManagerJWT)

	// Test case 1: Create with price rounded to cents
	w := testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/admin/services", models.ServiceRequest{
		Name:  "  Gel Overlay ",
		Price: decimal.RequireFromString("250.005"),
	}, headers)
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.Service
	testutils.DecodeJSON(t, w, &created)
	assert.Equal(t, "Gel Overlay", created.Name)
	assert.Equal(t, "250.01", created.Price.StringFixed(2))

	// Test case 2: Negative price is rejected with the input echoed back
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/admin/services", models.ServiceRequest{
		Name:  "Refund",
		Price: decimal.NewFromInt(-5),
	}, headers)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var errResp models.ErrorResponse
	testutils.DecodeJSON(t, w, &errResp)
	assert.Equal(t, "VALIDATION_FAILED", errResp.Code)
	assert.Contains(t, errResp.Problems, "price must be 0 or more")
	assert.NotNil(t, errResp.Input)

	// Test case 3: Update
	w = testutils.PerformRequest(testCtx.Router, http.MethodPut, fmt.Sprintf("/api/admin/services/%d", created.ID), models.ServiceRequest{
		Name:  "Gel Overlay",
		Price: decimal.NewFromInt(270),
	}, headers)
	require.Equal(t, http.StatusOK, w.Code)

	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, fmt.Sprintf("/api/admin/services/%d", created.ID), nil, headers)
	require.Equal(t, http.StatusOK, w.Code)

	var fetched models.Service
	testutils.DecodeJSON(t, w, &fetched)
	assert.True(t, decimal.NewFromInt(270).Equal(fetched.Price))

	// Test case 4: Update of an unknown service
	w = testutils.PerformRequest(testCtx.Router, http.MethodPut, "/api/admin/services/999", models.ServiceRequest{
		Name:  "Ghost",
		Price: decimal.NewFromInt(1),
	}, headers)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Test case 5: Missing name fails binding
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/admin/services", map[string]interface{}{"price": "10"}, headers)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
