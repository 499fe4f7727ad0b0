package testutils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rongwang/nailpos-server/internal/api"
	"github.com/rongwang/nailpos-server/internal/config"
	"github.com/rongwang/nailpos-server/internal/models"
	"github.com/rongwang/nailpos-server/internal/repository"
	"github.com/rongwang/nailpos-server/internal/service"
	"github.com/rongwang/nailpos-server/internal/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	TempPassword = "ICNails2025!"

	AdminEmail   = "admin@example.com"
	ManagerEmail = "manager@example.com"
	SalesEmail   = "sales@example.com"
)

// TestContext holds all dependencies for tests
type TestContext struct {
	Router     *gin.Engine
	Repository *repository.MemoryRepository
	Service    service.Service
	Config     *config.Config

	AdminJWT   string
	ManagerJWT string
	SalesJWT   string
}

// TestConfig is the configuration the API tests run with
func TestConfig() *config.Config {
	return &config.Config{
		Database: config.DatabaseConfig{Driver: "memory"},
		Auth: config.AuthConfig{
			JWTSecret:         "test-secret-key",
			TokenDuration:     time.Hour,
			MaxFailedAttempts: 3,
			LockoutDuration:   2 * time.Minute,
		},
		Identity: config.IdentityConfig{
			TemporaryPassword: TempPassword,
		},
		Sales: config.SalesConfig{
			PageSize:       25,
			MaxPageSize:    100,
			Location:       time.UTC,
			CurrencySymbol: "R",
		},
		Catalog: config.CatalogConfig{
			SeedMenu: []models.Service{
				{Name: "Manicure", Price: decimal.NewFromInt(180)},
				{Name: "Pedicure", Price: decimal.NewFromInt(220)},
			},
		},
	}
}

// SetupTestContext creates a new test context backed by the in-memory store,
// with one roster member per role already synced and logged in
func SetupTestContext(t *testing.T) *TestContext {
	cfg := TestConfig()

	repo := repository.NewMemoryRepository(cfg.Catalog.SeedMenu)
	logger := utils.NewLoggerTo(io.Discard, io.Discard)
	svc := service.NewDefaultService(repo, cfg, logger)
	handler := api.NewHandler(svc, logger)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(api.TraceIDMiddleware())
	router.Use(api.JWTSecretMiddleware([]byte(cfg.Auth.JWTSecret)))
	handler.SetupRoutes(router)

	tc := &TestContext{
		Router:     router,
		Repository: repo,
		Service:    svc,
		Config:     cfg,
	}

	tc.AdminJWT = createRosterMember(t, tc, "Admin User", AdminEmail, models.RoleAdmin)
	tc.ManagerJWT = createRosterMember(t, tc, "Manager User", ManagerEmail, models.RoleManager)
	tc.SalesJWT = createRosterMember(t, tc, "Sales User", SalesEmail, models.RoleSales)

	return tc
}

// createRosterMember adds a roster entry (which syncs its account) and logs in
// with the temporary password
func createRosterMember(t *testing.T, tc *TestContext, name, email string, role models.Role) string {
	ctx := context.Background()

	_, err := tc.Service.CreateSalesPerson(ctx, models.SalesPersonRequest{
		Name:  name,
		Email: email,
		Role:  role,
	})
	require.NoError(t, err, "Failed to create roster member")

	auth, err := tc.Service.Login(ctx, models.LoginRequest{Email: email, Password: TempPassword})
	require.NoError(t, err, "Failed to log in roster member")

	return auth.Token
}

// ServiceID returns the id of a seeded service by name
func (tc *TestContext) ServiceID(t *testing.T, name string) int64 {
	services, err := tc.Repository.ListServices(context.Background())
	require.NoError(t, err)
	for _, s := range services {
		if s.Name == name {
			return s.ID
		}
	}
	t.Fatalf("service %q not seeded", name)
	return 0
}

// PerformRequest executes an HTTP request against the router
func PerformRequest(r http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer

	if body != nil {
		jsonBody, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBody)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// AuthHeaders returns headers with Authorization token
func AuthHeaders(token string) map[string]string {
	return map[string]string{
		"Authorization": fmt.Sprintf("Bearer %s", token),
	}
}

// DecodeJSON unmarshals a recorded response body
func DecodeJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), "body: %s", w.Body.String())
}
