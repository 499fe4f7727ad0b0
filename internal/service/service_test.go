package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/rongwang/nailpos-server/internal/config"
	"github.com/rongwang/nailpos-server/internal/models"
	"github.com/rongwang/nailpos-server/internal/repository"
	"github.com/rongwang/nailpos-server/internal/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const testPassword = "ICNails2025!"

// clock is a settable time source for lockout and sale date tests
type clock struct {
	t time.Time
}

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:         "test-secret-key",
			TokenDuration:     time.Hour,
			MaxFailedAttempts: 3,
			LockoutDuration:   2 * time.Minute,
		},
		Identity: config.IdentityConfig{
			TemporaryPassword:   testPassword,
			BootstrapAdminEmail: "owner@example.com",
			BootstrapAdminName:  "Owner",
		},
		Sales: config.SalesConfig{
			PageSize:       25,
			MaxPageSize:    100,
			Location:       time.UTC,
			CurrencySymbol: "R",
		},
	}
}

func newTestRepository() *repository.MemoryRepository {
	return repository.NewMemoryRepository([]models.Service{
		{Name: "Manicure", Price: decimal.NewFromInt(180)},
		{Name: "Pedicure", Price: decimal.NewFromInt(220)},
	})
}

func newTestService(t *testing.T) (*DefaultService, *repository.MemoryRepository, *clock) {
	t.Helper()

	repo := newTestRepository()
	svc, c := newTestServiceWith(t, repo)
	return svc, repo, c
}

// newTestServiceWith builds the service over any store, for tests that need
// to inject failures
func newTestServiceWith(t *testing.T, repo repository.Repository) (*DefaultService, *clock) {
	t.Helper()

	svc := newDefaultService(repo, testConfig(), utils.NewLoggerTo(io.Discard, io.Discard))

	c := &clock{t: time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)}
	svc.now = c.now

	return svc, c
}

func serviceIDByName(t *testing.T, repo repository.Repository, name string) int64 {
	t.Helper()

	services, err := repo.ListServices(context.Background())
	require.NoError(t, err)
	for _, s := range services {
		if s.Name == name {
			return s.ID
		}
	}
	t.Fatalf("service %q not found", name)
	return 0
}

func ptr[T any](v T) *T { return &v }
