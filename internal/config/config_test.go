package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeedMenu(t *testing.T) {
	menu, err := ParseSeedMenu(DefaultSeedMenu)
	require.NoError(t, err)
	require.Len(t, menu, 5)
	assert.Equal(t, "Manicure", menu[0].Name)
	assert.Equal(t, "180.00", menu[0].Price.StringFixed(2))
	assert.Equal(t, "Nail Art (per nail)", menu[4].Name)

	menu, err = ParseSeedMenu(" Soak Off = 80.555 ;; ")
	require.NoError(t, err)
	require.Len(t, menu, 1)
	assert.Equal(t, "Soak Off", menu[0].Name)
	assert.Equal(t, "80.56", menu[0].Price.StringFixed(2))

	menu, err = ParseSeedMenu("")
	require.NoError(t, err)
	assert.Empty(t, menu)

	for _, bad := range []string{"Manicure", "=10", "Manicure=abc", "Manicure=-1"} {
		_, err := ParseSeedMenu(bad)
		assert.Error(t, err, bad)
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("APP_TIMEZONE", "UTC")
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("SALES_PAGE_SIZE", "10")
	t.Setenv("JWT_TTL", "30m")
	t.Setenv("SEED_MENU", "Manicure=150")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, 10, cfg.Sales.PageSize)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenDuration)
	assert.Equal(t, time.UTC.String(), cfg.Sales.Location.String())
	require.Len(t, cfg.Catalog.SeedMenu, 1)

	t.Setenv("APP_TIMEZONE", "Not/AZone")
	_, err = LoadConfig()
	assert.Error(t, err)
}
