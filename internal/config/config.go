package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // business time zone without relying on the host database

	"github.com/joho/godotenv"
	"github.com/rongwang/nailpos-server/internal/models"
	"github.com/shopspring/decimal"
)

// DefaultSeedMenu is the service menu inserted into an empty catalog
const DefaultSeedMenu = "Manicure=180;Pedicure=220;Gel Overlay=250;Acrylic Full Set=350;Nail Art (per nail)=20"

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Identity IdentityConfig
	Sales    SalesConfig
	Catalog  CatalogConfig
}

// ServerConfig holds the server configuration
type ServerConfig struct {
	Port int
}

// DatabaseConfig holds the database configuration
type DatabaseConfig struct {
	Driver     string // "postgres" or "memory"
	Host       string
	Port       int
	Username   string
	Password   string
	DBName     string
	SSLMode    string
	TestDBName string // Separate database for testing
}

// AuthConfig holds the authentication configuration
type AuthConfig struct {
	JWTSecret         string
	TokenDuration     time.Duration
	MaxFailedAttempts int
	LockoutDuration   time.Duration
}

// IdentityConfig controls how roster members get login accounts
type IdentityConfig struct {
	TemporaryPassword   string
	BootstrapAdminEmail string
	BootstrapAdminName  string
}

// SalesConfig holds reporting settings
type SalesConfig struct {
	PageSize       int
	MaxPageSize    int
	Location       *time.Location
	CurrencySymbol string
}

// CatalogConfig holds the seed menu for a fresh store
type CatalogConfig struct {
	SeedMenu []models.Service
}

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.Username, c.Password, c.DBName, c.SSLMode,
	)
}

// LoadConfig loads the configuration from environment variables. A .env file
// in the working directory is read first when present.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	loc, err := time.LoadLocation(getEnv("APP_TIMEZONE", "Africa/Johannesburg"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}

	menu, err := ParseSeedMenu(getEnv("SEED_MENU", DefaultSeedMenu))
	if err != nil {
		return nil, fmt.Errorf("invalid SEED_MENU: %w", err)
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "postgres"),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnvAsInt("DB_PORT", 5432),
			Username:   getEnv("DB_USERNAME", "postgres"),
			Password:   getEnv("DB_PASSWORD", "password"),
			DBName:     getEnv("DB_NAME", "nailpos"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			TestDBName: getEnv("TEST_DB_NAME", "nailpos_test"),
		},
		Auth: AuthConfig{
			JWTSecret:         getEnv("JWT_SECRET", "your-secret-key-here"),
			TokenDuration:     getEnvAsDuration("JWT_TTL", 12*time.Hour),
			MaxFailedAttempts: getEnvAsInt("LOGIN_MAX_FAILED_ATTEMPTS", 8),
			LockoutDuration:   getEnvAsDuration("LOGIN_LOCKOUT", 2*time.Minute),
		},
		Identity: IdentityConfig{
			TemporaryPassword:   getEnv("IDENTITY_TEMP_PASSWORD", "ICNails2025!"),
			BootstrapAdminEmail: getEnv("BOOTSTRAP_ADMIN_EMAIL", ""),
			BootstrapAdminName:  getEnv("BOOTSTRAP_ADMIN_NAME", "Administrator"),
		},
		Sales: SalesConfig{
			PageSize:       getEnvAsInt("SALES_PAGE_SIZE", 25),
			MaxPageSize:    getEnvAsInt("SALES_MAX_PAGE_SIZE", 100),
			Location:       loc,
			CurrencySymbol: getEnv("CURRENCY_SYMBOL", "R"),
		},
		Catalog: CatalogConfig{
			SeedMenu: menu,
		},
	}, nil
}

// ParseSeedMenu reads "Name=Price;Name=Price". Blank entries are skipped.
func ParseSeedMenu(raw string) ([]models.Service, error) {
	var menu []models.Service
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		idx := strings.LastIndex(entry, "=")
		if idx <= 0 {
			return nil, fmt.Errorf("entry %q is not Name=Price", entry)
		}

		name := strings.TrimSpace(entry[:idx])
		price, err := decimal.NewFromString(strings.TrimSpace(entry[idx+1:]))
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", entry, err)
		}
		if name == "" || price.IsNegative() {
			return nil, fmt.Errorf("entry %q needs a name and a price >= 0", entry)
		}

		menu = append(menu, models.Service{Name: name, Price: price.Round(2)})
	}
	return menu, nil
}

// Helper functions to read environment variables
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
