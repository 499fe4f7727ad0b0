package config

import (
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
)

// SetupDatabase initializes the database connection, creates the schema and
// seeds the catalog from cfg.Catalog when it is empty
func SetupDatabase(cfg *Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	if err := seedServices(db, cfg.Catalog); err != nil {
		return nil, fmt.Errorf("failed to seed services: %w", err)
	}

	return db, nil
}

// createTables creates the necessary tables in the database
func createTables(db *sqlx.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS identity_users (
			id VARCHAR(36) PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			user_name VARCHAR(255) NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			email_confirmed BOOLEAN NOT NULL DEFAULT FALSE,
			access_failed_count INT NOT NULL DEFAULT 0,
			lockout_end TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS identity_roles (
			name VARCHAR(32) PRIMARY KEY
		)`,
		`CREATE TABLE IF NOT EXISTS identity_user_roles (
			user_id VARCHAR(36) NOT NULL REFERENCES identity_users(id) ON DELETE CASCADE,
			role_name VARCHAR(32) NOT NULL REFERENCES identity_roles(name) ON DELETE CASCADE,
			PRIMARY KEY (user_id, role_name)
		)`,
		`CREATE TABLE IF NOT EXISTS services (
			id BIGSERIAL PRIMARY KEY,
			name VARCHAR(200) NOT NULL,
			price NUMERIC(18,2) NOT NULL CHECK (price >= 0),
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS salespeople (
			id BIGSERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) UNIQUE NOT NULL,
			role VARCHAR(16) NOT NULL DEFAULT 'Sales',
			identity_user_id VARCHAR(36) REFERENCES identity_users(id) ON DELETE SET NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sales (
			id BIGSERIAL PRIMARY KEY,
			sale_date TIMESTAMPTZ NOT NULL,
			sales_person VARCHAR(255) NOT NULL
		)`,
		// service_id has no foreign key: lines keep their snapshot even when
		// the referenced service is gone
		`CREATE TABLE IF NOT EXISTS sale_lines (
			id BIGSERIAL PRIMARY KEY,
			sale_id BIGINT NOT NULL REFERENCES sales(id),
			service_id BIGINT NOT NULL,
			quantity INT NOT NULL CHECK (quantity >= 1),
			unit_price NUMERIC(18,2) NOT NULL CHECK (unit_price >= 0)
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	// Create indexes for better performance
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_sale_lines_sale_id ON sale_lines(sale_id)",
		"CREATE INDEX IF NOT EXISTS idx_sales_sale_date ON sales(sale_date DESC, id DESC)",
	}

	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			log.Printf("Warning: Failed to create index: %v", err)
			// Don't return error here, indexes are not critical
		}
	}

	return nil
}

// seedServices inserts the configured menu when the catalog has no rows
func seedServices(db *sqlx.DB, catalog CatalogConfig) error {
	if len(catalog.SeedMenu) == 0 {
		return nil
	}

	var count int
	if err := db.Get(&count, `SELECT COUNT(*) FROM services`); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, svc := range catalog.SeedMenu {
		_, err = tx.Exec(
			`INSERT INTO services (name, price, created_at, updated_at) VALUES ($1, $2, $3, $4)`,
			svc.Name, svc.Price, now, now)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}
