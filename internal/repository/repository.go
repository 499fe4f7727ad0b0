package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rongwang/nailpos-server/internal/models"
	"github.com/shopspring/decimal"
)

var (
	// ErrDuplicateEmail is returned when a roster or identity email is already taken
	ErrDuplicateEmail = errors.New("email already in use")
	// ErrNotFound is returned by writes whose target row does not exist
	ErrNotFound = errors.New("record not found")
)

// Repository interface defines the methods that any repository implementation must satisfy.
// Lookups by id return nil, nil when nothing matches.
type Repository interface {
	CatalogRepository
	RosterRepository
	SaleRepository
	IdentityRepository
}

// CatalogRepository stores the service menu
type CatalogRepository interface {
	ListServices(ctx context.Context) ([]models.Service, error)
	GetService(ctx context.Context, id int64) (*models.Service, error)
	CreateService(ctx context.Context, svc *models.Service) error
	UpdateService(ctx context.Context, svc *models.Service) error
	GetServicePrices(ctx context.Context) (map[int64]decimal.Decimal, error)
}

// RosterRepository stores staff members
type RosterRepository interface {
	ListSalesPeople(ctx context.Context) ([]models.SalesPerson, error)
	GetSalesPerson(ctx context.Context, id int64) (*models.SalesPerson, error)
	GetSalesPersonByEmail(ctx context.Context, email string) (*models.SalesPerson, error)
	CreateSalesPerson(ctx context.Context, sp *models.SalesPerson) error
	UpdateSalesPerson(ctx context.Context, sp *models.SalesPerson) error
	DeleteSalesPerson(ctx context.Context, id int64) error
	LinkIdentityUser(ctx context.Context, salesPersonID int64, userID string) error
}

// SaleRepository stores sales and their lines. Every method that writes does
// so in a single transaction.
type SaleRepository interface {
	CreateSale(ctx context.Context, sale *models.Sale) error
	GetSale(ctx context.Context, id int64) (*models.Sale, error)
	ApplySaleChanges(ctx context.Context, changes models.SaleChangeSet) error
	DeleteSale(ctx context.Context, id int64) error
	FindSales(ctx context.Context, q models.SaleQuery) ([]models.Sale, int, error)
}

// IdentityRepository is the account and role membership store behind login
type IdentityRepository interface {
	GetIdentityUserByID(ctx context.Context, id string) (*models.IdentityUser, error)
	GetIdentityUserByEmail(ctx context.Context, email string) (*models.IdentityUser, error)
	CreateIdentityUser(ctx context.Context, user *models.IdentityUser) error
	UpdateLoginState(ctx context.Context, userID string, failedCount int, lockoutEnd *time.Time) error

	RoleExists(ctx context.Context, role models.Role) (bool, error)
	CreateRole(ctx context.Context, role models.Role) error
	IsInRole(ctx context.Context, userID string, role models.Role) (bool, error)
	AddToRole(ctx context.Context, userID string, role models.Role) error
	RemoveFromRole(ctx context.Context, userID string, role models.Role) error
	GetUserRoles(ctx context.Context, userID string) ([]models.Role, error)
}

var (
	_ Repository = (*PostgresRepository)(nil)
	_ Repository = (*MemoryRepository)(nil)
)
