package service

import (
	"context"
	"time"

	"github.com/rongwang/nailpos-server/internal/config"
	"github.com/rongwang/nailpos-server/internal/models"
	"github.com/rongwang/nailpos-server/internal/repository"
	"github.com/rongwang/nailpos-server/internal/utils"
)

// Service defines all the business logic operations
type Service interface {
	// Authentication
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)

	// Catalog
	ListServices(ctx context.Context) ([]models.Service, error)
	GetService(ctx context.Context, id int64) (*models.Service, error)
	GetServicePrice(ctx context.Context, id int64) (*models.PriceResponse, error)
	CreateService(ctx context.Context, req models.ServiceRequest) (*models.Service, error)
	UpdateService(ctx context.Context, id int64, req models.ServiceRequest) (*models.Service, error)

	// Roster
	ListSalesPeople(ctx context.Context) ([]models.SalesPerson, error)
	GetSalesPerson(ctx context.Context, id int64) (*models.SalesPerson, error)
	CreateSalesPerson(ctx context.Context, req models.SalesPersonRequest) (*models.SalesPerson, error)
	UpdateSalesPerson(ctx context.Context, id int64, req models.SalesPersonRequest) (*models.SalesPerson, error)
	DeleteSalesPerson(ctx context.Context, id int64) error

	// Account sync
	EnsureBootstrapAdmin(ctx context.Context) error
	SyncAccount(ctx context.Context, sp *models.SalesPerson) error
	SyncAllAccounts(ctx context.Context) (int, error)

	// Sales
	CreateSale(ctx context.Context, req models.CheckoutRequest) (*models.CheckoutResponse, error)
	GetSale(ctx context.Context, id int64) (*models.SaleResponse, error)
	EditSale(ctx context.Context, id int64, req models.EditSaleRequest) (*models.EditSaleResponse, error)
	DeleteSale(ctx context.Context, id int64) error

	// Reporting
	ListSales(ctx context.Context, filter models.SalesFilter) (*models.SalesPageResponse, error)
	ExportSalesPDF(ctx context.Context, filter models.SalesFilter) ([]byte, string, error)
}

// DefaultService implements the Service interface
type DefaultService struct {
	repo   repository.Repository
	logger *utils.Logger

	jwtSecret         []byte
	tokenDuration     time.Duration
	maxFailedAttempts int
	lockoutDuration   time.Duration

	tempPassword   string
	bootstrapEmail string
	bootstrapName  string

	pageSize    int
	maxPageSize int
	location    *time.Location
	currency    string

	now func() time.Time
}

// NewDefaultService creates a new DefaultService
func NewDefaultService(repo repository.Repository, cfg *config.Config, logger *utils.Logger) Service {
	return newDefaultService(repo, cfg, logger)
}

func newDefaultService(repo repository.Repository, cfg *config.Config, logger *utils.Logger) *DefaultService {
	loc := cfg.Sales.Location
	if loc == nil {
		loc = time.Local
	}

	return &DefaultService{
		repo:              repo,
		logger:            logger,
		jwtSecret:         []byte(cfg.Auth.JWTSecret),
		tokenDuration:     cfg.Auth.TokenDuration,
		maxFailedAttempts: cfg.Auth.MaxFailedAttempts,
		lockoutDuration:   cfg.Auth.LockoutDuration,
		tempPassword:      cfg.Identity.TemporaryPassword,
		bootstrapEmail:    cfg.Identity.BootstrapAdminEmail,
		bootstrapName:     cfg.Identity.BootstrapAdminName,
		pageSize:          cfg.Sales.PageSize,
		maxPageSize:       cfg.Sales.MaxPageSize,
		location:          loc,
		currency:          cfg.Sales.CurrencySymbol,
		now:               time.Now,
	}
}
