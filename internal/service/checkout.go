package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rongwang/nailpos-server/internal/models"
	"github.com/rongwang/nailpos-server/internal/repository"
	"github.com/shopspring/decimal"
)

// CreateSale records a checkout. Lines without a service or with a quantity
// below one are dropped. Each kept line takes the catalog price at this moment;
// a service id the catalog does not know is priced at 0.
func (s *DefaultService) CreateSale(ctx context.Context, req models.CheckoutRequest) (*models.CheckoutResponse, error) {
	v := &ValidationError{}

	person := strings.TrimSpace(req.SalesPerson)
	if person == "" {
		v.add("sales person is required")
	}

	var candidates []models.CheckoutLine
	for _, l := range req.Lines {
		if l.ServiceID != nil && l.Quantity > 0 {
			candidates = append(candidates, l)
		}
	}
	if len(candidates) == 0 {
		v.add("add at least one service line")
	}

	if err := v.orNil(); err != nil {
		return nil, err
	}

	prices, err := s.repo.GetServicePrices(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading prices: %w", err)
	}

	sale := &models.Sale{
		SalesPerson: person,
		SaleDate:    s.now().In(s.location),
		Lines:       make([]models.SaleLine, 0, len(candidates)),
	}
	for _, l := range candidates {
		price, ok := prices[*l.ServiceID]
		if !ok {
			price = decimal.Zero
		}
		sale.Lines = append(sale.Lines, models.SaleLine{
			ServiceID: *l.ServiceID,
			Quantity:  l.Quantity,
			UnitPrice: price,
		})
	}

	if err := s.repo.CreateSale(ctx, sale); err != nil {
		return nil, fmt.Errorf("error creating sale: %w", err)
	}

	saved, err := s.loadSale(ctx, sale.ID)
	if err != nil {
		return nil, err
	}

	return &models.CheckoutResponse{
		Status:  "success",
		Message: fmt.Sprintf("Sale #%d recorded.", sale.ID),
		SaleID:  sale.ID,
		Sale:    models.NewSaleResponse(saved),
	}, nil
}

func (s *DefaultService) GetSale(ctx context.Context, id int64) (*models.SaleResponse, error) {
	sale, err := s.loadSale(ctx, id)
	if err != nil {
		return nil, err
	}
	return models.NewSaleResponse(sale), nil
}

// DeleteSale removes the sale and all of its lines
func (s *DefaultService) DeleteSale(ctx context.Context, id int64) error {
	if err := s.repo.DeleteSale(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("error deleting sale: %w", err)
	}

	s.logger.Info("sale #%d deleted", id)
	return nil
}

func (s *DefaultService) loadSale(ctx context.Context, id int64) (*models.Sale, error) {
	sale, err := s.repo.GetSale(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting sale: %w", err)
	}
	if sale == nil {
		return nil, ErrNotFound
	}
	return sale, nil
}
