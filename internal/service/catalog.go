package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rongwang/nailpos-server/internal/models"
	"github.com/rongwang/nailpos-server/internal/repository"
)

func (s *DefaultService) ListServices(ctx context.Context) ([]models.Service, error) {
	services, err := s.repo.ListServices(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing services: %w", err)
	}
	return services, nil
}

func (s *DefaultService) GetService(ctx context.Context, id int64) (*models.Service, error) {
	svc, err := s.repo.GetService(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting service: %w", err)
	}
	if svc == nil {
		return nil, ErrNotFound
	}
	return svc, nil
}

// GetServicePrice is the checkout screen's price lookup for a selected service
func (s *DefaultService) GetServicePrice(ctx context.Context, id int64) (*models.PriceResponse, error) {
	svc, err := s.GetService(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.PriceResponse{Status: "success", ServiceID: svc.ID, Price: svc.Price}, nil
}

func (s *DefaultService) CreateService(ctx context.Context, req models.ServiceRequest) (*models.Service, error) {
	svc := &models.Service{}
	if err := applyServiceRequest(svc, req); err != nil {
		return nil, err
	}

	if err := s.repo.CreateService(ctx, svc); err != nil {
		return nil, fmt.Errorf("error creating service: %w", err)
	}

	s.logger.Info("service %q created at %s", svc.Name, svc.Price.StringFixed(2))
	return svc, nil
}

func (s *DefaultService) UpdateService(ctx context.Context, id int64, req models.ServiceRequest) (*models.Service, error) {
	svc, err := s.GetService(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := applyServiceRequest(svc, req); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateService(ctx, svc); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error updating service: %w", err)
	}
	return svc, nil
}

func applyServiceRequest(svc *models.Service, req models.ServiceRequest) error {
	v := &ValidationError{}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		v.add("name is required")
	}
	if req.Price.IsNegative() {
		v.add("price must be 0 or more")
	}
	if err := v.orNil(); err != nil {
		return err
	}

	svc.Name = name
	svc.Price = req.Price.Round(2)
	return nil
}
