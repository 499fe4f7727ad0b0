package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rongwang/nailpos-server/internal/models"
	"github.com/rongwang/nailpos-server/internal/repository"
)

func (s *DefaultService) ListSalesPeople(ctx context.Context) ([]models.SalesPerson, error) {
	people, err := s.repo.ListSalesPeople(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing sales people: %w", err)
	}
	return people, nil
}

func (s *DefaultService) GetSalesPerson(ctx context.Context, id int64) (*models.SalesPerson, error) {
	sp, err := s.repo.GetSalesPerson(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting sales person: %w", err)
	}
	if sp == nil {
		return nil, ErrNotFound
	}
	return sp, nil
}

// CreateSalesPerson adds a roster member and gives them a login. A failed
// account sync is logged and does not undo the roster entry.
func (s *DefaultService) CreateSalesPerson(ctx context.Context, req models.SalesPersonRequest) (*models.SalesPerson, error) {
	sp := &models.SalesPerson{}
	if err := applySalesPersonRequest(sp, req); err != nil {
		return nil, err
	}

	if err := s.repo.CreateSalesPerson(ctx, sp); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, invalid("email %s is already in use", sp.Email)
		}
		return nil, fmt.Errorf("error creating sales person: %w", err)
	}

	s.syncAfterSave(ctx, sp)
	return s.GetSalesPerson(ctx, sp.ID)
}

func (s *DefaultService) UpdateSalesPerson(ctx context.Context, id int64, req models.SalesPersonRequest) (*models.SalesPerson, error) {
	sp, err := s.GetSalesPerson(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := applySalesPersonRequest(sp, req); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateSalesPerson(ctx, sp); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, invalid("email %s is already in use", sp.Email)
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error updating sales person: %w", err)
	}

	s.syncAfterSave(ctx, sp)
	return s.GetSalesPerson(ctx, sp.ID)
}

// DeleteSalesPerson removes the roster entry. The linked login account is left
// in place.
func (s *DefaultService) DeleteSalesPerson(ctx context.Context, id int64) error {
	if err := s.repo.DeleteSalesPerson(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("error deleting sales person: %w", err)
	}
	return nil
}

func (s *DefaultService) syncAfterSave(ctx context.Context, sp *models.SalesPerson) {
	if err := s.SyncAccount(ctx, sp); err != nil {
		s.logger.Error("account sync for %s failed: %v", sp.Email, err)
	}
}

func applySalesPersonRequest(sp *models.SalesPerson, req models.SalesPersonRequest) error {
	v := &ValidationError{}

	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	if name == "" {
		v.add("name is required")
	}
	if email == "" {
		v.add("email is required")
	}
	if req.Role != "" && req.Role.Normalize() != req.Role {
		v.add("role must be one of Sales, Manager, Admin")
	}
	if err := v.orNil(); err != nil {
		return err
	}

	sp.Name = name
	sp.Email = email
	sp.Role = req.Role.Normalize()
	return nil
}
