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

// EditSale applies an edit form to a stored sale.
//
// AddLine and RemoveLine only change the submitted form and hand it back
// unsaved. Any other submission is a save: the header is overwritten, lines
// with a known id are updated in place, lines without one are inserted, and
// stored lines missing from the submission are deleted. An empty submitted
// list never deletes anything.
func (s *DefaultService) EditSale(ctx context.Context, id int64, req models.EditSaleRequest) (*models.EditSaleResponse, error) {
	sale, err := s.loadSale(ctx, id)
	if err != nil {
		return nil, err
	}

	switch {
	case req.Command == models.CommandAddLine:
		lines := make([]models.EditSaleLine, 0, len(req.Lines)+1)
		lines = append(lines, req.Lines...)
		req.Lines = append(lines, models.EditSaleLine{Quantity: 1, UnitPrice: decimal.Zero})
		return pendingEdit(req), nil

	case req.Command == models.CommandRemoveLine && validIndex(req.CommandIndex, len(req.Lines)):
		i := *req.CommandIndex
		lines := make([]models.EditSaleLine, 0, len(req.Lines)-1)
		lines = append(lines, req.Lines[:i]...)
		req.Lines = append(lines, req.Lines[i+1:]...)
		return pendingEdit(req), nil
	}

	if err := validateSaleEdit(sale, req); err != nil {
		return nil, err
	}

	changes := planSaleEdit(sale, req)
	if err := s.repo.ApplySaleChanges(ctx, changes); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error saving sale: %w", err)
	}

	updated, err := s.loadSale(ctx, id)
	if err != nil {
		return nil, err
	}

	return &models.EditSaleResponse{
		Status:     "success",
		Saved:      true,
		Message:    fmt.Sprintf("Sale #%d updated.", id),
		Form:       editFormFor(updated),
		GrandTotal: updated.Total(),
		Sale:       models.NewSaleResponse(updated),
	}, nil
}

func pendingEdit(req models.EditSaleRequest) *models.EditSaleResponse {
	req.Command = ""
	req.CommandIndex = nil
	return &models.EditSaleResponse{
		Status:     "success",
		Saved:      false,
		Form:       req,
		GrandTotal: req.GrandTotal(),
	}
}

func validIndex(idx *int, n int) bool {
	return idx != nil && *idx >= 0 && *idx < n
}

func validateSaleEdit(sale *models.Sale, req models.EditSaleRequest) error {
	v := &ValidationError{}

	if strings.TrimSpace(req.SalesPerson) == "" {
		v.add("sales person is required")
	}
	if req.SaleDate.IsZero() {
		v.add("sale date is required")
	}

	known := lineIDs(sale)
	for i, l := range req.Lines {
		if l.Quantity < 1 {
			v.add("line %d: quantity must be at least 1", i+1)
		}
		if l.UnitPrice.IsNegative() {
			v.add("line %d: unit price must be 0 or more", i+1)
		}
		if l.ServiceID == nil && (l.ID == nil || !known[*l.ID]) {
			v.add("line %d: choose a service", i+1)
		}
	}

	return v.orNil()
}

// planSaleEdit works out the writes for one save without touching the store
func planSaleEdit(sale *models.Sale, req models.EditSaleRequest) models.SaleChangeSet {
	existing := make(map[int64]models.SaleLine, len(sale.Lines))
	for _, l := range sale.Lines {
		existing[l.ID] = l
	}

	changes := models.SaleChangeSet{
		SaleID:      sale.ID,
		SalesPerson: strings.TrimSpace(req.SalesPerson),
		SaleDate:    req.SaleDate,
	}

	kept := make(map[int64]bool, len(req.Lines))
	for _, l := range req.Lines {
		if l.ID != nil {
			if found, ok := existing[*l.ID]; ok {
				if l.ServiceID != nil {
					found.ServiceID = *l.ServiceID
				}
				found.Quantity = l.Quantity
				found.UnitPrice = l.UnitPrice.Round(2)
				existing[*l.ID] = found
				kept[*l.ID] = true
				changes.Updates = append(changes.Updates, found)
				continue
			}
		}

		changes.Inserts = append(changes.Inserts, models.SaleLine{
			SaleID:    sale.ID,
			ServiceID: *l.ServiceID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice.Round(2),
		})
	}

	// An empty submission is treated as "no line data", not "remove all"
	if len(req.Lines) > 0 {
		for _, l := range sale.Lines {
			if !kept[l.ID] {
				changes.DeleteLineIDs = append(changes.DeleteLineIDs, l.ID)
			}
		}
	}

	return changes
}

func lineIDs(sale *models.Sale) map[int64]bool {
	ids := make(map[int64]bool, len(sale.Lines))
	for _, l := range sale.Lines {
		ids[l.ID] = true
	}
	return ids
}

// editFormFor renders a stored sale back into the edit form shape
func editFormFor(sale *models.Sale) models.EditSaleRequest {
	form := models.EditSaleRequest{
		SalesPerson: sale.SalesPerson,
		SaleDate:    sale.SaleDate,
		Lines:       make([]models.EditSaleLine, 0, len(sale.Lines)),
	}
	for _, l := range sale.Lines {
		id, serviceID := l.ID, l.ServiceID
		form.Lines = append(form.Lines, models.EditSaleLine{
			ID:        &id,
			ServiceID: &serviceID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}
	return form
}
