package service

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rongwang/nailpos-server/internal/export"
	"github.com/rongwang/nailpos-server/internal/models"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// ListSales returns one page of sales matching the filter, most recent first
func (s *DefaultService) ListSales(ctx context.Context, filter models.SalesFilter) (*models.SalesPageResponse, error) {
	sales, page, err := s.findSales(ctx, filter)
	if err != nil {
		return nil, err
	}

	page.Sales = make([]models.SaleResponse, 0, len(sales))
	for i := range sales {
		page.Sales = append(page.Sales, *models.NewSaleResponse(&sales[i]))
	}
	return page, nil
}

// ExportSalesPDF renders exactly the page ListSales would return. The footer
// total covers that page only.
func (s *DefaultService) ExportSalesPDF(ctx context.Context, filter models.SalesFilter) ([]byte, string, error) {
	sales, page, err := s.findSales(ctx, filter)
	if err != nil {
		return nil, "", err
	}

	now := s.now().In(s.location)
	report := export.SalesReport{
		Title:       fmt.Sprintf("Sales (%s to %s)", labelOr(page.StartDate, "start"), labelOr(page.EndDate, "today")),
		Sales:       sales,
		GeneratedAt: now,
		Location:    s.location,
		Currency:    s.currency,
	}

	var buf bytes.Buffer
	if err := export.RenderSalesPDF(&buf, report); err != nil {
		return nil, "", fmt.Errorf("error rendering sales export: %w", err)
	}

	filename := fmt.Sprintf("sales_%s.pdf", now.Format("20060102_1504"))
	return buf.Bytes(), filename, nil
}

func (s *DefaultService) findSales(ctx context.Context, filter models.SalesFilter) ([]models.Sale, *models.SalesPageResponse, error) {
	q, page, err := s.buildSaleQuery(filter)
	if err != nil {
		return nil, nil, err
	}

	sales, total, err := s.repo.FindSales(ctx, q)
	if err != nil {
		return nil, nil, fmt.Errorf("error finding sales: %w", err)
	}

	page.Total = total
	page.PageCount = (total + page.PageSize - 1) / page.PageSize
	page.PageTotal = decimal.Zero
	for i := range sales {
		page.PageTotal = page.PageTotal.Add(sales[i].Total())
	}
	return sales, page, nil
}

// buildSaleQuery turns calendar dates into store bounds: the start date from
// its midnight, the end date through the last instant of that day
func (s *DefaultService) buildSaleQuery(filter models.SalesFilter) (models.SaleQuery, *models.SalesPageResponse, error) {
	v := &ValidationError{}

	pageNo := filter.Page
	if pageNo == 0 {
		pageNo = 1
	}
	if pageNo < 1 {
		v.add("page must be 1 or greater")
	}

	size := filter.PageSize
	if size == 0 {
		size = s.pageSize
	}
	if size < 1 || (s.maxPageSize > 0 && size > s.maxPageSize) {
		v.add("page size must be between 1 and %d", s.maxPageSize)
	}

	if err := v.orNil(); err != nil {
		return models.SaleQuery{}, nil, err
	}

	// The offset must fit in an int
	if pageNo-1 > math.MaxInt/size {
		return models.SaleQuery{}, nil, invalid("page must be %d or less", math.MaxInt/size)
	}

	page := &models.SalesPageResponse{
		Status:   "success",
		Page:     pageNo,
		PageSize: size,
		Query:    strings.TrimSpace(filter.Query),
	}
	q := models.SaleQuery{
		Text:   page.Query,
		Offset: (pageNo - 1) * size,
		Limit:  size,
	}

	if filter.StartDate != nil {
		from := s.startOfDay(*filter.StartDate)
		q.From = &from
		page.StartDate = from.Format(dateLayout)
	}
	if filter.EndDate != nil {
		end := s.startOfDay(*filter.EndDate)
		until := end.AddDate(0, 0, 1)
		q.Until = &until
		page.EndDate = end.Format(dateLayout)
	}

	return q, page, nil
}

// startOfDay keeps only the calendar date of t and places it in the business
// time zone
func (s *DefaultService) startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.location)
}

func labelOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
