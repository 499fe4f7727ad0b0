package service

import (
	"bytes"
	"context"
	"math"
	"testing"
	"time"

	"github.com/rongwang/nailpos-server/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordSaleAt(t *testing.T, svc *DefaultService, clk *clock, person string, serviceID int64, at time.Time) int64 {
	t.Helper()

	clk.t = at
	resp, err := svc.CreateSale(context.Background(), models.CheckoutRequest{
		SalesPerson: person,
		Lines:       []models.CheckoutLine{{ServiceID: ptr(serviceID), Quantity: 1}},
	})
	require.NoError(t, err)
	return resp.SaleID
}

func TestListSalesDateBoundaries(t *testing.T) {
	svc, repo, clk := newTestService(t)
	ctx := context.Background()
	manicure := serviceIDByName(t, repo, "Manicure")

	inside := recordSaleAt(t, svc, clk, "Lerato", manicure, time.Date(2025, 1, 1, 23, 59, 59, 0, time.UTC))
	recordSaleAt(t, svc, clk, "Lerato", manicure, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC))
	recordSaleAt(t, svc, clk, "Lerato", manicure, time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC))

	day := time.Date(2025, 1, 1, 15, 0, 0, 0, time.UTC)
	page, err := svc.ListSales(ctx, models.SalesFilter{StartDate: &day, EndDate: &day})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	require.Len(t, page.Sales, 1)
	assert.Equal(t, inside, page.Sales[0].ID)
	assert.Equal(t, "2025-01-01", page.StartDate)
	assert.Equal(t, "2025-01-01", page.EndDate)
}

func TestListSalesUsesBusinessTimeZone(t *testing.T) {
	svc, repo, clk := newTestService(t)
	ctx := context.Background()
	manicure := serviceIDByName(t, repo, "Manicure")

	joburg, err := time.LoadLocation("Africa/Johannesburg")
	require.NoError(t, err)
	svc.location = joburg

	// 23:30 UTC on the 1st is already the 2nd in Johannesburg
	id := recordSaleAt(t, svc, clk, "Lerato", manicure, time.Date(2025, 1, 1, 23, 30, 0, 0, time.UTC))

	second := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	page, err := svc.ListSales(ctx, models.SalesFilter{StartDate: &second, EndDate: &second})
	require.NoError(t, err)
	require.Len(t, page.Sales, 1)
	assert.Equal(t, id, page.Sales[0].ID)
}

func TestListSalesPaging(t *testing.T) {
	svc, repo, clk := newTestService(t)
	ctx := context.Background()
	manicure := serviceIDByName(t, repo, "Manicure")
	pedicure := serviceIDByName(t, repo, "Pedicure")

	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		recordSaleAt(t, svc, clk, "Lerato", manicure, base.Add(time.Duration(i)*time.Hour))
	}
	recordSaleAt(t, svc, clk, "Naledi", pedicure, base.Add(10*time.Hour))

	page, err := svc.ListSales(ctx, models.SalesFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 6, page.Total)
	assert.Equal(t, 3, page.PageCount)
	assert.Len(t, page.Sales, 2)
	assert.True(t, decimal.NewFromInt(360).Equal(page.PageTotal))

	page, err = svc.ListSales(ctx, models.SalesFilter{Query: " Naledi "})
	require.NoError(t, err)
	assert.Equal(t, "Naledi", page.Query)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 25, page.PageSize)

	page, err = svc.ListSales(ctx, models.SalesFilter{Page: 9})
	require.NoError(t, err)
	assert.Empty(t, page.Sales)
	assert.True(t, page.PageTotal.IsZero())
}

func TestListSalesRejectsBadPaging(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	filters := []models.SalesFilter{
		{Page: -1},
		{PageSize: -1},
		{PageSize: 101},
		{Page: math.MaxInt/25 + 2, PageSize: 25},
		{Page: math.MaxInt},
	}
	for _, f := range filters {
		_, err := svc.ListSales(ctx, f)
		assert.ErrorIs(t, err, ErrValidation, "%+v", f)
	}

	// The last page whose offset still fits is a plain empty page
	page, err := svc.ListSales(ctx, models.SalesFilter{Page: math.MaxInt/25 + 1, PageSize: 25})
	require.NoError(t, err)
	assert.Empty(t, page.Sales)
}

func TestExportSalesPDF(t *testing.T) {
	svc, repo, clk := newTestService(t)
	ctx := context.Background()
	manicure := serviceIDByName(t, repo, "Manicure")

	recordSaleAt(t, svc, clk, "Lerato", manicure, time.Date(2025, 3, 4, 14, 5, 0, 0, time.UTC))

	doc, filename, err := svc.ExportSalesPDF(ctx, models.SalesFilter{})
	require.NoError(t, err)
	assert.Equal(t, "sales_20250304_1405.pdf", filename)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))

	_, _, err = svc.ExportSalesPDF(ctx, models.SalesFilter{PageSize: 1000})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestLabelOr(t *testing.T) {
	assert.Equal(t, "start", labelOr("", "start"))
	assert.Equal(t, "2025-01-01", labelOr("2025-01-01", "start"))
}
