package export

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/rongwang/nailpos-server/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSales(n int) []models.Sale {
	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	sales := make([]models.Sale, 0, n)
	for i := 0; i < n; i++ {
		sales = append(sales, models.Sale{
			ID:          int64(i + 1),
			SaleDate:    base.Add(time.Duration(i) * time.Hour),
			SalesPerson: fmt.Sprintf("Stylist %d", i%3),
			Lines: []models.SaleLine{
				{ServiceName: "Manicure", Quantity: 1, UnitPrice: decimal.NewFromInt(180)},
				{ServiceName: "Nail Art (per nail)", Quantity: 10, UnitPrice: decimal.NewFromInt(20)},
			},
		})
	}
	return sales
}

func TestRenderSalesPDF(t *testing.T) {
	report := SalesReport{
		Title:       "Sales (2025-01-01 to today)",
		Sales:       sampleSales(3),
		GeneratedAt: time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC),
		Location:    time.UTC,
		Currency:    "R",
	}

	var buf bytes.Buffer
	require.NoError(t, RenderSalesPDF(&buf, report))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
	assert.Equal(t, "1140.00", report.GrandTotal().StringFixed(2))
}

func TestRenderSalesPDFPageBreaks(t *testing.T) {
	var short, long bytes.Buffer

	require.NoError(t, RenderSalesPDF(&short, SalesReport{Title: "Sales", Sales: sampleSales(1)}))
	require.NoError(t, RenderSalesPDF(&long, SalesReport{Title: "Sales", Sales: sampleSales(100)}))

	assert.Greater(t, bytes.Count(long.Bytes(), []byte("/Type /Page\n")), 1)
}

func TestRenderSalesPDFSplitsTallRow(t *testing.T) {
	sale := models.Sale{ID: 1, SaleDate: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC), SalesPerson: "Lerato"}
	for i := 0; i < 200; i++ {
		sale.Lines = append(sale.Lines, models.SaleLine{ServiceName: fmt.Sprintf("Service %d", i), Quantity: 1, UnitPrice: decimal.NewFromInt(10)})
	}

	var buf bytes.Buffer
	require.NoError(t, RenderSalesPDF(&buf, SalesReport{Title: "Sales", Sales: []models.Sale{sale}, Currency: "R"}))

	// About 48 item lines fit per page, so 200 lines need at least 5 pages
	assert.GreaterOrEqual(t, bytes.Count(buf.Bytes(), []byte("/Type /Page\n")), 5)
}

func TestLinesThatFit(t *testing.T) {
	assert.Equal(t, 1, linesThatFit(lineHeight+2*cellPad))
	assert.Equal(t, 0, linesThatFit(lineHeight))
	assert.Equal(t, 10, linesThatFit(10*lineHeight+2*cellPad+0.5))
}

func TestWindow(t *testing.T) {
	lines := []string{"a", "b", "c"}
	assert.Equal(t, []string{"b", "c"}, window(lines, 1, 5))
	assert.Empty(t, window(lines, 4, 6))
}

func TestRenderSalesPDFEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderSalesPDF(&buf, SalesReport{Title: "Sales (start to today)", Currency: "R"}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "R180.00", FormatMoney("R", decimal.NewFromInt(180)))
	assert.Equal(t, "R0.50", FormatMoney("R", decimal.RequireFromString("0.5")))
}
