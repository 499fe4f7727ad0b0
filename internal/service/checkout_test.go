package service

import (
	"context"
	"testing"

	"github.com/rongwang/nailpos-server/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSale(t *testing.T) {
	svc, repo, clk := newTestService(t)
	ctx := context.Background()
	manicure := serviceIDByName(t, repo, "Manicure")
	pedicure := serviceIDByName(t, repo, "Pedicure")

	resp, err := svc.CreateSale(ctx, models.CheckoutRequest{
		SalesPerson: "  Lerato ",
		Lines: []models.CheckoutLine{
			{ServiceID: ptr(manicure), Quantity: 2},
			{ServiceID: ptr(int64(999)), Quantity: 1},
			{ServiceID: ptr(pedicure), Quantity: 0},
			{Quantity: 4},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Sale #1 recorded.", resp.Message)
	assert.Equal(t, "Lerato", resp.Sale.SalesPerson)
	assert.True(t, clk.t.Equal(resp.Sale.SaleDate))
	require.Len(t, resp.Sale.Lines, 2)
	assert.Equal(t, "180.00", resp.Sale.Lines[0].UnitPrice.StringFixed(2))
	assert.True(t, resp.Sale.Lines[1].UnitPrice.IsZero())
	assert.Equal(t, "360.00", resp.Sale.GrandTotal.StringFixed(2))
}

func TestCreateSaleValidation(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateSale(ctx, models.CheckoutRequest{SalesPerson: "Lerato"})
	require.ErrorIs(t, err, ErrValidation)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"add at least one service line"}, verr.Problems)

	_, err = svc.CreateSale(ctx, models.CheckoutRequest{
		SalesPerson: " ",
		Lines:       []models.CheckoutLine{{ServiceID: ptr(serviceIDByName(t, repo, "Manicure")), Quantity: 1}},
	})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"sales person is required"}, verr.Problems)

	sales, total, err := repo.FindSales(ctx, models.SaleQuery{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, sales)
}

func TestGetAndDeleteSale(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateSale(ctx, models.CheckoutRequest{
		SalesPerson: "Lerato",
		Lines:       []models.CheckoutLine{{ServiceID: ptr(serviceIDByName(t, repo, "Pedicure")), Quantity: 1}},
	})
	require.NoError(t, err)

	sale, err := svc.GetSale(ctx, created.SaleID)
	require.NoError(t, err)
	assert.Equal(t, "Pedicure", sale.Lines[0].ServiceName)

	require.NoError(t, svc.DeleteSale(ctx, created.SaleID))

	_, err = svc.GetSale(ctx, created.SaleID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.DeleteSale(ctx, created.SaleID), ErrNotFound)
}
