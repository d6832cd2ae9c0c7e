package memory

import (
	"context"
	"errors"
	"testing"

	"billing-backend/internal/models"
	"billing-backend/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSeedsDefaults(t *testing.T) {
	s := New()
	ctx := context.Background()

	sp, err := s.GetSalesPersonByName(ctx, models.CounterSaleName)
	require.NoError(t, err)
	assert.True(t, sp.IsActive)

	settings, err := s.GetCompanySettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "NH", settings.InvoicePrefix)
	assert.Equal(t, "19", settings.StateCode)
}

func TestInTxRollsBackOnError(t *testing.T) {
	s := New()
	ctx := context.Background()

	p := &models.Product{Name: "Brahmi Oil", MRP: decimal.NewFromInt(100), CurrentStock: 5}
	require.NoError(t, s.CreateProduct(ctx, p))

	boom := errors.New("boom")
	err := s.InTx(ctx, func(q repositories.Queries) error {
		require.NoError(t, q.SetProductStock(ctx, p.ID, 1))
		require.NoError(t, q.InsertStockHistory(ctx, &models.StockHistory{ProductID: p.ID, ChangeType: models.ChangeAdjustment}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.CurrentStock)

	history, err := s.ListStockHistory(ctx, models.StockHistoryFilter{ProductID: p.ID})
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestInTxCommits(t *testing.T) {
	s := New()
	ctx := context.Background()

	p := &models.Product{Name: "Chyawanprash", CurrentStock: 5}
	require.NoError(t, s.CreateProduct(ctx, p))

	require.NoError(t, s.InTx(ctx, func(q repositories.Queries) error {
		return q.SetProductStock(ctx, p.ID, 3)
	}))

	got, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.CurrentStock)
}

func TestDuplicates(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.CreateProduct(ctx, &models.Product{Name: "Neem Capsules"}))
	err := s.CreateProduct(ctx, &models.Product{Name: "neem capsules"})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)

	sp, err := s.GetSalesPersonByName(ctx, models.CounterSaleName)
	require.NoError(t, err)
	bill := &models.Bill{InvoiceNumber: "NH/0001/25-26", SalesPersonID: sp.ID}
	require.NoError(t, s.InsertBill(ctx, bill))
	err = s.InsertBill(ctx, &models.Bill{InvoiceNumber: "NH/0001/25-26", SalesPersonID: sp.ID})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)

	require.NoError(t, s.InsertBillReturn(ctx, &models.BillReturn{BillID: bill.ID}))
	err = s.InsertBillReturn(ctx, &models.BillReturn{BillID: bill.ID})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)
}

func TestNextInvoiceSequenceScopesByPrefixAndYear(t *testing.T) {
	s := New()
	ctx := context.Background()
	sp, err := s.GetSalesPersonByName(ctx, models.CounterSaleName)
	require.NoError(t, err)

	for _, n := range []string{"NH/0007/25-26", "NH/0003/25-26", "NH/0040/24-25", "XX/0099/25-26"} {
		require.NoError(t, s.InsertBill(ctx, &models.Bill{InvoiceNumber: n, SalesPersonID: sp.ID}))
	}

	next, err := s.NextInvoiceSequence(ctx, "NH", "25-26")
	require.NoError(t, err)
	assert.Equal(t, 8, next)

	next, err = s.NextInvoiceSequence(ctx, "NH", "26-27")
	require.NoError(t, err)
	assert.Equal(t, 1, next)
}

func TestListBatchesOrdersByExpiry(t *testing.T) {
	s := New()
	ctx := context.Background()
	p := &models.Product{Name: "Ashwagandha"}
	require.NoError(t, s.CreateProduct(ctx, p))

	late := mustDate(t, "2027-01-01")
	early := mustDate(t, "2026-06-01")
	require.NoError(t, s.CreateBatch(ctx, &models.ProductBatch{ProductID: p.ID, BatchNumber: "NODATE"}))
	require.NoError(t, s.CreateBatch(ctx, &models.ProductBatch{ProductID: p.ID, BatchNumber: "LATE", ExpiryDate: &late}))
	require.NoError(t, s.CreateBatch(ctx, &models.ProductBatch{ProductID: p.ID, BatchNumber: "EARLY", ExpiryDate: &early}))

	batches, err := s.ListBatches(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, batches, 3)
	assert.Equal(t, "EARLY", batches[0].BatchNumber)
	assert.Equal(t, "LATE", batches[1].BatchNumber)
	assert.Equal(t, "NODATE", batches[2].BatchNumber)
}
