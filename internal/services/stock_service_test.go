package services

import (
	"testing"

	"billing-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjustStockBatch(t *testing.T) {
	env := newTestEnv(t)
	p := env.addProduct(t, "Brahmi Oil", "100", "0", "12", 0)
	env.addBatch(t, p.ID, "B1", 10, "2027-01-01")

	entry, err := env.stock.AdjustStock(env.ctx, &models.StockAdjustmentRequest{
		ProductID: p.ID, BatchNumber: "B1", Delta: -3, ChangeType: models.ChangeAdjustment, Reason: "damaged",
	}, 2)
	require.NoError(t, err)
	assert.Equal(t, 10, entry.QuantityBefore)
	assert.Equal(t, 7, entry.QuantityAfter)
	assert.Equal(t, "damaged", entry.Notes)
	assert.Equal(t, 7, env.batchQty(t, p.ID, "B1"))
	assert.Equal(t, 7, env.productStock(t, p.ID))
	assert.Equal(t, []string{EventInventoryUpdated}, env.events.types())

	history := env.history(t, p.ID)
	require.Len(t, history, 1)
	assert.Equal(t, models.ChangeAdjustment, history[0].ChangeType)
	assert.Equal(t, -3, history[0].QuantityChanged)
	assert.Equal(t, 2, history[0].CreatedBy)
}

func TestAdjustStockRefusesNegativeBatch(t *testing.T) {
	env := newTestEnv(t)
	p := env.addProduct(t, "Brahmi Oil", "100", "0", "12", 0)
	env.addBatch(t, p.ID, "B1", 2, "2027-01-01")
	env.addBatch(t, p.ID, "B2", 10, "2027-01-01")

	_, err := env.stock.AdjustStock(env.ctx, &models.StockAdjustmentRequest{
		ProductID: p.ID, BatchNumber: "B1", Delta: -3, ChangeType: models.ChangeAdjustment,
	}, 1)
	require.ErrorIs(t, err, ErrInvalidAdjustment)
	assert.Equal(t, 2, env.batchQty(t, p.ID, "B1"))
	assert.Equal(t, 12, env.productStock(t, p.ID))
	assert.Empty(t, env.history(t, p.ID))
}

func TestAdjustStockRejects(t *testing.T) {
	env := newTestEnv(t)
	plain := env.addProduct(t, "Honey", "100", "0", "0", 5)
	batched := env.addProduct(t, "Ghee", "100", "0", "0", 0)
	env.addBatch(t, batched.ID, "G1", 5, "")

	tests := []struct {
		name string
		req  models.StockAdjustmentRequest
		want error
	}{
		{"zero delta", models.StockAdjustmentRequest{ProductID: plain.ID, Delta: 0, ChangeType: models.ChangeAdjustment}, ErrInvalidAdjustment},
		{"sale type", models.StockAdjustmentRequest{ProductID: plain.ID, Delta: -1, ChangeType: models.ChangeSale}, ErrInvalidAdjustment},
		{"unknown type", models.StockAdjustmentRequest{ProductID: plain.ID, Delta: 1, ChangeType: "GIFT"}, ErrValidation},
		{"below zero", models.StockAdjustmentRequest{ProductID: plain.ID, Delta: -6, ChangeType: models.ChangeAdjustment}, ErrInvalidAdjustment},
		{"batch required", models.StockAdjustmentRequest{ProductID: batched.ID, Delta: 1, ChangeType: models.ChangeAdjustment}, ErrInvalidAdjustment},
		{"unknown product", models.StockAdjustmentRequest{ProductID: 999, Delta: 1, ChangeType: models.ChangeAdjustment}, ErrProductNotFound},
		{"unknown batch", models.StockAdjustmentRequest{ProductID: batched.ID, BatchNumber: "X", Delta: -1, ChangeType: models.ChangeAdjustment}, ErrBatchNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := env.stock.AdjustStock(env.ctx, &req, 1)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Equal(t, 5, env.productStock(t, plain.ID))
	assert.Equal(t, 5, env.productStock(t, batched.ID))
}

func TestAdjustStockProductLevel(t *testing.T) {
	env := newTestEnv(t)
	p := env.addProduct(t, "Honey", "100", "0", "0", 5)

	entry, err := env.stock.AdjustStock(env.ctx, &models.StockAdjustmentRequest{
		ProductID: p.ID, Delta: 4, ChangeType: models.ChangeReturn, Reason: "customer return",
	}, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, entry.QuantityBefore)
	assert.Equal(t, 9, entry.QuantityAfter)
	assert.Equal(t, 9, env.productStock(t, p.ID))
}

func TestAdjustStockPurchaseCreatesBatch(t *testing.T) {
	env := newTestEnv(t)
	p := env.addProduct(t, "Ghee", "100", "0", "0", 0)

	entry, err := env.stock.AdjustStock(env.ctx, &models.StockAdjustmentRequest{
		ProductID: p.ID, BatchNumber: "NEW1", Delta: 12, ChangeType: models.ChangePurchase,
	}, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, entry.QuantityBefore)
	assert.Equal(t, 12, entry.QuantityAfter)
	assert.Equal(t, 12, env.batchQty(t, p.ID, "NEW1"))
	assert.Equal(t, 12, env.productStock(t, p.ID))
}

func TestAddBatch(t *testing.T) {
	env := newTestEnv(t)
	p := env.addProduct(t, "Kumkumadi Serum", "500", "0", "18", 0)

	b, err := env.stock.AddBatch(env.ctx, p.ID, &models.BatchRequest{
		BatchNumber: " KS-01 ", ExpiryDate: "2027-05-31", Quantity: 20, MRP: decPtr("550"),
	}, 1)
	require.NoError(t, err)
	assert.Equal(t, "KS-01", b.BatchNumber)
	require.NotNil(t, b.ExpiryDate)
	assert.Equal(t, "2027-05-31", b.ExpiryDate.Format("2006-01-02"))
	assert.True(t, b.MRP.Valid)
	assert.Equal(t, 20, env.productStock(t, p.ID))

	history := env.history(t, p.ID)
	require.Len(t, history, 1)
	assert.Equal(t, models.ChangePurchase, history[0].ChangeType)
	assert.Equal(t, 20, history[0].QuantityAfter)

	_, err = env.stock.AddBatch(env.ctx, p.ID, &models.BatchRequest{BatchNumber: "KS-01", Quantity: 1}, 1)
	assert.ErrorIs(t, err, ErrDuplicateName)
	_, err = env.stock.AddBatch(env.ctx, p.ID, &models.BatchRequest{BatchNumber: "KS-02", Quantity: 0}, 1)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = env.stock.AddBatch(env.ctx, p.ID, &models.BatchRequest{BatchNumber: "KS-03", Quantity: 1, ExpiryDate: "31/05/2027"}, 1)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = env.stock.AddBatch(env.ctx, 999, &models.BatchRequest{BatchNumber: "KS-04", Quantity: 1}, 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Equal(t, 20, env.productStock(t, p.ID))
}

func TestListExpiringBatches(t *testing.T) {
	env := newTestEnv(t)
	p := env.addProduct(t, "Giloy Tablets", "80", "0", "12", 0)
	env.addBatch(t, p.ID, "EXPIRED", 3, "2025-09-01")
	env.addBatch(t, p.ID, "SOON", 3, "2025-11-30")
	env.addBatch(t, p.ID, "LATER", 3, "2026-06-01")
	env.addBatch(t, p.ID, "UNDATED", 3, "")

	soon, err := env.stock.ListExpiringBatches(env.ctx, 60)
	require.NoError(t, err)
	require.Len(t, soon, 2)
	assert.Equal(t, "EXPIRED", soon[0].BatchNumber)
	assert.Equal(t, "SOON", soon[1].BatchNumber)
	assert.Equal(t, "Giloy Tablets", soon[0].ProductName)

	year, err := env.stock.ListExpiringBatches(env.ctx, 365)
	require.NoError(t, err)
	assert.Len(t, year, 3)
}

func TestListBatchesAndLowStock(t *testing.T) {
	env := newTestEnv(t)
	low := env.addProduct(t, "Honey", "100", "0", "0", 3)
	env.addProduct(t, "Ghee", "100", "0", "0", 50)
	env.addBatch(t, low.ID, "H2", 1, "2027-01-01")
	env.addBatch(t, low.ID, "H1", 1, "2026-01-01")

	batches, err := env.stock.ListBatches(env.ctx, low.ID)
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, "H1", batches[0].BatchNumber)

	_, err = env.stock.ListBatches(env.ctx, 999)
	assert.ErrorIs(t, err, ErrProductNotFound)

	products, err := env.stock.ListLowStock(env.ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Honey", products[0].Name)
}

func TestReturnBillRestoresStockOnce(t *testing.T) {
	env := newTestEnv(t)
	batched := env.addProduct(t, "Mahanarayan Oil", "150", "0", "12", 0)
	env.addBatch(t, batched.ID, "M1", 10, "2027-01-01")
	plain := env.addProduct(t, "Honey", "100", "0", "0", 5)

	bill, err := env.billing.CreateBill(env.ctx, cart(
		models.CartItem{ProductID: batched.ID, BatchNumber: "M1", Quantity: 4},
		models.CartItem{ProductID: plain.ID, Quantity: 2},
	), env.settings, 1)
	require.NoError(t, err)
	require.Equal(t, 6, env.batchQty(t, batched.ID, "M1"))
	require.Equal(t, 3, env.productStock(t, plain.ID))

	ret, err := env.stock.ReturnBill(env.ctx, bill.ID, &models.ReturnBillRequest{Reason: "wrong item"}, 3)
	require.NoError(t, err)
	assert.Equal(t, bill.ID, ret.BillID)
	assert.Equal(t, []string{EventBillCreated, EventInventoryUpdated, EventBillReturned, EventInventoryUpdated}, env.events.types())

	assert.Equal(t, 10, env.batchQty(t, batched.ID, "M1"))
	assert.Equal(t, 10, env.productStock(t, batched.ID))
	assert.Equal(t, 5, env.productStock(t, plain.ID))

	returns, err := env.store.ListStockHistory(env.ctx, models.StockHistoryFilter{BillID: bill.ID, ChangeType: models.ChangeReturn})
	require.NoError(t, err)
	require.Len(t, returns, 2)
	for _, h := range returns {
		if h.BatchNumber == "M1" {
			assert.Equal(t, 6, h.QuantityBefore)
			assert.Equal(t, 10, h.QuantityAfter)
		} else {
			assert.Equal(t, 3, h.QuantityBefore)
			assert.Equal(t, 5, h.QuantityAfter)
		}
		assert.Contains(t, h.Notes, "wrong item")
	}

	_, err = env.stock.ReturnBill(env.ctx, bill.ID, nil, 3)
	require.ErrorIs(t, err, ErrAlreadyReturned)
	assert.Equal(t, 10, env.batchQty(t, batched.ID, "M1"))
	assert.Equal(t, 5, env.productStock(t, plain.ID))

	_, err = env.stock.ReturnBill(env.ctx, 999, nil, 3)
	assert.ErrorIs(t, err, ErrBillNotFound)
}

type stockStep struct {
	name string
	run  func(t *testing.T, env *testEnv, productID int, bills *[]int)
}

func purchaseStep(batch string, qty int) stockStep {
	return stockStep{"purchase " + batch, func(t *testing.T, env *testEnv, productID int, bills *[]int) {
		_, err := env.stock.AdjustStock(env.ctx, &models.StockAdjustmentRequest{
			ProductID: productID, BatchNumber: batch, Delta: qty, ChangeType: models.ChangePurchase,
		}, 1)
		require.NoError(t, err)
	}}
}

func addBatchStep(batch string, qty int) stockStep {
	return stockStep{"add batch " + batch, func(t *testing.T, env *testEnv, productID int, bills *[]int) {
		_, err := env.stock.AddBatch(env.ctx, productID, &models.BatchRequest{
			BatchNumber: batch, ExpiryDate: "2027-01-01", Quantity: qty,
		}, 1)
		require.NoError(t, err)
	}}
}

func writeOffStep(batch string, qty int) stockStep {
	return stockStep{"write off " + batch, func(t *testing.T, env *testEnv, productID int, bills *[]int) {
		_, err := env.stock.AdjustStock(env.ctx, &models.StockAdjustmentRequest{
			ProductID: productID, BatchNumber: batch, Delta: -qty, ChangeType: models.ChangeAdjustment,
		}, 1)
		require.NoError(t, err)
	}}
}

func saleStep(qty int) stockStep {
	return stockStep{"sale", func(t *testing.T, env *testEnv, productID int, bills *[]int) {
		bill, err := env.billing.CreateBill(env.ctx, cart(models.CartItem{ProductID: productID, Quantity: qty}), env.settings, 1)
		require.NoError(t, err)
		*bills = append(*bills, bill.ID)
	}}
}

func returnStep() stockStep {
	return stockStep{"return", func(t *testing.T, env *testEnv, productID int, bills *[]int) {
		require.NotEmpty(t, *bills)
		_, err := env.stock.ReturnBill(env.ctx, (*bills)[len(*bills)-1], nil, 1)
		require.NoError(t, err)
	}}
}

func TestBatchTotalsMatchProductStock(t *testing.T) {
	tests := []struct {
		name        string
		stock       int
		steps       []stockStep
		wantStock   int
		wantOpening int
	}{
		{
			name:  "product purchase then first batch",
			stock: 0,
			steps: []stockStep{
				purchaseStep("", 10), addBatchStep("B1", 5), saleStep(6), returnStep(),
				writeOffStep(models.OpeningBatchNumber, 10),
			},
			wantStock:   5,
			wantOpening: 0,
		},
		{
			name:        "sold before batching then returned",
			stock:       8,
			steps:       []stockStep{saleStep(3), addBatchStep("B1", 4), returnStep()},
			wantStock:   12,
			wantOpening: 8,
		},
		{
			name:        "purchase creates batch on stocked product",
			stock:       6,
			steps:       []stockStep{purchaseStep("NEW", 4), writeOffStep(models.OpeningBatchNumber, 2)},
			wantStock:   8,
			wantOpening: 4,
		},
		{
			name:        "return after batching an empty product",
			stock:       3,
			steps:       []stockStep{saleStep(3), addBatchStep("B1", 5), returnStep()},
			wantStock:   8,
			wantOpening: 3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			p := env.addProduct(t, "Dashmool Syrup", "100", "0", "12", tt.stock)
			var bills []int
			for _, step := range tt.steps {
				step.run(t, env, p.ID, &bills)
				batches, err := env.store.ListBatches(env.ctx, p.ID)
				require.NoError(t, err)
				if len(batches) == 0 {
					continue
				}
				sum := 0
				for _, b := range batches {
					sum += b.Quantity
				}
				require.Equal(t, env.productStock(t, p.ID), sum, "after %s", step.name)
			}
			assert.Equal(t, tt.wantStock, env.productStock(t, p.ID))
			assert.Equal(t, tt.wantOpening, env.batchQty(t, p.ID, models.OpeningBatchNumber))
		})
	}
}

func TestReturnIntoOpeningBatchIsLogged(t *testing.T) {
	env := newTestEnv(t)
	p := env.addProduct(t, "Triphala Churna", "100", "0", "12", 5)

	bill, err := env.billing.CreateBill(env.ctx, cart(models.CartItem{ProductID: p.ID, Quantity: 2}), env.settings, 1)
	require.NoError(t, err)
	assert.Empty(t, bill.Items[0].BatchNumber)

	_, err = env.stock.AddBatch(env.ctx, p.ID, &models.BatchRequest{BatchNumber: "T1", Quantity: 4}, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, env.batchQty(t, p.ID, models.OpeningBatchNumber))

	_, err = env.stock.ReturnBill(env.ctx, bill.ID, nil, 1)
	require.NoError(t, err)

	returns, err := env.store.ListStockHistory(env.ctx, models.StockHistoryFilter{BillID: bill.ID, ChangeType: models.ChangeReturn})
	require.NoError(t, err)
	require.Len(t, returns, 1)
	assert.Equal(t, models.OpeningBatchNumber, returns[0].BatchNumber)
	assert.Equal(t, 3, returns[0].QuantityBefore)
	assert.Equal(t, 5, returns[0].QuantityAfter)
	assert.Equal(t, 9, env.productStock(t, p.ID))
}
