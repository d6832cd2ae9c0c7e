package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"billing-backend/internal/config"
	"billing-backend/internal/models"
	"billing-backend/internal/repositories"
	"billing-backend/internal/repositories/memory"
	"billing-backend/internal/timeutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 15 Oct 2025 falls in fiscal year 25-26.
var testNow = time.Date(2025, 10, 15, 10, 30, 0, 0, timeutil.IST)

func testBillingConfig() config.BillingConfig {
	return config.BillingConfig{
		InvoicePrefix:          "NH",
		SequenceWidth:          4,
		FiscalYearStartMonth:   4,
		MaxInvoiceRetries:      5,
		DefaultGSTRate:         "12",
		DefaultHSNCode:         "30049012",
		DefaultDiscountPercent: "0",
		LowStockThreshold:      10,
		ExpiryWarningDays:      90,
		CompanyStateCode:       "19",
		CompanyStateName:       "West Bengal",
	}
}

type eventRecorder struct {
	mu     sync.Mutex
	events []string
}

func (r *eventRecorder) Publish(eventType string, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, eventType)
}

func (r *eventRecorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

type testEnv struct {
	ctx      context.Context
	store    repositories.Store
	billing  *BillingService
	stock    *StockService
	events   *eventRecorder
	settings *models.CompanySettings
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithStore(t, memory.New())
}

func newTestEnvWithStore(t *testing.T, store repositories.Store) *testEnv {
	t.Helper()
	events := &eventRecorder{}
	cfg := testBillingConfig()

	billing := NewBillingService(store, cfg, events)
	billing.Now = func() time.Time { return testNow }
	stock := NewStockService(store, cfg, events)
	stock.Now = func() time.Time { return testNow }

	settings, err := NewSettingsService(store, cfg).Load(context.Background())
	require.NoError(t, err)

	return &testEnv{
		ctx:      context.Background(),
		store:    store,
		billing:  billing,
		stock:    stock,
		events:   events,
		settings: settings,
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func assertMoney(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Equal(t, dec(want).StringFixed(2), got.StringFixed(2), msgAndArgs...)
}

func (e *testEnv) addProduct(t *testing.T, name, mrp, discount, gstRate string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:            name,
		HSNCode:         "30049012",
		Unit:            "Nos",
		MRP:             dec(mrp),
		DiscountPercent: dec(discount),
		GSTRate:         dec(gstRate),
		CurrentStock:    stock,
		MinStockLevel:   10,
	}
	require.NoError(t, e.store.CreateProduct(e.ctx, p))
	return p
}

// addBatch stores a batch and raises the product total to match.
func (e *testEnv) addBatch(t *testing.T, productID int, number string, qty int, expiry string) *models.ProductBatch {
	t.Helper()
	b := &models.ProductBatch{ProductID: productID, BatchNumber: number, Quantity: qty}
	if expiry != "" {
		d, err := timeutil.ParseInIST(timeutil.DateLayout, expiry)
		require.NoError(t, err)
		b.ExpiryDate = &d
	}
	require.NoError(t, e.store.CreateBatch(e.ctx, b))
	p, err := e.store.GetProduct(e.ctx, productID)
	require.NoError(t, err)
	require.NoError(t, e.store.SetProductStock(e.ctx, productID, p.CurrentStock+qty))
	return b
}

func (e *testEnv) productStock(t *testing.T, id int) int {
	t.Helper()
	p, err := e.store.GetProduct(e.ctx, id)
	require.NoError(t, err)
	return p.CurrentStock
}

func (e *testEnv) batchQty(t *testing.T, productID int, number string) int {
	t.Helper()
	b, err := e.store.GetBatch(e.ctx, productID, number)
	require.NoError(t, err)
	return b.Quantity
}

func (e *testEnv) history(t *testing.T, productID int) []*models.StockHistory {
	t.Helper()
	h, err := e.store.ListStockHistory(e.ctx, models.StockHistoryFilter{ProductID: productID})
	require.NoError(t, err)
	return h
}

func (e *testEnv) bills(t *testing.T) []*models.Bill {
	t.Helper()
	b, err := e.store.ListBills(e.ctx, models.BillFilter{})
	require.NoError(t, err)
	return b
}

func cart(items ...models.CartItem) *models.CreateBillRequest {
	return &models.CreateBillRequest{Items: items, IsGSTBill: true, PaymentMode: "Cash"}
}

// wrappedStore lets a test replace individual queries inside transactions.
type wrappedStore struct {
	*memory.Store
	wrap func(q repositories.Queries) repositories.Queries
}

func (s *wrappedStore) InTx(ctx context.Context, fn func(q repositories.Queries) error) error {
	return s.Store.InTx(ctx, func(q repositories.Queries) error {
		return fn(s.wrap(q))
	})
}

// fixedSequence always proposes the same invoice sequence number.
type fixedSequence struct {
	repositories.Queries
	seq int
}

func (q fixedSequence) NextInvoiceSequence(ctx context.Context, prefix, fy string) (int, error) {
	return q.seq, nil
}

// failingHistory breaks the last write of a sale.
type failingHistory struct {
	repositories.Queries
	err error
}

func (q failingHistory) InsertStockHistory(ctx context.Context, h *models.StockHistory) error {
	return q.err
}
