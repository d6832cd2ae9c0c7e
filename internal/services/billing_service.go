package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"billing-backend/internal/config"
	"billing-backend/internal/gst"
	"billing-backend/internal/invoice"
	"billing-backend/internal/metrics"
	"billing-backend/internal/models"
	"billing-backend/internal/repositories"
	"billing-backend/internal/timeutil"

	"github.com/shopspring/decimal"
)

// EventPublisher is told about committed changes so connected screens can
// refresh. Publish must not block.
type EventPublisher interface {
	Publish(eventType string, data any)
}

const (
	EventBillCreated      = "bill_created"
	EventBillReturned     = "bill_returned"
	EventInventoryUpdated = "inventory_updated"
)

type BillingService struct {
	Store        repositories.Store
	Events       EventPublisher
	Now          func() time.Time
	prefix       string
	stateCode    string
	width        int
	fyStartMonth int
	maxRetries   int
}

func NewBillingService(store repositories.Store, cfg config.BillingConfig, events EventPublisher) *BillingService {
	s := &BillingService{
		Store:        store,
		Events:       events,
		Now:          timeutil.Now,
		prefix:       cfg.InvoicePrefix,
		stateCode:    cfg.CompanyStateCode,
		width:        cfg.SequenceWidth,
		fyStartMonth: cfg.FiscalYearStartMonth,
		maxRetries:   cfg.MaxInvoiceRetries,
	}
	if s.width <= 0 {
		s.width = 4
	}
	if s.maxRetries <= 0 {
		s.maxRetries = 5
	}
	return s
}

// cartLine is a cart entry after duplicates were merged.
type cartLine struct {
	ProductID   int
	BatchNumber string
	Quantity    int
	Discount    *decimal.Decimal
}

// allocation is the stock a cart line draws from: one batch, or the
// product's own stock when it carries no batches.
type allocation struct {
	product  *models.Product
	batch    *models.ProductBatch
	qty      int
	mrp      decimal.Decimal
	discount decimal.Decimal
}

type draft struct {
	bill   *models.Bill
	allocs []allocation
}

// CreateBill turns a cart into a committed bill. Validation failures return
// before anything is written; a failure after that rolls the whole bill
// back, including stock and history rows. Nil settings fall back to the
// configured invoice prefix and state code.
func (s *BillingService) CreateBill(ctx context.Context, req *models.CreateBillRequest, settings *models.CompanySettings, userID int) (*models.Bill, error) {
	settings = s.settingsOrDefault(settings)
	lines, err := s.prepareCart(req)
	if err != nil {
		s.recordFailure(err)
		return nil, err
	}

	var bill *models.Bill
	err = s.Store.InTx(ctx, func(q repositories.Queries) error {
		d, err := s.buildDraft(ctx, q, req, lines, settings, true)
		if err != nil {
			return err
		}
		d.bill.CreatedBy = userID
		if err := s.assignInvoiceNumber(ctx, q, d.bill, settings); err != nil {
			return err
		}
		if err := s.commitLines(ctx, q, d, userID); err != nil {
			return err
		}
		bill = d.bill
		return nil
	})
	if err != nil {
		err = asStorageFailure("create bill", err)
		s.recordFailure(err)
		return nil, err
	}

	gstLabel := "false"
	if bill.IsGSTBill {
		gstLabel = "true"
	}
	metrics.BillsCreated.WithLabelValues(gstLabel).Inc()
	metrics.BillGrandTotal.Add(bill.GrandTotal.InexactFloat64())
	metrics.StockMovements.WithLabelValues(models.ChangeSale).Add(float64(len(bill.Items)))
	log.Printf("[Billing] Created %s for %s: %d item(s), grand total %s",
		bill.InvoiceNumber, bill.CustomerName, len(bill.Items), bill.GrandTotal.StringFixed(2))

	s.publish(EventBillCreated, map[string]any{
		"id":             bill.ID,
		"invoice_number": bill.InvoiceNumber,
		"grand_total":    bill.GrandTotal,
	})
	s.publish(EventInventoryUpdated, map[string]any{"product_ids": productIDs(bill.Items)})
	return bill, nil
}

// PreviewBill prices a cart exactly like CreateBill would, without taking
// locks, allocating an invoice number or writing anything.
func (s *BillingService) PreviewBill(ctx context.Context, req *models.CreateBillRequest, settings *models.CompanySettings) (*models.Bill, error) {
	settings = s.settingsOrDefault(settings)
	lines, err := s.prepareCart(req)
	if err != nil {
		return nil, err
	}
	d, err := s.buildDraft(ctx, s.Store, req, lines, settings, false)
	if err != nil {
		return nil, asStorageFailure("preview bill", err)
	}
	return d.bill, nil
}

func (s *BillingService) GetBill(ctx context.Context, id int) (*models.Bill, error) {
	bill, err := s.Store.GetBill(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w: id %d", ErrBillNotFound, id)
	}
	return bill, err
}

func (s *BillingService) GetBillByInvoiceNumber(ctx context.Context, number string) (*models.Bill, error) {
	bill, err := s.Store.GetBillByInvoiceNumber(ctx, number)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrBillNotFound, number)
	}
	return bill, err
}

func (s *BillingService) ListBills(ctx context.Context, f models.BillFilter) ([]*models.Bill, error) {
	return s.Store.ListBills(ctx, f)
}

// prepareCart validates the request shape and merges repeated
// product/batch entries into one line. Repeated entries must agree on the
// discount.
func (s *BillingService) prepareCart(req *models.CreateBillRequest) ([]cartLine, error) {
	if req == nil || len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if !gst.ValidPercent(req.BillDiscountPercent) {
		return nil, fmt.Errorf("bill discount %s: %w", req.BillDiscountPercent, ErrInvalidDiscount)
	}
	if req.PaymentMode == "" {
		req.PaymentMode = models.PaymentModes[0]
	}
	if !contains(models.PaymentModes, req.PaymentMode) {
		return nil, invalid("payment_mode", "oneof")
	}

	type key struct {
		productID int
		batch     string
	}
	index := map[key]int{}
	var lines []cartLine
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("line %d: %w", i+1, ErrInvalidQuantity)
		}
		if item.DiscountPercent != nil && !gst.ValidPercent(*item.DiscountPercent) {
			return nil, fmt.Errorf("line %d discount %s: %w", i+1, item.DiscountPercent, ErrInvalidDiscount)
		}
		k := key{item.ProductID, strings.TrimSpace(item.BatchNumber)}
		if at, ok := index[k]; ok {
			if !sameDiscount(lines[at].Discount, item.DiscountPercent) {
				return nil, fmt.Errorf("line %d repeats product %d at a different discount: %w", i+1, item.ProductID, ErrInvalidDiscount)
			}
			lines[at].Quantity += item.Quantity
			continue
		}
		index[k] = len(lines)
		lines = append(lines, cartLine{
			ProductID:   item.ProductID,
			BatchNumber: k.batch,
			Quantity:    item.Quantity,
			Discount:    item.DiscountPercent,
		})
	}
	return lines, nil
}

func (s *BillingService) buildDraft(ctx context.Context, q repositories.Queries, req *models.CreateBillRequest, lines []cartLine, settings *models.CompanySettings, lock bool) (*draft, error) {
	now := s.Now()
	bill := &models.Bill{
		IsGSTBill:       req.IsGSTBill,
		PaymentMode:     req.PaymentMode,
		Notes:           strings.TrimSpace(req.Notes),
		DiscountPercent: req.BillDiscountPercent,
		CreatedAt:       now,
	}
	if err := applyCustomer(ctx, q, req, bill); err != nil {
		return nil, err
	}
	if err := applySalesPerson(ctx, q, req.SalesPersonID, bill); err != nil {
		return nil, err
	}

	ledger := newStockLedger(q, lock)

	// Lock in id order so two carts with the same products cannot deadlock.
	ids := make([]int, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if _, err := ledger.product(ctx, id); err != nil {
			return nil, err
		}
	}

	today := timeutil.StartOfDay(now)
	var allocs []allocation
	for _, l := range lines {
		a, err := ledger.allocate(ctx, l, today)
		if err != nil {
			return nil, err
		}
		allocs = append(allocs, a)
	}

	priced := make([]gst.Line, len(allocs))
	for i, a := range allocs {
		priced[i] = gst.Line{MRP: a.mrp, DiscountPercent: a.discount, GSTRate: a.product.GSTRate, Quantity: a.qty}
	}
	bill.IsInterState = bill.IsGSTBill && gst.IsInterState(bill.CustomerStateCode, settings.StateCode)
	totals := gst.Calculate(priced, gst.Options{
		BillDiscountPercent: req.BillDiscountPercent,
		GSTBill:             bill.IsGSTBill,
		InterState:          bill.IsInterState,
	})

	bill.Subtotal = totals.Subtotal
	bill.DiscountAmount = totals.DiscountAmount
	bill.TaxableAmount = totals.TaxableAmount
	bill.CGSTAmount = totals.CGST
	bill.SGSTAmount = totals.SGST
	bill.IGSTAmount = totals.IGST
	bill.TotalTax = totals.TotalTax
	bill.RoundOff = totals.RoundOff
	bill.GrandTotal = totals.GrandTotal
	bill.TotalMRP = totals.TotalMRP
	bill.TotalSavings = totals.TotalSavings

	bill.Items = make([]models.BillItem, len(allocs))
	for i, a := range allocs {
		item := models.BillItem{
			ProductID:       a.product.ID,
			ProductName:     a.product.Name,
			HSNCode:         a.product.HSNCode,
			Unit:            a.product.Unit,
			Quantity:        a.qty,
			MRP:             a.mrp,
			DiscountPercent: a.discount,
			Rate:            totals.Lines[i].Rate,
			Amount:          totals.Lines[i].Amount,
			GSTRate:         a.product.GSTRate,
			TaxAmount:       totals.Lines[i].TaxAmount,
		}
		if !bill.IsGSTBill {
			item.GSTRate = decimal.Zero
		}
		if a.batch != nil {
			item.BatchNumber = a.batch.BatchNumber
			item.ExpiryDate = a.batch.ExpiryDate
		}
		bill.Items[i] = item
	}
	return &draft{bill: bill, allocs: allocs}, nil
}

func applyCustomer(ctx context.Context, q repositories.Queries, req *models.CreateBillRequest, bill *models.Bill) error {
	switch {
	case req.CustomerID != nil:
		c, err := q.GetCustomer(ctx, *req.CustomerID)
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: id %d", ErrCustomerNotFound, *req.CustomerID)
		}
		if err != nil {
			return storageErr("load customer", err)
		}
		bill.CustomerID = &c.ID
		bill.CustomerName = c.Name
		bill.CustomerPhone = c.Phone
		bill.CustomerAddress = c.Address
		bill.CustomerCity = c.City
		bill.CustomerState = c.State
		bill.CustomerStateCode = c.StateCode
		bill.CustomerPinCode = c.PinCode
		bill.CustomerGSTIN = c.GSTIN
	case req.Customer != nil:
		c := req.Customer
		bill.CustomerName = strings.TrimSpace(c.Name)
		bill.CustomerPhone = strings.TrimSpace(c.Phone)
		bill.CustomerAddress = strings.TrimSpace(c.Address)
		bill.CustomerCity = strings.TrimSpace(c.City)
		bill.CustomerState = strings.TrimSpace(c.State)
		bill.CustomerStateCode = strings.TrimSpace(c.StateCode)
		bill.CustomerPinCode = strings.TrimSpace(c.PinCode)
		bill.CustomerGSTIN = strings.ToUpper(strings.TrimSpace(c.GSTIN))
	}
	if bill.CustomerName == "" {
		bill.CustomerName = models.WalkInCustomerName
	}
	if bill.CustomerStateCode == "" {
		bill.CustomerStateCode = gst.StateCodeFromGSTIN(bill.CustomerGSTIN)
	}
	return nil
}

func applySalesPerson(ctx context.Context, q repositories.Queries, id *int, bill *models.Bill) error {
	var (
		sp  *models.SalesPerson
		err error
	)
	if id == nil {
		sp, err = q.GetSalesPersonByName(ctx, models.CounterSaleName)
	} else {
		sp, err = q.GetSalesPerson(ctx, *id)
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrSalesPersonNotFound
	}
	if err != nil {
		return storageErr("load sales person", err)
	}
	if !sp.IsActive {
		return invalid("sales_person_id", "inactive")
	}
	bill.SalesPersonID = sp.ID
	bill.SalesPersonName = sp.Name
	return nil
}

// assignInvoiceNumber inserts the bill under the next free number, moving
// on to the following sequence value whenever the number is already taken.
func (s *BillingService) assignInvoiceNumber(ctx context.Context, q repositories.Queries, bill *models.Bill, settings *models.CompanySettings) error {
	prefix := settings.InvoicePrefix
	if prefix == "" {
		prefix = s.prefix
	}
	if !invoice.ValidPrefix(prefix) {
		return invalid("invoice_prefix", "format")
	}
	fy := invoice.FiscalYear(bill.CreatedAt, s.fyStartMonth)

	seq, err := q.NextInvoiceSequence(ctx, prefix, fy)
	if err != nil {
		return storageErr("next invoice number", err)
	}

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		bill.InvoiceNumber = invoice.Format(prefix, seq+attempt, s.width, fy)
		err := q.InsertBill(ctx, bill)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repositories.ErrDuplicate) {
			return storageErr("insert bill", err)
		}
		metrics.InvoiceNumberCollisions.Inc()
		log.Printf("[Billing] Invoice number %s already taken, retrying", bill.InvoiceNumber)
	}
	bill.InvoiceNumber = ""
	return fmt.Errorf("%w after %d attempts", ErrDuplicateInvoiceNumber, s.maxRetries)
}

// commitLines writes the items, the stock decrements and one SALE history
// row per item. Batch lines record batch quantities in the history row.
func (s *BillingService) commitLines(ctx context.Context, q repositories.Queries, d *draft, userID int) error {
	productStock := map[int]int{}
	batchStock := map[int]int{}
	billID := d.bill.ID

	for i, a := range d.allocs {
		item := &d.bill.Items[i]
		item.BillID = billID
		if err := q.InsertBillItem(ctx, item); err != nil {
			return storageErr("insert bill item", err)
		}

		before, ok := productStock[a.product.ID]
		if !ok {
			before = a.product.CurrentStock
		}
		after := before - a.qty
		if err := q.SetProductStock(ctx, a.product.ID, after); err != nil {
			return storageErr("update product stock", err)
		}
		productStock[a.product.ID] = after

		entry := &models.StockHistory{
			ProductID:       a.product.ID,
			ChangeType:      models.ChangeSale,
			QuantityBefore:  before,
			QuantityAfter:   after,
			QuantityChanged: -a.qty,
			BillID:          &billID,
			Notes:           "Sale " + d.bill.InvoiceNumber,
			CreatedBy:       userID,
		}

		if a.batch != nil {
			bBefore, ok := batchStock[a.batch.ID]
			if !ok {
				bBefore = a.batch.Quantity
			}
			bAfter := bBefore - a.qty
			if err := q.SetBatchQuantity(ctx, a.batch.ID, bAfter); err != nil {
				return storageErr("update batch quantity", err)
			}
			batchStock[a.batch.ID] = bAfter
			entry.BatchNumber = a.batch.BatchNumber
			entry.QuantityBefore = bBefore
			entry.QuantityAfter = bAfter
		}

		if err := q.InsertStockHistory(ctx, entry); err != nil {
			return storageErr("insert stock history", err)
		}
	}
	return nil
}

func (s *BillingService) settingsOrDefault(settings *models.CompanySettings) *models.CompanySettings {
	if settings != nil {
		return settings
	}
	return &models.CompanySettings{InvoicePrefix: s.prefix, StateCode: s.stateCode}
}

func (s *BillingService) publish(eventType string, data any) {
	if s.Events != nil {
		s.Events.Publish(eventType, data)
	}
}

func (s *BillingService) recordFailure(err error) {
	metrics.BillFailures.WithLabelValues(FailureReason(err)).Inc()
}

func productIDs(items []models.BillItem) []int {
	seen := map[int]bool{}
	var ids []int
	for _, it := range items {
		if !seen[it.ProductID] {
			seen[it.ProductID] = true
			ids = append(ids, it.ProductID)
		}
	}
	return ids
}

// sameDiscount treats an omitted discount as distinct from any given one.
func sameDiscount(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
