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
	"billing-backend/internal/metrics"
	"billing-backend/internal/models"
	"billing-backend/internal/repositories"
	"billing-backend/internal/timeutil"

	"github.com/shopspring/decimal"
)

// StockService handles every stock movement that is not a sale.
type StockService struct {
	Store          repositories.Store
	Events         EventPublisher
	Now            func() time.Time
	expiryWarnDays int
}

func NewStockService(store repositories.Store, cfg config.BillingConfig, events EventPublisher) *StockService {
	days := cfg.ExpiryWarningDays
	if days <= 0 {
		days = 90
	}
	return &StockService{Store: store, Events: events, Now: timeutil.Now, expiryWarnDays: days}
}

// AdjustStock applies a signed quantity change to a product, or to one of
// its batches and the product total together. Batch-tracked products must
// name the batch. A PURCHASE naming an unknown batch creates it.
func (s *StockService) AdjustStock(ctx context.Context, req *models.StockAdjustmentRequest, userID int) (*models.StockHistory, error) {
	if req.ChangeType == models.ChangeSale {
		return nil, fmt.Errorf("%w: sales are recorded by billing", ErrInvalidAdjustment)
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if req.Delta == 0 {
		return nil, fmt.Errorf("%w: quantity change is zero", ErrInvalidAdjustment)
	}
	batchNumber := strings.TrimSpace(req.BatchNumber)

	var entry *models.StockHistory
	err := s.Store.InTx(ctx, func(q repositories.Queries) error {
		p, err := q.LockProduct(ctx, req.ProductID)
		if errors.Is(err, repositories.ErrNotFound) {
			return &LookupError{Err: ErrProductNotFound, ProductID: req.ProductID}
		}
		if err != nil {
			return storageErr("load product", err)
		}

		entry = &models.StockHistory{
			ProductID:       p.ID,
			ProductName:     p.Name,
			BatchNumber:     batchNumber,
			ChangeType:      req.ChangeType,
			QuantityChanged: req.Delta,
			Notes:           strings.TrimSpace(req.Reason),
			CreatedBy:       userID,
		}

		newStock := p.CurrentStock + req.Delta
		if newStock < 0 {
			return fmt.Errorf("%w: %s has %d in stock, cannot remove %d",
				ErrInvalidAdjustment, p.Name, p.CurrentStock, -req.Delta)
		}

		if batchNumber == "" {
			batches, err := q.ListBatches(ctx, p.ID)
			if err != nil {
				return storageErr("load batches", err)
			}
			if len(batches) > 0 {
				return fmt.Errorf("%w: %s is tracked by batch, name the batch", ErrInvalidAdjustment, p.Name)
			}
			entry.QuantityBefore, entry.QuantityAfter = p.CurrentStock, newStock
		} else {
			b, err := q.LockBatch(ctx, p.ID, batchNumber)
			switch {
			case errors.Is(err, repositories.ErrNotFound) && req.ChangeType == models.ChangePurchase && req.Delta > 0:
				if err := openBatchTracking(ctx, q, p); err != nil {
					return err
				}
				b = &models.ProductBatch{ProductID: p.ID, BatchNumber: batchNumber}
				if err := q.CreateBatch(ctx, b); err != nil {
					if errors.Is(err, repositories.ErrDuplicate) {
						return &ValidationError{Err: ErrDuplicateName, Details: map[string]string{"batch_number": "exists"}}
					}
					return storageErr("create batch", err)
				}
			case errors.Is(err, repositories.ErrNotFound):
				return &LookupError{Err: ErrBatchNotFound, ProductID: p.ID, BatchNumber: batchNumber}
			case err != nil:
				return storageErr("load batch", err)
			}
			newQty := b.Quantity + req.Delta
			if newQty < 0 {
				return fmt.Errorf("%w: batch %s of %s has %d, cannot remove %d",
					ErrInvalidAdjustment, batchNumber, p.Name, b.Quantity, -req.Delta)
			}
			if err := q.SetBatchQuantity(ctx, b.ID, newQty); err != nil {
				return storageErr("update batch quantity", err)
			}
			entry.QuantityBefore, entry.QuantityAfter = b.Quantity, newQty
		}

		if err := q.SetProductStock(ctx, p.ID, newStock); err != nil {
			return storageErr("update product stock", err)
		}
		if err := q.InsertStockHistory(ctx, entry); err != nil {
			return storageErr("insert stock history", err)
		}
		return nil
	})
	if err != nil {
		return nil, asStorageFailure("adjust stock", err)
	}

	metrics.StockMovements.WithLabelValues(entry.ChangeType).Inc()
	log.Printf("[Stock] %s %+d on %s (batch %q): %d -> %d",
		entry.ChangeType, entry.QuantityChanged, entry.ProductName, entry.BatchNumber, entry.QuantityBefore, entry.QuantityAfter)
	s.publish(EventInventoryUpdated, map[string]any{"product_ids": []int{entry.ProductID}})
	return entry, nil
}

// AddBatch records a purchased lot. The product total goes up by the same
// quantity and a PURCHASE row is logged.
func (s *StockService) AddBatch(ctx context.Context, productID int, req *models.BatchRequest, userID int) (*models.ProductBatch, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if req.MRP != nil && req.MRP.IsNegative() {
		return nil, invalid("mrp", "gte")
	}
	expiry, err := timeutil.ParseOptionalDate(req.ExpiryDate)
	if err != nil {
		return nil, invalid("expiry_date", "datetime")
	}
	purchased, err := timeutil.ParseOptionalDate(req.PurchaseDate)
	if err != nil {
		return nil, invalid("purchase_date", "datetime")
	}

	batch := &models.ProductBatch{
		ProductID:    productID,
		BatchNumber:  strings.TrimSpace(req.BatchNumber),
		ExpiryDate:   expiry,
		Quantity:     req.Quantity,
		PurchaseDate: purchased,
	}
	if req.MRP != nil {
		batch.MRP = decimal.NewNullDecimal(*req.MRP)
	}

	err = s.Store.InTx(ctx, func(q repositories.Queries) error {
		p, err := q.LockProduct(ctx, productID)
		if errors.Is(err, repositories.ErrNotFound) {
			return &LookupError{Err: ErrProductNotFound, ProductID: productID}
		}
		if err != nil {
			return storageErr("load product", err)
		}
		if err := openBatchTracking(ctx, q, p); err != nil {
			return err
		}
		if err := q.CreateBatch(ctx, batch); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return &ValidationError{Err: ErrDuplicateName, Details: map[string]string{"batch_number": "exists"}}
			}
			return storageErr("create batch", err)
		}
		if err := q.SetProductStock(ctx, p.ID, p.CurrentStock+batch.Quantity); err != nil {
			return storageErr("update product stock", err)
		}
		notes := strings.TrimSpace(req.Notes)
		if notes == "" {
			notes = "Batch " + batch.BatchNumber + " received"
		}
		return q.InsertStockHistory(ctx, &models.StockHistory{
			ProductID:       p.ID,
			BatchNumber:     batch.BatchNumber,
			ChangeType:      models.ChangePurchase,
			QuantityBefore:  0,
			QuantityAfter:   batch.Quantity,
			QuantityChanged: batch.Quantity,
			Notes:           notes,
			CreatedBy:       userID,
		})
	})
	if err != nil {
		return nil, asStorageFailure("add batch", err)
	}

	metrics.StockMovements.WithLabelValues(models.ChangePurchase).Inc()
	log.Printf("[Stock] Batch %s added to product %d: %d units", batch.BatchNumber, productID, batch.Quantity)
	s.publish(EventInventoryUpdated, map[string]any{"product_ids": []int{productID}})
	return batch, nil
}

func (s *StockService) ListBatches(ctx context.Context, productID int) ([]*models.ProductBatch, error) {
	if _, err := s.Store.GetProduct(ctx, productID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, &LookupError{Err: ErrProductNotFound, ProductID: productID}
		}
		return nil, err
	}
	return s.Store.ListBatches(ctx, productID)
}

// ListExpiringBatches returns stocked batches expiring within the given
// number of days, including ones already expired. days <= 0 uses the
// configured warning window.
func (s *StockService) ListExpiringBatches(ctx context.Context, days int) ([]*models.ExpiringBatch, error) {
	if days <= 0 {
		days = s.expiryWarnDays
	}
	before := timeutil.StartOfDay(s.Now()).AddDate(0, 0, days)
	return s.Store.ListExpiringBatches(ctx, before)
}

func (s *StockService) ListLowStock(ctx context.Context) ([]*models.Product, error) {
	return s.Store.ListLowStockProducts(ctx)
}

func (s *StockService) ListStockHistory(ctx context.Context, f models.StockHistoryFilter) ([]*models.StockHistory, error) {
	return s.Store.ListStockHistory(ctx, f)
}

// ReturnBill puts every item of a bill back into stock, logging a RETURN
// row per item. A bill can be returned once; later calls fail with
// ErrAlreadyReturned and change nothing.
func (s *StockService) ReturnBill(ctx context.Context, billID int, req *models.ReturnBillRequest, userID int) (*models.BillReturn, error) {
	if req == nil {
		req = &models.ReturnBillRequest{}
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	ret := &models.BillReturn{BillID: billID, Reason: strings.TrimSpace(req.Reason), CreatedBy: userID}
	var bill *models.Bill
	err := s.Store.InTx(ctx, func(q repositories.Queries) error {
		var err error
		bill, err = q.GetBill(ctx, billID)
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: id %d", ErrBillNotFound, billID)
		}
		if err != nil {
			return storageErr("load bill", err)
		}
		if err := q.InsertBillReturn(ctx, ret); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return fmt.Errorf("%w: %s", ErrAlreadyReturned, bill.InvoiceNumber)
			}
			return storageErr("insert bill return", err)
		}

		ids := productIDs(bill.Items)
		sort.Ints(ids)
		stock := map[int]int{}
		for _, id := range ids {
			p, err := q.LockProduct(ctx, id)
			if err != nil {
				return storageErr("load product", err)
			}
			stock[id] = p.CurrentStock
		}

		for _, item := range bill.Items {
			entry := &models.StockHistory{
				ProductID:       item.ProductID,
				BatchNumber:     item.BatchNumber,
				ChangeType:      models.ChangeReturn,
				QuantityChanged: item.Quantity,
				BillID:          &bill.ID,
				Notes:           "Return of " + bill.InvoiceNumber,
				CreatedBy:       userID,
			}
			if ret.Reason != "" {
				entry.Notes += ": " + ret.Reason
			}

			before := stock[item.ProductID]
			stock[item.ProductID] = before + item.Quantity
			if err := q.SetProductStock(ctx, item.ProductID, before+item.Quantity); err != nil {
				return storageErr("update product stock", err)
			}
			entry.QuantityBefore, entry.QuantityAfter = before, before+item.Quantity

			batchNumber := item.BatchNumber
			if batchNumber == "" {
				// Sold from product stock, but the product has since gained
				// batches: the units go back into its opening batch.
				batches, err := q.ListBatches(ctx, item.ProductID)
				if err != nil {
					return storageErr("load batches", err)
				}
				if len(batches) > 0 {
					batchNumber = models.OpeningBatchNumber
				}
			}
			if batchNumber != "" {
				b, err := q.LockBatch(ctx, item.ProductID, batchNumber)
				switch {
				case errors.Is(err, repositories.ErrNotFound) && item.BatchNumber == "":
					b = &models.ProductBatch{ProductID: item.ProductID, BatchNumber: batchNumber}
					if err := q.CreateBatch(ctx, b); err != nil {
						return storageErr("create opening batch", err)
					}
				case errors.Is(err, repositories.ErrNotFound):
					return &LookupError{Err: ErrBatchNotFound, ProductID: item.ProductID, BatchNumber: batchNumber}
				case err != nil:
					return storageErr("load batch", err)
				}
				entry.BatchNumber = batchNumber
				if err := q.SetBatchQuantity(ctx, b.ID, b.Quantity+item.Quantity); err != nil {
					return storageErr("update batch quantity", err)
				}
				entry.QuantityBefore, entry.QuantityAfter = b.Quantity, b.Quantity+item.Quantity
			}

			if err := q.InsertStockHistory(ctx, entry); err != nil {
				return storageErr("insert stock history", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, asStorageFailure("return bill", err)
	}

	metrics.StockMovements.WithLabelValues(models.ChangeReturn).Add(float64(len(bill.Items)))
	log.Printf("[Stock] Bill %s returned, %d item(s) restocked", bill.InvoiceNumber, len(bill.Items))
	s.publish(EventBillReturned, map[string]any{"id": bill.ID, "invoice_number": bill.InvoiceNumber})
	s.publish(EventInventoryUpdated, map[string]any{"product_ids": productIDs(bill.Items)})
	return ret, nil
}

// openBatchTracking runs before a product's first batch is created. Stock
// the product already holds is moved into an opening batch so current_stock
// stays the sum of its batches.
func openBatchTracking(ctx context.Context, q repositories.Queries, p *models.Product) error {
	if p.CurrentStock <= 0 {
		return nil
	}
	batches, err := q.ListBatches(ctx, p.ID)
	if err != nil {
		return storageErr("load batches", err)
	}
	if len(batches) > 0 {
		return nil
	}
	opening := &models.ProductBatch{ProductID: p.ID, BatchNumber: models.OpeningBatchNumber, Quantity: p.CurrentStock}
	if err := q.CreateBatch(ctx, opening); err != nil {
		return storageErr("create opening batch", err)
	}
	log.Printf("[Stock] %s: %d unbatched unit(s) moved to batch %s", p.Name, p.CurrentStock, opening.BatchNumber)
	return nil
}

func (s *StockService) publish(eventType string, data any) {
	if s.Events != nil {
		s.Events.Publish(eventType, data)
	}
}
