package services

import (
	"context"
	"errors"
	"time"

	"billing-backend/internal/models"
	"billing-backend/internal/repositories"
)

// stockLedger loads the products and batches a cart touches and tracks what
// is left of each as lines are allocated, so a product that appears on two
// lines is checked against its combined quantity.
type stockLedger struct {
	q           repositories.Queries
	lock        bool
	products    map[int]*models.Product
	batches     map[int][]*models.ProductBatch
	productLeft map[int]int
	batchLeft   map[int]int
}

func newStockLedger(q repositories.Queries, lock bool) *stockLedger {
	return &stockLedger{
		q:           q,
		lock:        lock,
		products:    map[int]*models.Product{},
		batches:     map[int][]*models.ProductBatch{},
		productLeft: map[int]int{},
		batchLeft:   map[int]int{},
	}
}

func (l *stockLedger) product(ctx context.Context, id int) (*models.Product, error) {
	if p, ok := l.products[id]; ok {
		return p, nil
	}
	get := l.q.GetProduct
	if l.lock {
		get = l.q.LockProduct
	}
	p, err := get(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, &LookupError{Err: ErrProductNotFound, ProductID: id}
	}
	if err != nil {
		return nil, storageErr("load product", err)
	}
	l.products[id] = p
	l.productLeft[id] = p.CurrentStock
	return p, nil
}

// productBatches returns the product's batches, earliest expiry first.
func (l *stockLedger) productBatches(ctx context.Context, productID int) ([]*models.ProductBatch, error) {
	if bs, ok := l.batches[productID]; ok {
		return bs, nil
	}
	list := l.q.ListBatches
	if l.lock {
		list = l.q.LockBatches
	}
	bs, err := list(ctx, productID)
	if err != nil {
		return nil, storageErr("load batches", err)
	}
	l.batches[productID] = bs
	for _, b := range bs {
		l.batchLeft[b.ID] = b.Quantity
	}
	return bs, nil
}

func (l *stockLedger) allocate(ctx context.Context, line cartLine, today time.Time) (allocation, error) {
	p, err := l.product(ctx, line.ProductID)
	if err != nil {
		return allocation{}, err
	}
	batches, err := l.productBatches(ctx, p.ID)
	if err != nil {
		return allocation{}, err
	}

	short := func(batch string, available int) error {
		return &StockError{
			ProductID:   p.ID,
			ProductName: p.Name,
			BatchNumber: batch,
			Requested:   line.Quantity,
			Available:   max(available, 0),
		}
	}

	var batch *models.ProductBatch
	switch {
	case line.BatchNumber != "":
		for _, b := range batches {
			if b.BatchNumber == line.BatchNumber {
				batch = b
				break
			}
		}
		if batch == nil {
			return allocation{}, &LookupError{Err: ErrBatchNotFound, ProductID: p.ID, BatchNumber: line.BatchNumber}
		}
		if left := l.batchLeft[batch.ID]; line.Quantity > left {
			return allocation{}, short(batch.BatchNumber, left)
		}
	case len(batches) > 0:
		// First expiring batch that is still good and can cover the line.
		best := 0
		for _, b := range batches {
			if b.Expired(today) {
				continue
			}
			left := l.batchLeft[b.ID]
			if left >= line.Quantity {
				batch = b
				break
			}
			best = max(best, left)
		}
		if batch == nil {
			return allocation{}, short("", min(best, l.productLeft[p.ID]))
		}
	}

	if left := l.productLeft[p.ID]; line.Quantity > left {
		name := ""
		if batch != nil {
			name = batch.BatchNumber
		}
		return allocation{}, short(name, left)
	}

	l.productLeft[p.ID] -= line.Quantity
	a := allocation{product: p, qty: line.Quantity, mrp: p.MRP, discount: p.DiscountPercent}
	if batch != nil {
		l.batchLeft[batch.ID] -= line.Quantity
		a.batch = batch
		if batch.MRP.Valid {
			a.mrp = batch.MRP.Decimal
		}
	}
	if line.Discount != nil {
		a.discount = *line.Discount
	}
	return a, nil
}
