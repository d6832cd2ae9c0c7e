package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"billing-backend/internal/models"
	"billing-backend/internal/repositories"
)

func (q *queries) CreateProduct(ctx context.Context, p *models.Product) error {
	defer q.lock()()
	for _, existing := range q.st.products {
		if strings.EqualFold(existing.Name, p.Name) {
			return fmt.Errorf("product %q: %w", p.Name, repositories.ErrDuplicate)
		}
	}
	p.ID = q.st.id()
	p.CreatedAt = now()
	p.UpdatedAt = p.CreatedAt
	q.st.products[p.ID] = *p
	return nil
}

func (q *queries) UpdateProduct(ctx context.Context, p *models.Product) error {
	defer q.lock()()
	current, ok := q.st.products[p.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	for id, existing := range q.st.products {
		if id != p.ID && strings.EqualFold(existing.Name, p.Name) {
			return fmt.Errorf("product %q: %w", p.Name, repositories.ErrDuplicate)
		}
	}
	updated := *p
	updated.CurrentStock = current.CurrentStock
	updated.CreatedAt = current.CreatedAt
	updated.UpdatedAt = now()
	q.st.products[p.ID] = updated
	p.UpdatedAt = updated.UpdatedAt
	return nil
}

func (q *queries) GetProduct(ctx context.Context, id int) (*models.Product, error) {
	defer q.lock()()
	p, ok := q.st.products[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &p, nil
}

func (q *queries) LockProduct(ctx context.Context, id int) (*models.Product, error) {
	return q.GetProduct(ctx, id)
}

func (q *queries) GetProductByName(ctx context.Context, name string) (*models.Product, error) {
	defer q.lock()()
	for _, p := range q.st.products {
		if strings.EqualFold(p.Name, name) {
			p := p
			return &p, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (q *queries) ListProducts(ctx context.Context, f models.ProductFilter) ([]*models.Product, error) {
	defer q.lock()()
	var out []*models.Product
	for _, p := range q.st.products {
		if f.Search != "" && !contains(p.Name, f.Search) && p.Barcode != f.Search {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return limit(out, f.Limit), nil
}

func (q *queries) ListLowStockProducts(ctx context.Context) ([]*models.Product, error) {
	defer q.lock()()
	var out []*models.Product
	for _, p := range q.st.products {
		if p.CurrentStock <= p.MinStockLevel {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CurrentStock != out[j].CurrentStock {
			return out[i].CurrentStock < out[j].CurrentStock
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (q *queries) DeleteProduct(ctx context.Context, id int) error {
	defer q.lock()()
	if _, ok := q.st.products[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(q.st.products, id)
	for bid, b := range q.st.batches {
		if b.ProductID == id {
			delete(q.st.batches, bid)
		}
	}
	kept := q.st.history[:0:0]
	for _, h := range q.st.history {
		if h.ProductID != id {
			kept = append(kept, h)
		}
	}
	q.st.history = kept
	return nil
}

func (q *queries) ProductHasBills(ctx context.Context, id int) (bool, error) {
	defer q.lock()()
	for _, it := range q.st.billItems {
		if it.ProductID == id {
			return true, nil
		}
	}
	return false, nil
}

func (q *queries) SetProductStock(ctx context.Context, id int, stock int) error {
	defer q.lock()()
	p, ok := q.st.products[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if stock < 0 {
		return fmt.Errorf("product %d stock %d: negative stock rejected", id, stock)
	}
	p.CurrentStock = stock
	p.UpdatedAt = now()
	q.st.products[id] = p
	return nil
}

func (q *queries) CreateBatch(ctx context.Context, b *models.ProductBatch) error {
	defer q.lock()()
	if _, ok := q.st.products[b.ProductID]; !ok {
		return fmt.Errorf("product %d: %w", b.ProductID, repositories.ErrNotFound)
	}
	for _, existing := range q.st.batches {
		if existing.ProductID == b.ProductID && existing.BatchNumber == b.BatchNumber {
			return fmt.Errorf("batch %q: %w", b.BatchNumber, repositories.ErrDuplicate)
		}
	}
	b.ID = q.st.id()
	b.CreatedAt = now()
	q.st.batches[b.ID] = *b
	return nil
}

func (q *queries) GetBatch(ctx context.Context, productID int, batchNumber string) (*models.ProductBatch, error) {
	defer q.lock()()
	for _, b := range q.st.batches {
		if b.ProductID == productID && b.BatchNumber == batchNumber {
			b := b
			return &b, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (q *queries) LockBatch(ctx context.Context, productID int, batchNumber string) (*models.ProductBatch, error) {
	return q.GetBatch(ctx, productID, batchNumber)
}

func (q *queries) ListBatches(ctx context.Context, productID int) ([]*models.ProductBatch, error) {
	defer q.lock()()
	var out []*models.ProductBatch
	for _, b := range q.st.batches {
		if b.ProductID == productID {
			b := b
			out = append(out, &b)
		}
	}
	sortByExpiry(out)
	return out, nil
}

func (q *queries) LockBatches(ctx context.Context, productID int) ([]*models.ProductBatch, error) {
	return q.ListBatches(ctx, productID)
}

func sortByExpiry(batches []*models.ProductBatch) {
	sort.Slice(batches, func(i, j int) bool {
		a, b := batches[i], batches[j]
		switch {
		case a.ExpiryDate == nil && b.ExpiryDate == nil:
			return a.ID < b.ID
		case a.ExpiryDate == nil:
			return false
		case b.ExpiryDate == nil:
			return true
		case !a.ExpiryDate.Equal(*b.ExpiryDate):
			return a.ExpiryDate.Before(*b.ExpiryDate)
		default:
			return a.ID < b.ID
		}
	})
}

func (q *queries) ListExpiringBatches(ctx context.Context, before time.Time) ([]*models.ExpiringBatch, error) {
	defer q.lock()()
	var batches []*models.ProductBatch
	for _, b := range q.st.batches {
		if b.Quantity > 0 && b.ExpiryDate != nil && !b.ExpiryDate.After(before) {
			b := b
			batches = append(batches, &b)
		}
	}
	sortByExpiry(batches)

	out := make([]*models.ExpiringBatch, 0, len(batches))
	for _, b := range batches {
		out = append(out, &models.ExpiringBatch{ProductBatch: *b, ProductName: q.st.products[b.ProductID].Name})
	}
	return out, nil
}

func (q *queries) SetBatchQuantity(ctx context.Context, id int, quantity int) error {
	defer q.lock()()
	b, ok := q.st.batches[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if quantity < 0 {
		return fmt.Errorf("batch %d quantity %d: negative stock rejected", id, quantity)
	}
	b.Quantity = quantity
	q.st.batches[id] = b
	return nil
}
