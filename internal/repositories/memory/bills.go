package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"billing-backend/internal/invoice"
	"billing-backend/internal/models"
	"billing-backend/internal/repositories"
)

func (q *queries) NextInvoiceSequence(ctx context.Context, prefix, fiscalYear string) (int, error) {
	defer q.lock()()
	last := 0
	for _, b := range q.st.bills {
		p, seq, fy, err := invoice.Parse(b.InvoiceNumber)
		if err != nil || p != prefix || fy != fiscalYear {
			continue
		}
		if seq > last {
			last = seq
		}
	}
	return last + 1, nil
}

func (q *queries) InsertBill(ctx context.Context, b *models.Bill) error {
	defer q.lock()()
	for _, existing := range q.st.bills {
		if existing.InvoiceNumber == b.InvoiceNumber {
			return fmt.Errorf("invoice %s: %w", b.InvoiceNumber, repositories.ErrDuplicate)
		}
	}
	if _, ok := q.st.salesPersons[b.SalesPersonID]; !ok {
		return fmt.Errorf("sales person %d: %w", b.SalesPersonID, repositories.ErrNotFound)
	}
	b.ID = q.st.id()
	stored := *b
	stored.Items = nil
	stored.SalesPersonName = ""
	q.st.bills[b.ID] = stored
	return nil
}

func (q *queries) InsertBillItem(ctx context.Context, item *models.BillItem) error {
	defer q.lock()()
	if _, ok := q.st.bills[item.BillID]; !ok {
		return fmt.Errorf("bill %d: %w", item.BillID, repositories.ErrNotFound)
	}
	item.ID = q.st.id()
	q.st.billItems[item.ID] = *item
	return nil
}

// withDetails fills the joined fields the PostgreSQL queries return.
func (q *queries) withDetails(b models.Bill, items bool) *models.Bill {
	if sp, ok := q.st.salesPersons[b.SalesPersonID]; ok {
		b.SalesPersonName = sp.Name
	}
	if items {
		for _, id := range sortedKeys(q.st.billItems) {
			if it := q.st.billItems[id]; it.BillID == b.ID {
				b.Items = append(b.Items, it)
			}
		}
	}
	return &b
}

func (q *queries) GetBill(ctx context.Context, id int) (*models.Bill, error) {
	defer q.lock()()
	b, ok := q.st.bills[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return q.withDetails(b, true), nil
}

func (q *queries) GetBillByInvoiceNumber(ctx context.Context, number string) (*models.Bill, error) {
	defer q.lock()()
	for _, b := range q.st.bills {
		if b.InvoiceNumber == number {
			return q.withDetails(b, true), nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (q *queries) ListBills(ctx context.Context, f models.BillFilter) ([]*models.Bill, error) {
	defer q.lock()()
	var out []*models.Bill
	for _, b := range q.st.bills {
		if f.Search != "" && !contains(b.InvoiceNumber, f.Search) && !contains(b.CustomerName, f.Search) &&
			!strings.HasPrefix(b.CustomerPhone, f.Search) {
			continue
		}
		if f.From != nil && b.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && b.CreatedAt.After(*f.To) {
			continue
		}
		out = append(out, q.withDetails(b, false))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return limit(out, f.Limit), nil
}

func (q *queries) InsertBillReturn(ctx context.Context, r *models.BillReturn) error {
	defer q.lock()()
	if _, ok := q.st.billReturns[r.BillID]; ok {
		return fmt.Errorf("bill %d return: %w", r.BillID, repositories.ErrDuplicate)
	}
	r.ID = q.st.id()
	r.CreatedAt = now()
	q.st.billReturns[r.BillID] = *r
	return nil
}

func (q *queries) GetBillReturn(ctx context.Context, billID int) (*models.BillReturn, error) {
	defer q.lock()()
	r, ok := q.st.billReturns[billID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &r, nil
}

func (q *queries) InsertStockHistory(ctx context.Context, h *models.StockHistory) error {
	defer q.lock()()
	if _, ok := q.st.products[h.ProductID]; !ok {
		return fmt.Errorf("product %d: %w", h.ProductID, repositories.ErrNotFound)
	}
	h.ID = q.st.id()
	h.CreatedAt = now()
	q.st.history = append(q.st.history, *h)
	return nil
}

func (q *queries) ListStockHistory(ctx context.Context, f models.StockHistoryFilter) ([]*models.StockHistory, error) {
	defer q.lock()()
	var out []*models.StockHistory
	for i := len(q.st.history) - 1; i >= 0; i-- {
		h := q.st.history[i]
		if f.ProductID != 0 && h.ProductID != f.ProductID {
			continue
		}
		if f.BillID != 0 && (h.BillID == nil || *h.BillID != f.BillID) {
			continue
		}
		if f.ChangeType != "" && h.ChangeType != f.ChangeType {
			continue
		}
		h.ProductName = q.st.products[h.ProductID].Name
		out = append(out, &h)
	}
	return limit(out, f.Limit), nil
}
