package repositories

import (
	"context"

	"billing-backend/internal/models"
)

func (r *Repository) InsertStockHistory(ctx context.Context, h *models.StockHistory) error {
	var createdBy *int
	if h.CreatedBy > 0 {
		createdBy = &h.CreatedBy
	}
	return r.DB.QueryRow(ctx,
		`INSERT INTO stock_history(product_id, batch_number, change_type, quantity_before, quantity_after,
			quantity_changed, bill_id, notes, created_by)
		 VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at`,
		h.ProductID, h.BatchNumber, h.ChangeType, h.QuantityBefore, h.QuantityAfter,
		h.QuantityChanged, h.BillID, h.Notes, createdBy,
	).Scan(&h.ID, &h.CreatedAt)
}

func (r *Repository) ListStockHistory(ctx context.Context, f models.StockHistoryFilter) ([]*models.StockHistory, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT h.id, h.product_id, p.name, h.batch_number, h.change_type, h.quantity_before,
			h.quantity_after, h.quantity_changed, h.bill_id, h.notes, COALESCE(h.created_by, 0), h.created_at
		 FROM stock_history h
		 JOIN products p ON p.id = h.product_id
		 WHERE ($1 = 0 OR h.product_id = $1)
		   AND ($2 = 0 OR h.bill_id = $2)
		   AND ($3 = '' OR h.change_type = $3)
		 ORDER BY h.created_at DESC, h.id DESC
		 LIMIT $4`,
		f.ProductID, f.BillID, f.ChangeType, listLimit(f.Limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []*models.StockHistory
	for rows.Next() {
		var h models.StockHistory
		if err := rows.Scan(&h.ID, &h.ProductID, &h.ProductName, &h.BatchNumber, &h.ChangeType,
			&h.QuantityBefore, &h.QuantityAfter, &h.QuantityChanged, &h.BillID, &h.Notes,
			&h.CreatedBy, &h.CreatedAt); err != nil {
			return nil, err
		}
		history = append(history, &h)
	}
	return history, rows.Err()
}
