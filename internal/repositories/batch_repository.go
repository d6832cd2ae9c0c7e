package repositories

import (
	"context"
	"fmt"
	"time"

	"billing-backend/internal/models"
)

const batchColumns = `id, product_id, batch_number, expiry_date, quantity, mrp, purchase_date, created_at`

func scanBatch(row scanner) (*models.ProductBatch, error) {
	var b models.ProductBatch
	err := row.Scan(&b.ID, &b.ProductID, &b.BatchNumber, &b.ExpiryDate, &b.Quantity, &b.MRP,
		&b.PurchaseDate, &b.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (r *Repository) CreateBatch(ctx context.Context, b *models.ProductBatch) error {
	err := r.DB.QueryRow(ctx,
		`INSERT INTO product_batches(product_id, batch_number, expiry_date, quantity, mrp, purchase_date)
		 VALUES($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		b.ProductID, b.BatchNumber, b.ExpiryDate, b.Quantity, b.MRP, b.PurchaseDate,
	).Scan(&b.ID, &b.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("batch %q: %w", b.BatchNumber, ErrDuplicate)
	}
	return err
}

func (r *Repository) GetBatch(ctx context.Context, productID int, batchNumber string) (*models.ProductBatch, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT `+batchColumns+` FROM product_batches WHERE product_id=$1 AND batch_number=$2`,
		productID, batchNumber)
	return scanBatch(row)
}

func (r *Repository) LockBatch(ctx context.Context, productID int, batchNumber string) (*models.ProductBatch, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT `+batchColumns+` FROM product_batches WHERE product_id=$1 AND batch_number=$2 FOR UPDATE`,
		productID, batchNumber)
	return scanBatch(row)
}

func (r *Repository) ListBatches(ctx context.Context, productID int) ([]*models.ProductBatch, error) {
	return r.queryBatches(ctx,
		`SELECT `+batchColumns+` FROM product_batches WHERE product_id=$1
		 ORDER BY expiry_date NULLS LAST, id`, productID)
}

func (r *Repository) LockBatches(ctx context.Context, productID int) ([]*models.ProductBatch, error) {
	return r.queryBatches(ctx,
		`SELECT `+batchColumns+` FROM product_batches WHERE product_id=$1
		 ORDER BY expiry_date NULLS LAST, id FOR UPDATE`, productID)
}

func (r *Repository) queryBatches(ctx context.Context, sql string, args ...any) ([]*models.ProductBatch, error) {
	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batches []*models.ProductBatch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

func (r *Repository) ListExpiringBatches(ctx context.Context, before time.Time) ([]*models.ExpiringBatch, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT b.id, b.product_id, b.batch_number, b.expiry_date, b.quantity, b.mrp, b.purchase_date,
			b.created_at, p.name
		 FROM product_batches b
		 JOIN products p ON p.id = b.product_id
		 WHERE b.quantity > 0 AND b.expiry_date IS NOT NULL AND b.expiry_date <= $1
		 ORDER BY b.expiry_date, p.name`, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batches []*models.ExpiringBatch
	for rows.Next() {
		var e models.ExpiringBatch
		if err := rows.Scan(&e.ID, &e.ProductID, &e.BatchNumber, &e.ExpiryDate, &e.Quantity, &e.MRP,
			&e.PurchaseDate, &e.CreatedAt, &e.ProductName); err != nil {
			return nil, err
		}
		batches = append(batches, &e)
	}
	return batches, rows.Err()
}

func (r *Repository) SetBatchQuantity(ctx context.Context, id int, quantity int) error {
	tag, err := r.DB.Exec(ctx, `UPDATE product_batches SET quantity=$1 WHERE id=$2`, quantity, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
