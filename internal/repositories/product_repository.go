package repositories

import (
	"context"
	"fmt"

	"billing-backend/internal/models"
)

const productColumns = `id, name, category, hsn_code, unit, package_size, mrp, discount_percent,
	selling_price, purchase_price, gst_rate, current_stock, min_stock_level, barcode,
	description, created_at, updated_at`

func scanProduct(row scanner) (*models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.HSNCode, &p.Unit, &p.PackageSize,
		&p.MRP, &p.DiscountPercent, &p.SellingPrice, &p.PurchasePrice, &p.GSTRate,
		&p.CurrentStock, &p.MinStockLevel, &p.Barcode, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *Repository) CreateProduct(ctx context.Context, p *models.Product) error {
	err := r.DB.QueryRow(ctx,
		`INSERT INTO products(name, category, hsn_code, unit, package_size, mrp, discount_percent,
			selling_price, purchase_price, gst_rate, current_stock, min_stock_level, barcode, description)
		 VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING id, created_at, updated_at`,
		p.Name, p.Category, p.HSNCode, p.Unit, p.PackageSize, p.MRP, p.DiscountPercent,
		p.SellingPrice, p.PurchasePrice, p.GSTRate, p.CurrentStock, p.MinStockLevel, p.Barcode, p.Description,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("product %q: %w", p.Name, ErrDuplicate)
	}
	return err
}

func (r *Repository) UpdateProduct(ctx context.Context, p *models.Product) error {
	err := r.DB.QueryRow(ctx,
		`UPDATE products SET name=$1, category=$2, hsn_code=$3, unit=$4, package_size=$5, mrp=$6,
			discount_percent=$7, selling_price=$8, purchase_price=$9, gst_rate=$10, min_stock_level=$11,
			barcode=$12, description=$13, updated_at=NOW()
		 WHERE id=$14
		 RETURNING updated_at`,
		p.Name, p.Category, p.HSNCode, p.Unit, p.PackageSize, p.MRP, p.DiscountPercent,
		p.SellingPrice, p.PurchasePrice, p.GSTRate, p.MinStockLevel, p.Barcode, p.Description, p.ID,
	).Scan(&p.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("product %q: %w", p.Name, ErrDuplicate)
	}
	return notFound(err)
}

func (r *Repository) GetProduct(ctx context.Context, id int) (*models.Product, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id)
	return scanProduct(row)
}

func (r *Repository) LockProduct(ctx context.Context, id int) (*models.Product, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1 FOR UPDATE`, id)
	return scanProduct(row)
}

func (r *Repository) GetProductByName(ctx context.Context, name string) (*models.Product, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE LOWER(name)=LOWER($1)`, name)
	return scanProduct(row)
}

func (r *Repository) ListProducts(ctx context.Context, f models.ProductFilter) ([]*models.Product, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+productColumns+` FROM products
		 WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR barcode = $1)
		   AND ($2 = '' OR category = $2)
		 ORDER BY name
		 LIMIT $3`,
		f.Search, f.Category, listLimit(f.Limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *Repository) ListLowStockProducts(ctx context.Context) ([]*models.Product, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+productColumns+` FROM products
		 WHERE current_stock <= min_stock_level
		 ORDER BY current_stock, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *Repository) DeleteProduct(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) ProductHasBills(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := r.DB.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM bill_items WHERE product_id=$1)`, id).Scan(&exists)
	return exists, err
}

func (r *Repository) SetProductStock(ctx context.Context, id int, stock int) error {
	tag, err := r.DB.Exec(ctx, `UPDATE products SET current_stock=$1, updated_at=NOW() WHERE id=$2`, stock, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
