package repositories

import (
	"context"
	"fmt"

	"billing-backend/internal/models"
)

const salesPersonColumns = `id, name, phone, email, is_active, created_at`

func scanSalesPerson(row scanner) (*models.SalesPerson, error) {
	var sp models.SalesPerson
	if err := row.Scan(&sp.ID, &sp.Name, &sp.Phone, &sp.Email, &sp.IsActive, &sp.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	return &sp, nil
}

func (r *Repository) CreateSalesPerson(ctx context.Context, sp *models.SalesPerson) error {
	err := r.DB.QueryRow(ctx,
		`INSERT INTO sales_persons(name, phone, email, is_active)
		 VALUES($1, $2, $3, $4)
		 RETURNING id, created_at`,
		sp.Name, sp.Phone, sp.Email, sp.IsActive,
	).Scan(&sp.ID, &sp.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("sales person %q: %w", sp.Name, ErrDuplicate)
	}
	return err
}

func (r *Repository) UpdateSalesPerson(ctx context.Context, sp *models.SalesPerson) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE sales_persons SET name=$1, phone=$2, email=$3, is_active=$4 WHERE id=$5`,
		sp.Name, sp.Phone, sp.Email, sp.IsActive, sp.ID)
	if isUniqueViolation(err) {
		return fmt.Errorf("sales person %q: %w", sp.Name, ErrDuplicate)
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) GetSalesPerson(ctx context.Context, id int) (*models.SalesPerson, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+salesPersonColumns+` FROM sales_persons WHERE id=$1`, id)
	return scanSalesPerson(row)
}

func (r *Repository) GetSalesPersonByName(ctx context.Context, name string) (*models.SalesPerson, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+salesPersonColumns+` FROM sales_persons WHERE name=$1`, name)
	return scanSalesPerson(row)
}

func (r *Repository) ListSalesPersons(ctx context.Context, activeOnly bool) ([]*models.SalesPerson, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+salesPersonColumns+` FROM sales_persons
		 WHERE (NOT $1 OR is_active)
		 ORDER BY name`, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*models.SalesPerson
	for rows.Next() {
		sp, err := scanSalesPerson(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, sp)
	}
	return list, rows.Err()
}
