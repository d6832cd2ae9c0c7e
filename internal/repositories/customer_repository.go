package repositories

import (
	"context"

	"billing-backend/internal/models"
)

const customerColumns = `id, name, phone, email, address, city, state, state_code, pin_code, gstin, created_at, updated_at`

func scanCustomer(row scanner) (*models.Customer, error) {
	var c models.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.City, &c.State, &c.StateCode,
		&c.PinCode, &c.GSTIN, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *Repository) CreateCustomer(ctx context.Context, c *models.Customer) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO customers(name, phone, email, address, city, state, state_code, pin_code, gstin)
		 VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at, updated_at`,
		c.Name, c.Phone, c.Email, c.Address, c.City, c.State, c.StateCode, c.PinCode, c.GSTIN,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *Repository) UpdateCustomer(ctx context.Context, c *models.Customer) error {
	err := r.DB.QueryRow(ctx,
		`UPDATE customers SET name=$1, phone=$2, email=$3, address=$4, city=$5, state=$6, state_code=$7,
			pin_code=$8, gstin=$9, updated_at=NOW()
		 WHERE id=$10
		 RETURNING updated_at`,
		c.Name, c.Phone, c.Email, c.Address, c.City, c.State, c.StateCode, c.PinCode, c.GSTIN, c.ID,
	).Scan(&c.UpdatedAt)
	return notFound(err)
}

func (r *Repository) GetCustomer(ctx context.Context, id int) (*models.Customer, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id=$1`, id)
	return scanCustomer(row)
}

func (r *Repository) GetCustomerByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE phone=$1 ORDER BY id LIMIT 1`, phone)
	return scanCustomer(row)
}

func (r *Repository) ListCustomers(ctx context.Context, f models.CustomerFilter) ([]*models.Customer, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+customerColumns+` FROM customers
		 WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR phone LIKE $1 || '%')
		 ORDER BY name
		 LIMIT $2`,
		f.Search, listLimit(f.Limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []*models.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}
