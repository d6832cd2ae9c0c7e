package repositories

import (
	"context"
	"fmt"
	"time"

	"billing-backend/internal/models"
)

const userColumns = `id, username, full_name, password_hash, role, is_active, created_at, last_login`

func scanUser(row scanner) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.FullName, &u.PasswordHash, &u.Role, &u.IsActive,
		&u.CreatedAt, &u.LastLogin)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *Repository) CreateUser(ctx context.Context, u *models.User) error {
	err := r.DB.QueryRow(ctx,
		`INSERT INTO users(username, full_name, password_hash, role, is_active)
		 VALUES($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		u.Username, u.FullName, u.PasswordHash, u.Role, u.IsActive,
	).Scan(&u.ID, &u.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("user %q: %w", u.Username, ErrDuplicate)
	}
	return err
}

func (r *Repository) GetUser(ctx context.Context, id int) (*models.User, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
	return scanUser(row)
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username=$1`, username)
	return scanUser(row)
}

func (r *Repository) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

func (r *Repository) TouchLastLogin(ctx context.Context, id int, at time.Time) error {
	_, err := r.DB.Exec(ctx, `UPDATE users SET last_login=$1 WHERE id=$2`, at, id)
	return err
}
