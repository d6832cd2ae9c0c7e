package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements Queries with raw SQL over a pool or a transaction.
type Repository struct {
	DB DBTX
}

func NewRepository(db DBTX) *Repository {
	return &Repository{DB: db}
}

// PostgresStore is the production Store.
type PostgresStore struct {
	*Repository
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{Repository: NewRepository(pool), pool: pool}
}

func (s *PostgresStore) InTx(ctx context.Context, fn func(q Queries) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(NewRepository(tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// savepoint runs fn in a nested transaction so a failed statement does not
// abort the caller's transaction.
func (r *Repository) savepoint(ctx context.Context, fn func(db DBTX) error) error {
	sp, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer sp.Rollback(ctx)

	if err := fn(sp); err != nil {
		return err
	}
	return sp.Commit(ctx)
}

type scanner interface {
	Scan(dest ...any) error
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
