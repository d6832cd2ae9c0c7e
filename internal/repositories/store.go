package repositories

import (
	"context"
	"errors"
	"time"

	"billing-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx, so the same repository
// code runs inside or outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type ProductQueries interface {
	CreateProduct(ctx context.Context, p *models.Product) error
	// UpdateProduct writes catalog fields only; stock moves through SetProductStock.
	UpdateProduct(ctx context.Context, p *models.Product) error
	GetProduct(ctx context.Context, id int) (*models.Product, error)
	// LockProduct reads the product and holds a row lock until the
	// surrounding transaction ends.
	LockProduct(ctx context.Context, id int) (*models.Product, error)
	GetProductByName(ctx context.Context, name string) (*models.Product, error)
	ListProducts(ctx context.Context, f models.ProductFilter) ([]*models.Product, error)
	ListLowStockProducts(ctx context.Context) ([]*models.Product, error)
	DeleteProduct(ctx context.Context, id int) error
	ProductHasBills(ctx context.Context, id int) (bool, error)
	SetProductStock(ctx context.Context, id int, stock int) error
}

type BatchQueries interface {
	CreateBatch(ctx context.Context, b *models.ProductBatch) error
	GetBatch(ctx context.Context, productID int, batchNumber string) (*models.ProductBatch, error)
	LockBatch(ctx context.Context, productID int, batchNumber string) (*models.ProductBatch, error)
	// ListBatches orders by expiry date, undated batches last.
	ListBatches(ctx context.Context, productID int) ([]*models.ProductBatch, error)
	LockBatches(ctx context.Context, productID int) ([]*models.ProductBatch, error)
	ListExpiringBatches(ctx context.Context, before time.Time) ([]*models.ExpiringBatch, error)
	SetBatchQuantity(ctx context.Context, id int, quantity int) error
}

type CustomerQueries interface {
	CreateCustomer(ctx context.Context, c *models.Customer) error
	UpdateCustomer(ctx context.Context, c *models.Customer) error
	GetCustomer(ctx context.Context, id int) (*models.Customer, error)
	GetCustomerByPhone(ctx context.Context, phone string) (*models.Customer, error)
	ListCustomers(ctx context.Context, f models.CustomerFilter) ([]*models.Customer, error)
}

type SalesPersonQueries interface {
	CreateSalesPerson(ctx context.Context, sp *models.SalesPerson) error
	UpdateSalesPerson(ctx context.Context, sp *models.SalesPerson) error
	GetSalesPerson(ctx context.Context, id int) (*models.SalesPerson, error)
	GetSalesPersonByName(ctx context.Context, name string) (*models.SalesPerson, error)
	ListSalesPersons(ctx context.Context, activeOnly bool) ([]*models.SalesPerson, error)
}

type BillQueries interface {
	// NextInvoiceSequence returns one past the highest sequence issued for
	// prefix in fiscalYear. Inside a transaction it also serializes other
	// callers asking for the same prefix and year.
	NextInvoiceSequence(ctx context.Context, prefix, fiscalYear string) (int, error)
	// InsertBill returns ErrDuplicate when the invoice number is taken. The
	// surrounding transaction stays usable after that error.
	InsertBill(ctx context.Context, b *models.Bill) error
	InsertBillItem(ctx context.Context, item *models.BillItem) error
	GetBill(ctx context.Context, id int) (*models.Bill, error)
	GetBillByInvoiceNumber(ctx context.Context, number string) (*models.Bill, error)
	ListBills(ctx context.Context, f models.BillFilter) ([]*models.Bill, error)
	InsertBillReturn(ctx context.Context, r *models.BillReturn) error
	GetBillReturn(ctx context.Context, billID int) (*models.BillReturn, error)
}

type StockHistoryQueries interface {
	InsertStockHistory(ctx context.Context, h *models.StockHistory) error
	ListStockHistory(ctx context.Context, f models.StockHistoryFilter) ([]*models.StockHistory, error)
}

type SettingsQueries interface {
	GetCompanySettings(ctx context.Context) (*models.CompanySettings, error)
	UpdateCompanySettings(ctx context.Context, s *models.CompanySettings) error
}

type UserQueries interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id int) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CountUsers(ctx context.Context) (int, error)
	TouchLastLogin(ctx context.Context, id int, at time.Time) error
}

// Queries is everything the services read and write.
type Queries interface {
	ProductQueries
	BatchQueries
	CustomerQueries
	SalesPersonQueries
	BillQueries
	StockHistoryQueries
	SettingsQueries
	UserQueries
}

// Store is a Queries that can also run a function atomically. Either all
// writes made through the Queries passed to fn persist, or none do.
type Store interface {
	Queries
	InTx(ctx context.Context, fn func(q Queries) error) error
	Ping(ctx context.Context) error
}

const defaultListLimit = 100

func listLimit(n int) int {
	if n <= 0 || n > 1000 {
		return defaultListLimit
	}
	return n
}
