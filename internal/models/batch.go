package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OpeningBatchNumber holds stock a product carried before it was first
// tracked by batch.
const OpeningBatchNumber = "OPENING"

type ProductBatch struct {
	ID           int                 `json:"id"`
	ProductID    int                 `json:"product_id"`
	BatchNumber  string              `json:"batch_number"`
	ExpiryDate   *time.Time          `json:"expiry_date"`
	Quantity     int                 `json:"quantity"`
	MRP          decimal.NullDecimal `json:"mrp"`
	PurchaseDate *time.Time          `json:"purchase_date"`
	CreatedAt    time.Time           `json:"created_at"`
}

// Expired reports whether the batch expiry date is before the given day.
func (b *ProductBatch) Expired(today time.Time) bool {
	return b.ExpiryDate != nil && b.ExpiryDate.Before(today)
}

// BatchRequest adds a purchased lot to a product. Dates use YYYY-MM-DD.
type BatchRequest struct {
	BatchNumber  string           `json:"batch_number" validate:"required,max=50"`
	ExpiryDate   string           `json:"expiry_date" validate:"omitempty,datetime=2006-01-02"`
	PurchaseDate string           `json:"purchase_date" validate:"omitempty,datetime=2006-01-02"`
	Quantity     int              `json:"quantity" validate:"gt=0"`
	MRP          *decimal.Decimal `json:"mrp"`
	Notes        string           `json:"notes" validate:"max=500"`
}

// ExpiringBatch is a batch joined with its product name for the expiry report.
type ExpiringBatch struct {
	ProductBatch
	ProductName string `json:"product_name"`
}
