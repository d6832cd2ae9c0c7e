package models

import "time"

const (
	ChangeSale       = "SALE"
	ChangePurchase   = "PURCHASE"
	ChangeAdjustment = "ADJUSTMENT"
	ChangeReturn     = "RETURN"
)

// StockHistory is an append-only audit row. When BatchNumber is set the
// before/after values are the batch quantities, otherwise the product's
// current stock.
type StockHistory struct {
	ID              int       `json:"id"`
	ProductID       int       `json:"product_id"`
	ProductName     string    `json:"product_name,omitempty"`
	BatchNumber     string    `json:"batch_number"`
	ChangeType      string    `json:"change_type"`
	QuantityBefore  int       `json:"quantity_before"`
	QuantityAfter   int       `json:"quantity_after"`
	QuantityChanged int       `json:"quantity_changed"`
	BillID          *int      `json:"bill_id"`
	Notes           string    `json:"notes"`
	CreatedBy       int       `json:"created_by"`
	CreatedAt       time.Time `json:"created_at"`
}

// StockAdjustmentRequest is a signed, non-sale stock change.
type StockAdjustmentRequest struct {
	ProductID   int    `json:"product_id" validate:"required,gt=0"`
	BatchNumber string `json:"batch_number" validate:"max=50"`
	Delta       int    `json:"delta"`
	ChangeType  string `json:"change_type" validate:"required,oneof=PURCHASE ADJUSTMENT RETURN"`
	Reason      string `json:"reason" validate:"max=500"`
}

type StockHistoryFilter struct {
	ProductID  int
	BillID     int
	ChangeType string
	Limit      int
}
