package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID              int             `json:"id"`
	Name            string          `json:"name"`
	Category        string          `json:"category"`
	HSNCode         string          `json:"hsn_code"`
	Unit            string          `json:"unit"`
	PackageSize     string          `json:"package_size"`
	MRP             decimal.Decimal `json:"mrp"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	SellingPrice    decimal.Decimal `json:"selling_price"`
	PurchasePrice   decimal.Decimal `json:"purchase_price"`
	GSTRate         decimal.Decimal `json:"gst_rate"`
	CurrentStock    int             `json:"current_stock"`
	MinStockLevel   int             `json:"min_stock_level"`
	Barcode         string          `json:"barcode"`
	Description     string          `json:"description"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ProductRequest is the body for creating or updating a product. Nil
// percentages fall back to the configured defaults.
type ProductRequest struct {
	Name            string           `json:"name" validate:"required,min=3,max=200"`
	Category        string           `json:"category" validate:"max=100"`
	HSNCode         string           `json:"hsn_code" validate:"omitempty,numeric,min=4,max=8"`
	Unit            string           `json:"unit" validate:"max=20"`
	PackageSize     string           `json:"package_size" validate:"max=50"`
	MRP             decimal.Decimal  `json:"mrp"`
	DiscountPercent *decimal.Decimal `json:"discount_percent"`
	PurchasePrice   decimal.Decimal  `json:"purchase_price"`
	GSTRate         *decimal.Decimal `json:"gst_rate"`
	MinStockLevel   *int             `json:"min_stock_level" validate:"omitempty,min=0"`
	Barcode         string           `json:"barcode" validate:"max=50"`
	Description     string           `json:"description" validate:"max=1000"`
}

type ProductFilter struct {
	Search   string
	Category string
	Limit    int
}

// Product categories and units offered by the catalog screens.
var (
	ProductCategories = []string{"Capsules", "Oils", "Awaleh/Powder", "Ointment", "Syrup", "Pills", "Serum", "Tonic", "Honey", "Others"}
	ProductUnits      = []string{"Nos", "ml", "gm", "kg", "Bottle", "Pack"}
	GSTRates          = []string{"0", "5", "12", "18", "28"}
)
