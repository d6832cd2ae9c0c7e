package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment modes accepted on a bill.
var PaymentModes = []string{"Cash", "UPI", "Card", "Net Banking", "Cheque", "Credit"}

const WalkInCustomerName = "Walk-in Customer"

// Bill is an issued invoice. It is never updated after creation.
type Bill struct {
	ID                int             `json:"id"`
	InvoiceNumber     string          `json:"invoice_number"`
	CustomerID        *int            `json:"customer_id"`
	CustomerName      string          `json:"customer_name"`
	CustomerPhone     string          `json:"customer_phone"`
	CustomerAddress   string          `json:"customer_address"`
	CustomerCity      string          `json:"customer_city"`
	CustomerState     string          `json:"customer_state"`
	CustomerStateCode string          `json:"customer_state_code"`
	CustomerPinCode   string          `json:"customer_pin_code"`
	CustomerGSTIN     string          `json:"customer_gstin"`
	SalesPersonID     int             `json:"sales_person_id"`
	SalesPersonName   string          `json:"sales_person_name,omitempty"`
	IsGSTBill         bool            `json:"is_gst_bill"`
	IsInterState      bool            `json:"is_inter_state"`
	PaymentMode       string          `json:"payment_mode"`
	Notes             string          `json:"notes"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	DiscountPercent   decimal.Decimal `json:"discount_percent"`
	DiscountAmount    decimal.Decimal `json:"discount_amount"`
	TaxableAmount     decimal.Decimal `json:"taxable_amount"`
	CGSTAmount        decimal.Decimal `json:"cgst_amount"`
	SGSTAmount        decimal.Decimal `json:"sgst_amount"`
	IGSTAmount        decimal.Decimal `json:"igst_amount"`
	TotalTax          decimal.Decimal `json:"total_tax"`
	RoundOff          decimal.Decimal `json:"round_off"`
	GrandTotal        decimal.Decimal `json:"grand_total"`
	TotalMRP          decimal.Decimal `json:"total_mrp"`
	TotalSavings      decimal.Decimal `json:"total_savings"`
	CreatedBy         int             `json:"created_by"`
	CreatedAt         time.Time       `json:"created_at"`
	Items             []BillItem      `json:"items,omitempty"`
}

// BillItem snapshots the product as it was sold.
type BillItem struct {
	ID              int             `json:"id"`
	BillID          int             `json:"bill_id"`
	ProductID       int             `json:"product_id"`
	ProductName     string          `json:"product_name"`
	HSNCode         string          `json:"hsn_code"`
	BatchNumber     string          `json:"batch_number"`
	ExpiryDate      *time.Time      `json:"expiry_date"`
	Unit            string          `json:"unit"`
	Quantity        int             `json:"quantity"`
	MRP             decimal.Decimal `json:"mrp"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Rate            decimal.Decimal `json:"rate"`
	Amount          decimal.Decimal `json:"amount"`
	GSTRate         decimal.Decimal `json:"gst_rate"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
}

// CartItem is one line the operator put in the cart.
type CartItem struct {
	ProductID       int              `json:"product_id" validate:"required,gt=0"`
	BatchNumber     string           `json:"batch_number" validate:"max=50"`
	Quantity        int              `json:"quantity"`
	DiscountPercent *decimal.Decimal `json:"discount_percent"`
}

// CustomerSnapshot carries walk-in details typed straight into the bill.
type CustomerSnapshot struct {
	Name      string `json:"name" validate:"max=100"`
	Phone     string `json:"phone" validate:"max=15"`
	Address   string `json:"address" validate:"max=500"`
	City      string `json:"city" validate:"max=100"`
	State     string `json:"state" validate:"max=100"`
	StateCode string `json:"state_code" validate:"omitempty,len=2,numeric"`
	PinCode   string `json:"pin_code" validate:"max=10"`
	GSTIN     string `json:"gstin" validate:"max=15"`
}

type CreateBillRequest struct {
	Items               []CartItem        `json:"items" validate:"dive"`
	CustomerID          *int              `json:"customer_id"`
	Customer            *CustomerSnapshot `json:"customer"`
	SalesPersonID       *int              `json:"sales_person_id"`
	IsGSTBill           bool              `json:"is_gst_bill"`
	BillDiscountPercent decimal.Decimal   `json:"bill_discount_percent"`
	PaymentMode         string            `json:"payment_mode"`
	Notes               string            `json:"notes" validate:"max=1000"`
}

type BillFilter struct {
	Search string
	From   *time.Time
	To     *time.Time
	Limit  int
}

type ReturnBillRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// BillReturn marks a bill whose stock has been put back.
type BillReturn struct {
	ID        int       `json:"id"`
	BillID    int       `json:"bill_id"`
	Reason    string    `json:"reason"`
	CreatedBy int       `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}
