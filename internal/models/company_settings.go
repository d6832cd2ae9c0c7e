package models

import "time"

// BankDetails is printed in the invoice footer.
type BankDetails struct {
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	IFSC          string `json:"ifsc"`
	Branch        string `json:"branch"`
	UPIID         string `json:"upi_id"`
}

// CompanySettings is the single settings row. It is loaded once per
// request and handed to billing and invoice rendering.
type CompanySettings struct {
	CompanyName    string      `json:"company_name" validate:"required,max=200"`
	Tagline        string      `json:"tagline"`
	Subtitle       string      `json:"subtitle"`
	Certifications string      `json:"certifications"`
	OfficeAddress  string      `json:"office_address"`
	FactoryAddress string      `json:"factory_address"`
	Phone          string      `json:"phone"`
	Email          string      `json:"email" validate:"omitempty,email"`
	Instagram      string      `json:"instagram"`
	GSTIN          string      `json:"gstin"`
	StateName      string      `json:"state_name"`
	StateCode      string      `json:"state_code" validate:"omitempty,len=2,numeric"`
	InvoicePrefix  string      `json:"invoice_prefix" validate:"required,max=10"`
	InvoiceNote    string      `json:"invoice_note"`
	GSTBank        BankDetails `json:"gst_bank"`
	NonGSTBank     BankDetails `json:"non_gst_bank"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// BankFor picks the account printed on a bill.
func (s *CompanySettings) BankFor(isGSTBill bool) BankDetails {
	if isGSTBill {
		return s.GSTBank
	}
	return s.NonGSTBank
}
