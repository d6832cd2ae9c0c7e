package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"billing-backend/internal/gst"
	"billing-backend/internal/invoice"
	"billing-backend/internal/models"
	"billing-backend/internal/timeutil"

	"github.com/jung-kurt/gofpdf/v2"
	"github.com/shopspring/decimal"
)

// Archiver stores a rendered invoice somewhere durable.
type Archiver interface {
	PutInvoice(ctx context.Context, invoiceNumber string, pdf []byte) (string, error)
}

type InvoicePDFService struct {
	Archive Archiver
}

func NewInvoicePDFService(archive Archiver) *InvoicePDFService {
	return &InvoicePDFService{Archive: archive}
}

// item table columns, 190mm wide
var invoiceColumns = []struct {
	title string
	width float64
	align string
}{
	{"#", 8, "C"},
	{"Product", 56, "L"},
	{"HSN", 15, "C"},
	{"Batch", 17, "C"},
	{"Exp", 13, "C"},
	{"Qty", 10, "C"},
	{"MRP", 17, "R"},
	{"Disc%", 12, "R"},
	{"Rate", 17, "R"},
	{"Amount", 25, "R"},
}

// Render produces an A4 invoice for a persisted bill.
func (s *InvoicePDFService) Render(bill *models.Bill, settings *models.CompanySettings) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	// Company header
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 8, settings.CompanyName, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	for _, line := range []string{settings.Tagline, settings.Subtitle, settings.Certifications, settings.OfficeAddress, settings.FactoryAddress} {
		if line != "" {
			pdf.CellFormat(190, 5, line, "", 1, "C", false, 0, "")
		}
	}
	contact := joinNonEmpty(" | ", prefixed("Ph: ", settings.Phone), prefixed("Email: ", settings.Email), prefixed("Instagram: ", settings.Instagram))
	if contact != "" {
		pdf.CellFormat(190, 5, contact, "", 1, "C", false, 0, "")
	}
	if bill.IsGSTBill && settings.GSTIN != "" {
		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(190, 5, fmt.Sprintf("GSTIN: %s  State: %s (%s)", settings.GSTIN, settings.StateName, settings.StateCode), "", 1, "C", false, 0, "")
	}
	pdf.Ln(2)

	title := "INVOICE"
	if bill.IsGSTBill {
		title = "TAX INVOICE"
	}
	pdf.SetFillColor(230, 230, 230)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, title, "1", 1, "C", true, 0, "")

	// Bill and customer block
	pdf.SetFont("Arial", "", 10)
	created := bill.CreatedAt.In(timeutil.IST).Format(timeutil.DisplayLayout)
	pdf.CellFormat(95, 6, "Invoice No: "+bill.InvoiceNumber, "LT", 0, "L", false, 0, "")
	pdf.CellFormat(95, 6, "Date: "+created, "RT", 1, "L", false, 0, "")
	pdf.CellFormat(95, 6, "Customer: "+bill.CustomerName, "L", 0, "L", false, 0, "")
	pdf.CellFormat(95, 6, "Phone: "+bill.CustomerPhone, "R", 1, "L", false, 0, "")
	address := joinNonEmpty(", ", bill.CustomerAddress, bill.CustomerCity, bill.CustomerState, bill.CustomerPinCode)
	pdf.CellFormat(95, 6, "Address: "+truncate(address, 50), "L", 0, "L", false, 0, "")
	pdf.CellFormat(95, 6, "Payment: "+bill.PaymentMode, "R", 1, "L", false, 0, "")
	border := "LB"
	if bill.CustomerGSTIN != "" {
		pdf.CellFormat(95, 6, "Customer GSTIN: "+bill.CustomerGSTIN, border, 0, "L", false, 0, "")
	} else {
		pdf.CellFormat(95, 6, "", border, 0, "L", false, 0, "")
	}
	pdf.CellFormat(95, 6, "Sales Person: "+bill.SalesPersonName, "RB", 1, "L", false, 0, "")
	pdf.Ln(3)

	// Items
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(200, 200, 200)
	for i, col := range invoiceColumns {
		ln := 0
		if i == len(invoiceColumns)-1 {
			ln = 1
		}
		pdf.CellFormat(col.width, 7, col.title, "1", ln, "C", true, 0, "")
	}
	pdf.SetFont("Arial", "", 9)
	for i, item := range bill.Items {
		expiry := ""
		if item.ExpiryDate != nil {
			expiry = item.ExpiryDate.In(timeutil.IST).Format(timeutil.ExpiryLayout)
		}
		cells := []string{
			fmt.Sprintf("%d", i+1),
			truncate(item.ProductName, 32),
			item.HSNCode,
			truncate(item.BatchNumber, 10),
			expiry,
			fmt.Sprintf("%d", item.Quantity),
			money(item.MRP),
			item.DiscountPercent.String(),
			money(item.Rate),
			money(item.Amount),
		}
		for c, col := range invoiceColumns {
			ln := 0
			if c == len(invoiceColumns)-1 {
				ln = 1
			}
			pdf.CellFormat(col.width, 6, cells[c], "1", ln, col.align, false, 0, "")
		}
	}
	pdf.Ln(3)

	// Totals
	totalRow := func(label string, value decimal.Decimal, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Arial", style, 10)
		pdf.CellFormat(130, 6, "", "", 0, "L", false, 0, "")
		pdf.CellFormat(35, 6, label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, money(value), "1", 1, "R", false, 0, "")
	}
	totalRow("Total MRP", bill.TotalMRP, false)
	totalRow("Subtotal", bill.Subtotal, false)
	if bill.DiscountAmount.IsPositive() {
		totalRow(fmt.Sprintf("Discount %s%%", bill.DiscountPercent), bill.DiscountAmount.Neg(), false)
	}
	if bill.IsGSTBill {
		totalRow("Taxable Value", bill.TaxableAmount, false)
		if bill.IsInterState {
			totalRow("IGST", bill.IGSTAmount, false)
		} else {
			totalRow("CGST", bill.CGSTAmount, false)
			totalRow("SGST", bill.SGSTAmount, false)
		}
	}
	totalRow("Round Off", bill.RoundOff, false)
	totalRow("Grand Total", bill.GrandTotal, true)
	if bill.TotalSavings.IsPositive() {
		pdf.SetFont("Arial", "I", 9)
		pdf.CellFormat(190, 6, "You saved Rs. "+money(bill.TotalSavings), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.SetFont("Arial", "B", 10)
	pdf.MultiCell(190, 6, "Amount in words: Rupees "+gst.AmountInWords(bill.GrandTotal.IntPart()), "1", "L", false)

	// Bank block
	bank := settings.BankFor(bill.IsGSTBill)
	if bank.BankName != "" || bank.UPIID != "" {
		pdf.Ln(3)
		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(240, 240, 240)
		pdf.CellFormat(95, 6, "Bank Details", "1", 1, "L", true, 0, "")
		pdf.SetFont("Arial", "", 9)
		for _, line := range []string{
			prefixed("Bank: ", bank.BankName),
			prefixed("A/C No: ", bank.AccountNumber),
			prefixed("IFSC: ", bank.IFSC),
			prefixed("Branch: ", bank.Branch),
			prefixed("UPI: ", bank.UPIID),
		} {
			if line != "" {
				pdf.CellFormat(95, 5, line, "LR", 1, "L", false, 0, "")
			}
		}
		pdf.CellFormat(95, 0, "", "T", 1, "L", false, 0, "")
	}

	if settings.InvoiceNote != "" || bill.Notes != "" {
		pdf.Ln(3)
		pdf.SetFont("Arial", "", 8)
		pdf.MultiCell(190, 4, joinNonEmpty("\n", bill.Notes, settings.InvoiceNote), "", "L", false)
	}

	pdf.Ln(8)
	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(190, 5, "For "+settings.CompanyName, "", 1, "R", false, 0, "")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(190, 5, "Authorised Signatory", "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ArchiveAsync uploads a rendered invoice in the background. Failures are
// logged only; the invoice is already persisted.
func (s *InvoicePDFService) ArchiveAsync(invoiceNumber string, pdf []byte) {
	if s.Archive == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		key, err := s.Archive.PutInvoice(ctx, invoiceNumber, pdf)
		if err != nil {
			log.Printf("[Archive] Failed to upload %s: %v", invoiceNumber, err)
			return
		}
		log.Printf("[Archive] Uploaded %s as %s", invoiceNumber, key)
	}()
}

// FileName is the download name for an invoice PDF.
func FileName(invoiceNumber string) string {
	return "invoice_" + invoice.Slug(invoiceNumber) + ".pdf"
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func prefixed(label, value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	return label + value
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
