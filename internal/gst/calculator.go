// Package gst holds the money arithmetic used on every invoice: line rates,
// bill level discount, the CGST/SGST/IGST split and rounding to the rupee.
//
// All values are decimal.Decimal. Rounding is half away from zero, which for
// the non-negative amounts found on a bill is the usual "round half up".
package gst

import (
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	two     = decimal.NewFromInt(2)
)

// Line is one priced cart entry.
type Line struct {
	MRP             decimal.Decimal
	DiscountPercent decimal.Decimal
	GSTRate         decimal.Decimal
	Quantity        int
}

// LineResult is the computed side of a Line.
type LineResult struct {
	Rate      decimal.Decimal
	Amount    decimal.Decimal
	TaxAmount decimal.Decimal
	MRPTotal  decimal.Decimal
}

// Options carries the bill level switches.
type Options struct {
	BillDiscountPercent decimal.Decimal
	GSTBill             bool
	InterState          bool
}

// Totals is the full breakdown printed on an invoice.
type Totals struct {
	Lines          []LineResult
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxableAmount  decimal.Decimal
	CGST           decimal.Decimal
	SGST           decimal.Decimal
	IGST           decimal.Decimal
	TotalTax       decimal.Decimal
	RawTotal       decimal.Decimal
	RoundOff       decimal.Decimal
	GrandTotal     decimal.Decimal
	TotalMRP       decimal.Decimal
	TotalSavings   decimal.Decimal
}

// Round2 rounds to paise.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// RoundRupee rounds to the nearest whole rupee, halves going up.
func RoundRupee(d decimal.Decimal) decimal.Decimal {
	return d.Round(0)
}

// SellingPrice returns mrp less discount percent, rounded to paise.
func SellingPrice(mrp, discountPercent decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(discountPercent.Div(hundred))
	return Round2(mrp.Mul(factor))
}

// ValidPercent reports whether p is within [0, 100].
func ValidPercent(p decimal.Decimal) bool {
	return !p.IsNegative() && p.LessThanOrEqual(hundred)
}

// Calculate prices every line and aggregates the bill.
//
// The bill discount is spread over the lines in proportion to their amount,
// so each line is taxed at its own GST rate on its discounted value. The
// summed tax is rounded once; CGST takes the rounded half and SGST the rest
// so the two always add back to TotalTax.
func Calculate(lines []Line, opt Options) Totals {
	t := Totals{Lines: make([]LineResult, 0, len(lines))}

	keep := decimal.NewFromInt(1).Sub(opt.BillDiscountPercent.Div(hundred))
	rawTax := decimal.Zero

	for _, l := range lines {
		qty := decimal.NewFromInt(int64(l.Quantity))
		rate := SellingPrice(l.MRP, l.DiscountPercent)
		amount := rate.Mul(qty)
		mrpTotal := l.MRP.Mul(qty)

		lineTax := decimal.Zero
		if opt.GSTBill {
			lineTax = amount.Mul(keep).Mul(l.GSTRate).Div(hundred)
			rawTax = rawTax.Add(lineTax)
		}

		t.Lines = append(t.Lines, LineResult{
			Rate:      rate,
			Amount:    amount,
			TaxAmount: Round2(lineTax),
			MRPTotal:  mrpTotal,
		})
		t.Subtotal = t.Subtotal.Add(amount)
		t.TotalMRP = t.TotalMRP.Add(mrpTotal)
	}

	t.DiscountAmount = Round2(t.Subtotal.Mul(opt.BillDiscountPercent).Div(hundred))
	t.TaxableAmount = t.Subtotal.Sub(t.DiscountAmount)

	if opt.GSTBill {
		t.TotalTax = Round2(rawTax)
		if opt.InterState {
			t.IGST = t.TotalTax
		} else {
			t.CGST = Round2(t.TotalTax.Div(two))
			t.SGST = t.TotalTax.Sub(t.CGST)
		}
	}

	t.RawTotal = t.TaxableAmount.Add(t.TotalTax)
	t.GrandTotal = RoundRupee(t.RawTotal)
	t.RoundOff = t.GrandTotal.Sub(t.RawTotal)
	t.TotalSavings = t.TotalMRP.Sub(t.TaxableAmount)
	return t
}
