package gst

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertMoney(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.Equal(t, want, got.StringFixed(2), field)
}

func TestSellingPrice(t *testing.T) {
	tests := []struct {
		mrp, discount, want string
	}{
		{"100", "10", "90.00"},
		{"120", "55", "54.00"},
		{"99.99", "0", "99.99"},
		{"10.01", "33", "6.71"},
		{"250", "100", "0.00"},
	}
	for _, tt := range tests {
		assertMoney(t, tt.want, SellingPrice(dec(tt.mrp), dec(tt.discount)), tt.mrp+"@"+tt.discount)
	}
}

func TestValidPercent(t *testing.T) {
	assert.True(t, ValidPercent(dec("0")))
	assert.True(t, ValidPercent(dec("100")))
	assert.True(t, ValidPercent(dec("12.5")))
	assert.False(t, ValidPercent(dec("-0.01")))
	assert.False(t, ValidPercent(dec("100.01")))
}

func TestCalculateIntraStateExample(t *testing.T) {
	totals := Calculate([]Line{
		{MRP: dec("100"), DiscountPercent: dec("10"), GSTRate: dec("12"), Quantity: 2},
	}, Options{GSTBill: true})

	require.Len(t, totals.Lines, 1)
	assertMoney(t, "90.00", totals.Lines[0].Rate, "rate")
	assertMoney(t, "180.00", totals.Lines[0].Amount, "amount")
	assertMoney(t, "21.60", totals.Lines[0].TaxAmount, "line tax")
	assertMoney(t, "180.00", totals.Subtotal, "subtotal")
	assertMoney(t, "0.00", totals.DiscountAmount, "discount")
	assertMoney(t, "21.60", totals.TotalTax, "tax")
	assertMoney(t, "10.80", totals.CGST, "cgst")
	assertMoney(t, "10.80", totals.SGST, "sgst")
	assertMoney(t, "0.00", totals.IGST, "igst")
	assertMoney(t, "201.60", totals.RawTotal, "raw")
	assertMoney(t, "0.40", totals.RoundOff, "round off")
	assertMoney(t, "202.00", totals.GrandTotal, "grand")
	assertMoney(t, "200.00", totals.TotalMRP, "mrp total")
	assertMoney(t, "20.00", totals.TotalSavings, "savings")
}

func TestCalculateInterStateUsesIGST(t *testing.T) {
	totals := Calculate([]Line{
		{MRP: dec("100"), DiscountPercent: dec("10"), GSTRate: dec("12"), Quantity: 2},
	}, Options{GSTBill: true, InterState: true})

	assertMoney(t, "21.60", totals.IGST, "igst")
	assertMoney(t, "0.00", totals.CGST, "cgst")
	assertMoney(t, "0.00", totals.SGST, "sgst")
	assertMoney(t, "202.00", totals.GrandTotal, "grand")
}

func TestCalculateNonGSTBillSkipsTax(t *testing.T) {
	totals := Calculate([]Line{
		{MRP: dec("100"), DiscountPercent: dec("10"), GSTRate: dec("12"), Quantity: 2},
	}, Options{})

	assert.True(t, totals.TotalTax.IsZero())
	assert.True(t, totals.Lines[0].TaxAmount.IsZero())
	assertMoney(t, "180.00", totals.GrandTotal, "grand")
	assertMoney(t, "0.00", totals.RoundOff, "round off")
}

func TestCalculateBillDiscount(t *testing.T) {
	totals := Calculate([]Line{
		{MRP: dec("100"), DiscountPercent: dec("10"), GSTRate: dec("12"), Quantity: 2},
	}, Options{GSTBill: true, BillDiscountPercent: dec("10")})

	assertMoney(t, "18.00", totals.DiscountAmount, "discount")
	assertMoney(t, "162.00", totals.TaxableAmount, "taxable")
	assertMoney(t, "19.44", totals.TotalTax, "tax")
	assertMoney(t, "9.72", totals.CGST, "cgst")
	assertMoney(t, "9.72", totals.SGST, "sgst")
	assertMoney(t, "181.44", totals.RawTotal, "raw")
	assertMoney(t, "-0.44", totals.RoundOff, "round off")
	assertMoney(t, "181.00", totals.GrandTotal, "grand")
}

func TestCalculateMixedRates(t *testing.T) {
	totals := Calculate([]Line{
		{MRP: dec("100"), DiscountPercent: dec("0"), GSTRate: dec("5"), Quantity: 1},
		{MRP: dec("50"), DiscountPercent: dec("0"), GSTRate: dec("18"), Quantity: 3},
	}, Options{GSTBill: true})

	// 5 + 27
	assertMoney(t, "32.00", totals.TotalTax, "tax")
	assertMoney(t, "250.00", totals.Subtotal, "subtotal")
	assertMoney(t, "282.00", totals.GrandTotal, "grand")
}

func TestCalculateOddPaiseSplit(t *testing.T) {
	totals := Calculate([]Line{
		{MRP: dec("0.25"), DiscountPercent: dec("0"), GSTRate: dec("12"), Quantity: 1},
	}, Options{GSTBill: true})

	assertMoney(t, "0.03", totals.TotalTax, "tax")
	assertMoney(t, "0.02", totals.CGST, "cgst")
	assertMoney(t, "0.01", totals.SGST, "sgst")
	assert.True(t, totals.CGST.Add(totals.SGST).Equal(totals.TotalTax))
}

func TestRoundingHalfUp(t *testing.T) {
	tests := []struct {
		name, mrp, grand, roundOff string
	}{
		{"below half rounds down", "100.40", "100.00", "-0.40"},
		{"exact half rounds up", "100.50", "101.00", "0.50"},
		{"above half rounds up", "100.51", "101.00", "0.49"},
		{"whole rupee unchanged", "100.00", "100.00", "0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totals := Calculate([]Line{{MRP: dec(tt.mrp), Quantity: 1}}, Options{})
			assertMoney(t, tt.grand, totals.GrandTotal, "grand")
			assertMoney(t, tt.roundOff, totals.RoundOff, "round off")
		})
	}
}

func TestTotalsReconcile(t *testing.T) {
	carts := [][]Line{
		{{MRP: dec("37.35"), DiscountPercent: dec("55"), GSTRate: dec("12"), Quantity: 7}},
		{
			{MRP: dec("12.10"), DiscountPercent: dec("3"), GSTRate: dec("5"), Quantity: 11},
			{MRP: dec("999.99"), DiscountPercent: dec("17.5"), GSTRate: dec("28"), Quantity: 2},
		},
	}
	for _, lines := range carts {
		for _, opt := range []Options{
			{GSTBill: true},
			{GSTBill: true, InterState: true, BillDiscountPercent: dec("7.5")},
			{BillDiscountPercent: dec("2")},
		} {
			totals := Calculate(lines, opt)
			recomputed := totals.Subtotal.Sub(totals.DiscountAmount).Add(totals.TotalTax).Add(totals.RoundOff)
			assert.True(t, recomputed.Equal(totals.GrandTotal), "%s != %s", recomputed, totals.GrandTotal)
			assert.True(t, totals.GrandTotal.Equal(totals.GrandTotal.Truncate(0)))
			assert.True(t, totals.CGST.Add(totals.SGST).Add(totals.IGST).Equal(totals.TotalTax))
		}
	}
}
