package repositories

import (
	"context"
	"fmt"

	"billing-backend/internal/models"
)

const billColumns = `b.id, b.invoice_number, b.customer_id, b.customer_name, b.customer_phone,
	b.customer_address, b.customer_city, b.customer_state, b.customer_state_code, b.customer_pin_code,
	b.customer_gstin, b.sales_person_id, COALESCE(sp.name, ''), b.is_gst_bill, b.is_inter_state,
	b.payment_mode, b.notes, b.subtotal, b.discount_percent, b.discount_amount, b.taxable_amount,
	b.cgst_amount, b.sgst_amount, b.igst_amount, b.total_tax, b.round_off, b.grand_total, b.total_mrp,
	b.total_savings, COALESCE(b.created_by, 0), b.created_at`

const billFrom = ` FROM bills b LEFT JOIN sales_persons sp ON sp.id = b.sales_person_id`

func scanBill(row scanner) (*models.Bill, error) {
	var b models.Bill
	err := row.Scan(&b.ID, &b.InvoiceNumber, &b.CustomerID, &b.CustomerName, &b.CustomerPhone,
		&b.CustomerAddress, &b.CustomerCity, &b.CustomerState, &b.CustomerStateCode, &b.CustomerPinCode,
		&b.CustomerGSTIN, &b.SalesPersonID, &b.SalesPersonName, &b.IsGSTBill, &b.IsInterState,
		&b.PaymentMode, &b.Notes, &b.Subtotal, &b.DiscountPercent, &b.DiscountAmount, &b.TaxableAmount,
		&b.CGSTAmount, &b.SGSTAmount, &b.IGSTAmount, &b.TotalTax, &b.RoundOff, &b.GrandTotal, &b.TotalMRP,
		&b.TotalSavings, &b.CreatedBy, &b.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

// NextInvoiceSequence takes a transaction scoped advisory lock keyed on the
// prefix and fiscal year before reading the current maximum, so two bills
// committed concurrently never compute the same number.
func (r *Repository) NextInvoiceSequence(ctx context.Context, prefix, fiscalYear string) (int, error) {
	if _, err := r.DB.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, "invoice:"+prefix+"/"+fiscalYear); err != nil {
		return 0, fmt.Errorf("failed to lock invoice sequence: %w", err)
	}

	var last int
	err := r.DB.QueryRow(ctx,
		`SELECT COALESCE(MAX(split_part(invoice_number, '/', 2)::int), 0)
		 FROM bills
		 WHERE invoice_number LIKE $1 || '/%/' || $2
		   AND split_part(invoice_number, '/', 2) ~ '^[0-9]+$'`,
		prefix, fiscalYear,
	).Scan(&last)
	if err != nil {
		return 0, fmt.Errorf("failed to read last invoice number: %w", err)
	}
	return last + 1, nil
}

func (r *Repository) InsertBill(ctx context.Context, b *models.Bill) error {
	var createdBy *int
	if b.CreatedBy > 0 {
		createdBy = &b.CreatedBy
	}
	err := r.savepoint(ctx, func(db DBTX) error {
		return db.QueryRow(ctx,
			`INSERT INTO bills(invoice_number, customer_id, customer_name, customer_phone, customer_address,
				customer_city, customer_state, customer_state_code, customer_pin_code, customer_gstin,
				sales_person_id, is_gst_bill, is_inter_state, payment_mode, notes, subtotal,
				discount_percent, discount_amount, taxable_amount, cgst_amount, sgst_amount, igst_amount,
				total_tax, round_off, grand_total, total_mrp, total_savings, created_by, created_at)
			 VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19,
				$20, $21, $22, $23, $24, $25, $26, $27, $28, $29)
			 RETURNING id`,
			b.InvoiceNumber, b.CustomerID, b.CustomerName, b.CustomerPhone, b.CustomerAddress,
			b.CustomerCity, b.CustomerState, b.CustomerStateCode, b.CustomerPinCode, b.CustomerGSTIN,
			b.SalesPersonID, b.IsGSTBill, b.IsInterState, b.PaymentMode, b.Notes, b.Subtotal,
			b.DiscountPercent, b.DiscountAmount, b.TaxableAmount, b.CGSTAmount, b.SGSTAmount, b.IGSTAmount,
			b.TotalTax, b.RoundOff, b.GrandTotal, b.TotalMRP, b.TotalSavings, createdBy, b.CreatedAt,
		).Scan(&b.ID)
	})
	if isUniqueViolation(err) {
		return fmt.Errorf("invoice %s: %w", b.InvoiceNumber, ErrDuplicate)
	}
	return err
}

func (r *Repository) InsertBillItem(ctx context.Context, item *models.BillItem) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO bill_items(bill_id, product_id, product_name, hsn_code, batch_number, expiry_date,
			unit, quantity, mrp, discount_percent, rate, amount, gst_rate, tax_amount)
		 VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING id`,
		item.BillID, item.ProductID, item.ProductName, item.HSNCode, item.BatchNumber, item.ExpiryDate,
		item.Unit, item.Quantity, item.MRP, item.DiscountPercent, item.Rate, item.Amount, item.GSTRate,
		item.TaxAmount,
	).Scan(&item.ID)
}

func (r *Repository) GetBill(ctx context.Context, id int) (*models.Bill, error) {
	bill, err := scanBill(r.DB.QueryRow(ctx, `SELECT `+billColumns+billFrom+` WHERE b.id=$1`, id))
	if err != nil {
		return nil, err
	}
	return bill, r.loadItems(ctx, bill)
}

func (r *Repository) GetBillByInvoiceNumber(ctx context.Context, number string) (*models.Bill, error) {
	bill, err := scanBill(r.DB.QueryRow(ctx, `SELECT `+billColumns+billFrom+` WHERE b.invoice_number=$1`, number))
	if err != nil {
		return nil, err
	}
	return bill, r.loadItems(ctx, bill)
}

func (r *Repository) loadItems(ctx context.Context, bill *models.Bill) error {
	rows, err := r.DB.Query(ctx,
		`SELECT id, bill_id, product_id, product_name, hsn_code, batch_number, expiry_date, unit, quantity,
			mrp, discount_percent, rate, amount, gst_rate, tax_amount
		 FROM bill_items WHERE bill_id=$1 ORDER BY id`, bill.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	bill.Items = nil
	for rows.Next() {
		var it models.BillItem
		if err := rows.Scan(&it.ID, &it.BillID, &it.ProductID, &it.ProductName, &it.HSNCode,
			&it.BatchNumber, &it.ExpiryDate, &it.Unit, &it.Quantity, &it.MRP, &it.DiscountPercent,
			&it.Rate, &it.Amount, &it.GSTRate, &it.TaxAmount); err != nil {
			return err
		}
		bill.Items = append(bill.Items, it)
	}
	return rows.Err()
}

func (r *Repository) ListBills(ctx context.Context, f models.BillFilter) ([]*models.Bill, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+billColumns+billFrom+`
		 WHERE ($1 = '' OR b.invoice_number ILIKE '%' || $1 || '%' OR b.customer_name ILIKE '%' || $1 || '%'
				OR b.customer_phone LIKE $1 || '%')
		   AND ($2::timestamptz IS NULL OR b.created_at >= $2)
		   AND ($3::timestamptz IS NULL OR b.created_at <= $3)
		 ORDER BY b.created_at DESC, b.id DESC
		 LIMIT $4`,
		f.Search, f.From, f.To, listLimit(f.Limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bills []*models.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}

func (r *Repository) InsertBillReturn(ctx context.Context, ret *models.BillReturn) error {
	var createdBy *int
	if ret.CreatedBy > 0 {
		createdBy = &ret.CreatedBy
	}
	err := r.savepoint(ctx, func(db DBTX) error {
		return db.QueryRow(ctx,
			`INSERT INTO bill_returns(bill_id, reason, created_by)
			 VALUES($1, $2, $3)
			 RETURNING id, created_at`,
			ret.BillID, ret.Reason, createdBy,
		).Scan(&ret.ID, &ret.CreatedAt)
	})
	if isUniqueViolation(err) {
		return fmt.Errorf("bill %d return: %w", ret.BillID, ErrDuplicate)
	}
	return err
}

func (r *Repository) GetBillReturn(ctx context.Context, billID int) (*models.BillReturn, error) {
	var ret models.BillReturn
	err := r.DB.QueryRow(ctx,
		`SELECT id, bill_id, reason, COALESCE(created_by, 0), created_at FROM bill_returns WHERE bill_id=$1`,
		billID,
	).Scan(&ret.ID, &ret.BillID, &ret.Reason, &ret.CreatedBy, &ret.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &ret, nil
}
