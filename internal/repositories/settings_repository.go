package repositories

import (
	"context"

	"billing-backend/internal/models"
)

func (r *Repository) GetCompanySettings(ctx context.Context) (*models.CompanySettings, error) {
	var s models.CompanySettings
	err := r.DB.QueryRow(ctx,
		`SELECT company_name, tagline, subtitle, certifications, office_address, factory_address, phone,
			email, instagram, gstin, state_name, state_code, invoice_prefix, invoice_note,
			gst_bank_name, gst_bank_account, gst_bank_ifsc, gst_bank_branch, gst_upi_id,
			non_gst_bank_name, non_gst_bank_account, non_gst_bank_ifsc, non_gst_bank_branch, non_gst_upi_id,
			updated_at
		 FROM company_settings WHERE id = 1`,
	).Scan(&s.CompanyName, &s.Tagline, &s.Subtitle, &s.Certifications, &s.OfficeAddress,
		&s.FactoryAddress, &s.Phone, &s.Email, &s.Instagram, &s.GSTIN, &s.StateName, &s.StateCode,
		&s.InvoicePrefix, &s.InvoiceNote,
		&s.GSTBank.BankName, &s.GSTBank.AccountNumber, &s.GSTBank.IFSC, &s.GSTBank.Branch, &s.GSTBank.UPIID,
		&s.NonGSTBank.BankName, &s.NonGSTBank.AccountNumber, &s.NonGSTBank.IFSC, &s.NonGSTBank.Branch,
		&s.NonGSTBank.UPIID, &s.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (r *Repository) UpdateCompanySettings(ctx context.Context, s *models.CompanySettings) error {
	err := r.DB.QueryRow(ctx,
		`INSERT INTO company_settings(id, company_name, tagline, subtitle, certifications, office_address,
			factory_address, phone, email, instagram, gstin, state_name, state_code, invoice_prefix,
			invoice_note, gst_bank_name, gst_bank_account, gst_bank_ifsc, gst_bank_branch, gst_upi_id,
			non_gst_bank_name, non_gst_bank_account, non_gst_bank_ifsc, non_gst_bank_branch, non_gst_upi_id)
		 VALUES(1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19,
			$20, $21, $22, $23, $24)
		 ON CONFLICT (id) DO UPDATE SET
			company_name=EXCLUDED.company_name, tagline=EXCLUDED.tagline, subtitle=EXCLUDED.subtitle,
			certifications=EXCLUDED.certifications, office_address=EXCLUDED.office_address,
			factory_address=EXCLUDED.factory_address, phone=EXCLUDED.phone, email=EXCLUDED.email,
			instagram=EXCLUDED.instagram, gstin=EXCLUDED.gstin, state_name=EXCLUDED.state_name,
			state_code=EXCLUDED.state_code, invoice_prefix=EXCLUDED.invoice_prefix,
			invoice_note=EXCLUDED.invoice_note, gst_bank_name=EXCLUDED.gst_bank_name,
			gst_bank_account=EXCLUDED.gst_bank_account, gst_bank_ifsc=EXCLUDED.gst_bank_ifsc,
			gst_bank_branch=EXCLUDED.gst_bank_branch, gst_upi_id=EXCLUDED.gst_upi_id,
			non_gst_bank_name=EXCLUDED.non_gst_bank_name, non_gst_bank_account=EXCLUDED.non_gst_bank_account,
			non_gst_bank_ifsc=EXCLUDED.non_gst_bank_ifsc, non_gst_bank_branch=EXCLUDED.non_gst_bank_branch,
			non_gst_upi_id=EXCLUDED.non_gst_upi_id, updated_at=NOW()
		 RETURNING updated_at`,
		s.CompanyName, s.Tagline, s.Subtitle, s.Certifications, s.OfficeAddress, s.FactoryAddress,
		s.Phone, s.Email, s.Instagram, s.GSTIN, s.StateName, s.StateCode, s.InvoicePrefix, s.InvoiceNote,
		s.GSTBank.BankName, s.GSTBank.AccountNumber, s.GSTBank.IFSC, s.GSTBank.Branch, s.GSTBank.UPIID,
		s.NonGSTBank.BankName, s.NonGSTBank.AccountNumber, s.NonGSTBank.IFSC, s.NonGSTBank.Branch,
		s.NonGSTBank.UPIID,
	).Scan(&s.UpdatedAt)
	return err
}
