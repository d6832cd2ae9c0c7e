package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"billing-backend/internal/cache"
	"billing-backend/internal/config"
	"billing-backend/internal/gst"
	"billing-backend/internal/invoice"
	"billing-backend/internal/models"
	"billing-backend/internal/repositories"
)

// SettingsService loads the company settings row that billing and invoice
// rendering receive explicitly.
type SettingsService struct {
	Store repositories.Store
	cfg   config.BillingConfig
}

func NewSettingsService(store repositories.Store, cfg config.BillingConfig) *SettingsService {
	return &SettingsService{Store: store, cfg: cfg}
}

const settingsCacheTTL = 10 * time.Minute

// Load returns the stored settings with blanks filled from configuration.
func (s *SettingsService) Load(ctx context.Context) (*models.CompanySettings, error) {
	if data, ok := cache.GetCached(ctx, cache.CompanySettingsKey); ok {
		var cached models.CompanySettings
		if json.Unmarshal(data, &cached) == nil {
			return &cached, nil
		}
	}

	settings, err := s.Store.GetCompanySettings(ctx)
	if errors.Is(err, repositories.ErrNotFound) {
		settings = &models.CompanySettings{}
	} else if err != nil {
		return nil, err
	}
	if settings.InvoicePrefix == "" {
		settings.InvoicePrefix = s.cfg.InvoicePrefix
	}
	if settings.StateCode == "" {
		settings.StateCode = gst.StateCodeFromGSTIN(settings.GSTIN)
	}
	if settings.StateCode == "" {
		settings.StateCode = s.cfg.CompanyStateCode
	}
	if settings.StateName == "" {
		settings.StateName = s.cfg.CompanyStateName
	}
	if data, err := json.Marshal(settings); err == nil {
		cache.SetCached(ctx, cache.CompanySettingsKey, data, settingsCacheTTL)
	}
	return settings, nil
}

func (s *SettingsService) Update(ctx context.Context, settings *models.CompanySettings) (*models.CompanySettings, error) {
	settings.CompanyName = strings.TrimSpace(settings.CompanyName)
	settings.InvoicePrefix = strings.ToUpper(strings.TrimSpace(settings.InvoicePrefix))
	settings.GSTIN = strings.ToUpper(strings.TrimSpace(settings.GSTIN))
	if err := validateStruct(settings); err != nil {
		return nil, err
	}
	if !invoice.ValidPrefix(settings.InvoicePrefix) {
		return nil, invalid("invoice_prefix", "format")
	}
	if settings.GSTIN != "" {
		code := gst.StateCodeFromGSTIN(settings.GSTIN)
		if code == "" {
			return nil, invalid("gstin", "format")
		}
		if settings.StateCode == "" {
			settings.StateCode = code
		} else if settings.StateCode != code {
			return nil, invalid("state_code", "gstin_mismatch")
		}
	}
	if err := s.Store.UpdateCompanySettings(ctx, settings); err != nil {
		return nil, err
	}
	cache.InvalidateKeys(ctx, cache.CompanySettingsKey)
	return s.Load(ctx)
}
