package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"billing-backend/internal/config"
	"billing-backend/internal/gst"
	"billing-backend/internal/models"
	"billing-backend/internal/repositories"

	"github.com/shopspring/decimal"
)

type ProductService struct {
	Store           repositories.Store
	defaultGST      decimal.Decimal
	defaultDiscount decimal.Decimal
	defaultHSN      string
	defaultMinStock int
}

func NewProductService(store repositories.Store, cfg config.BillingConfig) *ProductService {
	return &ProductService{
		Store:           store,
		defaultGST:      parsePercent(cfg.DefaultGSTRate, decimal.NewFromInt(12)),
		defaultDiscount: parsePercent(cfg.DefaultDiscountPercent, decimal.Zero),
		defaultHSN:      cfg.DefaultHSNCode,
		defaultMinStock: cfg.LowStockThreshold,
	}
}

func parsePercent(value string, fallback decimal.Decimal) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil || !gst.ValidPercent(d) {
		return fallback
	}
	return d
}

func (s *ProductService) CreateProduct(ctx context.Context, req *models.ProductRequest) (*models.Product, error) {
	p, err := s.fromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.Store.CreateProduct(ctx, p); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, &ValidationError{Err: ErrDuplicateName, Details: map[string]string{"name": "exists"}}
		}
		return nil, err
	}
	log.Printf("[Products] Created %q (id %d)", p.Name, p.ID)
	return p, nil
}

// UpdateProduct changes catalog fields only. Stock moves through batches,
// adjustments and bills.
func (s *ProductService) UpdateProduct(ctx context.Context, id int, req *models.ProductRequest) (*models.Product, error) {
	p, err := s.fromRequest(req)
	if err != nil {
		return nil, err
	}
	p.ID = id
	if err := s.Store.UpdateProduct(ctx, p); err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return nil, &LookupError{Err: ErrProductNotFound, ProductID: id}
		case errors.Is(err, repositories.ErrDuplicate):
			return nil, &ValidationError{Err: ErrDuplicateName, Details: map[string]string{"name": "exists"}}
		}
		return nil, err
	}
	return s.GetProduct(ctx, id)
}

func (s *ProductService) GetProduct(ctx context.Context, id int) (*models.Product, error) {
	p, err := s.Store.GetProduct(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, &LookupError{Err: ErrProductNotFound, ProductID: id}
	}
	return p, err
}

func (s *ProductService) ListProducts(ctx context.Context, f models.ProductFilter) ([]*models.Product, error) {
	return s.Store.ListProducts(ctx, f)
}

// DeleteProduct refuses products that still hold stock or appear on a
// bill; bill items keep a reference to the product row.
func (s *ProductService) DeleteProduct(ctx context.Context, id int) error {
	err := s.Store.InTx(ctx, func(q repositories.Queries) error {
		p, err := q.LockProduct(ctx, id)
		if errors.Is(err, repositories.ErrNotFound) {
			return &LookupError{Err: ErrProductNotFound, ProductID: id}
		}
		if err != nil {
			return storageErr("load product", err)
		}
		if p.CurrentStock > 0 {
			return fmt.Errorf("%w: %s still has %d in stock", ErrProductInUse, p.Name, p.CurrentStock)
		}
		billed, err := q.ProductHasBills(ctx, id)
		if err != nil {
			return storageErr("check bills", err)
		}
		if billed {
			return fmt.Errorf("%w: %s appears on issued bills", ErrProductInUse, p.Name)
		}
		if err := q.DeleteProduct(ctx, id); err != nil {
			return storageErr("delete product", err)
		}
		return nil
	})
	if err != nil {
		return asStorageFailure("delete product", err)
	}
	log.Printf("[Products] Deleted product %d", id)
	return nil
}

func (s *ProductService) fromRequest(req *models.ProductRequest) (*models.Product, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if req.MRP.IsNegative() {
		return nil, invalid("mrp", "gte")
	}
	if req.PurchasePrice.IsNegative() {
		return nil, invalid("purchase_price", "gte")
	}

	p := &models.Product{
		Name:            req.Name,
		Category:        strings.TrimSpace(req.Category),
		HSNCode:         strings.TrimSpace(req.HSNCode),
		Unit:            strings.TrimSpace(req.Unit),
		PackageSize:     strings.TrimSpace(req.PackageSize),
		MRP:             req.MRP.Round(2),
		DiscountPercent: s.defaultDiscount,
		PurchasePrice:   req.PurchasePrice.Round(2),
		GSTRate:         s.defaultGST,
		MinStockLevel:   s.defaultMinStock,
		Barcode:         strings.TrimSpace(req.Barcode),
		Description:     strings.TrimSpace(req.Description),
	}
	if req.DiscountPercent != nil {
		if !gst.ValidPercent(*req.DiscountPercent) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidDiscount, req.DiscountPercent)
		}
		p.DiscountPercent = *req.DiscountPercent
	}
	if req.GSTRate != nil {
		if !gst.ValidPercent(*req.GSTRate) {
			return nil, invalid("gst_rate", "range")
		}
		p.GSTRate = *req.GSTRate
	}
	if req.MinStockLevel != nil {
		p.MinStockLevel = *req.MinStockLevel
	}
	if p.HSNCode == "" {
		p.HSNCode = s.defaultHSN
	}
	if p.Unit == "" {
		p.Unit = models.ProductUnits[0]
	}
	p.SellingPrice = gst.SellingPrice(p.MRP, p.DiscountPercent)
	return p, nil
}
