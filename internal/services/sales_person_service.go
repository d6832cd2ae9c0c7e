package services

import (
	"context"
	"errors"
	"strings"

	"billing-backend/internal/models"
	"billing-backend/internal/repositories"
)

type SalesPersonService struct {
	Store repositories.Store
}

func NewSalesPersonService(store repositories.Store) *SalesPersonService {
	return &SalesPersonService{Store: store}
}

func (s *SalesPersonService) ListSalesPersons(ctx context.Context, activeOnly bool) ([]*models.SalesPerson, error) {
	return s.Store.ListSalesPersons(ctx, activeOnly)
}

func (s *SalesPersonService) CreateSalesPerson(ctx context.Context, req *models.SalesPersonRequest) (*models.SalesPerson, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	sp := &models.SalesPerson{
		Name:     req.Name,
		Phone:    strings.TrimSpace(req.Phone),
		Email:    strings.TrimSpace(req.Email),
		IsActive: req.IsActive == nil || *req.IsActive,
	}
	if err := s.Store.CreateSalesPerson(ctx, sp); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, &ValidationError{Err: ErrDuplicateName, Details: map[string]string{"name": "exists"}}
		}
		return nil, err
	}
	return sp, nil
}

// UpdateSalesPerson edits a sales person. The Counter Sale entry is the
// default for every bill and can be neither renamed nor deactivated.
func (s *SalesPersonService) UpdateSalesPerson(ctx context.Context, id int, req *models.SalesPersonRequest) (*models.SalesPerson, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	current, err := s.Store.GetSalesPerson(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrSalesPersonNotFound
	}
	if err != nil {
		return nil, err
	}

	sp := *current
	sp.Name = req.Name
	sp.Phone = strings.TrimSpace(req.Phone)
	sp.Email = strings.TrimSpace(req.Email)
	if req.IsActive != nil {
		sp.IsActive = *req.IsActive
	}
	if current.Name == models.CounterSaleName && (sp.Name != current.Name || !sp.IsActive) {
		return nil, invalid("name", "counter_sale_fixed")
	}

	if err := s.Store.UpdateSalesPerson(ctx, &sp); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, &ValidationError{Err: ErrDuplicateName, Details: map[string]string{"name": "exists"}}
		}
		return nil, err
	}
	return &sp, nil
}
