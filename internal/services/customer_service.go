package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"billing-backend/internal/gst"
	"billing-backend/internal/models"
	"billing-backend/internal/repositories"
)

type CustomerService struct {
	Store repositories.Store
}

func NewCustomerService(store repositories.Store) *CustomerService {
	return &CustomerService{Store: store}
}

func (s *CustomerService) CreateCustomer(ctx context.Context, req *models.CustomerRequest) (*models.Customer, error) {
	c, err := customerFromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.Store.CreateCustomer(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CustomerService) UpdateCustomer(ctx context.Context, id int, req *models.CustomerRequest) (*models.Customer, error) {
	c, err := customerFromRequest(req)
	if err != nil {
		return nil, err
	}
	c.ID = id
	if err := s.Store.UpdateCustomer(ctx, c); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrCustomerNotFound, id)
		}
		return nil, err
	}
	return s.GetCustomer(ctx, id)
}

func (s *CustomerService) GetCustomer(ctx context.Context, id int) (*models.Customer, error) {
	c, err := s.Store.GetCustomer(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w: id %d", ErrCustomerNotFound, id)
	}
	return c, err
}

func (s *CustomerService) SearchByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, invalid("phone", "required")
	}
	c, err := s.Store.GetCustomerByPhone(ctx, phone)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w: phone %s", ErrCustomerNotFound, phone)
	}
	return c, err
}

func (s *CustomerService) ListCustomers(ctx context.Context, f models.CustomerFilter) ([]*models.Customer, error) {
	f.Search = strings.TrimSpace(f.Search)
	return s.Store.ListCustomers(ctx, f)
}

func customerFromRequest(req *models.CustomerRequest) (*models.Customer, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	c := &models.Customer{
		Name:      req.Name,
		Phone:     strings.TrimSpace(req.Phone),
		Email:     strings.TrimSpace(req.Email),
		Address:   strings.TrimSpace(req.Address),
		City:      strings.TrimSpace(req.City),
		State:     strings.TrimSpace(req.State),
		StateCode: strings.TrimSpace(req.StateCode),
		PinCode:   strings.TrimSpace(req.PinCode),
		GSTIN:     strings.ToUpper(strings.TrimSpace(req.GSTIN)),
	}

	details := map[string]string{}
	if c.Phone != "" && !gst.ValidPhone(c.Phone) {
		details["phone"] = "format"
	}
	if c.PinCode != "" && !gst.ValidPinCode(c.PinCode) {
		details["pin_code"] = "format"
	}
	if c.GSTIN != "" {
		code := gst.StateCodeFromGSTIN(c.GSTIN)
		switch {
		case code == "":
			details["gstin"] = "format"
		case c.StateCode == "":
			c.StateCode = code
		case c.StateCode != code:
			details["state_code"] = "gstin_mismatch"
		}
	}
	if len(details) > 0 {
		return nil, &ValidationError{Err: ErrValidation, Details: details}
	}
	return c, nil
}
