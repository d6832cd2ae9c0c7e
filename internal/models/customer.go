package models

import "time"

type Customer struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	StateCode string    `json:"state_code"`
	PinCode   string    `json:"pin_code"`
	GSTIN     string    `json:"gstin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CustomerRequest is the body for creating or updating a customer
type CustomerRequest struct {
	Name      string `json:"name" validate:"required,min=2,max=100"`
	Phone     string `json:"phone"`
	Email     string `json:"email" validate:"omitempty,email"`
	Address   string `json:"address" validate:"max=500"`
	City      string `json:"city" validate:"max=100"`
	State     string `json:"state" validate:"max=100"`
	StateCode string `json:"state_code" validate:"omitempty,len=2,numeric"`
	PinCode   string `json:"pin_code"`
	GSTIN     string `json:"gstin"`
}

type CustomerFilter struct {
	Search string
	Limit  int
}
