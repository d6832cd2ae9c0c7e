package models

import "time"

// CounterSaleName is the sales person every bill falls back to.
const CounterSaleName = "Counter Sale"

type SalesPerson struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type SalesPersonRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Phone    string `json:"phone" validate:"max=15"`
	Email    string `json:"email" validate:"omitempty,email"`
	IsActive *bool  `json:"is_active"`
}
