package services

import (
	"errors"
	"fmt"
)

// Failure kinds reported to callers. Match with errors.Is; the concrete
// error usually carries more context (see StockError and LookupError).
var (
	ErrProductNotFound        = errors.New("product not found")
	ErrBatchNotFound          = errors.New("batch not found")
	ErrInsufficientStock      = errors.New("insufficient stock")
	ErrInvalidDiscount        = errors.New("discount must be between 0 and 100")
	ErrInvalidQuantity        = errors.New("quantity must be a positive whole number")
	ErrInvalidAdjustment      = errors.New("invalid stock adjustment")
	ErrDuplicateInvoiceNumber = errors.New("could not allocate a unique invoice number")
	ErrStorageFailure         = errors.New("storage failure")

	ErrEmptyCart           = errors.New("cart is empty")
	ErrBillNotFound        = errors.New("bill not found")
	ErrAlreadyReturned     = errors.New("bill has already been returned")
	ErrCustomerNotFound    = errors.New("customer not found")
	ErrSalesPersonNotFound = errors.New("sales person not found")
	ErrProductInUse        = errors.New("product cannot be deleted")
	ErrDuplicateName       = errors.New("name already exists")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrUserInactive        = errors.New("user account is disabled")
)

// ValidationError reports request fields that failed validation.
type ValidationError struct {
	Err     error
	Details map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Err, e.Details)
}

func (e *ValidationError) Unwrap() error { return e.Err }

var ErrValidation = errors.New("validation failed")

func invalid(field, msg string) error {
	return &ValidationError{Err: ErrValidation, Details: map[string]string{field: msg}}
}

// StockError describes a cart line that asks for more than is on hand.
type StockError struct {
	ProductID   int
	ProductName string
	BatchNumber string
	Requested   int
	Available   int
}

func (e *StockError) Error() string {
	where := e.ProductName
	if e.BatchNumber != "" {
		where = fmt.Sprintf("%s (batch %s)", e.ProductName, e.BatchNumber)
	}
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d, short by %d",
		where, e.Requested, e.Available, e.Shortfall())
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }

// Shortfall is how many units are missing.
func (e *StockError) Shortfall() int {
	return e.Requested - e.Available
}

// LookupError names the product or batch that could not be resolved.
type LookupError struct {
	Err         error
	ProductID   int
	BatchNumber string
}

func (e *LookupError) Error() string {
	if e.BatchNumber != "" {
		return fmt.Sprintf("%s: product %d batch %q", e.Err, e.ProductID, e.BatchNumber)
	}
	return fmt.Sprintf("%s: product %d", e.Err, e.ProductID)
}

func (e *LookupError) Unwrap() error { return e.Err }

// StorageError wraps a failure from the database during a write. The
// transaction was rolled back; nothing it touched persisted.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStorageFailure, e.Op, e.Err)
}

// Is lets errors.Is(err, ErrStorageFailure) match while errors.Unwrap still
// reaches the driver error.
func (e *StorageError) Is(target error) bool { return target == ErrStorageFailure }

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// domainErrors are failures a caller can act on; anything else coming out
// of a transaction is a storage problem.
var domainErrors = []error{
	ErrProductNotFound, ErrBatchNotFound, ErrInsufficientStock, ErrInvalidDiscount,
	ErrInvalidQuantity, ErrInvalidAdjustment, ErrDuplicateInvoiceNumber, ErrStorageFailure,
	ErrEmptyCart, ErrBillNotFound, ErrAlreadyReturned, ErrCustomerNotFound,
	ErrSalesPersonNotFound, ErrProductInUse, ErrDuplicateName, ErrValidation,
}

func asStorageFailure(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, known := range domainErrors {
		if errors.Is(err, known) {
			return err
		}
	}
	return storageErr(op, err)
}

// FailureReason is a short label for metrics and logs.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, ErrProductNotFound), errors.Is(err, ErrBatchNotFound),
		errors.Is(err, ErrCustomerNotFound), errors.Is(err, ErrSalesPersonNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidDiscount):
		return "invalid_discount"
	case errors.Is(err, ErrInvalidQuantity), errors.Is(err, ErrEmptyCart), errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrDuplicateInvoiceNumber):
		return "invoice_number"
	case errors.Is(err, ErrStorageFailure):
		return "storage"
	default:
		return "other"
	}
}
