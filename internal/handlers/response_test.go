package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"billing-backend/internal/repositories"
	"billing-backend/internal/services"
	"billing-backend/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"stock", &services.StockError{ProductID: 1, ProductName: "Triphala", Requested: 6, Available: 5}, http.StatusUnprocessableEntity, "INSUFFICIENT_STOCK"},
		{"product lookup", &services.LookupError{Err: services.ErrProductNotFound, ProductID: 3}, http.StatusNotFound, "PRODUCT_NOT_FOUND"},
		{"batch lookup", &services.LookupError{Err: services.ErrBatchNotFound, ProductID: 3, BatchNumber: "B9"}, http.StatusNotFound, "BATCH_NOT_FOUND"},
		{"validation", &services.ValidationError{Err: services.ErrValidation, Details: map[string]string{"phone": "format"}}, http.StatusUnprocessableEntity, "VALIDATION"},
		{"duplicate name", &services.ValidationError{Err: services.ErrDuplicateName, Details: map[string]string{"name": "exists"}}, http.StatusConflict, "DUPLICATE"},
		{"discount", fmt.Errorf("line 1: %w", services.ErrInvalidDiscount), http.StatusUnprocessableEntity, "INVALID_DISCOUNT"},
		{"adjustment", services.ErrInvalidAdjustment, http.StatusUnprocessableEntity, "INVALID_ADJUSTMENT"},
		{"empty cart", services.ErrEmptyCart, http.StatusUnprocessableEntity, "VALIDATION"},
		{"bill", services.ErrBillNotFound, http.StatusNotFound, "BILL_NOT_FOUND"},
		{"repository not found", repositories.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"returned", services.ErrAlreadyReturned, http.StatusConflict, "ALREADY_RETURNED"},
		{"invoice numbers", services.ErrDuplicateInvoiceNumber, http.StatusConflict, "DUPLICATE_INVOICE_NUMBER"},
		{"credentials", services.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"storage", &services.StorageError{Op: "insert bill", Err: errors.New("conn reset")}, http.StatusInternalServerError, "STORAGE_FAILURE"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tc.err)
			assert.Equal(t, tc.status, rec.Code)

			var body utils.ErrorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.code, body.Code)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestWriteErrorStockDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, &services.StockError{ProductID: 7, ProductName: "Triphala", BatchNumber: "B1", Requested: 6, Available: 5})

	var body utils.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "1", body.Details["shortfall"])
	assert.Equal(t, "B1", body.Details["batch_number"])
	assert.Equal(t, "6", body.Details["requested"])
}

func TestWriteErrorHidesDriverMessages(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, &services.StorageError{Op: "insert bill", Err: errors.New("password=secret")})
	assert.NotContains(t, rec.Body.String(), "secret")
}
