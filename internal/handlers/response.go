package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"billing-backend/internal/repositories"
	"billing-backend/internal/services"
	"billing-backend/internal/timeutil"
	"billing-backend/pkg/utils"

	"github.com/gorilla/mux"
)

// writeError maps service errors onto HTTP statuses and stable codes.
func writeError(w http.ResponseWriter, err error) {
	var (
		validation *services.ValidationError
		stock      *services.StockError
		lookup     *services.LookupError
	)

	switch {
	case errors.As(err, &stock):
		utils.Error(w, http.StatusUnprocessableEntity, "INSUFFICIENT_STOCK", err.Error(), map[string]string{
			"product_id":   strconv.Itoa(stock.ProductID),
			"product_name": stock.ProductName,
			"batch_number": stock.BatchNumber,
			"requested":    strconv.Itoa(stock.Requested),
			"available":    strconv.Itoa(stock.Available),
			"shortfall":    strconv.Itoa(stock.Shortfall()),
		})
	case errors.As(err, &lookup):
		code := "PRODUCT_NOT_FOUND"
		if errors.Is(err, services.ErrBatchNotFound) {
			code = "BATCH_NOT_FOUND"
		}
		details := map[string]string{"product_id": strconv.Itoa(lookup.ProductID)}
		if lookup.BatchNumber != "" {
			details["batch_number"] = lookup.BatchNumber
		}
		utils.Error(w, http.StatusNotFound, code, err.Error(), details)
	case errors.As(err, &validation) && errors.Is(err, services.ErrDuplicateName):
		utils.Error(w, http.StatusConflict, "DUPLICATE", validation.Err.Error(), validation.Details)
	case errors.As(err, &validation):
		utils.Error(w, http.StatusUnprocessableEntity, "VALIDATION", validation.Err.Error(), validation.Details)
	case errors.Is(err, services.ErrInvalidDiscount):
		utils.Error(w, http.StatusUnprocessableEntity, "INVALID_DISCOUNT", err.Error(), nil)
	case errors.Is(err, services.ErrInvalidAdjustment):
		utils.Error(w, http.StatusUnprocessableEntity, "INVALID_ADJUSTMENT", err.Error(), nil)
	case errors.Is(err, services.ErrInvalidQuantity), errors.Is(err, services.ErrEmptyCart):
		utils.Error(w, http.StatusUnprocessableEntity, "VALIDATION", err.Error(), nil)
	case errors.Is(err, services.ErrProductNotFound):
		utils.Error(w, http.StatusNotFound, "PRODUCT_NOT_FOUND", err.Error(), nil)
	case errors.Is(err, services.ErrBatchNotFound):
		utils.Error(w, http.StatusNotFound, "BATCH_NOT_FOUND", err.Error(), nil)
	case errors.Is(err, services.ErrBillNotFound):
		utils.Error(w, http.StatusNotFound, "BILL_NOT_FOUND", err.Error(), nil)
	case errors.Is(err, services.ErrCustomerNotFound):
		utils.Error(w, http.StatusNotFound, "CUSTOMER_NOT_FOUND", err.Error(), nil)
	case errors.Is(err, services.ErrSalesPersonNotFound):
		utils.Error(w, http.StatusNotFound, "SALES_PERSON_NOT_FOUND", err.Error(), nil)
	case errors.Is(err, repositories.ErrNotFound):
		utils.Error(w, http.StatusNotFound, "NOT_FOUND", "not found", nil)
	case errors.Is(err, services.ErrAlreadyReturned):
		utils.Error(w, http.StatusConflict, "ALREADY_RETURNED", err.Error(), nil)
	case errors.Is(err, services.ErrDuplicateInvoiceNumber):
		utils.Error(w, http.StatusConflict, "DUPLICATE_INVOICE_NUMBER", err.Error(), nil)
	case errors.Is(err, services.ErrProductInUse):
		utils.Error(w, http.StatusConflict, "PRODUCT_IN_USE", err.Error(), nil)
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.Error(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", err.Error(), nil)
	case errors.Is(err, services.ErrUserInactive):
		utils.Error(w, http.StatusForbidden, "USER_INACTIVE", err.Error(), nil)
	default:
		// Driver messages stay in the log
		log.Printf("[HTTP] Internal error: %v", err)
		utils.Error(w, http.StatusInternalServerError, "STORAGE_FAILURE", "the operation did not complete", nil)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.Error(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		utils.Error(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid id", nil)
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, name string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return fallback
	}
	return v
}

// queryDate reads a YYYY-MM-DD parameter as the start of that day in IST.
func queryDate(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, timeutil.IST)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
