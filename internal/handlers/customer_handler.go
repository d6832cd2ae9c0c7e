package handlers

import (
	"net/http"

	"billing-backend/internal/models"
	"billing-backend/internal/services"
	"billing-backend/pkg/utils"
)

type CustomerHandler struct {
	Service *services.CustomerService
}

func NewCustomerHandler(s *services.CustomerService) *CustomerHandler {
	return &CustomerHandler{Service: s}
}

func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req models.CustomerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	customer, err := h.Service.CreateCustomer(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, customer)
}

func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	customer, err := h.Service.GetCustomer(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, customer)
}

// SearchCustomers finds one customer by ?phone= or lists matches for ?q=.
func (h *CustomerHandler) SearchCustomers(w http.ResponseWriter, r *http.Request) {
	if phone := r.URL.Query().Get("phone"); phone != "" {
		customer, err := h.Service.SearchByPhone(r.Context(), phone)
		if err != nil {
			writeError(w, err)
			return
		}
		utils.JSON(w, http.StatusOK, customer)
		return
	}

	q := r.URL.Query().Get("q")
	if q == "" {
		utils.Error(w, http.StatusBadRequest, "BAD_REQUEST", "phone or q parameter is required", nil)
		return
	}
	customers, err := h.Service.ListCustomers(r.Context(), models.CustomerFilter{Search: q, Limit: queryInt(r, "limit", 0)})
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, customers)
}

func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.Service.ListCustomers(r.Context(), models.CustomerFilter{
		Search: r.URL.Query().Get("q"),
		Limit:  queryInt(r, "limit", 0),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, customers)
}

func (h *CustomerHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req models.CustomerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	customer, err := h.Service.UpdateCustomer(r.Context(), id, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, customer)
}
