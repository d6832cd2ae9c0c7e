package handlers

import (
	"net/http"

	"billing-backend/internal/models"
	"billing-backend/internal/services"
	"billing-backend/pkg/utils"
)

type SalesPersonHandler struct {
	Service *services.SalesPersonService
}

func NewSalesPersonHandler(s *services.SalesPersonService) *SalesPersonHandler {
	return &SalesPersonHandler{Service: s}
}

// ListSalesPersons returns active entries unless ?all=true.
func (h *SalesPersonHandler) ListSalesPersons(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("all") != "true"
	people, err := h.Service.ListSalesPersons(r.Context(), activeOnly)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, people)
}

func (h *SalesPersonHandler) CreateSalesPerson(w http.ResponseWriter, r *http.Request) {
	var req models.SalesPersonRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sp, err := h.Service.CreateSalesPerson(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, sp)
}

func (h *SalesPersonHandler) UpdateSalesPerson(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req models.SalesPersonRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sp, err := h.Service.UpdateSalesPerson(r.Context(), id, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, sp)
}
