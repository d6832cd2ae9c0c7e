package handlers

import (
	"net/http"

	"billing-backend/internal/middleware"
	"billing-backend/internal/models"
	"billing-backend/internal/services"
	"billing-backend/pkg/utils"
)

type StockHandler struct {
	Service *services.StockService
}

func NewStockHandler(s *services.StockService) *StockHandler {
	return &StockHandler{Service: s}
}

func (h *StockHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	var req models.StockAdjustmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	userID, _ := middleware.GetUserIDFromContext(r.Context())
	entry, err := h.Service.AdjustStock(r.Context(), &req, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, entry)
}

// ListStockHistory filters by ?product_id=, ?bill_id= and ?type=.
func (h *StockHandler) ListStockHistory(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Service.ListStockHistory(r.Context(), models.StockHistoryFilter{
		ProductID:  queryInt(r, "product_id", 0),
		BillID:     queryInt(r, "bill_id", 0),
		ChangeType: r.URL.Query().Get("type"),
		Limit:      queryInt(r, "limit", 0),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, rows)
}
