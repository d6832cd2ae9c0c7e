package handlers

import (
	"net/http"

	"billing-backend/internal/middleware"
	"billing-backend/internal/models"
	"billing-backend/internal/services"
	"billing-backend/pkg/utils"
)

type ProductHandler struct {
	Service *services.ProductService
	Stock   *services.StockService
}

func NewProductHandler(s *services.ProductService, stock *services.StockService) *ProductHandler {
	return &ProductHandler{Service: s, Stock: stock}
}

func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	products, err := h.Service.ListProducts(r.Context(), models.ProductFilter{
		Search:   q.Get("q"),
		Category: q.Get("category"),
		Limit:    queryInt(r, "limit", 0),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, products)
}

func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req models.ProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.Service.CreateProduct(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	product, err := h.Service.GetProduct(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, product)
}

func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req models.ProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.Service.UpdateProduct(r.Context(), id, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, product)
}

func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Service.DeleteProduct(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) ListBatches(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	batches, err := h.Stock.ListBatches(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, batches)
}

func (h *ProductHandler) AddBatch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req models.BatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	userID, _ := middleware.GetUserIDFromContext(r.Context())
	batch, err := h.Stock.AddBatch(r.Context(), id, &req, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, batch)
}

func (h *ProductHandler) ListLowStock(w http.ResponseWriter, r *http.Request) {
	products, err := h.Stock.ListLowStock(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, products)
}

// ListExpiringBatches takes ?days=; zero or missing uses the configured window.
func (h *ProductHandler) ListExpiringBatches(w http.ResponseWriter, r *http.Request) {
	batches, err := h.Stock.ListExpiringBatches(r.Context(), queryInt(r, "days", 0))
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, batches)
}
