package handlers

import (
	"net/http"

	"billing-backend/internal/models"
	"billing-backend/internal/services"
	"billing-backend/pkg/utils"
)

type SettingsHandler struct {
	Service *services.SettingsService
}

func NewSettingsHandler(s *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{Service: s}
}

func (h *SettingsHandler) GetCompanySettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Service.Load(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, settings)
}

func (h *SettingsHandler) UpdateCompanySettings(w http.ResponseWriter, r *http.Request) {
	var req models.CompanySettings
	if !decodeJSON(w, r, &req) {
		return
	}
	settings, err := h.Service.Update(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, settings)
}
