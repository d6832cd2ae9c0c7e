package handlers

import (
	"net/http"

	"billing-backend/internal/middleware"
	"billing-backend/internal/models"
	"billing-backend/internal/services"
	"billing-backend/pkg/utils"
)

type AuthHandler struct {
	Service *services.UserService
}

func NewAuthHandler(s *services.UserService) *AuthHandler {
	return &AuthHandler{Service: s}
}

// Login handles user authentication
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	authResp, err := h.Service.Login(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, authResp)
}

// Me returns the signed-in user
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	user, err := h.Service.GetUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, user)
}

// CreateUser adds a cashier or admin account (admin only)
func (h *AuthHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.Service.CreateUser(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, user)
}
