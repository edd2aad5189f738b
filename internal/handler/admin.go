package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/godeye/godeye-go/internal/model"
	"github.com/godeye/godeye-go/internal/repository"
	"github.com/godeye/godeye-go/internal/service"
)

// AdminHandler handles the admin-only account mutations. Routes using it
// must sit behind middleware.AdminOnly.
type AdminHandler struct {
	admin *service.AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(admin *service.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// HandleUpdateRole handles PUT /admin/role/{userID} requests.
func (h *AdminHandler) HandleUpdateRole(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	var req model.UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.admin.UpdateRole(r.Context(), userID, req.Role); err != nil {
		h.respondAdminError(w, err)
		return
	}

	respondMessage(w, http.StatusOK, "role updated")
}

// HandleUpdateQuota handles PUT /admin/quota/{userID} requests.
func (h *AdminHandler) HandleUpdateQuota(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	var req model.UpdateQuotaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.admin.UpdateMaxSearches(r.Context(), userID, req.MaxSearches); err != nil {
		h.respondAdminError(w, err)
		return
	}

	respondMessage(w, http.StatusOK, "search quota updated")
}

// HandleResetQuota handles POST /admin/reset/{userID} requests.
func (h *AdminHandler) HandleResetQuota(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	if err := h.admin.ResetSearchCount(r.Context(), userID); err != nil {
		h.respondAdminError(w, err)
		return
	}

	respondMessage(w, http.StatusOK, "search count reset")
}

func (h *AdminHandler) respondAdminError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrRoleInvalid), errors.Is(err, service.ErrQuotaInvalid):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "user not found")
	default:
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func userIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return 0, false
	}
	return id, true
}
