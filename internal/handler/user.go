package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/godeye/godeye-go/internal/middleware"
	"github.com/godeye/godeye-go/internal/model"
	"github.com/godeye/godeye-go/internal/repository"
	"github.com/godeye/godeye-go/internal/service"
)

// UserHandler handles registration, login, profile and quota-status requests.
type UserHandler struct {
	auth  *service.AuthService
	quota *service.QuotaService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(auth *service.AuthService, quota *service.QuotaService) *UserHandler {
	return &UserHandler{auth: auth, quota: quota}
}

// HandleRegister handles POST /register requests.
func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB

	var req model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.auth.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFieldsRequired),
			errors.Is(err, service.ErrNameInvalid),
			errors.Is(err, service.ErrEmailInvalid),
			errors.Is(err, service.ErrPasswordTooShort),
			errors.Is(err, service.ErrPasswordTooWeak),
			errors.Is(err, service.ErrEmailTaken):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	respondData(w, http.StatusCreated, user)
}

// HandleLogin handles POST /login requests. All authentication failures get
// the same generic message so the response never reveals whether the email
// exists.
func (h *UserHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB

	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.auth.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondData(w, http.StatusOK, resp)
}

// HandleProfile handles GET /profile requests.
func (h *UserHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := h.auth.GetUser(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondData(w, http.StatusOK, user)
}

// HandleQuota handles GET /quota requests, reporting the caller's current
// search usage. Admins see "unlimited" in place of a remaining count.
func (h *UserHandler) HandleQuota(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	decision, err := h.quota.Check(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	var remaining any = decision.Remaining
	if decision.Unlimited {
		remaining = "unlimited"
	}

	respondData(w, http.StatusOK, map[string]any{
		"used":      decision.Used,
		"max":       decision.Max,
		"remaining": remaining,
	})
}
