package service

import (
	"context"
	"errors"

	"github.com/godeye/godeye-go/internal/model"
)

var (
	ErrRoleInvalid  = errors.New("role must be one of user, premium, admin")
	ErrQuotaInvalid = errors.New("maxSearches must be a non-negative integer")
)

// AdminService covers the account mutations reserved for admin callers.
type AdminService struct {
	store UserStore
}

// NewAdminService creates a new AdminService.
func NewAdminService(store UserStore) *AdminService {
	return &AdminService{store: store}
}

// UpdateRole changes a user's role.
func (s *AdminService) UpdateRole(ctx context.Context, userID int64, role model.Role) error {
	if !role.IsValid() {
		return ErrRoleInvalid
	}
	return s.store.UpdateRole(ctx, userID, role)
}

// UpdateMaxSearches changes a user's search cap.
func (s *AdminService) UpdateMaxSearches(ctx context.Context, userID int64, n int) error {
	if n < 0 {
		return ErrQuotaInvalid
	}
	return s.store.UpdateMaxSearches(ctx, userID, n)
}

// ResetSearchCount zeroes a user's used-search counter.
func (s *AdminService) ResetSearchCount(ctx context.Context, userID int64) error {
	return s.store.ResetSearchCount(ctx, userID)
}
