package service

import (
	"context"

	"github.com/godeye/godeye-go/internal/model"
)

// UserStore is the persistence contract the services depend on.
// *repository.UserRepository is the production implementation; tests swap in
// in-memory fakes.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	UpdateRole(ctx context.Context, id int64, role model.Role) error
	UpdateMaxSearches(ctx context.Context, id int64, n int) error
	IncrementSearchCount(ctx context.Context, id int64) error
	ReserveSearch(ctx context.Context, id int64) (bool, error)
	ResetSearchCount(ctx context.Context, id int64) error
}
