package service

import (
	"context"
	"sync"
	"time"

	"github.com/godeye/godeye-go/internal/model"
	"github.com/godeye/godeye-go/internal/repository"
)

// fakeStore is an in-memory UserStore mirroring the repository's semantics,
// including the atomic reserve-if-below-cap behavior.
type fakeStore struct {
	mu     sync.Mutex
	users  map[int64]*model.User
	nextID int64

	reserveCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[int64]*model.User)}
}

func (f *fakeStore) Create(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}

	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) UpdateRole(_ context.Context, id int64, role model.Role) error {
	return f.update(id, func(u *model.User) { u.Role = role })
}

func (f *fakeStore) UpdateMaxSearches(_ context.Context, id int64, n int) error {
	return f.update(id, func(u *model.User) { u.MaxSearches = n })
}

func (f *fakeStore) IncrementSearchCount(_ context.Context, id int64) error {
	return f.update(id, func(u *model.User) { u.SearchCount++ })
}

func (f *fakeStore) ReserveSearch(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.reserveCalls++
	u, ok := f.users[id]
	if !ok || u.SearchCount >= u.MaxSearches {
		return false, nil
	}
	u.SearchCount++
	u.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (f *fakeStore) ResetSearchCount(_ context.Context, id int64) error {
	return f.update(id, func(u *model.User) { u.SearchCount = 0 })
}

func (f *fakeStore) update(id int64, fn func(*model.User)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	fn(u)
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// seed adds a user directly, bypassing validation and hashing.
func (f *fakeStore) seed(u model.User) *model.User {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	u.ID = f.nextID
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	u.UpdatedAt = u.CreatedAt
	f.users[u.ID] = &u
	return f.users[u.ID]
}
