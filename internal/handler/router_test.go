package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/godeye/godeye-go/internal/middleware"
	"github.com/godeye/godeye-go/internal/model"
	"github.com/godeye/godeye-go/internal/repository"
	"github.com/godeye/godeye-go/internal/service"
	"github.com/godeye/godeye-go/internal/upstream"
)

const testSecret = "test-secret"

// fakeStore is an in-memory service.UserStore matching the repository's
// semantics, shared by the handler-level tests.
type fakeStore struct {
	mu     sync.Mutex
	users  map[int64]*model.User
	nextID int64
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
	u, ok := f.users[id]
	if !ok || u.SearchCount >= u.MaxSearches {
		return false, nil
	}
	u.SearchCount++
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

func (f *fakeStore) seed(u model.User) *model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	u.ID = f.nextID
	f.users[u.ID] = &u
	return f.users[u.ID]
}

// newTestRouter wires the full request pipeline the way cmd/api does, minus
// transport rate limits and telemetry.
func newTestRouter(store *fakeStore, upstreamURL string) http.Handler {
	authService := service.NewAuthService(store, testSecret, time.Hour, 10)
	quotaService := service.NewQuotaService(store)
	adminService := service.NewAdminService(store)

	userHandler := NewUserHandler(authService, quotaService)
	adminHandler := NewAdminHandler(adminService)
	osintHandler := NewOSINTHandler(upstream.New(upstreamURL, "test-key"), quotaService)

	r := chi.NewRouter()
	r.Post("/register", userHandler.HandleRegister)
	r.Post("/login", userHandler.HandleLogin)

	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(testSecret))
		r.Get("/profile", userHandler.HandleProfile)
		r.Get("/quota", userHandler.HandleQuota)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(testSecret))
		r.Use(middleware.AdminOnly(store))
		r.Put("/admin/role/{userID}", adminHandler.HandleUpdateRole)
		r.Put("/admin/quota/{userID}", adminHandler.HandleUpdateQuota)
		r.Post("/admin/reset/{userID}", adminHandler.HandleResetQuota)
	})

	r.Route("/osint", func(r chi.Router) {
		r.Use(middleware.JWTAuth(testSecret))
		osintHandler.Routes(r, middleware.QuotaGuard(quotaService))
	})

	return r
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, router http.Handler, method, target, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	if len(rec.Body.Bytes()) > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &env)
	}
	return rec, env
}

// loginToken registers nothing; it logs an existing user in and returns the token.
func loginToken(t *testing.T, router http.Handler, email, password string) string {
	t.Helper()

	rec, env := doJSON(t, router, http.MethodPost, "/login", "", model.LoginRequest{
		Email: email, Password: password,
	})
	require.Equal(t, http.StatusOK, rec.Code, "login failed: %s", rec.Body.String())

	var resp model.AuthResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}
