package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/godeye/godeye-go/internal/model"
	"github.com/godeye/godeye-go/internal/repository"
)

func TestQuotaCheckAllowed(t *testing.T) {
	store := newFakeStore()
	svc := NewQuotaService(store)

	u := store.seed(model.User{Role: model.RoleUser, SearchCount: 1, MaxSearches: 3})

	decision, err := svc.Check(context.Background(), u.ID)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.False(t, decision.Unlimited)
	assert.Equal(t, 2, decision.Remaining)
	assert.Equal(t, 1, decision.Used)
	assert.Equal(t, 3, decision.Max)
}

func TestQuotaCheckDeniedAtLimit(t *testing.T) {
	store := newFakeStore()
	svc := NewQuotaService(store)

	u := store.seed(model.User{Role: model.RoleUser, SearchCount: 3, MaxSearches: 3})

	decision, err := svc.Check(context.Background(), u.ID)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, 3, decision.Used)
	assert.Equal(t, 3, decision.Max)
	assert.NotEmpty(t, decision.Reason)
}

func TestQuotaCheckAllowedAfterReset(t *testing.T) {
	store := newFakeStore()
	svc := NewQuotaService(store)

	u := store.seed(model.User{Role: model.RoleUser, SearchCount: 3, MaxSearches: 3})

	require.NoError(t, store.ResetSearchCount(context.Background(), u.ID))

	decision, err := svc.Check(context.Background(), u.ID)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, 3, decision.Remaining)
}

func TestQuotaCheckAdminUnlimited(t *testing.T) {
	store := newFakeStore()
	svc := NewQuotaService(store)

	// Counters past the cap must not matter for admins.
	u := store.seed(model.User{Role: model.RoleAdmin, SearchCount: 99, MaxSearches: 3})

	decision, err := svc.Check(context.Background(), u.ID)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.True(t, decision.Unlimited)
}

func TestQuotaCheckUnknownUser(t *testing.T) {
	svc := NewQuotaService(newFakeStore())

	_, err := svc.Check(context.Background(), 404)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestQuotaCommitConsumesSlot(t *testing.T) {
	store := newFakeStore()
	svc := NewQuotaService(store)

	u := store.seed(model.User{Role: model.RoleUser, SearchCount: 0, MaxSearches: 3})

	decision, err := svc.Check(context.Background(), u.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Commit(context.Background(), u.ID, decision))

	after, err := store.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, after.SearchCount)
}

func TestQuotaCommitUnlimitedIsNoop(t *testing.T) {
	store := newFakeStore()
	svc := NewQuotaService(store)

	u := store.seed(model.User{Role: model.RoleAdmin, SearchCount: 0, MaxSearches: 3})

	decision, err := svc.Check(context.Background(), u.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Commit(context.Background(), u.ID, decision))

	after, err := store.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, after.SearchCount)
	assert.Equal(t, 0, store.reserveCalls)
}

// TestQuotaConcurrentCommits drives many simultaneous check+commit cycles at
// a nearly exhausted user. The conditional reserve keeps the counter at the
// cap regardless of how many requests pass Check together.
func TestQuotaConcurrentCommits(t *testing.T) {
	store := newFakeStore()
	svc := NewQuotaService(store)

	u := store.seed(model.User{Role: model.RoleUser, SearchCount: 2, MaxSearches: 3})

	const n = 16
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			decision, err := svc.Check(context.Background(), u.ID)
			if err != nil || !decision.Allowed {
				return
			}
			_ = svc.Commit(context.Background(), u.ID, decision)
		}()
	}
	wg.Wait()

	after, err := store.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, after.SearchCount, "search count must never pass the cap")
}

func TestAdminServiceUpdates(t *testing.T) {
	store := newFakeStore()
	svc := NewAdminService(store)
	ctx := context.Background()

	u := store.seed(model.User{Role: model.RoleUser, SearchCount: 2, MaxSearches: 3})

	require.NoError(t, svc.UpdateRole(ctx, u.ID, model.RolePremium))
	require.NoError(t, svc.UpdateMaxSearches(ctx, u.ID, 50))
	require.NoError(t, svc.ResetSearchCount(ctx, u.ID))

	after, err := store.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RolePremium, after.Role)
	assert.Equal(t, 50, after.MaxSearches)
	assert.Equal(t, 0, after.SearchCount)
}

func TestAdminServiceValidation(t *testing.T) {
	store := newFakeStore()
	svc := NewAdminService(store)
	ctx := context.Background()

	u := store.seed(model.User{Role: model.RoleUser, MaxSearches: 3})

	assert.ErrorIs(t, svc.UpdateRole(ctx, u.ID, model.Role("superuser")), ErrRoleInvalid)
	assert.ErrorIs(t, svc.UpdateMaxSearches(ctx, u.ID, -1), ErrQuotaInvalid)
	assert.ErrorIs(t, svc.UpdateRole(ctx, 404, model.RoleAdmin), repository.ErrUserNotFound)
}
