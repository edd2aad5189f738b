package service

import (
	"context"
	"log/slog"

	"github.com/godeye/godeye-go/internal/model"
)

// QuotaService enforces the per-user search quota. A request passes through
// Check before dispatch and Commit afterwards; admins short-circuit both.
type QuotaService struct {
	store UserStore
}

// NewQuotaService creates a new QuotaService.
func NewQuotaService(store UserStore) *QuotaService {
	return &QuotaService{store: store}
}

// Check loads the user's current role and counters and decides whether a
// quota-gated lookup may proceed. Admin roles are allowed unconditionally
// and skip all further quota logic.
func (s *QuotaService) Check(ctx context.Context, userID int64) (model.QuotaDecision, error) {
	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return model.QuotaDecision{}, err
	}

	if user.Role.Unlimited() {
		return model.QuotaDecision{
			Allowed:   true,
			Unlimited: true,
			Used:      user.SearchCount,
			Max:       user.MaxSearches,
		}, nil
	}

	decision := model.QuotaDecision{
		Used: user.SearchCount,
		Max:  user.MaxSearches,
	}
	if user.SearchCount >= user.MaxSearches {
		decision.Reason = "search quota exhausted"
		return decision, nil
	}

	decision.Allowed = true
	decision.Remaining = user.MaxSearches - user.SearchCount
	return decision, nil
}

// Commit consumes one search slot after a dispatch. It is a no-op for
// unlimited decisions. The counter moves via a single conditional UPDATE in
// the store, so it can never exceed the cap even when concurrent requests
// passed Check together; a request that loses that race has already been
// dispatched and is only logged.
func (s *QuotaService) Commit(ctx context.Context, userID int64, decision model.QuotaDecision) error {
	if decision.Unlimited {
		return nil
	}

	reserved, err := s.store.ReserveSearch(ctx, userID)
	if err != nil {
		return err
	}
	if !reserved {
		slog.Warn("quota commit found counter already at cap", "user_id", userID)
	}
	return nil
}
