package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/godeye/godeye-go/internal/model"
)

// QuotaChecker decides whether an authenticated user may run a quota-gated
// lookup. *service.QuotaService is the production implementation.
type QuotaChecker interface {
	Check(ctx context.Context, userID int64) (model.QuotaDecision, error)
}

// UserFinder loads the current user record. Token claims can be stale, so
// role checks re-fetch the user instead of trusting the token.
type UserFinder interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// QuotaGuard returns middleware that checks the caller's search quota before
// a costly lookup. Denied requests get a 403 carrying used/max so the caller
// can self-serve an upgrade decision; allowed requests carry the decision in
// context for the post-dispatch commit.
func QuotaGuard(quota QuotaChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			decision, err := quota.Check(r.Context(), claims.UserID)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "quota check failed")
				return
			}

			if !decision.Allowed {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				json.NewEncoder(w).Encode(map[string]any{
					"success": false,
					"message": decision.Reason,
					"data": map[string]int{
						"used": decision.Used,
						"max":  decision.Max,
					},
				})
				return
			}

			ctx := context.WithValue(r.Context(), quotaKey, decision)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// QuotaFromContext extracts the quota decision attached by QuotaGuard.
func QuotaFromContext(ctx context.Context) (model.QuotaDecision, bool) {
	decision, ok := ctx.Value(quotaKey).(model.QuotaDecision)
	return decision, ok
}

// AdminOnly returns middleware that restricts a route to admin users. The
// role is read from the store, not the token, so a demotion takes effect
// before the token expires.
func AdminOnly(users UserFinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			user, err := users.GetByID(r.Context(), claims.UserID)
			if err != nil || user.Role != model.RoleAdmin {
				writeError(w, http.StatusForbidden, "admin access required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"success": false, "message": msg})
}
