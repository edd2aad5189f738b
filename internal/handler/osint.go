package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/godeye/godeye-go/internal/gateway"
	"github.com/godeye/godeye-go/internal/middleware"
	"github.com/godeye/godeye-go/internal/service"
	"github.com/godeye/godeye-go/internal/upstream"
)

// OSINTHandler dispatches validated lookup requests to the upstream provider
// and returns its payload untouched.
type OSINTHandler struct {
	client *upstream.Client
	quota  *service.QuotaService
}

// NewOSINTHandler creates a new OSINTHandler.
func NewOSINTHandler(client *upstream.Client, quota *service.QuotaService) *OSINTHandler {
	return &OSINTHandler{client: client, quota: quota}
}

// Routes mounts one GET route per catalogue operation. Quota-gated
// operations additionally pass through quotaGuard.
func (h *OSINTHandler) Routes(r chi.Router, quotaGuard func(http.Handler) http.Handler) {
	for _, op := range gateway.Operations {
		handler := h.handleLookup(op)
		if op.Quota {
			r.With(quotaGuard).Get("/"+op.Name, handler)
		} else {
			r.Get("/"+op.Name, handler)
		}
	}
}

// handleLookup returns the handler for one lookup operation. Parameter
// validation happens before the upstream call; the quota commit happens
// after it, whether or not the upstream succeeded — a dispatched lookup
// consumes its slot even when the provider errors out.
func (h *OSINTHandler) handleLookup(op gateway.Operation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := op.BuildQuery(r.URL.Query())
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		body, upErr := h.client.Get(r.Context(), op.Path, params)

		if op.Quota {
			h.commitQuota(r.Context(), op.Name)
		}

		if upErr != nil {
			h.respondUpstreamError(w, op.Name, upErr)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	}
}

// commitQuota consumes the caller's reserved search slot. It runs on a
// cancellation-free context so a client disconnect after dispatch cannot
// leave the counter behind the work already done upstream.
func (h *OSINTHandler) commitQuota(ctx context.Context, opName string) {
	claims, ok := middleware.ClaimsFromContext(ctx)
	if !ok {
		return
	}
	decision, ok := middleware.QuotaFromContext(ctx)
	if !ok {
		return
	}

	if err := h.quota.Commit(context.WithoutCancel(ctx), claims.UserID, decision); err != nil {
		slog.Error("quota commit failed", "operation", opName, "user_id", claims.UserID, "error", err)
	}
}

func (h *OSINTHandler) respondUpstreamError(w http.ResponseWriter, opName string, err error) {
	var statusErr *upstream.StatusError
	if errors.As(err, &statusErr) {
		slog.Warn("upstream error status", "operation", opName, "status", statusErr.StatusCode)

		data := map[string]any{"status": statusErr.StatusCode}
		if json.Valid(statusErr.Body) {
			data["body"] = json.RawMessage(statusErr.Body)
		}
		writeJSON(w, http.StatusBadGateway, response{
			Success: false,
			Message: "upstream request failed",
			Data:    data,
		})
		return
	}

	slog.Warn("upstream request failed", "operation", opName, "error", err)
	respondError(w, http.StatusBadGateway, "upstream request failed")
}
