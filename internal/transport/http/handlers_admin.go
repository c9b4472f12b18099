package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"token-slots/internal/store"
)

// SettlementJournal is the read/reconcile surface the admin endpoints
// need; both the Postgres store and the in-memory journal satisfy it.
type SettlementJournal interface {
	List(ctx context.Context, status string, unreconciledOnly bool, limit, offset int) ([]store.Settlement, error)
	Get(ctx context.Context, id string) (*store.Settlement, error)
	MarkReconciled(ctx context.Context, id string) error
}

// AdminSettlements lists journal rows, typically filtered to
// status=partially_failed&unreconciled=1 when working a reconciliation
// queue.
func (h *Handlers) AdminSettlements() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := ParsePagination(r)
		status := r.URL.Query().Get("status")
		unreconciledOnly := r.URL.Query().Get("unreconciled") == "1"
		items, err := h.journal.List(r.Context(), status, unreconciledOnly, limit, offset)
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items":  items,
			"limit":  limit,
			"offset": offset,
		})
	}
}

func (h *Handlers) AdminReconcile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "settlement_id")
		if err := h.journal.MarkReconciled(r.Context(), id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				WriteHTTPError(w, http.StatusNotFound, "not_found")
				return
			}
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		rec, err := h.journal.Get(r.Context(), id)
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		_ = json.NewEncoder(w).Encode(rec)
	}
}
