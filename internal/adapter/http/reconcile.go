package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

type reconcileRequest struct {
	ReferenceIDs []int64 `json:"reference_ids" validate:"required,min=1"`
}

// handleReconcile runs a one-shot report re-sync for an explicit set of
// references, the manual admin path next to the periodic pass.
func (h *Handler) handleReconcile(w http.ResponseWriter, r *http.Request) {
	var req reconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.reconciler.ReconcileByIDs(r.Context(), req.ReferenceIDs, time.Now()); err != nil {
		h.logger.Error("manual reconcile", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
