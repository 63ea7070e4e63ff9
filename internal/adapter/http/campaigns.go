package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"adpilot/internal/core/domain"
	"adpilot/internal/core/port"
)

type statusChangeRequest struct {
	Status string `json:"status" validate:"required,oneof=draft waiting approved rejected"`
}

// handleStatusChange runs an explicit campaign status transition,
// executing the billing side effects it implies. Invalid transitions and
// underfunded approvals come back as 409.
func (h *Handler) handleStatusChange(w http.ResponseWriter, r *http.Request) {
	id, err := campaignID(r)
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}
	var req statusChangeRequest
	if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err = h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = h.status.ChangeStatus(r.Context(), id, domain.CampaignStatus(req.Status))
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, map[string]string{"status": req.Status})
	case errors.Is(err, port.ErrNotFound):
		http.NotFound(w, r)
	case errors.Is(err, port.ErrInvalidTransition), errors.Is(err, port.ErrInsufficientBalance):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		h.logger.Error("status change error", slog.Int64("campaign", id), slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// handleErrorReset clears a campaign's launch-failure counter. This is the
// operator action that closes the circuit breaker and lets automatic
// launches resume.
func (h *Handler) handleErrorReset(w http.ResponseWriter, r *http.Request) {
	id, err := campaignID(r)
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}
	if err = h.campaigns.ResetErrorCount(r.Context(), id); err != nil {
		if errors.Is(err, port.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error("error reset", slog.Int64("campaign", id), slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListReferences returns a campaign's launch references, newest
// first, for admin inspection of windows, error trails and report graphs.
func (h *Handler) handleListReferences(w http.ResponseWriter, r *http.Request) {
	id, err := campaignID(r)
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}
	refs, err := h.refs.ListByCampaign(r.Context(), id)
	if err != nil {
		h.logger.Error("list references", slog.Int64("campaign", id), slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, refs)
}

// handleRemoteCampaign reads the raw remote campaign payload through the
// medium adapter, the diagnostic path with the extended timeout. The most
// recent reference that actually went live names the remote campaign.
func (h *Handler) handleRemoteCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := campaignID(r)
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}
	c, err := h.campaigns.GetCampaign(r.Context(), id)
	if err != nil {
		if errors.Is(err, port.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error("remote campaign lookup", slog.Int64("campaign", id), slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	adapter, ok := h.adapters[c.Medium]
	if !ok {
		http.Error(w, "medium not enabled", http.StatusConflict)
		return
	}

	refs, err := h.refs.ListByCampaign(r.Context(), id)
	if err != nil {
		h.logger.Error("remote campaign references", slog.Int64("campaign", id), slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	var remoteID string
	for _, ref := range refs {
		if ref.RefID != nil {
			remoteID = *ref.RefID
			break
		}
	}
	if remoteID == "" {
		http.Error(w, "campaign never went live", http.StatusNotFound)
		return
	}

	payload, err := adapter.GetCampaign(r.Context(), remoteID)
	if err != nil {
		var reqErr *port.RequestError
		if errors.As(err, &reqErr) {
			http.Error(w, reqErr.Error(), http.StatusBadGateway)
			return
		}
		h.logger.Error("remote campaign fetch", slog.Int64("campaign", id), slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, payload)
}

func campaignID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
