package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"adpilot/internal/core/domain"
)

type scheduleRow struct {
	Weekday     int `json:"weekday" validate:"min=0,max=6"`
	StartMinute int `json:"start_minute" validate:"min=0,max=1439"`
	EndMinute   int `json:"end_minute" validate:"min=1,max=1440,gtfield=StartMinute"`
}

type replaceSchedulesRequest struct {
	Schedules []scheduleRow `json:"schedules" validate:"dive"`
}

// handleReplaceSchedules swaps a campaign's weekly schedule set. Rows are
// validated per field, then the whole set is checked for same-weekday
// overlap; a bad set is rejected wholesale and never reaches the
// scheduler.
func (h *Handler) handleReplaceSchedules(w http.ResponseWriter, r *http.Request) {
	id, err := campaignID(r)
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}
	var req replaceSchedulesRequest
	if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err = h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rows := make([]domain.Schedule, 0, len(req.Schedules))
	for _, s := range req.Schedules {
		rows = append(rows, domain.Schedule{
			CampaignID: id,
			Weekday:    time.Weekday(s.Weekday),
			StartTime:  domain.TimeOfDay(s.StartMinute),
			EndTime:    domain.TimeOfDay(s.EndMinute),
		})
	}
	if err = domain.ValidateSchedules(rows); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err = h.campaigns.ReplaceSchedules(r.Context(), id, rows); err != nil {
		h.logger.Error("replace schedules", slog.Int64("campaign", id), slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
