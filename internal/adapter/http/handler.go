package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"adpilot/internal/adapter/usecase"
	"adpilot/internal/core/domain"
	"adpilot/internal/core/port"
)

// Handler is the inbound adapter for the operator HTTP surface: manual
// report re-sync, circuit-breaker resets, status transitions and
// reference inspection. Advertiser-facing CRUD lives in another service.
type Handler struct {
	status     *usecase.StatusService
	reconciler *usecase.Reconciler
	campaigns  port.CampaignRepository
	refs       port.ReferenceRepository
	adapters   map[domain.Medium]port.MediumAdapter
	validate   *validator.Validate
	logger     *slog.Logger
	router     chi.Router
}

// NewHandler creates a handler with all routes configured.
func NewHandler(
	status *usecase.StatusService,
	reconciler *usecase.Reconciler,
	campaigns port.CampaignRepository,
	refs port.ReferenceRepository,
	adapters map[domain.Medium]port.MediumAdapter,
	logger *slog.Logger,
) *Handler {
	h := &Handler{
		status:     status,
		reconciler: reconciler,
		campaigns:  campaigns,
		refs:       refs,
		adapters:   adapters,
		validate:   validator.New(),
		logger:     logger,
	}
	r := chi.NewRouter()

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/reconcile", h.handleReconcile)
		r.Route("/campaigns/{id}", func(r chi.Router) {
			r.Post("/status", h.handleStatusChange)
			r.Post("/errors/reset", h.handleErrorReset)
			r.Put("/schedules", h.handleReplaceSchedules)
			r.Get("/references", h.handleListReferences)
			r.Get("/remote", h.handleRemoteCampaign)
		})
	})
	h.router = r
	return h
}

// Router returns the underlying http.Handler.
func (h *Handler) Router() http.Handler {
	return h.router
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("encode response error", slog.Any("error", err))
	}
}
