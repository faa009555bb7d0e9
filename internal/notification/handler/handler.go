package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"talentgate/internal/notification/models"
	"talentgate/pkg/platform/httputil"
	"talentgate/pkg/requestcontext"
)

// Service manages notification rules.
type Service interface {
	Upsert(ctx context.Context, id string, req *models.RuleRequest) (models.Rule, error)
	Get(ctx context.Context, id string) (models.Rule, error)
	List(ctx context.Context) ([]models.Rule, error)
	SetActive(ctx context.Context, id string, active bool) (models.Rule, error)
}

type Handler struct {
	logger *slog.Logger
	rules  Service
}

func New(rules Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, rules: rules}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/rules", h.handleList)
	r.Post("/rules", h.handleCreate)
	r.Get("/rules/{id}", h.handleGet)
	r.Put("/rules/{id}", h.handleReplace)
	r.Patch("/rules/{id}/active", h.handleSetActive)
}

type ListResponse struct {
	Rules []models.Rule `json:"rules"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	rules, err := h.rules.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if rules == nil {
		rules = []models.Rule{}
	}
	httputil.WriteJSON(w, http.StatusOK, ListResponse{Rules: rules})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, "", http.StatusCreated)
}

func (h *Handler) handleReplace(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, chi.URLParam(r, "id"), http.StatusOK)
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request, id string, status int) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.RuleRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	rule, err := h.rules.Upsert(ctx, id, req)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to save rule",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, status, rule)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	rule, err := h.rules.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rule)
}

func (h *Handler) handleSetActive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeJSON[models.ActiveRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	rule, err := h.rules.SetActive(ctx, chi.URLParam(r, "id"), req.Active)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rule)
}
