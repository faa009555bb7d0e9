package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"talentgate/internal/alert/models"
	dErrors "talentgate/pkg/domain-errors"
	"talentgate/pkg/platform/httputil"
	"talentgate/pkg/requestcontext"
	"talentgate/pkg/validation"
)

const defaultLimit = 50

// Service is the read and state side of the alert dispatcher.
type Service interface {
	Get(ctx context.Context, id string) (models.Alert, error)
	Query(ctx context.Context, filter models.Filter) ([]models.Alert, error)
	MarkRead(ctx context.Context, id, userID string) (models.Alert, error)
	Archive(ctx context.Context, id string) (models.Alert, error)
}

type Handler struct {
	logger *slog.Logger
	alerts Service
}

func New(alerts Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, alerts: alerts}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/alerts", h.handleQuery)
	r.Get("/alerts/{id}", h.handleGet)
	r.Post("/alerts/{id}/read", h.handleMarkRead)
	r.Post("/alerts/{id}/archive", h.handleArchive)
}

type ListResponse struct {
	Alerts []models.Alert `json:"alerts"`
	Count  int            `json:"count"`
}

// handleQuery accepts type, priority, recipient, unread, archived and limit.
// unread=true narrows to alerts the calling actor has not read.
func (h *Handler) handleQuery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter, err := parseFilter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	alerts, err := h.alerts.Query(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to query alerts",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ListResponse{Alerts: alerts, Count: len(alerts)})
}

func parseFilter(r *http.Request) (models.Filter, error) {
	q := r.URL.Query()
	filter := models.Filter{
		Type:      models.Type(strings.TrimSpace(q.Get("type"))),
		Priority:  models.Priority(strings.TrimSpace(q.Get("priority"))),
		Recipient: strings.TrimSpace(q.Get("recipient")),
	}
	switch filter.Priority {
	case "", models.PriorityHigh, models.PriorityMedium, models.PriorityLow:
	default:
		return models.Filter{}, dErrors.New(dErrors.CodeBadRequest, "priority must be high, medium or low")
	}

	if unread, err := queryBool(r, "unread"); err != nil {
		return models.Filter{}, err
	} else if unread {
		actorID := requestcontext.ActorID(r.Context())
		if actorID == "" {
			return models.Filter{}, dErrors.New(dErrors.CodeUnauthorized, "X-Actor-ID header required for unread filter")
		}
		filter.UnreadFor = actorID
	}
	archived, err := queryBool(r, "archived")
	if err != nil {
		return models.Filter{}, err
	}
	filter.IncludeArchived = archived

	limit, err := httputil.QueryInt(r, "limit")
	if err != nil {
		return models.Filter{}, err
	}
	filter.Limit = validation.ClampLimit(limit, defaultLimit)
	return filter, nil
}

func queryBool(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, dErrors.New(dErrors.CodeBadRequest, name+" must be a boolean")
	}
	return v, nil
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	alert, err := h.alerts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, alert)
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := requestcontext.ActorID(ctx)
	if actorID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "X-Actor-ID header required"))
		return
	}

	alert, err := h.alerts.MarkRead(ctx, chi.URLParam(r, "id"), actorID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, alert)
}

func (h *Handler) handleArchive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	alert, err := h.alerts.Archive(ctx, chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "alert archived",
		"alert_id", alert.ID,
		"actor_id", requestcontext.ActorID(ctx),
	)
	httputil.WriteJSON(w, http.StatusOK, alert)
}
