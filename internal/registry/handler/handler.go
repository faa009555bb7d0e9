package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"talentgate/internal/registry"
	"talentgate/pkg/platform/httputil"
	pstrings "talentgate/pkg/platform/strings"
	"talentgate/pkg/requestcontext"
	"talentgate/pkg/validation"
)

// Syncer pushes consented athletes to the national registry.
type Syncer interface {
	BatchSync(ctx context.Context, actorID string, subjectIDs []string) (*registry.SyncResult, error)
}

type Handler struct {
	logger *slog.Logger
	syncer Syncer
}

func New(syncer Syncer, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, syncer: syncer}
}

// RegisterAdmin mounts the operator-only sync route.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/admin/registry/sync", h.handleSync)
}

type SyncRequest struct {
	SubjectIDs []string `json:"subjectIds" validate:"required,min=1,max=500,dive,notblank"`
}

func (r *SyncRequest) Sanitize() {
	r.SubjectIDs = pstrings.DedupeAndTrim(r.SubjectIDs)
}

func (r *SyncRequest) Validate() error {
	return validation.Validate(r)
}

func (h *Handler) handleSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SyncRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	actorID := requestcontext.ActorID(ctx)
	if actorID == "" {
		actorID = "admin"
	}
	result, err := h.syncer.BatchSync(ctx, actorID, req.SubjectIDs)
	if err != nil {
		h.logger.ErrorContext(ctx, "registry sync failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}
