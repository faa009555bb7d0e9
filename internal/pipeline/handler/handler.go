package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"talentgate/internal/pipeline"
	dErrors "talentgate/pkg/domain-errors"
	"talentgate/pkg/platform/httputil"
	pstrings "talentgate/pkg/platform/strings"
	"talentgate/pkg/requestcontext"
	"talentgate/pkg/validation"
)

// Pipeline is the consent-gated processing and export surface.
type Pipeline interface {
	ProcessAssessment(ctx context.Context, actorID, assessmentID string) (*pipeline.Outcome, error)
	Export(ctx context.Context, actorID string, subjectIDs []string, anonymize bool) (*pipeline.Export, error)
}

type Handler struct {
	logger   *slog.Logger
	pipeline Pipeline
}

func New(p Pipeline, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, pipeline: p}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/assessments/{id}/process", h.handleProcess)
	r.Post("/exports", h.handleExport)
}

// ExportRequest is the body of an export call.
type ExportRequest struct {
	SubjectIDs []string `json:"subjectIds" validate:"required,min=1,max=500,dive,notblank"`
	Anonymize  bool     `json:"anonymize"`
}

func (r *ExportRequest) Sanitize() {
	r.SubjectIDs = pstrings.DedupeAndTrim(r.SubjectIDs)
}

func (r *ExportRequest) Validate() error {
	return validation.Validate(r)
}

func (h *Handler) handleProcess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID, ok := requireActor(ctx, w)
	if !ok {
		return
	}

	outcome, err := h.pipeline.ProcessAssessment(ctx, actorID, strings.TrimSpace(chi.URLParam(r, "id")))
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "failed to process assessment",
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, outcome)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID, ok := requireActor(ctx, w)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[ExportRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	export, err := h.pipeline.Export(ctx, actorID, req.SubjectIDs, req.Anonymize)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, export)
}

func requireActor(ctx context.Context, w http.ResponseWriter) (string, bool) {
	actorID := requestcontext.ActorID(ctx)
	if actorID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "X-Actor-ID header required"))
		return "", false
	}
	return actorID, true
}
