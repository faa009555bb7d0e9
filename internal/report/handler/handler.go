package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"talentgate/internal/report"
	dErrors "talentgate/pkg/domain-errors"
	"talentgate/pkg/platform/httputil"
	"talentgate/pkg/requestcontext"
	"talentgate/pkg/validation"
)

// Generator builds and serves stored reports.
type Generator interface {
	Generate(ctx context.Context, t report.Type, start, end time.Time) (report.Report, error)
	For(ctx context.Context, t report.Type, at time.Time) (report.Report, error)
	Get(ctx context.Context, id string) (report.Report, error)
	List(ctx context.Context, t report.Type) ([]report.Report, error)
}

type Handler struct {
	logger  *slog.Logger
	reports Generator
}

func New(reports Generator, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, reports: reports}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/reports", h.handleGenerate)
	r.Get("/reports", h.handleList)
	r.Get("/reports/{id}", h.handleGet)
}

// GenerateRequest selects either the calendar window containing At (now
// when omitted) or an explicit [Start, End) window.
type GenerateRequest struct {
	Type  report.Type `json:"type" validate:"required,oneof=daily weekly monthly quarterly annual"`
	At    *time.Time  `json:"at,omitempty"`
	Start *time.Time  `json:"start,omitempty"`
	End   *time.Time  `json:"end,omitempty"`
}

func (r *GenerateRequest) Sanitize() {
	r.Type = report.Type(strings.ToLower(strings.TrimSpace(string(r.Type))))
}

func (r *GenerateRequest) Validate() error {
	if err := validation.Validate(r); err != nil {
		return err
	}
	if (r.Start == nil) != (r.End == nil) {
		return dErrors.New(dErrors.CodeValidation, "start and end must be given together")
	}
	if r.Start != nil && r.At != nil {
		return dErrors.New(dErrors.CodeValidation, "at cannot be combined with start and end")
	}
	return nil
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[GenerateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	var (
		rep report.Report
		err error
	)
	switch {
	case req.Start != nil:
		rep, err = h.reports.Generate(ctx, req.Type, *req.Start, *req.End)
	case req.At != nil:
		rep, err = h.reports.For(ctx, req.Type, *req.At)
	default:
		rep, err = h.reports.For(ctx, req.Type, requestcontext.Now(ctx))
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate report",
			"request_id", requestID,
			"report_type", string(req.Type),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rep)
}

type ListResponse struct {
	Reports []report.Report `json:"reports"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	t := report.Type(strings.TrimSpace(r.URL.Query().Get("type")))
	if t != "" && !t.IsValid() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "unknown report type"))
		return
	}
	reports, err := h.reports.List(r.Context(), t)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if reports == nil {
		reports = []report.Report{}
	}
	httputil.WriteJSON(w, http.StatusOK, ListResponse{Reports: reports})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	rep, err := h.reports.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rep)
}
