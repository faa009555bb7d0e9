package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"talentgate/internal/consent/models"
	dErrors "talentgate/pkg/domain-errors"
	"talentgate/pkg/platform/httputil"
	"talentgate/pkg/requestcontext"
)

// Service is the consent record lifecycle.
type Service interface {
	Record(ctx context.Context, subjectID string, scopes models.Scopes, retentionYears int) (*models.Record, error)
	Get(ctx context.Context, subjectID string) (*models.Record, error)
	Delete(ctx context.Context, subjectID string) error
	PurgeExpired(ctx context.Context) ([]string, error)
}

// AccessValidator decides per-subject access for a purpose.
type AccessValidator interface {
	Validate(ctx context.Context, actorID string, subjectIDs []string, purpose models.Purpose) *models.ValidationResult
}

// Handler serves consent and access validation endpoints.
type Handler struct {
	logger    *slog.Logger
	consent   Service
	validator AccessValidator
}

func New(consent Service, validator AccessValidator, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, consent: consent, validator: validator}
}

// Register mounts the public consent routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/consents", h.handleRecord)
	r.Get("/consents/{subjectID}", h.handleGet)
	r.Delete("/consents/{subjectID}", h.handleDelete)
	r.Post("/access/validate", h.handleValidate)
}

// RegisterAdmin mounts operator routes. The caller guards them.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/admin/consents/purge", h.handlePurge)
}

// RecordResponse is the stored record plus its derived expiry.
type RecordResponse struct {
	*models.Record
	ExpiresAt string `json:"expiresAt"`
	Expired   bool   `json:"expired"`
}

func (h *Handler) handleRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.RecordRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	record, err := h.consent.Record(ctx, req.SubjectID, req.Scopes, req.RetentionYears)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to record consent",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, h.toResponse(ctx, record))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subjectID := strings.TrimSpace(chi.URLParam(r, "subjectID"))

	record, err := h.consent.Get(ctx, subjectID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.toResponse(ctx, record))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subjectID := strings.TrimSpace(chi.URLParam(r, "subjectID"))

	if err := h.consent.Delete(ctx, subjectID); err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "failed to delete consent",
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	actorID := requestcontext.ActorID(ctx)
	if actorID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "X-Actor-ID header required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[models.ValidateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result := h.validator.Validate(ctx, actorID, req.SubjectIDs, req.Purpose)
	httputil.WriteJSON(w, http.StatusOK, result)
}

// PurgeResponse lists the subjects whose expired consent was erased.
type PurgeResponse struct {
	Purged []string `json:"purged"`
	Count  int      `json:"count"`
}

func (h *Handler) handlePurge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	purged, err := h.consent.PurgeExpired(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to purge expired consent",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if purged == nil {
		purged = []string{}
	}
	httputil.WriteJSON(w, http.StatusOK, PurgeResponse{Purged: purged, Count: len(purged)})
}

func (h *Handler) toResponse(ctx context.Context, record *models.Record) RecordResponse {
	return RecordResponse{
		Record:    record,
		ExpiresAt: record.ExpiresAt().UTC().Format(time.RFC3339),
		Expired:   record.IsExpired(requestcontext.Now(ctx)),
	}
}
