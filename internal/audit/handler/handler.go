package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"talentgate/internal/audit"
	dErrors "talentgate/pkg/domain-errors"
	"talentgate/pkg/platform/httputil"
	"talentgate/pkg/validation"
)

const defaultLimit = 100

type Lister interface {
	List(ctx context.Context, filter audit.Filter) ([]audit.Entry, error)
}

type Handler struct {
	entries Lister
}

func New(entries Lister) *Handler {
	return &Handler{entries: entries}
}

func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/audit", h.handleList)
}

type ListResponse struct {
	Entries []audit.Entry `json:"entries"`
}

// handleList filters by action, subject_id and data_type, newest first.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := httputil.QueryInt(r, "limit")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	entries, err := h.entries.List(r.Context(), audit.Filter{
		Action:    audit.Action(strings.TrimSpace(q.Get("action"))),
		SubjectID: strings.TrimSpace(q.Get("subject_id")),
		DataType:  strings.TrimSpace(q.Get("data_type")),
		Limit:     validation.ClampLimit(limit, defaultLimit),
	})
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list audit entries"))
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	httputil.WriteJSON(w, http.StatusOK, ListResponse{Entries: entries})
}
