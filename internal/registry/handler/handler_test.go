package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentgate/internal/registry"
	"talentgate/pkg/requestcontext"
)

type recordingSyncer struct {
	actor string
	ids   []string
}

func (s *recordingSyncer) BatchSync(_ context.Context, actorID string, ids []string) (*registry.SyncResult, error) {
	s.actor = actorID
	s.ids = ids
	return &registry.SyncResult{}, nil
}

func serve(t *testing.T, syncer Syncer, body, actor string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	New(syncer, slog.New(slog.DiscardHandler)).RegisterAdmin(r)

	req := httptest.NewRequest(http.MethodPost, "/admin/registry/sync", strings.NewReader(body))
	if actor != "" {
		req = req.WithContext(requestcontext.WithActorID(req.Context(), actor))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestSync(t *testing.T) {
	t.Run("forwards deduplicated subjects with the admin actor", func(t *testing.T) {
		syncer := &recordingSyncer{}
		rec := serve(t, syncer, `{"subjectIds":["a","a "," b"]}`, "admin:ops-1")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "admin:ops-1", syncer.actor)
		assert.Equal(t, []string{"a", "b"}, syncer.ids)
	})

	t.Run("falls back to a generic admin actor", func(t *testing.T) {
		syncer := &recordingSyncer{}
		serve(t, syncer, `{"subjectIds":["a"]}`, "")
		assert.Equal(t, "admin", syncer.actor)
	})

	t.Run("rejects empty batches", func(t *testing.T) {
		rec := serve(t, &recordingSyncer{}, `{"subjectIds":[]}`, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
