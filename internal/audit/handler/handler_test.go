package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentgate/internal/audit"
)

func TestList(t *testing.T) {
	store := audit.NewInMemoryStore(10)
	ctx := context.Background()
	require.NoError(t, store.Append(ctx, audit.Entry{ID: "1", Action: audit.ActionExport, SubjectIDs: []string{"ath-1"}}))
	require.NoError(t, store.Append(ctx, audit.Entry{ID: "2", Action: audit.ActionSync, SubjectIDs: []string{"ath-2"}}))

	r := chi.NewRouter()
	New(store).RegisterAdmin(r)

	t.Run("filters by action", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/audit?action=sync", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var body ListResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		require.Len(t, body.Entries, 1)
		assert.Equal(t, "2", body.Entries[0].ID)
	})

	t.Run("empty result is an empty list", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/audit?subject_id=nobody", nil))
		assert.JSONEq(t, `{"entries":[]}`, rec.Body.String())
	})

	t.Run("rejects bad limit", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/audit?limit=x", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
