// Package admin guards operator routes with a shared token.
package admin

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	dErrors "talentgate/pkg/domain-errors"
	"talentgate/pkg/platform/httputil"
	"talentgate/pkg/requestcontext"
)

// RequireAdminToken rejects requests whose X-Admin-Token does not match
// expected. An empty expected token rejects everything. On success the
// X-Admin-Actor-ID header, when present, becomes the request actor.
func RequireAdminToken(expected string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token := r.Header.Get("X-Admin-Token")
			if expected == "" || subtle.ConstantTimeCompare([]byte(token), []byte(expected)) != 1 {
				logger.WarnContext(ctx, "admin token mismatch",
					"request_id", requestcontext.RequestID(ctx),
					"path", r.URL.Path,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "admin token required"))
				return
			}

			if actorID := strings.TrimSpace(r.Header.Get("X-Admin-Actor-ID")); actorID != "" {
				ctx = requestcontext.WithActorID(ctx, "admin:"+actorID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
