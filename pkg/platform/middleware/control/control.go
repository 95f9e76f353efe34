// Package control guards the local control API with a shared token.
package control

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"digipin/pkg/requestcontext"
)

// Header carries the control token.
const Header = "X-Control-Token"

// RequireToken rejects requests whose X-Control-Token does not match
// expectedToken. An empty expectedToken disables the check.
func RequireToken(expectedToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if expectedToken == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(Header)
			if subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
				ctx := r.Context()
				logger.WarnContext(ctx, "control token mismatch",
					"request_id", requestcontext.RequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"control token required"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
