// Package requesttime stamps each control request with a single "now" so
// everything logged for one request shares a timestamp.
package requesttime

import (
	"net/http"
	"time"

	"digipin/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
