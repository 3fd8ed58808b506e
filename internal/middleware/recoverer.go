// AngelaMos | 2026
// recoverer.go

package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/carterperez-dev/templates/social-backend/internal/core"
)

func Recoverer(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				//nolint:errorlint // re-panic must keep the sentinel intact
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				core.SetSpanError(r.Context(), fmt.Errorf("panic: %v", rec))

				logger.Error("panic recovered",
					"panic", fmt.Sprint(rec),
					"request_id", GetRequestID(r.Context()),
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)

				core.JSON(w, http.StatusInternalServerError, core.Response{
					Success: false,
					Error:   "internal server error",
					Code:    core.CodeInternal,
				})
			}()

			next.ServeHTTP(w, r)
		})
	}
}
