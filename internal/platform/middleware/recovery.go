package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	dErrors "party/pkg/domain-errors"
	"party/pkg/platform/httputil"
	"party/pkg/requestcontext"
)

// Recover turns a handler panic into a 500 FAIL envelope.
func Recover(logger *slog.Logger, errMaxLength int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				ctx := r.Context()
				logger.ErrorContext(ctx, "panic recovered",
					"panic", fmt.Sprint(rec),
					"stack", string(debug.Stack()),
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "An unexpected error occurred"), errMaxLength)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
