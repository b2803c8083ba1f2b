package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"party/internal/platform/authtoken"
	dErrors "party/pkg/domain-errors"
	"party/pkg/platform/httputil"
	"party/pkg/requestcontext"
)

// TokenValidator verifies a bearer token and returns its claims.
type TokenValidator interface {
	Validate(tokenString string) (*authtoken.Claims, error)
}

// RequireAuth rejects requests without a valid bearer token with a 401 FAIL
// envelope. The token subject is placed on the context.
func RequireAuth(validator TokenValidator, logger *slog.Logger, errMaxLength int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Missing or invalid Authorization header"), errMaxLength)
				return
			}

			claims, err := validator.Validate(strings.TrimSpace(token))
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnauthorized, "Invalid or expired token"), errMaxLength)
				return
			}

			ctx = requestcontext.WithSubject(ctx, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
