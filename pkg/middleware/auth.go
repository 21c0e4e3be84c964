package middleware

import (
	"context"
	"net/http"
	"strings"

	"bus-booking/internal/apperr"
	"bus-booking/pkg/utils"

	"go.uber.org/zap"
)

// TokenValidator resolves a bearer token to the caller and its session id.
type TokenValidator interface {
	Authenticate(ctx context.Context, rawToken string) (utils.Identity, string, error)
}

// Auth rejects requests without a valid bearer token and puts the caller
// identity and session id into the request context.
func Auth(validator TokenValidator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.ResponseUnauthorized(w, "Missing authorization token")
				return
			}

			scheme, token, found := strings.Cut(authHeader, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				utils.ResponseUnauthorized(w, "Invalid token format. Use: Bearer <token>")
				return
			}

			identity, sessionID, err := validator.Authenticate(r.Context(), strings.TrimSpace(token))
			if err != nil {
				if apperr.Is(err, apperr.KindUnauthenticated) {
					logger.Warn("Rejected bearer token",
						zap.String("path", r.URL.Path),
						zap.Error(err),
					)
					utils.ResponseUnauthorized(w, "Invalid or expired token")
					return
				}
				logger.Error("Failed to validate token", zap.Error(err))
				utils.ResponseInternalError(w, "Internal server error")
				return
			}

			ctx := utils.SetUserContext(r.Context(), identity.UserID, identity.Role)
			ctx = utils.SetTokenContext(ctx, sessionID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
