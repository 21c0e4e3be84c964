package middleware

import (
	"net/http"
	"slices"

	"bus-booking/pkg/utils"

	"go.uber.org/zap"
)

// RequireRole lets the request through only when the authenticated caller
// has one of the given roles. It must run after Auth.
func RequireRole(logger *zap.Logger, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := utils.GetIdentityFromContext(r.Context())
			if !ok {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			if !slices.Contains(roles, identity.Role) {
				logger.Warn("Role check: access denied",
					zap.String("user_id", identity.UserID.String()),
					zap.String("role", identity.Role),
					zap.Strings("allowed", roles),
					zap.String("path", r.URL.Path),
				)
				utils.ResponseForbidden(w, "Insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
