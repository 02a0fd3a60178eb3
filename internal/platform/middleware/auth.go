package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"claimflow/pkg/requestcontext"
)

// TokenValidator validates plugin callback tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*PluginIdentity, error)
}

// PluginIdentity is the caller named by a valid token.
type PluginIdentity struct {
	Plugin string
	UserID string
}

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// RequirePluginAuth admits requests bearing a valid plugin token and puts the
// plugin and acting user on the request context.
func RequirePluginAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			identity, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			ctx = requestcontext.WithPlugin(ctx, identity.Plugin)
			if identity.UserID != "" {
				ctx = requestcontext.WithUserID(ctx, identity.UserID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
