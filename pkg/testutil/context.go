package testutil

import (
	"net/http"
	"time"

	"claimflow/pkg/requestcontext"
)

// WithPluginIdentity sets what the plugin auth middleware would for an
// authenticated request. Empty values are left unset.
func WithPluginIdentity(req *http.Request, plugin, userID string) *http.Request {
	ctx := req.Context()
	if plugin != "" {
		ctx = requestcontext.WithPlugin(ctx, plugin)
	}
	if userID != "" {
		ctx = requestcontext.WithUserID(ctx, userID)
	}
	return req.WithContext(ctx)
}

// WithRequestTime pins the request-scoped clock.
func WithRequestTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
