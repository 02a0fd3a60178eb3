package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"claimflow/internal/attestation/handler"
	platformmetrics "claimflow/internal/platform/metrics"
	"claimflow/internal/platform/middleware"
	"claimflow/pkg/platform/httputil"
)

// HealthCheck reports whether one dependency is usable.
type HealthCheck func(ctx context.Context) error

const healthTimeout = 2 * time.Second

// Deps are the pieces the router mounts.
type Deps struct {
	Attestation *handler.Handler
	// Auth guards every /v1 route.
	Auth    func(http.Handler) http.Handler
	Metrics *platformmetrics.Metrics
	Health  map[string]HealthCheck
	Logger  *slog.Logger
}

// NewRouter wires the public endpoints. Handlers stay thin and delegate to
// the engine so transport concerns remain isolated.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestContext)
	r.Use(d.Metrics.Middleware)

	r.Get("/health", healthHandler(d.Health, d.Logger))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		if d.Auth != nil {
			r.Use(d.Auth)
		}
		d.Attestation.Register(r)
	})
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks map[string]HealthCheck, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		resp := healthResponse{Status: "ok"}
		status := http.StatusOK
		if len(checks) > 0 {
			resp.Checks = make(map[string]string, len(checks))
		}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				if logger != nil {
					logger.WarnContext(ctx, "health check failed", "dependency", name, "error", err)
				}
				resp.Checks[name] = "unavailable"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, &resp)
	}
}
