package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	reportshttp "github.com/lmnp-erp/lmnp-erp/internal/accounting/reports/http"
	"github.com/lmnp-erp/lmnp-erp/internal/declarations"
	liassehttp "github.com/lmnp-erp/lmnp-erp/internal/liasse/http"
	"github.com/lmnp-erp/lmnp-erp/internal/observability"
	"github.com/lmnp-erp/lmnp-erp/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger              *slog.Logger
	Config              *Config
	DeclarationsHandler *declarations.Handler
	LiasseHandler       *liassehttp.Handler
	ReportsHandler      *reportshttp.Handler
	JobsHandler         *jobs.Handler
	Metrics             *observability.Metrics
}

// NewRouter constructs the chi.Router with the API defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	if !InTestMode() {
		r.Use(chimw.Logger)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	if params.JobsHandler != nil {
		r.Route("/jobs", params.JobsHandler.MountRoutes)
	}

	r.Group(func(r chi.Router) {
		r.Use(RequireUser)
		r.Route("/declarations", func(r chi.Router) {
			if params.DeclarationsHandler != nil {
				params.DeclarationsHandler.MountRoutes(r)
			}
			if params.LiasseHandler != nil {
				params.LiasseHandler.MountRoutes(r)
			}
		})
		if params.ReportsHandler != nil {
			r.Route("/reports", params.ReportsHandler.MountRoutes)
		}
	})

	return r
}
