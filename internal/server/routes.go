// AngelaMos | 2026
// routes.go

package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/currency-tracker/internal/admin"
	"github.com/carterperez-dev/currency-tracker/internal/currency"
	"github.com/carterperez-dev/currency-tracker/internal/ingest"
	"github.com/carterperez-dev/currency-tracker/internal/metrics"
	"github.com/carterperez-dev/currency-tracker/internal/page"
	"github.com/carterperez-dev/currency-tracker/internal/user"
)

// Handlers groups everything Mount registers. Metrics and Ingest are
// optional.
type Handlers struct {
	Users       *user.Handler
	Currencies  *currency.Handler
	Ingest      *ingest.Handler
	Admin       *admin.Handler
	Pages       *page.Handler
	Metrics     *metrics.Metrics
	MetricsPath string
}

// Mount registers probes, the JSON API under /api and the pages. Middleware
// must be added to Router before calling it.
func (s *Server) Mount(h Handlers) {
	r := s.router

	if s.health != nil {
		s.health.RegisterRoutes(r)
	}

	if h.Metrics != nil {
		path := h.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Method(http.MethodGet, path, h.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		h.Users.RegisterRoutes(r)
		h.Currencies.RegisterRoutes(r)
		h.Admin.RegisterRoutes(r)
		if h.Ingest != nil {
			h.Ingest.RegisterRoutes(r)
		}
		r.NotFound(h.Pages.NotFound)
		r.MethodNotAllowed(h.Pages.NotFound)
	})

	h.Pages.RegisterRoutes(r)

	r.NotFound(h.Pages.NotFound)
	r.MethodNotAllowed(h.Pages.NotFound)
}
