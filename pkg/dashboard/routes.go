package dashboard

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// setupRoutes registers all dashboard routes
func (d *Dashboard) setupRoutes() {
	timeout := d.cfg.Server.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	d.router.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(timeout))

		r.Get("/", d.pageHandler)
		r.Get("/healthz", d.livenessHandler)

		r.Route("/v1", func(r chi.Router) {
			r.Get("/health", d.healthHandler)
			r.Get("/status", d.statusHandler)
			r.Get("/version", d.versionHandler)

			r.Get("/pins", d.listPinsHandler)
			r.Post("/pins", d.addPinHandler)
			r.Delete("/pins/{cid}", d.removePinHandler)
			r.Post("/gc", d.gcHandler)

			r.Get("/objects/{cid}", d.objectHandler)
		})
	})

	// Status feed connections outlive any request timeout; keep them outside
	// the timeout group.
	d.router.Get("/v1/ws/status", d.statusFeedHandler)
}
