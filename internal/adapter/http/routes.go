package http

import (
	"github.com/go-chi/chi/v5"

	"github.com/tillworks/tillcast/internal/middleware"
)

// MountRoutes registers all API routes on the given chi router. The rate
// limiter guards only the ingestion endpoints; the read and stream paths
// stay unthrottled. rl may be nil to disable throttling (tests).
func MountRoutes(r chi.Router, h *Handlers, rl *middleware.RateLimiter) {
	r.Get("/", h.Root)
	r.Get("/health", h.Health)

	r.Get("/stats/today", h.TodaySales)
	r.Get("/stats/reservations", h.TodayReservations)

	r.Get("/events", h.Events)

	r.Group(func(r chi.Router) {
		if rl != nil {
			r.Use(rl.Handler)
		}
		r.Post("/ingest/tx", h.IngestTransaction)
		r.Post("/ingest/reservation", h.IngestReservation)
	})
}
