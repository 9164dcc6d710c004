package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RateLimit caps ingestion requests per client IP. A zero Limit disables it.
type RateLimit struct {
	Limit  int
	Window time.Duration
}

// NewRouter wires the REST, websocket and operational endpoints.
func NewRouter(events *EventsHandler, ws *WSHandler, rl RateLimit) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(AccessLog)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/quiz", func(r chi.Router) {
		r.Use(NoStore)
		r.Group(func(r chi.Router) {
			if rl.Limit > 0 {
				r.Use(httprate.LimitByIP(rl.Limit, rl.Window))
			}
			r.Post("/log", events.Log)
		})
		r.Get("/stats", events.Stats)
	})

	if ws != nil {
		r.Get("/ws", ws.ServeWS)
	}
	return r
}
