// Package httpapi exposes the trip engine over HTTP. Handlers are thin: they
// translate the wire shapes and let the engine enforce the rules.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roamplan/itinerary-engine/internal/app/engine"
)

type Server struct {
	svc *engine.Service
	log *slog.Logger
}

func NewServer(svc *engine.Service, log *slog.Logger) *Server {
	return &Server{svc: svc, log: log}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(NewDevAuthMiddleware())

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/trips", func(r chi.Router) {
			r.Get("/", s.listTrips)
			r.Post("/", s.createTrip)
			r.Route("/{tripID}", func(r chi.Router) {
				r.Get("/", s.getTrip)
				r.Patch("/", s.updateTrip)
				r.Delete("/", s.deleteTrip)
				r.Put("/itinerary", s.replaceItinerary)
				r.Post("/activate", s.activateTrip)
				r.Get("/history", s.tripHistory)
				r.Post("/undo", s.undoTrip)
				r.Post("/redo", s.redoTrip)
			})
		})

		r.Route("/active-trip", func(r chi.Router) {
			r.Get("/", s.getActiveTrip)
			r.Delete("/", s.clearActiveTrip)
			r.Get("/days", s.listActiveDays)
			r.Post("/days", s.addDay)
			r.Post("/days/extend", s.extendDays)
			r.Post("/days/reorder", s.reorderDays)
			r.Route("/days/{dayID}", func(r chi.Router) {
				r.Patch("/", s.modifyDay)
				r.Delete("/", s.removeDay)
				r.Post("/activities", s.addActivity)
				r.Post("/activities/reorder", s.reorderActivities)
				r.Patch("/activities/{activityID}", s.updateActivity)
				r.Delete("/activities/{activityID}", s.deleteActivity)
			})
			r.Post("/activities/move", s.moveActivity)
		})

		r.Route("/session", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Post("/", s.signIn)
			r.Delete("/", s.signOut)
		})
	})

	return r
}
