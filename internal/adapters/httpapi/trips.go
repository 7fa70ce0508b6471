package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/roamplan/itinerary-engine/internal/app/engine"
	"github.com/roamplan/itinerary-engine/internal/domain"
)

func tripID(r *http.Request) domain.TripID {
	return domain.TripID(chi.URLParam(r, "tripID"))
}

func (s *Server) listTrips(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, s.svc.TripSummaries(r.Context()))
}

func (s *Server) createTrip(w http.ResponseWriter, r *http.Request) {
	var req createTripRequest
	if !s.decode(w, r, &req) {
		return
	}
	trip, err := s.svc.CreateTrip(r.Context(), engine.CreateTripInput{
		Title:       req.Title,
		Description: req.Description,
		Destination: req.Destination,
		StartDate:   req.StartDate.Time,
		EndDate:     req.EndDate.Time,
		Timezone:    req.Timezone,
		Currency:    req.Currency,
	})
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusCreated, trip)
}

func (s *Server) getTrip(w http.ResponseWriter, r *http.Request) {
	trip, err := s.svc.GetTrip(r.Context(), tripID(r))
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, trip)
}

func (s *Server) updateTrip(w http.ResponseWriter, r *http.Request) {
	var req updateTripRequest
	if !s.decode(w, r, &req) {
		return
	}
	trip, err := s.svc.UpdateTrip(r.Context(), tripID(r), engine.UpdateTripInput{
		Title:       opt(req.Title),
		Description: opt(req.Description),
		Destination: opt(req.Destination),
		StartDate:   optMap(req.StartDate, func(d openapi_types.Date) time.Time { return d.Time }),
		Timezone:    opt(req.Timezone),
		Status:      optMap(req.Status, func(v string) domain.TripStatus { return domain.TripStatus(v) }),
		Currency:    opt(req.Currency),
		Flags:       opt(req.Flags),
	})
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, trip)
}

func (s *Server) deleteTrip(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteTrip(r.Context(), tripID(r)); err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusNoContent, nil)
}

func (s *Server) replaceItinerary(w http.ResponseWriter, r *http.Request) {
	var it domain.Itinerary
	if !s.decode(w, r, &it) {
		return
	}
	trip, err := s.svc.ReplaceItinerary(r.Context(), tripID(r), it)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, trip)
}

func (s *Server) activateTrip(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.SetActiveTrip(r.Context(), tripID(r)); err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusNoContent, nil)
}

func (s *Server) tripHistory(w http.ResponseWriter, r *http.Request) {
	id := tripID(r)
	undoLabel, canUndo := s.svc.CanUndo(id)
	redoLabel, canRedo := s.svc.CanRedo(id)
	s.respond(w, http.StatusOK, historyResponse{
		CanUndo:   canUndo,
		UndoLabel: undoLabel,
		CanRedo:   canRedo,
		RedoLabel: redoLabel,
	})
}

func (s *Server) undoTrip(w http.ResponseWriter, r *http.Request) {
	trip, err := s.svc.Undo(r.Context(), tripID(r))
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, trip)
}

func (s *Server) redoTrip(w http.ResponseWriter, r *http.Request) {
	trip, err := s.svc.Redo(r.Context(), tripID(r))
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, trip)
}
