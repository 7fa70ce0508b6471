package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/roamplan/itinerary-engine/internal/app/engine"
	"github.com/roamplan/itinerary-engine/internal/domain"
	"github.com/roamplan/itinerary-engine/internal/planner"
)

func dayID(r *http.Request) domain.DayID {
	return domain.DayID(chi.URLParam(r, "dayID"))
}

func activityID(r *http.Request) domain.ActivityID {
	return domain.ActivityID(chi.URLParam(r, "activityID"))
}

func (s *Server) getActiveTrip(w http.ResponseWriter, r *http.Request) {
	trip, err := s.svc.ActiveTrip(r.Context())
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, trip)
}

func (s *Server) clearActiveTrip(w http.ResponseWriter, r *http.Request) {
	s.svc.ClearActiveTrip(r.Context())
	s.respond(w, http.StatusNoContent, nil)
}

func (s *Server) listActiveDays(w http.ResponseWriter, r *http.Request) {
	days, err := s.svc.ActiveTripDays(r.Context())
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, days)
}

func (s *Server) addDay(w http.ResponseWriter, r *http.Request) {
	var req addDayRequest
	if !s.decode(w, r, &req) {
		return
	}
	var (
		res engine.AddDayResult
		err error
	)
	if req.Location != "" {
		res, err = s.svc.AddDayWithLocation(r.Context(), req.Position, req.Location)
	} else {
		res, err = s.svc.AddDay(r.Context(), req.Position)
	}
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusCreated, addDayResponse{Trip: res.Trip, Day: res.Day, Note: res.Note})
}

func (s *Server) extendDays(w http.ResponseWriter, r *http.Request) {
	var req extendDaysRequest
	if !s.decode(w, r, &req) {
		return
	}
	trip, err := s.svc.AddDays(r.Context(), req.Count)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, trip)
}

func (s *Server) removeDay(w http.ResponseWriter, r *http.Request) {
	handling := planner.ActivityHandling(r.URL.Query().Get("handling"))
	switch handling {
	case planner.HandlePrevious, planner.HandleNext, planner.HandleDelete:
	case "":
		handling = planner.HandleDelete
	default:
		s.badRequest(w, "handling must be previous, next or delete")
		return
	}

	res, err := s.svc.RemoveDay(r.Context(), dayID(r), handling)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, removeDayResponse{Trip: res.Trip, Orphaned: res.Orphaned})
}

func (s *Server) reorderDays(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if !s.decode(w, r, &req) {
		return
	}
	trip, err := s.svc.ReorderDays(r.Context(), req.FromIndex, req.ToIndex)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, trip)
}

func (s *Server) modifyDay(w http.ResponseWriter, r *http.Request) {
	var req modifyDayRequest
	if !s.decode(w, r, &req) {
		return
	}
	trip, err := s.svc.ModifyDay(r.Context(), dayID(r), engine.ModifyDayInput{
		PrimaryLocation:    opt(req.PrimaryLocation),
		TravelFromPrevious: opt(req.TravelFromPrevious),
	})
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, trip)
}

func (s *Server) addActivity(w http.ResponseWriter, r *http.Request) {
	var req addActivityRequest
	if !s.decode(w, r, &req) {
		return
	}
	act, err := s.svc.AddActivity(r.Context(), dayID(r), engine.ActivityInput{
		Time:        req.Time,
		EndTime:     req.EndTime,
		Description: req.Description,
		Type:        domain.ActivityType(req.Type),
		Location:    req.Location,
		Details:     req.Details,
	})
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusCreated, act)
}

func (s *Server) updateActivity(w http.ResponseWriter, r *http.Request) {
	var req updateActivityRequest
	if !s.decode(w, r, &req) {
		return
	}
	act, err := s.svc.UpdateActivity(r.Context(), dayID(r), activityID(r), engine.UpdateActivityInput{
		Time:        opt(req.Time),
		EndTime:     opt(req.EndTime),
		Description: opt(req.Description),
		Type:        optMap(req.Type, func(v string) domain.ActivityType { return domain.ActivityType(v) }),
		Location:    opt(req.Location),
		Details:     opt(req.Details),
	})
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, act)
}

func (s *Server) deleteActivity(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteActivity(r.Context(), dayID(r), activityID(r)); err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusNoContent, nil)
}

func (s *Server) reorderActivities(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if !s.decode(w, r, &req) {
		return
	}
	trip, err := s.svc.ReorderActivities(r.Context(), dayID(r), req.FromIndex, req.ToIndex)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, trip)
}

func (s *Server) moveActivity(w http.ResponseWriter, r *http.Request) {
	var req moveActivityRequest
	if !s.decode(w, r, &req) {
		return
	}
	trip, err := s.svc.MoveActivityBetweenDays(r.Context(), req.SourceDayID, req.DestDayID, req.SourceIndex, req.DestIndex)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, trip)
}
