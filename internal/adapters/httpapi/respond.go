package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/roamplan/itinerary-engine/internal/app/engine"
)

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error("encode response", "error", err)
	}
}

// respondErr maps engine sentinels to HTTP statuses. Unknown errors become
// opaque 500s; the detail stays in the log.
func (s *Server) respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrTripNotFound),
		errors.Is(err, engine.ErrDayNotFound),
		errors.Is(err, engine.ErrActivityNotFound):
		s.respond(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, engine.ErrNoActiveTrip):
		s.respond(w, http.StatusConflict, errorBody{Error: err.Error()})
	case errors.Is(err, engine.ErrNothingToUndo),
		errors.Is(err, engine.ErrNothingToRedo):
		s.respond(w, http.StatusConflict, errorBody{Error: err.Error()})
	case errors.Is(err, engine.ErrInvalidDateRange),
		errors.Is(err, engine.ErrInvalidInput):
		s.respond(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	default:
		s.log.Error("request failed", "error", err)
		s.respond(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

func (s *Server) badRequest(w http.ResponseWriter, msg string) {
	s.respond(w, http.StatusBadRequest, errorBody{Error: msg})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.badRequest(w, "invalid request body: "+err.Error())
		return false
	}
	return true
}
