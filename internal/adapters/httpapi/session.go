package httpapi

import (
	"net/http"
)

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.svc.Session()
	s.respond(w, http.StatusOK, sessionResponse{SignedIn: ok, Owner: string(owner)})
}

func (s *Server) signIn(w http.ResponseWriter, r *http.Request) {
	subject, ok := SubjectFromContext(r.Context())
	if !ok {
		s.respond(w, http.StatusUnauthorized, errorBody{Error: "no authenticated subject"})
		return
	}
	if err := s.svc.SignIn(r.Context(), subject); err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, sessionResponse{SignedIn: true, Owner: string(subject)})
}

func (s *Server) signOut(w http.ResponseWriter, r *http.Request) {
	s.svc.SignOut(r.Context())
	s.respond(w, http.StatusNoContent, nil)
}
