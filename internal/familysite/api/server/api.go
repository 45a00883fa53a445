package server

import (
	"net/http"

	"github.com/Leopold1975/familysite/internal/familysite/domain/models"
)

// AuthStatus reports who the session cookie belongs to. It never fails:
// visitors without a session are reported as anonymous.
func (s *Server) AuthStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionFrom(r.Context()).Status())
}

func (s *Server) AuthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, CheckResponse{LoggedIn: sessionFrom(r.Context()).IsAuthenticated()})
}

func (s *Server) AuthUsername(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, UsernameResponse{Username: sessionFrom(r.Context()).CurrentUsername()})
}

func (s *Server) APIMenu(w http.ResponseWriter, r *http.Request) {
	links := s.menu.Links(r.Context(), sessionFrom(r.Context()).CurrentLevel())
	if links == nil {
		links = []models.Link{}
	}

	writeJSON(w, http.StatusOK, MenuResponse{Links: links})
}
