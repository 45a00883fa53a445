package server

import (
	"encoding/json"
	"net/http"
)

type Error struct {
	Err string `json:"error"`
}

func (se Error) ToJSON() []byte {
	b, err := json.Marshal(se)
	if err != nil {
		return []byte(`{"error":"marshal error"}`)
	}

	return b
}

// handleError answers API callers with an Error body; code defaults to 500.
func handleError(w http.ResponseWriter, code int, err error) {
	if code == 0 {
		code = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(Error{Err: err.Error()}.ToJSON()) //nolint:errcheck
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		handleError(w, http.StatusInternalServerError, err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(b) //nolint:errcheck
}

// renderError shows the HTML error page for browser routes.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, code int) {
	s.render(w, r, code, "error.html", http.StatusText(code), errorPage{Code: code, Text: http.StatusText(code)})
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.renderError(w, r, http.StatusNotFound)
}
