package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/Leopold1975/familysite/internal/familysite/domain/models"
)

const (
	flashError   = "error"
	flashSuccess = "success"
	flashInfo    = "info"
)

//go:embed templates/*.html
var templatesFS embed.FS

type pages struct {
	byName map[string]*template.Template
}

type pageData struct {
	Title      string
	SiteTitle  string
	Stylesheet string
	Flashes    []models.Flash
	Status     models.AuthStatus
	Data       any
}

// loadPages parses every page together with the shared layout.
func loadPages() (*pages, error) {
	layout, err := template.ParseFS(templatesFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout error: %w", err)
	}

	names, err := fs.Glob(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("glob templates error: %w", err)
	}

	p := &pages{byName: make(map[string]*template.Template, len(names))}

	for _, name := range names {
		base := name[len("templates/"):]
		if base == "layout.html" {
			continue
		}

		t, err := layout.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout error: %w", err)
		}

		if _, err := t.ParseFS(templatesFS, name); err != nil {
			return nil, fmt.Errorf("parse %s error: %w", base, err)
		}

		p.byName[base] = t
	}

	return p, nil
}

// render writes a full page. Flashes queued in the session are shown once and
// dropped; extra flashes are shown without touching the session.
func (s *Server) render(w http.ResponseWriter, r *http.Request, code int, name, title string, data any,
	extra ...models.Flash,
) {
	t, ok := s.pages.byName[name]
	if !ok {
		s.lg.Errorf("unknown template %s", name)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)

		return
	}

	sess := sessionFrom(r.Context())

	flashes := sess.PopFlashes()
	if len(flashes) > 0 {
		s.persist(w, r, &sess)
	}

	pd := pageData{
		Title:      title,
		SiteTitle:  s.cfg.Site.PageTitle,
		Stylesheet: s.cfg.Site.Stylesheet,
		Flashes:    append(flashes, extra...),
		Status:     sess.Status(),
		Data:       data,
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", pd); err != nil {
		s.lg.Errorf("render %s error: %s", name, err.Error())
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)

	if _, err := buf.WriteTo(w); err != nil {
		s.lg.Warnf("write page %s error: %s", name, err.Error())
	}
}

// persist saves sess and refreshes the cookie. Failures are logged; the
// request carries on with whatever state the client already has.
func (s *Server) persist(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	token, err := s.sessions.Save(r.Context(), sess)
	if err != nil {
		s.lg.Errorf("persist session error: %s", err.Error())

		return
	}

	s.setSessionCookie(w, token)
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{ //nolint:exhaustruct
		Name:     s.cfg.Session.CookieName,
		Value:    token,
		Path:     "/",
		Domain:   s.cfg.Session.Domain,
		MaxAge:   int(s.sessions.TTL().Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.Session.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
