package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Leopold1975/familysite/internal/familysite/domain/models"
	"github.com/Leopold1975/familysite/internal/familysite/services/authservice"
)

func (s *Server) Home(w http.ResponseWriter, r *http.Request) {
	if sessionFrom(r.Context()).IsAuthenticated() {
		http.Redirect(w, r, "/menu", http.StatusFound)

		return
	}

	http.Redirect(w, r, "/login", http.StatusFound)
}

func (s *Server) LoginForm(w http.ResponseWriter, r *http.Request) {
	if sessionFrom(r.Context()).IsAuthenticated() {
		http.Redirect(w, r, s.cfg.Server.AfterLoginURL, http.StatusFound)

		return
	}

	s.render(w, r, http.StatusOK, "login.html", "Login", nil)
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, r, http.StatusBadRequest, "login.html", "Login", nil,
			models.Flash{Category: flashError, Message: "Invalid login form."})

		return
	}

	username := strings.TrimSpace(r.PostForm.Get("username"))
	password := r.PostForm.Get("password")

	u, level, err := s.auth.Login(r.Context(), username, password)
	if err != nil {
		if !errors.Is(err, authservice.ErrInvalidCredentials) {
			s.lg.Errorf("login error: %s", err.Error())
		}

		s.render(w, r, http.StatusOK, "login.html", "Login", nil,
			models.Flash{Category: flashError, Message: "Invalid username or password."})

		return
	}

	prev := sessionFrom(r.Context())
	prev.AddFlash(flashSuccess, "Welcome back, "+u.Username+"!")

	_, token, err := s.sessions.Start(r.Context(), prev, u, level)
	if err != nil {
		s.lg.Errorf("start session error: %s", err.Error())
		s.render(w, r, http.StatusServiceUnavailable, "login.html", "Login", nil,
			models.Flash{Category: flashError, Message: "Login is temporarily unavailable. Please try again later."})

		return
	}

	s.lg.Infof("user %s logged in with level %d", u.Username, level)
	s.setSessionCookie(w, token)

	http.Redirect(w, r, s.cfg.Server.AfterLoginURL, http.StatusFound)
}

func (s *Server) RegisterForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "register.html", "Register", registerPage{})
}

func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, r, http.StatusBadRequest, "register.html", "Register", registerPage{},
			models.Flash{Category: flashError, Message: "Invalid registration form."})

		return
	}

	req := registerRequestFromForm(r)
	page := registerPage{Username: req.Username, Profile: req.Profile}

	err := s.auth.Register(r.Context(), req)

	switch {
	case err == nil:
	case errors.Is(err, authservice.ErrUsernameTaken):
		s.render(w, r, http.StatusOK, "register.html", "Register", page,
			models.Flash{Category: flashError, Message: "That username is not available."})

		return
	case errors.Is(err, authservice.ErrInvalidInput):
		s.render(w, r, http.StatusOK, "register.html", "Register", page,
			models.Flash{
				Category: flashError,
				Message:  "Please choose a username of letters, digits, dots, dashes or underscores and a password of at most 72 characters.",
			})

		return
	default:
		s.lg.Errorf("register error: %s", err.Error())
		s.render(w, r, http.StatusInternalServerError, "register.html", "Register", page,
			models.Flash{Category: flashError, Message: "Registration failed. Please try again later."})

		return
	}

	s.lg.Infof("registered user %s", req.Username)

	sess := sessionFrom(r.Context())
	sess.AddFlash(flashSuccess, "Registration successful! You can now log in.")
	s.persist(w, r, &sess)

	http.Redirect(w, r, "/login", http.StatusFound)
}

// Logout drops the stored session and hands out a fresh anonymous one that
// only carries the goodbye message.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Destroy(r.Context(), sessionFrom(r.Context())); err != nil {
		s.lg.Errorf("logout error: %s", err.Error())
	}

	var fresh models.Session
	fresh.AddFlash(flashInfo, "You have been logged out.")
	s.persist(w, r, &fresh)

	http.Redirect(w, r, "/login", http.StatusFound)
}

func registerRequestFromForm(r *http.Request) authservice.RegisterRequest {
	f := func(key string) string { return strings.TrimSpace(r.PostForm.Get(key)) }

	return authservice.RegisterRequest{
		Username: f("username"),
		Password: r.PostForm.Get("password"),
		Level:    f("level"),
		Profile: models.Profile{
			FirstName: f("firstname"),
			LastName:  f("lastname"),
			Address:   f("address"),
			City:      f("city"),
			State:     f("state"),
			Zipcode:   f("zipcode"),
			Birthday:  f("birthday"),
			Email:     f("email"),
			Phone1:    f("phone1"),
			Phone2:    f("phone2"),
			Comment:   f("comment"),
		},
	}
}
