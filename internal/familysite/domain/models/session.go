package models

import "time"

type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// Session is the server-side state behind the session cookie.
type Session struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id,omitempty"` //nolint:tagliatelle
	Username  string    `json:"username,omitempty"`
	Level     int       `json:"level"`
	LoggedIn  bool      `json:"logged_in"` //nolint:tagliatelle // legacy flag read by older apps
	Flashes   []Flash   `json:"flashes,omitempty"`
	CreatedAt time.Time `json:"created_at"` //nolint:tagliatelle
}

// AuthStatus is the JSON snapshot served to external applications.
type AuthStatus struct {
	LoggedIn bool    `json:"logged_in"` //nolint:tagliatelle
	Username *string `json:"username"`
	UserID   *int64  `json:"user_id"` //nolint:tagliatelle
	Level    int     `json:"level"`
}

func (s Session) IsAuthenticated() bool {
	return s.UserID != 0 || s.LoggedIn
}

func (s Session) CurrentUsername() *string {
	if s.Username == "" {
		return nil
	}

	u := s.Username

	return &u
}

func (s Session) CurrentUserID() *int64 {
	if s.UserID == 0 {
		return nil
	}

	id := s.UserID

	return &id
}

// CurrentLevel is AnonymousLevel for visitors without a login.
func (s Session) CurrentLevel() int {
	if !s.IsAuthenticated() {
		return AnonymousLevel
	}

	return s.Level
}

func (s Session) Status() AuthStatus {
	return AuthStatus{
		LoggedIn: s.IsAuthenticated(),
		Username: s.CurrentUsername(),
		UserID:   s.CurrentUserID(),
		Level:    s.CurrentLevel(),
	}
}

func (s *Session) AddFlash(category, message string) {
	s.Flashes = append(s.Flashes, Flash{Category: category, Message: message})
}

// PopFlashes returns the queued flashes and clears them.
func (s *Session) PopFlashes() []Flash {
	f := s.Flashes
	s.Flashes = nil

	return f
}
