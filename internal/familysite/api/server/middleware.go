package server

import (
	"context"
	"net"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/Leopold1975/familysite/internal/familysite/domain/models"
	"github.com/Leopold1975/familysite/pkg/logger"
	"github.com/go-chi/chi/v5/middleware"
)

type sessionCtxKey struct{}

func loggingMiddleware(logg logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}

				logf := logg.Infof

				switch {
				case status >= http.StatusInternalServerError:
					logf = logg.Errorf
				case status >= http.StatusBadRequest:
					logf = logg.Warnf
				}

				logf("METHOD %s URI %s %s STATUS %d BYTES %d Latency %s Client IP %s User Agent %s",
					r.Method,
					r.Proto,
					r.URL.RequestURI(),
					status,
					ww.BytesWritten(),
					time.Since(start).String(),
					r.RemoteAddr,
					r.UserAgent(),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler { //nolint:errorlint,goerr113
					panic(rec)
				}

				s.lg.Errorf("panic serving %s: %v\n%s", r.URL.Path, rec, debug.Stack())
				s.renderError(w, r, http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// withSession resolves the session cookie once per request. Visitors without
// a valid cookie get an empty anonymous session.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var token string
		if c, err := r.Cookie(s.cfg.Session.CookieName); err == nil {
			token = c.Value
		}

		sess := s.sessions.Load(r.Context(), token)

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionCtxKey{}, sess)))
	})
}

func sessionFrom(ctx context.Context) models.Session {
	sess, _ := ctx.Value(sessionCtxKey{}).(models.Session)

	return sess
}

// Decision is the outcome of an access check for a protected page.
type Decision struct {
	Allow    bool
	Redirect string
}

func authorize(sess models.Session) Decision {
	if sess.IsAuthenticated() {
		return Decision{Allow: true, Redirect: ""}
	}

	return Decision{Allow: false, Redirect: "/login"}
}

func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFrom(r.Context())

		d := authorize(sess)
		if d.Allow {
			next.ServeHTTP(w, r)

			return
		}

		sess.AddFlash(flashError, "You must be logged in to view this page.")
		s.persist(w, r, &sess)

		http.Redirect(w, r, d.Redirect, http.StatusFound)
	})
}

func (s *Server) requireSessionAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !authorize(sessionFrom(r.Context())).Allow {
			writeJSON(w, http.StatusUnauthorized, AuthRequiredResponse{
				Err:      "Authentication required",
				LoggedIn: false,
			})

			return
		}

		next.ServeHTTP(w, r)
	})
}

// limitLogin caps login attempts per client address within a fixed window.
func (s *Server) limitLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, retryAfter := s.limiter.Allow(clientIP(r))
		if ok {
			next.ServeHTTP(w, r)

			return
		}

		w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
		s.render(w, r, http.StatusTooManyRequests, "login.html", "Login", nil,
			models.Flash{Category: flashError, Message: "Too many login attempts. Please wait a moment and try again."})
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}
