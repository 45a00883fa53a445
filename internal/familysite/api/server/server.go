package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Leopold1975/familysite/internal/familysite/domain/models"
	"github.com/Leopold1975/familysite/internal/familysite/services/authservice"
	"github.com/Leopold1975/familysite/internal/pkg/config"
	"github.com/Leopold1975/familysite/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Server struct {
	serv      *http.Server
	auth      AuthService
	sessions  SessionService
	menu      MenuService
	galleries GalleryService
	limiter   *fixedWindowLimiter
	pages     *pages
	cfg       config.Config
	lg        logger.Logger
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (models.User, int, error)
	Register(context.Context, authservice.RegisterRequest) error
}

type SessionService interface {
	Load(ctx context.Context, token string) models.Session
	Save(context.Context, *models.Session) (string, error)
	Start(ctx context.Context, prev models.Session, u models.User, level int) (models.Session, string, error)
	Destroy(context.Context, models.Session) error
	TTL() time.Duration
}

type MenuService interface {
	Links(ctx context.Context, viewerLevel int) []models.Link
}

type GalleryService interface {
	ListGalleries(context.Context) []models.Gallery
	RenderGallery(ctx context.Context, slug string) ([]models.Image, error)
	OriginalPath(slug, filename string) (string, error)
	ThumbnailPath(filename string) (string, error)
}

type Services struct {
	Auth     AuthService
	Sessions SessionService
	Menu     MenuService
	Gallery  GalleryService
}

func New(cfg config.Config, svc Services, lg logger.Logger) (*Server, error) {
	p, err := loadPages()
	if err != nil {
		return nil, fmt.Errorf("load templates error: %w", err)
	}

	s := &Server{
		auth:      svc.Auth,
		sessions:  svc.Sessions,
		menu:      svc.Menu,
		galleries: svc.Gallery,
		limiter:   newFixedWindowLimiter(cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow),
		pages:     p,
		cfg:       cfg,
		lg:        lg,
	}

	s.serv = &http.Server{ //nolint:exhaustruct
		Addr:         cfg.Server.Addr,
		Handler:      s.routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s, nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(loggingMiddleware(s.lg))
	r.Use(s.recoverer)
	r.Use(s.withSession)

	r.Get("/", s.Home)
	r.Get("/login", s.LoginForm)
	r.With(s.limitLogin).Post("/login", s.Login)
	r.Get("/register", s.RegisterForm)
	r.Post("/register", s.Register)
	r.Get("/logout", s.Logout)
	r.Get("/menu", s.Menu)

	r.Route("/gallery", func(r chi.Router) {
		if !s.cfg.Gallery.Public {
			r.Use(s.requireSession)
		}

		r.Get("/", s.GalleryIndex)
		r.Get("/thumbs/{file}", s.GalleryThumbnail)
		r.Get("/{slug}", s.GalleryRedirect)
		r.Get("/{slug}/", s.GalleryShow)
		r.Get("/{slug}/image/{file}", s.GalleryImage)
	})

	r.Route("/api", func(r chi.Router) {
		// without origins go-chi/cors would answer "*", which browsers refuse
		// together with credentials
		if len(s.cfg.Server.CORSOrigins) > 0 {
			r.Use(cors.Handler(cors.Options{ //nolint:exhaustruct
				AllowedOrigins:   s.cfg.Server.CORSOrigins,
				AllowedMethods:   []string{http.MethodGet, http.MethodOptions},
				AllowedHeaders:   []string{"Accept", "Content-Type"},
				AllowCredentials: true,
				MaxAge:           300, //nolint:gomnd
			}))
		} else {
			s.lg.Warnf("server.corsOrigins is empty, cross-origin API access is disabled")
		}

		r.Get("/auth/status", s.AuthStatus)
		r.Get("/auth/check", s.AuthCheck)
		r.Get("/auth/username", s.AuthUsername)
		r.With(s.requireSessionAPI).Get("/menu", s.APIMenu)
	})

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(s.cfg.Server.StaticDir))))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	r.NotFound(s.notFound)

	return r
}

// Handler exposes the routing table, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.serv.Handler
}

func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error)

	go func() {
		if err := s.serv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			close(errCh)
		}
	}()

	select {
	case <-ctx.Done():
		ctxS, cancel := context.WithTimeout(context.Background(), time.Second*5) //nolint:gomnd
		defer cancel()

		if err := s.Shutdown(ctxS); err != nil { //nolint:contextcheck
			return fmt.Errorf("context error: %w server error %w", ctxS.Err(), err)
		}

		if !errors.Is(ctx.Err(), context.Canceled) {
			return fmt.Errorf("context cancelled error: %w", ctx.Err())
		}

		return nil
	case err := <-errCh:
		return fmt.Errorf("listen and serve error: %w", err)
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()

	ctxS, cancel := context.WithTimeout(ctx, s.serv.IdleTimeout)
	defer cancel()

	if err := s.serv.Shutdown(ctxS); err != nil {
		return fmt.Errorf("shutdown server error: %w", err)
	}

	return nil
}
