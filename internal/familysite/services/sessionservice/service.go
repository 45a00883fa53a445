package sessionservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Leopold1975/familysite/internal/familysite/domain/models"
	"github.com/Leopold1975/familysite/internal/familysite/repository/sessionstore"
	"github.com/Leopold1975/familysite/internal/pkg/config"
	"github.com/Leopold1975/familysite/internal/pkg/jwtauth"
	"github.com/Leopold1975/familysite/pkg/logger"
	"github.com/google/uuid"
)

type Store interface {
	Save(context.Context, models.Session) error
	Get(context.Context, string) (models.Session, error)
	Delete(context.Context, string) error
}

type SessionService struct {
	store Store
	cfg   config.Session
	lg    logger.Logger
}

func New(store Store, cfg config.Session, lg logger.Logger) *SessionService {
	return &SessionService{
		store: store,
		cfg:   cfg,
		lg:    lg,
	}
}

// Load resolves a cookie token to its session. Missing, forged, expired or
// unknown tokens all yield an empty anonymous session.
func (ss *SessionService) Load(ctx context.Context, token string) models.Session {
	if token == "" {
		return models.Session{}
	}

	sid, err := jwtauth.ValidateToken(token, ss.cfg.Secret)
	if err != nil {
		ss.lg.Debugf("rejecting session token: %s", err.Error())

		return models.Session{}
	}

	s, err := ss.store.Get(ctx, sid)
	if err != nil {
		if !errors.Is(err, sessionstore.ErrNotFound) {
			ss.lg.Errorf("load session error: %s", err.Error())
		}

		return models.Session{}
	}

	return s
}

// Save persists s, assigning an id to new sessions, and returns the signed
// token for the cookie.
func (ss *SessionService) Save(ctx context.Context, s *models.Session) (string, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
		s.CreatedAt = time.Now().UTC()
	}

	if err := ss.store.Save(ctx, *s); err != nil {
		return "", fmt.Errorf("save session error: %w", err)
	}

	token, err := jwtauth.GetToken(s.ID, ss.cfg.TTL, ss.cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("can't get token error: %w", err)
	}

	return token, nil
}

// Start replaces prev with a fresh authenticated session. Queued flashes are
// carried over; the previous id is discarded.
func (ss *SessionService) Start(ctx context.Context, prev models.Session, u models.User, level int,
) (models.Session, string, error) {
	if err := ss.Destroy(ctx, prev); err != nil {
		ss.lg.Warnf("discard previous session error: %s", err.Error())
	}

	s := models.Session{ //nolint:exhaustruct
		UserID:   u.ID,
		Username: u.Username,
		Level:    level,
		LoggedIn: true,
		Flashes:  prev.Flashes,
	}

	token, err := ss.Save(ctx, &s)
	if err != nil {
		return models.Session{}, "", err
	}

	return s, token, nil
}

func (ss *SessionService) Destroy(ctx context.Context, s models.Session) error {
	if s.ID == "" {
		return nil
	}

	if err := ss.store.Delete(ctx, s.ID); err != nil {
		return fmt.Errorf("delete session error: %w", err)
	}

	return nil
}

func (ss *SessionService) TTL() time.Duration {
	return ss.cfg.TTL
}
