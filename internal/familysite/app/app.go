package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Leopold1975/familysite/internal/familysite/api/server"
	gr "github.com/Leopold1975/familysite/internal/familysite/repository/galleryrepo/postgres"
	lr "github.com/Leopold1975/familysite/internal/familysite/repository/linkrepo/postgres"
	"github.com/Leopold1975/familysite/internal/familysite/repository/sessionstore/redis"
	ur "github.com/Leopold1975/familysite/internal/familysite/repository/userrepo/postgres"
	"github.com/Leopold1975/familysite/internal/familysite/services/authservice"
	"github.com/Leopold1975/familysite/internal/familysite/services/galleryservice"
	"github.com/Leopold1975/familysite/internal/familysite/services/menuservice"
	"github.com/Leopold1975/familysite/internal/familysite/services/sessionservice"
	"github.com/Leopold1975/familysite/internal/pkg/config"
	"github.com/Leopold1975/familysite/internal/pkg/pgtools"
	"github.com/Leopold1975/familysite/pkg/logger"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Server interface {
	Start(context.Context) error
	Shutdown(context.Context) error
}

type FamilyApp struct {
	s        Server
	db       *pgxpool.Pool
	sessions redis.SessionStore
	lg       logger.Logger
	cfg      config.Config
}

func New(ctx context.Context, cfg config.Config) (FamilyApp, error) {
	lg, err := logger.New(cfg.Logger)
	if err != nil {
		return FamilyApp{}, fmt.Errorf("can't get logger error: %w", err)
	}

	db, err := pgtools.Open(ctx, cfg.PostgresDB)
	if err != nil {
		return FamilyApp{}, fmt.Errorf("postgres initializing error: %w", err)
	}

	store, err := redis.New(ctx, cfg.Redis, cfg.Session.TTL)
	if err != nil {
		db.Close()

		return FamilyApp{}, fmt.Errorf("redis session store initializing error: %w", err)
	}

	authService, err := authservice.New(ur.New(db), cfg.Auth, lg)
	if err != nil {
		db.Close()
		store.Close()

		return FamilyApp{}, fmt.Errorf("auth service initializing error: %w", err)
	}

	galleryService, err := galleryservice.New(gr.New(db), cfg.Gallery, lg)
	if err != nil {
		db.Close()
		store.Close()

		return FamilyApp{}, fmt.Errorf("gallery service initializing error: %w", err)
	}

	s, err := server.New(cfg, server.Services{
		Auth:     authService,
		Sessions: sessionservice.New(store, cfg.Session, lg),
		Menu:     menuservice.New(lr.New(db, lg), lg),
		Gallery:  galleryService,
	}, lg)
	if err != nil {
		db.Close()
		store.Close()

		return FamilyApp{}, fmt.Errorf("server initializing error: %w", err)
	}

	return FamilyApp{
		s:        s,
		db:       db,
		sessions: store,
		lg:       lg,
		cfg:      cfg,
	}, nil
}

func (fa *FamilyApp) Run(ctx context.Context) {
	fa.lg.Infof("STARTED SERVER ON %s", fa.cfg.Server.Addr)

	errCh := make(chan error, 1)

	go func() {
		errCh <- fa.s.Start(ctx)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			fa.lg.Errorf("server start error: %s", err.Error())
		}
	}

	ctxS, cancel := context.WithTimeout(context.Background(), time.Second*5) //nolint:gomnd
	defer cancel()

	if err := fa.Stop(ctxS); err != nil { //nolint:contextcheck
		fa.lg.Errorf("server shutdown error: %s", err.Error())
	}
}

func (fa *FamilyApp) Stop(ctx context.Context) error {
	defer fa.db.Close()

	if err := fa.s.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if err := fa.sessions.Close(); err != nil {
		return fmt.Errorf("session store close error: %w", err)
	}

	fa.lg.Info("Shutdowned successfully")

	return nil
}
