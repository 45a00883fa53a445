package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Leopold1975/familysite/internal/familysite/domain/models"
	"github.com/Leopold1975/familysite/internal/familysite/repository/sessionstore"
	"github.com/Leopold1975/familysite/internal/pkg/config"
	"github.com/Leopold1975/familysite/internal/pkg/redistools"
	"github.com/redis/go-redis/v9"
)

type SessionStore struct {
	rdb     *redis.Client
	expTime time.Duration
}

func New(ctx context.Context, cfg config.Redis, expTime time.Duration) (SessionStore, error) {
	rdb := redis.NewClient(&redis.Options{ //nolint:exhaustruct
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := redistools.Connect(ctx, rdb); err != nil {
		return SessionStore{}, fmt.Errorf("connect error: %w", err)
	}

	return NewWithClient(rdb, expTime), nil
}

func NewWithClient(rdb *redis.Client, expTime time.Duration) SessionStore {
	return SessionStore{
		rdb:     rdb,
		expTime: expTime,
	}
}

func key(id string) string {
	return "session:" + id
}

// Save stores the session and restarts its expiry.
func (ss SessionStore) Save(ctx context.Context, s models.Session) error {
	sessionJSON, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	if err := ss.rdb.Set(ctx, key(s.ID), sessionJSON, ss.expTime).Err(); err != nil {
		return fmt.Errorf("set error: %w", err)
	}

	return nil
}

func (ss SessionStore) Get(ctx context.Context, id string) (models.Session, error) {
	sessionJSON, err := ss.rdb.Get(ctx, key(id)).Result()
	if errors.Is(err, redis.Nil) {
		return models.Session{}, sessionstore.ErrNotFound
	} else if err != nil {
		return models.Session{}, fmt.Errorf("get error: %w", err)
	}

	var s models.Session

	if err := json.Unmarshal([]byte(sessionJSON), &s); err != nil {
		return models.Session{}, fmt.Errorf("unmarshal error: %w", err)
	}

	return s, nil
}

func (ss SessionStore) Delete(ctx context.Context, id string) error {
	if err := ss.rdb.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("del error: %w", err)
	}

	return nil
}

func (ss SessionStore) Close() error {
	if err := ss.rdb.Close(); err != nil {
		return fmt.Errorf("close error: %w", err)
	}

	return nil
}
