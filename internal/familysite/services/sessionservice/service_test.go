package sessionservice

import (
	"context"
	"testing"
	"time"

	"github.com/Leopold1975/familysite/internal/familysite/domain/models"
	rs "github.com/Leopold1975/familysite/internal/familysite/repository/sessionstore/redis"
	"github.com/Leopold1975/familysite/internal/pkg/config"
	"github.com/Leopold1975/familysite/internal/pkg/jwtauth"
	"github.com/Leopold1975/familysite/pkg/logger"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type SessionSuite struct {
	suite.Suite
	mr  *miniredis.Miniredis
	rdb *redis.Client
	ss  *SessionService
}

func (s *SessionSuite) SetupTest() {
	s.mr = miniredis.RunT(s.T())
	s.rdb = redis.NewClient(&redis.Options{Addr: s.mr.Addr()}) //nolint:exhaustruct

	cfg := config.Session{TTL: time.Hour, Secret: "test-secret"} //nolint:exhaustruct
	s.ss = New(rs.NewWithClient(s.rdb, cfg.TTL), cfg, logger.NewNop())
}

func (s *SessionSuite) TearDownTest() {
	s.rdb.Close()
}

func (s *SessionSuite) TestLoadWithoutToken() {
	sess := s.ss.Load(context.Background(), "")
	s.Require().False(sess.IsAuthenticated())
	s.Require().Empty(sess.ID)
}

func (s *SessionSuite) TestSaveAndLoad() {
	ctx := context.Background()

	var sess models.Session
	sess.AddFlash("error", "You must be logged in to view this page.")

	token, err := s.ss.Save(ctx, &sess)
	s.Require().NoError(err)
	s.Require().NotEmpty(sess.ID)

	loaded := s.ss.Load(ctx, token)
	s.Require().Equal(sess.ID, loaded.ID)
	s.Require().Len(loaded.Flashes, 1)
	s.Require().False(loaded.IsAuthenticated())
}

func (s *SessionSuite) TestStartRotatesID() {
	ctx := context.Background()

	var anon models.Session
	anon.AddFlash("info", "carried")

	_, err := s.ss.Save(ctx, &anon)
	s.Require().NoError(err)

	sess, token, err := s.ss.Start(ctx, anon, models.User{ID: 9, Username: "bob"}, 2) //nolint:exhaustruct
	s.Require().NoError(err)
	s.Require().NotEqual(anon.ID, sess.ID)
	s.Require().True(sess.LoggedIn)
	s.Require().Equal(2, sess.CurrentLevel())
	s.Require().Len(sess.Flashes, 1)

	s.Require().False(s.mr.Exists("session:" + anon.ID))

	loaded := s.ss.Load(ctx, token)
	s.Require().Equal(int64(9), loaded.UserID)
	s.Require().Equal("bob", loaded.Username)
}

func (s *SessionSuite) TestDestroy() {
	ctx := context.Background()

	sess := models.Session{UserID: 1, Username: "carol", Level: 1, LoggedIn: true} //nolint:exhaustruct
	token, err := s.ss.Save(ctx, &sess)
	s.Require().NoError(err)

	s.Require().NoError(s.ss.Destroy(ctx, sess))
	s.Require().False(s.ss.Load(ctx, token).IsAuthenticated())
}

func (s *SessionSuite) TestForgedToken() {
	ctx := context.Background()

	sess := models.Session{UserID: 1, Username: "carol", Level: 3, LoggedIn: true} //nolint:exhaustruct
	_, err := s.ss.Save(ctx, &sess)
	s.Require().NoError(err)

	forged, err := jwtauth.GetToken(sess.ID, time.Hour, "not-the-secret")
	s.Require().NoError(err)

	s.Require().False(s.ss.Load(ctx, forged).IsAuthenticated())
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionSuite))
}

func TestTTL(t *testing.T) {
	ss := New(nil, config.Session{TTL: time.Minute}, logger.NewNop()) //nolint:exhaustruct
	require.Equal(t, time.Minute, ss.TTL())
}
