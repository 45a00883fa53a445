package authservice

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/Leopold1975/familysite/internal/familysite/domain/models"
	"github.com/Leopold1975/familysite/internal/familysite/repository/userrepo"
	"github.com/Leopold1975/familysite/internal/pkg/config"
	"github.com/Leopold1975/familysite/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	userRepo  Repository
	cfg       config.Auth
	lg        logger.Logger
	dummyHash []byte
}

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username is not available")
	ErrInvalidInput       = errors.New("invalid registration input")
)

// bcrypt only hashes the first 72 bytes and refuses longer input.
const maxPasswordBytes = 72

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,63}$`)

type Repository interface {
	CreateUser(context.Context, models.User) error
	GetUser(context.Context, string) (models.User, error)
}

func New(userRepo Repository, cfg config.Auth, lg logger.Logger) (*AuthService, error) {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}

	// compared against when the username does not exist
	dummy, err := bcrypt.GenerateFromPassword([]byte("no such user"), cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("generate dummy hash error: %w", err)
	}

	return &AuthService{
		userRepo:  userRepo,
		cfg:       cfg,
		lg:        lg,
		dummyHash: dummy,
	}, nil
}

// Login checks the credentials and returns the user with its access level.
// Unknown usernames and wrong passwords both yield ErrInvalidCredentials.
// A stored level that is not an integer is treated as models.DefaultLevel.
func (as *AuthService) Login(ctx context.Context, username, password string) (models.User, int, error) {
	u, err := as.userRepo.GetUser(ctx, username)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(as.dummyHash, []byte(password)) //nolint:errcheck

			return models.User{}, 0, ErrInvalidCredentials
		}

		return models.User{}, 0, fmt.Errorf("get user error: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return models.User{}, 0, ErrInvalidCredentials
	}

	level, ok := models.ParseLevel(u.Level)
	if !ok {
		as.lg.Warnf("user %q has unparsable level %q, using %d", u.Username, u.Level, level)
	}

	return u, level, nil
}

// Register creates a user from the public registration form. The requested
// level is clamped to [DefaultLevel, MaxSelfRegisterLevel].
func (as *AuthService) Register(ctx context.Context, req RegisterRequest) error {
	return as.CreateUser(ctx, req, as.ClampLevel(req.Level))
}

// CreateUser stores a new user with an explicit level. It backs both the
// registration form and the admin CLI.
func (as *AuthService) CreateUser(ctx context.Context, req RegisterRequest, level int) error {
	if !usernameRe.MatchString(req.Username) {
		return fmt.Errorf("%w: username must match %s", ErrInvalidInput, usernameRe.String())
	}

	if req.Password == "" {
		return fmt.Errorf("%w: password is required", ErrInvalidInput)
	}

	if len(req.Password) > maxPasswordBytes {
		return fmt.Errorf("%w: password is longer than %d bytes", ErrInvalidInput, maxPasswordBytes)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), as.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("generate from password error: %w", err)
	}

	u := models.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		Level:        strconv.Itoa(level),
		Profile:      req.Profile,
	}

	if err := as.userRepo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, userrepo.ErrAlreadyExists) {
			return ErrUsernameTaken
		}

		return fmt.Errorf("create user error: %w", err)
	}

	return nil
}

func (as *AuthService) ClampLevel(requested string) int {
	lvl, ok := models.ParseLevel(requested)
	if !ok {
		return as.cfg.DefaultLevel
	}

	return max(as.cfg.DefaultLevel, min(lvl, as.cfg.MaxSelfRegisterLevel))
}
