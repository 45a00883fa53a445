package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Server     Server     `yaml:"server"`
	Logger     Logger     `yaml:"logger"`
	PostgresDB PostgresDB `yaml:"db"`
	Redis      Redis      `yaml:"rdb"`
	Session    Session    `yaml:"session"`
	Auth       Auth       `yaml:"auth"`
	Gallery    Gallery    `yaml:"gallery"`
	Site       Site       `yaml:"site"`
}

type Server struct {
	Addr          string        `env:"SERVER_ADDR"     env-default:":5056" yaml:"addr"`
	ReadTimeout   time.Duration `env-default:"10s"     yaml:"readTimeout"`
	IdleTimeout   time.Duration `env-default:"60s"     yaml:"idleTimeout"`
	WriteTimeout  time.Duration `env-default:"30s"     yaml:"writeTimeout"`
	AfterLoginURL string        `env:"AFTER_LOGIN_URL" env-default:"/menu" yaml:"afterLoginURL"`
	CORSOrigins   []string      `env:"CORS_ORIGINS"    yaml:"corsOrigins"`
	StaticDir     string        `env-default:"./static" yaml:"staticDir"`
}

type Logger struct {
	Level     string   `env:"LOG_LEVEL" env-default:"info" yaml:"level"`
	Output    []string `yaml:"output"`
	ErrOutput []string `yaml:"errOutput"`
}

type PostgresDB struct {
	Addr     string `env:"POSTGRES_ADDR"     env-default:"localhost:5432" yaml:"addr"`
	Username string `env:"POSTGRES_USER"     env-required:"true"          yaml:"username"`
	Password string `env:"POSTGRES_PASSWORD" env-required:"true"          yaml:"password"`
	DB       string `env:"POSTGRES_DB"       env-required:"true"          yaml:"db"`
	SSLmode  string `env-default:"disable"   yaml:"sslmode"`
	MaxConns string `env-default:"10"        yaml:"maxConns"`
	Reload   bool   `yaml:"reload"`
	Version  int    `env-default:"3"         yaml:"version"`
}

type Redis struct {
	Addr     string `env:"REDIS_ADDR"     env-default:"localhost:6379" yaml:"addr"`
	Password string `env:"REDIS_PASSWORD" yaml:"password"`
	DB       int    `yaml:"db"`
}

type Session struct {
	CookieName string        `env-default:"family_session" yaml:"cookieName"`
	Domain     string        `env:"COOKIE_DOMAIN"          yaml:"domain"`
	Secure     bool          `env:"COOKIE_SECURE"          yaml:"secure"`
	TTL        time.Duration `env-default:"168h"           yaml:"ttl"`
	Secret     string        `env:"SECRET"                 env-required:"true" yaml:"secret"`
}

type Auth struct {
	DefaultLevel         int           `env-default:"1"  yaml:"defaultLevel"`
	MaxSelfRegisterLevel int           `env-default:"1"  yaml:"maxSelfRegisterLevel"`
	LoginRateLimit       int           `env-default:"10" yaml:"loginRateLimit"`
	LoginRateWindow      time.Duration `env-default:"1m" yaml:"loginRateWindow"`
	BcryptCost           int           `env-default:"10" yaml:"bcryptCost"`
}

type Gallery struct {
	Root      string `env:"GALLERY_ROOT" env-default:"./static/gallery" yaml:"root"`
	ThumbsDir string `yaml:"thumbsDir"`
	ThumbSize int    `env-default:"240" yaml:"thumbSize"`
	Public    bool   `yaml:"public"` // serve galleries without a session
}

type Site struct {
	PageTitle  string `env-default:"Haines Family Home" yaml:"pageTitle"`
	Stylesheet string `env-default:"/static/styles.css" yaml:"stylesheet"`
}

var ErrInvalid = errors.New("invalid configuration")

// New reads the YAML file at configPath (if any) and overlays environment
// variables. A .env file in the working directory is loaded first.
func New(configPath string) (Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env is optional

	var cfg Config

	if configPath != "" {
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return Config{}, fmt.Errorf("read config error: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return Config{}, fmt.Errorf("read env error: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) normalize() error {
	if c.Gallery.ThumbsDir == "" {
		c.Gallery.ThumbsDir = filepath.Join(c.Gallery.Root, "thumbs")
	}

	if c.Gallery.ThumbSize <= 0 {
		return fmt.Errorf("%w: gallery.thumbSize must be positive", ErrInvalid)
	}

	if c.Auth.DefaultLevel < 1 {
		return fmt.Errorf("%w: auth.defaultLevel must be at least 1", ErrInvalid)
	}

	if c.Auth.MaxSelfRegisterLevel < c.Auth.DefaultLevel {
		c.Auth.MaxSelfRegisterLevel = c.Auth.DefaultLevel
	}

	if c.Session.TTL <= 0 {
		return fmt.Errorf("%w: session.ttl must be positive", ErrInvalid)
	}

	return nil
}
