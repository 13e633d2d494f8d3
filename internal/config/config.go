package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds environment-driven configuration for the storefront client.
type Config struct {
	// BaseURL is the root of the storefront REST API, including the /api
	// prefix.
	BaseURL     string        `env:"UTESHOP_BASE_URL" envDefault:"http://localhost:8080/api"`
	HTTPTimeout time.Duration `env:"UTESHOP_HTTP_TIMEOUT" envDefault:"15s"`

	// StateDir is where the session and wishlist cache files live. Empty
	// means a "uteshop" directory under the user cache dir.
	StateDir string `env:"UTESHOP_STATE_DIR"`

	// FakeAPIAddr is the listen address for cmd/fakeapi.
	FakeAPIAddr string `env:"UTESHOP_FAKEAPI_ADDR" envDefault:":8080"`
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.StateDir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			base = "."
		}
		cfg.StateDir = filepath.Join(base, "uteshop")
	}

	return cfg, nil
}

// SessionFile is the path of the persisted token pair.
func (c *Config) SessionFile() string {
	return filepath.Join(c.StateDir, "session.json")
}

// WishlistCacheFile is the path of the wishlist read-through cache.
func (c *Config) WishlistCacheFile() string {
	return filepath.Join(c.StateDir, "wishlist.json")
}
