package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/homilybuild/homily/internal/db"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is the process configuration, read from HOMILY_* variables.
type Config struct {
	DBDriver string `envconfig:"DB_DRIVER" default:"sqlite"`
	// DBPath is the SQLite file; empty means ~/.homily/homily.db.
	DBPath string `envconfig:"DB_PATH"`
	// DBDSN is the Postgres connection string.
	DBDSN string `envconfig:"DB_DSN"`

	HTTPAddr    string   `envconfig:"HTTP_ADDR" default:":8080"`
	BaseURL     string   `envconfig:"BASE_URL" default:"http://localhost:8080"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:3000"`

	JWTSecret string `envconfig:"JWT_SECRET"`
	// DevOwnerID is the identity used by the CLI and, without a JWT
	// secret, by API requests that carry no X-Owner-ID header.
	DevOwnerID string `envconfig:"OWNER_ID" default:"local"`

	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"console"`
	LogOutput   string `envconfig:"LOG_OUTPUT" default:"stderr"`
}

// Load reads an optional .env file, then the environment.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("HOMILY", &cfg); err != nil {
		return Config{}, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.resolve(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) resolve() error {
	dialect, err := db.ParseDialect(c.DBDriver)
	if err != nil {
		return err
	}
	c.DBDriver = string(dialect)

	switch dialect {
	case db.Postgres:
		if c.DBDSN == "" {
			return fmt.Errorf("HOMILY_DB_DSN is required for postgres")
		}
	default:
		if c.DBPath == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("finding home directory: %w", err)
			}
			c.DBPath = filepath.Join(home, ".homily", "homily.db")
		}
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	return nil
}

// Dialect returns the parsed database driver.
func (c Config) Dialect() db.Dialect {
	return db.Dialect(c.DBDriver)
}

// DSN returns the connection string for the configured driver.
func (c Config) DSN() string {
	if c.Dialect() == db.Postgres {
		return c.DBDSN
	}
	return c.DBPath
}

// AuthEnabled reports whether API requests must carry a signed token.
func (c Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

// ShareURL is the shareable wizard link for a homily at step.
func (c Config) ShareURL(homilyID string, step int) string {
	return fmt.Sprintf("%s/homilies/%s?step=%d", c.BaseURL, homilyID, step)
}
