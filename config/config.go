package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const (
	AppName     = "koola-admin"
	EnvFileName = "config.env"
)

// LoadEnvFile loads environment variables from the config file in the user's
// config directory, then from a local .env. Errors are ignored since the
// files may not exist.
func LoadEnvFile() {
	if configBase, err := os.UserConfigDir(); err == nil {
		_ = godotenv.Load(filepath.Join(configBase, AppName, EnvFileName))
	}
	_ = godotenv.Load(".env")
}

// Config is everything the CLI needs from the environment.
type Config struct {
	// APIBaseURL is the admin API base URL (KOOLA_API_URL).
	APIBaseURL string

	// TokenKey is the passphrase the on-disk session is encrypted with
	// (KOOLA_TOKEN_KEY).
	TokenKey string

	// DBPath is the SQLite session database path (KOOLA_DB_PATH, defaults
	// to session.db).
	DBPath string

	// RedisAddr switches session storage to Redis when set
	// (KOOLA_REDIS_ADDR).
	RedisAddr string
}

// FromEnv reads the configuration, reporting all missing required variables
// at once.
func FromEnv() (*Config, error) {
	cfg := &Config{
		APIBaseURL: os.Getenv("KOOLA_API_URL"),
		TokenKey:   os.Getenv("KOOLA_TOKEN_KEY"),
		DBPath:     os.Getenv("KOOLA_DB_PATH"),
		RedisAddr:  os.Getenv("KOOLA_REDIS_ADDR"),
	}

	var missing []string
	if cfg.APIBaseURL == "" {
		missing = append(missing, "KOOLA_API_URL")
	}
	if cfg.TokenKey == "" {
		missing = append(missing, "KOOLA_TOKEN_KEY")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}

	if cfg.DBPath == "" {
		cfg.DBPath = "session.db"
	}

	return cfg, nil
}
