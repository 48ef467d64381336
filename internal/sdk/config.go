package sdk

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvServiceURL = "FITTRACK_SERVICE_URL"
	EnvAnonKey    = "FITTRACK_ANON_KEY"
)

type Config struct {
	ServiceURL string
	AnonKey    string
}

// LoadConfig loads the given env files (".env" when none given), if they exist,
// and then reads the config from the environment. Variables already set win.
func LoadConfig(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env files: %w", err)
	}

	cfg := Config{
		ServiceURL: strings.TrimRight(os.Getenv(EnvServiceURL), "/"),
		AnonKey:    os.Getenv(EnvAnonKey),
	}
	if cfg.ServiceURL == "" {
		return Config{}, fmt.Errorf("%s not set", EnvServiceURL)
	}
	if cfg.AnonKey == "" {
		return Config{}, fmt.Errorf("%s not set", EnvAnonKey)
	}
	return cfg, nil
}
