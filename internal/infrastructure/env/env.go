// Package env loads process configuration from .env files. Secrets such as
// the analyzer API key never go into config.yaml; they come from here.
package env

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Service resolves environment variables with .env overlays applied. A
// missing .env file is normal on CI where variables come from the runner.
type Service struct{}

func NewService() *Service {
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "dev"
	}

	// Base secrets first, then the per-environment overlay wins.
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(fmt.Sprintf(".env.%s", appEnv))

	return &Service{}
}

func (s *Service) Get(key string) string {
	return os.Getenv(key)
}

// GetOr returns the value or def when the variable is unset or empty.
func (s *Service) GetOr(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func (s *Service) Require(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("required environment variable %s is not set", key)
	}
	return val, nil
}

func (s *Service) GetBool(key string, def bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return def
	}
	return parsed
}

func (s *Service) GetInt(key string, def int) int {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return parsed
}
