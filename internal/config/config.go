package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	// SocketBaseURL is the chat endpoint prefix; the user id is appended
	// at dial time.
	SocketBaseURL string
	// APIBaseURL fronts the REST collaborators and the upload endpoints.
	APIBaseURL     string
	PingInterval   time.Duration
	ConfirmTimeout time.Duration
	SnapshotPath   string
	SnapshotSecret string
}

func Load() (*Config, error) {
	pingInterval, err := time.ParseDuration(getEnv("PING_INTERVAL", "5s"))
	if err != nil {
		return nil, err
	}
	confirmTimeout, err := time.ParseDuration(getEnv("CONFIRM_TIMEOUT", "10s"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		SocketBaseURL:  getEnv("SOCKET_URL", "ws://localhost:8080/LetsTalk/chat"),
		APIBaseURL:     getEnv("API_URL", "http://localhost:8080/LetsTalk"),
		PingInterval:   pingInterval,
		ConfirmTimeout: confirmTimeout,
		SnapshotPath:   getEnv("SNAPSHOT_PATH", "letstalk.db"),
		SnapshotSecret: os.Getenv("SNAPSHOT_SECRET"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.SocketBaseURL == "" {
		return fmt.Errorf("SOCKET_URL is required")
	}
	if c.APIBaseURL == "" {
		return fmt.Errorf("API_URL is required")
	}
	if c.PingInterval <= 0 {
		return fmt.Errorf("PING_INTERVAL must be greater than 0")
	}
	if c.ConfirmTimeout <= 0 {
		return fmt.Errorf("CONFIRM_TIMEOUT must be greater than 0")
	}
	if c.SnapshotSecret == "" {
		return fmt.Errorf("SNAPSHOT_SECRET is required")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
