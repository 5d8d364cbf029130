package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	Addr        string
	DatabaseURL string        // empty means the in-memory account store
	LobbyGrace  time.Duration // disconnect grace before a lobby player is dropped
	DevLog      bool
}

// Load reads configuration from the environment. Call godotenv.Load first if
// a .env file should be honored.
func Load() (*Config, error) {
	cfg := &Config{
		Addr:        ":8080",
		DatabaseURL: os.Getenv("DATABASE_URL"),
		LobbyGrace:  10 * time.Second,
		DevLog:      os.Getenv("LOG_DEV") == "true",
	}
	if addr := os.Getenv("ADDR"); addr != "" {
		cfg.Addr = addr
	} else if port := os.Getenv("PORT"); port != "" {
		cfg.Addr = ":" + port
	}
	if grace := os.Getenv("LOBBY_GRACE"); grace != "" {
		d, err := time.ParseDuration(grace)
		if err != nil {
			return nil, fmt.Errorf("parse LOBBY_GRACE: %w", err)
		}
		cfg.LobbyGrace = d
	}
	return cfg, nil
}
