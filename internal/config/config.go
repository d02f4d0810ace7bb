package config

import (
	"log"
	"os"
)

const (
	defaultDBPath = "./astrocalc.db"
	defaultPort   = "8080"
	defaultEnv    = "dev"
)

// Config holds server configuration sourced from environment variables.
type Config struct {
	Env           string
	DBPath        string
	Port          string
	SessionSecret string
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	// Best-effort local development convenience; production should use
	// real env injection.
	_ = loadDotEnv(".env")

	cfg := Config{
		Env:           os.Getenv("APP_ENV"),
		DBPath:        os.Getenv("DB_PATH"),
		Port:          os.Getenv("PORT"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
	}

	if cfg.Env == "" {
		cfg.Env = defaultEnv
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}

	if cfg.SessionSecret == "" {
		log.Print("warning: SESSION_SECRET is not set; session cookies will not survive restarts")
	}

	return cfg
}

// IsDev reports whether the server runs with development conveniences:
// automatic migrations and catalog seeding at startup.
func (c Config) IsDev() bool {
	return c.Env == defaultEnv
}
