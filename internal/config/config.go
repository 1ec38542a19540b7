package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds everything the process reads from the environment
type Config struct {
	Port      string
	AppEnv    string
	DBDriver  string // "mysql" or "sqlite"
	DBUser    string
	DBPass    string
	DBHost    string
	DBPort    string
	DBName    string
	SQLiteDSN string
	JWTSecret string
}

// Load reads .env (when present) and the process environment
func Load() (*Config, error) {
	// A missing .env is fine in deployed environments where variables
	// come from the platform.
	_ = godotenv.Load()

	cfg := &Config{
		Port:      envOr("PORT", "8080"),
		AppEnv:    envOr("APP_ENV", "development"),
		DBDriver:  envOr("DB_DRIVER", "sqlite"),
		DBUser:    os.Getenv("DB_USER"),
		DBPass:    os.Getenv("DB_PASSWORD"),
		DBHost:    envOr("DB_HOST", "localhost"),
		DBPort:    envOr("DB_PORT", "3306"),
		DBName:    os.Getenv("DB_NAME"),
		SQLiteDSN: envOr("SQLITE_PATH", "./taskboard.db"),
		JWTSecret: os.Getenv("JWT_SECRET"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}
	if cfg.DBDriver == "mysql" && cfg.DBName == "" {
		return nil, fmt.Errorf("DB_NAME is required for the mysql driver")
	}

	return cfg, nil
}

// MySQLDSN renders the go-sql-driver connection string
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
