// Command seed inserts demo accounts for local development.
package main

import (
	"context"

	"github.com/campusboard/taskboard/internal/config"
	"github.com/campusboard/taskboard/internal/database"
	"github.com/campusboard/taskboard/internal/logger"
	authsvc "github.com/campusboard/taskboard/internal/service/auth"
)

var demoUsers = []struct {
	Name     string
	Email    string
	Password string
}{
	{"Test User", "testuser@example.com", "password123"},
	{"Team Lead", "teamlead@example.com", "password123"},
	{"Student", "student@example.com", "password123"},
}

func main() {
	log := logger.New("seed")
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration", "error", err)
	}

	dsn := cfg.SQLiteDSN
	if cfg.DBDriver == "mysql" {
		dsn = cfg.MySQLDSN()
	}

	db, err := database.Open(cfg.DBDriver, dsn)
	if err != nil {
		log.Fatal("failed to open database", "driver", cfg.DBDriver, "error", err)
	}
	defer db.Close()

	auth := authsvc.New(db, log)
	ctx := context.Background()

	for _, u := range demoUsers {
		user, err := auth.Register(ctx, u.Name, u.Email, u.Password)
		if err != nil {
			// Duplicate emails mean the database is already seeded.
			log.Warn("skipping user", "email", u.Email, "reason", err)
			continue
		}
		log.Info("created user", "email", user.Email, "user_id", user.ID)
	}
}
