package main

import (
	"net/http"

	"github.com/campusboard/taskboard/internal/config"
	"github.com/campusboard/taskboard/internal/database"
	"github.com/campusboard/taskboard/internal/logger"
	"github.com/campusboard/taskboard/internal/routes"
	"github.com/campusboard/taskboard/internal/ws"
)

func main() {
	log := logger.New("taskboard")
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

	hub := ws.NewHub(log)
	go hub.Run()

	router := routes.New(db, log, hub)

	log.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv, "driver", cfg.DBDriver)
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatal("server stopped", "error", err)
	}
}
