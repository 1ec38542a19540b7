package handlers

import (
	"net/http"
	"os"
	"time"

	"github.com/campusboard/taskboard/internal/response"
)

// Health handles GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	response.Success(w, http.StatusOK, map[string]interface{}{
		"message":     "Campus Taskboard API is running!",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": env,
	})
}
