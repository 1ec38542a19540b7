package response

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/campusboard/taskboard/internal/apperrors"
	"github.com/campusboard/taskboard/internal/logger"
)

// Every endpoint answers with the same envelope: a success flag plus
// resource fields on success, a success flag plus a human-readable
// message on failure.

var production = os.Getenv("APP_ENV") == "production"

// JSON writes payload with the given status code
func JSON(w http.ResponseWriter, code int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(body)
}

// Success writes {"success":true} merged with fields
func Success(w http.ResponseWriter, code int, fields map[string]interface{}) {
	payload := map[string]interface{}{"success": true}
	for k, v := range fields {
		payload[k] = v
	}
	JSON(w, code, payload)
}

// Fail writes {"success":false,"message":message}
func Fail(w http.ResponseWriter, code int, message string) {
	JSON(w, code, map[string]interface{}{"success": false, "message": message})
}

// Error classifies err, logs it and writes the failure envelope.
// Unexpected errors keep their detail out of the response body when
// running in production.
func Error(w http.ResponseWriter, log *logger.Logger, err error) {
	status := apperrors.HTTPStatus(err)
	message := apperrors.MessageOf(err)

	if status == http.StatusInternalServerError {
		log.Error("request failed", "error", err)
		if production {
			message = "Internal server error"
		}
	} else {
		log.Debug("request rejected", "status", status, "message", message)
	}

	Fail(w, status, message)
}
