package handlers

import (
	"net/http"

	"github.com/campusboard/taskboard/internal/logger"
	"github.com/campusboard/taskboard/internal/middleware"
	"github.com/campusboard/taskboard/internal/response"
	dashboardsvc "github.com/campusboard/taskboard/internal/service/dashboard"
)

// DashboardHandler exposes the summary endpoint
type DashboardHandler struct {
	Service *dashboardsvc.Service
	Log     *logger.Logger
}

func NewDashboardHandler(service *dashboardsvc.Service, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{Service: service, Log: log}
}

// Summary handles GET /api/dashboard/summary
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	log := h.Log.WithContext(r.Context())

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Fail(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	summary, err := h.Service.ForUser(r.Context(), userID)
	if err != nil {
		response.Error(w, log, err)
		return
	}
	response.Success(w, http.StatusOK, map[string]interface{}{"summary": summary})
}
