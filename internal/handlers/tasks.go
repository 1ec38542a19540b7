package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/campusboard/taskboard/internal/logger"
	"github.com/campusboard/taskboard/internal/middleware"
	"github.com/campusboard/taskboard/internal/response"
	tasksvc "github.com/campusboard/taskboard/internal/service/task"
)

// TaskHandler exposes the task endpoints
type TaskHandler struct {
	Service *tasksvc.Service
	Log     *logger.Logger
}

func NewTaskHandler(service *tasksvc.Service, log *logger.Logger) *TaskHandler {
	return &TaskHandler{Service: service, Log: log}
}

// ListForTeam handles GET /api/tasks/team/{teamId}
func (h *TaskHandler) ListForTeam(w http.ResponseWriter, r *http.Request) {
	log := h.Log.WithContext(r.Context())

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Fail(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	teamID, err := strconv.ParseInt(mux.Vars(r)["teamId"], 10, 64)
	if err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid team ID")
		return
	}

	tasks, err := h.Service.ListForTeam(r.Context(), userID, teamID, r.URL.Query().Get("status"))
	if err != nil {
		response.Error(w, log, err)
		return
	}
	response.Success(w, http.StatusOK, map[string]interface{}{"tasks": tasks})
}

// MyTasks handles GET /api/tasks/my-tasks
func (h *TaskHandler) MyTasks(w http.ResponseWriter, r *http.Request) {
	log := h.Log.WithContext(r.Context())

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Fail(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	tasks, err := h.Service.ListAssigned(r.Context(), userID, r.URL.Query().Get("status"))
	if err != nil {
		response.Error(w, log, err)
		return
	}
	response.Success(w, http.StatusOK, map[string]interface{}{"tasks": tasks})
}

// Create handles POST /api/tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.Log.WithContext(r.Context())

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Fail(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	var req tasksvc.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	task, err := h.Service.Create(r.Context(), userID, req)
	if err != nil {
		response.Error(w, log, err)
		return
	}

	response.Success(w, http.StatusCreated, map[string]interface{}{
		"message": "Task created successfully",
		"task":    task,
	})
}

// Update handles PUT /api/tasks/{taskId}
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	log := h.Log.WithContext(r.Context())

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Fail(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	taskID, err := strconv.ParseInt(mux.Vars(r)["taskId"], 10, 64)
	if err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid task ID")
		return
	}

	var patch tasksvc.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	task, err := h.Service.Update(r.Context(), userID, taskID, patch)
	if err != nil {
		response.Error(w, log, err)
		return
	}

	response.Success(w, http.StatusOK, map[string]interface{}{
		"message": "Task updated successfully",
		"task":    task,
	})
}

// Delete handles DELETE /api/tasks/{taskId}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	log := h.Log.WithContext(r.Context())

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Fail(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	taskID, err := strconv.ParseInt(mux.Vars(r)["taskId"], 10, 64)
	if err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid task ID")
		return
	}

	if err := h.Service.Delete(r.Context(), userID, taskID); err != nil {
		response.Error(w, log, err)
		return
	}
	response.Success(w, http.StatusOK, map[string]interface{}{
		"message": "Task deleted successfully",
	})
}

// TeamStats handles GET /api/tasks/team/{teamId}/stats
func (h *TaskHandler) TeamStats(w http.ResponseWriter, r *http.Request) {
	log := h.Log.WithContext(r.Context())

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Fail(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	teamID, err := strconv.ParseInt(mux.Vars(r)["teamId"], 10, 64)
	if err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid team ID")
		return
	}

	stats, err := h.Service.TeamStats(r.Context(), userID, teamID)
	if err != nil {
		response.Error(w, log, err)
		return
	}
	response.Success(w, http.StatusOK, map[string]interface{}{"stats": stats})
}
