package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/campusboard/taskboard/internal/logger"
	"github.com/campusboard/taskboard/internal/middleware"
	"github.com/campusboard/taskboard/internal/response"
	teamsvc "github.com/campusboard/taskboard/internal/service/team"
)

// TeamHandler exposes the team endpoints
type TeamHandler struct {
	Service *teamsvc.Service
	Log     *logger.Logger
}

func NewTeamHandler(service *teamsvc.Service, log *logger.Logger) *TeamHandler {
	return &TeamHandler{Service: service, Log: log}
}

type teamRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// List handles GET /api/teams
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	log := h.Log.WithContext(r.Context())

	teams, err := h.Service.ListAll(r.Context())
	if err != nil {
		response.Error(w, log, err)
		return
	}
	response.Success(w, http.StatusOK, map[string]interface{}{"teams": teams})
}

// MyTeams handles GET /api/teams/my-teams
func (h *TeamHandler) MyTeams(w http.ResponseWriter, r *http.Request) {
	log := h.Log.WithContext(r.Context())

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Fail(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	teams, err := h.Service.ListForUser(r.Context(), userID)
	if err != nil {
		response.Error(w, log, err)
		return
	}
	response.Success(w, http.StatusOK, map[string]interface{}{"teams": teams})
}

// Create handles POST /api/teams
func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.Log.WithContext(r.Context())

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Fail(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	var req teamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	team, err := h.Service.Create(r.Context(), userID, req.Name, req.Description)
	if err != nil {
		response.Error(w, log, err)
		return
	}

	response.Success(w, http.StatusCreated, map[string]interface{}{
		"message": "Team created successfully",
		"team":    team,
	})
}

// Get handles GET /api/teams/{teamId}
func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.Log.WithContext(r.Context())

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Fail(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	teamID, err := teamIDVar(r)
	if err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid team ID")
		return
	}

	team, err := h.Service.Get(r.Context(), userID, teamID)
	if err != nil {
		response.Error(w, log, err)
		return
	}
	response.Success(w, http.StatusOK, map[string]interface{}{"team": team})
}

// Update handles PUT /api/teams/{teamId}
func (h *TeamHandler) Update(w http.ResponseWriter, r *http.Request) {
	log := h.Log.WithContext(r.Context())

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Fail(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	teamID, err := teamIDVar(r)
	if err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid team ID")
		return
	}

	var req teamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	team, err := h.Service.Update(r.Context(), userID, teamID, req.Name, req.Description)
	if err != nil {
		response.Error(w, log, err)
		return
	}

	response.Success(w, http.StatusOK, map[string]interface{}{
		"message": "Team updated successfully",
		"team":    team,
	})
}

// Delete handles DELETE /api/teams/{teamId}
func (h *TeamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	log := h.Log.WithContext(r.Context())

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Fail(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	teamID, err := teamIDVar(r)
	if err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid team ID")
		return
	}

	if err := h.Service.Delete(r.Context(), userID, teamID); err != nil {
		response.Error(w, log, err)
		return
	}
	response.Success(w, http.StatusOK, map[string]interface{}{
		"message": "Team deleted successfully",
	})
}

// Join handles POST /api/teams/{teamId}/join
func (h *TeamHandler) Join(w http.ResponseWriter, r *http.Request) {
	log := h.Log.WithContext(r.Context())

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Fail(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	teamID, err := teamIDVar(r)
	if err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid team ID")
		return
	}

	if err := h.Service.Join(r.Context(), userID, teamID); err != nil {
		response.Error(w, log, err)
		return
	}
	response.Success(w, http.StatusOK, map[string]interface{}{
		"message": "Successfully joined the team",
	})
}

// Leave handles POST /api/teams/{teamId}/leave
func (h *TeamHandler) Leave(w http.ResponseWriter, r *http.Request) {
	log := h.Log.WithContext(r.Context())

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Fail(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	teamID, err := teamIDVar(r)
	if err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid team ID")
		return
	}

	if err := h.Service.Leave(r.Context(), userID, teamID); err != nil {
		response.Error(w, log, err)
		return
	}
	response.Success(w, http.StatusOK, map[string]interface{}{
		"message": "Successfully left the team",
	})
}

func teamIDVar(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["teamId"], 10, 64)
}
