package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"

	"github.com/campusboard/taskboard/internal/logger"
	"github.com/campusboard/taskboard/internal/middleware"
	"github.com/campusboard/taskboard/internal/response"
	teamsvc "github.com/campusboard/taskboard/internal/service/team"
	"github.com/campusboard/taskboard/internal/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: restrict to the frontend origin once it is pinned down
	},
}

// WebSocketHandler upgrades authenticated team members into the
// team's task-event room
type WebSocketHandler struct {
	Hub   *ws.Hub
	Teams *teamsvc.Service
	Log   *logger.Logger
}

func NewWebSocketHandler(hub *ws.Hub, teams *teamsvc.Service, log *logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{Hub: hub, Teams: teams, Log: log}
}

// Serve handles GET /ws?team_id=N
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Fail(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	teamID, err := strconv.ParseInt(r.URL.Query().Get("team_id"), 10, 64)
	if err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid team ID")
		return
	}

	member, err := h.Teams.IsMember(r.Context(), teamID, userID)
	if err != nil {
		response.Error(w, h.Log.WithContext(r.Context()), err)
		return
	}
	if !member {
		response.Fail(w, http.StatusForbidden, "Access denied - not a team member")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Log.Warn("websocket upgrade failed", "error", err)
		return
	}

	h.Hub.Subscribe(conn, userID, teamID)
	h.Log.Debug("websocket subscribed", "user_id", userID, "team_id", teamID)
}
