package routes

import (
	"database/sql"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/campusboard/taskboard/internal/handlers"
	"github.com/campusboard/taskboard/internal/logger"
	"github.com/campusboard/taskboard/internal/middleware"
	authsvc "github.com/campusboard/taskboard/internal/service/auth"
	dashboardsvc "github.com/campusboard/taskboard/internal/service/dashboard"
	tasksvc "github.com/campusboard/taskboard/internal/service/task"
	teamsvc "github.com/campusboard/taskboard/internal/service/team"
	"github.com/campusboard/taskboard/internal/ws"
)

// New wires the services, handlers and middleware into the router
func New(db *sql.DB, log *logger.Logger, hub *ws.Hub) *mux.Router {
	authService := authsvc.New(db, logger.New("auth-service"))
	teamService := teamsvc.New(db, logger.New("team-service"))
	taskService := tasksvc.New(db, logger.New("task-service"), hub)
	dashboardService := dashboardsvc.New(db, logger.New("dashboard-service"))

	authHandler := handlers.NewAuthHandler(authService, log)
	teamHandler := handlers.NewTeamHandler(teamService, log)
	taskHandler := handlers.NewTaskHandler(taskService, log)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, log)
	wsHandler := handlers.NewWebSocketHandler(hub, teamService, log)

	router := mux.NewRouter()
	router.Use(middleware.RequestID)

	router.HandleFunc("/health", handlers.Health).Methods(http.MethodGet)

	registrations := []func(*mux.Router){
		func(r *mux.Router) { registerAuthRoutes(r, authHandler) },
		func(r *mux.Router) { registerTeamRoutes(r, teamHandler) },
		func(r *mux.Router) { registerTaskRoutes(r, taskHandler) },
		func(r *mux.Router) { registerDashboardRoutes(r, dashboardHandler) },
		func(r *mux.Router) { registerWebSocketRoutes(r, wsHandler) },
	}
	for _, register := range registrations {
		register(router)
	}

	return router
}

func registerAuthRoutes(router *mux.Router, h *handlers.AuthHandler) {
	public := router.PathPrefix("/api/auth").Subrouter()
	public.Use(middleware.JSONResponse)
	public.HandleFunc("/register", h.Register).Methods(http.MethodPost)
	public.HandleFunc("/login", h.Login).Methods(http.MethodPost)

	private := router.PathPrefix("/api/auth").Subrouter()
	private.Use(middleware.Auth, middleware.JSONResponse)
	private.HandleFunc("/profile", h.Profile).Methods(http.MethodGet)
	private.HandleFunc("/profile", h.UpdateProfile).Methods(http.MethodPut)
}

func registerTeamRoutes(router *mux.Router, h *handlers.TeamHandler) {
	r := router.PathPrefix("/api/teams").Subrouter()
	r.Use(middleware.Auth, middleware.JSONResponse)
	r.HandleFunc("", h.List).Methods(http.MethodGet)
	r.HandleFunc("/my-teams", h.MyTeams).Methods(http.MethodGet)
	r.HandleFunc("", h.Create).Methods(http.MethodPost)
	r.HandleFunc("/{teamId}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/{teamId}", h.Update).Methods(http.MethodPut)
	r.HandleFunc("/{teamId}", h.Delete).Methods(http.MethodDelete)
	r.HandleFunc("/{teamId}/join", h.Join).Methods(http.MethodPost)
	r.HandleFunc("/{teamId}/leave", h.Leave).Methods(http.MethodPost)
}

func registerTaskRoutes(router *mux.Router, h *handlers.TaskHandler) {
	r := router.PathPrefix("/api/tasks").Subrouter()
	r.Use(middleware.Auth, middleware.JSONResponse)
	r.HandleFunc("/team/{teamId}", h.ListForTeam).Methods(http.MethodGet)
	r.HandleFunc("/team/{teamId}/stats", h.TeamStats).Methods(http.MethodGet)
	r.HandleFunc("/my-tasks", h.MyTasks).Methods(http.MethodGet)
	r.HandleFunc("", h.Create).Methods(http.MethodPost)
	r.HandleFunc("/{taskId}", h.Update).Methods(http.MethodPut)
	r.HandleFunc("/{taskId}", h.Delete).Methods(http.MethodDelete)
}

func registerDashboardRoutes(router *mux.Router, h *handlers.DashboardHandler) {
	r := router.PathPrefix("/api/dashboard").Subrouter()
	r.Use(middleware.Auth, middleware.JSONResponse)
	r.HandleFunc("/summary", h.Summary).Methods(http.MethodGet)
}

func registerWebSocketRoutes(router *mux.Router, h *handlers.WebSocketHandler) {
	r := router.PathPrefix("/ws").Subrouter()
	r.Use(middleware.Auth)
	r.HandleFunc("", h.Serve).Methods(http.MethodGet)
}
