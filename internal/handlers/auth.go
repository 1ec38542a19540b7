package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/campusboard/taskboard/internal/apperrors"
	"github.com/campusboard/taskboard/internal/logger"
	"github.com/campusboard/taskboard/internal/middleware"
	"github.com/campusboard/taskboard/internal/response"
	authsvc "github.com/campusboard/taskboard/internal/service/auth"
)

// AuthHandler exposes registration, login and profile endpoints
type AuthHandler struct {
	Service *authsvc.Service
	Log     *logger.Logger
}

func NewAuthHandler(service *authsvc.Service, log *logger.Logger) *AuthHandler {
	return &AuthHandler{Service: service, Log: log}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profileRequest struct {
	Name string `json:"name"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	log := h.Log.WithContext(r.Context())

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.Service.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		response.Error(w, log, err)
		return
	}

	token, err := h.Service.GenerateJWT(user.Email, user.ID)
	if err != nil {
		response.Error(w, log, apperrors.Unexpected("Error creating user", err))
		return
	}

	response.Success(w, http.StatusCreated, map[string]interface{}{
		"message": "User created successfully",
		"token":   token,
		"user":    user,
	})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := h.Log.WithContext(r.Context())

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, user, err := h.Service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(w, log, err)
		return
	}

	response.Success(w, http.StatusOK, map[string]interface{}{
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}

// Profile handles GET /api/auth/profile
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	log := h.Log.WithContext(r.Context())

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Fail(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	user, err := h.Service.Profile(r.Context(), userID)
	if err != nil {
		response.Error(w, log, err)
		return
	}

	response.Success(w, http.StatusOK, map[string]interface{}{"user": user})
}

// UpdateProfile handles PUT /api/auth/profile
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	log := h.Log.WithContext(r.Context())

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Fail(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.Service.UpdateProfile(r.Context(), userID, req.Name)
	if err != nil {
		response.Error(w, log, err)
		return
	}

	response.Success(w, http.StatusOK, map[string]interface{}{
		"message": "Profile updated successfully",
		"user":    user,
	})
}
