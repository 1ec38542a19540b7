package auth

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/campusboard/taskboard/internal/apperrors"
	"github.com/campusboard/taskboard/internal/database"
	"github.com/campusboard/taskboard/internal/logger"
	"github.com/campusboard/taskboard/internal/models"
	"github.com/campusboard/taskboard/internal/sanitize"
	"github.com/campusboard/taskboard/pkg/utils"
)

// Service issues credentials and resolves accounts
type Service struct {
	DB  *sql.DB
	Log *logger.Logger
}

func New(db *sql.DB, log *logger.Logger) *Service {
	return &Service{DB: db, Log: log}
}

// Register creates an account and returns it without the credential
func (s *Service) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	name = sanitize.Text(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return nil, apperrors.Validation("Name, email and password are required")
	}
	if len(password) < 6 {
		return nil, apperrors.Validation("Password must be at least 6 characters")
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, apperrors.Unexpected("Error creating user", err)
	}

	now := time.Now().UTC().Unix()
	result, err := s.DB.ExecContext(ctx, `
		INSERT INTO users (name, email, password, created_at)
		VALUES (?, ?, ?, ?)
	`, name, email, hashed, now)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperrors.Conflict("Email already registered")
		}
		return nil, apperrors.Unexpected("Error creating user", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, apperrors.Unexpected("Error creating user", err)
	}

	s.Log.Info("user registered", "user_id", id, "email", email)
	return &models.User{ID: id, Name: name, Email: email, CreatedAt: now}, nil
}

// Login verifies the credential and returns the account with a token
func (s *Service) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, name, email, password, created_at FROM users WHERE email = ?
	`, email).Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, apperrors.Validation("Invalid email or password")
		}
		return "", nil, apperrors.Unexpected("Error logging in", err)
	}

	if err := utils.CheckPassword(user.Password, password); err != nil {
		return "", nil, apperrors.Validation("Invalid email or password")
	}

	token, err := s.GenerateJWT(user.Email, user.ID)
	if err != nil {
		return "", nil, apperrors.Unexpected("Error logging in", err)
	}

	user.Password = ""
	return token, &user, nil
}

// Profile loads the account by id
func (s *Service) Profile(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, name, email, created_at FROM users WHERE id = ?
	`, userID).Scan(&user.ID, &user.Name, &user.Email, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, apperrors.Unexpected("Error fetching profile", err)
	}
	return &user, nil
}

// UpdateProfile changes the account's display name
func (s *Service) UpdateProfile(ctx context.Context, userID int64, name string) (*models.User, error) {
	name = sanitize.Text(name)
	if name == "" {
		return nil, apperrors.Validation("Name is required")
	}

	_, err := s.DB.ExecContext(ctx, `UPDATE users SET name = ? WHERE id = ?`, name, userID)
	if err != nil {
		return nil, apperrors.Unexpected("Error updating profile", err)
	}
	return s.Profile(ctx, userID)
}

// GenerateJWT mints a 24h HS256 token carrying the user identity
func (s *Service) GenerateJWT(email string, userID int64) (string, error) {
	secretKey := os.Getenv("JWT_SECRET")
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email":   email,
		"user_id": userID,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	})
	return token.SignedString([]byte(secretKey))
}
