package team

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/campusboard/taskboard/internal/apperrors"
	"github.com/campusboard/taskboard/internal/database"
	"github.com/campusboard/taskboard/internal/logger"
	"github.com/campusboard/taskboard/internal/models"
	"github.com/campusboard/taskboard/internal/sanitize"
)

// Service owns team reads and the team mutation rules: who may edit or
// delete a team, who may join or leave, and which writes must land
// together.
type Service struct {
	DB  *sql.DB
	Log *logger.Logger
}

func New(db *sql.DB, log *logger.Logger) *Service {
	return &Service{DB: db, Log: log}
}

// ListAll returns every team with creator name and member count
func (s *Service) ListAll(ctx context.Context) ([]models.TeamSummary, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT t.id, t.name, t.description, t.created_at,
		       COALESCE(u.name, ''), COUNT(tm.user_id)
		FROM teams t
		LEFT JOIN users u ON t.created_by = u.id
		LEFT JOIN team_members tm ON t.id = tm.team_id
		GROUP BY t.id, t.name, t.description, t.created_at, u.name
		ORDER BY t.created_at DESC
	`)
	if err != nil {
		return nil, apperrors.Unexpected("Error fetching teams", err)
	}
	defer rows.Close()

	teams := []models.TeamSummary{}
	for rows.Next() {
		var t models.TeamSummary
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.CreatedAt,
			&t.CreatedByName, &t.MemberCount); err != nil {
			return nil, apperrors.Unexpected("Error fetching teams", err)
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Unexpected("Error fetching teams", err)
	}
	return teams, nil
}

// ListForUser returns the teams the user belongs to, with their role
func (s *Service) ListForUser(ctx context.Context, userID int64) ([]models.TeamSummary, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT t.id, t.name, t.description, t.created_at, tm.role,
		       COALESCE(u.name, ''), COUNT(DISTINCT tm2.user_id)
		FROM teams t
		JOIN team_members tm ON t.id = tm.team_id
		LEFT JOIN users u ON t.created_by = u.id
		LEFT JOIN team_members tm2 ON t.id = tm2.team_id
		WHERE tm.user_id = ?
		GROUP BY t.id, t.name, t.description, t.created_at, tm.role, u.name
		ORDER BY t.created_at DESC
	`, userID)
	if err != nil {
		return nil, apperrors.Unexpected("Error fetching user teams", err)
	}
	defer rows.Close()

	teams := []models.TeamSummary{}
	for rows.Next() {
		var t models.TeamSummary
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.CreatedAt,
			&t.Role, &t.CreatedByName, &t.MemberCount); err != nil {
			return nil, apperrors.Unexpected("Error fetching user teams", err)
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Unexpected("Error fetching user teams", err)
	}
	return teams, nil
}

// Create inserts the team and its creator's leader membership as one
// unit. A team row without a leader membership is unreachable state.
func (s *Service) Create(ctx context.Context, userID int64, name, description string) (*models.Team, error) {
	name = sanitize.Text(name)
	description = sanitize.Text(description)
	if name == "" {
		return nil, apperrors.Validation("Team name is required")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.Unexpected("Error creating team", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Unix()
	result, err := tx.ExecContext(ctx, `
		INSERT INTO teams (name, description, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, name, description, userID, now, now)
	if err != nil {
		return nil, apperrors.Unexpected("Error creating team", err)
	}

	teamID, err := result.LastInsertId()
	if err != nil {
		return nil, apperrors.Unexpected("Error creating team", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO team_members (team_id, user_id, role, joined_at)
		VALUES (?, ?, ?, ?)
	`, teamID, userID, models.RoleLeader, now)
	if err != nil {
		return nil, apperrors.Unexpected("Error creating team", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.Unexpected("Error creating team", err)
	}

	s.Log.Info("team created", "team_id", teamID, "user_id", userID)

	return &models.Team{
		ID:          teamID,
		Name:        name,
		Description: description,
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Get returns the team with its member list. Members only.
func (s *Service) Get(ctx context.Context, userID, teamID int64) (*models.TeamDetail, error) {
	member, err := s.IsMember(ctx, teamID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, apperrors.Permission("Access denied - not a team member")
	}

	var detail models.TeamDetail
	err = s.DB.QueryRowContext(ctx, `
		SELECT t.id, t.name, t.description, t.created_by, t.created_at, t.updated_at,
		       COALESCE(u.name, '')
		FROM teams t
		LEFT JOIN users u ON t.created_by = u.id
		WHERE t.id = ?
	`, teamID).Scan(&detail.ID, &detail.Name, &detail.Description,
		&detail.CreatedBy, &detail.CreatedAt, &detail.UpdatedAt, &detail.CreatedByName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("Team not found")
		}
		return nil, apperrors.Unexpected("Error fetching team details", err)
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT u.id, u.name, u.email, tm.role, tm.joined_at
		FROM team_members tm
		JOIN users u ON tm.user_id = u.id
		WHERE tm.team_id = ?
		ORDER BY tm.joined_at ASC
	`, teamID)
	if err != nil {
		return nil, apperrors.Unexpected("Error fetching team details", err)
	}
	defer rows.Close()

	detail.Members = []models.MemberInfo{}
	for rows.Next() {
		var m models.MemberInfo
		if err := rows.Scan(&m.UserID, &m.Name, &m.Email, &m.Role, &m.JoinedAt); err != nil {
			return nil, apperrors.Unexpected("Error fetching team details", err)
		}
		detail.Members = append(detail.Members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Unexpected("Error fetching team details", err)
	}

	return &detail, nil
}

// Update renames a team. Leaders only.
func (s *Service) Update(ctx context.Context, userID, teamID int64, name, description string) (*models.Team, error) {
	role, err := s.memberRole(ctx, teamID, userID)
	if err != nil {
		return nil, err
	}
	if role != models.RoleLeader {
		return nil, apperrors.Permission("Only team leaders can edit teams")
	}

	name = sanitize.Text(name)
	description = sanitize.Text(description)
	if name == "" {
		return nil, apperrors.Validation("Team name is required")
	}

	now := time.Now().UTC().Unix()
	result, err := s.DB.ExecContext(ctx, `
		UPDATE teams SET name = ?, description = ?, updated_at = ? WHERE id = ?
	`, name, description, now, teamID)
	if err != nil {
		return nil, apperrors.Unexpected("Error updating team", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return nil, apperrors.NotFound("Team not found")
	}

	var updated models.Team
	err = s.DB.QueryRowContext(ctx, `
		SELECT id, name, description, created_by, created_at, updated_at
		FROM teams WHERE id = ?
	`, teamID).Scan(&updated.ID, &updated.Name, &updated.Description,
		&updated.CreatedBy, &updated.CreatedAt, &updated.UpdatedAt)
	if err != nil {
		return nil, apperrors.Unexpected("Error updating team", err)
	}

	s.Log.Info("team updated", "team_id", teamID, "user_id", userID)
	return &updated, nil
}

// Delete removes the team with its memberships and tasks in one
// transaction, dependents first. Leaders only.
func (s *Service) Delete(ctx context.Context, userID, teamID int64) error {
	role, err := s.memberRole(ctx, teamID, userID)
	if err != nil {
		return err
	}
	if role != models.RoleLeader {
		return apperrors.Permission("Only team leaders can delete teams")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Unexpected("Error deleting team", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE team_id = ?`, teamID); err != nil {
		return apperrors.Unexpected("Error deleting team", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM team_members WHERE team_id = ?`, teamID); err != nil {
		return apperrors.Unexpected("Error deleting team", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM teams WHERE id = ?`, teamID)
	if err != nil {
		return apperrors.Unexpected("Error deleting team", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return apperrors.NotFound("Team not found")
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Unexpected("Error deleting team", err)
	}

	s.Log.Info("team deleted", "team_id", teamID, "user_id", userID)
	return nil
}

// Join adds the caller as a member-role membership
func (s *Service) Join(ctx context.Context, userID, teamID int64) error {
	var id int64
	err := s.DB.QueryRowContext(ctx, `SELECT id FROM teams WHERE id = ?`, teamID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("Team not found")
		}
		return apperrors.Unexpected("Error joining team", err)
	}

	member, err := s.IsMember(ctx, teamID, userID)
	if err != nil {
		return err
	}
	if member {
		return apperrors.Conflict("You are already a member of this team")
	}

	now := time.Now().UTC().Unix()
	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO team_members (team_id, user_id, role, joined_at)
		VALUES (?, ?, ?, ?)
	`, teamID, userID, models.RoleMember, now)
	if err != nil {
		// Two concurrent joins race past the read above; the unique
		// (team_id, user_id) constraint decides the loser.
		if database.IsUniqueViolation(err) {
			return apperrors.Conflict("You are already a member of this team")
		}
		return apperrors.Unexpected("Error joining team", err)
	}

	s.Log.Info("user joined team", "team_id", teamID, "user_id", userID)
	return nil
}

// Leave removes the caller's membership. A leader cannot leave while
// other members remain.
func (s *Service) Leave(ctx context.Context, userID, teamID int64) error {
	role, err := s.memberRole(ctx, teamID, userID)
	if err != nil {
		return err
	}

	if role == models.RoleLeader {
		var others int
		err := s.DB.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM team_members WHERE team_id = ? AND user_id != ?
		`, teamID, userID).Scan(&others)
		if err != nil {
			return apperrors.Unexpected("Error leaving team", err)
		}
		if others > 0 {
			return apperrors.Conflict("Team leaders cannot leave while other members exist. Transfer leadership first.")
		}
	}

	_, err = s.DB.ExecContext(ctx, `
		DELETE FROM team_members WHERE team_id = ? AND user_id = ?
	`, teamID, userID)
	if err != nil {
		return apperrors.Unexpected("Error leaving team", err)
	}

	s.Log.Info("user left team", "team_id", teamID, "user_id", userID)
	return nil
}

// IsMember reports whether userID holds a membership in teamID
func (s *Service) IsMember(ctx context.Context, teamID, userID int64) (bool, error) {
	var exists bool
	err := s.DB.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM team_members WHERE team_id = ? AND user_id = ?)
	`, teamID, userID).Scan(&exists)
	if err != nil {
		return false, apperrors.Unexpected("Error checking team membership", err)
	}
	return exists, nil
}

// memberRole loads the caller's role, mapping a missing membership to
// a permission failure
func (s *Service) memberRole(ctx context.Context, teamID, userID int64) (models.Role, error) {
	var role models.Role
	err := s.DB.QueryRowContext(ctx, `
		SELECT role FROM team_members WHERE team_id = ? AND user_id = ?
	`, teamID, userID).Scan(&role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", apperrors.Permission("Access denied - not a team member")
		}
		return "", apperrors.Unexpected("Error checking team membership", err)
	}
	return role, nil
}
