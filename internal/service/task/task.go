package task

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/campusboard/taskboard/internal/apperrors"
	"github.com/campusboard/taskboard/internal/logger"
	"github.com/campusboard/taskboard/internal/models"
	"github.com/campusboard/taskboard/internal/sanitize"
	"github.com/campusboard/taskboard/internal/ws"
)

// Service owns task reads and the task mutation rules: membership
// gating, assignee validation, partial updates and the delete
// permission matrix.
type Service struct {
	DB     *sql.DB
	Log    *logger.Logger
	Events *ws.Hub // optional; nil disables notifications
}

func New(db *sql.DB, log *logger.Logger, events *ws.Hub) *Service {
	return &Service{DB: db, Log: log, Events: events}
}

// CreateRequest is the payload for creating a task
type CreateRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	TeamID      int64   `json:"team_id"`
	AssignedTo  *int64  `json:"assigned_to"`
	DueDate     *string `json:"due_date"`
}

// Patch is a typed partial update. A field participates only when its
// key was present in the request body: absent leaves the stored value
// untouched, present null (or zero for the assignee) clears it.
type Patch struct {
	Title       models.OptString `json:"title"`
	Description models.OptString `json:"description"`
	Status      models.OptString `json:"status"`
	AssignedTo  models.OptInt64  `json:"assigned_to"`
	DueDate     models.OptString `json:"due_date"`
}

// Empty reports whether the patch carries no fields
func (p *Patch) Empty() bool {
	return !p.Title.Set && !p.Description.Set && !p.Status.Set &&
		!p.AssignedTo.Set && !p.DueDate.Set
}

// ListForTeam returns the team's tasks, optionally filtered by status.
// Members only.
func (s *Service) ListForTeam(ctx context.Context, userID, teamID int64, status string) ([]models.TaskView, error) {
	member, err := s.isMember(ctx, teamID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, apperrors.Permission("Access denied - not a team member")
	}

	query := `
		SELECT t.id, t.team_id, t.title, t.description, t.status,
		       t.assigned_to, t.created_by, t.due_date, t.created_at, t.updated_at,
		       COALESCE(au.name, ''), COALESCE(cu.name, '')
		FROM tasks t
		LEFT JOIN users au ON t.assigned_to = au.id
		LEFT JOIN users cu ON t.created_by = cu.id
		WHERE t.team_id = ?
	`
	args := []interface{}{teamID}
	if status != "" {
		query += ` AND t.status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY t.created_at DESC`

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Unexpected("Error fetching tasks", err)
	}
	defer rows.Close()

	tasks := []models.TaskView{}
	for rows.Next() {
		var v models.TaskView
		var assignedTo sql.NullInt64
		var dueDate sql.NullString
		if err := rows.Scan(&v.ID, &v.TeamID, &v.Title, &v.Description, &v.Status,
			&assignedTo, &v.CreatedBy, &dueDate, &v.CreatedAt, &v.UpdatedAt,
			&v.AssignedToName, &v.CreatedByName); err != nil {
			return nil, apperrors.Unexpected("Error fetching tasks", err)
		}
		if assignedTo.Valid {
			v.AssignedTo = &assignedTo.Int64
		}
		if dueDate.Valid {
			v.DueDate = &dueDate.String
		}
		tasks = append(tasks, v)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Unexpected("Error fetching tasks", err)
	}
	return tasks, nil
}

// ListAssigned returns the tasks assigned to the user, optionally
// filtered by status
func (s *Service) ListAssigned(ctx context.Context, userID int64, status string) ([]models.TaskView, error) {
	query := `
		SELECT t.id, t.team_id, t.title, t.description, t.status,
		       t.assigned_to, t.created_by, t.due_date, t.created_at, t.updated_at,
		       COALESCE(team.name, ''), COALESCE(cu.name, '')
		FROM tasks t
		LEFT JOIN teams team ON t.team_id = team.id
		LEFT JOIN users cu ON t.created_by = cu.id
		WHERE t.assigned_to = ?
	`
	args := []interface{}{userID}
	if status != "" {
		query += ` AND t.status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY t.created_at DESC`

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Unexpected("Error fetching user tasks", err)
	}
	defer rows.Close()

	tasks := []models.TaskView{}
	for rows.Next() {
		var v models.TaskView
		var assignedTo sql.NullInt64
		var dueDate sql.NullString
		if err := rows.Scan(&v.ID, &v.TeamID, &v.Title, &v.Description, &v.Status,
			&assignedTo, &v.CreatedBy, &dueDate, &v.CreatedAt, &v.UpdatedAt,
			&v.TeamName, &v.CreatedByName); err != nil {
			return nil, apperrors.Unexpected("Error fetching user tasks", err)
		}
		if assignedTo.Valid {
			v.AssignedTo = &assignedTo.Int64
		}
		if dueDate.Valid {
			v.DueDate = &dueDate.String
		}
		tasks = append(tasks, v)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Unexpected("Error fetching user tasks", err)
	}
	return tasks, nil
}

// Create inserts a task. The caller must belong to the target team and
// the assignee, when given, must too. Status starts as pending.
func (s *Service) Create(ctx context.Context, userID int64, req CreateRequest) (*models.Task, error) {
	title := sanitize.Text(req.Title)
	description := sanitize.Text(req.Description)
	if title == "" || req.TeamID == 0 {
		return nil, apperrors.Validation("Title and team_id are required")
	}

	member, err := s.isMember(ctx, req.TeamID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, apperrors.Permission("You must be a team member to create tasks")
	}

	if req.AssignedTo != nil && *req.AssignedTo != 0 {
		assigneeMember, err := s.isMember(ctx, req.TeamID, *req.AssignedTo)
		if err != nil {
			return nil, err
		}
		if !assigneeMember {
			return nil, apperrors.Validation("Cannot assign task to non-team member")
		}
	}

	dueDate, err := normalizeDueDate(req.DueDate)
	if err != nil {
		return nil, err
	}

	var assignedTo interface{}
	if req.AssignedTo != nil && *req.AssignedTo != 0 {
		assignedTo = *req.AssignedTo
	}

	now := time.Now().UTC().Unix()
	result, err := s.DB.ExecContext(ctx, `
		INSERT INTO tasks (team_id, title, description, status, assigned_to, created_by, due_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, req.TeamID, title, description, models.StatusPending, assignedTo, userID, dueDate, now, now)
	if err != nil {
		return nil, apperrors.Unexpected("Error creating task", err)
	}

	taskID, err := result.LastInsertId()
	if err != nil {
		return nil, apperrors.Unexpected("Error creating task", err)
	}

	s.Log.Info("task created", "task_id", taskID, "team_id", req.TeamID, "user_id", userID)
	s.publish(ws.Event{Type: "task_created", TaskID: taskID, TeamID: req.TeamID, ActorID: userID})

	created := &models.Task{
		ID:          taskID,
		TeamID:      req.TeamID,
		Title:       title,
		Description: description,
		Status:      models.StatusPending,
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.AssignedTo != nil && *req.AssignedTo != 0 {
		created.AssignedTo = req.AssignedTo
	}
	if d, ok := dueDate.(string); ok {
		created.DueDate = &d
	}
	return created, nil
}

// Update applies a partial update to the task. Members of the task's
// team only. updated_at is always recomputed.
func (s *Service) Update(ctx context.Context, userID, taskID int64, patch Patch) (*models.Task, error) {
	current, err := s.load(ctx, taskID)
	if err != nil {
		return nil, err
	}

	member, err := s.isMember(ctx, current.TeamID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, apperrors.Permission("You must be a team member to update tasks")
	}

	if patch.Empty() {
		return nil, apperrors.Validation("No valid fields to update")
	}

	sets := []string{}
	args := []interface{}{}

	if patch.Title.Set {
		title := ""
		if patch.Title.Value != nil {
			title = sanitize.Text(*patch.Title.Value)
		}
		sets = append(sets, "title = ?")
		args = append(args, title)
	}
	if patch.Description.Set {
		description := ""
		if patch.Description.Value != nil {
			description = sanitize.Text(*patch.Description.Value)
		}
		sets = append(sets, "description = ?")
		args = append(args, description)
	}
	if patch.Status.Set {
		status := ""
		if patch.Status.Value != nil {
			status = *patch.Status.Value
		}
		if !models.TaskStatus(status).Valid() {
			return nil, apperrors.Validation("Invalid status. Must be: pending, in_progress, or completed")
		}
		sets = append(sets, "status = ?")
		args = append(args, status)
	}
	if patch.AssignedTo.Set {
		if patch.AssignedTo.Value != nil && *patch.AssignedTo.Value != 0 {
			assigneeMember, err := s.isMember(ctx, current.TeamID, *patch.AssignedTo.Value)
			if err != nil {
				return nil, err
			}
			if !assigneeMember {
				return nil, apperrors.Validation("Cannot assign task to non-team member")
			}
			sets = append(sets, "assigned_to = ?")
			args = append(args, *patch.AssignedTo.Value)
		} else {
			sets = append(sets, "assigned_to = ?")
			args = append(args, nil)
		}
	}
	if patch.DueDate.Set {
		dueDate, err := normalizeDueDate(patch.DueDate.Value)
		if err != nil {
			return nil, err
		}
		sets = append(sets, "due_date = ?")
		args = append(args, dueDate)
	}

	now := time.Now().UTC().Unix()
	sets = append(sets, "updated_at = ?")
	args = append(args, now, taskID)

	_, err = s.DB.ExecContext(ctx,
		"UPDATE tasks SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return nil, apperrors.Unexpected("Error updating task", err)
	}

	updated, err := s.load(ctx, taskID)
	if err != nil {
		return nil, err
	}

	s.Log.Info("task updated", "task_id", taskID, "user_id", userID)
	s.publish(ws.Event{Type: "task_updated", TaskID: taskID, TeamID: updated.TeamID, ActorID: userID})

	return updated, nil
}

// Delete removes a task. Only the task's creator or a team leader may
// delete it, and either way the caller must be a member.
func (s *Service) Delete(ctx context.Context, userID, taskID int64) error {
	current, err := s.load(ctx, taskID)
	if err != nil {
		return err
	}

	var role models.Role
	err = s.DB.QueryRowContext(ctx, `
		SELECT role FROM team_members WHERE team_id = ? AND user_id = ?
	`, current.TeamID, userID).Scan(&role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.Permission("You must be a team member to delete tasks")
		}
		return apperrors.Unexpected("Error deleting task", err)
	}

	if current.CreatedBy != userID && role != models.RoleLeader {
		return apperrors.Permission("Only task creator or team leader can delete tasks")
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, taskID); err != nil {
		return apperrors.Unexpected("Error deleting task", err)
	}

	s.Log.Info("task deleted", "task_id", taskID, "user_id", userID)
	s.publish(ws.Event{Type: "task_deleted", TaskID: taskID, TeamID: current.TeamID, ActorID: userID})

	return nil
}

// TeamStats returns per-status and overdue counts for the team's
// tasks. Members only.
func (s *Service) TeamStats(ctx context.Context, userID, teamID int64) (*models.TaskStats, error) {
	member, err := s.isMember(ctx, teamID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, apperrors.Permission("Access denied - not a team member")
	}

	today := time.Now().UTC().Format("2006-01-02")
	var stats models.TaskStats
	err = s.DB.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(CASE WHEN status = 'pending' THEN 1 END),
			COUNT(CASE WHEN status = 'in_progress' THEN 1 END),
			COUNT(CASE WHEN status = 'completed' THEN 1 END),
			COUNT(CASE WHEN due_date IS NOT NULL AND due_date < ? AND status != 'completed' THEN 1 END)
		FROM tasks
		WHERE team_id = ?
	`, today, teamID).Scan(&stats.Total, &stats.Pending, &stats.InProgress,
		&stats.Completed, &stats.Overdue)
	if err != nil {
		return nil, apperrors.Unexpected("Error fetching task statistics", err)
	}
	return &stats, nil
}

func (s *Service) load(ctx context.Context, taskID int64) (*models.Task, error) {
	var t models.Task
	var assignedTo sql.NullInt64
	var dueDate sql.NullString
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, team_id, title, description, status, assigned_to, created_by, due_date, created_at, updated_at
		FROM tasks WHERE id = ?
	`, taskID).Scan(&t.ID, &t.TeamID, &t.Title, &t.Description, &t.Status,
		&assignedTo, &t.CreatedBy, &dueDate, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("Task not found")
		}
		return nil, apperrors.Unexpected("Error fetching task", err)
	}
	if assignedTo.Valid {
		t.AssignedTo = &assignedTo.Int64
	}
	if dueDate.Valid {
		t.DueDate = &dueDate.String
	}
	return &t, nil
}

func (s *Service) isMember(ctx context.Context, teamID, userID int64) (bool, error) {
	var exists bool
	err := s.DB.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM team_members WHERE team_id = ? AND user_id = ?)
	`, teamID, userID).Scan(&exists)
	if err != nil {
		return false, apperrors.Unexpected("Error checking team membership", err)
	}
	return exists, nil
}

func (s *Service) publish(event ws.Event) {
	if s.Events != nil {
		s.Events.Publish(event)
	}
}

// normalizeDueDate validates the YYYY-MM-DD wire format. Nil or empty
// clears the date (stored as NULL).
func normalizeDueDate(raw *string) (interface{}, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	if _, err := time.Parse("2006-01-02", *raw); err != nil {
		return nil, apperrors.Validation("Invalid due date. Must be YYYY-MM-DD")
	}
	return *raw, nil
}
