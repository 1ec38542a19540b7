package dashboard

import (
	"context"
	"database/sql"
	"time"

	"github.com/campusboard/taskboard/internal/apperrors"
	"github.com/campusboard/taskboard/internal/logger"
	"github.com/campusboard/taskboard/internal/models"
)

// Service computes the read-only dashboard rollups. The queries run
// independently without a transaction; the summary is advisory UI
// data, so a write landing between them is acceptable.
type Service struct {
	DB  *sql.DB
	Log *logger.Logger
}

func New(db *sql.DB, log *logger.Logger) *Service {
	return &Service{DB: db, Log: log}
}

// RecentTask is one row of the recently-updated list
type RecentTask struct {
	ID       int64             `json:"id"`
	Title    string            `json:"title"`
	Status   models.TaskStatus `json:"status"`
	DueDate  *string           `json:"due_date"`
	TeamName string            `json:"team_name"`
}

// TeamEntry is one of the user's teams on the dashboard
type TeamEntry struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Role        models.Role `json:"role"`
	MemberCount int         `json:"member_count"`
}

// Summary is the full dashboard payload for one user
type Summary struct {
	Teams struct {
		Count int         `json:"count"`
		List  []TeamEntry `json:"list"`
	} `json:"teams"`
	Tasks struct {
		models.TaskStats
		Recent []RecentTask `json:"recent"`
	} `json:"tasks"`
}

// ForUser builds the dashboard summary for the user
func (s *Service) ForUser(ctx context.Context, userID int64) (*Summary, error) {
	var summary Summary

	err := s.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM team_members WHERE user_id = ?
	`, userID).Scan(&summary.Teams.Count)
	if err != nil {
		return nil, apperrors.Unexpected("Error fetching dashboard summary", err)
	}

	today := time.Now().UTC().Format("2006-01-02")
	err = s.DB.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(CASE WHEN status = 'pending' THEN 1 END),
			COUNT(CASE WHEN status = 'in_progress' THEN 1 END),
			COUNT(CASE WHEN status = 'completed' THEN 1 END),
			COUNT(CASE WHEN due_date IS NOT NULL AND due_date < ? AND status != 'completed' THEN 1 END)
		FROM tasks
		WHERE assigned_to = ?
	`, today, userID).Scan(&summary.Tasks.Total, &summary.Tasks.Pending,
		&summary.Tasks.InProgress, &summary.Tasks.Completed, &summary.Tasks.Overdue)
	if err != nil {
		return nil, apperrors.Unexpected("Error fetching dashboard summary", err)
	}

	recentRows, err := s.DB.QueryContext(ctx, `
		SELECT t.id, t.title, t.status, t.due_date, COALESCE(team.name, '')
		FROM tasks t
		LEFT JOIN teams team ON t.team_id = team.id
		WHERE t.assigned_to = ?
		ORDER BY t.updated_at DESC
		LIMIT 5
	`, userID)
	if err != nil {
		return nil, apperrors.Unexpected("Error fetching dashboard summary", err)
	}
	defer recentRows.Close()

	summary.Tasks.Recent = []RecentTask{}
	for recentRows.Next() {
		var rt RecentTask
		var dueDate sql.NullString
		if err := recentRows.Scan(&rt.ID, &rt.Title, &rt.Status, &dueDate, &rt.TeamName); err != nil {
			return nil, apperrors.Unexpected("Error fetching dashboard summary", err)
		}
		if dueDate.Valid {
			rt.DueDate = &dueDate.String
		}
		summary.Tasks.Recent = append(summary.Tasks.Recent, rt)
	}
	if err := recentRows.Err(); err != nil {
		return nil, apperrors.Unexpected("Error fetching dashboard summary", err)
	}

	teamRows, err := s.DB.QueryContext(ctx, `
		SELECT t.id, t.name, tm.role, COUNT(DISTINCT tm2.user_id)
		FROM teams t
		JOIN team_members tm ON t.id = tm.team_id
		LEFT JOIN team_members tm2 ON t.id = tm2.team_id
		WHERE tm.user_id = ?
		GROUP BY t.id, t.name, tm.role, t.created_at
		ORDER BY t.created_at DESC
	`, userID)
	if err != nil {
		return nil, apperrors.Unexpected("Error fetching dashboard summary", err)
	}
	defer teamRows.Close()

	summary.Teams.List = []TeamEntry{}
	for teamRows.Next() {
		var te TeamEntry
		if err := teamRows.Scan(&te.ID, &te.Name, &te.Role, &te.MemberCount); err != nil {
			return nil, apperrors.Unexpected("Error fetching dashboard summary", err)
		}
		summary.Teams.List = append(summary.Teams.List, te)
	}
	if err := teamRows.Err(); err != nil {
		return nil, apperrors.Unexpected("Error fetching dashboard summary", err)
	}

	return &summary, nil
}
