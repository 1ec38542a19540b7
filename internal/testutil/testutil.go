// Package testutil provides an in-memory database and row fixtures for
// service and handler tests.
package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/campusboard/taskboard/internal/database"
	"github.com/campusboard/taskboard/internal/models"
)

// SetupTestDB opens a fresh in-memory sqlite database with the full
// schema applied
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// InsertUser inserts a user row and returns its id
func InsertUser(t *testing.T, db *sql.DB, name, email string) int64 {
	t.Helper()

	result, err := db.Exec(`
		INSERT INTO users (name, email, password, created_at) VALUES (?, ?, ?, ?)
	`, name, email, "x", time.Now().UTC().Unix())
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	return id
}

// InsertTeam inserts a team row and returns its id. It does not create
// a membership; use InsertMembership for that.
func InsertTeam(t *testing.T, db *sql.DB, name string, createdBy int64) int64 {
	t.Helper()

	now := time.Now().UTC().Unix()
	result, err := db.Exec(`
		INSERT INTO teams (name, description, created_by, created_at, updated_at)
		VALUES (?, '', ?, ?, ?)
	`, name, createdBy, now, now)
	if err != nil {
		t.Fatalf("insert team: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("insert team: %v", err)
	}
	return id
}

// InsertMembership inserts a team membership row
func InsertMembership(t *testing.T, db *sql.DB, teamID, userID int64, role models.Role) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO team_members (team_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)
	`, teamID, userID, role, time.Now().UTC().Unix())
	if err != nil {
		t.Fatalf("insert membership: %v", err)
	}
}

// TaskRow describes an InsertTask fixture
type TaskRow struct {
	TeamID     int64
	Title      string
	Status     models.TaskStatus
	AssignedTo *int64
	CreatedBy  int64
	DueDate    *string
	UpdatedAt  int64 // zero means now
}

// InsertTask inserts a task row and returns its id
func InsertTask(t *testing.T, db *sql.DB, row TaskRow) int64 {
	t.Helper()

	now := time.Now().UTC().Unix()
	if row.Status == "" {
		row.Status = models.StatusPending
	}
	if row.UpdatedAt == 0 {
		row.UpdatedAt = now
	}

	var assignedTo interface{}
	if row.AssignedTo != nil {
		assignedTo = *row.AssignedTo
	}
	var dueDate interface{}
	if row.DueDate != nil {
		dueDate = *row.DueDate
	}

	result, err := db.Exec(`
		INSERT INTO tasks (team_id, title, description, status, assigned_to, created_by, due_date, created_at, updated_at)
		VALUES (?, ?, '', ?, ?, ?, ?, ?, ?)
	`, row.TeamID, row.Title, row.Status, assignedTo, row.CreatedBy, dueDate, now, row.UpdatedAt)
	if err != nil {
		t.Fatalf("insert task: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("insert task: %v", err)
	}
	return id
}

// CountRows counts rows in table matching the where clause
func CountRows(t *testing.T, db *sql.DB, table, where string, args ...interface{}) int {
	t.Helper()

	var n int
	query := "SELECT COUNT(*) FROM " + table
	if where != "" {
		query += " WHERE " + where
	}
	if err := db.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}
