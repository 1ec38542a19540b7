package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// Open connects to the store and bootstraps the schema. driver is
// "mysql" (production) or "sqlite" (development and tests, pure-Go
// driver). The SQL issued by the services is portable across both:
// ? placeholders, Unix-int timestamps set from Go, and ISO-8601 TEXT
// due dates.
func Open(driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	if driver == "sqlite" {
		// Serialize writers; modernc's driver returns SQLITE_BUSY
		// under concurrent write load otherwise.
		db.SetMaxOpenConns(1)
	}

	if err := createTables(db, driver); err != nil {
		db.Close()
		return nil, fmt.Errorf("bootstrap schema: %w", err)
	}

	return db, nil
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS teams (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created_by INTEGER NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS team_members (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	team_id INTEGER NOT NULL,
	user_id INTEGER NOT NULL,
	role TEXT NOT NULL,
	joined_at INTEGER NOT NULL,
	UNIQUE (team_id, user_id)
);

CREATE TABLE IF NOT EXISTS tasks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	team_id INTEGER NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'pending',
	assigned_to INTEGER,
	created_by INTEGER NOT NULL,
	due_date TEXT,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
`

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		password VARCHAR(255) NOT NULL,
		created_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS teams (
		id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		created_by BIGINT NOT NULL,
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS team_members (
		id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		team_id BIGINT NOT NULL,
		user_id BIGINT NOT NULL,
		role VARCHAR(32) NOT NULL,
		joined_at BIGINT NOT NULL,
		UNIQUE KEY uq_team_user (team_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		team_id BIGINT NOT NULL,
		title VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		status VARCHAR(32) NOT NULL DEFAULT 'pending',
		assigned_to BIGINT,
		created_by BIGINT NOT NULL,
		due_date VARCHAR(10),
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL
	)`,
}

func createTables(db *sql.DB, driver string) error {
	if driver == "sqlite" {
		_, err := db.Exec(sqliteSchema)
		return err
	}
	for _, stmt := range mysqlSchema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// IsUniqueViolation reports whether err is a unique-constraint failure.
// The join path relies on this to turn the UNIQUE(team_id, user_id)
// race into a conflict instead of a 500.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "constraint failed")
}
