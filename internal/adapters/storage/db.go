package storage

import (
	"context"
	"fmt"
)

// schema mirrors the legacy demo database so an existing database.sqlite
// keeps working. Column names stay camelCase for that reason.
const schema = `
CREATE TABLE IF NOT EXISTS students (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT,
	email TEXT,
	password TEXT
);

CREATE TABLE IF NOT EXISTS activities (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT,
	type TEXT,
	subcategory TEXT,
	date TEXT
);

CREATE TABLE IF NOT EXISTS participation (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	studentId INTEGER,
	activityId INTEGER,
	FOREIGN KEY(studentId) REFERENCES students(id),
	FOREIGN KEY(activityId) REFERENCES activities(id)
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_participation_pair ON participation(studentId, activityId);
CREATE INDEX IF NOT EXISTS idx_participation_activity ON participation(activityId);
`

// Tables lists the tables created by InitDB.
var Tables = []string{"activities", "participation", "students"}

// InitDB applies connection pragmas and creates the schema.
// PRE: db is a valid database connection
// POST: All tables and indexes exist; safe to call repeatedly
func InitDB(ctx context.Context, db SQLDB) error {
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
