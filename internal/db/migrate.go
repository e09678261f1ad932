package db

import (
	"fmt"
	"strings"
)

// migrations run in order on every start. Statements are portable between
// SQLite and Postgres; timestamps are stored as fixed-width UTC text.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS homilies (
		id               TEXT PRIMARY KEY,
		owner_id         TEXT NOT NULL,
		title            TEXT NOT NULL DEFAULT '',
		description      TEXT NOT NULL DEFAULT '',
		context          TEXT NOT NULL DEFAULT '',
		readings         TEXT NOT NULL DEFAULT '',
		definitions      TEXT NOT NULL DEFAULT '',
		first_questions  TEXT NOT NULL DEFAULT '',
		second_questions TEXT NOT NULL DEFAULT '',
		final_draft      TEXT NOT NULL DEFAULT '',
		status           TEXT NOT NULL DEFAULT 'NotStarted'
			CHECK (status IN ('NotStarted', 'RoughDraft', 'SecondDraft', 'Complete')),
		created_at       TEXT NOT NULL,
		updated_at       TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_homilies_owner_created ON homilies(owner_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_homilies_owner_status ON homilies(owner_id, status)`,

	`CREATE TABLE IF NOT EXISTS contexts (
		id         TEXT PRIMARY KEY,
		owner_id   TEXT NOT NULL,
		name       TEXT NOT NULL,
		content    TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_contexts_owner ON contexts(owner_id, created_at)`,

	`CREATE TABLE IF NOT EXISTS user_settings (
		owner_id           TEXT PRIMARY KEY,
		definitions        TEXT,
		default_context_id TEXT REFERENCES contexts(id) ON DELETE SET NULL,
		updated_at         TEXT NOT NULL
	)`,
}

// Migrate runs all schema migrations. It is safe to call repeatedly.
func Migrate(d *DB) error {
	for i, stmt := range migrations {
		if _, err := d.Exec(stmt); err != nil {
			// Re-running an ALTER TABLE ADD COLUMN is not an error.
			if isDuplicateColumn(err) {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

func isDuplicateColumn(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "duplicate column name") ||
		(strings.Contains(msg, "column") && strings.Contains(msg, "already exists"))
}
