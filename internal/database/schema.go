package database

import (
	"strings"

	"github.com/pkg/errors"

	"gorm.io/gorm"
)

// schemaStatements is applied in order, inside one transaction, on every
// Open. Each statement is create-if-not-exists.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		start_time TEXT NOT NULL,
		duration_seconds INTEGER NOT NULL,
		session_key TEXT NOT NULL,
		created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
		updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_start_time ON sessions(start_time)`,
	`CREATE TABLE IF NOT EXISTS classification_rules (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		type TEXT NOT NULL,
		identifier TEXT NOT NULL,
		label TEXT NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
		updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
		UNIQUE(type, identifier)
	)`,
	`CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
	)`,
}

func (s *Store) initialize() error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, stmt := range schemaStatements {
			if err := tx.Exec(stmt).Error; err != nil {
				return errors.Wrapf(err, "failed to apply %q", statementHead(stmt))
			}
		}
		return nil
	})
	if err != nil {
		return newError(SchemaFailure, "Open", err)
	}
	return nil
}

func statementHead(stmt string) string {
	head, _, _ := strings.Cut(stmt, "(")
	return strings.TrimSpace(head)
}
