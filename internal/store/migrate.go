package store

import (
	"database/sql"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// migration is one ordered schema step. Versions are semver so profiles
// created by older builds upgrade cleanly regardless of which versions they
// skipped.
type migration struct {
	version string
	stmts   []string
}

var migrations = []migration{
	{
		version: "1.0.0",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS shortcuts (
				id       TEXT PRIMARY KEY,
				profile  TEXT NOT NULL,
				position INTEGER NOT NULL DEFAULT 0,
				title    TEXT NOT NULL,
				kind     TEXT NOT NULL,
				target   TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_shortcuts_profile ON shortcuts(profile, position)`,
		},
	},
	{
		version: "1.1.0",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS accounts (
				profile  TEXT PRIMARY KEY,
				email    TEXT NOT NULL DEFAULT '',
				base_url TEXT NOT NULL DEFAULT ''
			)`,
		},
	},
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(
		`CREATE TABLE IF NOT EXISTS schema_info (version TEXT NOT NULL)`); err != nil {
		return fmt.Errorf("failed to prepare schema table: %w", err)
	}

	current, err := s.schemaVersion()
	if err != nil {
		return err
	}

	for _, m := range migrations {
		v, err := semver.NewVersion(m.version)
		if err != nil {
			return fmt.Errorf("bad migration version %q: %w", m.version, err)
		}
		if !v.GreaterThan(current) {
			continue
		}
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin migration %s: %w", m.version, err)
		}
		for _, stmt := range m.stmts {
			if _, err := tx.Exec(stmt); err != nil {
				tx.Rollback()
				return fmt.Errorf("migration %s failed: %w", m.version, err)
			}
		}
		if _, err := tx.Exec(`DELETE FROM schema_info`); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %s failed: %w", m.version, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_info (version) VALUES (?)`, m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %s failed: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %s: %w", m.version, err)
		}
		current = v
	}
	return nil
}

func (s *Store) schemaVersion() (*semver.Version, error) {
	var raw string
	err := s.db.QueryRow(`SELECT version FROM schema_info LIMIT 1`).Scan(&raw)
	if err == sql.ErrNoRows {
		return semver.NewVersion("0.0.0")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read schema version: %w", err)
	}
	v, err := semver.NewVersion(raw)
	if err != nil {
		return nil, fmt.Errorf("corrupt schema version %q: %w", raw, err)
	}
	return v, nil
}
