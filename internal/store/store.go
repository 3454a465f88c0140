// Package store persists shortcut configuration in SQLite, namespaced per
// profile. The reconciliation engine only ever reads from it; all writes go
// through the CLI.
package store

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/quickbar/cli/internal/nav"
)

// DefaultProfile is used when the user never names one.
const DefaultProfile = "default"

// Store is the shortcut configuration database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and brings its schema
// up to date.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open config database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// List returns a profile's shortcuts in bar order.
func (s *Store) List(profile string) ([]nav.Shortcut, error) {
	rows, err := s.db.Query(
		`SELECT id, title, kind, target, position FROM shortcuts
		 WHERE profile = ? ORDER BY position, rowid`, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to list shortcuts: %w", err)
	}
	defer rows.Close()

	var out []nav.Shortcut
	for rows.Next() {
		sc := nav.Shortcut{Profile: profile}
		var kind string
		if err := rows.Scan(&sc.ID, &sc.Title, &kind, &sc.Target, &sc.Position); err != nil {
			return nil, fmt.Errorf("failed to scan shortcut: %w", err)
		}
		sc.Kind = nav.TargetKind(kind)
		out = append(out, sc)
	}
	return out, rows.Err()
}

// Add inserts a shortcut at the end of the bar and returns it with its
// generated identifier and position filled in.
func (s *Store) Add(profile string, sc nav.Shortcut) (nav.Shortcut, error) {
	if sc.Target == "" {
		return nav.Shortcut{}, fmt.Errorf("shortcut target must not be empty")
	}
	if sc.Kind != nav.CategoryTarget && sc.Kind != nav.ViewTarget {
		return nav.Shortcut{}, fmt.Errorf("unknown target kind %q", sc.Kind)
	}
	if sc.ID == "" {
		id, err := newID()
		if err != nil {
			return nav.Shortcut{}, err
		}
		sc.ID = id
	}
	sc.Profile = profile

	var next sql.NullInt64
	if err := s.db.QueryRow(
		`SELECT MAX(position) + 1 FROM shortcuts WHERE profile = ?`, profile).Scan(&next); err != nil {
		return nav.Shortcut{}, fmt.Errorf("failed to find bar position: %w", err)
	}
	if next.Valid {
		sc.Position = int(next.Int64)
	}

	_, err := s.db.Exec(
		`INSERT INTO shortcuts (id, profile, position, title, kind, target)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sc.ID, sc.Profile, sc.Position, sc.Title, string(sc.Kind), sc.Target)
	if err != nil {
		return nav.Shortcut{}, fmt.Errorf("failed to add shortcut: %w", err)
	}
	return sc, nil
}

// Remove deletes a shortcut.
func (s *Store) Remove(profile, id string) error {
	res, err := s.db.Exec(
		`DELETE FROM shortcuts WHERE profile = ? AND id = ?`, profile, id)
	if err != nil {
		return fmt.Errorf("failed to remove shortcut: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("no shortcut %q in profile %q", id, profile)
	}
	return nil
}

// Rename changes a shortcut's display title. The identifier never changes
// on rename.
func (s *Store) Rename(profile, id, title string) error {
	res, err := s.db.Exec(
		`UPDATE shortcuts SET title = ? WHERE profile = ? AND id = ?`,
		title, profile, id)
	if err != nil {
		return fmt.Errorf("failed to rename shortcut: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("no shortcut %q in profile %q", id, profile)
	}
	return nil
}

// Move reorders a shortcut to the given bar position. Positions of other
// shortcuts shift accordingly on the next List.
func (s *Store) Move(profile, id string, position int) error {
	res, err := s.db.Exec(
		`UPDATE shortcuts SET position = ? WHERE profile = ? AND id = ?`,
		position, profile, id)
	if err != nil {
		return fmt.Errorf("failed to move shortcut: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("no shortcut %q in profile %q", id, profile)
	}
	return nil
}

// Profiles returns every profile that has at least one shortcut.
func (s *Store) Profiles() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT profile FROM shortcuts ORDER BY profile`)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Account returns the stored host account settings for a profile, if any.
func (s *Store) Account(profile string) (email, baseURL string, err error) {
	err = s.db.QueryRow(
		`SELECT email, base_url FROM accounts WHERE profile = ?`, profile).
		Scan(&email, &baseURL)
	if err == sql.ErrNoRows {
		return "", "", nil
	}
	if err != nil {
		return "", "", fmt.Errorf("failed to load account: %w", err)
	}
	return email, baseURL, nil
}

// SetAccount stores host account settings for a profile.
func (s *Store) SetAccount(profile, email, baseURL string) error {
	_, err := s.db.Exec(
		`INSERT INTO accounts (profile, email, base_url) VALUES (?, ?, ?)
		 ON CONFLICT(profile) DO UPDATE SET email = excluded.email, base_url = excluded.base_url`,
		profile, email, baseURL)
	if err != nil {
		return fmt.Errorf("failed to store account: %w", err)
	}
	return nil
}

func newID() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate shortcut id: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
