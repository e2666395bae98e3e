// Package store persists session identifier chains in SQLite so that
// separate CLI invocations can continue the same launch.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/abdul-hamid-achik/rpreporter/packages/session"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"
)

// DefaultName is the session name used when none is given
const DefaultName = "default"

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	name             TEXT PRIMARY KEY,
	launch_id        TEXT NOT NULL DEFAULT '',
	root_item_id     TEXT NOT NULL DEFAULT '',
	feature_item_id  TEXT NOT NULL DEFAULT '',
	scenario_item_id TEXT NOT NULL DEFAULT '',
	step_item_id     TEXT NOT NULL DEFAULT '',
	updated_at       TEXT NOT NULL
)`

// Record is a stored session with its name and last update time
type Record struct {
	Name      string
	Snapshot  session.Snapshot
	UpdatedAt time.Time
}

// Store is a SQLite-backed session store
type Store struct {
	db           *sql.DB
	path         string
	queryTimeout time.Duration
}

// Open opens (creating if needed) the store at path
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{
		db:           db,
		path:         path,
		queryTimeout: 30 * time.Second,
	}, nil
}

// Path returns the database file location
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save stores snap under name, replacing any previous value
func (s *Store) Save(ctx context.Context, name string, snap session.Snapshot) error {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (name, launch_id, root_item_id, feature_item_id, scenario_item_id, step_item_id, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			launch_id = excluded.launch_id,
			root_item_id = excluded.root_item_id,
			feature_item_id = excluded.feature_item_id,
			scenario_item_id = excluded.scenario_item_id,
			step_item_id = excluded.step_item_id,
			updated_at = excluded.updated_at`,
		name, snap.LaunchID, snap.RootItemID, snap.FeatureItemID, snap.ScenarioItemID, snap.StepItemID,
		time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("saving session %q: %w", name, err)
	}
	return nil
}

// Load returns the snapshot stored under name, or an empty snapshot
func (s *Store) Load(ctx context.Context, name string) (session.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	var snap session.Snapshot
	err := s.db.QueryRowContext(ctx, `
		SELECT launch_id, root_item_id, feature_item_id, scenario_item_id, step_item_id
		FROM sessions WHERE name = ?`, name).
		Scan(&snap.LaunchID, &snap.RootItemID, &snap.FeatureItemID, &snap.ScenarioItemID, &snap.StepItemID)
	if errors.Is(err, sql.ErrNoRows) {
		return session.Snapshot{}, nil
	}
	if err != nil {
		return session.Snapshot{}, fmt.Errorf("loading session %q: %w", name, err)
	}
	return snap, nil
}

// Delete removes the session stored under name
func (s *Store) Delete(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE name = ?`, name); err != nil {
		return fmt.Errorf("deleting session %q: %w", name, err)
	}
	return nil
}

// List returns every stored session ordered by name
func (s *Store) List(ctx context.Context) ([]Record, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT name, launch_id, root_item_id, feature_item_id, scenario_item_id, step_item_id, updated_at
		FROM sessions ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var updated string
		if err := rows.Scan(&rec.Name, &rec.Snapshot.LaunchID, &rec.Snapshot.RootItemID,
			&rec.Snapshot.FeatureItemID, &rec.Snapshot.ScenarioItemID, &rec.Snapshot.StepItemID, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		rec.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

// Bind restores state from the session stored under name and returns a
// function that saves state back
func (s *Store) Bind(ctx context.Context, name string, state *session.State) (func() error, error) {
	snap, err := s.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	state.Restore(snap)
	return func() error {
		return s.Save(ctx, name, state.Snapshot())
	}, nil
}
