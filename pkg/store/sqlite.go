// ABOUTME: SQLite backend for persisted state
// ABOUTME: Stores the JSON image plus a flattened department table in one transaction

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nainya/orgchart/pkg/hierarchy"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS orgchart_state (
	id         INTEGER PRIMARY KEY CHECK (id = 1),
	payload    TEXT    NOT NULL,
	updated_at TEXT    NOT NULL
);
CREATE TABLE IF NOT EXISTS departments (
	name      TEXT    PRIMARY KEY,
	parent    TEXT,
	position  INTEGER NOT NULL,
	head      TEXT    NOT NULL,
	employees INTEGER NOT NULL,
	budget    REAL    NOT NULL,
	perf      REAL    NOT NULL,
	priority  INTEGER
);`

// SQLiteStore keeps the state in an embedded SQLite database. The
// departments table is a read-only projection for ad hoc SQL queries; the
// payload column is authoritative.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single connection keeps writes serialized and :memory: databases shared
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Load reads the latest state image
func (s *SQLiteStore) Load(ctx context.Context) (*State, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM orgchart_state WHERE id = 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoState
	}
	if err != nil {
		return nil, fmt.Errorf("query state: %w", err)
	}
	return decodeState([]byte(payload))
}

// Save replaces the state image and the department projection atomically
func (s *SQLiteStore) Save(ctx context.Context, state *State) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orgchart_state (id, payload, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		string(payload), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("upsert state: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM departments`); err != nil {
		return fmt.Errorf("clear departments: %w", err)
	}

	priorities := make(map[string]int, len(state.Heap))
	for _, e := range state.Heap {
		priorities[e.Name] = e.Priority
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO departments (name, parent, position, head, employees, budget, perf, priority)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare department insert: %w", err)
	}
	defer stmt.Close()

	var insert func(node *hierarchy.Snapshot, parent sql.NullString, position int) error
	insert = func(node *hierarchy.Snapshot, parent sql.NullString, position int) error {
		var prio sql.NullInt64
		if p, ok := priorities[node.Name]; ok {
			prio = sql.NullInt64{Int64: int64(p), Valid: true}
		}
		_, err := stmt.ExecContext(ctx, node.Name, parent, position,
			node.Head, node.Employees, node.Budget, node.Perf, prio)
		if err != nil {
			return fmt.Errorf("insert department %q: %w", node.Name, err)
		}
		for i, c := range node.Children {
			if err := insert(c, sql.NullString{String: node.Name, Valid: true}, i); err != nil {
				return err
			}
		}
		return nil
	}
	if !state.Hierarchy.IsEmpty() {
		if err := insert(state.Hierarchy, sql.NullString{}, 0); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
