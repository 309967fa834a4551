// internal/casino/sqlite.go
package casino

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteRepository stores the table state as a single JSON document in a
// one-row sqlite table. The table is a process-wide singleton, so a single
// row keyed by id=1 is all the schema needed.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (creating if needed) the sqlite file at path and
// ensures the schema exists.
func NewSQLiteRepository(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS casino_table (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		state TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create casino_table schema: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// Close releases the underlying database handle.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) Load(ctx context.Context) (*TableState, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, `SELECT state FROM casino_table WHERE id = 1`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load table state: %w", err)
	}

	var state TableState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("failed to decode table state: %w", err)
	}
	return &state, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, state *TableState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode table state: %w", err)
	}

	q := `
	INSERT INTO casino_table (id, state, updated_at) VALUES (1, ?, ?)
	ON CONFLICT(id) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`
	if _, err := r.db.ExecContext(ctx, q, string(data), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save table state: %w", err)
	}
	return nil
}
