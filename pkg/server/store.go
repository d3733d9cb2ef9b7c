// Package server hosts the table-instance registry and exposes spec.md
// §6's external operations over gorilla/rpc, grounded on the teacher's
// pkg/server/server.go (map of tables under a mutex, one method per
// external operation) and pkg/server/internal/db/db.go (sqlite-backed
// persistence), but retargeted from the teacher's gRPC/DCR lobby onto
// this spec's escrow/hand-engine semantics.
package server

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store persists each table's PersistedState as a single versioned
// JSON blob keyed by table ID, matching archive.Store's
// one-blob-per-row idiom (see DESIGN.md) rather than the teacher's
// many-typed-column schema.
type Store struct {
	db *sql.DB
}

func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("server: open db: %w", err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS tables (
			table_id TEXT PRIMARY KEY,
			currency TEXT NOT NULL,
			payload TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("server: create tables: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save upserts one table's snapshot payload.
func (s *Store) Save(tableID, currency string, snapshot interface{}) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("server: marshal snapshot for table %s: %w", tableID, err)
	}
	_, err = s.db.Exec(`
		INSERT INTO tables (table_id, currency, payload) VALUES (?, ?, ?)
		ON CONFLICT(table_id) DO UPDATE SET payload = excluded.payload
	`, tableID, currency, string(payload))
	if err != nil {
		return fmt.Errorf("server: save table %s: %w", tableID, err)
	}
	return nil
}

// TableRow is one persisted table's raw payload plus its configured
// currency, read back at startup before an Engine exists to unmarshal
// into.
type TableRow struct {
	TableID  string
	Currency string
	Payload  []byte
}

// LoadAll reads every persisted table row, for post-upgrade restore
// (spec.md §4.G). Deserialization of each row's payload into an Engine
// is the caller's responsibility so that a single corrupt row can fail
// loud without this method guessing at Engine's shape.
func (s *Store) LoadAll() ([]TableRow, error) {
	rows, err := s.db.Query(`SELECT table_id, currency, payload FROM tables`)
	if err != nil {
		return nil, fmt.Errorf("server: load tables: %w", err)
	}
	defer rows.Close()

	var out []TableRow
	for rows.Next() {
		var tr TableRow
		var payload string
		if err := rows.Scan(&tr.TableID, &tr.Currency, &payload); err != nil {
			return nil, fmt.Errorf("server: scan table row: %w", err)
		}
		tr.Payload = []byte(payload)
		out = append(out, tr)
	}
	return out, rows.Err()
}

// Delete removes a table's persisted row, e.g. after an admin reset
// that tears down the table entirely (not currently exposed — Reset
// clears in-memory state but keeps the row so the next restart still
// finds the table).
func (s *Store) Delete(tableID string) error {
	_, err := s.db.Exec(`DELETE FROM tables WHERE table_id = ?`, tableID)
	return err
}
