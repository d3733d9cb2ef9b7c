package archive

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// storedVersion is the current on-disk encoding version for a
// persisted HandHistoryRecord. Unknown fields in a future version must
// parse as their default, per spec.md §6's persisted-state-layout
// policy; storedRecord's Version field lets a future reader detect
// which defaults to apply without a schema migration.
const storedVersion = 1

type storedRecord struct {
	Version int             `json:"version"`
	Record  json.RawMessage `json:"record"`
}

// Store persists HandHistoryRecords as a single versioned JSON blob per
// (table_id, hand_number) row, adapted from the teacher's
// pkg/server/internal/db/db.go sqlite3 idiom but dropping its
// many-typed-column schema in favor of the blob-record layout spec.md
// §6 specifies.
type Store struct {
	db *sql.DB
}

func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("archive: open db: %w", err)
	}
	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS hand_history (
			table_id TEXT NOT NULL,
			hand_number INTEGER NOT NULL,
			payload TEXT NOT NULL,
			ended_at_unix_ns INTEGER NOT NULL,
			PRIMARY KEY (table_id, hand_number)
		)
	`)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts or replaces one hand's record.
func (s *Store) Save(record HandHistoryRecord) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("archive: marshal record: %w", err)
	}
	payload, err := json.Marshal(storedRecord{Version: storedVersion, Record: raw})
	if err != nil {
		return fmt.Errorf("archive: marshal stored record: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO hand_history (table_id, hand_number, payload, ended_at_unix_ns)
		VALUES (?, ?, ?, ?)
	`, record.TableID, record.HandNumber, string(payload), record.EndedAtUnixNs)
	if err != nil {
		return fmt.Errorf("archive: save record: %w", err)
	}
	return nil
}

// Load retrieves one hand's record by table and hand number. Returns
// sql.ErrNoRows if absent; the caller (service.go) maps that to
// apperr.NotFound.
func (s *Store) Load(tableID string, handNumber uint64) (HandHistoryRecord, error) {
	var payload string
	err := s.db.QueryRow(`
		SELECT payload FROM hand_history WHERE table_id = ? AND hand_number = ?
	`, tableID, handNumber).Scan(&payload)
	if err != nil {
		return HandHistoryRecord{}, err
	}

	var stored storedRecord
	if err := json.Unmarshal([]byte(payload), &stored); err != nil {
		return HandHistoryRecord{}, fmt.Errorf("archive: unmarshal stored record: %w", err)
	}

	var record HandHistoryRecord
	if err := json.Unmarshal(stored.Record, &record); err != nil {
		return HandHistoryRecord{}, fmt.Errorf("archive: unmarshal record: %w", err)
	}
	return record, nil
}

// ListByTable returns every hand number recorded for a table, ascending.
func (s *Store) ListByTable(tableID string) ([]uint64, error) {
	rows, err := s.db.Query(`
		SELECT hand_number FROM hand_history WHERE table_id = ? ORDER BY hand_number ASC
	`, tableID)
	if err != nil {
		return nil, fmt.Errorf("archive: list hands: %w", err)
	}
	defer rows.Close()

	var out []uint64
	for rows.Next() {
		var hn uint64
		if err := rows.Scan(&hn); err != nil {
			return nil, fmt.Errorf("archive: scan hand number: %w", err)
		}
		out = append(out, hn)
	}
	return out, rows.Err()
}
