// Package archive implements the hand-history archive instance
// (spec.md §1, §6): a standalone service a table instance fires a
// single one-way call to on every hand end, storing the full
// HandHistoryRecord for later retrieval. Grounded on the teacher's
// pkg/server/internal/db/db.go for the SQLite idiom, generalized from
// its many-typed-column schema to the single versioned JSON record
// spec.md §6's persisted-state-layout policy calls for.
package archive

import "github.com/icpholdem/tableengine/pkg/cards"

// ActionRecord mirrors the engine's per-action log entry (spec.md §3).
type ActionRecord struct {
	Seat        int    `json:"seat"`
	Action      string `json:"action"`
	Amount      uint64 `json:"amount,omitempty"`
	TimestampNs int64  `json:"timestamp_ns"`
	StreetLabel string `json:"street_label"`
}

// Winner mirrors the engine's payout record (spec.md §3).
type Winner struct {
	Seat     int          `json:"seat"`
	Identity string       `json:"identity"`
	Amount   uint64       `json:"amount"`
	HandRank *string      `json:"hand_rank,omitempty"`
	Cards    []cards.Card `json:"cards,omitempty"`
}

// ShowdownPlayer is one non-folded participant revealed at showdown.
type ShowdownPlayer struct {
	Seat     int          `json:"seat"`
	Identity string       `json:"identity"`
	Cards    []cards.Card `json:"cards"`
	HandRank string       `json:"hand_rank"`
}

// HandHistoryRecord is the full wire payload a table instance publishes
// to the archive on hand end (spec.md §4.E "Hand end", §6 "Archive
// interface").
type HandHistoryRecord struct {
	TableID         string                  `json:"table_id"`
	HandNumber      uint64                  `json:"hand_number"`
	SeedHash        string                  `json:"seed_hash"`
	RevealedSeed    string                  `json:"revealed_seed"`
	Actions         []ActionRecord          `json:"actions"`
	Winners         []Winner                `json:"winners"`
	Community       []cards.Card            `json:"community"`
	ShowdownPlayers []ShowdownPlayer        `json:"showdown_players,omitempty"`
	EndedAtUnixNs   int64                   `json:"ended_at_unix_ns"`
}
