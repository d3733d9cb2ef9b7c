// Package engine implements the table instance's Hand State Machine,
// seating, and timers (spec.md §4.B/§4.D/§4.F). The root Engine
// aggregate, its mutex-guarded access pattern, and the Rob Pike state
// function wiring are grounded on the teacher's pkg/poker/game.go and
// pkg/poker/table.go, generalized from the teacher's simplified
// fixed-order betting rounds to this spec's full action-legality,
// round-completion, and side-pot rules.
package engine

import (
	"fmt"

	"github.com/icpholdem/tableengine/pkg/apperr"
	"github.com/icpholdem/tableengine/pkg/ledger"
)

// MaxSeats bounds the fixed-length seat array regardless of
// Config.MaxPlayers, generalizing the teacher's hard-coded 9-seat
// table (pkg/poker/table.go) to spec.md §3's stated ceiling of 10.
const MaxSeats = 10

// Config holds the per-table parameters of spec.md §3. Validated by
// Validate against invariant 9 before the Engine accepts it, both at
// initialize time and at admin config-update time (spec.md §6).
type Config struct {
	SmallBlind        uint64
	BigBlind          uint64
	MinBuyIn          uint64
	MaxBuyIn          uint64
	MaxPlayers        int
	Ante              uint64
	ActionTimeoutSecs int
	TimeBankSecs      int
	Currency          ledger.Currency
}

// Validate checks Config against spec.md §3 invariant 9 plus the
// structural bounds the data model requires elsewhere (§3's
// max_players ∈ [2,10], action_timeout_secs ≤ 300, time_bank_secs ≤
// 600). Returns a ConfigError on the first violation found.
func (c Config) Validate() error {
	if c.MaxPlayers < 2 || c.MaxPlayers > MaxSeats {
		return apperr.Config("max_players must be in [2,%d], got %d", MaxSeats, c.MaxPlayers)
	}
	if c.ActionTimeoutSecs <= 0 || c.ActionTimeoutSecs > 300 {
		return apperr.Config("action_timeout_secs must be in (0,300], got %d", c.ActionTimeoutSecs)
	}
	if c.TimeBankSecs < 0 || c.TimeBankSecs > 600 {
		return apperr.Config("time_bank_secs must be in [0,600], got %d", c.TimeBankSecs)
	}
	if c.SmallBlind == 0 || c.BigBlind == 0 {
		return apperr.Config("small_blind and big_blind must be nonzero")
	}
	if c.BigBlind < c.SmallBlind || c.BigBlind > 10*c.SmallBlind {
		return apperr.Config("big_blind must satisfy small_blind <= big_blind <= 10*small_blind")
	}
	if c.Ante > c.BigBlind {
		return apperr.Config("ante must be <= big_blind")
	}
	if c.MaxBuyIn > 1000*c.BigBlind {
		return apperr.Config("max_buy_in must be <= 1000*big_blind")
	}
	if c.MinBuyIn < 10*c.BigBlind {
		return apperr.Config("min_buy_in must be >= 10*big_blind")
	}
	if c.MinBuyIn > c.MaxBuyIn {
		return apperr.Config("min_buy_in must be <= max_buy_in")
	}
	return nil
}

func (c Config) String() string {
	return fmt.Sprintf("Config{SB=%d BB=%d Ante=%d MinBuyIn=%d MaxBuyIn=%d MaxPlayers=%d Timeout=%ds TimeBank=%ds Currency=%s}",
		c.SmallBlind, c.BigBlind, c.Ante, c.MinBuyIn, c.MaxBuyIn, c.MaxPlayers, c.ActionTimeoutSecs, c.TimeBankSecs, c.Currency)
}
