package engine

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/icpholdem/tableengine/pkg/apperr"
	"github.com/icpholdem/tableengine/pkg/cards"
	"github.com/icpholdem/tableengine/pkg/ledger"
)

// persistedStateVersion is bumped whenever a field is added; unknown
// fields in a future version parse as their zero value, per spec.md
// §6's "Persisted state layout" requirement.
const persistedStateVersion = 1

// persistedPlayer is the serializable shape of Player.
type persistedPlayer struct {
	Identity            string       `json:"identity"`
	SeatIndex           int          `json:"seat_index"`
	Chips               uint64       `json:"chips"`
	HoleCards           []cards.Card `json:"hole_cards,omitempty"`
	CurrentStreetBet    uint64       `json:"current_street_bet"`
	TotalHandBet        uint64       `json:"total_hand_bet"`
	Folded              bool         `json:"folded"`
	ActedThisRound      bool         `json:"acted_this_round"`
	AllIn               bool         `json:"all_in"`
	Status              PlayerStatus `json:"status"`
	LastSeenUnixNs       int64        `json:"last_seen_unix_ns"`
	ConsecutiveTimeouts int          `json:"consecutive_timeouts"`
	TimeBankRemainingNs int64        `json:"time_bank_remaining_ns"`
	SitOutNextHand      bool         `json:"sit_out_next_hand"`
	BrokeSinceUnixNs    *int64       `json:"broke_since_unix_ns,omitempty"`
	SittingOutSinceNs   *int64       `json:"sitting_out_since_unix_ns,omitempty"`
	DisplayName         string       `json:"display_name"`
}

// PersistedState is the single structured, versioned record spec.md
// §6 describes as "Persisted state layout": one blob capturing
// everything listed in §4.G, including the hidden seed — a mid-hand
// upgrade must not lose the commit-reveal secret.
type PersistedState struct {
	Version int `json:"version"`

	Config Config `json:"config"`

	Seats         [MaxSeats]*persistedPlayer `json:"seats"`
	Dealer        int                        `json:"dealer"`
	SBSeat        int                        `json:"sb_seat"`
	BBSeat        int                        `json:"bb_seat"`
	ActionOn      int                        `json:"action_on"`
	CurrentBet    uint64                     `json:"current_bet"`
	MinRaise      uint64                     `json:"min_raise"`
	Pot           uint64                     `json:"pot"`
	SidePots      []cards.SidePot            `json:"side_pots,omitempty"`
	BBHasOption   bool                       `json:"bb_has_option"`
	LastAggressor int                        `json:"last_aggressor"`

	DeckOrdering *[52]cards.Card `json:"deck_ordering,omitempty"`
	DeckCursor   int             `json:"deck_cursor"`
	Community    []cards.Card    `json:"community,omitempty"`
	Commitment   cards.ShuffleCommitment `json:"commitment"`
	HiddenSeedHex string         `json:"hidden_seed_hex,omitempty"`

	Phase      Phase  `json:"phase"`
	HandNumber uint64 `json:"hand_number"`

	ActionTimer          *ActionTimer `json:"action_timer,omitempty"`
	AutoDealAtUnixNs     *int64       `json:"auto_deal_at_unix_ns,omitempty"`

	CurrentHandActions []ActionRecord           `json:"current_hand_actions,omitempty"`
	LastHandWinners    []Winner                 `json:"last_hand_winners,omitempty"`
	History            []HandHistory            `json:"history,omitempty"`
	StartingChips      map[string]uint64        `json:"starting_chips,omitempty"`
	ShownCards         map[int][]cards.Card      `json:"shown_cards,omitempty"`

	DisplayNames map[string]string   `json:"display_names,omitempty"`
	Controllers  []string            `json:"controllers,omitempty"`
	ArchiveAddr  string              `json:"archive_addr"`

	Bridge             ledger.PersistedBridge `json:"bridge"`
	ActionRateEvents    map[string][]time.Time `json:"action_rate_events,omitempty"`
	HeartbeatRateEvents map[string][]time.Time `json:"heartbeat_rate_events,omitempty"`
}

func unixNsPtr(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ns := t.UnixNano()
	return &ns
}

func timePtr(ns *int64) *time.Time {
	if ns == nil {
		return nil
	}
	t := time.Unix(0, *ns)
	return &t
}

// Snapshot builds the PersistedState for a pre-upgrade serialization
// call (spec.md §4.G). Caller then marshals it (typically to JSON, per
// DESIGN.md's "carrying the teacher's idiom forward" for stdlib JSON
// blob storage) and writes it to stable storage.
func (e *Engine) Snapshot() PersistedState {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := PersistedState{
		Version:       persistedStateVersion,
		Config:        e.Config,
		Dealer:        e.Dealer,
		SBSeat:        e.SBSeat,
		BBSeat:        e.BBSeat,
		ActionOn:      e.ActionOn,
		CurrentBet:    e.CurrentBet,
		MinRaise:      e.MinRaise,
		Pot:           e.Pot,
		SidePots:      e.SidePots,
		BBHasOption:   e.BBHasOption,
		LastAggressor: e.LastAggressor,
		Community:     e.Community,
		Commitment:    e.Commitment,
		Phase:         e.Phase,
		HandNumber:    e.HandNumber,
		ActionTimer:   e.ActionTimer,

		CurrentHandActions: e.CurrentHandActions,
		LastHandWinners:     e.LastHandWinners,
		History:             e.History,
		StartingChips:       e.StartingChips,
		ShownCards:          e.ShownCards,
		DisplayNames:        e.DisplayNames,
		ArchiveAddr:         e.ArchiveAddr,

		Bridge:              e.Bridge.Export(),
		ActionRateEvents:    e.ActionRate.Export(),
		HeartbeatRateEvents: e.HeartbeatRate.Export(),
	}
	if len(e.hiddenSeed) > 0 {
		out.HiddenSeedHex = fmt.Sprintf("%x", e.hiddenSeed)
	}
	if e.Deck != nil {
		ordering := e.Deck.Cards()
		out.DeckOrdering = &ordering
		out.DeckCursor = e.Deck.Cursor()
	}
	out.AutoDealAtUnixNs = unixNsPtr(e.AutoDealAt)

	for id := range e.Controllers {
		out.Controllers = append(out.Controllers, id)
	}

	for i := 0; i < e.Config.MaxPlayers; i++ {
		p := e.Seats[i].Occupant
		if p == nil {
			continue
		}
		out.Seats[i] = &persistedPlayer{
			Identity:            p.Identity,
			SeatIndex:           p.SeatIndex,
			Chips:               p.Chips,
			HoleCards:           p.HoleCards,
			CurrentStreetBet:    p.CurrentStreetBet,
			TotalHandBet:        p.TotalHandBet,
			Folded:              p.Folded,
			ActedThisRound:      p.ActedThisRound,
			AllIn:               p.AllIn,
			Status:              p.Status,
			LastSeenUnixNs:      p.LastSeen.UnixNano(),
			ConsecutiveTimeouts: p.ConsecutiveTimeouts,
			TimeBankRemainingNs: int64(p.TimeBankRemaining),
			SitOutNextHand:      p.SitOutNextHand,
			BrokeSinceUnixNs:    unixNsPtr(p.BrokeSince),
			SittingOutSinceNs:   unixNsPtr(p.SittingOutSince),
			DisplayName:         p.DisplayName,
		}
	}
	return out
}

// MarshalSnapshot serializes the engine's current state to JSON,
// matching the teacher's own db.go idiom of storing structured state
// as a JSON blob column (see DESIGN.md).
func (e *Engine) MarshalSnapshot() ([]byte, error) {
	return json.Marshal(e.Snapshot())
}

// Restore implements spec.md §4.G's post-upgrade restore: deserialize
// a previously captured PersistedState back into this Engine. Callers
// MUST treat any error as fatal and abort the upgrade rather than
// proceed with a freshly constructed (empty) Engine — "custodial funds
// forbid silent reinitialization."
func (e *Engine) Restore(s PersistedState) error {
	if s.Version == 0 {
		return apperr.Precondition("persisted state missing version field; refusing to restore")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := s.Config.Validate(); err != nil {
		return fmt.Errorf("engine restore: invalid persisted config: %w", err)
	}

	e.Config = s.Config
	e.Dealer = s.Dealer
	e.SBSeat = s.SBSeat
	e.BBSeat = s.BBSeat
	e.ActionOn = s.ActionOn
	e.CurrentBet = s.CurrentBet
	e.MinRaise = s.MinRaise
	e.Pot = s.Pot
	e.SidePots = s.SidePots
	e.BBHasOption = s.BBHasOption
	e.LastAggressor = s.LastAggressor
	e.Community = s.Community
	e.Commitment = s.Commitment
	e.Phase = s.Phase
	e.HandNumber = s.HandNumber
	e.ActionTimer = s.ActionTimer
	e.AutoDealAt = timePtr(s.AutoDealAtUnixNs)

	e.CurrentHandActions = s.CurrentHandActions
	e.LastHandWinners = s.LastHandWinners
	e.History = s.History
	e.StartingChips = s.StartingChips
	if e.StartingChips == nil {
		e.StartingChips = make(map[string]uint64)
	}
	e.ShownCards = s.ShownCards
	if e.ShownCards == nil {
		e.ShownCards = make(map[int][]cards.Card)
	}
	e.DisplayNames = s.DisplayNames
	if e.DisplayNames == nil {
		e.DisplayNames = make(map[string]string)
	}
	e.ArchiveAddr = s.ArchiveAddr

	e.Controllers = make(map[string]struct{}, len(s.Controllers))
	for _, id := range s.Controllers {
		e.Controllers[id] = struct{}{}
	}

	if s.HiddenSeedHex != "" {
		seed, err := hex.DecodeString(s.HiddenSeedHex)
		if err != nil {
			return fmt.Errorf("engine restore: invalid hidden seed encoding: %w", err)
		}
		e.hiddenSeed = seed
	} else {
		e.hiddenSeed = nil
	}

	if s.DeckOrdering != nil {
		e.Deck = cards.RestoreDeck(*s.DeckOrdering, s.DeckCursor)
	} else {
		e.Deck = nil
	}

	for i := 0; i < MaxSeats; i++ {
		pp := s.Seats[i]
		if pp == nil {
			e.Seats[i].Occupant = nil
			continue
		}
		e.Seats[i].Occupant = &Player{
			Identity:            pp.Identity,
			SeatIndex:           pp.SeatIndex,
			Chips:               pp.Chips,
			HoleCards:           pp.HoleCards,
			CurrentStreetBet:    pp.CurrentStreetBet,
			TotalHandBet:        pp.TotalHandBet,
			Folded:              pp.Folded,
			ActedThisRound:      pp.ActedThisRound,
			AllIn:               pp.AllIn,
			Status:              pp.Status,
			LastSeen:            time.Unix(0, pp.LastSeenUnixNs),
			ConsecutiveTimeouts: pp.ConsecutiveTimeouts,
			TimeBankRemaining:   time.Duration(pp.TimeBankRemainingNs),
			SitOutNextHand:      pp.SitOutNextHand,
			BrokeSince:          timePtr(pp.BrokeSinceUnixNs),
			SittingOutSince:     timePtr(pp.SittingOutSinceNs),
			DisplayName:         pp.DisplayName,
		}
	}

	e.Bridge.Restore(s.Bridge)
	e.ActionRate.Restore(s.ActionRateEvents)
	e.HeartbeatRate.Restore(s.HeartbeatRateEvents)

	e.phaseMachine.SetState(phaseStateFn(e.Phase))
	return nil
}

// UnmarshalSnapshot deserializes a JSON blob into this Engine via
// Restore, failing loud on any decode or validation error per spec.md
// §4.G/§7's fatal-restore policy.
func (e *Engine) UnmarshalSnapshot(data []byte) error {
	var s PersistedState
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("engine restore: decode failed: %w", err)
	}
	return e.Restore(s)
}

