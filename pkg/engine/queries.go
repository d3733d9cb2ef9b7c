package engine

import (
	"time"

	"github.com/icpholdem/tableengine/pkg/apperr"
	"github.com/icpholdem/tableengine/pkg/cards"
)

// SeatView is the per-seat projection get_table_view returns: hole
// cards are populated only when spec.md §5's shared-resource policy
// permits the requesting caller to see them.
type SeatView struct {
	SeatIndex    int
	Identity     string
	DisplayName  string
	Chips        uint64
	CurrentBet   uint64
	TotalHandBet uint64
	Folded       bool
	AllIn        bool
	Status       PlayerStatus
	HoleCards    []cards.Card // nil unless visible to the caller
}

// TableView is the per-caller snapshot returned by get_table_view.
type TableView struct {
	Phase         Phase
	Dealer        int
	SBSeat        int
	BBSeat        int
	ActionOn      int
	CurrentBet    uint64
	Pot           uint64
	SidePots      []cards.SidePot
	Community     []cards.Card
	Seats         [MaxSeats]*SeatView
	Commitment    cards.ShuffleCommitment
	HandNumber    uint64
}

// canSeeHoleCards implements spec.md §5's shared-resource policy: the
// owner always sees their own cards; any other caller sees a seat's
// cards only if that seat voluntarily showed them, or the hand has
// reached Showdown and the seat did not fold.
func (e *Engine) canSeeHoleCards(caller string, seat int, p *Player) bool {
	if p == nil {
		return false
	}
	if p.Identity == caller {
		return true
	}
	if _, shown := e.ShownCards[seat]; shown {
		return true
	}
	if e.Phase == Showdown && !p.Folded {
		return true
	}
	return false
}

// GetTableView implements spec.md §6's get_table_view.
func (e *Engine) GetTableView(caller string) TableView {
	e.mu.Lock()
	defer e.mu.Unlock()

	view := TableView{
		Phase:      e.Phase,
		Dealer:     e.Dealer,
		SBSeat:     e.SBSeat,
		BBSeat:     e.BBSeat,
		ActionOn:   e.ActionOn,
		CurrentBet: e.CurrentBet,
		Pot:        e.Pot,
		SidePots:   e.SidePots,
		Community:  append([]cards.Card(nil), e.Community...),
		Commitment: e.publicCommitment(),
		HandNumber: e.HandNumber,
	}
	for i := 0; i < e.Config.MaxPlayers; i++ {
		p := e.Seats[i].Occupant
		if p == nil {
			continue
		}
		sv := &SeatView{
			SeatIndex:    i,
			Identity:     p.Identity,
			DisplayName:  p.DisplayName,
			Chips:        p.Chips,
			CurrentBet:   p.CurrentStreetBet,
			TotalHandBet: p.TotalHandBet,
			Folded:       p.Folded,
			AllIn:        p.AllIn,
			Status:       p.Status,
		}
		if e.canSeeHoleCards(caller, i, p) {
			sv.HoleCards = append([]cards.Card(nil), p.HoleCards...)
		}
		view.Seats[i] = sv
	}
	return view
}

// publicCommitment never exposes the hidden seed mid-hand, per spec.md
// §3 invariant 6 / §5's "raw deck and hidden seed are strictly
// internal."
func (e *Engine) publicCommitment() cards.ShuffleCommitment {
	c := e.Commitment
	return c
}

// GetMyCards implements spec.md §6's get_my_cards: the caller's own
// hole cards, regardless of phase.
func (e *Engine) GetMyCards(identity string) ([]cards.Card, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	idx := e.findSeat(identity)
	if idx < 0 {
		return nil, apperr.Precondition("%s is not seated", identity)
	}
	return append([]cards.Card(nil), e.Seats[idx].Occupant.HoleCards...), nil
}

// GetCommunityCards implements spec.md §6's get_community_cards.
func (e *Engine) GetCommunityCards() []cards.Card {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]cards.Card(nil), e.Community...)
}

// GetPot implements spec.md §6's get_pot.
func (e *Engine) GetPot() (uint64, []cards.SidePot) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Pot, e.SidePots
}

// GetActionTimer implements spec.md §6's get_action_timer.
func (e *Engine) GetActionTimer() *ActionTimer {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ActionTimer == nil {
		return nil
	}
	cp := *e.ActionTimer
	return &cp
}

// GetTimeRemaining implements spec.md §6's get_time_remaining.
func (e *Engine) GetTimeRemaining(now time.Time) time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ActionTimer == nil {
		return 0
	}
	d := e.ActionTimer.ExpiresAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// GetHandHistory implements spec.md §6's get_hand_history(hand_number),
// looking only at the in-memory ring (the full archive lives in the
// separate history instance, spec.md §1).
func (e *Engine) GetHandHistory(handNumber uint64) (HandHistory, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, h := range e.History {
		if h.HandNumber == handNumber {
			return h, nil
		}
	}
	return HandHistory{}, apperr.NotFound("hand %d not found", handNumber)
}

// GetBalance implements spec.md §6's get_balance.
func (e *Engine) GetBalance(identity string) uint64 {
	return e.Bridge.Balance(identity)
}

// GetDepositAddress implements spec.md §6's get_deposit_address.
func (e *Engine) GetDepositAddress() string {
	return e.Bridge.DepositAddress()
}

// GetShownCards implements spec.md §6's get_shown_cards(seat).
func (e *Engine) GetShownCards(seat int) []cards.Card {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]cards.Card(nil), e.ShownCards[seat]...)
}

// VerifyShuffle implements spec.md §6's verify_shuffle(seed_hash,
// revealed_seed) -> bool.
func VerifyShuffle(seedHash, revealedSeed string) (bool, error) {
	return cards.VerifyShuffle(seedHash, revealedSeed, nil)
}
