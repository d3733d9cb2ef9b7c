package engine

import (
	"time"

	"github.com/icpholdem/tableengine/pkg/apperr"
	"github.com/icpholdem/tableengine/pkg/cards"
)

// inActiveHand reports whether the engine is mid-hand (not between
// hands), the condition spec.md §4.A/§4.D gates cash-out and withdrawal
// against.
func (e *Engine) inActiveHand() bool {
	return e.Phase != WaitingForPlayers && e.Phase != HandComplete
}

func (e *Engine) findSeat(identity string) int {
	for i := 0; i < e.Config.MaxPlayers; i++ {
		p := e.Seats[i].Occupant
		if p != nil && p.Identity == identity {
			return i
		}
	}
	return -1
}

func (e *Engine) firstFreeSeat() int {
	for i := 0; i < e.Config.MaxPlayers; i++ {
		if e.Seats[i].Occupant == nil {
			return i
		}
	}
	return -1
}

// JoinTable implements spec.md §6's join_table: reserve a free seat for
// identity with zero chips, SittingOut until a buy_in funds it.
// Grounded on spec.md §3's "Players are created on first
// buy_in/join_table."
func (e *Engine) JoinTable(identity string, now time.Time) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.findSeat(identity) >= 0 {
		return -1, apperr.Precondition("%s is already seated", identity)
	}
	idx := e.firstFreeSeat()
	if idx < 0 {
		return -1, apperr.Precondition("table is full")
	}
	e.Seats[idx].Occupant = &Player{
		Identity:        identity,
		SeatIndex:       idx,
		Status:          SittingOut,
		LastSeen:        now,
		SittingOutSince: &now,
		DisplayName:     e.DisplayNames[identity],
	}
	return idx, nil
}

// LeaveTable implements spec.md §6's leave_table. A chipless seat
// (never bought in, or already cashed down to zero) is simply freed.
// A funded seat has its chips credited back to escrow as cash_out does
// (spec.md §4.A). Leaving is refused during an active hand only for a
// non-folded seat whose status is Active; cash_out's guard does not
// look at status.
func (e *Engine) LeaveTable(identity string, now time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.findSeat(identity)
	if idx < 0 {
		return apperr.Precondition("%s is not seated", identity)
	}
	p := e.Seats[idx].Occupant
	if e.inActiveHand() && !p.Folded && p.Status == Active {
		return apperr.Precondition("cannot leave the table during an active hand")
	}
	if p.Chips > 0 {
		e.Bridge.CreditFromCashOut(identity, p.Chips)
	}
	e.Seats[idx].Occupant = nil
	e.ActionRate.Forget(identity)
	e.HeartbeatRate.Forget(identity)
	return nil
}

// BuyIn implements spec.md §4.A's buy-in: validates the amount against
// Config's bounds, debits the caller's escrow balance through the
// ledger Bridge, and creates (or funds) the Seat. If a hand is live,
// the seat starts SittingOut so it cannot be dealt into the hand
// already in progress.
func (e *Engine) BuyIn(identity string, amount uint64, now time.Time) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if amount < e.Config.MinBuyIn || amount > e.Config.MaxBuyIn {
		return -1, apperr.Precondition("buy-in amount %d outside [%d,%d]", amount, e.Config.MinBuyIn, e.Config.MaxBuyIn)
	}

	idx := e.findSeat(identity)
	if idx >= 0 && e.Seats[idx].Occupant.Chips > 0 {
		return -1, apperr.Precondition("%s is already seated with chips", identity)
	}
	if idx < 0 {
		idx = e.firstFreeSeat()
		if idx < 0 {
			return -1, apperr.Precondition("table is full")
		}
	}

	if err := e.Bridge.DebitForBuyIn(identity, amount); err != nil {
		return -1, err
	}

	status := Active
	var sittingOutSince *time.Time
	if e.inActiveHand() {
		status = SittingOut
		t := now
		sittingOutSince = &t
	}

	if e.Seats[idx].Occupant == nil {
		e.Seats[idx].Occupant = &Player{
			Identity:        identity,
			SeatIndex:       idx,
			LastSeen:        now,
			DisplayName:     e.DisplayNames[identity],
			TimeBankRemaining: time.Duration(e.Config.TimeBankSecs) * time.Second,
		}
	}
	p := e.Seats[idx].Occupant
	p.Chips += amount
	p.Status = status
	p.SittingOutSince = sittingOutSince
	return idx, nil
}

// Reload implements spec.md §4.A's reload: only between hands,
// chips+amount must not exceed max_buy_in, clears broke_since, and
// restores Active status if the seat was SittingOut, whatever the
// reason it was sitting out.
func (e *Engine) Reload(identity string, amount uint64, now time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.inActiveHand() {
		return apperr.Precondition("reload is only allowed between hands")
	}
	idx := e.findSeat(identity)
	if idx < 0 {
		return apperr.Precondition("%s is not seated", identity)
	}
	p := e.Seats[idx].Occupant
	if p.Chips+amount > e.Config.MaxBuyIn {
		return apperr.Precondition("chips plus reload would exceed max_buy_in")
	}

	if err := e.Bridge.DebitForBuyIn(identity, amount); err != nil {
		return err
	}

	p.Chips += amount
	p.BrokeSince = nil
	if p.Status == SittingOut {
		p.Status = Active
		p.SittingOutSince = nil
	}
	return nil
}

// CashOut implements spec.md §4.A's cash-out: refuses during an active
// hand, returns chips to the caller's escrow balance, and frees the
// seat.
func (e *Engine) CashOut(identity string, now time.Time) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.findSeat(identity)
	if idx < 0 {
		return 0, apperr.Precondition("%s is not seated", identity)
	}
	p := e.Seats[idx].Occupant
	if e.inActiveHand() && !p.Folded {
		return 0, apperr.Precondition("cannot cash out during an active hand")
	}
	amount := p.Chips
	e.Bridge.CreditFromCashOut(identity, amount)
	e.Seats[idx].Occupant = nil
	e.ActionRate.Forget(identity)
	e.HeartbeatRate.Forget(identity)
	return amount, nil
}

// InHand reports whether identity is currently seated, non-folded, in
// an active hand — the precondition ledger.Withdraw checks via
// ledger.InHandChecker without the ledger package importing engine.
func (e *Engine) InHand(identity string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	idx := e.findSeat(identity)
	if idx < 0 {
		return false
	}
	p := e.Seats[idx].Occupant
	return e.inActiveHand() && !p.Folded
}

// Register implements spec.md §6's register: set the caller's display
// name, applied to the current seat (if any) immediately.
func (e *Engine) Register(identity, displayName string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.DisplayNames[identity] = displayName
	if idx := e.findSeat(identity); idx >= 0 {
		e.Seats[idx].Occupant.DisplayName = displayName
	}
}

// SitOut implements spec.md §6's sit_out: immediately marks the seat
// SittingOut (the player is simply skipped at the next street/hand
// boundary by canAct's Active check).
func (e *Engine) SitOut(identity string, now time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	idx := e.findSeat(identity)
	if idx < 0 {
		return apperr.Precondition("%s is not seated", identity)
	}
	p := e.Seats[idx].Occupant
	if p.Status != SittingOut {
		p.Status = SittingOut
		t := now
		p.SittingOutSince = &t
	}
	return nil
}

// SitIn implements spec.md §6's sit_in: restores Active status.
func (e *Engine) SitIn(identity string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	idx := e.findSeat(identity)
	if idx < 0 {
		return apperr.Precondition("%s is not seated", identity)
	}
	p := e.Seats[idx].Occupant
	p.Status = Active
	p.SittingOutSince = nil
	return nil
}

// SitOutNextHand implements spec.md §6's sit_out_next_hand: the seat
// stays Active (and playable) for the current hand but is moved to
// SittingOut when resetForNewHand clears per-hand state.
func (e *Engine) SitOutNextHand(identity string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	idx := e.findSeat(identity)
	if idx < 0 {
		return apperr.Precondition("%s is not seated", identity)
	}
	e.Seats[idx].Occupant.SitOutNextHand = true
	return nil
}

// ShowCards implements spec.md §6's show_cards: a folded (or
// post-showdown) player may voluntarily reveal their hole cards, per
// spec.md §5's shared-resource policy.
func (e *Engine) ShowCards(identity string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	idx := e.findSeat(identity)
	if idx < 0 {
		return apperr.Precondition("%s is not seated", identity)
	}
	p := e.Seats[idx].Occupant
	if len(p.HoleCards) == 0 {
		return apperr.Precondition("no hole cards to show")
	}
	if e.inActiveHand() && !p.Folded {
		return apperr.Precondition("cannot show cards while still live in the hand")
	}
	if e.ShownCards == nil {
		e.ShownCards = make(map[int][]cards.Card)
	}
	e.ShownCards[idx] = append([]cards.Card(nil), p.HoleCards...)
	return nil
}
