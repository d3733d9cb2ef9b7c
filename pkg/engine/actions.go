package engine

import (
	"time"

	"github.com/icpholdem/tableengine/pkg/apperr"
)

// ActionKind is one of the player-facing actions of spec.md §6.
type ActionKind int

const (
	Fold ActionKind = iota
	Check
	Call
	Bet
	Raise
	AllIn
)

func (k ActionKind) String() string {
	switch k {
	case Fold:
		return "Fold"
	case Check:
		return "Check"
	case Call:
		return "Call"
	case Bet:
		return "Bet"
	case Raise:
		return "Raise"
	case AllIn:
		return "AllIn"
	default:
		return "Unknown"
	}
}

func (e *Engine) streetLabel() string {
	return e.Phase.String()
}

// PlayerAction implements spec.md §4.D's action legality and
// application for Fold/Check/Call/Bet(x)/Raise(x)/AllIn. Rejects if
// the action timer already expired, per §4.D's "any subsequent player
// action that arrives after the timer has expired is rejected."
func (e *Engine) PlayerAction(identity string, kind ActionKind, amount uint64, now time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.ActionRate.Allow(identity, now) {
		return apperr.RateLimit("player action rate exceeded")
	}

	if e.ActionOn < 0 {
		return apperr.Precondition("no seat currently has the action")
	}
	p := e.seatAt(e.ActionOn)
	if p == nil || p.Identity != identity {
		return apperr.Precondition("not your turn")
	}
	if e.ActionTimer != nil && now.After(e.ActionTimer.ExpiresAt) {
		return apperr.Precondition("action timer already expired")
	}

	if err := e.applyAction(p, kind, amount); err != nil {
		return err
	}
	p.ConsecutiveTimeouts = 0

	e.recordAction(e.ActionOn, kind, amount, now)
	e.advanceAfterAction(now)
	return nil
}

// applyAction validates and applies one action's legality rule from
// spec.md §4.D. Caller holds e.mu.
func (e *Engine) applyAction(p *Player, kind ActionKind, amount uint64) error {
	switch kind {
	case Fold:
		p.Folded = true
		p.ActedThisRound = true
		return nil

	case Check:
		if e.CurrentBet != p.CurrentStreetBet && !e.bbOptionCheckAllowed(p) {
			return apperr.Precondition("cannot check: current bet is %d, you have %d in", e.CurrentBet, p.CurrentStreetBet)
		}
		p.ActedThisRound = true
		if e.bbOptionCheckAllowed(p) {
			e.BBHasOption = false
		}
		return nil

	case Call:
		if e.CurrentBet <= p.CurrentStreetBet {
			return apperr.Precondition("nothing to call")
		}
		contributed := e.CurrentBet - p.CurrentStreetBet
		if contributed > p.Chips {
			contributed = p.Chips
			p.AllIn = true
		}
		p.Chips -= contributed
		p.CurrentStreetBet += contributed
		p.TotalHandBet += contributed
		e.Pot += contributed
		p.ActedThisRound = true
		return nil

	case Bet:
		if e.CurrentBet != 0 {
			return apperr.Precondition("cannot bet: a bet is already live, use raise")
		}
		if amount < e.Config.BigBlind {
			return apperr.Arithmetic("bet must be >= big blind (%d)", e.Config.BigBlind)
		}
		if amount > p.Chips {
			return apperr.Arithmetic("bet exceeds available chips").WithAmounts(amount, p.Chips)
		}
		p.Chips -= amount
		p.CurrentStreetBet += amount
		p.TotalHandBet += amount
		e.Pot += amount
		if p.Chips == 0 {
			p.AllIn = true
		}
		e.CurrentBet = p.CurrentStreetBet
		e.MinRaise = amount
		e.LastAggressor = p.SeatIndex
		e.BBHasOption = false
		p.ActedThisRound = true
		e.clearActedExceptAllInFoldedAndSelf(p.SeatIndex)
		return nil

	case Raise:
		if e.CurrentBet == 0 {
			return apperr.Precondition("cannot raise: no bet is live, use bet")
		}
		if amount <= e.CurrentBet {
			return apperr.Precondition("raise amount must exceed the current bet")
		}
		raisePortion := amount - e.CurrentBet
		if raisePortion < e.MinRaise {
			return apperr.Arithmetic("raise below minimum raise of %d", e.MinRaise)
		}
		needed := amount - p.CurrentStreetBet
		if needed > p.Chips {
			return apperr.Arithmetic("raise exceeds available chips").WithAmounts(needed, p.Chips)
		}
		p.Chips -= needed
		p.CurrentStreetBet += needed
		p.TotalHandBet += needed
		e.Pot += needed
		if p.Chips == 0 {
			p.AllIn = true
		}
		e.MinRaise = raisePortion
		e.CurrentBet = amount
		e.LastAggressor = p.SeatIndex
		e.BBHasOption = false
		p.ActedThisRound = true
		e.clearActedExceptAllInFoldedAndSelf(p.SeatIndex)
		return nil

	case AllIn:
		contribution := p.Chips
		needed := contribution
		p.Chips = 0
		p.AllIn = true
		p.CurrentStreetBet += needed
		p.TotalHandBet += needed
		e.Pot += needed
		p.ActedThisRound = true

		if p.CurrentStreetBet > e.CurrentBet {
			raisePortion := p.CurrentStreetBet - e.CurrentBet
			e.CurrentBet = p.CurrentStreetBet
			e.LastAggressor = p.SeatIndex
			e.BBHasOption = false
			if raisePortion >= e.MinRaise {
				e.MinRaise = raisePortion
			}
			e.clearActedExceptAllInFoldedAndSelf(p.SeatIndex)
		}
		return nil

	default:
		return apperr.Precondition("unknown action")
	}
}

// bbOptionCheckAllowed reports whether p may check under the preflop
// BB-option carve-out: action is on BB, current_bet == big_blind, and
// the option has not yet been used.
func (e *Engine) bbOptionCheckAllowed(p *Player) bool {
	return e.Phase == PreFlop && e.BBHasOption && p.SeatIndex == e.BBSeat && e.CurrentBet == e.Config.BigBlind
}

// clearActedExceptAllInFoldedAndSelf marks every non-folded, non-all-in
// opponent (whether or not it already acted) as needing to act again, per spec.md §4.D's
// AllIn/Bet/Raise reopening rule.
func (e *Engine) clearActedExceptAllInFoldedAndSelf(actingSeat int) {
	for i := 0; i < e.Config.MaxPlayers; i++ {
		if i == actingSeat {
			continue
		}
		p := e.seatAt(i)
		if p == nil || p.Folded || p.AllIn {
			continue
		}
		p.ActedThisRound = false
	}
}

func (e *Engine) recordAction(seat int, kind ActionKind, amount uint64, now time.Time) {
	e.CurrentHandActions = append(e.CurrentHandActions, ActionRecord{
		Seat:        seat,
		Action:      kind.String(),
		Amount:      amount,
		Timestamp:   now,
		StreetLabel: e.streetLabel(),
	})
}
