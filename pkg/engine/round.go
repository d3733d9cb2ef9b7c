package engine

import (
	"time"

	"github.com/icpholdem/tableengine/pkg/cards"
)

// nonFoldedSeats returns the seat indices of every non-folded occupied
// seat, in seat order.
func (e *Engine) nonFoldedSeats() []int {
	var out []int
	for i := 0; i < e.Config.MaxPlayers; i++ {
		p := e.seatAt(i)
		if p != nil && !p.Folded {
			out = append(out, i)
		}
	}
	return out
}

// canStillActCount counts non-folded, non-all-in Active seats — fewer than
// 2 means the remaining streets must be run out non-recursively
// (spec.md §4.D).
func (e *Engine) canStillActCount() int {
	n := 0
	for i := 0; i < e.Config.MaxPlayers; i++ {
		p := e.seatAt(i)
		if p != nil && !p.Folded && !p.AllIn && p.Status == Active {
			n++
		}
	}
	return n
}

// roundComplete reports whether the current betting round is finished:
// every non-folded, non-all-in, Active seat has acted_this_round and
// current_street_bet == current_bet. The BB-option carve-out is
// honored implicitly — BB's ActedThisRound only becomes true once BB
// actually checks or raises, so the round cannot be marked complete
// while BB is merely owed the option.
func (e *Engine) roundComplete() bool {
	for i := 0; i < e.Config.MaxPlayers; i++ {
		p := e.seatAt(i)
		if p == nil || p.Folded || p.AllIn || p.Status != Active {
			continue
		}
		if !p.ActedThisRound || p.CurrentStreetBet != e.CurrentBet {
			return false
		}
	}
	return true
}

// advanceAfterAction implements spec.md §4.D's "Round completion":
// single-winner short-circuit, then round-completion detection and
// street advancement.
func (e *Engine) advanceAfterAction(now time.Time) {
	remaining := e.nonFoldedSeats()
	if len(remaining) == 1 {
		e.payoutSingleWinner(remaining[0], now)
		return
	}

	if !e.roundComplete() {
		e.advanceActionPointer(now)
		return
	}

	e.completeRoundAndAdvanceStreet(now)
}

// advanceActionPointer moves ActionOn to the next seat that can still
// act, restarting the action timer there.
func (e *Engine) advanceActionPointer(now time.Time) {
	next := e.nextOccupiedSeat(e.ActionOn)
	for next >= 0 && !e.canAct(e.seatAt(next)) {
		if next == e.ActionOn {
			break
		}
		next = e.nextOccupiedSeat(next)
	}
	e.ActionOn = next
	e.startActionTimer(next, now, false)
}

// completeRoundAndAdvanceStreet resets street bets, clears acted
// flags, computes side pots if any all-in occurred, and advances the
// phase per spec.md §4.D. If the river round just completed, or fewer
// than 2 players can still act, it runs out any remaining streets
// non-recursively and proceeds directly to Showdown and the award.
func (e *Engine) completeRoundAndAdvanceStreet(now time.Time) {
	e.resetStreetState()

	if e.anyAllIn() {
		e.SidePots = e.buildSidePots()
	}

	if e.canStillActCount() < 2 || e.Phase == River {
		e.runOutRemainingStreets()
		e.goToShowdown(now)
		return
	}

	e.advancePhaseOneStreet()
	e.openActionForNewStreet(now)
}

func (e *Engine) resetStreetState() {
	for i := 0; i < e.Config.MaxPlayers; i++ {
		p := e.seatAt(i)
		if p == nil {
			continue
		}
		p.CurrentStreetBet = 0
		p.ActedThisRound = false
	}
	e.CurrentBet = 0
	e.MinRaise = e.Config.BigBlind
	e.BBHasOption = false
}

func (e *Engine) anyAllIn() bool {
	for i := 0; i < e.Config.MaxPlayers; i++ {
		p := e.seatAt(i)
		if p != nil && p.AllIn {
			return true
		}
	}
	return false
}

func (e *Engine) buildSidePots() []cards.SidePot {
	var contributions []cards.Contribution
	for i := 0; i < e.Config.MaxPlayers; i++ {
		p := e.seatAt(i)
		if p == nil || p.TotalHandBet == 0 {
			continue
		}
		contributions = append(contributions, cards.Contribution{
			Seat:         i,
			TotalHandBet: p.TotalHandBet,
			Folded:       p.Folded,
		})
	}
	return cards.BuildSidePots(contributions)
}

// advancePhaseOneStreet deals the burn+reveal for PreFlop→Flop,
// Flop→Turn, Turn→River, per spec.md §4.D.
func (e *Engine) advancePhaseOneStreet() {
	switch e.Phase {
	case PreFlop:
		e.burnAndDeal(3)
		e.transitionTo(stateFlop)
	case Flop:
		e.burnAndDeal(1)
		e.transitionTo(stateTurn)
	case Turn:
		e.burnAndDeal(1)
		e.transitionTo(stateRiver)
	case River:
		e.transitionTo(stateShowdown)
	}
}

func (e *Engine) burnAndDeal(n int) {
	e.Deck.Draw()
	for i := 0; i < n; i++ {
		c, ok := e.Deck.Draw()
		if !ok {
			return
		}
		e.Community = append(e.Community, c)
	}
}

// runOutRemainingStreets deals every remaining street's cards
// non-recursively (no further betting rounds occur) once fewer than 2
// players can still act.
func (e *Engine) runOutRemainingStreets() {
	for e.Phase != River && e.Phase != Showdown {
		switch e.Phase {
		case PreFlop:
			e.burnAndDeal(3)
			e.Phase = Flop
		case Flop:
			e.burnAndDeal(1)
			e.Phase = Turn
		case Turn:
			e.burnAndDeal(1)
			e.Phase = River
		default:
			return
		}
	}
}

func (e *Engine) openActionForNewStreet(now time.Time) {
	first := e.nextOccupiedSeat(e.Dealer)
	for first >= 0 && !e.canAct(e.seatAt(first)) {
		next := e.nextOccupiedSeat(first)
		if next == first {
			first = -1
			break
		}
		first = next
	}
	e.ActionOn = first
	e.startActionTimer(first, now, false)
}
