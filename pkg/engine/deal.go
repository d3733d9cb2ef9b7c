package engine

import (
	"context"
	"time"

	"github.com/icpholdem/tableengine/pkg/apperr"
	"github.com/icpholdem/tableengine/pkg/cards"
)

// RandomnessSource supplies the 32 opaque entropy bytes start_new_hand
// suspends on (spec.md §4.C, §5 suspension point 4). Modeled as an
// interface, mirroring ledger.Client, so the platform RNG is a
// pluggable collaborator rather than a concrete dependency of engine.
type RandomnessSource interface {
	FetchEntropy(ctx context.Context) ([32]byte, error)
}

// StartNewHand implements spec.md §4.C/§4.D's hand start: precondition
// check before requesting randomness (to prevent entropy-burn DoS),
// suspend for entropy, commit the shuffle, deal, post blinds/antes, and
// open action.
func (e *Engine) StartNewHand(ctx context.Context, rng RandomnessSource, now time.Time) error {
	e.mu.Lock()
	if e.Phase != WaitingForPlayers && e.Phase != HandComplete {
		e.mu.Unlock()
		return apperr.Precondition("cannot start a new hand from phase %s", e.Phase)
	}
	if e.activeSeatsWithChips() < 2 {
		e.mu.Unlock()
		return apperr.Precondition("need at least 2 active seats with chips to start a hand")
	}
	e.mu.Unlock()

	// Suspension point 4: randomness fetch. The engine is externally
	// observable (still in its prior phase) while this is in flight.
	seed, err := rng.FetchEntropy(ctx)
	if err != nil {
		return apperr.Ledger("randomness fetch failed: %s", err.Error())
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// Re-check under lock: another caller may have started a hand
	// while we were suspended waiting for entropy.
	if e.Phase != WaitingForPlayers && e.Phase != HandComplete {
		return apperr.Precondition("cannot start a new hand from phase %s", e.Phase)
	}
	if e.activeSeatsWithChips() < 2 {
		return apperr.Precondition("need at least 2 active seats with chips to start a hand")
	}

	e.resetForNewHand()

	e.hiddenSeed = append([]byte(nil), seed[:]...)
	e.Commitment = cards.CommitSeed(e.hiddenSeed, now.UnixNano())
	e.Deck = cards.ShuffledDeck(e.hiddenSeed)

	e.assignButtonAndBlinds()
	e.dealHoleCards()
	e.postBlindsAndAntes()

	e.HandNumber++
	e.ActionOn = e.nextOccupiedSeat(e.BBSeat)
	for e.ActionOn >= 0 && !e.canAct(e.seatAt(e.ActionOn)) {
		e.ActionOn = e.nextOccupiedSeat(e.ActionOn)
	}
	e.startActionTimer(e.ActionOn, now, false)

	e.transitionTo(statePreFlop)
	return nil
}

// resetForNewHand clears all per-hand state, grounded on the teacher's
// ResetForNewHand (pkg/poker/game.go).
func (e *Engine) resetForNewHand() {
	e.Community = nil
	e.Pot = 0
	e.SidePots = nil
	e.CurrentBet = 0
	e.MinRaise = 0
	e.BBHasOption = false
	e.LastAggressor = -1
	e.CurrentHandActions = nil
	e.LastHandWinners = nil
	e.ShownCards = make(map[int][]cards.Card)
	e.AutoDealAt = nil

	for i := 0; i < e.Config.MaxPlayers; i++ {
		p := e.seatAt(i)
		if p == nil {
			continue
		}
		p.HoleCards = nil
		p.CurrentStreetBet = 0
		p.TotalHandBet = 0
		p.Folded = false
		p.ActedThisRound = false
		p.AllIn = false
		if p.SitOutNextHand {
			p.Status = SittingOut
			p.SitOutNextHand = false
		}
		e.StartingChips[p.Identity] = p.Chips
	}
}

// dealHoleCards deals 2 hole cards to each Active seat in a single
// pass, per spec.md §4.D: one trip around the table, both cards dealt
// to a seat before moving to the next.
func (e *Engine) dealHoleCards() {
	for i := 0; i < e.Config.MaxPlayers; i++ {
		p := e.seatAt(i)
		if p == nil || p.Status != Active {
			continue
		}
		for n := 0; n < 2; n++ {
			card, ok := e.Deck.Draw()
			if !ok {
				return
			}
			p.HoleCards = append(p.HoleCards, card)
		}
	}
}

// canAct reports whether a seated player can still be dealt into the
// action (not folded, not all-in, Active).
func (e *Engine) canAct(p *Player) bool {
	return p != nil && !p.Folded && !p.AllIn && p.Status == Active
}

func (e *Engine) startActionTimer(seat int, now time.Time, usingTimeBank bool) {
	if seat < 0 {
		e.ActionTimer = nil
		return
	}
	timeout := time.Duration(e.Config.ActionTimeoutSecs) * time.Second
	e.ActionTimer = &ActionTimer{
		Seat:          seat,
		StartedAt:     now,
		ExpiresAt:     now.Add(timeout),
		UsingTimeBank: usingTimeBank,
	}
}
