package engine

import (
	"context"
	"time"

	"github.com/icpholdem/tableengine/pkg/archive"
	"github.com/icpholdem/tableengine/pkg/cards"
)

const autoDealDelay = 3 * time.Second

// payoutSingleWinner implements spec.md §4.E's "Single-winner
// (fold-out)" path: the sole non-folded survivor wins the entire pot,
// no rank recorded, hole cards not revealed.
func (e *Engine) payoutSingleWinner(seat int, now time.Time) {
	p := e.seatAt(seat)
	amount := e.Pot
	if p != nil {
		p.Chips += amount
	}
	e.LastHandWinners = []Winner{{Seat: seat, Identity: identityOf(p), Amount: amount}}
	e.Pot = 0
	e.SidePots = nil
	e.finishHand(now, nil)
}

func identityOf(p *Player) string {
	if p == nil {
		return ""
	}
	return p.Identity
}

// goToShowdown implements spec.md §4.E's "Award": for each side pot in
// order, evaluate all eligible non-folded hands and split the pot
// among the max-rank winner set, integer-dividing with the remainder
// going to the first winner clockwise from the dealer button.
func (e *Engine) goToShowdown(now time.Time) {
	e.transitionTo(stateShowdown)

	pots := e.SidePots
	if pots == nil {
		pots = []cards.SidePot{{Amount: e.Pot, EligibleSeats: e.eligibleSeatsForMainPot()}}
	}

	winnings := make(map[int]uint64)
	for _, pot := range pots {
		e.awardPot(pot, winnings)
	}

	var winners []Winner
	var showdownPlayers []archive.ShowdownPlayer
	seen := make(map[int]bool)
	for _, seat := range e.nonFoldedSeats() {
		p := e.seatAt(seat)
		if p == nil {
			continue
		}
		value, err := cards.Evaluate(p.HoleCards, e.Community)
		rankStr := ""
		if err == nil {
			rankStr = value.Rank.String()
		}
		if !seen[seat] {
			showdownPlayers = append(showdownPlayers, archive.ShowdownPlayer{
				Seat:     seat,
				Identity: p.Identity,
				Cards:    p.HoleCards,
				HandRank: rankStr,
			})
			seen[seat] = true
		}
	}

	for seat, amount := range winnings {
		p := e.seatAt(seat)
		if p == nil || amount == 0 {
			continue
		}
		p.Chips += amount
		rank := ""
		if value, err := cards.Evaluate(p.HoleCards, e.Community); err == nil {
			rank = value.Rank.String()
		}
		winners = append(winners, Winner{Seat: seat, Identity: p.Identity, Amount: amount, HandRank: &rank, Cards: p.HoleCards})
	}

	e.LastHandWinners = winners
	e.Pot = 0
	e.SidePots = nil
	e.finishHand(now, showdownPlayers)
}

func (e *Engine) eligibleSeatsForMainPot() []int {
	return e.nonFoldedSeats()
}

// awardPot evaluates the eligible non-folded hands for one pot and
// accumulates each winner's share into winnings, applying the
// odd-chip-to-first-winner-clockwise-from-button rule (spec.md §4.E,
// scenario S4).
func (e *Engine) awardPot(pot cards.SidePot, winnings map[int]uint64) {
	if pot.Amount == 0 || len(pot.EligibleSeats) == 0 {
		return
	}

	var bestValue *cards.HandValue
	var bestSeats []int
	for _, seat := range pot.EligibleSeats {
		p := e.seatAt(seat)
		if p == nil || p.Folded {
			continue
		}
		value, err := cards.Evaluate(p.HoleCards, e.Community)
		if err != nil {
			continue
		}
		switch {
		case bestValue == nil || value.Better(*bestValue):
			v := value
			bestValue = &v
			bestSeats = []int{seat}
		case value.Equal(*bestValue):
			bestSeats = append(bestSeats, seat)
		}
	}
	if len(bestSeats) == 0 {
		return
	}

	share := pot.Amount / uint64(len(bestSeats))
	remainder := pot.Amount % uint64(len(bestSeats))
	for _, seat := range bestSeats {
		winnings[seat] += share
	}
	if remainder > 0 {
		first := e.firstWinnerClockwiseFromButton(bestSeats)
		winnings[first] += remainder
	}
}

// firstWinnerClockwiseFromButton finds, among candidates, the seat
// nearest clockwise from the dealer button (spec.md §4.E, §9).
func (e *Engine) firstWinnerClockwiseFromButton(candidates []int) int {
	set := make(map[int]bool, len(candidates))
	for _, s := range candidates {
		set[s] = true
	}
	for i := 1; i <= e.Config.MaxPlayers; i++ {
		idx := (e.Dealer + i) % e.Config.MaxPlayers
		if set[idx] {
			return idx
		}
	}
	return candidates[0]
}

// finishHand implements spec.md §4.E's "Hand end (both paths)":
// reveal the seed, set phase = HandComplete, clear the action timer,
// mark chipless players, write the completed HandHistory, publish it
// to the archive, schedule auto_deal_at.
func (e *Engine) finishHand(now time.Time, showdownPlayers []archive.ShowdownPlayer) {
	e.Commitment = e.Commitment.Reveal(e.hiddenSeed)
	e.hiddenSeed = nil
	e.ActionTimer = nil
	e.ActionOn = -1

	for i := 0; i < e.Config.MaxPlayers; i++ {
		p := e.seatAt(i)
		if p == nil {
			continue
		}
		if p.Chips == 0 && p.BrokeSince == nil {
			t := now
			p.BrokeSince = &t
		}
	}

	record := e.buildHandHistoryRecord(showdownPlayers)
	e.History = append(e.History, HandHistory{
		HandNumber:      record.HandNumber,
		Commitment:      e.Commitment,
		Actions:         e.CurrentHandActions,
		Winners:         e.LastHandWinners,
		Community:       e.Community,
		ShowdownPlayers: showdownPlayers,
	})
	if len(e.History) > handHistoryRingSize {
		e.History = e.History[len(e.History)-handHistoryRingSize:]
	}

	e.transitionTo(stateHandComplete)

	deadline := now.Add(autoDealDelay)
	e.AutoDealAt = &deadline

	// Suspension point 5: fire-and-forget, does not block return.
	client := e.ArchiveClient
	log := e.Log
	go func() {
		if err := client.Publish(context.Background(), record); err != nil && log != nil {
			log.Errorf("archive publish failed for hand %d: %v", record.HandNumber, err)
		}
	}()
}

func (e *Engine) buildHandHistoryRecord(showdownPlayers []archive.ShowdownPlayer) archive.HandHistoryRecord {
	actions := make([]archive.ActionRecord, 0, len(e.CurrentHandActions))
	for _, a := range e.CurrentHandActions {
		actions = append(actions, archive.ActionRecord{
			Seat:        a.Seat,
			Action:      a.Action,
			Amount:      a.Amount,
			TimestampNs: a.Timestamp.UnixNano(),
			StreetLabel: a.StreetLabel,
		})
	}
	winners := make([]archive.Winner, 0, len(e.LastHandWinners))
	for _, w := range e.LastHandWinners {
		winners = append(winners, archive.Winner{
			Seat:     w.Seat,
			Identity: w.Identity,
			Amount:   w.Amount,
			HandRank: w.HandRank,
			Cards:    w.Cards,
		})
	}
	return archive.HandHistoryRecord{
		TableID:         e.ArchiveAddr,
		HandNumber:      e.HandNumber,
		SeedHash:        e.Commitment.SeedHash,
		RevealedSeed:    e.Commitment.RevealedSeed,
		Actions:         actions,
		Winners:         winners,
		Community:       e.Community,
		ShowdownPlayers: showdownPlayers,
		EndedAtUnixNs:   0,
	}
}
