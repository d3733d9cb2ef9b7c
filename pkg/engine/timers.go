package engine

import (
	"time"

	"github.com/icpholdem/tableengine/pkg/apperr"
)

const (
	disconnectThreshold = 30 * time.Second
	brokeSitOutDelay    = 60 * time.Second
	autoKickThreshold   = 120 * time.Second
)

// TimeoutSignal reports an edge-triggered condition check_timeouts
// observed this call, for the caller (the server layer) to act on.
type TimeoutSignal int

const (
	NoAction TimeoutSignal = iota
	AutoDealReady
)

// Heartbeat implements spec.md §6's heartbeat: refreshes last_seen and
// transitions Disconnected back to Active, rate-limited to 2/sec per
// identity (spec.md §4.F).
func (e *Engine) Heartbeat(identity string, now time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.HeartbeatRate.Allow(identity, now) {
		return apperr.RateLimit("heartbeat rate exceeded")
	}
	idx := e.findSeat(identity)
	if idx < 0 {
		return apperr.Precondition("%s is not seated", identity)
	}
	p := e.Seats[idx].Occupant
	p.LastSeen = now
	if p.Status == Disconnected {
		p.Status = Active
		p.SittingOutSince = nil
	}
	return nil
}

// UseTimeBank implements spec.md §4.F's time bank: the acting player
// may spend all remaining time_bank_secs once per round, extending
// their action timer to now + time_bank_remaining.
func (e *Engine) UseTimeBank(identity string, now time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ActionOn < 0 {
		return apperr.Precondition("no seat currently has the action")
	}
	p := e.seatAt(e.ActionOn)
	if p == nil || p.Identity != identity {
		return apperr.Precondition("not your turn")
	}
	if e.ActionTimer != nil && e.ActionTimer.UsingTimeBank {
		return apperr.Precondition("time bank already used this round")
	}
	if p.TimeBankRemaining <= 0 {
		return apperr.Precondition("no time bank remaining")
	}

	remaining := p.TimeBankRemaining
	p.TimeBankRemaining = 0
	e.ActionTimer = &ActionTimer{
		Seat:          e.ActionOn,
		StartedAt:     now,
		ExpiresAt:     now.Add(remaining),
		UsingTimeBank: true,
	}
	return nil
}

// CheckTimeouts implements spec.md §4.F's clocks. It is idempotent
// within a nanosecond: re-running it at the same now observes state
// already advanced by the prior call and performs no further mutation.
// May be invoked by any caller.
func (e *Engine) CheckTimeouts(now time.Time) TimeoutSignal {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := 0; i < e.Config.MaxPlayers; i++ {
		p := e.seatAt(i)
		if p == nil {
			continue
		}
		if p.Status == Active && p.LastSeen.Add(disconnectThreshold).Before(now) {
			p.Status = Disconnected
			if p.SittingOutSince == nil {
				t := now
				p.SittingOutSince = &t
			}
		}
		if p.Chips == 0 && p.BrokeSince != nil && p.BrokeSince.Add(brokeSitOutDelay).Before(now) && p.Status != SittingOut {
			p.Status = SittingOut
			if p.SittingOutSince == nil {
				t := now
				p.SittingOutSince = &t
			}
		}
	}

	if e.Phase == WaitingForPlayers || e.Phase == HandComplete {
		for i := 0; i < e.Config.MaxPlayers; i++ {
			p := e.seatAt(i)
			if p == nil || p.SittingOutSince == nil {
				continue
			}
			if (p.Status == SittingOut || p.Status == Disconnected) && p.SittingOutSince.Add(autoKickThreshold).Before(now) {
				e.Bridge.CreditFromCashOut(p.Identity, p.Chips)
				e.ActionRate.Forget(p.Identity)
				e.HeartbeatRate.Forget(p.Identity)
				e.Seats[i].Occupant = nil
			}
		}
	}

	if e.ActionTimer != nil && e.ActionTimer.ExpiresAt.Before(now) {
		e.forceFoldOnTimeout(now)
	}

	if e.AutoDealAt != nil && !e.AutoDealAt.After(now) && e.activeSeatsWithChips() >= 2 {
		return AutoDealReady
	}
	return NoAction
}

// forceFoldOnTimeout implements spec.md §4.D's timeout handling: force
// a Fold for the timed-out seat, bump consecutive_timeouts (sitting the
// player out once it reaches 2), record the Fold action, and advance
// the game exactly as a normal Fold would.
func (e *Engine) forceFoldOnTimeout(now time.Time) {
	seat := e.ActionTimer.Seat
	p := e.seatAt(seat)
	if p == nil {
		e.ActionTimer = nil
		return
	}

	p.Folded = true
	p.ActedThisRound = true
	p.ConsecutiveTimeouts++
	if p.ConsecutiveTimeouts >= 2 {
		p.Status = SittingOut
		t := now
		p.SittingOutSince = &t
	}

	e.recordAction(seat, Fold, 0, now)
	e.advanceAfterAction(now)
}
