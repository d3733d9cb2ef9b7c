package engine

import "github.com/icpholdem/tableengine/pkg/apperr"

// IsController reports whether identity is in the controller set,
// gating every admin operation of spec.md §6. The platform's intrinsic
// controller list (the principals the host canister/process itself
// trusts) is the caller's responsibility to fold in before invoking
// these methods; Engine only tracks the table-local controller set.
func (e *Engine) IsController(identity string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.Controllers[identity]
	return ok
}

// AddController implements spec.md §6's add controller admin op.
func (e *Engine) AddController(caller, identity string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.Controllers[caller]; !ok {
		return apperr.Auth("%s is not a controller", caller)
	}
	e.Controllers[identity] = struct{}{}
	return nil
}

// RemoveController implements spec.md §6's remove controller admin op.
func (e *Engine) RemoveController(caller, identity string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.Controllers[caller]; !ok {
		return apperr.Auth("%s is not a controller", caller)
	}
	delete(e.Controllers, identity)
	return nil
}

// SetArchiveAddress implements spec.md §6's set history-archive address
// admin op.
func (e *Engine) SetArchiveAddress(caller, addr string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.Controllers[caller]; !ok {
		return apperr.Auth("%s is not a controller", caller)
	}
	e.ArchiveAddr = addr
	return nil
}

// RestoreBalance implements spec.md §6's restore balance admin op: a
// direct escrow-balance correction for recovering from an operator
// error, bypassing the deposit-verification path entirely.
func (e *Engine) RestoreBalance(caller, identity string, amount uint64) error {
	e.mu.Lock()
	isController := false
	if _, ok := e.Controllers[caller]; ok {
		isController = true
	}
	e.mu.Unlock()
	if !isController {
		return apperr.Auth("%s is not a controller", caller)
	}
	e.Bridge.CreditFromCashOut(identity, amount)
	return nil
}

// UpdateConfig implements spec.md §6's config-update admin op: only
// permitted when no hand is in progress.
func (e *Engine) UpdateConfig(caller string, cfg Config) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.Controllers[caller]; !ok {
		return apperr.Auth("%s is not a controller", caller)
	}
	if e.inActiveHand() {
		return apperr.Precondition("cannot update config while a hand is in progress")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.Config = cfg
	return nil
}

// GetRawState implements SPEC_FULL.md's administrative raw-state query
// (spec.md §5's "an administrative 'raw state' query is gated on
// controller identity"): the full PersistedState, including the hidden
// shuffle seed and deck ordering that every player-facing query in
// queries.go deliberately withholds, for operators debugging a stuck
// table. Never reachable by a player — caller must already be a
// controller.
func (e *Engine) GetRawState(caller string) (PersistedState, error) {
	if !e.IsController(caller) {
		return PersistedState{}, apperr.Auth("%s is not a controller", caller)
	}
	return e.Snapshot(), nil
}

// Reset implements spec.md §6's reset admin op: clears every seat and
// in-memory per-hand state, returning each seated player's chips to
// their escrow balance first so funds are never silently destroyed.
func (e *Engine) Reset(caller string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.Controllers[caller]; !ok {
		return apperr.Auth("%s is not a controller", caller)
	}
	for i := 0; i < e.Config.MaxPlayers; i++ {
		p := e.Seats[i].Occupant
		if p == nil {
			continue
		}
		if p.Chips > 0 {
			e.Bridge.CreditFromCashOut(p.Identity, p.Chips)
		}
		e.Seats[i].Occupant = nil
	}
	e.Dealer = -1
	e.ActionOn = -1
	e.Pot = 0
	e.SidePots = nil
	e.CurrentBet = 0
	e.MinRaise = 0
	e.Community = nil
	e.ActionTimer = nil
	e.AutoDealAt = nil
	e.hiddenSeed = nil
	e.transitionTo(stateWaitingForPlayers)
	return nil
}
