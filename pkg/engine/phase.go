package engine

import "github.com/icpholdem/tableengine/pkg/statemachine"

// stateFn follows the teacher's pattern (pkg/poker/game.go): each phase
// is a thin state function that stamps e.Phase and returns itself. The actual betting/dealing logic lives in round.go/deal.go
// and drives transitions by calling e.phaseMachine.SetState once a
// round genuinely completes — these functions exist so phase identity
// is always backed by the generic state machine rather than a bare
// enum assignment, per the teacher's own idiom.
type stateFn = statemachine.StateFn[Engine]

func stateWaitingForPlayers(e *Engine, callback func(string, statemachine.StateEvent)) stateFn {
	e.Phase = WaitingForPlayers
	if callback != nil {
		callback("WaitingForPlayers", statemachine.StateEntered)
	}
	return stateWaitingForPlayers
}

func statePreFlop(e *Engine, callback func(string, statemachine.StateEvent)) stateFn {
	e.Phase = PreFlop
	if callback != nil {
		callback("PreFlop", statemachine.StateEntered)
	}
	return statePreFlop
}

func stateFlop(e *Engine, callback func(string, statemachine.StateEvent)) stateFn {
	e.Phase = Flop
	if callback != nil {
		callback("Flop", statemachine.StateEntered)
	}
	return stateFlop
}

func stateTurn(e *Engine, callback func(string, statemachine.StateEvent)) stateFn {
	e.Phase = Turn
	if callback != nil {
		callback("Turn", statemachine.StateEntered)
	}
	return stateTurn
}

func stateRiver(e *Engine, callback func(string, statemachine.StateEvent)) stateFn {
	e.Phase = River
	if callback != nil {
		callback("River", statemachine.StateEntered)
	}
	return stateRiver
}

func stateShowdown(e *Engine, callback func(string, statemachine.StateEvent)) stateFn {
	e.Phase = Showdown
	if callback != nil {
		callback("Showdown", statemachine.StateEntered)
	}
	return stateShowdown
}

func stateHandComplete(e *Engine, callback func(string, statemachine.StateEvent)) stateFn {
	e.Phase = HandComplete
	if callback != nil {
		callback("HandComplete", statemachine.StateEntered)
	}
	return stateHandComplete
}

// transitionTo sets both the generic state machine's current state and
// e.Phase's backing enum in one call.
func (e *Engine) transitionTo(fn stateFn) {
	e.phaseMachine.SetState(fn)
}

func phaseStateFn(p Phase) stateFn {
	switch p {
	case PreFlop:
		return statePreFlop
	case Flop:
		return stateFlop
	case Turn:
		return stateTurn
	case River:
		return stateRiver
	case Showdown:
		return stateShowdown
	case HandComplete:
		return stateHandComplete
	default:
		return stateWaitingForPlayers
	}
}
