package engine

// assignButtonAndBlinds implements spec.md §4.D's "Button & blind
// assignment": on the first hand the dealer is the first Active seat
// with chips; otherwise the dealer advances clockwise to the next such
// seat. Heads-up, the dealer is the small blind. Otherwise SB is next
// clockwise from dealer, BB next clockwise from SB.
func (e *Engine) assignButtonAndBlinds() {
	if e.Dealer < 0 {
		e.Dealer = e.nextActiveWithChips(-1)
	} else {
		e.Dealer = e.nextActiveWithChips(e.Dealer)
	}

	if e.headsUp() {
		e.SBSeat = e.Dealer
		e.BBSeat = e.nextActiveWithChips(e.Dealer)
	} else {
		e.SBSeat = e.nextActiveWithChips(e.Dealer)
		e.BBSeat = e.nextActiveWithChips(e.SBSeat)
	}
}

// headsUp reports whether exactly 2 seats are eligible to play this
// hand (Active, chips > 0).
func (e *Engine) headsUp() bool {
	return e.activeSeatsWithChips() == 2
}

// postBlindsAndAntes decrements chips for SB, BB, and antes, capped at
// available chips (flagging all_in if it consumes the stack), and
// increments pot/total_hand_bet, per spec.md §4.D.
func (e *Engine) postBlindsAndAntes() {
	if e.Config.Ante > 0 {
		for i := 0; i < e.Config.MaxPlayers; i++ {
			p := e.seatAt(i)
			if p == nil || p.Status != Active || p.Chips == 0 {
				continue
			}
			e.postContribution(p, e.Config.Ante)
		}
	}

	sb := e.seatAt(e.SBSeat)
	bb := e.seatAt(e.BBSeat)
	if sb != nil {
		e.postContribution(sb, e.Config.SmallBlind)
	}
	if bb != nil {
		e.postContribution(bb, e.Config.BigBlind)
		e.BBHasOption = true
		e.CurrentBet = bb.CurrentStreetBet
		e.MinRaise = e.Config.BigBlind
	}
}

// postContribution moves amount (capped at the player's stack) from
// chips into the pot, marking all_in if it exhausts the stack.
func (e *Engine) postContribution(p *Player, amount uint64) {
	if amount > p.Chips {
		amount = p.Chips
		p.AllIn = true
	}
	p.Chips -= amount
	p.CurrentStreetBet += amount
	p.TotalHandBet += amount
	e.Pot += amount
}
