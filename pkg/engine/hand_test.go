package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/icpholdem/tableengine/pkg/cards"
)

// fixedEntropy is a test RandomnessSource returning a constant 32-byte
// seed, so shuffles (and therefore hole/community cards) are
// reproducible across a test run without needing to predict
// crypto/rand output.
type fixedEntropy [32]byte

func (f fixedEntropy) FetchEntropy(ctx context.Context) ([32]byte, error) {
	return f, nil
}

func seedOf(b byte) fixedEntropy {
	var s fixedEntropy
	for i := range s {
		s[i] = b
	}
	return s
}

// seatPlayers buys identities into seats 0..n-1 in order via JoinTable
// then BuyIn, crediting each an escrow balance first.
func seatPlayers(t *testing.T, e *Engine, now time.Time, chips ...uint64) {
	t.Helper()
	names := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"}
	for i, c := range chips {
		identity := names[i]
		_, err := e.JoinTable(identity, now)
		require.NoError(t, err)
		e.Bridge.CreditFromCashOut(identity, c)
		_, err = e.BuyIn(identity, c, now)
		require.NoError(t, err)
	}
}

// S1 — Preflop BB-option check-through (spec.md §8 S1).
func TestS1_PreflopBBOptionCheckThrough(t *testing.T) {
	e := newTestEngine(t, 6)
	e.Config.SmallBlind = 10
	e.Config.BigBlind = 20
	e.Config.MinBuyIn = 20
	e.Config.MaxBuyIn = 20000
	now := time.Now()

	seatPlayers(t, e, now, 1000, 1000)

	require.NoError(t, e.StartNewHand(context.Background(), seedOf(1), now))
	require.Equal(t, PreFlop, e.Phase)

	sb := e.seatAt(e.SBSeat)
	bb := e.seatAt(e.BBSeat)
	require.Equal(t, e.Dealer, e.SBSeat, "heads-up: dealer is SB")
	require.Equal(t, e.SBSeat, e.ActionOn, "SB acts first preflop heads-up")

	// SB completes to 20 (a Call, matching BB's 20).
	require.NoError(t, e.PlayerAction(sb.Identity, Call, 0, now))
	require.Equal(t, e.BBSeat, e.ActionOn)
	require.True(t, e.BBHasOption)

	// BB checks under the BB-option carve-out.
	require.NoError(t, e.PlayerAction(bb.Identity, Check, 0, now))

	require.Equal(t, Flop, e.Phase)
	require.Equal(t, uint64(40), e.Pot)
	require.Equal(t, uint64(980), sb.Chips)
	require.Equal(t, uint64(980), bb.Chips)
	require.Equal(t, uint64(0), e.CurrentBet)
}

// S2 — Fold-out (spec.md §8 S2).
func TestS2_FoldOut(t *testing.T) {
	e := newTestEngine(t, 6)
	e.Config.SmallBlind = 10
	e.Config.BigBlind = 20
	e.Config.MinBuyIn = 20
	e.Config.MaxBuyIn = 20000
	now := time.Now()

	seatPlayers(t, e, now, 500, 500, 500)

	require.NoError(t, e.StartNewHand(context.Background(), seedOf(2), now))
	require.Equal(t, PreFlop, e.Phase)

	// 3-handed: dealer acts first preflop (UTG).
	utg := e.seatAt(e.ActionOn)
	require.NotEqual(t, e.SBSeat, utg.SeatIndex)
	require.NotEqual(t, e.BBSeat, utg.SeatIndex)

	require.NoError(t, e.PlayerAction(utg.Identity, Raise, 60, now))

	sb := e.seatAt(e.SBSeat)
	require.NoError(t, e.PlayerAction(sb.Identity, Fold, 0, now))

	bb := e.seatAt(e.BBSeat)
	require.NoError(t, e.PlayerAction(bb.Identity, Fold, 0, now))

	require.Equal(t, HandComplete, e.Phase)
	require.Len(t, e.LastHandWinners, 1)
	require.Equal(t, utg.SeatIndex, e.LastHandWinners[0].Seat)
	require.Equal(t, uint64(90), e.LastHandWinners[0].Amount)
	require.Nil(t, e.LastHandWinners[0].HandRank, "fold-out awards no hand rank")
	require.Equal(t, uint64(0), e.Pot)
	require.Empty(t, e.SidePots)
}

// S5 — Timeout fold (spec.md §8 S5).
func TestS5_TimeoutFold(t *testing.T) {
	e := newTestEngine(t, 6)
	e.Config.SmallBlind = 10
	e.Config.BigBlind = 20
	e.Config.MinBuyIn = 20
	e.Config.MaxBuyIn = 20000
	e.Config.ActionTimeoutSecs = 30
	now := time.Now()

	seatPlayers(t, e, now, 1000, 1000)
	require.NoError(t, e.StartNewHand(context.Background(), seedOf(3), now))

	actingSeat := e.ActionOn
	actingIdentity := e.seatAt(actingSeat).Identity

	later := now.Add(31 * time.Second)
	signal := e.CheckTimeouts(later)
	_ = signal

	p := e.seatAt(actingSeat)
	require.True(t, p.Folded)
	require.Equal(t, 1, p.ConsecutiveTimeouts)
	require.NotEmpty(t, e.CurrentHandActions)
	last := e.CurrentHandActions[len(e.CurrentHandActions)-1]
	require.Equal(t, Fold.String(), last.Action)
	require.Equal(t, actingSeat, last.Seat)

	// A late action from the timed-out seat after expiry is rejected.
	require.Error(t, e.PlayerAction(actingIdentity, Check, 0, later))
}

// S6 — Commit-reveal verification (spec.md §8 S6).
func TestS6_CommitRevealVerification(t *testing.T) {
	e := newTestEngine(t, 6)
	e.Config.MaxBuyIn = 20000
	now := time.Now()
	seatPlayers(t, e, now, 1000, 1000)

	seed := seedOf(0x42)
	require.NoError(t, e.StartNewHand(context.Background(), seed, now))

	require.Empty(t, e.Commitment.RevealedSeed, "seed stays hidden during a live hand")
	expectedHash := cards.CommitSeed(seed[:], now.UnixNano()).SeedHash
	require.Equal(t, expectedHash, e.Commitment.SeedHash)

	// Fold the hand out to reach HandComplete and trigger the reveal.
	sb := e.seatAt(e.SBSeat)
	bb := e.seatAt(e.BBSeat)
	require.NoError(t, e.PlayerAction(sb.Identity, Fold, 0, now))
	_ = bb

	require.Equal(t, HandComplete, e.Phase)
	require.NotEmpty(t, e.Commitment.RevealedSeed)

	ok, err := VerifyShuffle(e.Commitment.SeedHash, e.Commitment.RevealedSeed)
	require.NoError(t, err)
	require.True(t, ok)
}

// Exercises the under-raise all-in rule of spec.md §4.D/§9: an all-in
// raise below min_raise does not update min_raise (so nobody may
// re-raise for less than the standing minimum), even though the
// players who already matched the old current bet must still act
// again to cover the new, higher street bet.
func TestAllInUnderRaiseDoesNotUpdateMinRaise(t *testing.T) {
	e := newTestEngine(t, 6)
	e.Config.SmallBlind = 10
	e.Config.BigBlind = 20
	e.Config.MinBuyIn = 20
	e.Config.MaxBuyIn = 20000
	now := time.Now()

	// Three seats: dealer (1000), SB (1000), BB (25 — a short stack
	// that can only call its blind plus 5 more before busting).
	seatPlayers(t, e, now, 1000, 1000, 25)
	require.NoError(t, e.StartNewHand(context.Background(), seedOf(4), now))
	require.Equal(t, uint64(20), e.MinRaise)

	dealer := e.seatAt(e.ActionOn)
	require.NoError(t, e.PlayerAction(dealer.Identity, Call, 0, now))

	sb := e.seatAt(e.ActionOn)
	require.NoError(t, e.PlayerAction(sb.Identity, Call, 0, now))

	// BB (5 chips left after posting 20) goes all-in for 5 more: the
	// raise portion (5) is below MinRaise (20), so MinRaise must not
	// change, but the street bet did rise to 25 so dealer/SB still owe
	// 5 each and are forced to act again.
	bb := e.seatAt(e.ActionOn)
	require.NoError(t, e.PlayerAction(bb.Identity, AllIn, 0, now))
	require.Equal(t, uint64(20), e.MinRaise, "under-raise must not lower the minimum raise")
	require.Equal(t, uint64(25), e.CurrentBet)
	require.False(t, e.seatAt(dealer.SeatIndex).ActedThisRound, "dealer owes the extra 5 and must act again")
	require.False(t, e.seatAt(sb.SeatIndex).ActedThisRound, "SB owes the extra 5 and must act again")

	require.NoError(t, e.PlayerAction(dealer.Identity, Call, 0, now))
	require.NoError(t, e.PlayerAction(sb.Identity, Call, 0, now))

	// Both remaining non-all-in players covered the all-in, so the
	// round completes and betting continues normally on the flop
	// rather than running out to showdown.
	require.Equal(t, Flop, e.Phase)
	require.Equal(t, uint64(20), e.MinRaise, "min-raise resets to the big blind for the new street")
}

// Exercises spec.md §4.E's award path end-to-end by constructing a
// showdown directly with known hole cards, covering a folded
// contributor's exclusion from the award and the odd-chip-remainder
// (S4) rule in a single pot. Side-pot construction (S3) is covered by
// pkg/cards/pot_test.go.
func TestShowdownAwardsSidePotsWithOddChipRemainder(t *testing.T) {
	e := newTestEngine(t, 6)
	now := time.Now()

	mkPlayer := func(seat int, identity string, totalBet uint64, folded bool, hole []cards.Card) {
		e.Seats[seat].Occupant = &Player{
			Identity:     identity,
			SeatIndex:    seat,
			TotalHandBet: totalBet,
			Folded:       folded,
			HoleCards:    hole,
		}
	}

	// A and B tie with identical straights (A's seat is first clockwise
	// from the button so gets the odd chip); C folded but still funds
	// the pot.
	straightHoleA := []cards.Card{{Suit: cards.Hearts, Rank: cards.Nine}, {Suit: cards.Diamonds, Rank: cards.Eight}}
	straightHoleB := []cards.Card{{Suit: cards.Clubs, Rank: cards.Nine}, {Suit: cards.Spades, Rank: cards.Eight}}
	foldedHoleC := []cards.Card{{Suit: cards.Hearts, Rank: cards.Two}, {Suit: cards.Diamonds, Rank: cards.Three}}
	community := []cards.Card{
		{Suit: cards.Hearts, Rank: cards.Seven}, {Suit: cards.Diamonds, Rank: cards.Six},
		{Suit: cards.Clubs, Rank: cards.Five}, {Suit: cards.Spades, Rank: cards.King}, {Suit: cards.Hearts, Rank: cards.Queen},
	}

	mkPlayer(0, "A", 50, false, straightHoleA)
	mkPlayer(1, "B", 50, false, straightHoleB)
	mkPlayer(2, "C", 1, true, foldedHoleC)

	e.Dealer = 2 // A (seat 0) is first clockwise from the button.
	e.Pot = 101
	e.Phase = River
	e.Community = community
	e.Commitment = cards.CommitSeed([]byte("test-seed-bytes-000000000000000"), now.UnixNano())
	e.hiddenSeed = []byte("test-seed-bytes-000000000000000")

	e.goToShowdown(now)

	require.Equal(t, HandComplete, e.Phase)
	require.Equal(t, uint64(0), e.Pot)

	total := uint64(0)
	byseat := map[int]uint64{}
	for _, w := range e.LastHandWinners {
		byseat[w.Seat] = w.Amount
		total += w.Amount
	}
	require.Equal(t, uint64(101), total, "all of the pot is awarded")
	require.Equal(t, uint64(51), byseat[0], "first winner clockwise from the button gets the odd chip")
	require.Equal(t, uint64(50), byseat[1])
	require.NotContains(t, byseat, 2, "folded seat funds the pot but cannot win it")
}
