package cards

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestBuildSidePotsThreeWayAllIn is scenario S3: A all-in for 100, B
// all-in for 200, C calls 200 — expected main pot 300 eligible
// {A,B,C}, side pot 200 eligible {B,C}.
func TestBuildSidePotsThreeWayAllIn(t *testing.T) {
	const seatA, seatB, seatC = 0, 1, 2
	contributions := []Contribution{
		{Seat: seatA, TotalHandBet: 100},
		{Seat: seatB, TotalHandBet: 200},
		{Seat: seatC, TotalHandBet: 200},
	}

	pots := BuildSidePots(contributions)
	require.Len(t, pots, 2)

	require.Equal(t, uint64(300), pots[0].Amount)
	require.Equal(t, []int{seatA, seatB, seatC}, pots[0].EligibleSeats)

	require.Equal(t, uint64(200), pots[1].Amount)
	require.Equal(t, []int{seatB, seatC}, pots[1].EligibleSeats)
}

func TestBuildSidePotsNoAllIn(t *testing.T) {
	contributions := []Contribution{
		{Seat: 0, TotalHandBet: 60},
		{Seat: 1, TotalHandBet: 60},
		{Seat: 2, TotalHandBet: 60},
	}
	pots := BuildSidePots(contributions)
	require.Len(t, pots, 1)
	require.Equal(t, uint64(180), pots[0].Amount)
	require.Equal(t, []int{0, 1, 2}, pots[0].EligibleSeats)
}

func TestBuildSidePotsFoldedSeatFundsButIsNotEligible(t *testing.T) {
	contributions := []Contribution{
		{Seat: 0, TotalHandBet: 60, Folded: true},
		{Seat: 1, TotalHandBet: 60},
		{Seat: 2, TotalHandBet: 60},
	}
	pots := BuildSidePots(contributions)
	require.Len(t, pots, 1)
	require.Equal(t, uint64(180), pots[0].Amount)
	require.Equal(t, []int{1, 2}, pots[0].EligibleSeats)
}

func TestBuildSidePotsAmountsSumToTotal(t *testing.T) {
	contributions := []Contribution{
		{Seat: 0, TotalHandBet: 100},
		{Seat: 1, TotalHandBet: 50, Folded: true},
		{Seat: 2, TotalHandBet: 500},
		{Seat: 3, TotalHandBet: 500},
	}
	pots := BuildSidePots(contributions)

	var total uint64
	for _, p := range pots {
		require.GreaterOrEqual(t, p.Amount, uint64(0))
		total += p.Amount
	}
	var expected uint64
	for _, c := range contributions {
		expected += c.TotalHandBet
	}
	require.Equal(t, expected, total)
}

func TestBuildSidePotsEmptyEligibleRollsIntoPreviousPot(t *testing.T) {
	// Seat 0 and seat 1 both put in 100 then both fold; seat 2 calls
	// 100 and wins uncontested at this betting level, so the only
	// level present has a non-empty eligible set and this degenerates
	// to one pot — included as a regression guard for the remainder
	// rule's "previous pot" branch once multiple levels are folded out.
	contributions := []Contribution{
		{Seat: 0, TotalHandBet: 100, Folded: true},
		{Seat: 1, TotalHandBet: 100, Folded: true},
		{Seat: 2, TotalHandBet: 100},
	}
	pots := BuildSidePots(contributions)
	require.Len(t, pots, 1)
	require.Equal(t, uint64(300), pots[0].Amount)
	require.Equal(t, []int{2}, pots[0].EligibleSeats)
}

func TestBuildSidePotsEmptyReturnsNil(t *testing.T) {
	require.Nil(t, BuildSidePots(nil))
}
