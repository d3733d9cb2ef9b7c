package cards

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func c(rank Rank, suit Suit) Card { return Card{Suit: suit, Rank: rank} }

func TestEvaluateRoyalFlush(t *testing.T) {
	hole := []Card{c(Ace, Spades), c(King, Spades)}
	community := []Card{c(Queen, Spades), c(Jack, Spades), c(Ten, Spades), c(Two, Hearts), c(Three, Clubs)}

	v, err := Evaluate(hole, community)
	require.NoError(t, err)
	require.Equal(t, RoyalFlush, v.Rank)
}

func TestEvaluateWheelStraight(t *testing.T) {
	hole := []Card{c(Ace, Hearts), c(Two, Clubs)}
	community := []Card{c(Three, Diamonds), c(Four, Spades), c(Five, Hearts), c(Nine, Clubs), c(King, Diamonds)}

	v, err := Evaluate(hole, community)
	require.NoError(t, err)
	require.Equal(t, Straight, v.Rank)
}

func TestEvaluateFourOfAKindBeatsFullHouse(t *testing.T) {
	quadHole := []Card{c(Nine, Spades), c(Nine, Hearts)}
	quadCommunity := []Card{c(Nine, Clubs), c(Nine, Diamonds), c(Two, Hearts), c(Three, Clubs), c(Four, Spades)}
	quad, err := Evaluate(quadHole, quadCommunity)
	require.NoError(t, err)
	require.Equal(t, FourOfAKind, quad.Rank)

	fhHole := []Card{c(King, Spades), c(King, Hearts)}
	fhCommunity := []Card{c(King, Clubs), c(Two, Diamonds), c(Two, Hearts), c(Three, Clubs), c(Four, Spades)}
	fh, err := Evaluate(fhHole, fhCommunity)
	require.NoError(t, err)
	require.Equal(t, FullHouse, fh.Rank)

	require.True(t, quad.Better(fh))
}

func TestEvaluateHandRankTotalOrdering(t *testing.T) {
	require.True(t, RoyalFlush > StraightFlush)
	require.True(t, StraightFlush > FourOfAKind)
	require.True(t, FourOfAKind > FullHouse)
	require.True(t, FullHouse > Flush)
	require.True(t, Flush > Straight)
	require.True(t, Straight > ThreeOfAKind)
	require.True(t, ThreeOfAKind > TwoPair)
	require.True(t, TwoPair > Pair)
	require.True(t, Pair > HighCard)
}

func TestEvaluateRejectsTooFewCards(t *testing.T) {
	_, err := Evaluate([]Card{c(Ace, Spades)}, []Card{c(King, Hearts)})
	require.Error(t, err)
}

func TestEvaluateRejectsTooManyCards(t *testing.T) {
	hole := []Card{c(Ace, Spades), c(King, Hearts)}
	community := []Card{c(Queen, Diamonds), c(Jack, Clubs), c(Ten, Spades), c(Nine, Hearts), c(Eight, Diamonds), c(Seven, Clubs)}
	_, err := Evaluate(hole, community)
	require.Error(t, err)
}

func TestEvaluateEqualScoreIsTie(t *testing.T) {
	communityBoard := []Card{c(Two, Clubs), c(Seven, Diamonds), c(Nine, Hearts), c(Jack, Spades), c(King, Clubs)}
	a, err := Evaluate([]Card{c(Three, Hearts), c(Four, Hearts)}, communityBoard)
	require.NoError(t, err)
	b, err := Evaluate([]Card{c(Three, Diamonds), c(Four, Diamonds)}, communityBoard)
	require.NoError(t, err)

	require.True(t, a.Equal(b))
	require.False(t, a.Better(b))
}
