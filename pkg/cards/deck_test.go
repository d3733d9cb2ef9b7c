package cards

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewOrderedDeckCanonicalOrder(t *testing.T) {
	d := NewOrderedDeck()
	cards := d.Cards()
	require.Equal(t, Card{Suit: Hearts, Rank: Two}, cards[0])
	require.Equal(t, Card{Suit: Hearts, Rank: Ace}, cards[12])
	require.Equal(t, Card{Suit: Diamonds, Rank: Two}, cards[13])
	require.Equal(t, Card{Suit: Spades, Rank: Ace}, cards[51])
}

func TestDeckDrawAdvancesCursor(t *testing.T) {
	d := NewOrderedDeck()
	require.Equal(t, 0, d.Cursor())
	require.Equal(t, 52, d.Remaining())

	c, ok := d.Draw()
	require.True(t, ok)
	require.Equal(t, Card{Suit: Hearts, Rank: Two}, c)
	require.Equal(t, 1, d.Cursor())
	require.Equal(t, 51, d.Remaining())
}

func TestDeckDrawExhausted(t *testing.T) {
	d := NewOrderedDeck()
	for i := 0; i < 52; i++ {
		_, ok := d.Draw()
		require.True(t, ok)
	}
	_, ok := d.Draw()
	require.False(t, ok)
}

func TestDeckNoCardDrawnTwice(t *testing.T) {
	d := NewOrderedDeck()
	seen := make(map[Card]bool)
	for i := 0; i < 52; i++ {
		c, ok := d.Draw()
		require.True(t, ok)
		require.False(t, seen[c], "card %v drawn twice", c)
		seen[c] = true
	}
	require.Len(t, seen, 52)
}

func TestRestoreDeckPreservesOrderingAndCursor(t *testing.T) {
	d := NewOrderedDeck()
	d.Swap(0, 51)
	ordering := d.Cards()

	restored := RestoreDeck(ordering, 10)
	require.Equal(t, 10, restored.Cursor())
	require.Equal(t, ordering, restored.Cards())
}
