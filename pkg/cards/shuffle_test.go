package cards

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommitSeedHashesCorrectly(t *testing.T) {
	seed := []byte("0123456789abcdef0123456789abcdef")
	c := CommitSeed(seed, 1000)

	want := sha256.Sum256(seed)
	require.Equal(t, hex.EncodeToString(want[:]), c.SeedHash)
	require.Empty(t, c.RevealedSeed)
	require.Equal(t, int64(1000), c.TimestampNs)
}

func TestRevealPopulatesSeedWithoutChangingHash(t *testing.T) {
	seed := []byte("seed-bytes-for-one-hand-32bytes")
	c := CommitSeed(seed, 1)
	revealed := c.Reveal(seed)

	require.Equal(t, c.SeedHash, revealed.SeedHash)
	require.Equal(t, hex.EncodeToString(seed), revealed.RevealedSeed)
}

func TestShuffledDeckIsDeterministicForSameSeed(t *testing.T) {
	seed := []byte("deterministic-seed-one")
	d1 := ShuffledDeck(seed)
	d2 := ShuffledDeck(seed)
	require.Equal(t, d1.Cards(), d2.Cards())
}

func TestShuffledDeckDiffersAcrossSeeds(t *testing.T) {
	d1 := ShuffledDeck([]byte("seed-a"))
	d2 := ShuffledDeck([]byte("seed-b"))
	require.NotEqual(t, d1.Cards(), d2.Cards())
}

func TestShuffledDeckContainsAll52Cards(t *testing.T) {
	d := ShuffledDeck([]byte("any-seed"))
	seen := make(map[Card]bool)
	cards := d.Cards()
	for _, c := range cards {
		seen[c] = true
	}
	require.Len(t, seen, 52)
}

func TestVerifyShuffleRoundTrip(t *testing.T) {
	seed := []byte("round-trip-seed-value")
	commitment := CommitSeed(seed, 5)
	deck := ShuffledDeck(seed)
	cards := deck.Cards()
	revealed := commitment.Reveal(seed)

	ok, err := VerifyShuffle(revealed.SeedHash, revealed.RevealedSeed, &cards)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestVerifyShuffleDetectsHashMismatch(t *testing.T) {
	seed := []byte("seed-one")
	otherSeed := []byte("seed-two-different")
	commitment := CommitSeed(seed, 5)

	ok, err := VerifyShuffle(commitment.SeedHash, hex.EncodeToString(otherSeed), nil)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifyShuffleDetectsDeckMismatch(t *testing.T) {
	seed := []byte("seed-for-deck-mismatch-check")
	commitment := CommitSeed(seed, 5)
	revealed := commitment.Reveal(seed)

	wrongOrdering := NewOrderedDeck().Cards()
	ok, err := VerifyShuffle(revealed.SeedHash, revealed.RevealedSeed, &wrongOrdering)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifyShuffleRejectsInvalidHex(t *testing.T) {
	_, err := VerifyShuffle("deadbeef", "not-hex!!", nil)
	require.Error(t, err)
}
