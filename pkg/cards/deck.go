package cards

// Deck is the 52-card deck plus a read cursor. Adapted from the
// teacher's pkg/poker/deck.go, but cards are built in the canonical
// order spec.md §4.C requires (Hearts 2..A, Diamonds 2..A, Clubs 2..A,
// Spades 2..A) and the deck is never reshuffled by math/rand — see
// shuffle.go for the mandated deterministic shuffle.
type Deck struct {
	cards  [52]Card
	cursor int
}

// NewOrderedDeck builds the 52-card deck in canonical order, unshuffled.
func NewOrderedDeck() *Deck {
	d := &Deck{}
	i := 0
	for _, suit := range []Suit{Hearts, Diamonds, Clubs, Spades} {
		for rank := Two; rank <= Ace; rank++ {
			d.cards[i] = Card{Suit: suit, Rank: rank}
			i++
		}
	}
	return d
}

// Draw returns the next undealt card and advances the cursor. Invariant
// 4 (deck cursor non-decreasing, no card read twice) holds because the
// cursor only ever increments.
func (d *Deck) Draw() (Card, bool) {
	if d.cursor >= len(d.cards) {
		return Card{}, false
	}
	c := d.cards[d.cursor]
	d.cursor++
	return c, true
}

// Cursor returns the number of cards already drawn.
func (d *Deck) Cursor() int {
	return d.cursor
}

// Remaining returns how many cards are left to draw.
func (d *Deck) Remaining() int {
	return len(d.cards) - d.cursor
}

// Cards returns the full 52-card ordering (post-shuffle), for
// persistence. The cursor is saved separately.
func (d *Deck) Cards() [52]Card {
	return d.cards
}

// Swap exchanges two cards by absolute index; used only by the
// commit-reveal Fisher-Yates in shuffle.go.
func (d *Deck) Swap(i, j int) {
	d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
}

// At returns the card at an absolute index regardless of cursor, for
// verification tooling (verify_shuffle reconstructs a deck and compares
// it card-by-card against the recorded hand without drawing from it).
func (d *Deck) At(i int) Card {
	return d.cards[i]
}

// RestoreDeck rebuilds a Deck from a persisted card ordering and cursor,
// used when restoring engine state across a process upgrade.
func RestoreDeck(ordering [52]Card, cursor int) *Deck {
	return &Deck{cards: ordering, cursor: cursor}
}
