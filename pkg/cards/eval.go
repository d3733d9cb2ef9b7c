package cards

import (
	"fmt"

	chpoker "github.com/chehsunliu/poker"
)

// HandRank is the hand category, ordered as spec.md §4.E requires:
// RoyalFlush > StraightFlush > FourOfAKind > FullHouse > Flush >
// Straight > ThreeOfAKind > TwoPair > Pair > HighCard.
type HandRank int

const (
	HighCard HandRank = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

func (r HandRank) String() string {
	switch r {
	case RoyalFlush:
		return "RoyalFlush"
	case StraightFlush:
		return "StraightFlush"
	case FourOfAKind:
		return "FourOfAKind"
	case FullHouse:
		return "FullHouse"
	case Flush:
		return "Flush"
	case Straight:
		return "Straight"
	case ThreeOfAKind:
		return "ThreeOfAKind"
	case TwoPair:
		return "TwoPair"
	case Pair:
		return "Pair"
	default:
		return "HighCard"
	}
}

// HandValue is a complete, totally-ordered evaluation of a 5-7 card
// hand. Score is monotonically increasing with hand strength (higher
// wins), built by inverting the chehsunliu library's "lower is better"
// rank value so comparisons read naturally.
type HandValue struct {
	Rank        HandRank
	Score       int64
	Description string
	Best        []Card
}

// Better reports whether v is strictly stronger than other.
func (v HandValue) Better(other HandValue) bool {
	return v.Score > other.Score
}

// Equal reports whether v and other tie exactly (same category and the
// same tiebreakers — chehsunliu folds all tiebreakers into its rank
// value, so equal Score implies a true tie).
func (v HandValue) Equal(other HandValue) bool {
	return v.Score == other.Score
}

func toChehsunliu(c Card) (chpoker.Card, error) {
	var rankChar byte
	switch c.Rank {
	case Two:
		rankChar = '2'
	case Three:
		rankChar = '3'
	case Four:
		rankChar = '4'
	case Five:
		rankChar = '5'
	case Six:
		rankChar = '6'
	case Seven:
		rankChar = '7'
	case Eight:
		rankChar = '8'
	case Nine:
		rankChar = '9'
	case Ten:
		rankChar = 'T'
	case Jack:
		rankChar = 'J'
	case Queen:
		rankChar = 'Q'
	case King:
		rankChar = 'K'
	case Ace:
		rankChar = 'A'
	default:
		var empty chpoker.Card
		return empty, fmt.Errorf("cards: invalid rank %d", c.Rank)
	}

	var suitChar byte
	switch c.Suit {
	case Hearts:
		suitChar = 'h'
	case Diamonds:
		suitChar = 'd'
	case Clubs:
		suitChar = 'c'
	case Spades:
		suitChar = 's'
	default:
		var empty chpoker.Card
		return empty, fmt.Errorf("cards: invalid suit %d", c.Suit)
	}

	return chpoker.NewCard(string([]byte{rankChar, suitChar})), nil
}

func rankClassToHandRank(class int32) HandRank {
	switch class {
	case 1:
		return StraightFlush
	case 2:
		return FourOfAKind
	case 3:
		return FullHouse
	case 4:
		return Flush
	case 5:
		return Straight
	case 6:
		return ThreeOfAKind
	case 7:
		return TwoPair
	case 8:
		return Pair
	default:
		return HighCard
	}
}

// maxChehsunliuRank bounds the library's worst (highest numeric) rank
// value; used only to invert the scale so that a larger Score is a
// stronger hand.
const maxChehsunliuRank = 7463

// Evaluate scores the best hand obtainable from 2 hole cards plus 3-5
// community cards (5-7 total). RoyalFlush is reported as a
// StraightFlush whose best card is an Ace, matching the library's own
// convention of not distinguishing a royal as a tenth category; this
// repository's HandRank keeps RoyalFlush as a distinct label for
// display by detecting an ace-high straight flush after the fact.
func Evaluate(hole []Card, community []Card) (HandValue, error) {
	all := make([]Card, 0, len(hole)+len(community))
	all = append(all, hole...)
	all = append(all, community...)
	if len(all) < 5 || len(all) > 7 {
		return HandValue{}, fmt.Errorf("cards: need 5-7 cards to evaluate, got %d", len(all))
	}

	chCards := make([]chpoker.Card, 0, len(all))
	for _, c := range all {
		cc, err := toChehsunliu(c)
		if err != nil {
			return HandValue{}, err
		}
		chCards = append(chCards, cc)
	}

	rank := chpoker.Evaluate(chCards)
	class := chpoker.RankClass(int32(rank))
	hr := rankClassToHandRank(class)

	best, err := bestFive(all)
	if err != nil {
		return HandValue{}, err
	}
	if hr == StraightFlush && isAceHighFive(best) {
		hr = RoyalFlush
	}

	return HandValue{
		Rank:        hr,
		Score:       int64(maxChehsunliuRank) - int64(rank),
		Description: chpoker.RankString(int32(rank)),
		Best:        best,
	}, nil
}

func isAceHighFive(best []Card) bool {
	hasAce, hasKing := false, false
	for _, c := range best {
		if c.Rank == Ace {
			hasAce = true
		}
		if c.Rank == King {
			hasKing = true
		}
	}
	return hasAce && hasKing
}

// bestFive returns the 5 cards among all that produce the winning
// evaluation, by exhaustive C(n,5) search (n<=7 so at most 21 subsets),
// per spec.md §4.E.
func bestFive(all []Card) ([]Card, error) {
	if len(all) == 5 {
		return append([]Card(nil), all...), nil
	}

	var bestCombo []Card
	var bestRank int32 = -1 // chehsunliu: lower is better, so track the minimum seen
	first := true

	err := forEachCombination(all, 5, func(combo []Card) error {
		chCards := make([]chpoker.Card, 0, 5)
		for _, c := range combo {
			cc, err := toChehsunliu(c)
			if err != nil {
				return err
			}
			chCards = append(chCards, cc)
		}
		r := int32(chpoker.Evaluate(chCards))
		if first || r < bestRank {
			bestRank = r
			bestCombo = append([]Card(nil), combo...)
			first = false
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return bestCombo, nil
}

// forEachCombination invokes fn with every k-combination of cards, in
// the order generated, short-circuiting on the first error.
func forEachCombination(all []Card, k int, fn func(combo []Card) error) error {
	n := len(all)
	if k > n || k <= 0 {
		return nil
	}
	combo := make([]Card, k)
	var recurse func(start, depth int) error
	recurse = func(start, depth int) error {
		if depth == k {
			return fn(combo)
		}
		for i := start; i <= n-(k-depth); i++ {
			combo[depth] = all[i]
			if err := recurse(i+1, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	return recurse(0, 0)
}
