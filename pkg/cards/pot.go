package cards

import "sort"

// Contribution is one seat's total commitment to the pot over the
// whole hand, used only for side-pot construction.
type Contribution struct {
	Seat           int
	TotalHandBet   uint64
	Folded         bool
}

// SidePot is one pot slice with the seats eligible to win it, sorted in
// ascending eligibility order so the main pot (broadest eligibility)
// comes first, per spec.md §4.E.
type SidePot struct {
	Amount         uint64
	EligibleSeats  []int
}

// BuildSidePots implements the level-walk algorithm of spec.md §4.E
// exactly, including the §9-mandated remainder rule: "roll into the
// previous pot if any, else into the pot that contains the first
// non-folded contributor" when a level's eligible set is empty.
//
// contributions must include every seat with TotalHandBet > 0,
// including folded seats (invariant: a folded contributor still funds
// pots they cannot win).
func BuildSidePots(contributions []Contribution) []SidePot {
	if len(contributions) == 0 {
		return nil
	}

	levelSet := map[uint64]struct{}{}
	for _, c := range contributions {
		if c.TotalHandBet > 0 {
			levelSet[c.TotalHandBet] = struct{}{}
		}
	}
	levels := make([]uint64, 0, len(levelSet))
	for l := range levelSet {
		levels = append(levels, l)
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })

	firstNonFolded := -1
	for _, c := range contributions {
		if !c.Folded && c.TotalHandBet > 0 {
			firstNonFolded = c.Seat
			break
		}
	}

	var pots []SidePot
	var processed uint64

	firstNonFoldedPotIdx := -1

	for _, level := range levels {
		contribution := level - processed
		var amount uint64
		eligible := make([]int, 0, len(contributions))
		for _, c := range contributions {
			if c.TotalHandBet >= level {
				amount += contribution
				if !c.Folded {
					eligible = append(eligible, c.Seat)
				}
			} else if c.TotalHandBet > processed {
				amount += c.TotalHandBet - processed
			}
		}
		sort.Ints(eligible)

		if len(eligible) == 0 {
			// Roll into the previous pot if one exists, else into the
			// pot containing the first non-folded contributor.
			if len(pots) > 0 {
				pots[len(pots)-1].Amount += amount
			} else if firstNonFoldedPotIdx >= 0 {
				pots[firstNonFoldedPotIdx].Amount += amount
			} else {
				// No pot exists yet at all; stash it in an
				// eligible-less pot that the merge-forward loop after
				// this walk folds into the next pot.
				pots = append(pots, SidePot{Amount: amount, EligibleSeats: nil})
			}
		} else {
			pots = append(pots, SidePot{Amount: amount, EligibleSeats: eligible})
			if firstNonFoldedPotIdx < 0 {
				for _, s := range eligible {
					if s == firstNonFolded {
						firstNonFoldedPotIdx = len(pots) - 1
						break
					}
				}
			}
		}

		processed = level
	}

	var total uint64
	for _, p := range pots {
		total += p.Amount
	}
	var potTotal uint64
	for _, c := range contributions {
		potTotal += c.TotalHandBet
	}
	if total < potTotal && len(pots) > 0 {
		pots[len(pots)-1].Amount += potTotal - total
	}

	// Drop any leading pot that never acquired an eligible seat (can
	// only happen if every contributor at the lowest level folded,
	// which BuildSidePots cannot itself resolve further since there is
	// no other pot yet); merge it forward instead of discarding chips.
	for i := 0; i < len(pots)-1; i++ {
		if len(pots[i].EligibleSeats) == 0 {
			pots[i+1].Amount += pots[i].Amount
			pots[i].Amount = 0
		}
	}
	filtered := pots[:0]
	for _, p := range pots {
		if p.Amount > 0 || len(p.EligibleSeats) > 0 {
			filtered = append(filtered, p)
		}
	}
	return filtered
}
