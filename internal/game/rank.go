package game

import "slices"

// cardinal maps a rank onto its strength order: 3 is weakest and 2 is
// strongest, so 3..K,A,2 become 0..12.
func cardinal(rank int) int {
	return (rank + 10) % 13
}

// compareCards orders two cards by strength. Wildcards are weaker than any
// ranked card and equal to each other.
func compareCards(a, b Card) int {
	switch {
	case a.IsWildcard() && b.IsWildcard():
		return 0
	case a.IsWildcard():
		return -1
	case b.IsWildcard():
		return 1
	}
	return cardinal(a.Rank) - cardinal(b.Rank)
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

// comparePiles orders two equal-size piles. Both are sorted by strength and
// compared element-wise; the result is decisive only when every pair agrees,
// otherwise the piles are incomparable (0).
func comparePiles(lhs, rhs []Card) int {
	l := Pile(slices.Clone(lhs))
	r := Pile(slices.Clone(rhs))
	l.SortByStrength()
	r.SortByStrength()

	result := 0
	for i := 0; i < len(l) && i < len(r); i++ {
		c := sign(compareCards(l[i], r[i]))
		if i == 0 {
			result = c
			continue
		}
		if c != result {
			return 0
		}
	}
	return result
}

// Dejoker normalizes a pile: when it holds at least one ranked card and all
// ranked cards share a rank, every wildcard becomes an unsuited card of that
// rank. Any other pile is returned unchanged.
func Dejoker(cards []Card) []Card {
	rank, ok := pileRank(cards)
	if !ok || rank == 0 {
		return slices.Clone(cards)
	}
	out := make([]Card, len(cards))
	for i, c := range cards {
		if c.IsWildcard() {
			c = Card{Suit: SuitUnsuited, Rank: rank}
		}
		out[i] = c
	}
	return out
}

// pileRank returns the shared rank of the non-wildcard cards. A pile of only
// wildcards has rank 0. ok is false when two ranked cards differ.
func pileRank(cards []Card) (rank int, ok bool) {
	for _, c := range cards {
		if c.IsWildcard() {
			continue
		}
		if rank == 0 {
			rank = c.Rank
			continue
		}
		if c.Rank != rank {
			return 0, false
		}
	}
	return rank, true
}

// playedSuits returns the suits of the ranked cards in a pile.
func playedSuits(cards []Card) map[Suit]bool {
	suits := make(map[Suit]bool)
	for _, c := range cards {
		if c.Suit != SuitUnsuited {
			suits[c.Suit] = true
		}
	}
	return suits
}

func countWildcards(cards []Card) int {
	n := 0
	for _, c := range cards {
		if c.IsWildcard() {
			n++
		}
	}
	return n
}
