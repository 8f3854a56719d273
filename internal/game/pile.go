package game

import (
	"slices"
	"strings"
)

// Pile is an ordered multiset of cards: a hand, a terminal pile, or one play
// on the stack.
type Pile []Card

func (p Pile) String() string {
	if len(p) == 0 {
		return "(empty)"
	}
	parts := make([]string, len(p))
	for i, c := range p {
		parts[i] = c.String()
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Contains reports whether every card in cards is present in p, counting
// duplicates.
func (p Pile) Contains(cards []Card) bool {
	counts := make(map[Card]int, len(p))
	for _, c := range p {
		counts[c]++
	}
	for _, c := range cards {
		if counts[c] == 0 {
			return false
		}
		counts[c]--
	}
	return true
}

// SameCards reports whether p and cards hold exactly the same multiset.
func (p Pile) SameCards(cards []Card) bool {
	return len(p) == len(cards) && p.Contains(cards)
}

// Remove deletes one occurrence of each card in cards. Missing cards are
// ignored; callers validate with Contains first.
func (p *Pile) Remove(cards []Card) {
	out := slices.Clone(*p)
	for _, c := range cards {
		if i := slices.Index(out, c); i >= 0 {
			out = slices.Delete(out, i, i+1)
		}
	}
	*p = out
}

// Extend appends cards to the pile.
func (p *Pile) Extend(cards []Card) {
	*p = append(*p, cards...)
}

// Clone returns an independent copy.
func (p Pile) Clone() Pile {
	if p == nil {
		return nil
	}
	return slices.Clone(p)
}

// SortByStrength orders the pile weakest first. Equal ranks fall back to
// suit order so the result is deterministic.
func (p Pile) SortByStrength() {
	slices.SortStableFunc(p, func(a, b Card) int {
		if c := compareCards(a, b); c != 0 {
			return c
		}
		return int(a.Suit) - int(b.Suit)
	})
}
