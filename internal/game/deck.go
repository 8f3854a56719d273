package game

// NewDeck returns the 52 suited cards in suit order followed by the given
// number of jokers.
func NewDeck(jokers int) Pile {
	deck := make(Pile, 0, 52+jokers)
	for _, s := range Suits {
		for r := 1; r <= 13; r++ {
			deck = append(deck, NewCard(s, r))
		}
	}
	for i := 0; i < jokers; i++ {
		deck = append(deck, Joker)
	}
	return deck
}

// Shuffle permutes the pile in place (Fisher-Yates) using rng.
func Shuffle(p Pile, rng Random) {
	for i := len(p) - 1; i > 0; i-- {
		j := int(rng.Uint32() % uint32(i+1))
		p[i], p[j] = p[j], p[i]
	}
}
