package game

import (
	"fmt"
	"strconv"
	"strings"
)

// Suit of a playing card. SuitUnsuited only appears on wildcards and on
// wildcards normalized to stand in for a concrete rank.
type Suit int

const (
	SuitUnsuited Suit = iota
	SuitSpade
	SuitDiamond
	SuitHeart
	SuitClub
)

// Suits lists the four real suits in deck order.
var Suits = []Suit{SuitSpade, SuitDiamond, SuitHeart, SuitClub}

func (s Suit) String() string {
	switch s {
	case SuitSpade:
		return "s"
	case SuitDiamond:
		return "d"
	case SuitHeart:
		return "h"
	case SuitClub:
		return "c"
	default:
		return "*"
	}
}

// MarshalText implements encoding.TextMarshaler so suit sets serialize with
// readable keys.
func (s Suit) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Suit) UnmarshalText(text []byte) error {
	suit, err := parseSuit(string(text))
	if err != nil {
		return err
	}
	*s = suit
	return nil
}

func parseSuit(s string) (Suit, error) {
	switch s {
	case "s":
		return SuitSpade, nil
	case "d":
		return SuitDiamond, nil
	case "h":
		return SuitHeart, nil
	case "c":
		return SuitClub, nil
	case "*":
		return SuitUnsuited, nil
	default:
		return SuitUnsuited, fmt.Errorf("unknown suit %q", s)
	}
}

// Card is a playing card value. Rank is 1..13 (A..K); a zero Rank is a
// wildcard (joker). Cards have no identity beyond their value.
type Card struct {
	Suit Suit
	Rank int
}

// Joker is the wildcard.
var Joker = Card{}

// NewCard returns a suited card.
func NewCard(suit Suit, rank int) Card {
	return Card{Suit: suit, Rank: rank}
}

// IsWildcard reports whether c is an un-normalized joker.
func (c Card) IsWildcard() bool {
	return c.Rank == 0
}

func (c Card) String() string {
	if c.IsWildcard() {
		return "joker"
	}
	return rankString(c.Rank) + c.Suit.String()
}

func rankString(rank int) string {
	switch rank {
	case 1:
		return "A"
	case 10:
		return "T"
	case 11:
		return "J"
	case 12:
		return "Q"
	case 13:
		return "K"
	default:
		return strconv.Itoa(rank)
	}
}

// ParseCard parses the short form used on the wire: rank A,2-9,T,J,Q,K
// followed by suit s,d,h,c (or * for a normalized wildcard), or "joker".
func ParseCard(s string) (Card, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "joker") {
		return Joker, nil
	}
	if len(s) < 2 {
		return Card{}, fmt.Errorf("parse card %q: too short", s)
	}
	rankPart, suitPart := s[:len(s)-1], s[len(s)-1:]

	var rank int
	switch strings.ToUpper(rankPart) {
	case "A":
		rank = 1
	case "T", "10":
		rank = 10
	case "J":
		rank = 11
	case "Q":
		rank = 12
	case "K":
		rank = 13
	default:
		n, err := strconv.Atoi(rankPart)
		if err != nil || n < 2 || n > 9 {
			return Card{}, fmt.Errorf("parse card %q: bad rank", s)
		}
		rank = n
	}

	suit, err := parseSuit(strings.ToLower(suitPart))
	if err != nil {
		return Card{}, fmt.Errorf("parse card %q: %w", s, err)
	}
	return Card{Suit: suit, Rank: rank}, nil
}

// ParseCards parses a list of short-form cards.
func ParseCards(ss []string) ([]Card, error) {
	cards := make([]Card, 0, len(ss))
	for _, s := range ss {
		c, err := ParseCard(s)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// MarshalText implements encoding.TextMarshaler.
func (c Card) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Card) UnmarshalText(text []byte) error {
	card, err := ParseCard(string(text))
	if err != nil {
		return err
	}
	*c = card
	return nil
}
