package game

import (
	"maps"
	"slices"
)

// GameState is the complete table state of one room.
type GameState struct {
	RoomID       string          `json:"room_id"`
	Players      []string        `json:"players"`
	Hands        map[string]Pile `json:"hands"`
	Discard      Pile            `json:"discard"`
	Excluded     Pile            `json:"excluded"`
	PlayStack    []Pile          `json:"play_stack"`
	Current      string          `json:"current,omitempty"`
	LastServedBy string          `json:"last_served_by,omitempty"`
	PendingFlush TaskHandle      `json:"pending_flush,omitempty"`
	Prompts      map[string]Pool `json:"prompts"`
	Effect       Effect          `json:"effect"`
	Epoch        int             `json:"epoch"`
}

// NewGameState returns an empty room with nobody seated.
func NewGameState(roomID string) *GameState {
	return &GameState{
		RoomID:  roomID,
		Hands:   make(map[string]Pile),
		Prompts: make(map[string]Pool),
		Effect:  NewEffect(),
	}
}

// Clone returns a deep copy.
func (gs *GameState) Clone() *GameState {
	out := *gs
	out.Players = slices.Clone(gs.Players)
	out.Hands = make(map[string]Pile, len(gs.Hands))
	for id, h := range gs.Hands {
		out.Hands[id] = h.Clone()
	}
	out.Discard = gs.Discard.Clone()
	out.Excluded = gs.Excluded.Clone()
	if gs.PlayStack != nil {
		out.PlayStack = make([]Pile, len(gs.PlayStack))
		for i, p := range gs.PlayStack {
			out.PlayStack[i] = p.Clone()
		}
	}
	out.Prompts = maps.Clone(gs.Prompts)
	if out.Prompts == nil {
		out.Prompts = make(map[string]Pool)
	}
	out.Effect = gs.Effect.clone()
	return &out
}

// IsSeated reports whether the player holds a seat.
func (gs *GameState) IsSeated(player string) bool {
	return gs.seatOf(player) >= 0
}

func (gs *GameState) seatOf(player string) int {
	if player == "" {
		return -1
	}
	return slices.Index(gs.Players, player)
}

func (gs *GameState) hasCards(player string) bool {
	return len(gs.Hands[player]) > 0
}

// ActiveCount is the number of players still holding cards.
func (gs *GameState) ActiveCount() int {
	n := 0
	for _, id := range gs.Players {
		if gs.hasCards(id) {
			n++
		}
	}
	return n
}

// LastPlay returns the pile on top of the stack, or nil.
func (gs *GameState) LastPlay() Pile {
	if len(gs.PlayStack) == 0 {
		return nil
	}
	return gs.PlayStack[len(gs.PlayStack)-1]
}

// pool returns the terminal pile for p.
func (gs *GameState) pool(p Pool) *Pile {
	switch p {
	case PoolDiscard:
		return &gs.Discard
	case PoolExcluded:
		return &gs.Excluded
	default:
		return nil
	}
}

func (gs *GameState) hand(player string) Pile {
	return gs.Hands[player]
}

func (gs *GameState) addToHand(player string, cards []Card) {
	h := gs.Hands[player].Clone()
	h.Extend(cards)
	h.SortByStrength()
	gs.Hands[player] = h
}

func (gs *GameState) removeFromHand(player string, cards []Card) {
	h := gs.Hands[player]
	h.Remove(cards)
	gs.Hands[player] = h
}

// RelativePlayer walks delta seats from player and then keeps going in the
// same direction until it finds someone holding cards. It returns "" when
// nobody qualifies.
func (gs *GameState) RelativePlayer(player string, delta int) string {
	i := gs.seatOf(player)
	n := len(gs.Players)
	if i < 0 || n == 0 {
		return ""
	}
	dir := 1
	if delta < 0 {
		dir = -1
	}
	for step := 0; step < n; step++ {
		idx := ((i+delta+step*dir)%n + n) % n
		if id := gs.Players[idx]; gs.hasCards(id) {
			return id
		}
	}
	return ""
}

// seatFrom returns the first player holding cards at seat idx or after it.
func (gs *GameState) seatFrom(idx int) string {
	n := len(gs.Players)
	for step := 0; step < n; step++ {
		if id := gs.Players[(idx+step)%n]; gs.hasCards(id) {
			return id
		}
	}
	return ""
}

// nextActor walks forward from player. While a play is on the table it stops
// at the last server's seat and reports that the epoch has come back round.
func (gs *GameState) nextActor(player string) (next string, returned bool) {
	i := gs.seatOf(player)
	n := len(gs.Players)
	if i < 0 || n == 0 {
		return "", false
	}
	open := len(gs.PlayStack) > 0 && gs.LastServedBy != ""
	for step := 1; step <= n; step++ {
		id := gs.Players[(i+step)%n]
		if open && id == gs.LastServedBy {
			return id, true
		}
		if gs.hasCards(id) {
			return id, false
		}
	}
	return "", open
}

// lead picks who opens the next epoch: the last server if they still hold
// cards, otherwise the next seat after them that does.
func (gs *GameState) lead() string {
	i := gs.seatOf(gs.LastServedBy)
	if i < 0 {
		if len(gs.Players) == 0 {
			return ""
		}
		if gs.hasCards(gs.Current) {
			return gs.Current
		}
		return gs.seatFrom(0)
	}
	return gs.seatFrom(i)
}
