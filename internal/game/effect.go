package game

import "maps"

// Effect is the set of rule modifiers in force. Everything except Revoluted
// is scoped to one epoch and cleared by a flush.
type Effect struct {
	// PileSize is the required play size; 0 means unset.
	PileSize      int           `json:"pile_size"`
	SuitLimits    map[Suit]bool `json:"suit_limits"`
	EffectLimits  map[int]bool  `json:"effect_limits"`
	TurnRevoluted bool          `json:"turn_revoluted"`
	IsStep        bool          `json:"is_step"`
	Revoluted     bool          `json:"revoluted"`
}

// NewEffect returns an effect with nothing in force.
func NewEffect() Effect {
	return Effect{
		SuitLimits:   make(map[Suit]bool),
		EffectLimits: make(map[int]bool),
	}
}

// Suppressed reports whether the rank's special effect is disabled.
func (e Effect) Suppressed(rank int) bool {
	return e.EffectLimits[rank]
}

// Reversed reports whether strength comparison is flipped for this epoch.
func (e Effect) Reversed() bool {
	return e.Revoluted != e.TurnRevoluted
}

func (e *Effect) suppress(from, to int) {
	if e.EffectLimits == nil {
		e.EffectLimits = make(map[int]bool)
	}
	for r := from; r <= to; r++ {
		e.EffectLimits[r] = true
	}
}

func (e *Effect) limitSuits(suits map[Suit]bool) {
	if e.SuitLimits == nil {
		e.SuitLimits = make(map[Suit]bool)
	}
	for s := range suits {
		e.SuitLimits[s] = true
	}
}

// newTurn clears the epoch-scoped modifiers.
func (e *Effect) newTurn() {
	*e = Effect{
		SuitLimits:   make(map[Suit]bool),
		EffectLimits: make(map[int]bool),
		Revoluted:    e.Revoluted,
	}
}

func (e Effect) clone() Effect {
	out := e
	out.SuitLimits = maps.Clone(e.SuitLimits)
	out.EffectLimits = maps.Clone(e.EffectLimits)
	if out.SuitLimits == nil {
		out.SuitLimits = make(map[Suit]bool)
	}
	if out.EffectLimits == nil {
		out.EffectLimits = make(map[int]bool)
	}
	return out
}
