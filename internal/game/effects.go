package game

// turnFlow tells applyEffect whether the handler already decided who acts
// next.
type turnFlow int

const (
	flowAdvance turnFlow = iota
	flowHeld
)

// RankEffect is the special effect a rank triggers when served.
type RankEffect struct {
	Name    string
	Resolve func(e *Engine, gs *GameState, actor string, cards []Card) turnFlow
}

// rankEffects maps rank -> effect. Ranks without an entry (1, 6) play plain.
var rankEffects map[int]RankEffect

func init() {
	rankEffects = map[int]RankEffect{
		2: {Name: "Exclusion", Resolve: func(e *Engine, gs *GameState, actor string, cards []Card) turnFlow {
			e.flush(gs, PoolExcluded)
			return flowHeld
		}},
		3: {Name: "Silence", Resolve: func(e *Engine, gs *GameState, actor string, cards []Card) turnFlow {
			gs.Effect.suppress(1, 13)
			return flowAdvance
		}},
		4: {Name: "Resurrection", Resolve: func(e *Engine, gs *GameState, actor string, cards []Card) turnFlow {
			if gs.hasCards(actor) && len(gs.Discard) > 0 {
				e.raisePrompt(gs, actor, PoolDiscard)
			}
			return flowAdvance
		}},
		5: {Name: "Skip", Resolve: func(e *Engine, gs *GameState, actor string, cards []Card) turnFlow {
			target := gs.RelativePlayer(actor, 1+len(cards))
			if target == "" || target == actor {
				gs.Current = actor
				e.requestFlush(gs, actor, PoolDiscard)
				return flowHeld
			}
			gs.Current = target
			e.log(newTurnEvent(gs))
			return flowHeld
		}},
		7: {Name: "Seven Pass", Resolve: func(e *Engine, gs *GameState, actor string, cards []Card) turnFlow {
			if gs.hasCards(actor) && giftReceiver(gs, actor) != "" {
				e.raisePrompt(gs, actor, PoolHand)
			}
			return flowAdvance
		}},
		8: {Name: "Eight Cut", Resolve: func(e *Engine, gs *GameState, actor string, cards []Card) turnFlow {
			if e.Rules.EightCut == EightCutImmediate {
				e.flush(gs, PoolDiscard)
				return flowHeld
			}
			gs.Current = actor
			e.requestFlush(gs, actor, PoolDiscard)
			return flowHeld
		}},
		9: {Name: "Asura", Resolve: func(e *Engine, gs *GameState, actor string, cards []Card) turnFlow {
			switch gs.Effect.PileSize {
			case 1:
				gs.Effect.PileSize = 3
			case 3:
				gs.Effect.PileSize = 1
			}
			return flowAdvance
		}},
		10: {Name: "Ten Commandments", Resolve: func(e *Engine, gs *GameState, actor string, cards []Card) turnFlow {
			gs.Effect.suppress(1, 9)
			return flowAdvance
		}},
		11: {Name: "Eleven Back", Resolve: func(e *Engine, gs *GameState, actor string, cards []Card) turnFlow {
			gs.Effect.TurnRevoluted = true
			return flowAdvance
		}},
		12: {Name: "Step", Resolve: func(e *Engine, gs *GameState, actor string, cards []Card) turnFlow {
			gs.Effect.IsStep = true
			gs.Effect.limitSuits(playedSuits(cards))
			return flowAdvance
		}},
		13: {Name: "Royal Relief", Resolve: func(e *Engine, gs *GameState, actor string, cards []Card) turnFlow {
			if gs.hasCards(actor) && len(gs.Excluded) > 0 {
				e.raisePrompt(gs, actor, PoolExcluded)
			}
			return flowAdvance
		}},
	}
}

// LookupRankEffect returns the effect for a rank, if it has one.
func LookupRankEffect(rank int) (RankEffect, bool) {
	eff, ok := rankEffects[rank]
	return eff, ok
}

// giftReceiver is the nearest seat before the actor that still holds cards.
func giftReceiver(gs *GameState, actor string) string {
	r := gs.RelativePlayer(actor, -1)
	if r == actor {
		return ""
	}
	return r
}

// applyEffect runs after a play is pushed onto the stack.
func (e *Engine) applyEffect(gs *GameState, actor string, cards []Card) {
	gs.Effect.PileSize = len(cards)
	if len(cards) == 4 {
		gs.Effect.Revoluted = !gs.Effect.Revoluted
		e.log(newRevolutionEvent(gs, actor))
	}

	flow := flowAdvance
	rank, _ := pileRank(cards)
	if rank != 0 && !gs.Effect.Suppressed(rank) {
		if eff, ok := LookupRankEffect(rank); ok {
			e.log(newEffectEvent(gs, actor, eff.Name, cards))
			flow = eff.Resolve(e, gs, actor, cards)
		}
	}
	if flow == flowAdvance {
		e.resume(gs, actor)
	}
}
