package game

// Servable reports whether cards may be played on top of the current stack.
func Servable(gs *GameState, cards []Card) bool {
	return checkServable(gs, cards) == nil
}

func checkServable(gs *GameState, cards []Card) error {
	if len(cards) == 0 {
		return ruleErrorf(CodeInvalidPlay, "no cards")
	}
	rank, ok := pileRank(cards)
	if !ok {
		return ruleErrorf(CodeInvalidPlay, "%s mixes ranks", Pile(cards))
	}

	last := gs.LastPlay()
	if last == nil {
		return nil
	}
	eff := gs.Effect

	if !sizeAllowed(eff, rank, len(cards), len(last)) {
		return ruleErrorf(CodeInvalidPlay, "%s has %d card(s), table needs %d", Pile(cards), len(cards), requiredSize(eff, len(last)))
	}

	lhs := Dejoker(last)
	rhs := Dejoker(cards)
	cmp := comparePiles(rhs, lhs)
	if eff.Reversed() {
		cmp = -cmp
	}
	if cmp <= 0 {
		return ruleErrorf(CodeInvalidPlay, "%s does not beat %s", Pile(cards), last)
	}

	if eff.IsStep {
		lastRank, _ := pileRank(last)
		if lastRank != 0 {
			if rank == 0 {
				return ruleErrorf(CodeInvalidPlay, "step is in force, wildcards alone cannot follow %s", last)
			}
			want := 1
			if eff.Reversed() {
				want = -1
			}
			if cardinal(rank)-cardinal(lastRank) != want {
				return ruleErrorf(CodeInvalidPlay, "step is in force, %s is not one step from %s", Pile(cards), last)
			}
		}
	}

	if len(eff.SuitLimits) > 0 {
		played := playedSuits(cards)
		missing := 0
		for s := range eff.SuitLimits {
			if !played[s] {
				missing++
			}
		}
		if missing > countWildcards(cards) {
			return ruleErrorf(CodeInvalidPlay, "%s does not follow the locked suits", Pile(cards))
		}
	}
	return nil
}

func requiredSize(eff Effect, lastLen int) int {
	if eff.PileSize > 0 {
		return eff.PileSize
	}
	return lastLen
}

// sizeAllowed applies the size rule, including the 9 exchange: an
// unsuppressed 9 may be played as a single or a triple whenever the table
// asks for either.
func sizeAllowed(eff Effect, rank, n, lastLen int) bool {
	need := requiredSize(eff, lastLen)
	if n == need {
		return true
	}
	if rank == 9 && !eff.Suppressed(9) && (need == 1 || need == 3) && (n == 1 || n == 3) {
		return true
	}
	return false
}
