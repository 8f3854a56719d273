package game

import (
	"slices"

	"github.com/peterkuimelis/careerpoker/internal/log"
)

// EngineConfig configures an Engine.
type EngineConfig struct {
	Rules  RuleConfig
	Logger log.EventLogger // nil uses a MemoryLogger
}

// Engine applies actions to a GameState. It keeps no table state of its
// own; the caller owns the GameState and must serialize calls per room.
type Engine struct {
	Rules     RuleConfig
	Scheduler Scheduler
	Random    Random
	logger    log.EventLogger
}

// NewEngine builds an engine. A nil scheduler makes every deferred flush
// happen immediately.
func NewEngine(cfg EngineConfig, sched Scheduler, rng Random) *Engine {
	rules := cfg.Rules
	if rules == (RuleConfig{}) {
		rules = DefaultRules()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewMemoryLogger()
	}
	return &Engine{
		Rules:     rules,
		Scheduler: sched,
		Random:    rng,
		logger:    logger,
	}
}

// Logger returns the engine's event logger.
func (e *Engine) Logger() log.EventLogger {
	return e.logger
}

func (e *Engine) log(event log.GameEvent) {
	e.logger.Log(event)
}

// Apply validates a against gs and, if it is legal, returns the resulting
// state. gs itself is never modified; on rejection it is returned as-is
// together with a *RuleError.
func (e *Engine) Apply(gs *GameState, a Action) (*GameState, error) {
	if err := e.validate(gs, a); err != nil {
		return gs, err
	}
	next := gs.Clone()
	switch a.Kind {
	case ActionDeal:
		e.deal(next)
	case ActionJoin:
		e.join(next, a.Player)
	case ActionLeave:
		e.leave(next, a.Player)
	case ActionPass:
		e.log(log.NewPassEvent(next.Epoch, a.Player))
		e.advance(next, a.Player)
	case ActionServe:
		e.serve(next, a.Player, a.Cards)
	case ActionSelectFromPile:
		e.selectFromPile(next, a.Player, a.Pool, a.Cards)
	case ActionSelectAndPass:
		e.selectAndPass(next, a.Player, a.Cards)
	case ActionOneChance:
		e.oneChance(next, a.Player, a.Cards)
	case ActionFlushTimerFired:
		e.flushTimerFired(next, a.Task, a.Pool)
	case ActionFlushTimerCanceled:
		if a.Task != "" && a.Task == next.PendingFlush {
			next.PendingFlush = ""
			e.log(log.NewFlushCanceledEvent(next.Epoch, string(a.Task)))
		}
	}
	return next, nil
}

// --- Validation ---

func (e *Engine) validate(gs *GameState, a Action) error {
	switch a.Kind {
	case ActionDeal:
		if len(gs.Players) == 0 {
			return ruleErrorf(CodeUnknownPlayer, "nobody is seated")
		}
	case ActionJoin:
		if a.Player == "" {
			return ruleErrorf(CodeUnknownPlayer, "empty player id")
		}
	case ActionLeave:
		if !gs.IsSeated(a.Player) {
			return ruleErrorf(CodeUnknownPlayer, "%q is not seated", a.Player)
		}
	case ActionPass:
		return checkTurn(gs, a.Player)
	case ActionServe:
		if err := checkTurn(gs, a.Player); err != nil {
			return err
		}
		if !gs.hand(a.Player).Contains(a.Cards) {
			return ruleErrorf(CodeInvalidPlay, "%s is not in %s's hand", Pile(a.Cards), a.Player)
		}
		return checkServable(gs, a.Cards)
	case ActionSelectFromPile:
		return checkSelect(gs, a.Player, a.Pool, a.Cards)
	case ActionSelectAndPass:
		return checkSelect(gs, a.Player, PoolHand, a.Cards)
	case ActionOneChance:
		return e.checkOneChance(gs, a.Player, a.Cards)
	case ActionFlushTimerFired, ActionFlushTimerCanceled:
	default:
		return ruleErrorf(CodeInvalidPlay, "unknown action %d", int(a.Kind))
	}
	return nil
}

func checkTurn(gs *GameState, player string) error {
	if !gs.IsSeated(player) {
		return ruleErrorf(CodeUnknownPlayer, "%q is not seated", player)
	}
	if gs.Current != player {
		if gs.Current == "" {
			return ruleErrorf(CodeNotYourTurn, "nobody is to act")
		}
		return ruleErrorf(CodeNotYourTurn, "it is %s's turn", gs.Current)
	}
	if len(gs.Prompts) > 0 {
		return ruleErrorf(CodeNotYourTurn, "waiting for a card selection")
	}
	if gs.PendingFlush != "" {
		return ruleErrorf(CodeNotYourTurn, "waiting for the table to clear")
	}
	return nil
}

// PromptFor returns the outstanding prompt of player and how many cards it
// asks for.
func PromptFor(gs *GameState, player string) (Pool, int) {
	pool, ok := gs.Prompts[player]
	if !ok {
		return PoolNone, 0
	}
	return pool, promptSize(gs, player, pool)
}

// promptSize is the size of the pile in play, capped by what the source
// can supply.
func promptSize(gs *GameState, player string, pool Pool) int {
	n := len(gs.LastPlay())
	if n == 0 {
		n = 1
	}
	var avail int
	if pool == PoolHand {
		avail = len(gs.hand(player))
	} else if src := gs.pool(pool); src != nil {
		avail = len(*src)
	}
	return min(n, avail)
}

func checkSelect(gs *GameState, player string, pool Pool, cards []Card) error {
	if !gs.IsSeated(player) {
		return ruleErrorf(CodeUnknownPlayer, "%q is not seated", player)
	}
	want, ok := gs.Prompts[player]
	if !ok {
		return ruleErrorf(CodePromptMismatch, "%s has no card selection pending", player)
	}
	if want != pool {
		return ruleErrorf(CodePromptMismatch, "%s must choose from %s, not %s", player, want, pool)
	}
	if need := promptSize(gs, player, pool); len(cards) != need {
		return ruleErrorf(CodePromptMismatch, "choose %d card(s), got %d", need, len(cards))
	}
	if pool == PoolHand {
		if !gs.hand(player).Contains(cards) {
			return ruleErrorf(CodeInvalidPlay, "%s is not in %s's hand", Pile(cards), player)
		}
		if giftReceiver(gs, player) == "" {
			return ruleErrorf(CodePromptMismatch, "nobody can receive the cards")
		}
		return nil
	}
	if !gs.pool(pool).Contains(cards) {
		return ruleErrorf(CodeInvalidPlay, "%s is not in %s", Pile(cards), pool)
	}
	return nil
}

func (e *Engine) checkOneChance(gs *GameState, player string, cards []Card) error {
	if !gs.IsSeated(player) {
		return ruleErrorf(CodeUnknownPlayer, "%q is not seated", player)
	}
	if !e.Rules.OneChance {
		return ruleErrorf(CodeInvalidPlay, "one chance is disabled")
	}
	if gs.Effect.Suppressed(1) {
		return ruleErrorf(CodeInvalidPlay, "one chance is suppressed this epoch")
	}
	last := gs.LastPlay()
	if last == nil {
		return ruleErrorf(CodeInvalidPlay, "nothing on the table")
	}
	if len(gs.Prompts) > 0 {
		return ruleErrorf(CodeNotYourTurn, "waiting for a card selection")
	}
	if len(cards) != len(last) {
		return ruleErrorf(CodeInvalidPlay, "one chance needs %d card(s), got %d", len(last), len(cards))
	}
	rank, ok := pileRank(cards)
	if !ok {
		return ruleErrorf(CodeInvalidPlay, "%s mixes ranks", Pile(cards))
	}
	if lastRank, _ := pileRank(last); rank != 0 && lastRank != 0 && rank != lastRank {
		return ruleErrorf(CodeInvalidPlay, "%s does not match %s", Pile(cards), last)
	}
	hand := gs.hand(player)
	if !hand.Contains(cards) {
		return ruleErrorf(CodeInvalidPlay, "%s is not in %s's hand", Pile(cards), player)
	}
	if hand.SameCards(cards) {
		return ruleErrorf(CodeInvalidPlay, "one chance cannot use the whole hand")
	}
	return nil
}

// OneChanceSet returns cards from player's hand that would be accepted as a
// one chance on the current table, or nil when the player holds none.
func OneChanceSet(gs *GameState, rules RuleConfig, player string) []Card {
	last := gs.LastPlay()
	if last == nil || !rules.OneChance || gs.Effect.Suppressed(1) || len(gs.Prompts) > 0 {
		return nil
	}
	hand := gs.hand(player)
	n := len(last)
	if len(hand) <= n {
		return nil
	}
	var wild []Card
	byRank := make(map[int][]Card)
	for _, c := range hand {
		if c.IsWildcard() {
			wild = append(wild, c)
			continue
		}
		byRank[c.Rank] = append(byRank[c.Rank], c)
	}
	fill := func(ranked []Card) []Card {
		if len(ranked)+len(wild) < n {
			return nil
		}
		set := slices.Clone(ranked[:min(len(ranked), n)])
		return append(set, wild[:n-len(set)]...)
	}
	if lastRank, _ := pileRank(last); lastRank != 0 {
		return fill(byRank[lastRank])
	}
	for rank := 1; rank <= 13; rank++ {
		if set := fill(byRank[rank]); set != nil {
			return set
		}
	}
	return nil
}

// --- Transitions ---

func (e *Engine) deal(gs *GameState) {
	e.cancelPending(gs)
	players := gs.Players
	*gs = *NewGameState(gs.RoomID)
	gs.Players = players

	deck := NewDeck(e.Rules.Jokers)
	Shuffle(deck, e.Random)
	for i, c := range deck {
		id := players[i%len(players)]
		gs.Hands[id] = append(gs.Hands[id], c)
	}
	for _, id := range players {
		gs.Hands[id].SortByStrength()
	}
	gs.Current = players[0]
	e.log(log.NewDealEvent(players, len(deck)))
	e.log(newTurnEvent(gs))
}

func (e *Engine) join(gs *GameState, player string) {
	if gs.IsSeated(player) {
		return
	}
	gs.Players = append(gs.Players, player)
	e.log(log.NewJoinEvent(gs.Epoch, player, len(gs.Players)))
}

func (e *Engine) leave(gs *GameState, player string) {
	idx := gs.seatOf(player)
	wasCurrent := gs.Current == player
	wasServer := gs.LastServedBy == player

	delete(gs.Hands, player)
	delete(gs.Prompts, player)
	// Walk on from the leaver's seat before it goes, so the epoch still ends
	// at the last server even when they hold no cards.
	var next string
	var returned bool
	if wasCurrent && !wasServer {
		next, returned = gs.nextActor(player)
	}
	gs.Players = slices.Delete(gs.Players, idx, idx+1)
	e.log(log.NewLeaveEvent(gs.Epoch, player))

	if len(gs.Players) == 0 {
		e.cancelPending(gs)
		gs.Current = ""
		gs.LastServedBy = ""
		return
	}
	idx %= len(gs.Players)

	if wasServer {
		gs.LastServedBy = gs.seatFrom(idx)
		if len(gs.PlayStack) > 0 {
			e.flush(gs, PoolDiscard)
			return
		}
		if wasCurrent {
			next = gs.seatFrom(idx)
		}
	}
	if !wasCurrent {
		return
	}
	gs.Current = next
	if len(gs.PlayStack) > 0 && gs.PendingFlush == "" && (returned || next == "") {
		e.requestFlush(gs, next, PoolDiscard)
		return
	}
	if next != "" {
		e.log(newTurnEvent(gs))
	}
}

func (e *Engine) serve(gs *GameState, player string, cards []Card) {
	gs.removeFromHand(player, cards)
	gs.LastServedBy = player
	gs.PlayStack = append(gs.PlayStack, Pile(slices.Clone(cards)))
	e.log(log.NewServeEvent(gs.Epoch, player, Pile(cards).String()))
	if !gs.hasCards(player) {
		e.log(log.NewHandEmptyEvent(gs.Epoch, player))
	}
	e.applyEffect(gs, player, cards)
}

func (e *Engine) selectFromPile(gs *GameState, player string, pool Pool, cards []Card) {
	gs.pool(pool).Remove(cards)
	gs.addToHand(player, cards)
	delete(gs.Prompts, player)
	e.log(log.NewPickUpEvent(gs.Epoch, player, pool.String(), Pile(cards).String()))
	e.resume(gs, player)
}

func (e *Engine) selectAndPass(gs *GameState, player string, cards []Card) {
	receiver := giftReceiver(gs, player)
	gs.removeFromHand(player, cards)
	gs.addToHand(receiver, cards)
	delete(gs.Prompts, player)
	e.log(log.NewGiftEvent(gs.Epoch, player, receiver, Pile(cards).String()))
	if !gs.hasCards(player) {
		e.log(log.NewHandEmptyEvent(gs.Epoch, player))
	}
	e.resume(gs, player)
}

func (e *Engine) oneChance(gs *GameState, player string, cards []Card) {
	n := gs.ActiveCount()
	if e.Random.Uint32()%uint32(n) != 0 {
		e.log(log.NewOneChanceMissedEvent(gs.Epoch, player, Pile(cards).String()))
		return
	}
	gs.removeFromHand(player, cards)
	e.log(log.NewOneChanceEvent(gs.Epoch, player, Pile(cards).String()))
	e.flush(gs, PoolDiscard)
	gs.Discard.Extend(cards)
	gs.Current = player
	e.log(newTurnEvent(gs))
}

func (e *Engine) flushTimerFired(gs *GameState, task TaskHandle, pool Pool) {
	if task == "" || task != gs.PendingFlush {
		e.log(log.NewStaleTimerEvent(gs.Epoch, string(task)))
		return
	}
	gs.PendingFlush = ""
	if pool != PoolExcluded {
		pool = PoolDiscard
	}
	e.flush(gs, pool)
}

// --- Turn flow ---

// resume advances from actor unless a prompt or a flush is outstanding.
func (e *Engine) resume(gs *GameState, actor string) {
	if len(gs.Prompts) == 0 && gs.PendingFlush == "" {
		e.advance(gs, actor)
	}
}

// advance hands the turn to the next seat holding cards. Reaching the last
// server ends the epoch with a deferred flush.
func (e *Engine) advance(gs *GameState, from string) {
	next, returned := gs.nextActor(from)
	gs.Current = next
	if returned || (next == "" && len(gs.PlayStack) > 0) {
		e.requestFlush(gs, next, PoolDiscard)
		return
	}
	if next != "" {
		e.log(newTurnEvent(gs))
	}
}

func (e *Engine) raisePrompt(gs *GameState, actor string, pool Pool) {
	gs.Prompts[actor] = pool
	e.log(log.NewPromptEvent(gs.Epoch, actor, pool.String(), promptSize(gs, actor, pool)))
}

// requestFlush schedules a deferred flush, replacing any pending one.
func (e *Engine) requestFlush(gs *GameState, actor string, pool Pool) {
	e.cancelPending(gs)
	if e.Scheduler == nil {
		e.flush(gs, pool)
		return
	}
	task := e.Scheduler.Schedule(actor, e.Rules.FlushDelay(), FlushTimerFired("", pool))
	gs.PendingFlush = task
	e.log(log.NewFlushScheduledEvent(gs.Epoch, actor, pool.String(), string(task)))
}

func (e *Engine) cancelPending(gs *GameState) {
	if gs.PendingFlush == "" {
		return
	}
	task := gs.PendingFlush
	gs.PendingFlush = ""
	if e.Scheduler != nil {
		e.Scheduler.Cancel(task)
	}
	e.log(log.NewFlushCanceledEvent(gs.Epoch, string(task)))
}

// flush moves the play stack to pool and opens a new epoch.
func (e *Engine) flush(gs *GameState, pool Pool) {
	e.cancelPending(gs)
	var cards Pile
	for _, p := range gs.PlayStack {
		cards = append(cards, p...)
	}
	gs.pool(pool).Extend(cards)
	gs.PlayStack = nil
	gs.Effect.newTurn()
	gs.Epoch++
	gs.Current = gs.lead()
	e.log(log.NewFlushEvent(gs.Epoch, pool.String(), cards.String(), gs.Current))
}

// --- Event helpers ---

func newTurnEvent(gs *GameState) log.GameEvent {
	return log.NewTurnEvent(gs.Epoch, gs.Current)
}

func newRevolutionEvent(gs *GameState, actor string) log.GameEvent {
	return log.NewRevolutionEvent(gs.Epoch, actor, gs.Effect.Revoluted)
}

func newEffectEvent(gs *GameState, actor string, name string, cards []Card) log.GameEvent {
	return log.NewEffectEvent(gs.Epoch, actor, name, Pile(cards).String())
}
