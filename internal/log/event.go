package log

import (
	"fmt"
	"strings"
)

// EventType enumerates all observable game events.
type EventType int

const (
	EventJoin EventType = iota
	EventLeave
	EventDeal
	EventTurn
	EventPass
	EventServe
	EventRevolution
	EventEffect
	EventPrompt
	EventPickUp
	EventGift
	EventFlushScheduled
	EventFlushCanceled
	EventFlush
	EventStaleTimer
	EventOneChance
	EventOneChanceMissed
	EventHandEmpty // player has shed every card
)

func (e EventType) String() string {
	switch e {
	case EventJoin:
		return "Join"
	case EventLeave:
		return "Leave"
	case EventDeal:
		return "Deal"
	case EventTurn:
		return "Turn"
	case EventPass:
		return "Pass"
	case EventServe:
		return "Serve"
	case EventRevolution:
		return "Revolution"
	case EventEffect:
		return "Effect"
	case EventPrompt:
		return "Prompt"
	case EventPickUp:
		return "PickUp"
	case EventGift:
		return "Gift"
	case EventFlushScheduled:
		return "FlushScheduled"
	case EventFlushCanceled:
		return "FlushCanceled"
	case EventFlush:
		return "Flush"
	case EventStaleTimer:
		return "StaleTimer"
	case EventOneChance:
		return "OneChance"
	case EventOneChanceMissed:
		return "OneChanceMissed"
	case EventHandEmpty:
		return "HandEmpty"
	default:
		return "Unknown"
	}
}

// GameEvent represents a single observable event in a room.
type GameEvent struct {
	Seq     int       // monotonic sequence number
	Epoch   int       // number of flushes so far
	Player  string    // acting player, empty for system events
	Type    EventType // event type
	Cards   string    // cards involved, rendered as a pile
	Details string    // human-readable description
}

// --- Helper constructors for common events ---

func NewJoinEvent(epoch int, player string, seats int) GameEvent {
	return GameEvent{
		Epoch:   epoch,
		Player:  player,
		Type:    EventJoin,
		Details: fmt.Sprintf("%s takes seat %d", player, seats),
	}
}

func NewLeaveEvent(epoch int, player string) GameEvent {
	return GameEvent{
		Epoch:   epoch,
		Player:  player,
		Type:    EventLeave,
		Details: fmt.Sprintf("%s leaves the table", player),
	}
}

func NewDealEvent(players []string, deckSize int) GameEvent {
	return GameEvent{
		Type:    EventDeal,
		Details: fmt.Sprintf("Dealt %d cards to %s", deckSize, strings.Join(players, ", ")),
	}
}

func NewTurnEvent(epoch int, player string) GameEvent {
	return GameEvent{
		Epoch:   epoch,
		Player:  player,
		Type:    EventTurn,
		Details: fmt.Sprintf("%s to act", player),
	}
}

func NewPassEvent(epoch int, player string) GameEvent {
	return GameEvent{
		Epoch:   epoch,
		Player:  player,
		Type:    EventPass,
		Details: fmt.Sprintf("%s passes", player),
	}
}

func NewServeEvent(epoch int, player string, cards string) GameEvent {
	return GameEvent{
		Epoch:   epoch,
		Player:  player,
		Type:    EventServe,
		Cards:   cards,
		Details: fmt.Sprintf("%s serves %s", player, cards),
	}
}

func NewRevolutionEvent(epoch int, player string, revoluted bool) GameEvent {
	state := "ends"
	if revoluted {
		state = "begins"
	}
	return GameEvent{
		Epoch:   epoch,
		Player:  player,
		Type:    EventRevolution,
		Details: fmt.Sprintf("Revolution %s (%s)", state, player),
	}
}

func NewEffectEvent(epoch int, player string, name string, cards string) GameEvent {
	return GameEvent{
		Epoch:   epoch,
		Player:  player,
		Type:    EventEffect,
		Cards:   cards,
		Details: fmt.Sprintf("%s triggers %s", cards, name),
	}
}

func NewPromptEvent(epoch int, player string, pool string, count int) GameEvent {
	return GameEvent{
		Epoch:   epoch,
		Player:  player,
		Type:    EventPrompt,
		Details: fmt.Sprintf("%s must choose %d card(s) from %s", player, count, pool),
	}
}

func NewPickUpEvent(epoch int, player string, pool string, cards string) GameEvent {
	return GameEvent{
		Epoch:   epoch,
		Player:  player,
		Type:    EventPickUp,
		Cards:   cards,
		Details: fmt.Sprintf("%s takes %s from %s", player, cards, pool),
	}
}

func NewGiftEvent(epoch int, player string, receiver string, cards string) GameEvent {
	return GameEvent{
		Epoch:   epoch,
		Player:  player,
		Type:    EventGift,
		Cards:   cards,
		Details: fmt.Sprintf("%s passes %s to %s", player, cards, receiver),
	}
}

func NewFlushScheduledEvent(epoch int, player string, pool string, task string) GameEvent {
	return GameEvent{
		Epoch:   epoch,
		Player:  player,
		Type:    EventFlushScheduled,
		Details: fmt.Sprintf("Flush to %s scheduled (task %s)", pool, task),
	}
}

func NewFlushCanceledEvent(epoch int, task string) GameEvent {
	return GameEvent{
		Epoch:   epoch,
		Type:    EventFlushCanceled,
		Details: fmt.Sprintf("Flush task %s canceled", task),
	}
}

func NewFlushEvent(epoch int, pool string, cards string, lead string) GameEvent {
	details := fmt.Sprintf("Play stack flushed to %s", pool)
	if lead != "" {
		details += fmt.Sprintf(", %s leads", lead)
	}
	return GameEvent{
		Epoch:   epoch,
		Player:  lead,
		Type:    EventFlush,
		Cards:   cards,
		Details: details,
	}
}

func NewStaleTimerEvent(epoch int, task string) GameEvent {
	return GameEvent{
		Epoch:   epoch,
		Type:    EventStaleTimer,
		Details: fmt.Sprintf("Ignored stale timer %s", task),
	}
}

func NewOneChanceEvent(epoch int, player string, cards string) GameEvent {
	return GameEvent{
		Epoch:   epoch,
		Player:  player,
		Type:    EventOneChance,
		Cards:   cards,
		Details: fmt.Sprintf("%s cuts in with %s", player, cards),
	}
}

func NewOneChanceMissedEvent(epoch int, player string, cards string) GameEvent {
	return GameEvent{
		Epoch:   epoch,
		Player:  player,
		Type:    EventOneChanceMissed,
		Cards:   cards,
		Details: fmt.Sprintf("%s tried to cut in with %s, no luck", player, cards),
	}
}

func NewHandEmptyEvent(epoch int, player string) GameEvent {
	return GameEvent{
		Epoch:   epoch,
		Player:  player,
		Type:    EventHandEmpty,
		Details: fmt.Sprintf("%s is out of cards", player),
	}
}
