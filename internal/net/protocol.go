package net

import (
	"slices"

	"github.com/peterkuimelis/careerpoker/internal/game"
	"github.com/peterkuimelis/careerpoker/internal/log"
)

// Message types for the JSON protocol over WebSocket.

// --- Server → Client messages ---

// ServerMessage is the envelope for all server-to-client messages.
type ServerMessage struct {
	Type string `json:"type"` // "state", "events" or "error"

	// For "state"
	State *StateView `json:"state,omitempty"`

	// For "events"
	Events []EventView `json:"events,omitempty"`

	// For "error"
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Protocol errors that are not rule errors.
const (
	CodeBadRequest = "BAD_REQUEST"
	CodeInternal   = "INTERNAL"
)

// EventView is a game event for the client.
type EventView struct {
	Seq     int    `json:"seq"`
	Epoch   int    `json:"epoch"`
	Player  string `json:"player,omitempty"`
	Type    string `json:"type"`
	Cards   string `json:"cards,omitempty"`
	Details string `json:"details"`
}

// NewEventView converts a logged event.
func NewEventView(e log.GameEvent) EventView {
	return EventView{
		Seq:     e.Seq,
		Epoch:   e.Epoch,
		Player:  e.Player,
		Type:    e.Type.String(),
		Cards:   e.Cards,
		Details: e.Details,
	}
}

// EventViews converts a batch of logged events.
func EventViews(events []log.GameEvent) []EventView {
	views := make([]EventView, 0, len(events))
	for _, e := range events {
		views = append(views, NewEventView(e))
	}
	return views
}

// StateView is the table from one player's perspective.
type StateView struct {
	Room         string       `json:"room"`
	You          string       `json:"you"`
	Hand         []string     `json:"hand"` // only the viewer's cards
	Players      []PlayerView `json:"players"`
	Current      string       `json:"current"`
	IsYourTurn   bool         `json:"is_your_turn"`
	LastServedBy string       `json:"last_served_by,omitempty"`
	InPlay       []string     `json:"in_play"`
	StackDepth   int          `json:"stack_depth"`
	DiscardCount int          `json:"discard_count"`
	Excluded     []string     `json:"excluded"`
	Effect       EffectView   `json:"effect"`
	Prompt       *PromptView  `json:"prompt,omitempty"`
	FlushPending bool         `json:"flush_pending"`
	Epoch        int          `json:"epoch"`
}

// PlayerView shows one seat.
type PlayerView struct {
	Name      string `json:"name"`
	HandCount int    `json:"hand_count"`
	Prompted  bool   `json:"prompted,omitempty"`
}

// EffectView lists the modifiers in force.
type EffectView struct {
	PileSize   int      `json:"pile_size,omitempty"`
	Suits      []string `json:"suits,omitempty"`
	Suppressed []int    `json:"suppressed,omitempty"`
	Step       bool     `json:"step,omitempty"`
	Revolution bool     `json:"revolution,omitempty"`
	Reversed   bool     `json:"reversed,omitempty"`
}

// PromptView is a pick-up or gift the viewer owes.
type PromptView struct {
	Pool  string `json:"pool"`
	Count int    `json:"count"`
}

// BuildStateView projects the table for player. Other players' hands are
// reduced to counts. The excluded pile is face up and shown in full.
func BuildStateView(gs *game.GameState, player string) *StateView {
	sv := &StateView{
		Room:         gs.RoomID,
		You:          player,
		Hand:         cardNames(gs.Hands[player]),
		Current:      gs.Current,
		IsYourTurn:   gs.Current == player && gs.PendingFlush == "" && len(gs.Prompts) == 0,
		LastServedBy: gs.LastServedBy,
		InPlay:       cardNames(gs.LastPlay()),
		StackDepth:   len(gs.PlayStack),
		DiscardCount: len(gs.Discard),
		Excluded:     cardNames(gs.Excluded),
		Effect:       buildEffectView(gs.Effect),
		FlushPending: gs.PendingFlush != "",
		Epoch:        gs.Epoch,
	}
	for _, p := range gs.Players {
		_, prompted := gs.Prompts[p]
		sv.Players = append(sv.Players, PlayerView{
			Name:      p,
			HandCount: len(gs.Hands[p]),
			Prompted:  prompted,
		})
	}
	if pool, n := game.PromptFor(gs, player); pool != game.PoolNone {
		sv.Prompt = &PromptView{Pool: pool.String(), Count: n}
	}
	return sv
}

func buildEffectView(e game.Effect) EffectView {
	ev := EffectView{
		PileSize:   e.PileSize,
		Step:       e.IsStep,
		Revolution: e.Revoluted,
		Reversed:   e.Reversed(),
	}
	for s, on := range e.SuitLimits {
		if on {
			ev.Suits = append(ev.Suits, s.String())
		}
	}
	slices.Sort(ev.Suits)
	for r, on := range e.EffectLimits {
		if on {
			ev.Suppressed = append(ev.Suppressed, r)
		}
	}
	slices.Sort(ev.Suppressed)
	return ev
}

func cardNames(p game.Pile) []string {
	names := make([]string, 0, len(p))
	for _, c := range p {
		names = append(names, c.String())
	}
	return names
}

// --- Client → Server messages ---

// ClientMessage is the envelope for all client-to-server messages.
type ClientMessage struct {
	Type string `json:"type"` // "action" or "state"

	// For "action". The player is taken from the session, not the message.
	Action *game.Action `json:"action,omitempty"`
}
