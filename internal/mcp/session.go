package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/peterkuimelis/careerpoker/internal/game"
	cpnet "github.com/peterkuimelis/careerpoker/internal/net"
	"github.com/peterkuimelis/careerpoker/internal/room"
)

// ToolResponse is the JSON envelope returned by all MCP tools.
type ToolResponse struct {
	Events []cpnet.EventView `json:"events"`
	State  *cpnet.StateView  `json:"state,omitempty"`
	Error  *ErrorView        `json:"error,omitempty"`
}

// ErrorView is a rejected action.
type ErrorView struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var errNotSeated = errors.New("not seated: use join_room first")

// Session is the agent's seat. One stdio process plays one seat at a time.
type Session struct {
	rooms *room.Manager

	mu      sync.Mutex
	room    *room.Room
	player  string
	lastSeq int // last event already reported
}

func NewSession(rooms *room.Manager) *Session {
	return &Session{rooms: rooms}
}

// Join opens the room and takes a seat in it, replacing any previous seat.
func (s *Session) Join(ctx context.Context, roomID, player string) (*ToolResponse, error) {
	r, err := s.rooms.Open(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("open room: %w", err)
	}
	s.mu.Lock()
	s.room = r
	s.player = player
	s.lastSeq = 0
	s.mu.Unlock()
	return s.Submit(ctx, game.Join(player))
}

func (s *Session) seat() (*room.Room, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.room == nil {
		return nil, "", errNotSeated
	}
	return s.room, s.player, nil
}

// Player returns the seated player's name.
func (s *Session) Player() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.player
}

// Submit applies an action for the seated player. Rule errors are reported
// in the response, not returned.
func (s *Session) Submit(ctx context.Context, a game.Action) (*ToolResponse, error) {
	r, _, err := s.seat()
	if err != nil {
		return nil, err
	}
	gs, err := r.Submit(ctx, a)
	var re *game.RuleError
	if err != nil && !errors.As(err, &re) {
		return nil, err
	}
	resp := s.respond(r, gs)
	if re != nil {
		resp.Error = &ErrorView{Code: string(re.Code), Message: re.Message}
	}
	return resp, nil
}

// State reports the table and any events since the last response.
func (s *Session) State(ctx context.Context) (*ToolResponse, error) {
	r, _, err := s.seat()
	if err != nil {
		return nil, err
	}
	gs, err := r.State(ctx)
	if err != nil {
		return nil, err
	}
	return s.respond(r, gs), nil
}

// WaitForTurn blocks until the seated player has something to do: their
// turn, a prompt, or a matching set to play as a one chance while the table
// is waiting to clear. It gives up after timeout and reports the table as it
// stands.
func (s *Session) WaitForTurn(ctx context.Context, timeout time.Duration) (*ToolResponse, error) {
	r, player, err := s.seat()
	if err != nil {
		return nil, err
	}
	updates, cancel := r.Subscribe()
	defer cancel()

	gs, err := r.State(ctx)
	if err != nil {
		return nil, err
	}
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	rules := r.Rules()
	for !actionable(gs, rules, player) {
		select {
		case u, ok := <-updates:
			if !ok {
				return nil, room.ErrClosed
			}
			gs = u.State
		case <-deadline.C:
			return s.respond(r, gs), nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.respond(r, gs), nil
}

func actionable(gs *game.GameState, rules game.RuleConfig, player string) bool {
	if pool, _ := game.PromptFor(gs, player); pool != game.PoolNone {
		return true
	}
	if len(gs.Prompts) > 0 {
		return false
	}
	if gs.PendingFlush != "" {
		return game.OneChanceSet(gs, rules, player) != nil
	}
	return gs.Current == player
}

func (s *Session) respond(r *room.Room, gs *game.GameState) *ToolResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	resp := &ToolResponse{Events: []cpnet.EventView{}}
	for _, e := range r.Events() {
		if e.Seq > s.lastSeq {
			resp.Events = append(resp.Events, cpnet.NewEventView(e))
			s.lastSeq = e.Seq
		}
	}
	if gs != nil {
		resp.State = cpnet.BuildStateView(gs, s.player)
	}
	return resp
}

// respondJSON marshals a ToolResponse to a JSON string.
func respondJSON(resp *ToolResponse) string {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal error: %v"}`, err)
	}
	return string(data)
}
