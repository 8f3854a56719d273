package net

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/sirupsen/logrus"

	"github.com/peterkuimelis/careerpoker/internal/game"
	"github.com/peterkuimelis/careerpoker/internal/room"
)

// Session binds one WebSocket connection to a seat in a room. Actions read
// from the socket are submitted as the seated player; every room update is
// pushed back as an "events" message followed by a "state" message.
type Session struct {
	conn   *websocket.Conn
	room   *room.Room
	player string
	log    logrus.FieldLogger

	mu sync.Mutex // serializes writes
}

func NewSession(conn *websocket.Conn, r *room.Room, player string, logger logrus.FieldLogger) *Session {
	return &Session{
		conn:   conn,
		room:   r,
		player: player,
		log:    logger.WithFields(logrus.Fields{"room": r.ID, "player": player}),
	}
}

func (s *Session) send(ctx context.Context, msg ServerMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return wsjson.Write(ctx, s.conn, msg)
}

func (s *Session) sendError(ctx context.Context, code, message string) error {
	return s.send(ctx, ServerMessage{Type: "error", Code: code, Message: message})
}

func (s *Session) sendState(ctx context.Context, gs *game.GameState) error {
	return s.send(ctx, ServerMessage{Type: "state", State: BuildStateView(gs, s.player)})
}

// Run seats the player and serves the connection until either side hangs
// up. The seat is kept on disconnect so the player can reconnect.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates, unsubscribe := s.room.Subscribe()
	defer unsubscribe()

	if _, err := s.room.Submit(ctx, game.Join(s.player)); err != nil {
		return fmt.Errorf("join: %w", err)
	}
	s.log.Info("player connected")

	errc := make(chan error, 1)
	go func() { errc <- s.readLoop(ctx) }()

	for {
		select {
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			if len(u.Events) > 0 {
				if err := s.send(ctx, ServerMessage{Type: "events", Events: EventViews(u.Events)}); err != nil {
					return err
				}
			}
			if err := s.sendState(ctx, u.State); err != nil {
				return err
			}
		case err := <-errc:
			s.log.WithError(err).Info("player disconnected")
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return nil
			}
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *Session) readLoop(ctx context.Context) error {
	for {
		_, data, err := s.conn.Read(ctx)
		if err != nil {
			return err
		}
		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			if err := s.sendError(ctx, CodeBadRequest, err.Error()); err != nil {
				return err
			}
			continue
		}
		if err := s.handle(ctx, msg); err != nil {
			return err
		}
	}
}

// handle answers one client message. Only transport failures are returned;
// rejected actions are reported to the client.
func (s *Session) handle(ctx context.Context, msg ClientMessage) error {
	switch msg.Type {
	case "state":
		gs, err := s.room.State(ctx)
		if err != nil {
			return err
		}
		return s.sendState(ctx, gs)

	case "action":
		if msg.Action == nil {
			return s.sendError(ctx, CodeBadRequest, "missing action")
		}
		a := *msg.Action
		if !clientAction(a.Kind) {
			return s.sendError(ctx, CodeBadRequest, fmt.Sprintf("%s is not a player action", a.Kind))
		}
		a.Player = s.player
		a.Task = ""
		if _, err := s.room.Submit(ctx, a); err != nil {
			var re *game.RuleError
			if errors.As(err, &re) {
				return s.sendError(ctx, string(re.Code), re.Message)
			}
			return err
		}
		return nil

	default:
		return s.sendError(ctx, CodeBadRequest, fmt.Sprintf("unknown message type %q", msg.Type))
	}
}

// clientAction reports whether players may submit kind. Flush timer actions
// belong to the room's scheduler.
func clientAction(kind game.ActionKind) bool {
	switch kind {
	case game.ActionFlushTimerFired, game.ActionFlushTimerCanceled:
		return false
	}
	return true
}
