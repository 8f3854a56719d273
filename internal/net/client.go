package net

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/peterkuimelis/careerpoker/internal/game"
)

// Client connects to a careerpoker server and provides a terminal REPL.
type Client struct {
	conn   *websocket.Conn
	player string
	out    io.Writer

	mu   sync.Mutex
	view *StateView // last state received
}

// DialURL builds the WebSocket URL for a seat at a room.
func DialURL(addr, roomID, player string) string {
	if !strings.Contains(addr, "://") {
		addr = "ws://" + addr
	}
	q := url.Values{"room": {roomID}, "player": {player}}
	return strings.TrimSuffix(addr, "/") + "/ws?" + q.Encode()
}

// Connect takes a seat at a room and runs the REPL on in and out.
func Connect(ctx context.Context, addr, roomID, player string, in io.Reader, out io.Writer) error {
	conn, _, err := websocket.Dial(ctx, DialURL(addr, roomID, player), nil)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.CloseNow()

	fmt.Fprintf(out, "Connected to %s as %s. Type 'help' for commands.\n", roomID, player)

	c := &Client{conn: conn, player: player, out: out}
	err = c.RunREPL(ctx, in)
	conn.Close(websocket.StatusNormalClosure, "bye")
	return err
}

// RunREPL prints server messages as they arrive and sends one action per
// input line. It returns when the input ends or the server hangs up.
func (c *Client) RunREPL(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	readErr := make(chan error, 1)
	go func() { readErr <- c.readLoop(ctx) }()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case err := <-readErr:
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return nil
			}
			return fmt.Errorf("read message: %w", err)
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			msg, err := c.parseCommand(line)
			if errors.Is(err, errQuit) {
				return nil
			}
			if err != nil {
				fmt.Fprintln(c.out, err)
				continue
			}
			if msg == nil {
				continue
			}
			if err := wsjson.Write(ctx, c.conn, msg); err != nil {
				return fmt.Errorf("send: %w", err)
			}
		}
	}
}

func (c *Client) readLoop(ctx context.Context) error {
	for {
		var msg ServerMessage
		if err := wsjson.Read(ctx, c.conn, &msg); err != nil {
			return err
		}
		switch msg.Type {
		case "events":
			for _, ev := range msg.Events {
				c.renderEvent(ev)
			}
		case "state":
			c.mu.Lock()
			c.view = msg.State
			c.mu.Unlock()
			c.renderState(msg.State)
		case "error":
			fmt.Fprintf(c.out, "! %s: %s\n", msg.Code, msg.Message)
		}
	}
}

var errQuit = errors.New("quit")

const helpText = `Commands:
  deal                 shuffle and deal to everyone seated
  serve <cards>        play cards, e.g. "serve 3s 3d" or "serve joker"
  pass                 pass your turn
  pick <cards>         take cards for a 4 or K prompt
  gift <cards>         hand cards to the previous player for a 7 prompt
  chance <cards>       try a one-chance play out of turn
  leave                give up your seat
  state                show the table again
  quit                 disconnect`

// parseCommand turns an input line into a message for the server. A nil
// message with a nil error means there is nothing to send.
func (c *Client) parseCommand(line string) (*ClientMessage, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	var a game.Action
	switch cmd {
	case "help", "?":
		fmt.Fprintln(c.out, helpText)
		return nil, nil
	case "quit", "exit":
		return nil, errQuit
	case "state":
		return &ClientMessage{Type: "state"}, nil
	case "deal":
		a = game.Deal()
	case "pass", "p":
		a = game.Pass(c.player)
	case "leave":
		a = game.Leave(c.player)
	case "serve", "s", "pick", "gift", "chance":
		cards, err := game.ParseCards(args)
		if err != nil {
			return nil, err
		}
		if len(cards) == 0 {
			return nil, fmt.Errorf("%s needs at least one card", cmd)
		}
		switch cmd {
		case "pick":
			pool := c.promptPool()
			if pool == game.PoolNone {
				return nil, errors.New("nothing to pick up")
			}
			a = game.SelectFromPile(c.player, pool, cards...)
		case "gift":
			a = game.SelectAndPass(c.player, cards...)
		case "chance":
			a = game.OneChance(c.player, cards...)
		default:
			a = game.Serve(c.player, cards...)
		}
	default:
		return nil, fmt.Errorf("unknown command %q, type 'help'", cmd)
	}
	return &ClientMessage{Type: "action", Action: &a}, nil
}

// promptPool is the pile the last known prompt draws from.
func (c *Client) promptPool() game.Pool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.view == nil || c.view.Prompt == nil {
		return game.PoolNone
	}
	pool, err := game.ParsePool(c.view.Prompt.Pool)
	if err != nil || pool == game.PoolHand {
		return game.PoolNone
	}
	return pool
}

func (c *Client) renderEvent(ev EventView) {
	player := ev.Player
	if player == "" {
		player = "-"
	}
	fmt.Fprintf(c.out, "E%-2d %-12s| %s\n", ev.Epoch, player, ev.Details)
}

func (c *Client) renderState(sv *StateView) {
	if sv == nil {
		return
	}
	w := c.out

	fmt.Fprintln(w)
	fmt.Fprintln(w, "╔══════════════════════════════════════════════════════╗")
	for _, p := range sv.Players {
		marker := "  "
		if p.Name == sv.Current {
			marker = "> "
		}
		extra := ""
		if p.Prompted {
			extra = " (choosing)"
		}
		fmt.Fprintf(w, "║ %s%-12s %2d cards%s\n", marker, p.Name, p.HandCount, extra)
	}
	fmt.Fprintln(w, "║──────────────────────────────────────────────────────")
	inPlay := "(empty)"
	if len(sv.InPlay) > 0 {
		inPlay = strings.Join(sv.InPlay, " ")
	}
	fmt.Fprintf(w, "║  In play: %s   Stack: %d  Discard: %d\n", inPlay, sv.StackDepth, sv.DiscardCount)
	if len(sv.Excluded) > 0 {
		fmt.Fprintf(w, "║  Excluded: %s\n", strings.Join(sv.Excluded, " "))
	}
	if rules := formatEffect(sv.Effect); rules != "" {
		fmt.Fprintf(w, "║  Rules: %s\n", rules)
	}
	fmt.Fprintln(w, "╚══════════════════════════════════════════════════════╝")

	status := fmt.Sprintf("Epoch %d", sv.Epoch)
	switch {
	case sv.Prompt != nil:
		status += fmt.Sprintf(" | Choose %d card(s) from %s", sv.Prompt.Count, sv.Prompt.Pool)
	case sv.FlushPending:
		status += " | Table is clearing"
	case sv.IsYourTurn:
		status += " | Your turn"
	case sv.Current != "":
		status += fmt.Sprintf(" | %s's turn", sv.Current)
	}
	fmt.Fprintln(w, status)

	if len(sv.Hand) > 0 {
		fmt.Fprintf(w, "\nHand: %s\n", strings.Join(sv.Hand, " "))
	}
}

func formatEffect(e EffectView) string {
	var parts []string
	if e.PileSize > 0 {
		parts = append(parts, fmt.Sprintf("%d-card plays", e.PileSize))
	}
	if e.Step {
		parts = append(parts, "step")
	}
	if len(e.Suits) > 0 {
		parts = append(parts, "suits "+strings.Join(e.Suits, ""))
	}
	if len(e.Suppressed) > 0 {
		parts = append(parts, fmt.Sprintf("silenced %v", e.Suppressed))
	}
	if e.Revolution {
		parts = append(parts, "revolution")
	}
	if e.Reversed {
		parts = append(parts, "reversed")
	}
	return strings.Join(parts, ", ")
}
