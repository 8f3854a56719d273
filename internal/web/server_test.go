package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/peterkuimelis/careerpoker/internal/game"
	cpnet "github.com/peterkuimelis/careerpoker/internal/net"
	"github.com/peterkuimelis/careerpoker/internal/room"
)

type zeroRandom struct{}

func (zeroRandom) Uint32() uint32 { return 0 }

func newTestServer(t *testing.T) (*httptest.Server, *room.Manager) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	rooms := room.NewManager(room.ManagerOptions{
		Logger:    logger,
		NewRandom: func() game.Random { return zeroRandom{} },
	})
	ts := httptest.NewServer(NewServer(rooms, logger))
	t.Cleanup(func() {
		ts.Close()
		rooms.Close()
	})
	return ts, rooms
}

func dial(t *testing.T, ts *httptest.Server, roomID, player string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, cpnet.DialURL(ts.URL, roomID, player), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.CloseNow() })
	return conn
}

// readUntil reads server messages until cond accepts one.
func readUntil(t *testing.T, conn *websocket.Conn, cond func(cpnet.ServerMessage) bool) cpnet.ServerMessage {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for {
		var msg cpnet.ServerMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		if cond(msg) {
			return msg
		}
	}
}

func isState(cond func(*cpnet.StateView) bool) func(cpnet.ServerMessage) bool {
	return func(msg cpnet.ServerMessage) bool {
		return msg.Type == "state" && cond(msg.State)
	}
}

func send(t *testing.T, conn *websocket.Conn, a game.Action) {
	t.Helper()
	if err := wsjson.Write(context.Background(), conn, cpnet.ClientMessage{Type: "action", Action: &a}); err != nil {
		t.Fatal(err)
	}
}

func TestWebSocketPlay(t *testing.T) {
	ts, _ := newTestServer(t)

	alice := dial(t, ts, "t1", "alice")
	readUntil(t, alice, isState(func(sv *cpnet.StateView) bool { return len(sv.Players) == 1 }))

	bob := dial(t, ts, "t1", "bob")
	readUntil(t, alice, isState(func(sv *cpnet.StateView) bool { return len(sv.Players) == 2 }))
	readUntil(t, bob, isState(func(sv *cpnet.StateView) bool { return len(sv.Players) == 2 }))

	send(t, alice, game.Deal())
	sv := readUntil(t, alice, isState(func(sv *cpnet.StateView) bool { return len(sv.Hand) > 0 })).State
	if len(sv.Hand) != 27 || !sv.IsYourTurn {
		t.Fatalf("alice after deal: %d cards, your turn %v", len(sv.Hand), sv.IsYourTurn)
	}
	bobView := readUntil(t, bob, isState(func(sv *cpnet.StateView) bool { return len(sv.Hand) > 0 })).State
	if bobView.IsYourTurn || bobView.Players[0].HandCount != 27 {
		t.Errorf("bob after deal: %+v", bobView)
	}

	// Out of turn: bob hears about it, alice does not.
	send(t, bob, game.Pass("bob"))
	msg := readUntil(t, bob, func(msg cpnet.ServerMessage) bool { return msg.Type == "error" })
	if msg.Code != string(game.CodeNotYourTurn) {
		t.Errorf("expected NOT_YOUR_TURN, got %+v", msg)
	}

	// The session plays as its own seat whatever the message says.
	card, err := game.ParseCard(sv.Hand[0])
	if err != nil {
		t.Fatal(err)
	}
	send(t, alice, game.Serve("bob", card))
	ev := readUntil(t, bob, func(msg cpnet.ServerMessage) bool { return msg.Type == "events" })
	if ev.Events[0].Player != "alice" || ev.Events[0].Type != "Serve" {
		t.Errorf("expected alice's serve, got %+v", ev.Events)
	}
	readUntil(t, bob, isState(func(sv *cpnet.StateView) bool { return sv.IsYourTurn }))
}

func TestWebSocketRejectsBadMessages(t *testing.T) {
	ts, _ := newTestServer(t)
	conn := dial(t, ts, "t2", "alice")
	ctx := context.Background()

	cases := []string{
		`not json`,
		`{"type":"dance"}`,
		`{"type":"action"}`,
		`{"type":"action","action":{"kind":"flush_timer_fired","task":"x"}}`,
	}
	for _, raw := range cases {
		if err := conn.Write(ctx, websocket.MessageText, []byte(raw)); err != nil {
			t.Fatal(err)
		}
		msg := readUntil(t, conn, func(msg cpnet.ServerMessage) bool { return msg.Type == "error" })
		if msg.Code != cpnet.CodeBadRequest {
			t.Errorf("%s: code %q", raw, msg.Code)
		}
	}

	// still connected
	if err := wsjson.Write(ctx, conn, cpnet.ClientMessage{Type: "state"}); err != nil {
		t.Fatal(err)
	}
	readUntil(t, conn, isState(func(sv *cpnet.StateView) bool { return sv.You == "alice" }))
}

func TestWebSocketRequiresSeat(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/ws?room=t1")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestRoomsAPI(t *testing.T) {
	ts, rooms := newTestServer(t)
	ctx := context.Background()
	r, err := rooms.Open(ctx, "t1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Submit(ctx, game.Join("alice")); err != nil {
		t.Fatal(err)
	}

	var list []RoomInfo
	getJSON(t, ts.URL+"/api/rooms", &list)
	if len(list) != 1 || list[0].ID != "t1" || !list[0].Live || list[0].Players[0] != "alice" {
		t.Errorf("rooms = %+v", list)
	}

	var sv cpnet.StateView
	getJSON(t, ts.URL+"/api/rooms/t1", &sv)
	if sv.Room != "t1" || len(sv.Players) != 1 || len(sv.Hand) != 0 {
		t.Errorf("room view = %+v", sv)
	}

	var rules game.RuleConfig
	getJSON(t, ts.URL+"/api/rules", &rules)
	if rules != game.DefaultRules() {
		t.Errorf("rules = %+v", rules)
	}

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/rooms/t1", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d", resp.StatusCode)
	}
	resp, err = http.Get(ts.URL + "/api/rooms/t1")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("deleted room status = %d", resp.StatusCode)
	}
}

func getJSON(t *testing.T, url string, v any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: %s", url, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatal(err)
	}
}

// syncBuffer lets the test read what the client's reader goroutine writes.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestTerminalClient(t *testing.T) {
	ts, _ := newTestServer(t)
	in, typed := io.Pipe()
	out := &syncBuffer{}

	done := make(chan error, 1)
	go func() {
		done <- cpnet.Connect(context.Background(), ts.URL, "t3", "carol", in, out)
	}()

	waitOutput := func(want string) {
		t.Helper()
		deadline := time.Now().Add(2 * time.Second)
		for !strings.Contains(out.String(), want) {
			if time.Now().After(deadline) {
				t.Fatalf("output never showed %q:\n%s", want, out.String())
			}
			time.Sleep(5 * time.Millisecond)
		}
	}

	waitOutput("carol takes seat")
	io.WriteString(typed, "deal\n")
	waitOutput("Your turn")
	io.WriteString(typed, "pick 3s\n")
	waitOutput("nothing to pick up")
	io.WriteString(typed, "quit\n")

	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("client did not quit")
	}
}
