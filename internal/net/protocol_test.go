package net

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/peterkuimelis/careerpoker/internal/game"
	"github.com/peterkuimelis/careerpoker/internal/log"
)

func mustCards(t *testing.T, s string) game.Pile {
	t.Helper()
	cards, err := game.ParseCards(strings.Fields(s))
	if err != nil {
		t.Fatal(err)
	}
	return cards
}

func sampleState(t *testing.T) *game.GameState {
	gs := game.NewGameState("t1")
	gs.Players = []string{"alice", "bob", "carol"}
	gs.Hands["alice"] = mustCards(t, "3s 5d Kh")
	gs.Hands["bob"] = mustCards(t, "4c 4d")
	gs.Hands["carol"] = mustCards(t, "joker")
	gs.PlayStack = []game.Pile{mustCards(t, "4s"), mustCards(t, "4h")}
	gs.Discard = mustCards(t, "9s 9d")
	gs.Excluded = mustCards(t, "2c")
	gs.Current = "alice"
	gs.LastServedBy = "bob"
	gs.Prompts["bob"] = game.PoolDiscard
	gs.Effect.IsStep = true
	gs.Effect.SuitLimits[game.SuitHeart] = true
	gs.Effect.SuitLimits[game.SuitClub] = true
	gs.Effect.EffectLimits[3] = true
	gs.Effect.EffectLimits[1] = true
	gs.Effect.Revoluted = true
	gs.Epoch = 2
	return gs
}

func TestBuildStateViewHidesOtherHands(t *testing.T) {
	gs := sampleState(t)

	sv := BuildStateView(gs, "alice")
	if !reflect.DeepEqual(sv.Hand, []string{"3s", "5d", "Kh"}) {
		t.Errorf("hand = %v", sv.Hand)
	}
	want := []PlayerView{
		{Name: "alice", HandCount: 3},
		{Name: "bob", HandCount: 2, Prompted: true},
		{Name: "carol", HandCount: 1},
	}
	if !reflect.DeepEqual(sv.Players, want) {
		t.Errorf("players = %+v", sv.Players)
	}
	if sv.Prompt != nil {
		t.Errorf("alice has no prompt, got %+v", sv.Prompt)
	}
	if sv.IsYourTurn {
		t.Error("an outstanding prompt blocks alice's turn")
	}
	if !reflect.DeepEqual(sv.InPlay, []string{"4h"}) || sv.StackDepth != 2 {
		t.Errorf("in play %v depth %d", sv.InPlay, sv.StackDepth)
	}
	if sv.DiscardCount != 2 || !reflect.DeepEqual(sv.Excluded, []string{"2c"}) {
		t.Errorf("piles: discard %d excluded %v", sv.DiscardCount, sv.Excluded)
	}

	bob := BuildStateView(gs, "bob")
	if bob.Prompt == nil || bob.Prompt.Pool != "discard" || bob.Prompt.Count != 1 {
		t.Errorf("bob prompt = %+v", bob.Prompt)
	}
	if !reflect.DeepEqual(bob.Hand, []string{"4c", "4d"}) {
		t.Errorf("bob hand = %v", bob.Hand)
	}

	spectator := BuildStateView(gs, "")
	if len(spectator.Hand) != 0 {
		t.Errorf("spectator sees cards: %v", spectator.Hand)
	}
}

func TestBuildEffectView(t *testing.T) {
	ev := BuildStateView(sampleState(t), "alice").Effect
	want := EffectView{
		Suits:      []string{"c", "h"},
		Suppressed: []int{1, 3},
		Step:       true,
		Revolution: true,
		Reversed:   true,
	}
	if !reflect.DeepEqual(ev, want) {
		t.Errorf("effect = %+v, want %+v", ev, want)
	}
}

func TestEventViews(t *testing.T) {
	logger := log.NewMemoryLogger()
	logger.Log(log.NewServeEvent(1, "bob", "[4h]"))
	views := EventViews(logger.Events())
	if len(views) != 1 {
		t.Fatalf("got %d views", len(views))
	}
	v := views[0]
	if v.Seq != 1 || v.Epoch != 1 || v.Player != "bob" || v.Type != "Serve" {
		t.Errorf("view = %+v", v)
	}
}

func TestParseCommand(t *testing.T) {
	c := &Client{player: "alice", out: &bytes.Buffer{}}

	tests := []struct {
		line string
		want *game.Action
	}{
		{"deal", ptr(game.Deal())},
		{"pass", ptr(game.Pass("alice"))},
		{"P", ptr(game.Pass("alice"))},
		{"serve 3s 3d", ptr(game.Serve("alice", game.NewCard(game.SuitSpade, 3), game.NewCard(game.SuitDiamond, 3)))},
		{"s joker", ptr(game.Serve("alice", game.Joker))},
		{"gift 7c", ptr(game.SelectAndPass("alice", game.NewCard(game.SuitClub, 7)))},
		{"chance Th", ptr(game.OneChance("alice", game.NewCard(game.SuitHeart, 10)))},
		{"leave", ptr(game.Leave("alice"))},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			msg, err := c.parseCommand(tt.line)
			if err != nil {
				t.Fatal(err)
			}
			if msg == nil || msg.Type != "action" || !reflect.DeepEqual(msg.Action, tt.want) {
				t.Errorf("parseCommand(%q) = %+v", tt.line, msg)
			}
		})
	}

	for _, line := range []string{"serve", "serve 1s", "pick 4s", "dance"} {
		if _, err := c.parseCommand(line); err == nil {
			t.Errorf("parseCommand(%q): expected error", line)
		}
	}

	if msg, err := c.parseCommand("   "); msg != nil || err != nil {
		t.Errorf("blank line = %+v, %v", msg, err)
	}
	if msg, _ := c.parseCommand("state"); msg == nil || msg.Type != "state" {
		t.Errorf("state = %+v", msg)
	}
}

func TestParsePickUsesPrompt(t *testing.T) {
	c := &Client{player: "bob", out: &bytes.Buffer{}}
	c.view = BuildStateView(sampleState(t), "bob")

	msg, err := c.parseCommand("pick 9s")
	if err != nil {
		t.Fatal(err)
	}
	want := game.SelectFromPile("bob", game.PoolDiscard, game.NewCard(game.SuitSpade, 9))
	if !reflect.DeepEqual(msg.Action, &want) {
		t.Errorf("pick = %+v", msg.Action)
	}
}

func TestDialURL(t *testing.T) {
	tests := []struct{ addr, want string }{
		{"localhost:8080", "ws://localhost:8080/ws?player=alice&room=t1"},
		{"wss://poker.example/", "wss://poker.example/ws?player=alice&room=t1"},
	}
	for _, tt := range tests {
		if got := DialURL(tt.addr, "t1", "alice"); got != tt.want {
			t.Errorf("DialURL(%q) = %q, want %q", tt.addr, got, tt.want)
		}
	}
}

func TestRenderState(t *testing.T) {
	var out bytes.Buffer
	c := &Client{player: "bob", out: &out}
	c.renderState(BuildStateView(sampleState(t), "bob"))

	for _, want := range []string{"> alice", "bob", "(choosing)", "In play: 4h", "Excluded: 2c", "Choose 1 card(s) from discard", "Hand: 4c 4d"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("render missing %q:\n%s", want, out.String())
		}
	}
}

func ptr[T any](v T) *T { return &v }
