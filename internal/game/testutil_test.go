package game

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/peterkuimelis/careerpoker/internal/log"
)

// fakeScheduler records scheduled flushes so tests can fire them by hand.
type fakeScheduler struct {
	next      int
	pending   map[TaskHandle]Action
	scheduled []scheduledTask
	canceled  []TaskHandle
}

type scheduledTask struct {
	Actor   string
	Delay   time.Duration
	Task    TaskHandle
	Payload Action
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{pending: make(map[TaskHandle]Action)}
}

func (s *fakeScheduler) Schedule(actor string, delay time.Duration, payload Action) TaskHandle {
	s.next++
	task := TaskHandle(fmt.Sprintf("task-%d", s.next))
	payload.Task = task
	s.pending[task] = payload
	s.scheduled = append(s.scheduled, scheduledTask{Actor: actor, Delay: delay, Task: task, Payload: payload})
	return task
}

func (s *fakeScheduler) Cancel(task TaskHandle) {
	if _, ok := s.pending[task]; !ok {
		return
	}
	delete(s.pending, task)
	s.canceled = append(s.canceled, task)
}

// fire removes the task and returns the action the host would deliver.
func (s *fakeScheduler) fire(t *testing.T, task TaskHandle) Action {
	t.Helper()
	payload, ok := s.pending[task]
	if !ok {
		t.Fatalf("task %s is not pending", task)
	}
	delete(s.pending, task)
	return payload
}

// seqRandom replays a fixed sequence of values, cycling when exhausted.
type seqRandom struct {
	values []uint32
	pos    int
}

func (r *seqRandom) Uint32() uint32 {
	if len(r.values) == 0 {
		return 0
	}
	v := r.values[r.pos%len(r.values)]
	r.pos++
	return v
}

type testEngine struct {
	*Engine
	sched  *fakeScheduler
	rng    *seqRandom
	logger *log.MemoryLogger
}

func newTestEngine(t *testing.T, rules RuleConfig) *testEngine {
	t.Helper()
	logger := log.NewMemoryLogger()
	sched := newFakeScheduler()
	rng := &seqRandom{}
	e := NewEngine(EngineConfig{Rules: rules, Logger: logger}, sched, rng)
	t.Cleanup(func() {
		t.Logf("Event log:\n%s", log.FormatAll(logger.Events()))
	})
	return &testEngine{Engine: e, sched: sched, rng: rng, logger: logger}
}

// cards parses a space separated list such as "3s 3d joker".
func cards(t *testing.T, s string) []Card {
	t.Helper()
	out, err := ParseCards(strings.Fields(s))
	if err != nil {
		t.Fatalf("bad test cards %q: %v", s, err)
	}
	return out
}

// newTable seats players in order with the given hands. The first seat is
// to act.
func newTable(t *testing.T, seats []string, hands ...string) *GameState {
	t.Helper()
	if len(seats) != len(hands) {
		t.Fatalf("newTable: %d seats but %d hands", len(seats), len(hands))
	}
	gs := NewGameState("test")
	for i, id := range seats {
		gs.Players = append(gs.Players, id)
		h := Pile(cards(t, hands[i]))
		h.SortByStrength()
		gs.Hands[id] = h
	}
	gs.Current = seats[0]
	return gs
}

func (te *testEngine) mustApply(t *testing.T, gs *GameState, a Action) *GameState {
	t.Helper()
	next, err := te.Apply(gs, a)
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", a, err)
	}
	return next
}

func (te *testEngine) expectReject(t *testing.T, gs *GameState, a Action, code Code) {
	t.Helper()
	next, err := te.Apply(gs, a)
	if err == nil {
		t.Fatalf("%s: expected %s, got success", a, code)
	}
	if got := CodeOf(err); got != code {
		t.Errorf("%s: expected %s, got %v", a, code, err)
	}
	if next != gs {
		t.Errorf("%s: rejected action must return the input state", a)
	}
}

func handOf(gs *GameState, player string) string {
	return gs.Hands[player].String()
}
