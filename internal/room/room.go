package room

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/peterkuimelis/careerpoker/internal/game"
	"github.com/peterkuimelis/careerpoker/internal/log"
)

// ErrClosed is returned for actions submitted to a closed room.
var ErrClosed = errors.New("room closed")

// Update is published to subscribers after every accepted action.
type Update struct {
	State  *game.GameState
	Events []log.GameEvent
}

type Options struct {
	ID     string
	Rules  game.RuleConfig
	Store  Store
	Random game.Random
	Logger logrus.FieldLogger
	// State restores a saved snapshot instead of starting empty.
	State *game.GameState
}

// Room owns one GameState and applies actions to it one at a time on its
// own goroutine.
type Room struct {
	ID string

	engine *game.Engine
	events *roomEvents
	store  Store
	log    logrus.FieldLogger

	// loop-owned
	state  *game.GameState
	timers map[game.TaskHandle]*time.Timer

	actQue    chan func()
	quit      chan struct{}
	closeOnce sync.Once

	subMu   sync.Mutex
	subs    map[int]chan Update
	nextSub int
}

func New(opt Options) (*Room, error) {
	if opt.ID == "" {
		opt.ID = uuid.NewString()
	}
	if opt.Logger == nil {
		opt.Logger = logrus.StandardLogger()
	}
	if opt.Random == nil {
		rng, err := NewRandom()
		if err != nil {
			return nil, err
		}
		opt.Random = rng
	}
	entry := opt.Logger.WithField("room", opt.ID)

	r := &Room{
		ID:     opt.ID,
		store:  opt.Store,
		log:    entry,
		events: &roomEvents{MemoryLogger: log.NewBoundedMemoryLogger(eventHistory), log: entry},
		state:  opt.State,
		timers: make(map[game.TaskHandle]*time.Timer),
		actQue: make(chan func(), 16),
		quit:   make(chan struct{}),
		subs:   make(map[int]chan Update),
	}
	if r.state == nil {
		r.state = game.NewGameState(opt.ID)
	}
	r.engine = game.NewEngine(game.EngineConfig{Rules: opt.Rules, Logger: r.events}, &timerScheduler{room: r}, opt.Random)

	go r.run()

	// A snapshot saved with a flush in flight lost its timer; the flush is
	// overdue, so deliver it now.
	if task := r.state.PendingFlush; task != "" {
		go r.Do(context.Background(), func() {
			r.apply(game.FlushTimerFired(task, game.PoolDiscard))
		})
	}
	return r, nil
}

func (r *Room) run() {
	safecall := func(f func()) {
		defer func() {
			if err := recover(); err != nil {
				r.log.Errorf("panic: %v", err)
			}
		}()
		f()
	}
	for {
		select {
		case f := <-r.actQue:
			safecall(f)
		case <-r.quit:
			for _, t := range r.timers {
				t.Stop()
			}
			return
		}
	}
}

// Do queues f to run on the room goroutine.
func (r *Room) Do(ctx context.Context, f func()) error {
	select {
	case <-r.quit:
		return ErrClosed
	default:
	}
	select {
	case r.actQue <- f:
		return nil
	case <-r.quit:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit applies an action and returns the resulting snapshot. Rejected
// actions return the unchanged snapshot and a *game.RuleError.
func (r *Room) Submit(ctx context.Context, a game.Action) (*game.GameState, error) {
	type result struct {
		gs  *game.GameState
		err error
	}
	done := make(chan result, 1)
	err := r.Do(ctx, func() {
		gs, err := r.apply(a)
		done <- result{gs, err}
	})
	if err != nil {
		return nil, err
	}
	select {
	case res := <-done:
		return res.gs, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// State returns the current snapshot. Snapshots are never mutated after
// they are published, so callers may keep them.
func (r *Room) State(ctx context.Context) (*game.GameState, error) {
	done := make(chan *game.GameState, 1)
	if err := r.Do(ctx, func() { done <- r.state }); err != nil {
		return nil, err
	}
	select {
	case gs := <-done:
		return gs, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Rules returns the house rules the room plays with.
func (r *Room) Rules() game.RuleConfig {
	return r.engine.Rules
}

// Events returns the room's event log.
func (r *Room) Events() []log.GameEvent {
	return r.events.Events()
}

// apply runs on the room goroutine.
func (r *Room) apply(a game.Action) (*game.GameState, error) {
	seq := r.events.LastEvent().Seq
	next, err := r.engine.Apply(r.state, a)
	if err != nil {
		r.log.WithFields(logrus.Fields{"action": a.String(), "code": game.CodeOf(err)}).Debug(err.Error())
		return r.state, err
	}
	r.state = next
	if r.store != nil {
		if err := r.store.Save(context.Background(), next); err != nil {
			r.log.WithError(err).Warn("save snapshot")
		}
	}
	r.publish(Update{State: next, Events: r.events.Since(seq)})
	return next, nil
}

// Subscribe returns a channel of updates. Slow subscribers miss updates
// rather than block the room. Call cancel to unsubscribe.
func (r *Room) Subscribe() (<-chan Update, func()) {
	ch := make(chan Update, 8)
	r.subMu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = ch
	r.subMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			r.subMu.Lock()
			delete(r.subs, id)
			r.subMu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (r *Room) publish(u Update) {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	for id, ch := range r.subs {
		select {
		case ch <- u:
		default:
			r.log.WithField("subscriber", id).Warn("subscriber is behind, dropping update")
		}
	}
}

// Close stops the room goroutine and any pending timers.
func (r *Room) Close() {
	r.closeOnce.Do(func() {
		close(r.quit)
	})
}

// --- Scheduler ---

// timerScheduler implements game.Scheduler with time.AfterFunc. Schedule and
// Cancel are only called by the engine, on the room goroutine.
type timerScheduler struct {
	room *Room
}

func (s *timerScheduler) Schedule(actor string, delay time.Duration, payload game.Action) game.TaskHandle {
	r := s.room
	task := game.TaskHandle(uuid.NewString())
	payload.Task = task
	r.timers[task] = time.AfterFunc(delay, func() {
		r.Do(context.Background(), func() {
			delete(r.timers, task)
			if _, err := r.apply(payload); err != nil {
				r.log.WithError(err).Warn("flush timer rejected")
			}
		})
	})
	r.log.WithFields(logrus.Fields{"task": task, "actor": actor, "delay": delay}).Debug("flush scheduled")
	return task
}

func (s *timerScheduler) Cancel(task game.TaskHandle) {
	r := s.room
	t, ok := r.timers[task]
	if !ok {
		return
	}
	t.Stop()
	delete(r.timers, task)
}

// --- Event log ---

// eventHistory is how many recent events a room keeps for late readers.
const eventHistory = 512

// roomEvents keeps the event log in memory and mirrors it to logrus.
type roomEvents struct {
	*log.MemoryLogger
	log logrus.FieldLogger
}

func (l *roomEvents) Log(event log.GameEvent) {
	l.MemoryLogger.Log(event)
	l.log.WithFields(logrus.Fields{
		"epoch":  event.Epoch,
		"player": event.Player,
		"event":  event.Type.String(),
	}).Info(event.Details)
}
