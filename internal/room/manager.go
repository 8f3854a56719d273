package room

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/peterkuimelis/careerpoker/internal/game"
)

type ManagerOptions struct {
	Rules  game.RuleConfig
	Store  Store // nil uses a MemoryStore
	Logger logrus.FieldLogger
	// NewRandom overrides the per-room random source, mainly for tests.
	NewRandom func() game.Random
}

// Manager opens rooms on demand, restoring saved snapshots from the store.
type Manager struct {
	opt ManagerOptions

	mu    sync.Mutex
	rooms map[string]*Room
}

func NewManager(opt ManagerOptions) *Manager {
	if opt.Store == nil {
		opt.Store = NewMemoryStore()
	}
	if opt.Logger == nil {
		opt.Logger = logrus.StandardLogger()
	}
	if opt.Rules == (game.RuleConfig{}) {
		opt.Rules = game.DefaultRules()
	}
	return &Manager{opt: opt, rooms: make(map[string]*Room)}
}

// Rules returns the rules new rooms are opened with.
func (m *Manager) Rules() game.RuleConfig {
	return m.opt.Rules
}

// Open returns the live room with the given id, loading or creating it.
func (m *Manager) Open(ctx context.Context, id string) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r, ok := m.rooms[id]; ok {
		return r, nil
	}

	saved, err := m.opt.Store.Load(ctx, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	opt := Options{
		ID:     id,
		Rules:  m.opt.Rules,
		Store:  m.opt.Store,
		Logger: m.opt.Logger,
		State:  saved,
	}
	if m.opt.NewRandom != nil {
		opt.Random = m.opt.NewRandom()
	}
	r, err := New(opt)
	if err != nil {
		return nil, err
	}
	if saved != nil {
		m.opt.Logger.WithField("room", r.ID).Info("room restored from snapshot")
	} else {
		m.opt.Logger.WithField("room", r.ID).Info("room created")
	}
	m.rooms[r.ID] = r
	return r, nil
}

// Lookup returns a live room without opening it.
func (m *Manager) Lookup(id string) (*Room, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[id]
	return r, ok
}

// List returns the ids of live and stored rooms.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	ids, err := m.opt.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	for id := range m.rooms {
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	m.mu.Unlock()
	slices.Sort(ids)
	return ids, nil
}

// Remove closes a room and deletes its snapshot.
func (m *Manager) Remove(ctx context.Context, id string) error {
	m.mu.Lock()
	r, ok := m.rooms[id]
	delete(m.rooms, id)
	m.mu.Unlock()
	if ok {
		r.Close()
	}
	return m.opt.Store.Delete(ctx, id)
}

// Close closes every live room.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, r := range m.rooms {
		r.Close()
		delete(m.rooms, id)
	}
}
