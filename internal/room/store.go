package room

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/peterkuimelis/careerpoker/internal/game"
)

// ErrNotFound is returned by Store.Load when no snapshot exists.
var ErrNotFound = errors.New("room not found")

// Store persists room snapshots. The host is the system of record; the
// engine only ever sees the snapshot it is handed.
type Store interface {
	Load(ctx context.Context, id string) (*game.GameState, error)
	Save(ctx context.Context, gs *game.GameState) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]string, error)
}

// --- MemoryStore ---

type MemoryStore struct {
	mu    sync.RWMutex
	rooms map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rooms: make(map[string][]byte)}
}

func (s *MemoryStore) Load(ctx context.Context, id string) (*game.GameState, error) {
	s.mu.RLock()
	data, ok := s.rooms[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return decodeSnapshot(data)
}

func (s *MemoryStore) Save(ctx context.Context, gs *game.GameState) error {
	data, err := json.Marshal(gs)
	if err != nil {
		return fmt.Errorf("encode room %s: %w", gs.RoomID, err)
	}
	s.mu.Lock()
	s.rooms[gs.RoomID] = data
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.rooms, id)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.rooms))
	for id := range s.rooms {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

// --- RedisStore ---

const (
	roomKeyPrefix = "rooms:"
	roomIndexKey  = "rooms"
)

// RedisStore keeps each snapshot as JSON under rooms:<id> and the set of
// known ids under rooms.
type RedisStore struct {
	rds *redis.Client
}

func NewRedisStore(rds *redis.Client) *RedisStore {
	return &RedisStore{rds: rds}
}

// NewRedisClient connects to the given redis:// URL and pings it.
func NewRedisClient(ctx context.Context, dsn string) (*redis.Client, error) {
	opt, err := redis.ParseURL(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rds := redis.NewClient(opt)
	if err := rds.Ping(ctx).Err(); err != nil {
		rds.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rds, nil
}

func roomKey(id string) string {
	return roomKeyPrefix + id
}

func (s *RedisStore) Load(ctx context.Context, id string) (*game.GameState, error) {
	data, err := s.rds.Get(ctx, roomKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load room %s: %w", id, err)
	}
	return decodeSnapshot(data)
}

func (s *RedisStore) Save(ctx context.Context, gs *game.GameState) error {
	data, err := json.Marshal(gs)
	if err != nil {
		return fmt.Errorf("encode room %s: %w", gs.RoomID, err)
	}
	_, err = s.rds.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, roomKey(gs.RoomID), data, 0)
		pipe.SAdd(ctx, roomIndexKey, gs.RoomID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save room %s: %w", gs.RoomID, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	_, err := s.rds.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, roomKey(id))
		pipe.SRem(ctx, roomIndexKey, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete room %s: %w", id, err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	ids, err := s.rds.SMembers(ctx, roomIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	slices.Sort(ids)
	return ids, nil
}

func decodeSnapshot(data []byte) (*game.GameState, error) {
	gs := game.NewGameState("")
	if err := json.Unmarshal(data, gs); err != nil {
		return nil, fmt.Errorf("decode room snapshot: %w", err)
	}
	return gs, nil
}

// OpenStore returns a RedisStore for redisURL, or a MemoryStore when the URL
// is empty. Call closeFn when done.
func OpenStore(ctx context.Context, redisURL string) (s Store, closeFn func() error, err error) {
	if redisURL == "" {
		return NewMemoryStore(), func() error { return nil }, nil
	}
	rds, err := NewRedisClient(ctx, redisURL)
	if err != nil {
		return nil, nil, err
	}
	return NewRedisStore(rds), rds.Close, nil
}
