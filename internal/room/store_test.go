package room

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/peterkuimelis/careerpoker/internal/game"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Load(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	gs := tableState(t, "r1", []string{"A", "B"}, "3s joker", "Qh Qd")
	gs.PlayStack = []game.Pile{{game.NewCard(game.SuitClub, 12)}}
	gs.LastServedBy = "B"
	gs.Prompts["A"] = game.PoolExcluded
	gs.Effect.IsStep = true
	gs.Effect.SuitLimits[game.SuitClub] = true
	gs.Effect.EffectLimits[3] = true
	gs.Epoch = 4

	if err := s.Save(ctx, gs); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, game.NewGameState("r2")); err != nil {
		t.Fatal(err)
	}

	got, err := s.Load(ctx, "r1")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got.Hands, gs.Hands) || !reflect.DeepEqual(got.PlayStack, gs.PlayStack) {
		t.Errorf("cards lost in round trip: %v %v", got.Hands, got.PlayStack)
	}
	if !reflect.DeepEqual(got.Effect, gs.Effect) || !reflect.DeepEqual(got.Prompts, gs.Prompts) {
		t.Errorf("rules lost in round trip: %+v %v", got.Effect, got.Prompts)
	}
	if got.Current != "A" || got.LastServedBy != "B" || got.Epoch != 4 {
		t.Errorf("turn lost in round trip: %+v", got)
	}

	ids, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(ids, []string{"r1", "r2"}) {
		t.Errorf("List = %v", ids)
	}

	if err := s.Delete(ctx, "r1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load(ctx, "r1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected r1 deleted, got %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rds, err := NewRedisClient(context.Background(), "redis://"+mr.Addr())
	if err != nil {
		t.Fatal(err)
	}
	defer rds.Close()

	exerciseStore(t, NewRedisStore(rds))

	if !mr.Exists("rooms:r2") {
		t.Error("expected snapshot under rooms:r2")
	}
}

func TestManagerRestoresFromStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	if err := store.Save(ctx, tableState(t, "saved", []string{"A", "B"}, "3s", "4s")); err != nil {
		t.Fatal(err)
	}

	logger, _ := test.NewNullLogger()
	m := NewManager(ManagerOptions{Store: store, Logger: logger, NewRandom: func() game.Random { return zeroRandom{} }})
	defer m.Close()

	r, err := m.Open(ctx, "saved")
	if err != nil {
		t.Fatal(err)
	}
	again, _ := m.Open(ctx, "saved")
	if r != again {
		t.Error("Open must return the live room")
	}
	gs, err := r.State(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(gs.Players, []string{"A", "B"}) {
		t.Errorf("restored players %v", gs.Players)
	}

	if _, err := m.Open(ctx, "fresh"); err != nil {
		t.Fatal(err)
	}
	ids, err := m.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(ids, []string{"fresh", "saved"}) {
		t.Errorf("List = %v", ids)
	}

	if err := m.Remove(ctx, "saved"); err != nil {
		t.Fatal(err)
	}
	if _, ok := m.Lookup("saved"); ok {
		t.Error("removed room is still live")
	}
}
