package favorites_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shopstate/internal/domain"
	"github.com/vladislavdragonenkov/shopstate/internal/favorites"
	"github.com/vladislavdragonenkov/shopstate/internal/storage/memory"
)

var (
	tarte    = domain.ItemSnapshot{ID: "tarte", Name: "Tarte aux pommes", Price: 12.0, Image: "tarte.jpg"}
	baguette = domain.ItemSnapshot{ID: "baguette", Name: "Baguette", Price: 2.4, Image: "baguette.jpg"}
)

// fakeClock выдаёт детерминированные, монотонно растущие метки времени.
type fakeClock struct {
	current time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{current: time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.current
}

func (c *fakeClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}

func newStore(t *testing.T, kv domain.KeyValueStore, clock *fakeClock) *favorites.Store {
	t.Helper()
	return favorites.NewStoreWithClock(context.Background(), kv,
		log.WithField("test", t.Name()), nil, clock.Now)
}

type failingKV struct {
	domain.KeyValueStore
	setErr error
}

func (f *failingKV) Set(_ context.Context, _ string, _ []byte) error {
	return f.setErr
}

func TestStore_AddIsIdempotent(t *testing.T) {
	clock := newFakeClock()
	store := newStore(t, memory.NewKeyValueStore(), clock)
	ctx := context.Background()

	store.Add(ctx, tarte)
	first := store.Favorites()[0].DateAdded

	clock.Advance(time.Hour)
	store.Add(ctx, tarte)

	favs := store.Favorites()
	if len(favs) != 1 {
		t.Fatalf("expected 1 favorite, got %d", len(favs))
	}
	// Повторное добавление не освежает DateAdded.
	if !favs[0].DateAdded.Equal(first) {
		t.Fatalf("expected DateAdded %v, got %v", first, favs[0].DateAdded)
	}
}

func TestStore_AddIgnoresEmptyID(t *testing.T) {
	store := newStore(t, memory.NewKeyValueStore(), newFakeClock())

	store.Add(context.Background(), domain.ItemSnapshot{Name: "nameless"})
	if store.Count() != 0 {
		t.Fatal("expected no favorites for snapshot without id")
	}
}

func TestStore_FavoritesOrderedByDateDesc(t *testing.T) {
	clock := newFakeClock()
	store := newStore(t, memory.NewKeyValueStore(), clock)
	ctx := context.Background()

	store.Add(ctx, tarte)
	clock.Advance(time.Minute)
	store.Add(ctx, baguette)

	favs := store.Favorites()
	if len(favs) != 2 {
		t.Fatalf("expected 2 favorites, got %d", len(favs))
	}
	if favs[0].ID != baguette.ID || favs[1].ID != tarte.ID {
		t.Fatalf("expected [baguette, tarte], got [%s, %s]", favs[0].ID, favs[1].ID)
	}
	if favs[0].DateAdded.Before(favs[1].DateAdded) {
		t.Fatal("expected non-increasing DateAdded order")
	}
}

func TestStore_FavoritesOrderWithEqualTimestamps(t *testing.T) {
	clock := newFakeClock()
	store := newStore(t, memory.NewKeyValueStore(), clock)
	ctx := context.Background()

	// Часы не двигаются: обе записи получают одинаковую метку.
	store.Add(ctx, tarte)
	store.Add(ctx, baguette)

	favs := store.Favorites()
	if favs[0].ID != baguette.ID {
		t.Fatalf("expected later insertion first on equal timestamps, got %s", favs[0].ID)
	}
}

func TestStore_FavoritesProjectionDoesNotMutateStoredOrder(t *testing.T) {
	clock := newFakeClock()
	kv := memory.NewKeyValueStore()
	store := newStore(t, kv, clock)
	ctx := context.Background()

	store.Add(ctx, tarte)
	clock.Advance(time.Minute)
	store.Add(ctx, baguette)

	_ = store.Favorites()
	_ = store.Favorites()

	// Восстановленный стор видит исходный порядок вставки, а не порядок проекции.
	restored := newStore(t, kv, clock)
	favs := restored.Favorites()
	if favs[0].ID != baguette.ID || favs[1].ID != tarte.ID {
		t.Fatalf("expected projection [baguette, tarte] after restore, got [%s, %s]", favs[0].ID, favs[1].ID)
	}
}

func TestStore_IsFavorite(t *testing.T) {
	store := newStore(t, memory.NewKeyValueStore(), newFakeClock())
	ctx := context.Background()

	if store.IsFavorite(tarte.ID) {
		t.Fatal("expected tarte to not be favorite yet")
	}
	store.Add(ctx, tarte)
	if !store.IsFavorite(tarte.ID) {
		t.Fatal("expected tarte to be favorite")
	}
	store.Remove(ctx, tarte.ID)
	if store.IsFavorite(tarte.ID) {
		t.Fatal("expected tarte removed from favorites")
	}
}

func TestStore_RemoveAbsentIsNoop(t *testing.T) {
	store := newStore(t, memory.NewKeyValueStore(), newFakeClock())
	ctx := context.Background()

	store.Add(ctx, tarte)
	store.Remove(ctx, "absent")
	if store.Count() != 1 {
		t.Fatalf("expected 1 favorite after no-op removal, got %d", store.Count())
	}
}

func TestStore_ClearIsIdempotent(t *testing.T) {
	store := newStore(t, memory.NewKeyValueStore(), newFakeClock())
	ctx := context.Background()

	store.Add(ctx, tarte)
	store.Add(ctx, baguette)
	store.Clear(ctx)
	store.Clear(ctx)

	if store.Count() != 0 {
		t.Fatalf("expected empty favorites, got %d", store.Count())
	}
}

func TestStore_SubscribeNotify(t *testing.T) {
	clock := newFakeClock()
	store := newStore(t, memory.NewKeyValueStore(), clock)
	ctx := context.Background()

	calls := 0
	token := store.Subscribe(func() { calls++ })

	store.Add(ctx, tarte)
	if calls != 1 {
		t.Fatalf("expected 1 notification, got %d", calls)
	}

	// Идемпотентный повтор — no-op без уведомления.
	store.Add(ctx, tarte)
	if calls != 1 {
		t.Fatalf("expected no notification for duplicate add, got %d", calls)
	}

	if err := store.Unsubscribe(token); err != nil {
		t.Fatalf("unsubscribe failed: %v", err)
	}
	store.Remove(ctx, tarte.ID)
	if calls != 1 {
		t.Fatalf("expected no notification after unsubscribe, got %d", calls)
	}
}

func TestStore_RoundTrip(t *testing.T) {
	clock := newFakeClock()
	kv := memory.NewKeyValueStore()
	ctx := context.Background()

	store := newStore(t, kv, clock)
	store.Add(ctx, tarte)
	clock.Advance(time.Minute)
	store.Add(ctx, baguette)

	restored := newStore(t, kv, clock)
	if diff := cmp.Diff(store.Favorites(), restored.Favorites()); diff != "" {
		t.Fatalf("restored favorites differ (-want +got):\n%s", diff)
	}
}

func TestStore_RestoreRejectsCorruptSnapshot(t *testing.T) {
	clock := newFakeClock()
	kv := memory.NewKeyValueStore()
	ctx := context.Background()

	store := newStore(t, kv, clock)
	store.Add(ctx, tarte)

	if err := kv.Set(ctx, domain.FavoritesStorageKey, []byte(`{"version":1,"items":[{`)); err != nil {
		t.Fatalf("set corrupt snapshot failed: %v", err)
	}

	restored := newStore(t, kv, clock)
	if restored.Count() != 0 {
		t.Fatalf("expected empty favorites after corrupt snapshot, got %d", restored.Count())
	}
}

func TestStore_RestoreRejectsVersionMismatch(t *testing.T) {
	kv := memory.NewKeyValueStore()
	ctx := context.Background()

	payload := []byte(`{"version":0,"items":[{"id":"tarte","name":"Tarte","price":12,"image":"x","dateAdded":"2025-03-01T08:00:00Z"}]}`)
	if err := kv.Set(ctx, domain.FavoritesStorageKey, payload); err != nil {
		t.Fatalf("set snapshot failed: %v", err)
	}

	store := newStore(t, kv, newFakeClock())
	if store.Count() != 0 {
		t.Fatal("expected empty favorites for mismatched snapshot version")
	}
}

func TestStore_PersistFailureKeepsMemoryState(t *testing.T) {
	kv := &failingKV{
		KeyValueStore: memory.NewKeyValueStore(),
		setErr:        errors.New("storage disabled"),
	}
	store := newStore(t, kv, newFakeClock())
	ctx := context.Background()

	store.Add(ctx, tarte)
	if !store.IsFavorite(tarte.ID) {
		t.Fatal("expected favorite kept in memory despite write failure")
	}
}
