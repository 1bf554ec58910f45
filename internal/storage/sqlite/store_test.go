package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/vladislavdragonenkov/shopstate/internal/domain"
	"github.com/vladislavdragonenkov/shopstate/internal/storage/sqlite"
)

func openStore(t *testing.T, path string) *sqlite.Store {
	t.Helper()

	store, err := sqlite.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if err := store.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema failed: %v", err)
	}
	return store
}

func TestStore_OpenRequiresPath(t *testing.T) {
	if _, err := sqlite.Open(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestStore_SetGetDelete(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), "state.db"))
	ctx := context.Background()

	if err := store.Set(ctx, "k", []byte(`{"version":1}`)); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	value, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(value) != `{"version":1}` {
		t.Fatalf("unexpected value: %s", value)
	}

	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := store.Get(ctx, "k"); !errors.Is(err, domain.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestStore_SetOverwrites(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), "state.db"))
	ctx := context.Background()

	if err := store.Set(ctx, "k", []byte("old")); err != nil {
		t.Fatalf("first set failed: %v", err)
	}
	if err := store.Set(ctx, "k", []byte("new")); err != nil {
		t.Fatalf("second set failed: %v", err)
	}

	value, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(value) != "new" {
		t.Fatalf("expected new, got %s", value)
	}
}

func TestStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	ctx := context.Background()

	store := openStore(t, path)
	if err := store.Set(ctx, "k", []byte("persisted")); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	reopened := openStore(t, path)
	value, err := reopened.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get after reopen failed: %v", err)
	}
	if string(value) != "persisted" {
		t.Fatalf("expected persisted, got %s", value)
	}
}

func TestStore_Ping(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), "state.db"))
	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("ping failed: %v", err)
	}

	var nilStore *sqlite.Store
	if err := nilStore.Ping(context.Background()); !errors.Is(err, domain.ErrStorageClosed) {
		t.Fatalf("expected ErrStorageClosed, got %v", err)
	}
}
