package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/shopstate/internal/domain"
	"github.com/vladislavdragonenkov/shopstate/internal/storage/sqlite"
)

const defaultTimeout = 30 * time.Second

// Утилита подготовки и осмотра локального файла состояния: создаёт схему
// kv и показывает, какие снапшоты в нём лежат.
func main() {
	var (
		path    string
		command string
	)

	flag.StringVar(&path, "path", "", "path to the sqlite state file (fallback: SHOPSTATE_SQLITE_PATH)")
	flag.StringVar(&command, "command", "init", "command: init|status")
	flag.Parse()

	if strings.TrimSpace(path) == "" {
		path = strings.TrimSpace(os.Getenv("SHOPSTATE_SQLITE_PATH"))
	}
	if path == "" {
		fail("SHOPSTATE_SQLITE_PATH (or -path) is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	store, err := sqlite.Open(ctx, path)
	if err != nil {
		fail("open sqlite state file: %v", err)
	}
	defer store.Close()

	switch strings.ToLower(strings.TrimSpace(command)) {
	case "init":
		if err := store.EnsureSchema(ctx); err != nil {
			fail("init schema failed: %v", err)
		}
		fmt.Printf("schema ready: %s\n", path)
	case "status":
		if err := store.EnsureSchema(ctx); err != nil {
			fail("prepare schema failed: %v", err)
		}
		for _, key := range []string{
			domain.CartStorageKey,
			domain.FavoritesStorageKey,
			domain.DeviceIDStorageKey,
		} {
			value, err := store.Get(ctx, key)
			switch {
			case err == nil:
				fmt.Printf("%s: %d bytes\n", key, len(value))
			case domain.IsNoPriorState(err):
				fmt.Printf("%s: absent\n", key)
			default:
				fail("read %s: %v", key, err)
			}
		}
	default:
		fail("unsupported command: %s (use init|status)", command)
	}
}

func fail(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
