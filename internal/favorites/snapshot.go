package favorites

import (
	"encoding/json"
	"fmt"

	"github.com/vladislavdragonenkov/shopstate/internal/domain"
)

// snapshot — сериализованная форма избранного. Хранится в порядке вставки;
// сортировка по DateAdded — забота читающей проекции, не хранилища.
type snapshot struct {
	Version int                   `json:"version"`
	Items   []domain.FavoriteItem `json:"items"`
}

func encodeSnapshot(items []domain.FavoriteItem) ([]byte, error) {
	raw, err := json.Marshal(snapshot{
		Version: domain.SnapshotVersion,
		Items:   items,
	})
	if err != nil {
		return nil, fmt.Errorf("encode favorites snapshot: %w", err)
	}
	return raw, nil
}

func decodeSnapshot(raw []byte) ([]domain.FavoriteItem, error) {
	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSnapshotMalformed, err)
	}
	if snap.Version != domain.SnapshotVersion {
		return nil, fmt.Errorf("%w: got %d, want %d",
			domain.ErrSnapshotVersionMismatch, snap.Version, domain.SnapshotVersion)
	}

	seen := make(map[string]struct{}, len(snap.Items))
	for _, item := range snap.Items {
		if !item.Valid() {
			return nil, fmt.Errorf("%w: invalid favorite %q", domain.ErrSnapshotMalformed, item.ID)
		}
		if _, dup := seen[item.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate favorite %q", domain.ErrSnapshotMalformed, item.ID)
		}
		seen[item.ID] = struct{}{}
	}

	return snap.Items, nil
}
