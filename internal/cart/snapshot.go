package cart

import (
	"encoding/json"
	"fmt"

	"github.com/vladislavdragonenkov/shopstate/internal/domain"
)

// snapshot — сериализованная форма корзины: список позиций плюс номер
// версии схемы. Версию обязан проверить любой потребитель перед тем,
// как доверять форме.
type snapshot struct {
	Version int                   `json:"version"`
	Items   []domain.CartLineItem `json:"items"`
}

func encodeSnapshot(items []domain.CartLineItem) ([]byte, error) {
	raw, err := json.Marshal(snapshot{
		Version: domain.SnapshotVersion,
		Items:   items,
	})
	if err != nil {
		return nil, fmt.Errorf("encode cart snapshot: %w", err)
	}
	return raw, nil
}

// decodeSnapshot разбирает снапшот и проверяет версию и позиции.
// Любой дефект формы превращается в ошибку "прежнего состояния нет":
// для v1 миграций не предусмотрено, несовместимое состояние отбрасывается.
func decodeSnapshot(raw []byte) ([]domain.CartLineItem, error) {
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
			return nil, fmt.Errorf("%w: invalid line item %q", domain.ErrSnapshotMalformed, item.ID)
		}
		if _, dup := seen[item.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate line item %q", domain.ErrSnapshotMalformed, item.ID)
		}
		seen[item.ID] = struct{}{}
	}

	return snap.Items, nil
}
