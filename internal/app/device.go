package app

import (
	"context"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shopstate/internal/domain"
)

// ensureDeviceID возвращает идентификатор устройства, создавая его при
// первом запуске. Запись нового идентификатора — best-effort: при отказе
// хранилища процесс продолжает работу с эфемерным ID.
func ensureDeviceID(ctx context.Context, kv domain.KeyValueStore, logger *log.Entry) string {
	raw, err := kv.Get(ctx, domain.DeviceIDStorageKey)
	if err == nil && len(raw) > 0 {
		return string(raw)
	}
	if err != nil && !domain.IsNoPriorState(err) {
		logger.WithError(err).Warn("device id read failed, generating ephemeral id")
	}

	id := uuid.NewString()
	if err := kv.Set(ctx, domain.DeviceIDStorageKey, []byte(id)); err != nil {
		logger.WithError(err).Warn("device id write failed, id will not survive restart")
	}
	return id
}
