package domain

import "context"

// KeyValueStore описывает локальное key-value хранилище устройства.
// Аналог localStorage браузера: долговечное, привязанное к устройству,
// без какой-либо синхронизации с сервером.
type KeyValueStore interface {
	// Get возвращает значение по ключу или ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set перезаписывает значение по ключу целиком.
	Set(ctx context.Context, key string, value []byte) error
	// Delete удаляет ключ; отсутствие ключа не считается ошибкой.
	Delete(ctx context.Context, key string) error
	// Ping проверяет доступность хранилища.
	Ping(ctx context.Context) error
	// Close освобождает ресурсы хранилища.
	Close() error
}

// Фиксированные ключи хранилища. Версия схемы лежит внутри значения,
// а не в ключе, чтобы миграция не плодила осиротевшие записи.
const (
	CartStorageKey      = "shopstate:cart"
	FavoritesStorageKey = "shopstate:favorites"
	DeviceIDStorageKey  = "shopstate:device_id"
)

// SnapshotVersion — текущая версия схемы сериализованных снапшотов.
// При несовпадении версии восстановленное состояние отбрасывается
// без миграции (для v1 миграций не предусмотрено).
const SnapshotVersion = 1
