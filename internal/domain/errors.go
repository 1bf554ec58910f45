package domain

import "errors"

var (
	// ErrKeyNotFound возвращается key-value хранилищем, если ключа нет.
	ErrKeyNotFound = errors.New("key not found")
	// ErrSnapshotMalformed — снапшот не разобрался или не прошёл проверку полей.
	ErrSnapshotMalformed = errors.New("snapshot malformed")
	// ErrSnapshotVersionMismatch — версия схемы снапшота не совпадает с ожидаемой.
	ErrSnapshotVersionMismatch = errors.New("snapshot version mismatch")
	// ErrSubscriberNotFound возвращается при отписке по неизвестному токену.
	ErrSubscriberNotFound = errors.New("subscriber not found")
	// ErrStorageClosed — обращение к хранилищу после Close.
	ErrStorageClosed = errors.New("storage is closed")
)

// IsNoPriorState проверяет, означает ли ошибка восстановления "прежнего
// состояния нет": такие ошибки гасятся, магазин стартует с пустой коллекцией.
func IsNoPriorState(err error) bool {
	return errors.Is(err, ErrKeyNotFound) ||
		errors.Is(err, ErrSnapshotMalformed) ||
		errors.Is(err, ErrSnapshotVersionMismatch)
}
