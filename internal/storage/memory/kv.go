package memory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/shopstate/internal/domain"
)

// kvInMemory — простая in-memory реализация KeyValueStore.
type kvInMemory struct {
	mu     sync.RWMutex
	values map[string][]byte
	closed bool
}

// NewKeyValueStore возвращает in-memory хранилище для локальной разработки
// и тестов. Состояние живёт только в пределах процесса.
func NewKeyValueStore() domain.KeyValueStore {
	return &kvInMemory{
		values: make(map[string][]byte),
	}
}

// Get возвращает копию значения или ErrKeyNotFound.
func (s *kvInMemory) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	if !ok {
		return nil, domain.ErrKeyNotFound
	}
	// Отдаём копию, чтобы вызывающий не мог мутировать хранимый срез.
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Set перезаписывает значение по ключу, сохраняя копию.
func (s *kvInMemory) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	s.values[key] = stored
	return nil
}

// Delete удаляет ключ; отсутствие ключа не ошибка.
func (s *kvInMemory) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}

// Ping для in-memory хранилища всегда успешен, пока оно не закрыто.
func (s *kvInMemory) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return domain.ErrStorageClosed
	}
	return nil
}

// Close помечает хранилище закрытым.
func (s *kvInMemory) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

var _ domain.KeyValueStore = (*kvInMemory)(nil)
