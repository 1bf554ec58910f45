// Package notify реализует подписку UI-компонентов на изменения сторов.
package notify

import (
	"sync"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/shopstate/internal/domain"
)

// Registry хранит подписчиков и рассылает им уведомления об изменениях.
// Коллбэки вызываются синхронно в потоке мутации: параллелизма в модели
// исполнения нет, поэтому все читатели сходятся к одному значению сразу
// после возврата из операции.
type Registry struct {
	mu   sync.RWMutex
	subs map[string]func()
}

// NewRegistry создаёт пустой реестр подписчиков.
func NewRegistry() *Registry {
	return &Registry{subs: make(map[string]func())}
}

// Subscribe регистрирует коллбэк и возвращает токен для отписки.
func (r *Registry) Subscribe(fn func()) string {
	token := uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs[token] = fn
	return token
}

// Unsubscribe удаляет подписчика по токену.
func (r *Registry) Unsubscribe(token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.subs[token]; !ok {
		return domain.ErrSubscriberNotFound
	}
	delete(r.subs, token)
	return nil
}

// Notify вызывает всех подписчиков. Снимаем копию под RLock, чтобы
// подписчик мог отписаться из собственного коллбэка без дедлока.
func (r *Registry) Notify() {
	r.mu.RLock()
	fns := make([]func(), 0, len(r.subs))
	for _, fn := range r.subs {
		fns = append(fns, fn)
	}
	r.mu.RUnlock()

	for _, fn := range fns {
		fn()
	}
}

// Len возвращает текущее число подписчиков.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}
