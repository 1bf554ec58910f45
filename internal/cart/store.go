// Package cart реализует стор позиций корзины: учёт количества товаров,
// производные агрегаты и best-effort персистентность между сессиями.
package cart

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shopstate/internal/domain"
	"github.com/vladislavdragonenkov/shopstate/internal/metrics"
	"github.com/vladislavdragonenkov/shopstate/internal/notify"
)

// Метки операций для метрик и логов.
const (
	opAddItem        = "add_item"
	opRemoveItem     = "remove_item"
	opUpdateQuantity = "update_quantity"
	opClear          = "clear"
)

// Store владеет коллекцией позиций корзины. Коллекция мутируется только
// через операции стора; порядок вставки сохраняется. Каждая мутация
// выполняется в памяти, затем снапшот пишется в хранилище best-effort,
// затем синхронно уведомляются подписчики.
type Store struct {
	mu    sync.RWMutex
	items []domain.CartLineItem

	kv      domain.KeyValueStore
	logger  *log.Entry
	metrics *metrics.StateMetrics
	subs    *notify.Registry
}

// NewStore создаёт стор корзины и восстанавливает состояние из хранилища.
// Отсутствующий, повреждённый или несовместимый по версии снапшот молча
// заменяется пустой коллекцией: ошибка восстановления не достигает вызывающего.
func NewStore(ctx context.Context, kv domain.KeyValueStore, logger *log.Entry, m *metrics.StateMetrics) *Store {
	if logger == nil {
		logger = log.WithField("component", "cart")
	}

	s := &Store{
		kv:      kv,
		logger:  logger,
		metrics: m,
		subs:    notify.NewRegistry(),
	}
	s.restore(ctx)
	return s
}

func (s *Store) restore(ctx context.Context) {
	raw, err := s.kv.Get(ctx, domain.CartStorageKey)
	if err != nil {
		if !domain.IsNoPriorState(err) {
			s.logger.WithError(err).Warn("cart snapshot read failed, starting empty")
		}
		s.metrics.RecordRestore(metrics.StoreCart, metrics.RestoreResultEmpty)
		return
	}

	items, err := decodeSnapshot(raw)
	if err != nil {
		s.logger.WithError(err).Warn("cart snapshot rejected, starting empty")
		s.metrics.RecordRestore(metrics.StoreCart, metrics.RestoreResultEmpty)
		return
	}

	s.items = items
	s.metrics.RecordRestore(metrics.StoreCart, metrics.RestoreResultRestored)
	s.metrics.SetCartItems(totalQuantity(items))
	s.logger.WithField("line_items", len(items)).Debug("cart restored from snapshot")
}

// AddItem добавляет позицию по снапшоту товара из каталога. Повторное
// добавление того же ID увеличивает количество вместо дубликата.
// Операция не может завершиться ошибкой.
func (s *Store) AddItem(ctx context.Context, item domain.ItemSnapshot) {
	if item.ID == "" {
		s.logger.Debug("add item ignored: empty product id")
		return
	}

	s.mu.Lock()
	if idx := s.indexOf(item.ID); idx >= 0 {
		s.items[idx].Quantity++
	} else {
		s.items = append(s.items, domain.CartLineItem{
			ID:       item.ID,
			Name:     item.Name,
			Price:    item.Price,
			Image:    item.Image,
			Quantity: 1,
		})
	}
	s.mu.Unlock()

	s.afterMutation(ctx, opAddItem)
}

// RemoveItem удаляет позицию по ID; отсутствие позиции — no-op.
func (s *Store) RemoveItem(ctx context.Context, id string) {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	s.mu.Unlock()

	s.afterMutation(ctx, opRemoveItem)
}

// UpdateQuantity выставляет количество позиции. Количество <= 0 трактуется
// как запрос на удаление, а не отклоняется ошибкой.
func (s *Store) UpdateQuantity(ctx context.Context, id string, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(ctx, id)
		return
	}

	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.items[idx].Quantity = quantity
	s.mu.Unlock()

	s.afterMutation(ctx, opUpdateQuantity)
}

// Clear безусловно опустошает корзину. Повторный вызов также безопасен.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()

	s.afterMutation(ctx, opClear)
}

// Items возвращает копию текущих позиций в порядке вставки.
func (s *Store) Items() []domain.CartLineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.CartLineItem, len(s.items))
	copy(out, s.items)
	return out
}

// TotalItems возвращает сумму количеств по всем позициям
// (не число различных позиций).
func (s *Store) TotalItems() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return totalQuantity(s.items)
}

// TotalPrice возвращает сумму price*quantity по всем позициям.
// Обычная плавающая арифметика, без денежного округления.
func (s *Store) TotalPrice() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total float64
	for _, item := range s.items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// Subscribe регистрирует коллбэк, вызываемый после каждой мутации.
func (s *Store) Subscribe(fn func()) string {
	return s.subs.Subscribe(fn)
}

// Unsubscribe снимает подписку по токену.
func (s *Store) Unsubscribe(token string) error {
	return s.subs.Unsubscribe(token)
}

// afterMutation выполняет видимые побочные шаги мутации: метрики,
// best-effort запись снапшота, затем синхронная рассылка подписчикам.
func (s *Store) afterMutation(ctx context.Context, op string) {
	s.metrics.RecordMutation(metrics.StoreCart, op)
	s.metrics.SetCartItems(s.TotalItems())
	s.persist(ctx, op)
	s.subs.Notify()
}

// persist сериализует коллекцию целиком и пишет её в хранилище.
// Неудачная запись логируется и считается в метриках, но не откатывает
// состояние в памяти и не всплывает к вызывающему.
func (s *Store) persist(ctx context.Context, op string) {
	raw, err := encodeSnapshot(s.Items())
	if err != nil {
		s.metrics.RecordPersistFailure(metrics.StoreCart)
		s.logger.WithError(err).WithField("op", op).Warn("cart snapshot encode failed")
		return
	}

	started := time.Now()
	if err := s.kv.Set(ctx, domain.CartStorageKey, raw); err != nil {
		s.metrics.RecordPersistFailure(metrics.StoreCart)
		s.logger.WithError(err).WithField("op", op).Warn("cart snapshot write failed")
		return
	}
	s.metrics.RecordPersistDuration(metrics.StoreCart, time.Since(started))
}

// indexOf ищет позицию по ID; вызывается под блокировкой.
func (s *Store) indexOf(id string) int {
	for i, item := range s.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func totalQuantity(items []domain.CartLineItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}
