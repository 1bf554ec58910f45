// Package favorites реализует стор избранного: дедуплицированный список
// сохранённых товаров с фиксированной датой добавления.
package favorites

import (
	"context"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shopstate/internal/domain"
	"github.com/vladislavdragonenkov/shopstate/internal/metrics"
	"github.com/vladislavdragonenkov/shopstate/internal/notify"
)

const (
	opAdd    = "add"
	opRemove = "remove"
	opClear  = "clear"
)

// Store владеет коллекцией избранного. Не больше одной записи на ID;
// DateAdded выставляется один раз при вставке и неизменна, включая
// повторные добавления того же товара.
type Store struct {
	mu    sync.RWMutex
	items []domain.FavoriteItem

	kv      domain.KeyValueStore
	logger  *log.Entry
	metrics *metrics.StateMetrics
	subs    *notify.Registry
	now     func() time.Time
}

// NewStore создаёт стор избранного и восстанавливает состояние из хранилища.
func NewStore(ctx context.Context, kv domain.KeyValueStore, logger *log.Entry, m *metrics.StateMetrics) *Store {
	return NewStoreWithClock(ctx, kv, logger, m, time.Now)
}

// NewStoreWithClock позволяет подменить источник времени в тестах,
// чтобы проверять неизменность DateAdded детерминированно.
func NewStoreWithClock(ctx context.Context, kv domain.KeyValueStore, logger *log.Entry, m *metrics.StateMetrics, now func() time.Time) *Store {
	if logger == nil {
		logger = log.WithField("component", "favorites")
	}
	if now == nil {
		now = time.Now
	}

	s := &Store{
		kv:      kv,
		logger:  logger,
		metrics: m,
		subs:    notify.NewRegistry(),
		now:     now,
	}
	s.restore(ctx)
	return s
}

func (s *Store) restore(ctx context.Context) {
	raw, err := s.kv.Get(ctx, domain.FavoritesStorageKey)
	if err != nil {
		if !domain.IsNoPriorState(err) {
			s.logger.WithError(err).Warn("favorites snapshot read failed, starting empty")
		}
		s.metrics.RecordRestore(metrics.StoreFavorites, metrics.RestoreResultEmpty)
		return
	}

	items, err := decodeSnapshot(raw)
	if err != nil {
		s.logger.WithError(err).Warn("favorites snapshot rejected, starting empty")
		s.metrics.RecordRestore(metrics.StoreFavorites, metrics.RestoreResultEmpty)
		return
	}

	s.items = items
	s.metrics.RecordRestore(metrics.StoreFavorites, metrics.RestoreResultRestored)
	s.metrics.SetFavorites(len(items))
	s.logger.WithField("favorites", len(items)).Debug("favorites restored from snapshot")
}

// Add добавляет товар в избранное. Повторное добавление существующего ID —
// строгий no-op: не обновляет DateAdded и не двигает запись.
func (s *Store) Add(ctx context.Context, item domain.ItemSnapshot) {
	if item.ID == "" {
		s.logger.Debug("add favorite ignored: empty product id")
		return
	}

	s.mu.Lock()
	if s.indexOf(item.ID) >= 0 {
		s.mu.Unlock()
		return
	}
	s.items = append(s.items, domain.FavoriteItem{
		ID:        item.ID,
		Name:      item.Name,
		Price:     item.Price,
		Image:     item.Image,
		DateAdded: s.now().UTC(),
	})
	s.mu.Unlock()

	s.afterMutation(ctx, opAdd)
}

// Remove удаляет запись по ID; отсутствие записи — no-op.
func (s *Store) Remove(ctx context.Context, id string) {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	s.mu.Unlock()

	s.afterMutation(ctx, opRemove)
}

// IsFavorite сообщает, есть ли запись с данным ID.
func (s *Store) IsFavorite(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(id) >= 0
}

// Favorites возвращает записи, отсортированные по DateAdded по убыванию
// (самые свежие первыми). Проекция только для чтения: хранимый порядок
// вставки не мутируется.
func (s *Store) Favorites() []domain.FavoriteItem {
	s.mu.RLock()
	out := make([]domain.FavoriteItem, 0, len(s.items))
	// Обратный порядок вставки, чтобы при равных DateAdded свежая
	// запись оставалась первой после стабильной сортировки.
	for i := len(s.items) - 1; i >= 0; i-- {
		out = append(out, s.items[i])
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DateAdded.After(out[j].DateAdded)
	})
	return out
}

// Count возвращает число записей избранного.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Clear безусловно опустошает избранное. Повторный вызов также безопасен.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()

	s.afterMutation(ctx, opClear)
}

// Subscribe регистрирует коллбэк, вызываемый после каждой мутации.
func (s *Store) Subscribe(fn func()) string {
	return s.subs.Subscribe(fn)
}

// Unsubscribe снимает подписку по токену.
func (s *Store) Unsubscribe(token string) error {
	return s.subs.Unsubscribe(token)
}

func (s *Store) afterMutation(ctx context.Context, op string) {
	s.metrics.RecordMutation(metrics.StoreFavorites, op)
	s.metrics.SetFavorites(s.Count())
	s.persist(ctx, op)
	s.subs.Notify()
}

func (s *Store) persist(ctx context.Context, op string) {
	s.mu.RLock()
	stored := make([]domain.FavoriteItem, len(s.items))
	copy(stored, s.items)
	s.mu.RUnlock()

	raw, err := encodeSnapshot(stored)
	if err != nil {
		s.metrics.RecordPersistFailure(metrics.StoreFavorites)
		s.logger.WithError(err).WithField("op", op).Warn("favorites snapshot encode failed")
		return
	}

	started := time.Now()
	if err := s.kv.Set(ctx, domain.FavoritesStorageKey, raw); err != nil {
		s.metrics.RecordPersistFailure(metrics.StoreFavorites)
		s.logger.WithError(err).WithField("op", op).Warn("favorites snapshot write failed")
		return
	}
	s.metrics.RecordPersistDuration(metrics.StoreFavorites, time.Since(started))
}

// indexOf ищет запись по ID; вызывается под блокировкой.
func (s *Store) indexOf(id string) int {
	for i, item := range s.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}
