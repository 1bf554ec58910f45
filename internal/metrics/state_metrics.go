package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Значения label store в метриках.
const (
	StoreCart      = "cart"
	StoreFavorites = "favorites"
)

// Результаты восстановления снапшота для label result.
const (
	RestoreResultRestored = "restored"
	RestoreResultEmpty    = "empty"
)

// StateMetrics содержит метрики сторов состояния (корзина и избранное).
type StateMetrics struct {
	// Счётчики мутаций по стору и операции
	mutations *prometheus.CounterVec

	// Персистентность: неудачные записи и результаты восстановления
	persistFailures *prometheus.CounterVec
	restores        *prometheus.CounterVec

	// Гистограмма времени записи снапшота
	persistDuration *prometheus.HistogramVec

	// Gauge текущих агрегатов
	cartItems      prometheus.Gauge
	favoritesCount prometheus.Gauge
}

// NewStateMetrics создаёт метрики сторов в default registry.
func NewStateMetrics() *StateMetrics {
	return newStateMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newStateMetricsWithRegisterer(registerer prometheus.Registerer) *StateMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &StateMetrics{
		mutations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "shopstate_mutations_total",
			Help: "Total number of store mutations",
		}, []string{"store", "op"}),
		persistFailures: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "shopstate_persist_failures_total",
			Help: "Total number of snapshot writes that failed and were dropped",
		}, []string{"store"}),
		restores: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "shopstate_snapshot_restores_total",
			Help: "Total number of snapshot restore attempts by result",
		}, []string{"store", "result"}),
		persistDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "shopstate_persist_duration_seconds",
			Help:    "Duration of snapshot serialization and write in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}, []string{"store"}),
		cartItems: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "shopstate_cart_items",
			Help: "Current total quantity across cart line items",
		}),
		favoritesCount: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "shopstate_favorites",
			Help: "Current number of favorite entries",
		}),
	}
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordMutation увеличивает счётчик мутаций стора.
// Все методы безопасны на nil-получателе: сторы можно собирать без метрик.
func (m *StateMetrics) RecordMutation(store, op string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(store, op).Inc()
}

// RecordPersistFailure увеличивает счётчик проглоченных ошибок записи.
func (m *StateMetrics) RecordPersistFailure(store string) {
	if m == nil {
		return
	}
	m.persistFailures.WithLabelValues(store).Inc()
}

// RecordRestore фиксирует результат восстановления снапшота.
func (m *StateMetrics) RecordRestore(store, result string) {
	if m == nil {
		return
	}
	m.restores.WithLabelValues(store, result).Inc()
}

// RecordPersistDuration записывает длительность сериализации и записи.
func (m *StateMetrics) RecordPersistDuration(store string, duration time.Duration) {
	if m == nil {
		return
	}
	m.persistDuration.WithLabelValues(store).Observe(duration.Seconds())
}

// SetCartItems обновляет gauge суммарного количества в корзине.
func (m *StateMetrics) SetCartItems(total int) {
	if m == nil {
		return
	}
	m.cartItems.Set(float64(total))
}

// SetFavorites обновляет gauge числа записей избранного.
func (m *StateMetrics) SetFavorites(count int) {
	if m == nil {
		return
	}
	m.favoritesCount.Set(float64(count))
}
