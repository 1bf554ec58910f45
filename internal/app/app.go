package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shopstate/internal/cart"
	"github.com/vladislavdragonenkov/shopstate/internal/favorites"
	healthcheck "github.com/vladislavdragonenkov/shopstate/internal/health"
	"github.com/vladislavdragonenkov/shopstate/internal/metrics"
	"github.com/vladislavdragonenkov/shopstate/internal/version"
)

// Stores — внутрипроцессный API ядра состояния, передаваемый встраивающему
// приложению. Презентационный слой подписывается на изменения и читает
// агрегаты синхронно, без каких-либо fetch.
type Stores struct {
	Cart      *cart.Store
	Favorites *favorites.Store
	DeviceID  string
}

// Run собирает ядро состояния и блокируется до отмены контекста.
func Run(ctx context.Context, cfg Config) error {
	return RunWithStores(ctx, cfg, nil)
}

// RunWithStores дополнительно отдаёт собранные сторы коллбэку встраивающего
// приложения. Возврат коллбэка завершает хост; nil-коллбэк означает работу
// до отмены контекста.
func RunWithStores(ctx context.Context, cfg Config, fn func(context.Context, Stores) error) error {
	logger := log.WithField("component", "app")

	deps, err := initRuntimeDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}

	deviceID := ensureDeviceID(ctx, deps.kv, logger)
	logger = logger.WithField("device_id", deviceID)

	stateMetrics := metrics.NewStateMetrics()
	stores := Stores{
		Cart:      cart.NewStore(ctx, deps.kv, log.WithField("component", "cart"), stateMetrics),
		Favorites: favorites.NewStore(ctx, deps.kv, log.WithField("component", "favorites"), stateMetrics),
		DeviceID:  deviceID,
	}

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	healthHandler.SetDeviceID(deviceID)
	healthHandler.RegisterChecker("storage", healthcheck.NewCheckFunc("storage", func() error {
		checkCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return deps.kv.Ping(checkCtx)
	}))

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	errCh := make(chan error, 1)
	if fn != nil {
		go func() {
			errCh <- fn(ctx, stores)
		}()
	}

	closeStorage := func() {
		if err := deps.kv.Close(); err != nil {
			logger.WithError(err).Warn("failed to close storage")
		} else {
			logger.Info("storage closed")
		}
	}

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем хост состояния")
		shutdownHTTP(metricsSrv, logger)
		closeStorage()
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(metricsSrv, logger)
		closeStorage()
		return err
	}
}

// startMetricsServer запускает HTTP-обработчики /metrics и health-проверок.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/readyz, %s/livez", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("metrics shutdown with error")
	}
}
