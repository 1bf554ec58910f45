package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shopstate/internal/app"
)

// Переменные окружения хоста состояния.
const (
	envMetricsAddr   = "SHOPSTATE_METRICS_ADDR"
	envStorageDriver = "SHOPSTATE_STORAGE_DRIVER"
	envSQLitePath    = "SHOPSTATE_SQLITE_PATH"
)

// setupLogger настраивает формат и уровень логирования.
func setupLogger() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)
}

// lookupFunc абстрагирует os.LookupEnv, чтобы чтение конфига тестировалось
// без мутации окружения процесса.
type lookupFunc func(string) (string, bool)

func mapLookup(values map[string]string) lookupFunc {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

// readConfigFromEnv формирует конфигурацию, позволяя переопределить
// значения по умолчанию через переменные окружения.
func readConfigFromEnv(lookup lookupFunc) (app.Config, []string) {
	cfg := app.DefaultConfig()
	var warnings []string

	if v, ok := lookup(envMetricsAddr); ok && v != "" {
		cfg.MetricsAddr = v
	}
	if v, ok := lookup(envStorageDriver); ok && v != "" {
		switch v {
		case app.StorageDriverMemory, app.StorageDriverSQLite:
			cfg.StorageDriver = v
		default:
			warnings = append(warnings, "unknown "+envStorageDriver+" value "+v+", keeping "+cfg.StorageDriver)
		}
	}
	if v, ok := lookup(envSQLitePath); ok && v != "" {
		cfg.SQLitePath = v
	}

	return cfg, warnings
}

func main() {
	setupLogger()
	_ = godotenv.Load()

	cfg, warnings := readConfigFromEnv(os.LookupEnv)
	for _, w := range warnings {
		log.Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"metrics_addr":   cfg.MetricsAddr,
		"storage_driver": cfg.StorageDriver,
	}).Info("запускаем хост состояния shopstate")

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("хост состояния завершился с ошибкой")
	}

	log.Info("shopstate остановлен")
}
