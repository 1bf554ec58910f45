package app

// Драйверы локального хранилища состояния.
const (
	// StorageDriverMemory — состояние живёт только в памяти процесса.
	StorageDriverMemory = "memory"
	// StorageDriverSQLite — состояние переживает перезапуск в файле SQLite.
	StorageDriverSQLite = "sqlite"
)

// Config описывает настройки запуска хоста состояния.
type Config struct {
	// MetricsAddr — адрес HTTP-сервера метрик и health-проверок.
	MetricsAddr string
	// StorageDriver выбирает реализацию key-value хранилища.
	StorageDriver string
	// SQLitePath — путь к файлу базы для драйвера sqlite.
	SQLitePath string
}

// DefaultConfig возвращает значения по умолчанию: метрики на :9090,
// долговечное хранилище в файле рядом с приложением.
func DefaultConfig() Config {
	return Config{
		MetricsAddr:   ":9090",
		StorageDriver: StorageDriverSQLite,
		SQLitePath:    "shopstate.db",
	}
}
