package config

import "fmt"

// Поддерживаемые драйверы хранилища.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// StorageConfig выбирает реализацию хранилища пользователей и заметок.
type StorageConfig struct {
	Driver string `yaml:"driver" env:"NOTEKEEPER_STORAGE_DRIVER" env-default:"postgres"`
}

// Validate проверяет, что драйвер известен.
func (s *StorageConfig) Validate() error {
	switch s.Driver {
	case StoragePostgres, StorageMemory:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStorageDriver, s.Driver)
	}
}
