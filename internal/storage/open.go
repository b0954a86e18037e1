package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// ErrUnknownDriver is returned by Open for an unsupported driver name.
var ErrUnknownDriver = errors.New("unknown storage driver")

// Config selects and configures a UserRepository backend.
//
// Driver values:
//   - "badger" (or empty): BadgerDB directory at BadgerPath
//   - "sqlite": SQLite database file at SQLitePath
type Config struct {
	Driver     string
	BadgerPath string
	SQLitePath string
}

// Open initializes the configured repository.
func Open(cfg Config, logger logrus.FieldLogger) (UserRepository, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	switch driver {
	case "", "badger":
		return NewBadgerRepository(cfg.BadgerPath, logger)
	case "sqlite", "sqlite3":
		return NewSQLiteRepository(cfg.SQLitePath, logger)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}
