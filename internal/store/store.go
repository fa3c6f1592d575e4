// Package store implements the durable document store on SQLite via GORM.
// All access is single-document create/find/update; no cross-document
// transactions are used anywhere in the core.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when a looked-up document does not exist.
var ErrNotFound = errors.New("store: record not found")

// Store wraps the GORM handle and exposes the document operations the core
// needs. One Store instance is shared by the dispatcher, the scheduler and
// the HTTP layer.
type Store struct {
	db *gorm.DB
}

const dbFileName = "pingup.db"

// Open opens (creating if necessary) the SQLite database under dataDir and
// runs migrations.
func Open(dataDir string) (*Store, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("data dir is required")
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := gorm.Open(sqlite.Open(filepath.Join(dataDir, dbFileName)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(
		&User{},
		&Message{},
		&ConnectionRequest{},
		&WorkflowRun{},
	); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// wrapNotFound maps GORM's sentinel to the package sentinel.
func wrapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
