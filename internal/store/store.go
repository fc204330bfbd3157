// Package store is the relational record store. It owns persisted identity
// for transactions, templates, scenarios and categories, on PostgreSQL in
// production and SQLite for local use and tests.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"fjacquet/cashflow/internal/logging"
	"fjacquet/cashflow/internal/models"
	"fjacquet/cashflow/internal/parsererror"
)

// Supported drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DefaultHashChunkSize bounds the number of keys sent in one IN clause.
const DefaultHashChunkSize = 500

// Options configure Open.
type Options struct {
	Driver        string
	DSN           string
	HashChunkSize int
	// LogLevel of gorm's own query logger; zero means warnings only.
	LogLevel gormlogger.LogLevel
}

// Store wraps a gorm connection. Methods pick up a transaction started by
// RunInTx from their context, so the same Store value serves both.
type Store struct {
	db        *gorm.DB
	chunkSize int
	logger    logging.Logger
}

type txKey struct{}

// Open connects, migrates the schema and returns a Store.
func Open(opts Options, logger logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}

	var dialector gorm.Dialector
	switch opts.Driver {
	case DriverPostgres:
		dialector = postgres.Open(opts.DSN)
	case DriverSQLite, "":
		dialector = sqlite.Open(opts.DSN)
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", opts.Driver)
	}

	level := opts.LogLevel
	if level == 0 {
		level = gormlogger.Warn
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(level)})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", opts.Driver, err)
	}

	if opts.Driver != DriverPostgres {
		// SQLite allows one writer; a single connection also keeps an
		// in-memory database alive for the lifetime of the pool.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access sqlite pool: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	chunk := opts.HashChunkSize
	if chunk <= 0 {
		chunk = DefaultHashChunkSize
	}

	s := &Store{db: db, chunkSize: chunk, logger: logger}
	if err := s.Migrate(); err != nil {
		return nil, err
	}
	logger.Info("Record store ready", logging.F("driver", opts.Driver))
	return s, nil
}

// OpenMemory opens a private in-memory SQLite store.
func OpenMemory(logger logging.Logger) (*Store, error) {
	return Open(Options{Driver: DriverSQLite, DSN: ":memory:", LogLevel: gormlogger.Silent}, logger)
}

// Migrate creates or updates the schema.
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(
		&models.Category{},
		&models.Transaction{},
		&models.RecurringTemplate{},
		&models.Scenario{},
		&models.ScenarioItem{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ChunkSize is the maximum number of keys per IN query.
func (s *Store) ChunkSize() int {
	return s.chunkSize
}

// RunInTx runs fn inside one database transaction. Store calls made with the
// context passed to fn join that transaction; any error rolls it back.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// conn returns the transaction bound to ctx, or the pool.
func (s *Store) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return s.db.WithContext(ctx)
}

var errNoRows = gorm.ErrRecordNotFound

func notFound(err error, resource string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return parsererror.NotFound(resource, id)
	}
	return err
}

func chunk[T any](items []T, size int) [][]T {
	var out [][]T
	for size < len(items) {
		items, out = items[size:], append(out, items[:size:size])
	}
	if len(items) > 0 {
		out = append(out, items)
	}
	return out
}
