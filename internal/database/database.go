package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"task-tracker-api/internal/config"
	"task-tracker-api/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Store is the explicitly constructed handle every service receives.
type Store struct {
	*gorm.DB
	driver string
	txOpts *sql.TxOptions
}

// Open connects to the configured database. SQLite uses glebarez/sqlite which is
// a pure Go implementation (no CGO required).
func Open(cfg config.DatabaseConfig, log zerolog.Logger) (*Store, error) {
	driver := strings.ToLower(cfg.Driver)

	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite:
		dialector = sqlite.Open(cfg.DSN)
	case DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	store := &Store{DB: db, driver: driver}
	switch driver {
	case DriverSQLite:
		// An in-memory database lives on a single connection; file databases
		// serialize writers anyway.
		sqlDB.SetMaxOpenConns(1)
	case DriverPostgres:
		if cfg.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		store.txOpts = &sql.TxOptions{Isolation: sql.LevelSerializable}
	}

	log.Info().
		Str("driver", driver).
		Msg("connected to database")
	return store, nil
}

// Migrate creates or updates every table.
func (s *Store) Migrate() error {
	if err := s.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// InTx runs fn inside a single transaction. Postgres transactions are
// serializable; SQLite transactions already are.
func (s *Store) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s.txOpts != nil {
		return s.WithContext(ctx).Transaction(fn, s.txOpts)
	}
	return s.WithContext(ctx).Transaction(fn)
}

func (s *Store) Driver() string {
	return s.driver
}

// Health pings the underlying connection pool.
func (s *Store) Health(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return errors.New("database connection is nil")
	}
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	if s == nil || s.DB == nil {
		return nil
	}
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func gormLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
