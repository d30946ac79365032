package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"inventory-media-service/internal/core/ports/output"
)

// Store is the embedded single-file backend for deployments without Postgres.
type Store struct {
	db   *gorm.DB
	path string
}

type Config struct {
	Path     string
	LogLevel logger.LogLevel
}

func NewStore(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if cfg.LogLevel == 0 {
		cfg.LogLevel = logger.Silent
	}

	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger:         logger.Default.LogMode(cfg.LogLevel),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	return &Store{db: db, path: cfg.Path}, nil
}

func (s *Store) DB() *gorm.DB { return s.db }

// Connect pins the pool to one connection; SQLite has a single writer and an
// in-memory database lives only as long as its connection.
func (s *Store) Connect(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)
	return sqlDB.PingContext(ctx)
}

func (s *Store) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&itemModel{}, &itemImageModel{}, &documentModel{})
}

func (s *Store) Health(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get database instance: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get database instance: %w", err)
	}
	return sqlDB.Close()
}

func (s *Store) Items() ports.ItemRepository {
	return &itemRepo{db: s.db}
}

func (s *Store) Images() ports.ItemImageRepository {
	return &itemImageRepo{db: s.db}
}

func (s *Store) Documents() ports.DocumentRepository {
	return &documentRepo{db: s.db}
}
