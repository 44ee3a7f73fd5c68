// Package store owns the database connection and serialises every mutation
// behind a single lock and transaction.
package store

import (
	"context"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"libraryhub/internal/db"
	"libraryhub/internal/model"
	"libraryhub/internal/repository"
)

// Store is the entity store shared by all services.
type Store struct {
	db    *gorm.DB
	mu    sync.Mutex
	repos *repository.Repositories
}

// New wraps an open connection.
func New(gormDB *gorm.DB) *Store {
	return &Store{db: gormDB, repos: repository.New(gormDB)}
}

// Open connects to the database and migrates the schema.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	gormDB, err := db.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	s := New(gormDB)
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// DB exposes the underlying connection.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Repos returns repositories bound to the connection, outside any
// transaction. Use it for reads only.
func (s *Store) Repos() *repository.Repositories {
	return s.repos
}

// Migrate creates or updates every table.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Reset drops all tables and recreates an empty schema.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := append([]any{"book_authors", "book_categories"}, model.All()...)
	if err := s.db.WithContext(ctx).Migrator().DropTable(tables...); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}
	return s.Migrate(ctx)
}

// Atomic runs fn inside one transaction while holding the store lock. Either
// every change fn makes is committed or none is.
func (s *Store) Atomic(ctx context.Context, fn func(ctx context.Context, repos *repository.Repositories) error) error {
	return s.transaction(ctx, func(tx *gorm.DB) error {
		return fn(ctx, repository.New(tx))
	})
}

func (s *Store) transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.WithContext(ctx).Transaction(fn)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
