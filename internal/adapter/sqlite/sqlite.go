// Package sqlite implements domain.KVStore on a local SQLite file using GORM.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"tesnim/internal/domain"
)

var _ domain.KVStore = (*KV)(nil)

type entry struct {
	Name      string `gorm:"primaryKey"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

func (entry) TableName() string { return "kv" }

// KV stores client state in one SQLite table.
type KV struct {
	db *gorm.DB
}

// Open opens (or creates) the database at path and migrates the schema.
// ":memory:" gives a throwaway store.
func Open(path string) (*KV, error) {
	db, err := gorm.Open(gormsqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(&entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &KV{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *KV) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Get returns the value stored under key.
func (s *KV) Get(ctx context.Context, key string) (string, bool, error) {
	var e entry
	if err := s.db.WithContext(ctx).First(&e, "name = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return e.Value, true, nil
}

// Set stores one value.
func (s *KV) Set(ctx context.Context, key, value string) error {
	return upsert(s.db.WithContext(ctx), key, value)
}

// SetMany stores every pair in one transaction.
func (s *KV) SetMany(ctx context.Context, values map[string]string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for k, v := range values {
			if err := upsert(tx, k, v); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes the keys.
func (s *KV) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Where("name IN ?", keys).Delete(&entry{}).Error; err != nil {
		return fmt.Errorf("failed to delete keys: %w", err)
	}
	return nil
}

func upsert(db *gorm.DB, key, value string) error {
	e := entry{Name: key, Value: value}
	if err := db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&e).Error; err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
