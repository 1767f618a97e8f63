package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"smartbuy-backend/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	SetItems(ctx context.Context, items map[string]string) error
	RemoveItem(ctx context.Context, key string) error
	StaffSubscriptions(ctx context.Context) ([]model.PushSubscription, error)
	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db, now: time.Now}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// GetItem reads a local storage value. The bool is false when the key is absent.
func (s *gormStore) GetItem(ctx context.Context, key string) (string, bool, error) {
	var item model.LocalItem
	err := s.db.WithContext(ctx).Where("key = ?", key).Take(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read local item %q: %w", key, err)
	}
	return item.Value, true, nil
}

// SetItem upserts a single key.
func (s *gormStore) SetItem(ctx context.Context, key, value string) error {
	return s.SetItems(ctx, map[string]string{key: value})
}

// SetItems upserts several keys in one transaction, so readers never see a
// basket without its total.
func (s *gormStore) SetItems(ctx context.Context, items map[string]string) error {
	if len(items) == 0 {
		return nil
	}

	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	now := s.now().UTC()
	rows := make([]model.LocalItem, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, model.LocalItem{Key: k, Value: items[k], UpdatedAt: now})
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to upsert %d local items: %w", len(rows), err)
		}
		return nil
	})
}

// RemoveItem deletes a key. Removing an absent key is not an error.
func (s *gormStore) RemoveItem(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("key = ?", key).Delete(&model.LocalItem{}).Error; err != nil {
		return fmt.Errorf("failed to remove local item %q: %w", key, err)
	}
	return nil
}

// StaffSubscriptions lists the push subscriptions that receive assistance requests.
func (s *gormStore) StaffSubscriptions(ctx context.Context) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := s.db.WithContext(ctx).Where("role = ?", model.RoleStaff).Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch staff subscriptions: %w", err)
	}
	return subs, nil
}
