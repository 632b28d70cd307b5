package store

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/veridex/veridex/internal/model"
)

// BotDescriptorStore defines cache operations for reviewer bot
// descriptors. Upstream services describe themselves (name, version,
// model identifiers) and those descriptions change rarely, so they are
// cached per (service, name) pair.
type BotDescriptorStore interface {
	// Get returns the cached descriptor for a service and bot name, or
	// nil when none has been cached. Expired entries are still returned
	// so callers can fall back to stale data when the upstream is down.
	Get(service, name string) (*model.BotDescriptorCache, error)

	// Put inserts or replaces the cached descriptor.
	Put(service, name string, payload model.JSONMap, ttl time.Duration) error

	// Delete removes the cached descriptor for a service and bot name.
	Delete(service, name string) error

	// DeleteExpired removes all entries that expired before now and
	// returns the number of rows deleted.
	DeleteExpired(now time.Time) (int64, error)

	// Query operations
	Count() (int64, error)

	// Transaction support
	WithTx(tx *gorm.DB) BotDescriptorStore
}

// botDescriptorStore implements BotDescriptorStore using GORM.
type botDescriptorStore struct {
	db *gorm.DB
}

func newBotDescriptorStore(db *gorm.DB) BotDescriptorStore {
	return &botDescriptorStore{db: db}
}

func (s *botDescriptorStore) Get(service, name string) (*model.BotDescriptorCache, error) {
	var entry model.BotDescriptorCache
	err := s.db.Where("service = ? AND name = ?", service, name).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *botDescriptorStore) Put(service, name string, payload model.JSONMap, ttl time.Duration) error {
	now := time.Now().UTC()

	return s.db.Transaction(func(tx *gorm.DB) error {
		var existing model.BotDescriptorCache
		err := tx.Where("service = ? AND name = ?", service, name).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			entry := model.BotDescriptorCache{
				Service:   service,
				Name:      name,
				Payload:   payload,
				FetchedAt: now,
				ExpiresAt: now.Add(ttl),
			}
			return tx.Create(&entry).Error
		} else if err != nil {
			return err
		}

		existing.Payload = payload
		existing.FetchedAt = now
		existing.ExpiresAt = now.Add(ttl)
		return tx.Save(&existing).Error
	})
}

func (s *botDescriptorStore) Delete(service, name string) error {
	return s.db.Where("service = ? AND name = ?", service, name).Delete(&model.BotDescriptorCache{}).Error
}

func (s *botDescriptorStore) DeleteExpired(now time.Time) (int64, error) {
	result := s.db.Where("expires_at < ?", now).Delete(&model.BotDescriptorCache{})
	return result.RowsAffected, result.Error
}

func (s *botDescriptorStore) Count() (int64, error) {
	var count int64
	err := s.db.Model(&model.BotDescriptorCache{}).Count(&count).Error
	return count, err
}

func (s *botDescriptorStore) WithTx(tx *gorm.DB) BotDescriptorStore {
	return &botDescriptorStore{db: tx}
}
