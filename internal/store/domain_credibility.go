package store

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/veridex/veridex/internal/model"
)

// DomainCredibilityStore defines cache operations for domain credibility
// assessments fetched from the external source credibility service.
type DomainCredibilityStore interface {
	// Get returns the cached entry for a domain, or nil when the domain
	// has never been cached. Expired entries are still returned so
	// callers can fall back to stale data when the upstream is down.
	Get(domain string) (*model.DomainCredibilityCache, error)

	// Put inserts or replaces the cached entry for a domain.
	Put(domain string, payload model.JSONMap, ttl time.Duration) error

	// Delete removes the cached entry for a domain.
	Delete(domain string) error

	// DeleteExpired removes all entries that expired before now and
	// returns the number of rows deleted.
	DeleteExpired(now time.Time) (int64, error)

	// Query operations
	Count() (int64, error)

	// Transaction support
	WithTx(tx *gorm.DB) DomainCredibilityStore
}

// domainCredibilityStore implements DomainCredibilityStore using GORM.
type domainCredibilityStore struct {
	db *gorm.DB
}

func newDomainCredibilityStore(db *gorm.DB) DomainCredibilityStore {
	return &domainCredibilityStore{db: db}
}

func (s *domainCredibilityStore) Get(domain string) (*model.DomainCredibilityCache, error) {
	var entry model.DomainCredibilityCache
	err := s.db.Where("domain = ?", domain).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *domainCredibilityStore) Put(domain string, payload model.JSONMap, ttl time.Duration) error {
	now := time.Now().UTC()

	return s.db.Transaction(func(tx *gorm.DB) error {
		// Try to find existing record
		var existing model.DomainCredibilityCache
		err := tx.Where("domain = ?", domain).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Create new record
			entry := model.DomainCredibilityCache{
				Domain:    domain,
				Payload:   payload,
				FetchedAt: now,
				ExpiresAt: now.Add(ttl),
			}
			return tx.Create(&entry).Error
		} else if err != nil {
			return err
		}

		// Update existing record
		existing.Payload = payload
		existing.FetchedAt = now
		existing.ExpiresAt = now.Add(ttl)
		return tx.Save(&existing).Error
	})
}

func (s *domainCredibilityStore) Delete(domain string) error {
	return s.db.Where("domain = ?", domain).Delete(&model.DomainCredibilityCache{}).Error
}

func (s *domainCredibilityStore) DeleteExpired(now time.Time) (int64, error) {
	result := s.db.Where("expires_at < ?", now).Delete(&model.DomainCredibilityCache{})
	return result.RowsAffected, result.Error
}

func (s *domainCredibilityStore) Count() (int64, error) {
	var count int64
	err := s.db.Model(&model.DomainCredibilityCache{}).Count(&count).Error
	return count, err
}

func (s *domainCredibilityStore) WithTx(tx *gorm.DB) DomainCredibilityStore {
	return &domainCredibilityStore{db: tx}
}
