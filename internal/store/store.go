// Package store provides the data access layer for cached upstream
// responses. Credibility lookups and bot descriptors fetched from the
// collaborator services are kept in a local SQLite database so repeated
// reviews do not hammer the upstreams.
package store

import "gorm.io/gorm"

// Store aggregates all cache store interfaces.
// It provides a single point of access for all database operations.
type Store interface {
	DomainCredibility() DomainCredibilityStore
	BotDescriptors() BotDescriptorStore

	// DB returns the underlying database connection for advanced operations.
	// Use sparingly - prefer using specific store methods.
	DB() *gorm.DB

	// Transaction executes operations within a database transaction.
	Transaction(fn func(Store) error) error
}

// gormStore implements Store interface using GORM.
type gormStore struct {
	db              *gorm.DB
	domainCredStore DomainCredibilityStore
	botDescStore    BotDescriptorStore
}

// NewStore creates a new Store instance with GORM backend.
func NewStore(db *gorm.DB) Store {
	return &gormStore{
		db:              db,
		domainCredStore: newDomainCredibilityStore(db),
		botDescStore:    newBotDescriptorStore(db),
	}
}

func (s *gormStore) DomainCredibility() DomainCredibilityStore {
	return s.domainCredStore
}

func (s *gormStore) BotDescriptors() BotDescriptorStore {
	return s.botDescStore
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func (s *gormStore) Transaction(fn func(Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		txStore := &gormStore{
			db:              tx,
			domainCredStore: newDomainCredibilityStore(tx),
			botDescStore:    newBotDescriptorStore(tx),
		}
		return fn(txStore)
	})
}
