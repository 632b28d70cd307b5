// Package store provides test utilities for database testing.
package store

import (
	"os"
	"testing"
	"time"

	"github.com/veridex/veridex/internal/database"
	"github.com/veridex/veridex/internal/model"
)

// SetupTestDB creates a file-backed SQLite database for testing.
// It returns a Store instance and a cleanup function.
// The cleanup function should be called with defer in tests.
func SetupTestDB(t *testing.T) (Store, func()) {
	// Reset database state to allow re-initialization
	database.ResetForTesting()

	// Create temporary database file
	tmpFile, err := os.CreateTemp("", "test_*.db")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()

	// Initialize database with temp path
	if err := database.InitWithPath(tmpPath); err != nil {
		os.Remove(tmpPath)
		t.Fatalf("Failed to initialize test database: %v", err)
	}

	db := database.Get()
	store := NewStore(db)

	// Cleanup function
	cleanup := func() {
		database.Close()
		database.ResetForTesting()
		os.Remove(tmpPath)
	}

	return store, cleanup
}

// CreateTestDomainCredibility caches a minimal domain credibility
// payload for the given domain. A negative ttl produces an entry that
// is already expired.
func CreateTestDomainCredibility(t *testing.T, store Store, domain string, value, confidence float64, ttl time.Duration) *model.DomainCredibilityCache {
	payload := model.JSONMap{
		"@type": "DomainCredibility",
		"credibility": map[string]any{
			"value":      value,
			"confidence": confidence,
		},
		"assessments":   []any{},
		"item_assessed": domain,
	}

	if err := store.DomainCredibility().Put(domain, payload, ttl); err != nil {
		t.Fatalf("Failed to cache test domain credibility: %v", err)
	}

	entry, err := store.DomainCredibility().Get(domain)
	if err != nil {
		t.Fatalf("Failed to read back test domain credibility: %v", err)
	}
	return entry
}

// CreateTestBotDescriptor caches a minimal bot descriptor payload for
// the given service and bot name.
func CreateTestBotDescriptor(t *testing.T, store Store, service, name string, ttl time.Duration) *model.BotDescriptorCache {
	payload := model.JSONMap{
		"@type":           name,
		"name":            name,
		"softwareVersion": "0.1.0",
	}

	if err := store.BotDescriptors().Put(service, name, payload, ttl); err != nil {
		t.Fatalf("Failed to cache test bot descriptor: %v", err)
	}

	entry, err := store.BotDescriptors().Get(service, name)
	if err != nil {
		t.Fatalf("Failed to read back test bot descriptor: %v", err)
	}
	return entry
}
