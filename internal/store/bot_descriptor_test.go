package store

import (
	"testing"
	"time"

	"github.com/veridex/veridex/internal/model"
)

// TestBotDescriptorStore_PutAndGet tests caching and retrieving a descriptor
func TestBotDescriptorStore_PutAndGet(t *testing.T) {
	store, cleanup := SetupTestDB(t)
	defer cleanup()

	payload := model.JSONMap{
		"@type":           "SentSimilarityReviewer",
		"name":            "Semantic Similarity Reviewer",
		"softwareVersion": "0.2.1",
	}

	err := store.BotDescriptors().Put("claim_search", "simReviewer", payload, time.Hour)
	if err != nil {
		t.Fatalf("Put() failed: %v", err)
	}

	entry, err := store.BotDescriptors().Get("claim_search", "simReviewer")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if entry == nil {
		t.Fatal("Get() returned nil for a cached descriptor")
	}

	if entry.Service != "claim_search" {
		t.Errorf("Expected Service 'claim_search', got '%s'", entry.Service)
	}
	if entry.Name != "simReviewer" {
		t.Errorf("Expected Name 'simReviewer', got '%s'", entry.Name)
	}
	if entry.Payload["softwareVersion"] != "0.2.1" {
		t.Errorf("Expected softwareVersion '0.2.1', got %v", entry.Payload["softwareVersion"])
	}
}

// TestBotDescriptorStore_GetMissing tests retrieving an uncached descriptor
func TestBotDescriptorStore_GetMissing(t *testing.T) {
	store, cleanup := SetupTestDB(t)
	defer cleanup()

	entry, err := store.BotDescriptors().Get("worthiness", "predictor")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if entry != nil {
		t.Errorf("Expected nil for uncached descriptor, got %+v", entry)
	}
}

// TestBotDescriptorStore_KeyedByServiceAndName tests that the same bot
// name under different services maps to distinct entries
func TestBotDescriptorStore_KeyedByServiceAndName(t *testing.T) {
	store, cleanup := SetupTestDB(t)
	defer cleanup()

	CreateTestBotDescriptor(t, store, "claim_search", "predictor", time.Hour)
	CreateTestBotDescriptor(t, store, "worthiness", "predictor", time.Hour)

	count, err := store.BotDescriptors().Count()
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 entries for distinct services, got %d", count)
	}
}

// TestBotDescriptorStore_PutReplacesExisting tests the upsert behavior
func TestBotDescriptorStore_PutReplacesExisting(t *testing.T) {
	store, cleanup := SetupTestDB(t)
	defer cleanup()

	first := model.JSONMap{"softwareVersion": "0.1.0"}
	second := model.JSONMap{"softwareVersion": "0.2.0"}

	if err := store.BotDescriptors().Put("claim_search", "stancePred", first, time.Hour); err != nil {
		t.Fatalf("first Put() failed: %v", err)
	}
	if err := store.BotDescriptors().Put("claim_search", "stancePred", second, time.Hour); err != nil {
		t.Fatalf("second Put() failed: %v", err)
	}

	count, err := store.BotDescriptors().Count()
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 entry after upsert, got %d", count)
	}

	entry, err := store.BotDescriptors().Get("claim_search", "stancePred")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if entry.Payload["softwareVersion"] != "0.2.0" {
		t.Errorf("Expected softwareVersion '0.2.0', got %v", entry.Payload["softwareVersion"])
	}
}

// TestBotDescriptorStore_DeleteExpired tests the sweep query
func TestBotDescriptorStore_DeleteExpired(t *testing.T) {
	store, cleanup := SetupTestDB(t)
	defer cleanup()

	CreateTestBotDescriptor(t, store, "claim_search", "simReviewer", time.Hour)
	CreateTestBotDescriptor(t, store, "claim_search", "stancePred", -time.Minute)

	deleted, err := store.BotDescriptors().DeleteExpired(time.Now().UTC())
	if err != nil {
		t.Fatalf("DeleteExpired() failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("Expected 1 deleted entry, got %d", deleted)
	}

	entry, err := store.BotDescriptors().Get("claim_search", "simReviewer")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if entry == nil {
		t.Error("Fresh descriptor should survive the sweep")
	}
}
