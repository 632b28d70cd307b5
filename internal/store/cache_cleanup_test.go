package store

import (
	"testing"
	"time"
)

// TestCacheCleanupService_Sweep tests that a sweep removes expired
// entries from both caches and keeps fresh ones
func TestCacheCleanupService_Sweep(t *testing.T) {
	store, cleanup := SetupTestDB(t)
	defer cleanup()

	CreateTestDomainCredibility(t, store, "fresh.example", 0.5, 0.8, time.Hour)
	CreateTestDomainCredibility(t, store, "stale.example", 0.1, 0.5, -time.Minute)
	CreateTestBotDescriptor(t, store, "claim_search", "simReviewer", time.Hour)
	CreateTestBotDescriptor(t, store, "worthiness", "predictor", -time.Minute)

	service := NewCacheCleanupService(store, "")
	service.sweep()

	domainCount, err := store.DomainCredibility().Count()
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if domainCount != 1 {
		t.Errorf("Expected 1 domain entry after sweep, got %d", domainCount)
	}

	botCount, err := store.BotDescriptors().Count()
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if botCount != 1 {
		t.Errorf("Expected 1 bot descriptor after sweep, got %d", botCount)
	}
}

// TestCacheCleanupService_DefaultSchedule tests the schedule fallback
func TestCacheCleanupService_DefaultSchedule(t *testing.T) {
	store, cleanup := SetupTestDB(t)
	defer cleanup()

	service := NewCacheCleanupService(store, "")
	if service.schedule != DefaultCacheSweepSchedule {
		t.Errorf("Expected default schedule %q, got %q", DefaultCacheSweepSchedule, service.schedule)
	}

	service = NewCacheCleanupService(store, "*/5 * * * *")
	if service.schedule != "*/5 * * * *" {
		t.Errorf("Expected configured schedule to be kept, got %q", service.schedule)
	}
}

// TestCacheCleanupService_InvalidSchedule tests that Start rejects a
// malformed cron expression
func TestCacheCleanupService_InvalidSchedule(t *testing.T) {
	store, cleanup := SetupTestDB(t)
	defer cleanup()

	service := NewCacheCleanupService(store, "not a cron spec")
	if err := service.Start(); err == nil {
		t.Error("Start() should fail for an invalid schedule")
		service.Stop()
	}
}

// TestCacheCleanupService_StartStop tests the service lifecycle
func TestCacheCleanupService_StartStop(t *testing.T) {
	store, cleanup := SetupTestDB(t)
	defer cleanup()

	service := NewCacheCleanupService(store, DefaultCacheSweepSchedule)
	if err := service.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	// Give the initial sweep goroutine a chance to finish before the
	// database is torn down
	time.Sleep(50 * time.Millisecond)

	service.Stop()
}
