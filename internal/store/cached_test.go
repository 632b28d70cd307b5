package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/veridex/veridex/internal/model"
)

// TestCachedDomainCredibility_FreshHitSkipsFetch tests that a fresh
// entry is served without calling the fetch func
func TestCachedDomainCredibility_FreshHitSkipsFetch(t *testing.T) {
	store, cleanup := SetupTestDB(t)
	defer cleanup()

	CreateTestDomainCredibility(t, store, "example.com", 0.5, 0.8, time.Hour)

	fetched := false
	payload, err := CachedDomainCredibility(context.Background(), store, "example.com", time.Hour,
		func(ctx context.Context) (model.JSONMap, error) {
			fetched = true
			return nil, nil
		})
	if err != nil {
		t.Fatalf("CachedDomainCredibility() error = %v", err)
	}
	if fetched {
		t.Error("fetch should not run on a fresh cache hit")
	}
	if payload["item_assessed"] != "example.com" {
		t.Errorf("Expected cached payload, got %v", payload)
	}
}

// TestCachedDomainCredibility_MissFetchesAndCaches tests the miss path
func TestCachedDomainCredibility_MissFetchesAndCaches(t *testing.T) {
	store, cleanup := SetupTestDB(t)
	defer cleanup()

	payload, err := CachedDomainCredibility(context.Background(), store, "fresh.example", time.Hour,
		func(ctx context.Context) (model.JSONMap, error) {
			return model.JSONMap{"value": 0.9}, nil
		})
	if err != nil {
		t.Fatalf("CachedDomainCredibility() error = %v", err)
	}
	if payload["value"] != 0.9 {
		t.Errorf("Expected fetched payload, got %v", payload)
	}

	entry, err := store.DomainCredibility().Get("fresh.example")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if entry == nil {
		t.Fatal("Fetched payload should have been cached")
	}
}

// TestCachedDomainCredibility_StaleServedOnFetchError tests the stale
// fallback when the upstream is down
func TestCachedDomainCredibility_StaleServedOnFetchError(t *testing.T) {
	store, cleanup := SetupTestDB(t)
	defer cleanup()

	CreateTestDomainCredibility(t, store, "stale.example", 0.3, 0.6, -time.Minute)

	payload, err := CachedDomainCredibility(context.Background(), store, "stale.example", time.Hour,
		func(ctx context.Context) (model.JSONMap, error) {
			return nil, errors.New("upstream down")
		})
	if err != nil {
		t.Fatalf("Expected stale payload, got error %v", err)
	}
	if payload["item_assessed"] != "stale.example" {
		t.Errorf("Expected stale cached payload, got %v", payload)
	}
}

// TestCachedDomainCredibility_ErrorWithoutStale tests that the fetch
// error surfaces when there is nothing to fall back to
func TestCachedDomainCredibility_ErrorWithoutStale(t *testing.T) {
	store, cleanup := SetupTestDB(t)
	defer cleanup()

	wantErr := errors.New("upstream down")
	_, err := CachedDomainCredibility(context.Background(), store, "unknown.example", time.Hour,
		func(ctx context.Context) (model.JSONMap, error) {
			return nil, wantErr
		})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Expected fetch error, got %v", err)
	}
}

// TestCachedDomainCredibility_ExpiredRefetched tests that an expired
// entry is replaced by a successful fetch
func TestCachedDomainCredibility_ExpiredRefetched(t *testing.T) {
	store, cleanup := SetupTestDB(t)
	defer cleanup()

	CreateTestDomainCredibility(t, store, "expired.example", 0.3, 0.6, -time.Minute)

	payload, err := CachedDomainCredibility(context.Background(), store, "expired.example", time.Hour,
		func(ctx context.Context) (model.JSONMap, error) {
			return model.JSONMap{"refetched": true}, nil
		})
	if err != nil {
		t.Fatalf("CachedDomainCredibility() error = %v", err)
	}
	if payload["refetched"] != true {
		t.Errorf("Expected refetched payload, got %v", payload)
	}

	entry, err := store.DomainCredibility().Get("expired.example")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if entry.Expired(time.Now().UTC()) {
		t.Error("Refetched entry should be fresh again")
	}
}

// TestCachedBotDescriptor_RoundTrip tests miss-then-hit for descriptors
func TestCachedBotDescriptor_RoundTrip(t *testing.T) {
	store, cleanup := SetupTestDB(t)
	defer cleanup()

	calls := 0
	fetch := func(ctx context.Context) (model.JSONMap, error) {
		calls++
		return model.JSONMap{"name": "predictor"}, nil
	}

	for i := 0; i < 2; i++ {
		payload, err := CachedBotDescriptor(context.Background(), store, "worthiness", "predictor", time.Hour, fetch)
		if err != nil {
			t.Fatalf("CachedBotDescriptor() error = %v", err)
		}
		if payload["name"] != "predictor" {
			t.Errorf("Expected descriptor payload, got %v", payload)
		}
	}
	if calls != 1 {
		t.Errorf("Expected a single fetch across two lookups, got %d", calls)
	}
}
