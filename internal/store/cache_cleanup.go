package store

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/veridex/veridex/pkg/logger"
)

// DefaultCacheSweepSchedule is the cron schedule used when the
// configuration does not provide one (top of every hour).
const DefaultCacheSweepSchedule = "0 * * * *"

// CacheCleanupService periodically removes expired cache entries.
// Expired rows are kept between sweeps so reviewers can serve stale
// data while an upstream is unreachable.
type CacheCleanupService struct {
	store    Store
	cron     *cron.Cron
	schedule string
	entryID  cron.EntryID
	mu       sync.RWMutex
}

// NewCacheCleanupService creates a new cache cleanup service.
// An empty schedule falls back to DefaultCacheSweepSchedule.
func NewCacheCleanupService(store Store, schedule string) *CacheCleanupService {
	if schedule == "" {
		schedule = DefaultCacheSweepSchedule
	}

	return &CacheCleanupService{
		store:    store,
		cron:     cron.New(),
		schedule: schedule,
	}
}

// Start starts the cleanup service with the configured sweep schedule.
func (s *CacheCleanupService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entryID, err := s.cron.AddFunc(s.schedule, s.sweep)
	if err != nil {
		logger.Error("Failed to schedule cache sweep", zap.Error(err))
		return err
	}

	s.entryID = entryID
	s.cron.Start()

	logger.Info("Cache cleanup service started",
		zap.String("schedule", s.schedule),
	)

	// Run initial sweep immediately (non-blocking)
	go s.sweep()

	return nil
}

// Stop stops the cleanup service gracefully.
func (s *CacheCleanupService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		logger.Info("Stopping cache cleanup service")
		ctx := s.cron.Stop()
		<-ctx.Done()
		logger.Info("Cache cleanup service stopped")
	}
}

// sweep deletes all cache entries that have passed their expiry.
func (s *CacheCleanupService) sweep() {
	startTime := time.Now()
	now := startTime.UTC()

	domainsDeleted, err := s.store.DomainCredibility().DeleteExpired(now)
	if err != nil {
		logger.Error("Failed to sweep domain credibility cache", zap.Error(err))
		return
	}

	botsDeleted, err := s.store.BotDescriptors().DeleteExpired(now)
	if err != nil {
		logger.Error("Failed to sweep bot descriptor cache", zap.Error(err))
		return
	}

	duration := time.Since(startTime)
	logger.Info("Cache sweep completed",
		zap.Int64("domains_deleted", domainsDeleted),
		zap.Int64("bots_deleted", botsDeleted),
		zap.Duration("duration", duration),
	)
}
