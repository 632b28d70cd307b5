package store

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/veridex/veridex/internal/model"
	"github.com/veridex/veridex/pkg/logger"
	"github.com/veridex/veridex/pkg/telemetry"
)

// FetchFunc retrieves a payload from an upstream service on a cache miss.
type FetchFunc func(ctx context.Context) (model.JSONMap, error)

// CachedDomainCredibility returns the domain credibility payload for a
// domain, going through the cache. A fresh entry is served directly; a
// miss or expired entry triggers fetch and re-caching. When the fetch
// fails and an expired entry exists, the stale payload is served instead
// of failing the review.
func CachedDomainCredibility(ctx context.Context, s Store, domain string, ttl time.Duration, fetch FetchFunc) (model.JSONMap, error) {
	entry, err := s.DomainCredibility().Get(domain)
	if err != nil {
		logger.Warn("Domain credibility cache read failed",
			zap.String("domain", domain),
			zap.Error(err),
		)
		entry = nil
	}

	now := time.Now().UTC()
	if entry != nil && !entry.Expired(now) {
		telemetry.GetMetrics().RecordCacheLookup(ctx, "domain_credibility", true)
		return entry.Payload, nil
	}
	telemetry.GetMetrics().RecordCacheLookup(ctx, "domain_credibility", false)

	payload, err := fetch(ctx)
	if err != nil {
		if entry != nil {
			logger.Warn("Serving stale domain credibility, upstream fetch failed",
				zap.String("domain", domain),
				zap.Error(err),
			)
			return entry.Payload, nil
		}
		return nil, err
	}

	if err := s.DomainCredibility().Put(domain, payload, ttl); err != nil {
		logger.Warn("Failed to cache domain credibility",
			zap.String("domain", domain),
			zap.Error(err),
		)
	}
	return payload, nil
}

// CachedBotDescriptor returns the descriptor a service publishes for one
// of its reviewer bots, going through the cache with the same freshness
// and stale-fallback rules as CachedDomainCredibility.
func CachedBotDescriptor(ctx context.Context, s Store, service, name string, ttl time.Duration, fetch FetchFunc) (model.JSONMap, error) {
	entry, err := s.BotDescriptors().Get(service, name)
	if err != nil {
		logger.Warn("Bot descriptor cache read failed",
			zap.String("service", service),
			zap.String("bot", name),
			zap.Error(err),
		)
		entry = nil
	}

	now := time.Now().UTC()
	if entry != nil && !entry.Expired(now) {
		telemetry.GetMetrics().RecordCacheLookup(ctx, "bot_descriptor", true)
		return entry.Payload, nil
	}
	telemetry.GetMetrics().RecordCacheLookup(ctx, "bot_descriptor", false)

	payload, err := fetch(ctx)
	if err != nil {
		if entry != nil {
			logger.Warn("Serving stale bot descriptor, upstream fetch failed",
				zap.String("service", service),
				zap.String("bot", name),
				zap.Error(err),
			)
			return entry.Payload, nil
		}
		return nil, err
	}

	if err := s.BotDescriptors().Put(service, name, payload, ttl); err != nil {
		logger.Warn("Failed to cache bot descriptor",
			zap.String("service", service),
			zap.String("bot", name),
			zap.Error(err),
		)
	}
	return payload, nil
}
