// Package telemetry provides OpenTelemetry integration for the application.
package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/veridex/veridex/pkg/logger"
)

const (
	// MeterName is the default meter name for the application
	MeterName = "github.com/veridex/veridex"
)

// Metrics holds all application metrics
type Metrics struct {
	// Review metrics
	ReviewsTotal   metric.Int64Counter
	ReviewDuration metric.Float64Histogram
	ActiveReviews  metric.Int64UpDownCounter
	ReviewsByLabel metric.Int64Counter

	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram

	// Upstream collaborator metrics
	UpstreamRequestsTotal   metric.Int64Counter
	UpstreamRequestDuration metric.Float64Histogram

	// Cache metrics
	CacheHitsTotal   metric.Int64Counter
	CacheMissesTotal metric.Int64Counter
}

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// GetMetrics returns the global metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		var err error
		globalMetrics, err = initMetrics()
		if err != nil {
			logger.Error("Failed to initialize metrics", zap.Error(err))
			// Return empty metrics to avoid nil pointer
			globalMetrics = &Metrics{}
		}
	})
	return globalMetrics
}

// initMetrics initializes all application metrics
func initMetrics() (*Metrics, error) {
	meter := otel.Meter(MeterName)
	m := &Metrics{}

	var err error

	// Review metrics
	m.ReviewsTotal, err = meter.Int64Counter(
		"veridex_reviews_total",
		metric.WithDescription("Total number of credibility reviews"),
		metric.WithUnit("{review}"),
	)
	if err != nil {
		return nil, err
	}

	m.ReviewDuration, err = meter.Float64Histogram(
		"veridex_review_duration_seconds",
		metric.WithDescription("Duration of credibility reviews in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120),
	)
	if err != nil {
		return nil, err
	}

	m.ActiveReviews, err = meter.Int64UpDownCounter(
		"veridex_active_reviews",
		metric.WithDescription("Number of currently active review requests"),
		metric.WithUnit("{review}"),
	)
	if err != nil {
		return nil, err
	}

	m.ReviewsByLabel, err = meter.Int64Counter(
		"veridex_reviews_by_label_total",
		metric.WithDescription("Total number of reviews by credibility label"),
		metric.WithUnit("{review}"),
	)
	if err != nil {
		return nil, err
	}

	// HTTP metrics
	m.HTTPRequestsTotal, err = meter.Int64Counter(
		"veridex_http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	m.HTTPRequestDuration, err = meter.Float64Histogram(
		"veridex_http_request_duration_seconds",
		metric.WithDescription("Duration of HTTP requests in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	)
	if err != nil {
		return nil, err
	}

	// Upstream collaborator metrics
	m.UpstreamRequestsTotal, err = meter.Int64Counter(
		"veridex_upstream_requests_total",
		metric.WithDescription("Total number of upstream collaborator requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	m.UpstreamRequestDuration, err = meter.Float64Histogram(
		"veridex_upstream_request_duration_seconds",
		metric.WithDescription("Duration of upstream collaborator requests in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30),
	)
	if err != nil {
		return nil, err
	}

	// Cache metrics
	m.CacheHitsTotal, err = meter.Int64Counter(
		"veridex_cache_hits_total",
		metric.WithDescription("Total number of upstream cache hits"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	m.CacheMissesTotal, err = meter.Int64Counter(
		"veridex_cache_misses_total",
		metric.WithDescription("Total number of upstream cache misses"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	logger.Info("Metrics initialized successfully")
	return m, nil
}

// RecordReviewStarted records that a review has started
func (m *Metrics) RecordReviewStarted(ctx context.Context, itemType string) {
	if m.ReviewsTotal == nil {
		return
	}
	m.ReviewsTotal.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("item_type", itemType),
		),
	)
	if m.ActiveReviews != nil {
		m.ActiveReviews.Add(ctx, 1)
	}
}

// RecordReviewCompleted records that a review has completed
func (m *Metrics) RecordReviewCompleted(ctx context.Context, itemType, label string, durationSeconds float64) {
	if m.ActiveReviews != nil {
		m.ActiveReviews.Add(ctx, -1)
	}
	if m.ReviewsByLabel != nil {
		m.ReviewsByLabel.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("item_type", itemType),
				attribute.String("label", label),
			),
		)
	}
	if m.ReviewDuration != nil {
		m.ReviewDuration.Record(ctx, durationSeconds,
			metric.WithAttributes(attribute.String("item_type", itemType)),
		)
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, durationSeconds float64) {
	if m.HTTPRequestsTotal != nil {
		m.HTTPRequestsTotal.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("method", method),
				attribute.String("path", path),
				attribute.Int("status_code", statusCode),
			),
		)
	}
	if m.HTTPRequestDuration != nil {
		m.HTTPRequestDuration.Record(ctx, durationSeconds,
			metric.WithAttributes(
				attribute.String("method", method),
				attribute.String("path", path),
			),
		)
	}
}

// RecordUpstreamRequest records a request to an upstream collaborator service
func (m *Metrics) RecordUpstreamRequest(ctx context.Context, service string, success bool, durationSeconds float64) {
	if m.UpstreamRequestsTotal != nil {
		m.UpstreamRequestsTotal.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("service", service),
				attribute.Bool("success", success),
			),
		)
	}
	if m.UpstreamRequestDuration != nil {
		m.UpstreamRequestDuration.Record(ctx, durationSeconds,
			metric.WithAttributes(
				attribute.String("service", service),
				attribute.Bool("success", success),
			),
		)
	}
}

// RecordCacheLookup records a hit or miss against one of the upstream caches
func (m *Metrics) RecordCacheLookup(ctx context.Context, cache string, hit bool) {
	if hit {
		if m.CacheHitsTotal != nil {
			m.CacheHitsTotal.Add(ctx, 1,
				metric.WithAttributes(attribute.String("cache", cache)),
			)
		}
		return
	}
	if m.CacheMissesTotal != nil {
		m.CacheMissesTotal.Add(ctx, 1,
			metric.WithAttributes(attribute.String("cache", cache)),
		)
	}
}
