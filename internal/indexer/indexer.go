// Package indexer emits finished review graphs to an external indexing
// service over HTTP. Emission is best effort: the review request that
// produced the graph has already been answered, so indexer failures are
// logged and absorbed rather than surfaced.
package indexer

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/veridex/veridex/internal/config"
	"github.com/veridex/veridex/internal/item"
	"github.com/veridex/veridex/pkg/logger"
)

const defaultTimeout = 10 * time.Second

// Emitter posts review graphs to the configured indexer endpoint.
type Emitter struct {
	cfg    config.IndexerConfig
	client *http.Client
}

// Payload is the JSON document sent per finished top-level review.
type Payload struct {
	// ReviewType is the @type of the emitted review
	ReviewType string `json:"review_type"`
	// Identifier is the review's content-addressable identifier
	Identifier string `json:"identifier"`
	// Review is the full review graph
	Review item.M `json:"review"`
	// Timestamp in RFC3339 format
	Timestamp string `json:"timestamp"`
}

// New creates an emitter for the configured indexer.
func New(cfg config.IndexerConfig) *Emitter {
	timeout := defaultTimeout
	if cfg.Timeout > 0 {
		timeout = time.Duration(cfg.Timeout) * time.Second
	}
	return &Emitter{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether review graphs are emitted at all.
func (e *Emitter) Enabled() bool {
	return e.cfg.Enabled && e.cfg.URL != ""
}

// Emit posts the finished reviews to the indexer. Failures are logged and
// absorbed; the caller's response does not depend on the indexer.
func (e *Emitter) Emit(ctx context.Context, reviews []item.M) {
	if !e.Enabled() {
		return
	}
	for _, rev := range reviews {
		if err := e.emit(ctx, rev); err != nil {
			logger.Warn("Failed to emit review graph to indexer",
				zap.String("url", e.cfg.URL),
				zap.String("review_type", item.Type(rev)),
				zap.Error(err))
		}
	}
}

func (e *Emitter) emit(ctx context.Context, rev item.M) error {
	payload := Payload{
		ReviewType: item.Type(rev),
		Identifier: item.Str(rev, "identifier", ""),
		Review:     rev,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal indexer payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create indexer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.cfg.Secret != "" {
		req.Header.Set("X-Veridex-Signature", e.computeSignature(body))
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send indexer request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("indexer returned non-success status: %d, body: %s",
			resp.StatusCode, string(respBody))
	}
	logger.Debug("Emitted review graph to indexer",
		zap.String("identifier", payload.Identifier),
		zap.Int("status_code", resp.StatusCode))
	return nil
}

// computeSignature computes the HMAC-SHA256 signature for the payload.
func (e *Emitter) computeSignature(payload []byte) string {
	mac := hmac.New(sha256.New, []byte(e.cfg.Secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
