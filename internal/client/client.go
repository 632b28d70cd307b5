// Package client implements HTTP clients for the upstream collaborator
// services that supply evidence for credibility reviews: semantic claim
// search, check-worthiness prediction, website credibility lookups, article
// analysis and the tweet store.
//
// All clients share a common JSON transport with per-service circuit
// breaking. Failures are reported as pkg/errors upstream codes so callers
// can decide whether to absorb them into low-confidence ratings or surface
// them to the API layer.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/veridex/veridex/consts"
	"github.com/veridex/veridex/internal/config"
	pkgerrors "github.com/veridex/veridex/pkg/errors"
	"github.com/veridex/veridex/pkg/logger"
	"github.com/veridex/veridex/pkg/telemetry"
)

const (
	defaultTimeout = 30 * time.Second

	// breakerCooldown is how long an open breaker waits before letting a
	// probe request through.
	breakerCooldown = 30 * time.Second

	// breakerFailureThreshold is the number of consecutive failures that
	// trips the breaker.
	breakerFailureThreshold = 5

	// maxErrorBodyBytes limits how much of an error response body is kept
	// for logging and error messages.
	maxErrorBodyBytes = 1024
)

// Client is a JSON-over-HTTP client for a single upstream service.
type Client struct {
	name     string
	baseURL  string
	client   *http.Client
	breaker  *gobreaker.CircuitBreaker
	username string
	password string
}

// New creates a client for one collaborator endpoint. The service name is
// used for logging, metrics and circuit breaker identification.
func New(name string, cfg config.EndpointConfig) *Client {
	timeout := defaultTimeout
	if cfg.Timeout > 0 {
		timeout = time.Duration(cfg.Timeout) * time.Second
	}

	httpClient := &http.Client{Timeout: timeout}
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		httpClient = oauth2.NewClient(context.Background(), ts)
		httpClient.Timeout = timeout
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: breakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Upstream circuit breaker state changed",
				zap.String("service", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Client{
		name:     name,
		baseURL:  strings.TrimRight(cfg.URL, "/"),
		client:   httpClient,
		breaker:  breaker,
		username: cfg.Username,
		password: cfg.Password,
	}
}

// Name returns the service name used for logging and metrics.
func (c *Client) Name() string {
	return c.name
}

// BaseURL returns the configured endpoint URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetJSON performs a GET request and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	return c.doJSON(ctx, http.MethodGet, url, nil, out)
}

// PostJSON performs a POST request with a JSON body and decodes the JSON
// response into out. A nil out discards the response.
func (c *Client) PostJSON(ctx context.Context, url string, body, out any) error {
	return c.doJSON(ctx, http.MethodPost, url, body, out)
}

// PutJSON performs a PUT request with a JSON body and decodes the JSON
// response into out.
func (c *Client) PutJSON(ctx context.Context, url string, body, out any) error {
	return c.doJSON(ctx, http.MethodPut, url, body, out)
}

func (c *Client) doJSON(ctx context.Context, method, url string, body, out any) (err error) {
	start := time.Now()
	defer func() {
		telemetry.GetMetrics().RecordUpstreamRequest(ctx, c.name, err == nil, time.Since(start).Seconds())
	}()

	var reader io.Reader
	if body != nil {
		payload, merr := json.Marshal(body)
		if merr != nil {
			return pkgerrors.Wrap(pkgerrors.ErrCodeUpstreamRequest,
				fmt.Sprintf("failed to encode %s request", c.name), merr)
		}
		reader = bytes.NewReader(payload)
	}

	req, rerr := http.NewRequestWithContext(ctx, method, url, reader)
	if rerr != nil {
		return pkgerrors.Wrap(pkgerrors.ErrCodeUpstreamRequest,
			fmt.Sprintf("failed to create %s request", c.name), rerr)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Veridex/"+consts.Version)
	if c.username != "" || c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	logger.Debug("Calling upstream service",
		zap.String("service", c.name),
		zap.String("method", method),
		zap.String("url", url),
	)

	raw, berr := c.breaker.Execute(func() (interface{}, error) {
		resp, derr := c.client.Do(req)
		if derr != nil {
			return nil, derr
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
			return nil, &statusError{status: resp.StatusCode, body: string(respBody)}
		}

		data, rerr := io.ReadAll(resp.Body)
		if rerr != nil {
			return nil, fmt.Errorf("failed to read response body: %w", rerr)
		}
		return data, nil
	})
	if berr != nil {
		appErr := c.mapError(berr)
		logger.Warn("Upstream request failed",
			zap.String("service", c.name),
			zap.String("url", url),
			zap.Error(appErr),
		)
		return appErr
	}

	if out == nil {
		return nil
	}
	data, _ := raw.([]byte)
	if derr := json.Unmarshal(data, out); derr != nil {
		return pkgerrors.Wrap(pkgerrors.ErrCodeUpstreamDecode,
			fmt.Sprintf("failed to decode %s response", c.name), derr)
	}
	return nil
}

// mapError converts transport, breaker and status failures into the
// corresponding upstream error codes.
func (c *Client) mapError(err error) *pkgerrors.AppError {
	var sErr *statusError
	switch {
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		return pkgerrors.Wrap(pkgerrors.ErrCodeUpstreamUnavailable,
			fmt.Sprintf("%s is unavailable (circuit open)", c.name), err)
	case errors.As(err, &sErr):
		return pkgerrors.New(pkgerrors.ErrCodeUpstreamStatus,
			fmt.Sprintf("%s returned status %d: %s", c.name, sErr.status, sErr.body)).
			WithDetails(map[string]any{"status": sErr.status})
	case errors.Is(err, context.DeadlineExceeded) || isTimeout(err):
		return pkgerrors.Wrap(pkgerrors.ErrCodeUpstreamTimeout,
			fmt.Sprintf("%s request timed out", c.name), err)
	default:
		return pkgerrors.Wrap(pkgerrors.ErrCodeUpstreamRequest,
			fmt.Sprintf("%s request failed", c.name), err)
	}
}

func isTimeout(err error) bool {
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}

// statusError marks a non-2xx upstream response so it can be told apart
// from transport failures when mapping error codes.
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.status, e.body)
}

// IsStatusError reports whether err is a non-2xx upstream response rather
// than a transport or availability failure.
func IsStatusError(err error) bool {
	appErr, ok := pkgerrors.AsAppError(err)
	return ok && appErr.Code == pkgerrors.ErrCodeUpstreamStatus
}
