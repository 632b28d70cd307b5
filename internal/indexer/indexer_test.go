package indexer

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridex/veridex/internal/config"
	"github.com/veridex/veridex/internal/item"
)

func testReview() item.M {
	return item.M{
		"@type":      "TweetCredReview",
		"identifier": "abc123",
		"reviewRating": item.M{
			"@type":       "AggregateRating",
			"ratingValue": 0.6,
		},
	}
}

func TestEmitPostsSignedPayload(t *testing.T) {
	const secret = "topsecret"
	var gotBody []byte
	var gotSignature string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotSignature = r.Header.Get("X-Veridex-Signature")
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	e := New(config.IndexerConfig{Enabled: true, URL: srv.URL, Secret: secret, Timeout: 5})
	e.Emit(context.Background(), []item.M{testReview()})

	var payload Payload
	require.NoError(t, json.Unmarshal(gotBody, &payload))
	assert.Equal(t, "TweetCredReview", payload.ReviewType)
	assert.Equal(t, "abc123", payload.Identifier)
	assert.NotEmpty(t, payload.Timestamp)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(gotBody)
	assert.Equal(t, "sha256="+hex.EncodeToString(mac.Sum(nil)), gotSignature)
}

func TestEmitWithoutSecretOmitsSignature(t *testing.T) {
	var gotSignature string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSignature = r.Header.Get("X-Veridex-Signature")
	}))
	defer srv.Close()

	e := New(config.IndexerConfig{Enabled: true, URL: srv.URL})
	e.Emit(context.Background(), []item.M{testReview()})
	assert.Empty(t, gotSignature)
}

func TestEmitAbsorbsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "indexer down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	e := New(config.IndexerConfig{Enabled: true, URL: srv.URL})
	// must not panic or fail the caller
	e.Emit(context.Background(), []item.M{testReview()})
}

func TestEmitDisabled(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	e := New(config.IndexerConfig{Enabled: false, URL: srv.URL})
	assert.False(t, e.Enabled())
	e.Emit(context.Background(), []item.M{testReview()})
	assert.Equal(t, int32(0), calls.Load())
}
