package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridex/veridex/internal/item"
)

func TestWorthinessClient_Predictor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/worthiness_predictor", r.URL.Path)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"@type":           "SentCheckWorthinessReviewer",
			"name":            "Check worthiness reviewer",
			"softwareVersion": "0.1.1",
		})
	}))
	defer server.Close()

	c := NewWorthiness(testEndpoint(server.URL))
	bot, err := c.Predictor(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "SentCheckWorthinessReviewer", item.Type(bot))
	assert.Equal(t, "0.1.1", item.Str(bot, "softwareVersion", ""))
}

func TestWorthinessClient_PredictWorthiness(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/predict_worthiness", r.URL.Path)

		var body map[string]any
		err := json.NewDecoder(r.Body).Decode(&body)
		assert.NoError(t, err)
		sents, ok := body["sentences"].([]any)
		assert.True(t, ok)
		assert.Len(t, sents, 2)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"worthiness_checked_sentences": map[string]any{
				"predicted_labels":       []any{"CFS", "UFS"},
				"prediction_confidences": []any{0.9, 0.6},
				"sentence_ids":           []any{0, 1},
				"sentences":              []any{"crime is up 30%", "what a day"},
			},
		})
	}))
	defer server.Close()

	c := NewWorthiness(testEndpoint(server.URL))
	preds, err := c.PredictWorthiness(context.Background(),
		[]string{"crime is up 30%", "what a day"})

	require.NoError(t, err)
	require.Len(t, preds, 2)
	assert.Equal(t, WorthinessPrediction{
		Sentence:   "crime is up 30%",
		Label:      "CFS",
		Confidence: 0.9,
	}, preds[0])
	assert.Equal(t, "UFS", preds[1].Label)
}

func TestWorthinessClient_PredictWorthinessEmptyInput(t *testing.T) {
	c := NewWorthiness(testEndpoint("http://localhost:1"))

	preds, err := c.PredictWorthiness(context.Background(), nil)

	assert.NoError(t, err)
	assert.Nil(t, preds)
}
