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

func TestSimilarityClient_FindRelatedSentences(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		err := json.NewDecoder(r.Body).Decode(&body)
		assert.NoError(t, err)
		claims, ok := body["claims"].([]any)
		assert.True(t, ok)
		assert.Len(t, claims, 2)

		// plain search records: the service sends no @type on result rows
		resp := map[string]any{
			"results": []any{
				map[string]any{
					"q_claim": "the earth is flat",
					"results": []any{
						map[string]any{
							"sentence":   "the earth is round",
							"similarity": 0.83,
							"lang_orig":  "en_US.UTF-8",
							"doc_url":    "http://example.com/a",
						},
					},
				},
				map[string]any{
					"q_claim": "vaccines cause autism",
					"results": []any{},
				},
			},
			"resultsHeader": map[string]any{"QTime": 12},
		}
		err = json.NewEncoder(w).Encode(resp)
		assert.NoError(t, err)
	}))
	defer server.Close()

	c := NewSimilarity(testEndpoint(server.URL))
	got, err := c.FindRelatedSentences(context.Background(),
		[]string{"the earth is flat", "vaccines cause autism"})

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "the earth is flat", item.Str(got[0], "q_claim", ""))
	assert.Equal(t, "vaccines cause autism", item.Str(got[1], "q_claim", ""))

	sents := item.List(got[0], "results")
	require.Len(t, sents, 1)
	first, ok := sents[0].(item.M)
	require.True(t, ok)
	assert.Equal(t, "en-US", item.Str(first, "lang_orig", ""))
	assert.Equal(t, 0.83, item.Float(first, "similarity", 0))
}

func TestSimilarityClient_FindRelatedSentencesEmptyInput(t *testing.T) {
	c := NewSimilarity(testEndpoint("http://localhost:1"))

	got, err := c.FindRelatedSentences(context.Background(), nil)

	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestSimilarityClient_FindRelatedSentencesPartialResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"results": []any{
				map[string]any{
					"q_claim": "second claim",
					"results": []any{},
				},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	c := NewSimilarity(testEndpoint(server.URL))
	got, err := c.FindRelatedSentences(context.Background(),
		[]string{"first claim", "second claim"})

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Nil(t, got[0])
	require.NotNil(t, got[1])
	assert.Equal(t, "second claim", item.Str(got[1], "q_claim", ""))
}

func TestSimilarityClient_FindRelatedSentencesNoResultsField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"resultsHeader": map[string]any{}})
	}))
	defer server.Close()

	c := NewSimilarity(testEndpoint(server.URL))
	got, err := c.FindRelatedSentences(context.Background(), []string{"a claim"})

	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestSimilarityClient_Bots(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		err := json.NewDecoder(r.Body).Decode(&body)
		assert.NoError(t, err)
		_, hasClaims := body["claims"]
		assert.False(t, hasClaims)

		resp := map[string]any{
			"results": []any{},
			"bots": map[string]any{
				"simReviewer": map[string]any{
					"@type": "SentSimilarityReviewer",
					"isBasedOn": []any{
						map[string]any{"@type": "SentenceEncoder", "name": "roberta-base"},
					},
				},
				"stancePred": map[string]any{"@type": "SentStanceReviewer"},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	c := NewSimilarity(testEndpoint(server.URL))

	bots, err := c.Bots(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, bots["simReviewer"])
	assert.NotNil(t, bots["stancePred"])

	sim, err := c.SimReviewer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "SentSimilarityReviewer", item.Type(sim))

	enc, err := c.SentenceEncoder(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "roberta-base", item.Str(enc, "name", ""))

	stance, err := c.StancePredictor(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "SentStanceReviewer", item.Type(stance))
}

func TestSimilarityClient_BotsMissing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"results": []any{}})
	}))
	defer server.Close()

	c := NewSimilarity(testEndpoint(server.URL))
	_, err := c.Bots(context.Background())

	assert.Error(t, err)
}
