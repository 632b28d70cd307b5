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

func TestSiteCredibilityClient_SourceCredibility(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/credibility/sources/", r.URL.Path)
		assert.Equal(t, "example.com", r.URL.Query().Get("source"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"itemReviewed": "example.com",
			"credibility": map[string]any{
				"value":      0.6,
				"confidence": 0.8,
			},
			"assessments": []any{
				map[string]any{"origin": map[string]any{"name": "some rater"}},
			},
		})
	}))
	defer server.Close()

	c := NewSiteCredibility(testEndpoint(server.URL))
	got, err := c.SourceCredibility(context.Background(), "example.com")

	require.NoError(t, err)
	assert.Equal(t, 0.6, item.FloatIn(got, []string{"credibility", "value"}, 0))
	assert.Equal(t, 0.8, item.FloatIn(got, []string{"credibility", "confidence"}, 0))
	assert.Len(t, item.List(got, "assessments"), 1)
}
