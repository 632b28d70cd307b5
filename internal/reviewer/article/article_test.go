package article

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridex/veridex/internal/client"
	"github.com/veridex/veridex/internal/config"
	"github.com/veridex/veridex/internal/item"
	"github.com/veridex/veridex/internal/reviewer/aggqsent"
	"github.com/veridex/veridex/internal/reviewer/claimreview"
	"github.com/veridex/veridex/internal/reviewer/dbsent"
	"github.com/veridex/veridex/internal/reviewer/polarsim"
	"github.com/veridex/veridex/internal/reviewer/qsent"
	"github.com/veridex/veridex/internal/reviewer/website"
	"github.com/veridex/veridex/internal/store"
)

func testConfig() config.ReviewConfig {
	return config.ReviewConfig{
		CredConfThreshold:            0.7,
		MaxClaimsPerDoc:              5,
		FactcheckerConfidencePenalty: 0.5,
		SimilarityUnrelatedFactor:    0.9,
		SimilarityDiscussFactor:      0.9,
		WebsiteConfidenceFactor:      0.9,
		WebsitePenaliseThreshold:     0.2,
		SocialMediaURLs:              []string{"http://twitter.com", "http://facebook.com"},
	}
}

// claimSearchServer matches queries longer than 20 characters against one
// agreeing database sentence and returns no matches for the rest.
func claimSearchServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Claims []string `json:"claims"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		results := make([]any, 0, len(req.Claims))
		for _, q := range req.Claims {
			matches := []any{}
			if len(q) > 20 {
				matches = append(matches, map[string]any{
					"sentence":               "an agreeing database sentence",
					"similarity":             0.9,
					"sent_stance":            polarsim.StanceAgree,
					"sent_stance_confidence": 1.0,
					"doc_url":                "https://example.com/news/1",
					"domain":                 "example.com",
					"domain_credibility": map[string]any{
						"itemReviewed": "example.com",
						"credibility":  map[string]any{"value": 0.6, "confidence": 0.8},
						"assessments":  []any{},
					},
				})
			}
			results = append(results, map[string]any{
				"q_claim":        q,
				"results":        matches,
				"simReviewer":    map[string]any{"@type": "SemSentSimReviewer", "name": "sentence encoder"},
				"stanceReviewer": map[string]any{"@type": "SentStanceReviewer", "name": "stance predictor"},
			})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"results": results})
	}))
}

// credServer answers source credibility lookups for any domain.
func credServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"itemReviewed": r.URL.Query().Get("source"),
			"credibility": map[string]any{
				"value":      0.6,
				"confidence": 0.8,
			},
			"assessments": []any{
				map[string]any{"origin": map[string]any{
					"name":     "Web Of Trust",
					"homepage": "https://www.mywot.com/",
				}},
			},
		})
	}))
}

func testReviewer(t *testing.T, searchURL, credURL, analyzerURL string, cfg config.ReviewConfig) *Reviewer {
	st, cleanup := store.SetupTestDB(t)
	t.Cleanup(cleanup)

	websites := website.NewReviewer(
		client.NewSiteCredibility(config.EndpointConfig{URL: credURL, Timeout: 5}),
		st, config.CacheConfig{DomainCredibilityTTL: 60})
	db := dbsent.NewReviewer(claimreview.NewNormalizer(cfg), websites, cfg)
	q := qsent.NewReviewer(db, polarsim.NewReviewer(cfg), cfg)
	agg := aggqsent.NewReviewer(
		client.NewSimilarity(config.EndpointConfig{URL: searchURL, Timeout: 5}),
		nil, q, cfg)
	analyzer := client.NewAnalyzer(config.EndpointConfig{URL: analyzerURL, Timeout: 5})
	return NewReviewer(analyzer, websites, agg, cfg)
}

func analysedDoc(url string) item.M {
	return item.M{
		"@type":    "Article",
		"url":      url,
		"headline": "Some headline",
		"content":  "Full text of the article.",
		"claims_content": []any{
			item.M{"content": "the earth's average temperature rose by one degree"},
		},
	}
}

func TestReviewConfidentContent(t *testing.T) {
	search := claimSearchServer()
	defer search.Close()
	cred := credServer()
	defer cred.Close()
	r := testReviewer(t, search.URL, cred.URL, "http://unused.invalid", testConfig())

	rev, err := r.Review(context.Background(), analysedDoc("https://example.org/article"))
	require.NoError(t, err)

	assert.Equal(t, "ArticleCredReview", item.Type(rev))
	assert.Equal(t, []any{"CredibilityReview", "Review"}, rev["additionalType"])
	assert.NotEmpty(t, item.Str(rev, "identifier", ""))
	assert.Equal(t, "ArticleCredReviewer", item.Type(item.Map(rev, "author")))

	rating := item.Map(rev, "reviewRating")
	require.NotNil(t, rating)
	// the single claim review carries over: 0.6 at 0.8*0.95 confidence
	assert.InDelta(t, 0.6, item.Float(rating, "ratingValue", 0.0), 1e-9)
	assert.InDelta(t, 0.76, item.Float(rating, "confidence", 0.0), 1e-9)
	// the confident site review is appended as context
	assert.Contains(t, item.Str(rating, "ratingExplanation", ""),
		"\nTake into account that it appeared in website `example.org`.")

	assert.Contains(t, item.Str(rev, "text", ""),
		`Article "[Some headline](https://example.org/article)" seems *credible* `)

	basedOn := item.List(rev, "isBasedOn")
	require.Len(t, basedOn, 2)
	assert.Equal(t, "WebSiteCredReview", item.Type(basedOn[0].(item.M)))
	assert.Equal(t, "ArticleCredReview", item.Type(basedOn[1].(item.M)))

	contentRev := basedOn[1].(item.M)
	assert.Contains(t, item.StrIn(contentRev, []string{"reviewRating", "ratingExplanation"}, ""),
		"like its least credible Sentence `the earth's average temperature rose by one degree` which ")
}

func TestReviewFallsBackToSiteCredibility(t *testing.T) {
	search := claimSearchServer()
	defer search.Close()
	cred := credServer()
	defer cred.Close()
	r := testReviewer(t, search.URL, cred.URL, "http://unused.invalid", testConfig())

	doc := analysedDoc("https://example.org/article")
	doc["claims_content"] = []any{}
	rev, err := r.Review(context.Background(), doc)
	require.NoError(t, err)

	rating := item.Map(rev, "reviewRating")
	require.NotNil(t, rating)
	assert.InDelta(t, 0.6, item.Float(rating, "ratingValue", 0.0), 1e-9)
	// site-only confidence is dampened for sites above the penalise threshold
	assert.InDelta(t, 0.8*0.9, item.Float(rating, "confidence", 0.0), 1e-9)
	assert.Contains(t, item.Str(rating, "ratingExplanation", ""),
		"as it appeared in website `example.org`.")
}

func TestReviewWithoutSignals(t *testing.T) {
	search := claimSearchServer()
	defer search.Close()
	cred := credServer()
	defer cred.Close()
	r := testReviewer(t, search.URL, cred.URL, "http://unused.invalid", testConfig())

	// tweets get their site confidence capped, and without claims the
	// content analysis is empty too
	doc := analysedDoc("https://twitter.com/user/status/123")
	doc["claims_content"] = []any{}
	rev, err := r.Review(context.Background(), doc)
	require.NoError(t, err)

	rating := item.Map(rev, "reviewRating")
	require.NotNil(t, rating)
	assert.InDelta(t, 0.0, item.Float(rating, "ratingValue", -1), 1e-9)
	assert.InDelta(t, 0.0, item.Float(rating, "confidence", -1), 1e-9)
	explanation := item.Str(rating, "ratingExplanation", "")
	assert.Contains(t, explanation,
		"we have insufficient credibility signals from text and website analyses.")
	assert.Contains(t, explanation, "**weak** credibility signals")
}

func TestReviewLowConfidenceClaims(t *testing.T) {
	search := claimSearchServer()
	defer search.Close()
	cred := credServer()
	defer cred.Close()
	cfg := testConfig()
	cfg.CredConfThreshold = 0.9
	r := testReviewer(t, search.URL, cred.URL, "http://unused.invalid", cfg)

	rev, err := r.Review(context.Background(), analysedDoc("https://twitter.com/user/status/9"))
	require.NoError(t, err)

	basedOn := item.List(rev, "isBasedOn")
	require.Len(t, basedOn, 2)
	contentRev := basedOn[1].(item.M)
	assert.Contains(t, item.StrIn(contentRev, []string{"reviewRating", "ratingExplanation"}, ""),
		"we could not assess credibility of 1 of its sentences with sufficient confidence.")
	assert.Contains(t, item.StrIn(contentRev, []string{"reviewRating", "ratingExplanation"}, ""),
		" An example: ")
}

func TestReviewAnalysesDocWhenNeeded(t *testing.T) {
	search := claimSearchServer()
	defer search.Close()
	cred := credServer()
	defer cred.Close()
	analyzer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/analyze_doc", r.URL.Path)
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(analysedDoc(req["url"].(string)))
	}))
	defer analyzer.Close()

	r := testReviewer(t, search.URL, cred.URL, analyzer.URL, testConfig())
	rev, err := r.Review(context.Background(), item.M{
		"@type": "Article",
		"url":   "https://example.org/article",
	})
	require.NoError(t, err)
	assert.Equal(t, "Some headline",
		item.StrIn(rev, []string{"itemReviewed", "headline"}, ""))
}

func TestSelectClaimsCleansAndCaps(t *testing.T) {
	r := &Reviewer{cfg: config.ReviewConfig{MaxClaimsPerDoc: 2}}
	adoc := item.M{
		"url": "https://example.org/article",
		"claims_content": []any{
			item.M{"content": "first\tclaim\nwith breaks and a dégree sign"},
			item.M{"content": "second claim"},
			item.M{"content": "third claim"},
		},
	}
	claims := r.selectClaims(adoc)
	require.Len(t, claims, 2)
	assert.Equal(t, "firstclaimwith breaks and a dgree sign", item.Str(claims[0], "text", ""))
	assert.Equal(t, "https://example.org/article", item.Str(claims[0], "in_doc", ""))
	assert.Equal(t, "second claim", item.Str(claims[1], "text", ""))
}

func TestBot(t *testing.T) {
	search := claimSearchServer()
	defer search.Close()
	r := testReviewer(t, search.URL, "http://unused.invalid", "http://unused.invalid", testConfig())
	bot := r.Bot()
	assert.Equal(t, "ArticleCredReviewer", item.Type(bot))
	assert.NotEmpty(t, item.Str(bot, "identifier", ""))
	subBots := item.List(bot, "isBasedOn")
	require.Len(t, subBots, 2)
	assert.Equal(t, "MisinfoMeSourceCredReviewer", item.Type(subBots[0].(item.M)))
	assert.Equal(t, "AggQSentCredReviewer", item.Type(subBots[1].(item.M)))
}
