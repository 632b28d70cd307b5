package review

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridex/veridex/consts"
	"github.com/veridex/veridex/internal/item"
)

func TestRatingItem(t *testing.T) {
	r := Rating{Value: 0.5, Confidence: 0.8, Explanation: "agrees with a fact-check"}
	m := r.Item()
	assert.Equal(t, item.M{
		"@type":             "Rating",
		"reviewAspect":      "credibility",
		"ratingValue":       0.5,
		"confidence":        0.8,
		"ratingExplanation": "agrees with a fact-check",
	}, m)

	m = Rating{Aspect: "checkworthiness"}.Item()
	assert.Equal(t, "checkworthiness", m["reviewAspect"])
}

func TestAggregateRatingItem(t *testing.T) {
	a := AggregateRating{
		Rating:      Rating{Value: -0.2, Confidence: 0.9, Explanation: "x"},
		RatingCount: 7,
		ReviewCount: 4,
	}
	m := a.Item()
	assert.Equal(t, "AggregateRating", m["@type"])
	assert.Equal(t, "credibility", m["reviewAspect"])
	assert.Equal(t, 7, m["ratingCount"])
	assert.Equal(t, 4, m["reviewCount"])
}

func TestBaseReview(t *testing.T) {
	author := item.M{"@type": "Organization", "name": "x"}
	m := BaseReview("AggQSentCredReview", author)
	assert.Equal(t, consts.CoinformContext, m["@context"])
	assert.Equal(t, "AggQSentCredReview", m["@type"])
	assert.Equal(t, []any{"CredibilityReview", "Review"}, m["additionalType"])
	assert.Equal(t, author, m["author"])
	_, ok := ParseUTC(m["dateCreated"].(string))
	assert.True(t, ok)

	m = BaseReview("ArticleCredReview", nil)
	_, hasAuthor := m["author"]
	assert.False(t, hasAuthor)
}

func TestReviewAccessors(t *testing.T) {
	r := item.M{"@type": "Review", "reviewRating": item.M{
		"ratingValue": 0.25, "confidence": 0.6, "ratingExplanation": "because",
	}}
	assert.Equal(t, 0.25, ValueOf(r))
	assert.Equal(t, 0.6, ConfidenceOf(r))
	assert.Equal(t, "because", ExplanationOf(r))
	assert.NotNil(t, RatingOf(r))

	empty := item.M{"@type": "Review"}
	assert.Equal(t, 0.0, ValueOf(empty))
	assert.Equal(t, 0.0, ConfidenceOf(empty))
	assert.Nil(t, RatingOf(empty))
}

func TestBotItem(t *testing.T) {
	sub := item.M{"@type": "SentStanceReviewer", "identifier": "stancebot1"}
	bot := Bot{
		Type:        "AggQSentCredReviewer",
		Name:        "Veridex Aggregate Query Sentence Credibility Reviewer",
		Description: "Reviews the credibility of a query sentence",
		DateCreated: "2025-06-01T10:00:00Z",
		Version:     "0.1.1",
		IsBasedOn:   []item.M{sub},
		LaunchConfig: item.M{
			"claim_search_url": "http://localhost:8070/claim/internal-search",
		},
	}
	m, err := bot.Item()
	require.NoError(t, err)
	assert.Equal(t, []any{"Bot", "SoftwareApplication"}, m["additionalType"])
	assert.Equal(t, StandardOrganization().Item(), m["author"])
	assert.Equal(t, []any{"go"}, m["softwareRequirements"])
	assert.Equal(t, []any{sub}, m["isBasedOn"])
	assert.Contains(t, m, "executionEnvironment")
	ident, ok := m["identifier"].(string)
	require.True(t, ok)
	assert.Len(t, ident, 43)

	// the identifier covers the identity fields only
	again, err := bot.Item()
	require.NoError(t, err)
	assert.Equal(t, ident, again["identifier"])

	bot.Version = "0.2.0"
	changed, err := bot.Item()
	require.NoError(t, err)
	assert.NotEqual(t, ident, changed["identifier"])
}

func TestBotItem_UnregisteredType(t *testing.T) {
	_, err := Bot{Type: "NoSuchReviewer"}.Item()
	assert.Error(t, err)
}

func TestTimestamps(t *testing.T) {
	ts := AsUTC(time.Date(2020, 1, 17, 23, 18, 45, 431000000, time.UTC))
	assert.Equal(t, "2020-01-17T23:18:45.431Z", ts)

	ts = AsUTC(time.Date(2020, 3, 19, 15, 9, 0, 0, time.UTC))
	assert.Equal(t, "2020-03-19T15:09:00Z", ts)

	parsed, ok := ParseUTC("2020-01-17T23:18:45.431Z")
	require.True(t, ok)
	assert.Equal(t, 2020, parsed.Year())

	_, ok = ParseUTC("2020-01-17T23:18:45")
	assert.True(t, ok, "zone-less timestamps are read as UTC")

	_, ok = ParseUTC("2020-01-17")
	assert.False(t, ok, "a bare date is not a timestamp")
}

func TestStartOfWeekUTC(t *testing.T) {
	// 2020-06-05 was a Friday; the week started Monday 2020-06-01
	ts := StartOfWeekUTC(time.Date(2020, 6, 5, 13, 23, 0, 0, time.UTC))
	assert.Equal(t, "2020-06-01T00:00:00Z", ts)

	// A Monday is its own week start
	ts = StartOfWeekUTC(time.Date(2020, 6, 1, 23, 59, 59, 0, time.UTC))
	assert.Equal(t, "2020-06-01T00:00:00Z", ts)

	// Sunday belongs to the week that began the previous Monday
	ts = StartOfWeekUTC(time.Date(2020, 6, 7, 0, 0, 1, 0, time.UTC))
	assert.Equal(t, "2020-06-01T00:00:00Z", ts)
}
