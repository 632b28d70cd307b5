package item

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridex/veridex/pkg/errors"
)

// TestEnsureIdent_Sentence tests that a bare sentence gains its
// content-addressable identifier
func TestEnsureIdent_Sentence(t *testing.T) {
	tree := M{"@context": "http://coinform.eu", "@type": "Sentence", "text": "crime is rising"}

	got, err := EnsureIdent(tree)
	require.NoError(t, err)
	ensured := got.(M)

	// the input tree must not be modified
	_, ok := tree["identifier"]
	assert.False(t, ok)

	id, ok := ensured["identifier"].(string)
	require.True(t, ok)
	assert.NotEmpty(t, id)

	// only the identity keys take part in the hash
	want, err := HashItem(M{"@type": "Sentence", "text": "crime is rising"})
	require.NoError(t, err)
	assert.Equal(t, want, id)
}

// TestEnsureIdent_NestedBottomUp tests that parents hash over their
// children's identifiers
func TestEnsureIdent_NestedBottomUp(t *testing.T) {
	mkTree := func(text string) M {
		return M{
			"@type":       "SentCheckWorthinessReview",
			"dateCreated": "2020-04-02T18:00:00Z",
			"itemReviewed": M{
				"@type": "Sentence",
				"text":  text,
			},
			"reviewRating": M{
				"@type":             "Rating",
				"reviewAspect":      "checkworthiness",
				"ratingValue":       0.92,
				"confidence":        0.8,
				"ratingExplanation": "looks factual",
			},
		}
	}

	gotA, err := EnsureIdent(mkTree("crime is rising"))
	require.NoError(t, err)
	gotB, err := EnsureIdent(mkTree("crime is rising"))
	require.NoError(t, err)
	gotC, err := EnsureIdent(mkTree("crime is falling"))
	require.NoError(t, err)

	revA, revB, revC := gotA.(M), gotB.(M), gotC.(M)
	assert.Equal(t, revA["identifier"], revB["identifier"],
		"equal trees must get equal identifiers")
	assert.NotEqual(t, revA["identifier"], revC["identifier"],
		"a changed child must change the parent identifier")

	// children got identifiers of their own
	assert.NotEmpty(t, Map(revA, "itemReviewed")["identifier"])
	assert.NotEmpty(t, Map(revA, "reviewRating")["identifier"])
}

// TestEnsureIdent_PassThrough tests the cases that do not get identifiers
func TestEnsureIdent_PassThrough(t *testing.T) {
	tests := []struct {
		name string
		tree any
	}{
		{name: "item with identifier", tree: M{"@type": "Sentence", "text": "x", "identifier": "keep-me"}},
		{name: "creative work", tree: M{"@type": "CreativeWork", "text": "x"}},
		{name: "external claim review", tree: M{"@type": "schema:ClaimReview", "url": "http://fc.example/1"}},
		{name: "plain map", tree: M{"a": float64(1)}},
		{name: "scalar", tree: "just text"},
		{name: "null", tree: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EnsureIdent(tt.tree)
			require.NoError(t, err)
			if m, ok := tt.tree.(M); ok {
				gm := got.(M)
				assert.Equal(t, m["identifier"], gm["identifier"])
				if _, had := m["identifier"]; !had {
					_, added := gm["identifier"]
					assert.False(t, added)
				}
			} else {
				assert.Equal(t, tt.tree, got)
			}
		})
	}
}

// TestEnsureIdent_UnregisteredType tests that unknown item types are
// rejected when they need an identifier
func TestEnsureIdent_UnregisteredType(t *testing.T) {
	_, err := EnsureIdent(M{"@type": "Tweet", "text": "something"})
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeTypeNotRegistered, appErr.Code)

	// but a tweet that already carries an identifier passes through
	got, err := EnsureIdent(M{"@type": "Tweet", "identifier": "t1", "text": "something"})
	require.NoError(t, err)
	assert.Equal(t, "t1", got.(M)["identifier"])
}

// TestEnsureURL tests url assignment from route templates
func TestEnsureURL(t *testing.T) {
	rating := M{
		"@type":             "Rating",
		"reviewAspect":      "credibility",
		"ratingValue":       0.4,
		"confidence":        0.7,
		"ratingExplanation": "based on one source",
		"identifier":        "r1",
	}
	got, err := EnsureURL(rating)
	require.NoError(t, err)
	assert.Equal(t, "http://coinform.eu/rating/r1", got.(M)["url"])

	// items that already have a url keep it
	site := M{"@type": "WebSite", "url": "http://example.com/", "name": "example.com"}
	got, err = EnsureURL(site)
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/", got.(M)["url"])

	// registered types without a route get an explicit null url
	page := M{"@type": "WebPage", "identifier": "p1"}
	got, err = EnsureURL(page)
	require.NoError(t, err)
	u, present := got.(M)["url"]
	assert.True(t, present)
	assert.Nil(t, u)

	// sentence pairs never get a url
	pair := AsSentencePair("db sent", "query sent", nil)
	delete(pair, "url")
	got, err = EnsureURL(pair)
	require.NoError(t, err)
	_, present = got.(M)["url"]
	assert.False(t, present)
}

// TestCalcIdentifier tests the error cases
func TestCalcIdentifier(t *testing.T) {
	_, err := CalcIdentifier(M{"@type": "Sentence", "text": "x", "identifier": "already"})
	assert.Error(t, err)

	_, err = CalcIdentifier(M{"text": "no type"})
	assert.Error(t, err)

	// nested items inside ident keys get identified on the fly, and the
	// result matches hashing over the pre-identified nested item
	nested := M{"@type": "Sentence", "text": "not yet identified"}
	id1, err := CalcIdentifier(M{
		"@type":             "Rating",
		"reviewAspect":      "credibility",
		"ratingValue":       0.4,
		"confidence":        0.7,
		"ratingExplanation": nested,
	})
	require.NoError(t, err)
	identified, err := EnsureIdent(nested)
	require.NoError(t, err)
	id2, err := CalcIdentifier(M{
		"@type":             "Rating",
		"reviewAspect":      "credibility",
		"ratingValue":       0.4,
		"confidence":        0.7,
		"ratingExplanation": identified,
	})
	require.NoError(t, err)
	assert.Equal(t, id1, id2)
	_, hasIdent := nested["identifier"]
	assert.False(t, hasIdent, "input must not be mutated")
}
