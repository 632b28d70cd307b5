package item

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHashText tests the text hash used for sentence identifiers
func TestHashText(t *testing.T) {
	h1 := HashText("Vitamin C cures COVID-19")
	h2 := HashText("Vitamin C cures COVID-19")
	h3 := HashText("Vitamin C does not cure COVID-19")

	assert.Equal(t, h1, h2, "equal texts must hash to the same identifier")
	assert.NotEqual(t, h1, h3)
	assert.NotEmpty(t, h1)

	// identifiers must be safe to embed in urls
	assert.False(t, strings.ContainsAny(h1, "+/="), "hash %q is not url safe", h1)

	// md5 is 16 bytes, unpadded base64 of that is 22 characters
	assert.Len(t, h1, 22)
}

// TestHashItem tests that item hashes ignore map ordering and cover nesting
func TestHashItem(t *testing.T) {
	a := M{
		"@type":        "Rating",
		"ratingValue":  0.5,
		"confidence":   0.8,
		"reviewAspect": "credibility",
	}
	b := M{
		"reviewAspect": "credibility",
		"confidence":   0.8,
		"@type":        "Rating",
		"ratingValue":  0.5,
	}

	ha, err := HashItem(a)
	require.NoError(t, err)
	hb, err := HashItem(b)
	require.NoError(t, err)
	assert.Equal(t, ha, hb, "hash must not depend on key insertion order")
	assert.False(t, strings.ContainsAny(ha, "+/="))

	// sha256 is 32 bytes, unpadded base64 of that is 43 characters
	assert.Len(t, ha, 43)

	c := Clone(a)
	c["ratingValue"] = 0.6
	hc, err := HashItem(c)
	require.NoError(t, err)
	assert.NotEqual(t, ha, hc)

	// nested values take part in the hash
	d := Clone(a)
	d["reviewRating"] = M{"@type": "Rating", "ratingValue": 1.0}
	e := Clone(a)
	e["reviewRating"] = M{"@type": "Rating", "ratingValue": -1.0}
	hd, err := HashItem(d)
	require.NoError(t, err)
	he, err := HashItem(e)
	require.NoError(t, err)
	assert.NotEqual(t, hd, he)
}
