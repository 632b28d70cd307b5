package review

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/veridex/veridex/internal/item"
)

func TestSiteInList(t *testing.T) {
	factcheckers := []string{
		"https://fullfact.org",
		"http://www.snopes.com/",
		"https://www.politifact.com",
		"www.factcheck.org",
	}
	cases := []struct {
		name   string
		url    string
		domain string
		want   bool
	}{
		{"host match is scheme independent", "http://fullfact.org/health/vaccines", "", true},
		{"host match with www", "https://www.snopes.com/fact-check/x", "", true},
		{"unknown host", "https://example.com/a", "", false},
		{"unknown host falls back to domain", "https://example.com/a", "fullfact.org", true},
		{"host match from listed url", "https://www.politifact.com/factchecks/x", "", true},
		{"prefix match without parseable host", "www.factcheck.org/2020/some-claim", "", true},
		{"domain only", "", "www.snopes.com", true},
		{"domain only miss", "", "example.com", false},
		{"empty everything", "", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SiteInList(tc.url, tc.domain, factcheckers))
		})
	}
}

func TestSiteItemInList(t *testing.T) {
	sites := []string{"http://twitter.com", "http://facebook.com"}
	assert.True(t, SiteItemInList(item.StrAsWebsite("https://twitter.com/some/status"), sites))
	assert.False(t, SiteItemInList(item.StrAsWebsite("https://example.org"), sites))
	assert.False(t, SiteItemInList(nil, sites))
}
