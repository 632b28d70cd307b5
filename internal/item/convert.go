package item

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/veridex/veridex/consts"
)

const sentenceDescription = "A single sentence, possibly appearing in some larger document"

// AsSentence wraps a text in a Sentence item with a content-addressable
// identifier. The appearance lists creative works the sentence was seen in.
func AsSentence(text string, appearance ...M) M {
	app := make([]any, 0, len(appearance))
	for _, a := range appearance {
		app = append(app, a)
	}
	return M{
		"@context":        consts.CoinformContext,
		"@type":           "Sentence",
		"identifier":      HashText(text),
		"text":            text,
		"additionalTypes": []any{"CreativeWork"},
		"description":     sentenceDescription,
		"appearance":      app,
	}
}

// AsSentencePair pairs a database sentence with a query sentence. The pair
// text joins both sentences in lexicographic order with a <sep> marker, so
// the pair identifier does not depend on which sentence was the query.
func AsSentencePair(dbSent, qSent string, dbSentAppearance []M) M {
	sentA := AsSentence(qSent)
	sentB := AsSentence(dbSent, dbSentAppearance...)
	parts := []string{qSent, dbSent}
	sort.Strings(parts)
	text := strings.Join(parts, " <sep> ")
	return M{
		"@context":        consts.CoinformContext,
		"@type":           "SentencePair",
		"identifier":      HashText(text),
		"url":             fmt.Sprintf("%s/sentencepair?querySentence=%s&sentenceInDB=%s", consts.CoinformContext, qSent, dbSent),
		"additionalTypes": []any{"ItemPair", "CreativeWork"},
		"description":     "CreativeWork consisting of exactly two sentences",
		"sentA":           sentA,
		"roleA":           "querySentence",
		"sentB":           sentB,
		"roleB":           "sentenceInDB",
		"text":            text,
	}
}

// StrAsWebsite converts a url or bare domain name into a WebSite item. The
// site url doubles as the identifier.
func StrAsWebsite(s string) M {
	var siteURL, domain string
	if IsURL(s) {
		u, _ := url.Parse(s)
		siteURL = fmt.Sprintf("%s://%s/", u.Scheme, u.Host)
		domain = DomainFromURL(siteURL)
	} else {
		domain = s
		siteURL = fmt.Sprintf("http://%s/", domain)
	}
	return M{
		"@type":      "WebSite",
		"url":        siteURL,
		"identifier": siteURL,
		"name":       domain,
	}
}
