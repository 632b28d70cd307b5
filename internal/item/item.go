// Package item implements the schema.org flavoured content model shared by
// the review pipeline. Items are plain JSON objects carrying @context and
// @type metadata and are identified by content-addressable hashes. The type
// registry assigns each reviewable type its identity keys, canonical route
// and item-reference keys, and the tree operations in this package flatten
// nested review trees into identifier indexes and node/link graphs.
package item

import (
	"net/url"
	"strings"
)

// M is a generic item: a JSON object decoded into a map. It is an alias so
// that values produced by encoding/json satisfy it directly.
type M = map[string]any

// Index maps item identifiers to the items they denote.
type Index = map[string]M

// identifier fields in precedence order, the first present wins
var identifierFields = []string{"identifier", "@id", "url"}

// IsItem reports whether v is an item, that is a JSON object carrying an
// @type field.
func IsItem(v any) bool {
	m, ok := v.(M)
	if !ok {
		return false
	}
	_, ok = m["@type"]
	return ok
}

// AsItem returns v as an item map when it is one.
func AsItem(v any) (M, bool) {
	m, ok := v.(M)
	if !ok {
		return nil, false
	}
	if _, ok := m["@type"]; !ok {
		return nil, false
	}
	return m, true
}

// Type returns the item's declared @type, or "Thing" when absent.
func Type(m M) string {
	if t, ok := m["@type"].(string); ok {
		return t
	}
	return "Thing"
}

// Str returns the string value at key, or fallback when the key is absent
// or holds a non-string.
func Str(m M, key, fallback string) string {
	if m == nil {
		return fallback
	}
	if s, ok := m[key].(string); ok {
		return s
	}
	return fallback
}

// Float returns the numeric value at key as a float64, or fallback.
// JSON numbers decode as float64 but explicitly typed ints are accepted too.
func Float(m M, key string, fallback float64) float64 {
	if m == nil {
		return fallback
	}
	switch n := m[key].(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return fallback
}

// Map returns the item map at key, or nil.
func Map(m M, key string) M {
	if m == nil {
		return nil
	}
	v, _ := m[key].(M)
	return v
}

// List returns the slice value at key, or nil. A single map value is wrapped
// in a one-element slice so that callers can treat single-or-list properties
// uniformly.
func List(m M, key string) []any {
	if m == nil {
		return nil
	}
	switch v := m[key].(type) {
	case []any:
		return v
	case M:
		return []any{v}
	}
	return nil
}

// StrList coerces the value at key into a list of strings, skipping
// non-string elements. A bare string value becomes a one-element list.
func StrList(m M, key string) []string {
	if m == nil {
		return nil
	}
	switch v := m[key].(type) {
	case []string:
		return v
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// GetIn walks a key path through nested maps and returns the value found,
// or fallback when any step is missing, nil or not a map.
func GetIn(v any, path []string, fallback any) any {
	cur := v
	for _, k := range path {
		m, ok := cur.(M)
		if !ok {
			return fallback
		}
		cur, ok = m[k]
		if !ok {
			return fallback
		}
	}
	if cur == nil {
		return fallback
	}
	return cur
}

// FloatIn returns the numeric value at a nested path, or fallback.
func FloatIn(v any, path []string, fallback float64) float64 {
	switch n := GetIn(v, path, nil).(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return fallback
}

// StrIn returns the string value at a nested path, or fallback.
func StrIn(v any, path []string, fallback string) string {
	if s, ok := GetIn(v, path, nil).(string); ok {
		return s
	}
	return fallback
}

// SelectKeys returns a copy of m containing only the listed keys.
func SelectKeys(m M, keys []string) M {
	out := M{}
	for _, k := range keys {
		if v, ok := m[k]; ok {
			out[k] = v
		}
	}
	return out
}

// Clone returns a shallow copy of m. Nested values are shared.
func Clone(m M) M {
	out := make(M, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Merge returns a new map with b's entries layered over a's.
func Merge(a, b M) M {
	out := make(M, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

// ItemIdentifiers returns the item's known identifiers in precedence order:
// identifier, then @id, then url. Only string values count.
func ItemIdentifiers(m M) []string {
	var ids []string
	for _, f := range identifierFields {
		if s, ok := m[f].(string); ok {
			ids = append(ids, s)
		}
	}
	return ids
}

// HasIdentifier reports whether the item carries any identifying field.
func HasIdentifier(m M) bool {
	return len(ItemIdentifiers(m)) > 0
}

// ItemMatchesType reports whether the item declares any of the query types,
// checking both @type and the additionalType list.
func ItemMatchesType(m M, qtypes []string) bool {
	declared := append(StrList(m, "additionalType"), Type(m))
	for _, dt := range declared {
		for _, qt := range qtypes {
			if dt == qt {
				return true
			}
		}
	}
	return false
}

// Document type predicates used by request validation and reviewer dispatch.
// The lowercase "Webpage" spelling is deliberate: inbound documents use it,
// while "WebPage" is the registered creative-work type.

// IsTweetDoc reports whether v is a tweet-like document.
func IsTweetDoc(v any) bool {
	m, ok := AsItem(v)
	return ok && (Type(m) == "Tweet" || Type(m) == "SocialMediaPosting")
}

// IsArticleDoc reports whether v is an article-like document.
func IsArticleDoc(v any) bool {
	m, ok := AsItem(v)
	return ok && (Type(m) == "Article" || Type(m) == "Webpage")
}

// IsSentence reports whether v is a sentence or claim item.
func IsSentence(v any) bool {
	m, ok := AsItem(v)
	return ok && (Type(m) == "Sentence" || Type(m) == "Claim")
}

// IsSentencePair reports whether v is a sentence-pair item.
func IsSentencePair(v any) bool {
	m, ok := AsItem(v)
	return ok && Type(m) == "SentencePair"
}

// IsCreativeWork reports whether v is one of the creative-work document types.
func IsCreativeWork(v any) bool {
	m, ok := AsItem(v)
	if !ok {
		return false
	}
	switch Type(m) {
	case "CreativeWork", "Article", "Webpage", "Tweet", "SocialMediaPosting":
		return true
	}
	return false
}

// IsWebSite reports whether v is a website item.
func IsWebSite(v any) bool {
	m, ok := AsItem(v)
	return ok && Type(m) == "WebSite"
}

// IsRating reports whether v is a rating item.
func IsRating(v any) bool {
	m, ok := AsItem(v)
	if !ok {
		return false
	}
	switch Type(m) {
	case "Rating", "AggregateRating", "schema:Rating":
		return true
	}
	return false
}

// IsClaimReview reports whether v is a claim review item.
func IsClaimReview(v any) bool {
	m, ok := AsItem(v)
	if !ok {
		return false
	}
	switch Type(m) {
	case "ClaimReview", "schema:ClaimReview":
		return true
	}
	return false
}

// IsReview reports whether v declares Review as its type or an additional
// type.
func IsReview(v any) bool {
	m, ok := AsItem(v)
	if !ok {
		return false
	}
	if Type(m) == "Review" {
		return true
	}
	for _, t := range StrList(m, "additionalType") {
		if t == "Review" {
			return true
		}
	}
	return false
}

// IsURL reports whether v is a string parseable as an absolute URL with a
// non-empty scheme and host.
func IsURL(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// TryFixURL repairs the common malformation where the scheme separator lost
// a slash, as in http:/example.com/a. Returns the input unchanged when it is
// already a valid URL or cannot be repaired.
func TryFixURL(s string) string {
	if IsURL(s) {
		return s
	}
	u, err := url.Parse(s)
	if err != nil {
		return s
	}
	if u.Scheme != "" && u.Host == "" && strings.HasPrefix(u.Path, "/") {
		fixed := u.Scheme + ":/" + u.Path
		if u.RawQuery != "" {
			fixed += "?" + u.RawQuery
		}
		return fixed
	}
	return s
}

// DomainFromURL returns the host part of a URL. Links through the Wayback
// Machine are unwrapped so the archived site's domain is returned rather
// than web.archive.org.
func DomainFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	if u.Host == "web.archive.org" {
		if i := strings.Index(u.Path, "http"); i >= 0 {
			return DomainFromURL(TryFixURL(u.Path[i:]))
		}
	}
	return u.Host
}
