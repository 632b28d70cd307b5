package pipeline

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/veridex/veridex/internal/item"
	"github.com/veridex/veridex/pkg/errors"
	"github.com/veridex/veridex/pkg/logger"
)

var acceptedContexts = []string{"http://schema.org", "http://coinform.eu"}

// ValidateDocs checks that every document in the batch is reviewable:
// declared @context and @type, a numeric tweet_id for tweets, a url for
// articles and webpages. Documents of other types pass validation and are
// rated unsupported later.
func ValidateDocs(docs []item.M) error {
	for _, doc := range docs {
		if err := validateDoc(doc); err != nil {
			return err
		}
	}
	return nil
}

func validateDoc(doc item.M) error {
	if doc == nil {
		return errors.New(errors.ErrCodeDocInvalid, "document must be a JSON object")
	}
	ctxVal := item.Str(doc, "@context", "")
	if !contextAccepted(ctxVal) {
		return errors.New(errors.ErrCodeDocInvalid,
			fmt.Sprintf("document @context must be one of %v, got %q", acceptedContexts, ctxVal))
	}
	if _, ok := doc["@type"]; !ok {
		return errors.New(errors.ErrCodeDocInvalid, "document is missing an @type field")
	}
	switch {
	case item.IsTweetDoc(doc):
		if _, ok := tweetID(doc); !ok {
			return errors.New(errors.ErrCodeDocInvalid,
				"tweets must provide a numeric tweet_id field")
		}
	case item.IsArticleDoc(doc):
		if item.Str(doc, "url", "") == "" {
			return errors.New(errors.ErrCodeDocInvalid,
				"articles and webpages must specify a url")
		}
	}
	return nil
}

func contextAccepted(ctxVal string) bool {
	for _, c := range acceptedContexts {
		if ctxVal == c {
			return true
		}
	}
	return false
}

// NormaliseDocs produces uniform document structures ready for review:
// tweets get their content from the tweet store when submitted by id only,
// their urls list extracted from the content, their text stripped of urls
// and an identifier; article urls get a missing scheme repaired.
func (p *Pipeline) NormaliseDocs(ctx context.Context, docs []item.M) ([]item.M, error) {
	out := make([]item.M, 0, len(docs))
	for _, doc := range docs {
		norm, err := p.normaliseDoc(ctx, doc)
		if err != nil {
			return nil, err
		}
		out = append(out, norm)
	}
	return out, nil
}

func (p *Pipeline) normaliseDoc(ctx context.Context, doc item.M) (item.M, error) {
	doc, err := p.ensureContent(ctx, doc)
	if err != nil {
		return nil, err
	}
	doc, err = ensureURLs(doc)
	if err != nil {
		return nil, err
	}
	return ensureTweetShape(doc), nil
}

// ensureContent resolves the content of tweets submitted by id only
// through the tweet store. Articles may omit content since it can be
// fetched during review; any other document must come with its content.
func (p *Pipeline) ensureContent(ctx context.Context, doc item.M) (item.M, error) {
	if _, ok := doc["content"]; ok {
		return doc, nil
	}
	switch {
	case item.IsTweetDoc(doc):
		id, _ := tweetID(doc)
		if p.tweetStore == nil {
			return nil, errors.New(errors.ErrCodeTweetUnavailable,
				fmt.Sprintf("tweet %d has no content and no tweet store is configured", id))
		}
		stored, err := p.tweetStore.Tweet(ctx, id)
		if err != nil {
			return nil, err
		}
		if stored == nil {
			return nil, errors.New(errors.ErrCodeTweetUnavailable,
				fmt.Sprintf("tweet %d not found in the tweet store, content value required", id))
		}
		return item.Merge(doc, stored), nil
	case item.IsArticleDoc(doc):
		return doc, nil
	default:
		return nil, errors.New(errors.ErrCodeDocInvalid,
			fmt.Sprintf("documents must provide a content field, got keys %v", sortedDocKeys(doc)))
	}
}

// ensureURLs extracts the urls linked by a tweet from its content, and
// repairs article urls submitted without a scheme.
func ensureURLs(doc item.M) (item.M, error) {
	switch {
	case item.IsTweetDoc(doc):
		if _, ok := doc["urls"].([]any); ok {
			return doc, nil
		}
		found := item.FindURLs(item.Str(doc, "content", ""))
		urls := make([]any, 0, len(found))
		for _, u := range found {
			urls = append(urls, item.M{"short_url": strings.TrimSpace(u)})
		}
		out := item.Clone(doc)
		out["urls"] = urls
		if len(found) > 0 {
			logger.Debug("Extracted urls from tweet content",
				zap.Strings("urls", found))
		}
		return out, nil
	case item.IsArticleDoc(doc):
		raw := item.Str(doc, "url", "")
		u, err := url.Parse(raw)
		if err != nil {
			return nil, errors.New(errors.ErrCodeDocInvalid,
				fmt.Sprintf("invalid document url %q", raw))
		}
		if u.Scheme == "" {
			// missing scheme, assuming http
			out := item.Clone(doc)
			out["url"] = "http://" + raw
			return out, nil
		}
		return doc, nil
	default:
		return doc, nil
	}
}

// ensureTweetShape derives the review fields of a tweet: text without the
// shortened urls, and an identifier from the tweet id.
func ensureTweetShape(doc item.M) item.M {
	if !item.IsTweetDoc(doc) {
		return doc
	}
	out := item.Clone(doc)
	text := item.Str(out, "content", "")
	for _, v := range item.List(out, "urls") {
		u, ok := v.(item.M)
		if !ok {
			continue
		}
		if s := item.Str(u, "short_url", ""); s != "" {
			text = strings.ReplaceAll(text, s, " ")
		}
	}
	out["text"] = text
	// a tweet's url never stands in for its identifier
	if _, ok := out["identifier"]; !ok {
		if id, ok := tweetID(out); ok {
			out["identifier"] = strconv.FormatInt(id, 10)
		}
	}
	return out
}

// tweetID reads the tweet_id field, accepting the numeric and string
// encodings JSON clients send.
func tweetID(doc item.M) (int64, bool) {
	switch v := doc["tweet_id"].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		return id, err == nil
	}
	return 0, false
}

func sortedDocKeys(doc item.M) []string {
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
