package item

import (
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/veridex/veridex/consts"
	"github.com/veridex/veridex/pkg/errors"
)

// urlPattern extracts http(s) urls from free text. It deliberately accepts
// trailing commas and spaces into the match, so extracted urls must be
// trimmed before use.
var urlPattern = regexp.MustCompile(`http[s]?://(?:[a-zA-Z]|[0-9]|[$-_@.&+]|[!*\(\), ]|(?:%[0-9a-fA-F][0-9a-fA-F]))+`)

// FindURLs returns the http(s) urls embedded in a text, untrimmed.
func FindURLs(text string) []string {
	return urlPattern.FindAllString(text, -1)
}

// ValidateDoc checks an inbound document for review. All documents need a
// supported @context and an @type. Tweets additionally need a numeric
// tweet_id and articles a url. Other document types pass validation here
// and are answered later with an unsupported-document review.
func ValidateDoc(doc M) error {
	if doc == nil {
		return errors.New(errors.ErrCodeDocInvalid, "document must be a JSON object")
	}
	ctx, ok := doc["@context"]
	if !ok {
		return errors.New(errors.ErrCodeDocInvalid,
			fmt.Sprintf("missing @context %v", sortedKeys(doc)))
	}
	if ctx != consts.SchemaContext && ctx != consts.CoinformContext {
		return errors.New(errors.ErrCodeDocInvalid,
			fmt.Sprintf("unsupported @context %v", ctx))
	}
	if _, ok := doc["@type"]; !ok {
		return errors.New(errors.ErrCodeDocInvalid, "missing @type")
	}
	switch {
	case IsTweetDoc(doc):
		return validateTweet(doc)
	case IsArticleDoc(doc):
		return validateArticle(doc)
	}
	return nil
}

// ValidateDocs checks every document in a batch.
func ValidateDocs(docs []M) error {
	for i, doc := range docs {
		if err := ValidateDoc(doc); err != nil {
			if appErr, ok := errors.AsAppError(err); ok {
				return appErr.WithDetails(M{"doc_index": i})
			}
			return err
		}
	}
	return nil
}

func validateTweet(tweet M) error {
	id, ok := tweet["tweet_id"]
	if !ok || id == nil {
		return errors.New(errors.ErrCodeDocInvalid, "tweet document needs a tweet_id")
	}
	switch v := id.(type) {
	case string:
		if _, err := strconv.ParseInt(v, 10, 64); err != nil {
			return errors.New(errors.ErrCodeDocInvalid,
				fmt.Sprintf("tweet_id must be numeric, got %q", v))
		}
	case float64:
		if v != math.Trunc(v) {
			return errors.New(errors.ErrCodeDocInvalid,
				fmt.Sprintf("tweet_id must be an integer, got %v", v))
		}
	case int, int64:
	default:
		return errors.New(errors.ErrCodeDocInvalid,
			fmt.Sprintf("tweet_id must be a number or numeric string, not %T", id))
	}
	return nil
}

func validateArticle(doc M) error {
	if u, ok := doc["url"]; !ok || u == nil {
		return errors.New(errors.ErrCodeDocInvalid, "article document needs a url")
	}
	return nil
}

// TweetID extracts a tweet's numeric id, accepting both string and number
// encodings.
func TweetID(tweet M) (int64, error) {
	switch v := tweet["tweet_id"].(type) {
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, errors.New(errors.ErrCodeDocInvalid,
				fmt.Sprintf("tweet_id must be numeric, got %q", v))
		}
		return id, nil
	case float64:
		return int64(v), nil
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	}
	return 0, errors.New(errors.ErrCodeDocInvalid, "tweet document needs a tweet_id")
}
