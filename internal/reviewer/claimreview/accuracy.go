package claimreview

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/veridex/veridex/internal/item"
	"github.com/veridex/veridex/internal/review"
	"github.com/veridex/veridex/pkg/logger"
)

// accuracyRatings interprets the numeric and the textual verdict of a
// claim review as credibility ratings. The textual rating comes first so
// it wins ties when both interpretations are equally confident. A broken
// numeric rating discards the claim review altogether; a broken textual
// verdict still leaves the numeric interpretation.
func accuracyRatings(cr item.M) []item.M {
	rating := cr["reviewRating"]
	fromValue, err := numericAccuracy(rating, cr)
	if err != nil {
		logger.Warn("Could not interpret claim review rating",
			zap.String("url", reviewURL(cr)), zap.Error(err))
		return nil
	}
	fromAltName, err := textualAccuracy(rating, cr)
	if err != nil {
		logger.Warn("Could not interpret claim review verdict",
			zap.String("url", reviewURL(cr)), zap.Error(err))
		return []item.M{fromValue}
	}
	return []item.M{fromAltName, fromValue}
}

// numericAccuracy maps the rating's numeric ratingValue from its declared
// [worstRating, bestRating] range linearly onto [-1, 1]. The range
// defaults to [1, 5], the scale most fact-checkers use. A missing
// ratingValue produces a zero-confidence rating; a malformed value or
// range is an error.
func numericAccuracy(rating any, cr item.M) (item.M, error) {
	var rm item.M
	switch v := rating.(type) {
	case nil:
		rm = item.M{}
	case item.M:
		rm = v
	default:
		return nil, fmt.Errorf("reviewRating is %T, not an item", rating)
	}
	val, err := numberOf(rm["ratingValue"], -1)
	if err != nil {
		return nil, fmt.Errorf("ratingValue: %w", err)
	}
	if val == -1 {
		return review.Rating{
			Explanation: fmt.Sprintf(
				"Failed to normalise numeric rating in original [ClaimReview](%s) by [%s](%s)",
				reviewURL(cr), authorName(cr), authorURL(cr)),
		}.Item(), nil
	}
	worst, err := numberOf(rm["worstRating"], 1)
	if err != nil {
		return nil, fmt.Errorf("worstRating: %w", err)
	}
	best, err := numberOf(rm["bestRating"], 5)
	if err != nil {
		return nil, fmt.Errorf("bestRating: %w", err)
	}
	if worst >= best {
		return nil, fmt.Errorf("invalid rating range [%v-%v]", worst, best)
	}
	if val < worst || val > best {
		return nil, fmt.Errorf("ratingValue %v outside range [%v-%v]", val, worst, best)
	}

	cred := ((val-worst)/(best-worst))*2 - 1
	r := review.Rating{
		Value:      cred,
		Confidence: 0.85,
		Explanation: fmt.Sprintf(
			"Based on a [fact-check](%s) by [%s](%s) with normalised numeric ratingValue %v in range [%v-%v]",
			reviewURL(cr), authorName(cr), authorURL(cr), val, worst, best),
	}.Item()
	r["description"] = "Normalised accuracy from original rating value (and range)"
	return r, nil
}

// textualAccuracy maps the rating's alternateName, the free-text verdict
// fact-checkers publish, onto the credibility scale via the verdict
// table. The verdict is lowercased and stripped of one trailing dot
// before lookup.
func textualAccuracy(rating any, cr item.M) (item.M, error) {
	var altName string
	var hasAltName bool
	switch v := rating.(type) {
	case string:
		altName, hasAltName = v, true
	case item.M:
		raw, hasKey := v["alternateName"]
		if !item.IsRating(v) && !hasKey {
			return nil, fmt.Errorf("cannot extract a textual verdict from %v", v)
		}
		if raw != nil {
			s, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("alternateName is %T, not a string", raw)
			}
			altName, hasAltName = s, true
		}
	default:
		return nil, fmt.Errorf("reviewRating is %T, not an item", rating)
	}
	if !hasAltName {
		return review.Rating{
			Explanation: fmt.Sprintf(
				"Based on [fact-check](%s) by [%s](%s) with no textual rating",
				reviewURL(cr), authorName(cr), authorURL(cr)),
		}.Item(), nil
	}

	altName = strings.ToLower(strings.TrimSpace(altName))
	altName = strings.TrimSuffix(altName, ".")
	v, known := verdictFor(altName)
	if !known {
		return review.Rating{
			Explanation: fmt.Sprintf(
				"based on [fact-check](%s) by [%s](%s) with unknown accuracy for textual claim-review rating '%s'",
				reviewURL(cr), authorName(cr), authorURL(cr), altName),
		}.Item(), nil
	}
	return review.Rating{
		Value:      v.value,
		Confidence: v.confidence,
		Explanation: fmt.Sprintf(
			"based on [fact-check](%s) by [%s](%s) with textual claim-review rating '%s'",
			reviewURL(cr), authorName(cr), authorURL(cr), altName),
	}.Item(), nil
}

func numberOf(v any, fallback float64) (float64, error) {
	switch n := v.(type) {
	case nil:
		return fallback, nil
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("not a number: %v (%T)", v, v)
	}
}

func reviewURL(cr item.M) string {
	return item.Str(cr, "url", "missingUrl")
}

// authorName falls back to the author's domain when the fact-checker
// left its name out, so "https://www.snopes.com/x" still reads as
// "snopes" in explanations.
func authorName(cr item.M) string {
	author := item.Map(cr, "author")
	if name := item.Str(author, "name", ""); name != "" {
		return name
	}
	if u := item.Str(author, "url", ""); u != "" {
		name := item.DomainFromURL(u)
		if strings.HasPrefix(name, "www.") {
			name = strings.ReplaceAll(name, "www.", "")
		}
		if strings.HasSuffix(name, ".com") {
			name = strings.ReplaceAll(name, ".com", "")
		}
		if name != "" {
			return name
		}
	}
	return "unknown author"
}

func authorURL(cr item.M) string {
	return item.StrIn(cr, []string{"author", "url"}, "unknownUrl")
}
