// Package review provides the shared value model for credibility reviews:
// the review envelope and rating constructors, aggregation selectors over
// sub-reviews, textual labels for rating values and reviewer bot
// descriptions. Reviews and ratings travel through the pipeline as generic
// items; this package owns their common shape.
package review

import (
	"github.com/veridex/veridex/consts"
	"github.com/veridex/veridex/internal/item"
)

// AspectCredibility is the review aspect shared by all credibility ratings.
const AspectCredibility = "credibility"

// Rating is a plain credibility rating about to become an item.
type Rating struct {
	Aspect      string
	Value       float64
	Confidence  float64
	Explanation string
}

// Item renders the rating as an item. An empty aspect defaults to
// credibility.
func (r Rating) Item() item.M {
	aspect := r.Aspect
	if aspect == "" {
		aspect = AspectCredibility
	}
	return item.M{
		"@type":             "Rating",
		"reviewAspect":      aspect,
		"ratingValue":       r.Value,
		"confidence":        r.Confidence,
		"ratingExplanation": r.Explanation,
	}
}

// AggregateRating is a rating summarising a set of sub-ratings.
type AggregateRating struct {
	Rating
	RatingCount int
	ReviewCount int
}

// Item renders the aggregate rating as an item.
func (a AggregateRating) Item() item.M {
	m := a.Rating.Item()
	m["@type"] = "AggregateRating"
	m["ratingCount"] = a.RatingCount
	m["reviewCount"] = a.ReviewCount
	return m
}

// AdditionalTypes returns a type's super types as an item list value.
func AdditionalTypes(name string) []any {
	supers := item.Types().SuperTypes(name)
	out := make([]any, 0, len(supers))
	for _, s := range supers {
		out = append(out, s)
	}
	return out
}

// BaseReview assembles the envelope fields shared by every review: context,
// type, additional types and creation timestamp. The author is included
// when given; callers fill in itemReviewed, reviewRating, isBasedOn and
// text.
func BaseReview(revType string, author item.M) item.M {
	m := item.M{
		"@context":       consts.CoinformContext,
		"@type":          revType,
		"additionalType": AdditionalTypes(revType),
		"dateCreated":    NowUTC(),
	}
	if author != nil {
		m["author"] = author
	}
	return m
}

// RatingOf returns a review's rating, or nil.
func RatingOf(rev item.M) item.M {
	return item.Map(rev, "reviewRating")
}

// ValueOf returns a review's rating value.
func ValueOf(rev item.M) float64 {
	return item.FloatIn(rev, []string{"reviewRating", "ratingValue"}, 0.0)
}

// ConfidenceOf returns a review's rating confidence.
func ConfidenceOf(rev item.M) float64 {
	return item.FloatIn(rev, []string{"reviewRating", "confidence"}, 0.0)
}

// ExplanationOf returns a review's rating explanation.
func ExplanationOf(rev item.M) string {
	return item.StrIn(rev, []string{"reviewRating", "ratingExplanation"}, "")
}
