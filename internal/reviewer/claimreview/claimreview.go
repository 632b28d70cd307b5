// Package claimreview normalises fact-checker ClaimReview verdicts onto
// the shared credibility scale. Fact-checkers rate claims on wildly
// different scales ("Four Pinocchios", "pants on fire", 1-5 stars); the
// normalizer reads both the textual alternateName verdict and the numeric
// ratingValue range and emits a NormalisedClaimReview with a credibility
// value in [-1, 1].
package claimreview

import (
	"fmt"

	"github.com/veridex/veridex/internal/config"
	"github.com/veridex/veridex/internal/item"
	"github.com/veridex/veridex/internal/review"
	"github.com/veridex/veridex/pkg/errors"
)

const (
	version     = "0.1.2"
	dateCreated = "2020-06-05T13:23:00Z"
)

// Normalizer converts external ClaimReviews into NormalisedClaimReviews.
type Normalizer struct {
	credThreshold float64
	bot           item.M
}

// NewNormalizer creates a claim review normalizer.
func NewNormalizer(cfg config.ReviewConfig) *Normalizer {
	return &Normalizer{
		credThreshold: cfg.CredConfThreshold,
		bot: review.Bot{
			Type:        "ClaimReviewNormalizer",
			Name:        "Veridex ClaimReview Credibility Normalizer",
			Description: "Analyses the alternateName and numerical rating value for a ClaimReview and tries to convert that into a normalised credibility rating",
			DateCreated: dateCreated,
			Version:     version,
		}.MustItem(),
	}
}

// Bot returns the normalizer's reviewer descriptor.
func (n *Normalizer) Bot() item.M {
	return n.bot
}

// Normalize reviews an external ClaimReview and emits a
// NormalisedClaimReview whose rating merges the textual and numeric
// accuracy signals. A nil claim review normalises to nil; anything that
// is not a ClaimReview item is rejected.
func (n *Normalizer) Normalize(cr item.M) (item.M, error) {
	if cr == nil {
		return nil, nil
	}
	if !item.IsClaimReview(cr) {
		return nil, errors.New(errors.ErrCodeValidation,
			fmt.Sprintf("expected a ClaimReview item, got %q", item.Type(cr)))
	}

	subRatings := accuracyRatings(cr)
	mostConfident := review.MostConfidentRating(subRatings)

	var aggRating item.M
	if mostConfident == nil {
		aggRating = review.AggregateRating{
			Rating: review.Rating{
				Value:      0.0,
				Confidence: 0.0,
				Explanation: fmt.Sprintf("Failed to interpret original [review](%s)",
					reviewURL(cr)),
			},
			ReviewCount: 1,
			RatingCount: len(subRatings),
		}.Item()
	} else {
		aggRating = item.Clone(mostConfident)
		aggRating["@type"] = "AggregateRating"
		aggRating["reviewCount"] = 1
		aggRating["ratingCount"] = len(subRatings)
	}

	basedOn := make([]any, 0, 1+len(subRatings))
	basedOn = append(basedOn, cr)
	for _, r := range subRatings {
		basedOn = append(basedOn, r)
	}

	claimReviewed := item.Str(cr, "claimReviewed", "")
	result := review.BaseReview("NormalisedClaimReview", n.bot)
	result["text"] = fmt.Sprintf("Claim `%s` is *%s* %s",
		claimReviewed,
		review.RatingLabel(aggRating, n.credThreshold),
		item.Str(aggRating, "ratingExplanation", "(missing explanation)"))
	result["claimReviewed"] = claimReviewed
	result["isBasedOn"] = basedOn
	result["reviewAspect"] = review.AspectCredibility
	result["reviewRating"] = aggRating
	return item.WithIdentifier(result)
}

// Accuracy returns the most confident normalised accuracy rating for a
// claim review, or nil when neither the textual nor the numeric verdict
// could be interpreted.
func (n *Normalizer) Accuracy(cr item.M) item.M {
	return review.MostConfidentRating(accuracyRatings(cr))
}
