// Package polarsim builds polar similarity reviews for sentence pairs. A
// plain similarity rating ranges from 0 (dissimilar) to 1 (similar); the
// polar variant folds in the predicted stance between the sentences and
// ranges from -1 (similar but contradicting) to 1 (similar and in
// agreement). Both sub-reviews come out of a single claim search result,
// so this reviewer calls no services of its own.
package polarsim

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/veridex/veridex/internal/config"
	"github.com/veridex/veridex/internal/item"
	"github.com/veridex/veridex/internal/review"
	"github.com/veridex/veridex/pkg/errors"
	"github.com/veridex/veridex/pkg/logger"
)

const (
	version     = "0.1.0"
	dateCreated = "2020-03-27T22:54:00Z"
)

// Review aspects produced by this package.
const (
	AspectSimilarity      = "similarity"
	AspectStance          = "stance"
	AspectPolarSimilarity = "polarSimilarity"
)

// Stance labels predicted between a query sentence and a database
// sentence.
const (
	StanceAgree     = "agree"
	StanceDisagree  = "disagree"
	StanceUnrelated = "unrelated"
	StanceDiscuss   = "discuss"
)

const defaultDampeningFactor = 0.9

// Reviewer produces SentPolarSimilarityReviews.
type Reviewer struct {
	unrelatedFactor float64
	discussFactor   float64
}

// NewReviewer creates a polar similarity reviewer with the configured
// dampening factors for unrelated and discussing sentence pairs.
func NewReviewer(cfg config.ReviewConfig) *Reviewer {
	return &Reviewer{
		unrelatedFactor: factorOrDefault(cfg.SimilarityUnrelatedFactor),
		discussFactor:   factorOrDefault(cfg.SimilarityDiscussFactor),
	}
}

func factorOrDefault(f float64) float64 {
	if f <= 0 || f > 1 {
		return defaultDampeningFactor
	}
	return f
}

// Bot returns the reviewer descriptor. The sub-bots are the similarity
// and stance reviewers whose reviews get aggregated.
func Bot(subBots []item.M) (item.M, error) {
	return review.Bot{
		Type:        "SentPolarityReviewer",
		Name:        "Veridex Sentence Polarity Reviewer",
		Description: "Estimates the polar similarity between two sentences",
		DateCreated: dateCreated,
		Version:     version,
		IsBasedOn:   subBots,
	}.Item()
}

// ForSimilarSent builds the polar similarity review for one related
// sentence out of a claim search result: a plain similarity review,
// combined with the predicted stance when the search result carries one.
func (r *Reviewer) ForSimilarSent(simSent, simResult item.M) (item.M, error) {
	simReview, err := SimilarityReview(simSent, simResult)
	if err != nil {
		return nil, err
	}
	stanceReview, err := StanceReview(simSent, simResult)
	if err != nil {
		return nil, err
	}
	return r.AggregateSubReviews(simReview, stanceReview)
}

// AggregateSubReviews combines a similarity review and a stance review
// over the same sentence pair into a SentPolarSimilarityReview. Without a
// stance review the plain similarity review is returned unchanged.
func (r *Reviewer) AggregateSubReviews(simReview, stanceReview item.M) (item.M, error) {
	if simReview == nil {
		return nil, errors.New(errors.ErrCodeValidation, "similarity review is required")
	}
	if stanceReview == nil {
		return simReview, nil
	}

	sim := item.FloatIn(simReview, []string{"reviewRating", "ratingValue"}, 0.0)
	stance := item.StrIn(stanceReview, []string{"reviewRating", "ratingValue"}, StanceUnrelated)
	stanceConf := item.FloatIn(stanceReview, []string{"reviewRating", "confidence"}, 0.5)

	sentPair := item.Map(simReview, "itemReviewed")
	if item.Str(sentPair, "identifier", "") !=
		item.StrIn(stanceReview, []string{"itemReviewed", "identifier"}, "") {
		logger.Warn("Similarity and stance reviews disagree on the sentence pair",
			zap.String("similarity_pair", item.Str(sentPair, "text", "")),
			zap.String("stance_pair", item.StrIn(stanceReview, []string{"itemReviewed", "text"}, "")))
	}

	aggSim := r.polarSimilarity(sim, stance, stanceConf)
	subReviews := []item.M{simReview, stanceReview}
	var subRatings []item.M
	for _, sr := range subReviews {
		if rating := review.RatingOf(sr); rating != nil {
			subRatings = append(subRatings, rating)
		}
	}

	headline := review.ClaimRelStr(sim, stance)
	explanation := fmt.Sprintf("Sentence `%s` %s `%s`",
		item.StrIn(sentPair, []string{"sentA", "text"}, ""),
		headline,
		item.StrIn(sentPair, []string{"sentB", "text"}, ""))

	bot, err := Bot([]item.M{authorOrEmpty(simReview), authorOrEmpty(stanceReview)})
	if err != nil {
		return nil, err
	}

	rev := review.BaseReview("SentPolarSimilarityReview", bot)
	rev["itemReviewed"] = sentPair
	rev["headline"] = headline
	rev["reviewAspect"] = AspectPolarSimilarity
	rev["reviewBody"] = explanation
	rev["reviewRating"] = item.M{
		"@type":             "AggregateRating",
		"reviewAspect":      AspectPolarSimilarity,
		"ratingValue":       aggSim,
		"confidence":        stanceConf,
		"reviewCount":       len(subReviews),
		"ratingCount":       review.TotalRatingCount(subRatings),
		"ratingExplanation": explanation,
	}
	rev["isBasedOn"] = []any{simReview, stanceReview}
	return item.WithIdentifier(rev)
}

// polarSimilarity folds the stance prediction into the similarity value.
// Agreement keeps or boosts the similarity, disagreement mirrors it into
// the negative range, and unrelated or discussing pairs are dampened by
// the configured factors. Out-of-range inputs are clamped.
func (r *Reviewer) polarSimilarity(sim float64, stance string, stanceConf float64) float64 {
	sim = clamp01(sim)
	stanceConf = clamp01(stanceConf)
	switch stance {
	case StanceAgree:
		if sim > stanceConf {
			return sim
		}
		return (stanceConf + sim) / 2.0
	case StanceDisagree:
		if sim > stanceConf {
			return -sim
		}
		return -(stanceConf + sim) / 2.0
	case StanceDiscuss:
		return sim * r.discussFactor
	case "", StanceUnrelated:
		return sim * r.unrelatedFactor
	default:
		logger.Warn("Unknown stance label, treating as unrelated",
			zap.String("stance", stance))
		return sim * r.unrelatedFactor
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func authorOrEmpty(rev item.M) item.M {
	if a := item.Map(rev, "author"); a != nil {
		return a
	}
	return item.M{}
}
