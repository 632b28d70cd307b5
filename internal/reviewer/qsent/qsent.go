// Package qsent reviews the credibility of a query sentence through one
// matched database sentence. The database sentence's own credibility is
// projected onto the query sentence via their polar similarity: a similar
// agreeing match transfers the credibility as is, a contradicting match
// inverts it, and a weak match dilutes the confidence.
package qsent

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/veridex/veridex/consts"
	"github.com/veridex/veridex/internal/config"
	"github.com/veridex/veridex/internal/item"
	"github.com/veridex/veridex/internal/review"
	"github.com/veridex/veridex/internal/reviewer/dbsent"
	"github.com/veridex/veridex/internal/reviewer/polarsim"
	"github.com/veridex/veridex/pkg/errors"
	"github.com/veridex/veridex/pkg/logger"
)

const (
	version     = "0.1.0"
	dateCreated = "2020-03-27T22:54:00Z"
)

// Reviewer produces QSentCredReviews for query sentences matched against
// the sentence database.
type Reviewer struct {
	db    *dbsent.Reviewer
	polar *polarsim.Reviewer
	cfg   config.ReviewConfig
}

// NewReviewer creates a query sentence credibility reviewer.
func NewReviewer(db *dbsent.Reviewer, polar *polarsim.Reviewer, cfg config.ReviewConfig) *Reviewer {
	return &Reviewer{db: db, polar: polar, cfg: cfg}
}

func (r *Reviewer) bot(subBots []item.M) review.Bot {
	return review.Bot{
		Type:        "QSentCredReviewer",
		Name:        "Veridex Query Sentence Credibility Reviewer",
		Description: "Estimates the credibility of a query sentence based on its polar similarity with a sentence in the Co-inform DB and the credibility of that matched sentence.",
		DateCreated: dateCreated,
		Version:     version,
		IsBasedOn:   subBots,
	}
}

// Bot returns the reviewer descriptor without service-provided sub-bots,
// for listings. Reviews carry a descriptor based on the actual sub-review
// authors instead.
func (r *Reviewer) Bot() item.M {
	return r.bot([]item.M{r.db.Bot()}).MustItem()
}

// ForSimilarSent reviews the query sentence behind one claim search match:
// the match's polar similarity projects the matched sentence's credibility
// onto the query sentence.
func (r *Reviewer) ForSimilarSent(ctx context.Context, simSent, simResult item.M) (item.M, error) {
	polarRev, err := r.polar.ForSimilarSent(simSent, simResult)
	if err != nil {
		return nil, err
	}
	dbRev, err := r.db.ForSimilarSent(ctx, simSent)
	if err != nil {
		return nil, err
	}
	return r.AggregateSubReviews(polarRev, dbRev)
}

// AggregateSubReviews projects the database sentence credibility onto the
// query sentence. The rating value is the database value with the polar
// similarity's sign, and the confidence is the database confidence scaled
// by the similarity's magnitude.
func (r *Reviewer) AggregateSubReviews(polarRev, dbRev item.M) (item.M, error) {
	if polarRev == nil || dbRev == nil {
		return nil, errors.New(errors.ErrCodeValidation,
			"both a polar similarity review and a DB sentence review are required")
	}

	qSent := item.StrIn(polarRev, []string{"itemReviewed", "sentA", "text"}, "")
	dbSentPolar := item.StrIn(polarRev, []string{"itemReviewed", "sentB", "text"}, "")
	dbSent := item.StrIn(dbRev, []string{"itemReviewed", "text"}, "")
	if dbSentPolar != dbSent {
		logger.Warn("Polar similarity and DB sentence reviews disagree on the matched sentence",
			zap.String("similarity_sentence", dbSentPolar),
			zap.String("db_sentence", dbSent))
	}

	aggSim := review.ValueOf(polarRev)
	polarity := 1.0
	if aggSim < 0 {
		polarity = -1.0
	}
	qVal := polarity * review.ValueOf(dbRev)
	qConf := review.ConfidenceOf(dbRev) * math.Abs(aggSim)

	dbRating := review.RatingOf(dbRev)
	polarRating := review.RatingOf(polarRev)
	subRatings := []item.M{polarRating, dbRating}

	explanation := fmt.Sprintf("*%s*:\n\n * `%s`\nthat seems *%s* %s",
		item.Str(polarRev, "headline", ""),
		dbSent,
		review.RatingLabel(dbRating, r.cfg.CredConfThreshold),
		review.ExplanationOf(dbRev))

	revRating := item.M{
		"@context":          consts.CoinformContext,
		"@type":             "AggregateRating",
		"additionalType":    []any{"Rating"},
		"reviewAspect":      review.AspectCredibility,
		"reviewCount":       review.TotalReviewCount(subRatings) + 2,
		"ratingCount":       review.TotalRatingCount(subRatings),
		"ratingValue":       qVal,
		"confidence":        qConf,
		"ratingExplanation": explanation,
	}

	bot, err := r.bot([]item.M{authorOrEmpty(polarRev), r.db.Bot()}).Item()
	if err != nil {
		return nil, err
	}
	rev := review.BaseReview("QSentCredReview", bot)
	rev["itemReviewed"] = item.AsSentence(qSent)
	rev["text"] = fmt.Sprintf("Sentence `%s` seems *%s* as it %s",
		qSent,
		review.RatingLabel(revRating, r.cfg.CredConfThreshold),
		explanation)
	rev["reviewRating"] = revRating
	rev["reviewAspect"] = review.AspectCredibility
	rev["isBasedOn"] = []any{polarRev, dbRev}
	return item.WithIdentifier(rev)
}

func authorOrEmpty(rev item.M) item.M {
	if a := item.Map(rev, "author"); a != nil {
		return a
	}
	return item.M{}
}
