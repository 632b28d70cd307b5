// Package aggqsent reviews the credibility of query sentences against the
// whole Co-inform sentence database. Each sentence is first screened for
// check-worthiness (when enabled), then matched against the database in
// one batched claim search; every match yields a query sentence review and
// the most confident of those becomes the sentence's credibility.
package aggqsent

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/veridex/veridex/internal/client"
	"github.com/veridex/veridex/internal/config"
	"github.com/veridex/veridex/internal/item"
	"github.com/veridex/veridex/internal/review"
	"github.com/veridex/veridex/internal/reviewer/qsent"
	"github.com/veridex/veridex/internal/reviewer/worthiness"
	"github.com/veridex/veridex/pkg/errors"
	"github.com/veridex/veridex/pkg/logger"
)

const (
	version     = "0.1.1"
	dateCreated = "2020-03-19T15:09:00Z"
)

const (
	noMatchExplanation  = "has no (close) matches in the Co-inform database, so we cannot assess its credibility."
	unworthyExplanation = "doesn't seem to be a factual statement, or doesn't seem worth checking."
)

// Reviewer produces AggQSentCredReviews for query sentences.
type Reviewer struct {
	similarity *client.SimilarityClient
	worth      *worthiness.Reviewer
	qsent      *qsent.Reviewer
	cfg        config.ReviewConfig
}

// NewReviewer creates an aggregate query sentence credibility reviewer.
// The worthiness reviewer may be nil when the pre-filter is disabled.
func NewReviewer(similarity *client.SimilarityClient, worth *worthiness.Reviewer, q *qsent.Reviewer, cfg config.ReviewConfig) *Reviewer {
	return &Reviewer{similarity: similarity, worth: worth, qsent: q, cfg: cfg}
}

// WithWorthiness returns a copy of the reviewer with the check-worthiness
// pre-filter toggled, for per-request overrides of the configured default.
func (r *Reviewer) WithWorthiness(enabled bool) *Reviewer {
	out := *r
	out.cfg.WorthinessReview = enabled
	return &out
}

// Bot returns the reviewer descriptor.
func (r *Reviewer) Bot() item.M {
	return review.Bot{
		Type:        "AggQSentCredReviewer",
		Name:        "Veridex Aggregate Sentence Credibility Reviewer",
		Description: "Reviews the credibility of a sentence by comparing it to sentences in the Co-inform DB, which may themselves have credibility reviews.",
		DateCreated: dateCreated,
		Version:     version,
		IsBasedOn:   []item.M{r.qsent.Bot()},
		LaunchConfig: item.M{
			"claim_search_url": r.similarity.BaseURL(),
		},
	}.MustItem()
}

// sentWorth pairs a query sentence with its check-worthiness review, when
// one was produced.
type sentWorth struct {
	sent  item.M
	worth item.M
}

// Review reviews the credibility of each query sentence. Reviews come back
// in input order. Sentences judged not worth fact-checking are rated not
// verifiable without a database search.
func (r *Reviewer) Review(ctx context.Context, sentences []item.M) ([]item.M, error) {
	for _, s := range sentences {
		if !item.IsSentence(s) {
			return nil, errors.New(errors.ErrCodeValidation,
				fmt.Sprintf("expected Sentence items, got %q", item.Type(s)))
		}
	}
	if len(sentences) == 0 {
		return nil, nil
	}

	pairs := r.checkWorthiness(ctx, sentences)

	var factual []sentWorth
	var texts []string
	reviews := make([]item.M, 0, len(sentences))
	for _, p := range pairs {
		if isUnworthy(p.worth) {
			rev, err := r.notVerifiableReview(p, unworthyExplanation)
			if err != nil {
				return nil, err
			}
			reviews = append(reviews, rev)
			continue
		}
		factual = append(factual, p)
		texts = append(texts, item.Str(p.sent, "text", ""))
	}

	// an unreachable claim search means no matches, not a failed review
	simResults, err := r.similarity.FindRelatedSentences(ctx, texts)
	if err != nil {
		logger.Warn("Claim search failed, rating sentences as not verifiable",
			zap.Int("sentences", len(texts)), zap.Error(err))
		simResults = nil
	}

	for i, p := range factual {
		var simResult item.M
		if i < len(simResults) {
			simResult = simResults[i]
		}
		rev, err := r.reviewMatches(ctx, p, simResult)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, rev)
	}
	return inInputOrder(sentences, reviews), nil
}

// checkWorthiness pairs each sentence with its check-worthiness review.
// A failing or disabled predictor leaves every sentence unpaired, so all
// of them get the full credibility review.
func (r *Reviewer) checkWorthiness(ctx context.Context, sentences []item.M) []sentWorth {
	pairs := make([]sentWorth, len(sentences))
	for i, s := range sentences {
		pairs[i] = sentWorth{sent: s}
	}
	if !r.cfg.WorthinessReview || r.worth == nil {
		return pairs
	}
	worthRevs, err := r.worth.Review(ctx, sentences)
	if err != nil {
		logger.Warn("Check-worthiness prediction failed, reviewing all sentences",
			zap.Int("sentences", len(sentences)), zap.Error(err))
		return pairs
	}
	for i := range pairs {
		if i < len(worthRevs) {
			pairs[i].worth = worthRevs[i]
		}
	}
	return pairs
}

// isUnworthy reports whether a check-worthiness review rated the sentence
// not worth fact-checking. Sentences without a review get the full review.
func isUnworthy(worth item.M) bool {
	if worth == nil {
		return false
	}
	return item.StrIn(worth, []string{"reviewRating", "ratingValue"}, "") == worthiness.RatingUnworthy
}

// reviewMatches reviews one query sentence through its claim search result.
func (r *Reviewer) reviewMatches(ctx context.Context, p sentWorth, simResult item.M) (item.M, error) {
	relSents := item.List(simResult, "results")
	if len(relSents) == 0 {
		return r.notVerifiableReview(p, noMatchExplanation)
	}
	qsentRevs := make([]item.M, 0, len(relSents))
	for _, v := range relSents {
		// matches are raw search rows, not typed items
		simSent, ok := v.(item.M)
		if !ok {
			continue
		}
		rev, err := r.qsent.ForSimilarSent(ctx, simSent, simResult)
		if err != nil {
			return nil, err
		}
		qsentRevs = append(qsentRevs, rev)
	}
	if len(qsentRevs) == 0 {
		return r.notVerifiableReview(p, noMatchExplanation)
	}
	return r.aggregateQSentReviews(p, qsentRevs)
}

// aggregateQSentReviews selects the most confident of the per-match
// reviews as the sentence's credibility.
func (r *Reviewer) aggregateQSentReviews(p sentWorth, qsentRevs []item.M) (item.M, error) {
	subRatings := make([]item.M, 0, len(qsentRevs)+1)
	for _, qr := range qsentRevs {
		if rating := review.RatingOf(qr); rating != nil {
			subRatings = append(subRatings, rating)
		}
	}
	worthBonus := 0
	if p.worth != nil {
		if rating := review.RatingOf(p.worth); rating != nil {
			subRatings = append(subRatings, rating)
		}
		worthBonus = 1
	}

	top := review.MostConfidentReview(qsentRevs)
	revRating, err := item.WithIdentifier(item.M{
		"@type":             "AggregateRating",
		"reviewAspect":      review.AspectCredibility,
		"ratingValue":       review.ValueOf(top),
		"confidence":        review.ConfidenceOf(top),
		"ratingExplanation": review.ExplanationOf(top),
		"ratingCount":       review.TotalRatingCount(subRatings),
		"reviewCount":       review.TotalReviewCount(subRatings) + len(qsentRevs) + worthBonus,
	})
	if err != nil {
		return nil, err
	}

	basedOn := make([]any, 0, len(qsentRevs)+1)
	for _, qr := range qsentRevs {
		basedOn = append(basedOn, qr)
	}
	if p.worth != nil {
		basedOn = append(basedOn, p.worth)
	}

	rev := review.BaseReview("AggQSentCredReview", r.Bot())
	rev["itemReviewed"] = p.sent
	rev["text"] = fmt.Sprintf("Sentence `%s` seems *%s* as it %s",
		item.Str(p.sent, "text", ""),
		review.RatingLabel(revRating, r.cfg.CredConfThreshold),
		review.ExplanationOf(top))
	rev["reviewRating"] = revRating
	rev["reviewAspect"] = review.AspectCredibility
	rev["isBasedOn"] = basedOn
	return item.WithIdentifier(rev)
}

// notVerifiableReview rates a sentence not verifiable, either for lack of
// database matches or because it is not worth fact-checking.
func (r *Reviewer) notVerifiableReview(p sentWorth, explanation string) (item.M, error) {
	rating, err := item.WithIdentifier(item.M{
		"@type":             "Rating",
		"reviewAspect":      review.AspectCredibility,
		"ratingValue":       0.0,
		"confidence":        0.0,
		"ratingExplanation": explanation,
	})
	if err != nil {
		return nil, err
	}
	basedOn := []any{}
	if p.worth != nil {
		basedOn = append(basedOn, p.worth)
	}
	rev := review.BaseReview("AggQSentCredReview", r.Bot())
	rev["itemReviewed"] = p.sent
	rev["text"] = fmt.Sprintf("Sentence `%s` seems *%s* as it %s",
		item.Str(p.sent, "text", ""), review.LabelNotVerifiable, explanation)
	rev["reviewRating"] = rating
	rev["reviewAspect"] = review.AspectCredibility
	rev["isBasedOn"] = basedOn
	return item.WithIdentifier(rev)
}

// inInputOrder restores the input sentence order over the produced
// reviews. Reviews are matched to sentences through the reviewed text;
// duplicate texts keep their relative order.
func inInputOrder(sentences, reviews []item.M) []item.M {
	position := make(map[string]int, len(sentences))
	for i, s := range sentences {
		position[item.Str(s, "text", "")] = i
	}
	ordered := make([]item.M, len(reviews))
	copy(ordered, reviews)
	sort.SliceStable(ordered, func(i, j int) bool {
		return position[item.StrIn(ordered[i], []string{"itemReviewed", "text"}, "")] <
			position[item.StrIn(ordered[j], []string{"itemReviewed", "text"}, "")]
	})
	return ordered
}
