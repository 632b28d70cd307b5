// Package tweet reviews the credibility of tweets. A tweet's text is
// segmented into sentences and each sentence is reviewed against the
// sentence database; any web documents the tweet links to are reviewed as
// articles. The tweet is as credible as its least credible part.
package tweet

import (
	"context"
	"fmt"

	"github.com/veridex/veridex/internal/config"
	"github.com/veridex/veridex/internal/item"
	"github.com/veridex/veridex/internal/review"
	"github.com/veridex/veridex/internal/reviewer/aggqsent"
	"github.com/veridex/veridex/internal/reviewer/article"
	"github.com/veridex/veridex/pkg/errors"
)

const (
	version     = "0.1.0"
	dateCreated = "2020-04-02T18:00:00Z"
)

// Reviewer produces TweetCredReviews.
type Reviewer struct {
	articles *article.Reviewer
	agg      *aggqsent.Reviewer
	cfg      config.ReviewConfig
}

// NewReviewer creates a tweet credibility reviewer.
func NewReviewer(articles *article.Reviewer, agg *aggqsent.Reviewer, cfg config.ReviewConfig) *Reviewer {
	return &Reviewer{articles: articles, agg: agg, cfg: cfg}
}

// Bot returns the reviewer descriptor.
func (r *Reviewer) Bot() item.M {
	return review.Bot{
		Type:        "TweetCredReviewer",
		Name:        "Veridex Tweet Credibility Reviewer",
		Description: "Reviews the credibility of a tweet by reviewing the sentences in the tweet and the (textual) documents linked by the tweet",
		DateCreated: dateCreated,
		Version:     version,
		IsBasedOn:   []item.M{r.agg.Bot(), r.articles.Bot()},
	}.MustItem()
}

// Review reviews the credibility of a tweet. The tweet must be a
// normalised tweet carrying an identifier and its text; linked documents
// are read from its urls field.
func (r *Reviewer) Review(ctx context.Context, tw item.M) (item.M, error) {
	if !item.IsTweetDoc(tw) {
		return nil, errors.New(errors.ErrCodeValidation,
			fmt.Sprintf("expected a Tweet item, got %q", item.Type(tw)))
	}

	sentReviews, err := r.reviewSentences(ctx, tw)
	if err != nil {
		return nil, err
	}
	docReviews, err := r.reviewLinkedDocs(ctx, tw)
	if err != nil {
		return nil, err
	}
	return r.AggregateSubReviews(append(sentReviews, docReviews...), tw)
}

// reviewSentences segments the tweet text and reviews each sentence.
func (r *Reviewer) reviewSentences(ctx context.Context, tw item.M) ([]item.M, error) {
	sents := SplitSentences(item.Str(tw, "text", ""))
	if len(sents) == 0 {
		return nil, nil
	}
	sentences := make([]item.M, 0, len(sents))
	for _, s := range sents {
		sentences = append(sentences, item.AsSentence(s, tw))
	}
	return r.agg.Review(ctx, sentences)
}

// reviewLinkedDocs reviews the web documents linked by the tweet as
// articles.
func (r *Reviewer) reviewLinkedDocs(ctx context.Context, tw item.M) ([]item.M, error) {
	seen := map[string]bool{}
	var reviews []item.M
	for _, v := range item.List(tw, "urls") {
		u, ok := v.(item.M)
		if !ok {
			continue
		}
		shortURL := item.Str(u, "short_url", "")
		if shortURL == "" || seen[shortURL] {
			continue
		}
		seen[shortURL] = true
		doc := item.M{
			"@context":     "http://schema.org",
			"@type":        "Webpage",
			"url":          shortURL,
			"mentioned_in": tw,
		}
		rev, err := r.articles.Review(ctx, doc)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, rev)
	}
	return reviews, nil
}

// AggregateSubReviews combines the sentence and linked-document reviews
// into a TweetCredReview, selecting the least credible part among those
// reviewed with enough confidence.
func (r *Reviewer) AggregateSubReviews(subReviews []item.M, tw item.M) (item.M, error) {
	mdref := markdownRef(tw)
	rev := review.BaseReview("TweetCredReview", r.Bot())
	rev["itemReviewed"] = tw
	rev["reviewAspect"] = review.AspectCredibility
	rev["isBasedOn"] = asAnyList(subReviews)

	subRatings := make([]item.M, 0, len(subReviews))
	for _, sr := range subReviews {
		if rating := review.RatingOf(sr); rating != nil {
			subRatings = append(subRatings, rating)
		}
	}
	confident, ignored := review.PartitionByMinConfidence(subReviews, r.cfg.CredConfThreshold)

	if len(confident) == 0 {
		var rating item.M
		var msg string
		if len(subReviews) == 0 {
			msg = "we could not extract (or assess credibility of) its sentences or linked documents"
			rating = item.M{
				"@type":             "Rating",
				"reviewAspect":      review.AspectCredibility,
				"ratingValue":       0.0,
				"confidence":        0.0,
				"ratingExplanation": msg,
			}
		} else {
			msg = fmt.Sprintf("we could not assess the credibility of its %d sentences or linked documents.\nFor example:\n * %s",
				len(subReviews), item.Str(ignored[0], "text", ""))
			rating = item.M{
				"@type":             "AggregateRating",
				"reviewAspect":      review.AspectCredibility,
				"ratingValue":       0.0,
				"confidence":        0.0,
				"ratingExplanation": msg,
				"ratingCount":       review.TotalRatingCount(subRatings),
				"reviewCount":       review.TotalReviewCount(subRatings) + len(subReviews),
			}
		}
		rev["text"] = fmt.Sprintf("%s seems *%s* as %s",
			mdref, review.RatingLabel(rating, r.cfg.CredConfThreshold), msg)
		rev["reviewRating"] = rating
		return item.WithIdentifier(rev)
	}

	byValue := review.SortByRatingValue(confident)
	leastCred := byValue[0]
	msg := fmt.Sprintf("based on its least credible part:\n%s",
		item.Str(leastCred, "text", "(missing explanation for part)"))
	revRating := item.M{
		"@type":             "AggregateRating",
		"reviewAspect":      review.AspectCredibility,
		"ratingValue":       review.ValueOf(leastCred),
		"confidence":        review.ConfidenceOf(leastCred),
		"ratingExplanation": msg,
		"ratingCount":       review.TotalRatingCount(subRatings),
		"reviewCount":       review.TotalReviewCount(subRatings) + len(subReviews),
	}
	rev["isBasedOn"] = asAnyList(append(byValue, ignored...))
	rev["text"] = fmt.Sprintf("%s seems *%s* %s",
		mdref, review.RatingLabel(revRating, r.cfg.CredConfThreshold), msg)
	rev["reviewRating"] = revRating
	return item.WithIdentifier(rev)
}

func markdownRef(tw item.M) string {
	return fmt.Sprintf("[the tweet](%s)", item.Str(tw, "url", "(tweet url missing)"))
}

func asAnyList(reviews []item.M) []any {
	out := make([]any, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, r)
	}
	return out
}
