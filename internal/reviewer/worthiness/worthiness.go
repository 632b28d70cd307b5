// Package worthiness reviews whether sentences are factual statements
// worth fact-checking, via the external check-worthiness prediction
// service. Sentences rated unworthy are spared the full credibility
// review downstream.
package worthiness

import (
	"context"
	"fmt"
	"time"

	"github.com/veridex/veridex/internal/client"
	"github.com/veridex/veridex/internal/config"
	"github.com/veridex/veridex/internal/item"
	"github.com/veridex/veridex/internal/model"
	"github.com/veridex/veridex/internal/review"
	"github.com/veridex/veridex/internal/store"
)

// AspectCheckWorthiness is the review aspect of check-worthiness ratings.
const AspectCheckWorthiness = "checkworthiness"

// Check-worthiness rating values. Unlike credibility ratings these are
// labels, not numbers.
const (
	RatingWorthy   = "worthy"
	RatingUnworthy = "unworthy"
)

// Reviewer produces SentCheckWorthinessReviews for sentences.
type Reviewer struct {
	client *client.WorthinessClient
	store  store.Store
	ttl    time.Duration
}

// NewReviewer creates a check-worthiness reviewer backed by the given
// prediction client and cache store.
func NewReviewer(c *client.WorthinessClient, s store.Store, cfg config.CacheConfig) *Reviewer {
	return &Reviewer{
		client: c,
		store:  s,
		ttl:    time.Duration(cfg.BotDescriptorTTL) * time.Minute,
	}
}

// Bot returns the external predictor's self-description, which authors
// every check-worthiness review. The descriptor is cached between calls.
func (r *Reviewer) Bot(ctx context.Context) (item.M, error) {
	payload, err := store.CachedBotDescriptor(ctx, r.store, "worthiness", "predictor", r.ttl,
		func(ctx context.Context) (model.JSONMap, error) {
			bot, err := r.client.Predictor(ctx)
			if err != nil {
				return nil, err
			}
			return model.JSONMap(bot), nil
		})
	if err != nil {
		return nil, err
	}
	return item.M(payload), nil
}

// Review labels each sentence as worth fact-checking or not, in one
// batched prediction request. Reviews come back in input order.
func (r *Reviewer) Review(ctx context.Context, sentences []item.M) ([]item.M, error) {
	if len(sentences) == 0 {
		return nil, nil
	}
	texts := make([]string, 0, len(sentences))
	for _, s := range sentences {
		texts = append(texts, item.Str(s, "text", ""))
	}
	preds, err := r.client.PredictWorthiness(ctx, texts)
	if err != nil {
		return nil, err
	}
	bot, err := r.Bot(ctx)
	if err != nil {
		return nil, err
	}

	reviews := make([]item.M, 0, len(preds))
	for _, pred := range preds {
		rev, err := predictionAsReview(pred, bot)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, rev)
	}
	return reviews, nil
}

func predictionAsReview(pred client.WorthinessPrediction, bot item.M) (item.M, error) {
	val := worthVal(pred.Label)
	rev := review.BaseReview("SentCheckWorthinessReview", bot)
	rev["reviewAspect"] = AspectCheckWorthiness
	rev["itemReviewed"] = item.AsSentence(pred.Sentence)
	rev["reviewRating"] = item.M{
		"@type":             "Rating",
		"reviewAspect":      AspectCheckWorthiness,
		"ratingValue":       val,
		"confidence":        pred.Confidence,
		"ratingExplanation": ratingExplanation(val, pred.Sentence),
	}
	return item.WithIdentifier(rev)
}

// worthVal maps the service's labels onto rating values; "CFS" marks a
// check-worthy factual sentence.
func worthVal(label string) string {
	if label == "CFS" {
		return RatingWorthy
	}
	return RatingUnworthy
}

func ratingExplanation(val, sent string) string {
	if val == RatingWorthy {
		return fmt.Sprintf("Sentence **%s** seems like a factual sentence worth checking.", sent)
	}
	return fmt.Sprintf("Sentence **%s** seems like it's not a factual statement; and if it is, it doesn't seem worth checking.", sent)
}
