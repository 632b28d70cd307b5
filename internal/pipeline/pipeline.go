// Package pipeline orchestrates credibility reviews for batches of
// documents. Incoming documents are validated and normalised (tweet
// content resolved through the tweet store, urls extracted and repaired),
// dispatched to the reviewer matching their type under a bounded worker
// pool, and the finished review trees are rendered in the requested graph
// format.
package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/veridex/veridex/consts"
	"github.com/veridex/veridex/internal/client"
	"github.com/veridex/veridex/internal/config"
	"github.com/veridex/veridex/internal/item"
	"github.com/veridex/veridex/internal/review"
	"github.com/veridex/veridex/internal/reviewer/aggqsent"
	"github.com/veridex/veridex/internal/reviewer/article"
	"github.com/veridex/veridex/internal/reviewer/tweet"
	"github.com/veridex/veridex/internal/reviewer/website"
	"github.com/veridex/veridex/pkg/errors"
)

const (
	version     = "0.1.0"
	dateCreated = "2020-04-02T18:05:00Z"
)

var supportedDocTypes = []string{"tweet", "article"}

// Pipeline reviews documents, claims and websites by delegating to the
// reviewer for each content type.
type Pipeline struct {
	tweets     *tweet.Reviewer
	articles   *article.Reviewer
	agg        *aggqsent.Reviewer
	websites   *website.Reviewer
	tweetStore *client.TweetStoreClient
	cfg        config.ReviewConfig
}

// New creates a review pipeline. The tweet store client may be nil when no
// store is configured; tweets must then be submitted with their content.
func New(tweets *tweet.Reviewer, articles *article.Reviewer, agg *aggqsent.Reviewer,
	websites *website.Reviewer, tweetStore *client.TweetStoreClient, cfg config.ReviewConfig) *Pipeline {
	return &Pipeline{
		tweets:     tweets,
		articles:   articles,
		agg:        agg,
		websites:   websites,
		tweetStore: tweetStore,
		cfg:        cfg,
	}
}

// Options are per-request overrides of the configured review defaults.
// Zero values leave the configured default in place.
type Options struct {
	// ReviewFormat selects schema.org or the legacy cred_assessment output.
	ReviewFormat string
	// GraphFormat selects the review graph layout for schema.org output.
	GraphFormat string
	// BasedOnDepth trims nested isBasedOn evidence in nestedTree output.
	BasedOnDepth *int
	// CheckWorthiness toggles the check-worthiness pre-filter for claims.
	CheckWorthiness *bool
}

func (p *Pipeline) reviewFormat(opts Options) string {
	if opts.ReviewFormat != "" {
		return opts.ReviewFormat
	}
	if p.cfg.ReviewFormat != "" {
		return p.cfg.ReviewFormat
	}
	return config.ReviewFormatSchemaOrg
}

func (p *Pipeline) graphFormat(opts Options) string {
	if opts.GraphFormat != "" {
		return opts.GraphFormat
	}
	if p.cfg.GraphFormat != "" {
		return p.cfg.GraphFormat
	}
	return config.GraphFormatNestedTree
}

func (p *Pipeline) basedOnDepth(opts Options) int {
	if opts.BasedOnDepth != nil {
		return *opts.BasedOnDepth
	}
	return p.cfg.BasedOnDepth
}

// Bot returns the top-level reviewer descriptor.
func (p *Pipeline) Bot() item.M {
	return p.bot()
}

func (p *Pipeline) bot() item.M {
	return review.Bot{
		Type:         "CredReviewer",
		Name:         "Veridex Top-level Credibility Reviewer",
		Description:  "Reviews the credibility of various supported content items, mainly by delegating to the appropriate content-level reviewer",
		DateCreated:  dateCreated,
		Version:      version,
		IsBasedOn:    []item.M{},
		LaunchConfig: item.M{},
	}.MustItem()
}

// ReviewDocs validates, normalises and reviews a batch of documents.
// Sibling documents are reviewed concurrently, bounded by the configured
// concurrency limit; reviews come back in input order.
func (p *Pipeline) ReviewDocs(ctx context.Context, docs []item.M, opts Options) ([]item.M, error) {
	if err := ValidateDocs(docs); err != nil {
		return nil, err
	}
	docs, err := p.NormaliseDocs(ctx, docs)
	if err != nil {
		return nil, err
	}

	workers := p.cfg.MaxConcurrent
	if workers < 1 {
		workers = 1
	}
	if workers > len(docs) {
		workers = len(docs)
	}

	type job struct {
		idx int
		doc item.M
	}
	jobs := make(chan job)
	reviews := make([]item.M, len(docs))
	errs := make([]error, len(docs))
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				reviews[j.idx], errs[j.idx] = p.reviewDoc(ctx, j.doc, opts)
			}
		}()
	}
	for i, d := range docs {
		jobs <- job{idx: i, doc: d}
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return reviews, nil
}

// reviewDoc dispatches a single normalised document to the reviewer for
// its type. Unsupported types get a well-formed zero review instead of an
// error, so one stray document cannot sink a whole batch.
func (p *Pipeline) reviewDoc(ctx context.Context, doc item.M, opts Options) (item.M, error) {
	switch {
	case item.IsTweetDoc(doc):
		return p.tweets.Review(ctx, doc)
	case item.IsArticleDoc(doc):
		return p.articles.Review(ctx, doc)
	default:
		return p.unsupportedDocReview(doc, opts)
	}
}

// unsupportedDocReview rates a document of an unsupported type as not
// assessable, in the requested output format.
func (p *Pipeline) unsupportedDocReview(doc item.M, opts Options) (item.M, error) {
	msg := fmt.Sprintf("Unsupported document (not a %s))", supportedDocTypes)
	if p.reviewFormat(opts) == config.ReviewFormatCredAssessment {
		return item.M{
			"@context":              consts.CoinformContext,
			"@type":                 "DocumentCredibilityAssessment",
			"doc_url":               item.Str(doc, "url", ""),
			"item_assessed":         doc,
			"cred_assessment_error": msg,
			"date_assessed":         review.NowUTC(),
			"credibility":           0.0,
			"confidence":            0.0,
			"explanation":           msg,
		}, nil
	}

	rating, err := item.WithIdentifier(item.M{
		"@type":             "Rating",
		"ratingValue":       0.0,
		"confidence":        0.0,
		"ratingExplanation": msg,
	})
	if err != nil {
		return nil, err
	}
	// documents of unknown types cannot be hashed through the type
	// registry, so identify them by their url
	reviewed := doc
	if !item.HasIdentifier(reviewed) || item.Str(reviewed, "identifier", "") == "" {
		reviewed = item.Clone(doc)
		reviewed["identifier"] = item.HashText(item.Str(doc, "url", item.Type(doc)))
	}
	rev := item.M{
		"@context":     consts.CoinformContext,
		"@type":        "DocumentCredReview",
		"reviewAspect": review.AspectCredibility,
		"itemReviewed": reviewed,
		"dateCreated":  review.NowUTC(),
		"author":       p.bot(),
		"reviewRating": rating,
	}
	return item.WithIdentifier(rev)
}

// ReviewClaims reviews the credibility of textual claims against the
// sentence database.
func (p *Pipeline) ReviewClaims(ctx context.Context, claims []string, opts Options) ([]item.M, error) {
	if len(claims) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "at least one claim is required")
	}
	sents := make([]item.M, 0, len(claims))
	for _, c := range claims {
		sents = append(sents, item.AsSentence(c))
	}
	agg := p.agg
	if opts.CheckWorthiness != nil {
		agg = agg.WithWorthiness(*opts.CheckWorthiness)
	}
	return agg.Review(ctx, sents)
}

// ReviewWebsites reviews the credibility of websites given their urls or
// bare domain names.
func (p *Pipeline) ReviewWebsites(ctx context.Context, urls []string) ([]item.M, error) {
	if len(urls) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "at least one url is required")
	}
	reviews := make([]item.M, 0, len(urls))
	for _, u := range urls {
		rev, err := p.websites.ReviewURL(ctx, u)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, rev)
	}
	return reviews, nil
}
