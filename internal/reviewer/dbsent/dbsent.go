// Package dbsent reviews the credibility of sentences already collected in
// the Co-inform sentence database. A database sentence carries two possible
// credibility signals: a fact-checker ClaimReview about it, and the
// credibility of the web site it was published on. The reviewer normalises
// both onto the shared credibility scale and keeps the more confident one.
package dbsent

import (
	"context"
	"fmt"

	"github.com/veridex/veridex/internal/config"
	"github.com/veridex/veridex/internal/item"
	"github.com/veridex/veridex/internal/review"
	"github.com/veridex/veridex/internal/reviewer/claimreview"
	"github.com/veridex/veridex/internal/reviewer/website"
)

const (
	version     = "0.1.0"
	dateCreated = "2020-03-20T20:03:00Z"
)

const missingWebsiteText = "(Explanation for website credibility missing)"

// Reviewer produces DBSentCredReviews for database sentences.
type Reviewer struct {
	norm     *claimreview.Normalizer
	websites *website.Reviewer
	cfg      config.ReviewConfig
}

// NewReviewer creates a DB sentence credibility reviewer combining claim
// review normalisation with website credibility.
func NewReviewer(norm *claimreview.Normalizer, websites *website.Reviewer, cfg config.ReviewConfig) *Reviewer {
	return &Reviewer{norm: norm, websites: websites, cfg: cfg}
}

// Bot returns the reviewer descriptor, based on the website reviewer and
// claim review normalizer it aggregates.
func (r *Reviewer) Bot() item.M {
	return review.Bot{
		Type:        "DBSentCredReviewer",
		Name:        "Veridex DB Sentence Credibility Reviewer",
		Description: "Estimates the credibility of a sentence in the Co-inform DB based on known ClaimReviews or websites where the sentence has been published.",
		DateCreated: dateCreated,
		Version:     version,
		IsBasedOn:   []item.M{r.websites.Bot(), r.norm.Bot()},
		LaunchConfig: item.M{
			"factchecker_confidence_penalty": r.penalty(),
			"factchecker_urls":               asAnyList(r.cfg.FactcheckerURLs),
		},
	}.MustItem()
}

// ForSimilarSent reviews the database sentence inside a claim search match:
// the matched sentence together with its claim review (when a fact-checker
// reviewed it) and the credibility of the publishing site.
func (r *Reviewer) ForSimilarSent(ctx context.Context, simSent item.M) (item.M, error) {
	dbSentence := DBSentence(simSent)
	claimReview := item.Map(simSent, "claimReview")
	webSiteCred, err := r.websites.ForSimilarSent(ctx, simSent)
	if err != nil {
		return nil, err
	}
	return r.AggregateSubReviews(dbSentence, claimReview, webSiteCred)
}

// DBSentence converts a claim search match into the Sentence item it
// matched, with the database article it appeared in as its appearance.
func DBSentence(simSent item.M) item.M {
	inDoc := item.M{
		"@type":               "Article",
		"url":                 item.Str(simSent, "doc_url", ""),
		"coinform_collection": item.Str(simSent, "coinform_collection", "unknown"),
		"publisher":           item.Str(simSent, "domain", ""),
		"inLanguage":          item.Str(simSent, "lang_orig", ""),
		"datePublished":       item.Str(simSent, "published_date", ""),
	}
	if content := item.Str(simSent, "doc_content", ""); content != "" {
		inDoc["text"] = content
	}
	return item.AsSentence(item.Str(simSent, "sentence", ""), inDoc)
}

// AggregateSubReviews merges the claim review and website credibility
// signals about a database sentence into a DBSentCredReview, keeping the
// most confident of the two ratings. The claim review may be nil; the
// website review rating is reinterpreted as a rating of the sentence, with
// its confidence penalised when the site is a known fact-checker.
func (r *Reviewer) AggregateSubReviews(dbSentence, claimReview, webSiteCred item.M) (item.M, error) {
	nClaimReview, err := r.norm.Normalize(claimReview)
	if err != nil {
		return nil, err
	}

	siteRating := r.qclaimRating(webSiteCred)
	subRatings := []item.M{siteRating}
	if rating := review.RatingOf(nClaimReview); rating != nil {
		subRatings = append(subRatings, rating)
	}
	selected := review.MostConfidentRating(subRatings)

	basedOn := make([]any, 0, 2)
	if webSiteCred != nil {
		basedOn = append(basedOn, webSiteCred)
	}
	if nClaimReview != nil {
		basedOn = append(basedOn, nClaimReview)
	}

	revRating := item.M{
		"@type":             "AggregateRating",
		"reviewAspect":      review.AspectCredibility,
		"reviewCount":       review.TotalReviewCount(subRatings) + len(basedOn),
		"ratingCount":       review.TotalRatingCount(subRatings),
		"ratingValue":       item.Float(selected, "ratingValue", 0.0),
		"confidence":        item.Float(selected, "confidence", 0.0),
		"ratingExplanation": item.Str(selected, "ratingExplanation", ""),
	}

	inPart := ""
	if link := linkToAppearance(dbSentence); link != "" {
		inPart = fmt.Sprintf(", in %s, ", link)
	}
	rev := review.BaseReview("DBSentCredReview", r.Bot())
	rev["itemReviewed"] = dbSentence
	rev["text"] = fmt.Sprintf("Sentence `%s` %sseems *%s* %s",
		item.Str(dbSentence, "text", "??"),
		inPart,
		review.RatingLabel(revRating, r.cfg.CredConfThreshold),
		item.Str(selected, "ratingExplanation", ""))
	rev["reviewRating"] = revRating
	rev["reviewAspect"] = review.AspectCredibility
	rev["isBasedOn"] = basedOn
	return item.WithIdentifier(rev)
}

// qclaimRating reinterprets a WebSiteCredReview rating as a credibility
// rating for a sentence published on that site. Fact-checker sites publish
// sentences of every credibility, so their site confidence is penalised in
// favour of their claim reviews.
func (r *Reviewer) qclaimRating(webSiteCred item.M) item.M {
	rating := item.M{
		"@type":        "AggregateRating",
		"reviewAspect": review.AspectCredibility,
		"reviewCount":  int(item.FloatIn(webSiteCred, []string{"reviewRating", "reviewCount"}, 0)),
		"ratingCount":  int(item.FloatIn(webSiteCred, []string{"reviewRating", "ratingCount"}, 0)),
		"ratingValue":  item.FloatIn(webSiteCred, []string{"reviewRating", "ratingValue"}, 0.0),
		"dateCreated":  review.NowUTC(),
	}
	confidence := item.FloatIn(webSiteCred, []string{"reviewRating", "confidence"}, 0.0)
	siteName := item.StrIn(webSiteCred, []string{"itemReviewed", "name"}, "")
	siteText := item.Str(webSiteCred, "text", missingWebsiteText)
	if review.SiteItemInList(item.Map(webSiteCred, "itemReviewed"), r.cfg.FactcheckerURLs) {
		rating["confidence"] = confidence * r.penalty()
		rating["ratingExplanation"] = fmt.Sprintf(
			"as it was published in site `%s`. %s %s", siteName, siteText,
			"However, the site is a factchecker so it publishes sentences with different credibility values.")
	} else {
		rating["confidence"] = confidence
		rating["ratingExplanation"] = fmt.Sprintf(
			"as it was published on site `%s`. %s", siteName, siteText)
	}
	return rating
}

// linkToAppearance renders a markdown link to the first document a
// sentence appeared in, or "" when the sentence has no usable appearance.
func linkToAppearance(sentence item.M) string {
	apps := item.List(sentence, "appearance")
	if len(apps) == 0 {
		return ""
	}
	doc, ok := item.AsItem(apps[0])
	if !ok {
		return ""
	}
	docURL := item.Str(doc, "url", "")
	site := item.Str(doc, "domain", "")
	switch {
	case docURL != "" && site != "":
		return fmt.Sprintf("[%s](%s)", site, docURL)
	case docURL != "":
		return fmt.Sprintf("[this page](%s)", docURL)
	}
	return ""
}

func (r *Reviewer) penalty() float64 {
	if r.cfg.FactcheckerConfidencePenalty <= 0 || r.cfg.FactcheckerConfidencePenalty > 1 {
		return 0.5
	}
	return r.cfg.FactcheckerConfidencePenalty
}

func asAnyList(ss []string) []any {
	out := make([]any, 0, len(ss))
	for _, s := range ss {
		out = append(out, s)
	}
	return out
}
