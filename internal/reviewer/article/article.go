// Package article reviews the credibility of web articles. An article is
// analysed into its check-worthy claims, each claim is reviewed against
// the sentence database, and the claim reviews are combined with the
// credibility of the publishing site. An article is only as credible as
// its least credible confidently-reviewed claim.
package article

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/veridex/veridex/internal/client"
	"github.com/veridex/veridex/internal/config"
	"github.com/veridex/veridex/internal/item"
	"github.com/veridex/veridex/internal/review"
	"github.com/veridex/veridex/internal/reviewer/aggqsent"
	"github.com/veridex/veridex/internal/reviewer/website"
)

const (
	version     = "0.1.1"
	dateCreated = "2020-04-01T17:02:00Z"
)

// social-media platforms host content by anyone, so their (often good)
// site reputation says little about any given post
const socialMediaConfidence = 0.2

const missingSiteText = "(Explanation for site credibility missing)"

// Reviewer produces ArticleCredReviews for web documents.
type Reviewer struct {
	analyzer *client.AnalyzerClient
	websites *website.Reviewer
	agg      *aggqsent.Reviewer
	cfg      config.ReviewConfig
}

// NewReviewer creates an article credibility reviewer.
func NewReviewer(analyzer *client.AnalyzerClient, websites *website.Reviewer, agg *aggqsent.Reviewer, cfg config.ReviewConfig) *Reviewer {
	return &Reviewer{analyzer: analyzer, websites: websites, agg: agg, cfg: cfg}
}

// Bot returns the reviewer descriptor.
func (r *Reviewer) Bot() item.M {
	return review.Bot{
		Type:        "ArticleCredReviewer",
		Name:        "Veridex Article Credibility Reviewer",
		Description: "Reviews the credibility of an article by (i) semantically analysing it to detect relevant claims (ii) getting credibility reviews for the claims and (iii) getting a credibility review for the site that published the article.",
		DateCreated: dateCreated,
		Version:     version,
		IsBasedOn:   []item.M{r.websites.Bot(), r.agg.Bot()},
		TaskConfig: item.M{
			"cred_conf_threshold": r.cfg.CredConfThreshold,
			"max_claims_in_doc":   r.cfg.MaxClaimsPerDoc,
			"review_format":       r.cfg.ReviewFormat,
		},
	}.MustItem()
}

// Review reviews the credibility of a web document. Documents that do not
// carry pre-analysed claims are sent to the analysis service first.
func (r *Reviewer) Review(ctx context.Context, doc item.M) (item.M, error) {
	adoc, err := r.analyzedDoc(ctx, doc)
	if err != nil {
		return nil, err
	}

	domcredRev, err := r.websiteReview(ctx, adoc)
	if err != nil {
		return nil, err
	}
	contentRev, err := r.contentReview(ctx, adoc)
	if err != nil {
		return nil, err
	}

	aggRating := r.aggregateSubReviews(domcredRev, contentRev, adoc)
	rev := review.BaseReview("ArticleCredReview", r.Bot())
	rev["itemReviewed"] = adoc
	rev["text"] = fmt.Sprintf("%s seems *%s* %s",
		markdownRef(adoc),
		review.RatingLabel(aggRating, r.cfg.CredConfThreshold),
		item.Str(aggRating, "ratingExplanation", "(missing explanation)"))
	rev["reviewRating"] = aggRating
	rev["reviewAspect"] = review.AspectCredibility
	rev["isBasedOn"] = []any{domcredRev, contentRev}
	return item.WithIdentifier(rev)
}

// analyzedDoc returns the document with its claims_content populated,
// analysing it remotely when needed.
func (r *Reviewer) analyzedDoc(ctx context.Context, doc item.M) (item.M, error) {
	_, hasContent := doc["content"]
	_, hasClaims := doc["claims_content"]
	if hasContent && hasClaims {
		return doc, nil
	}
	return r.analyzer.AnalyzeArticle(ctx, doc)
}

// websiteReview reviews the site that published the document. Social-media
// platforms get their confidence capped since anyone can publish there.
func (r *Reviewer) websiteReview(ctx context.Context, adoc item.M) (item.M, error) {
	domCred := r.websites.DomainCredibility(ctx, docDomain(adoc))
	rev, err := r.websites.FromDomainCredibility(domCred)
	if err != nil {
		return nil, err
	}
	if review.SiteItemInList(item.Map(rev, "itemReviewed"), r.cfg.SocialMediaURLs) {
		if rating := review.RatingOf(rev); rating != nil {
			rating["confidence"] = socialMediaConfidence
		}
	}
	return rev, nil
}

// docDomain picks the document's publishing domain: an explicit domain
// field, the indexing source, or the host of its url.
func docDomain(adoc item.M) string {
	if dom := item.Str(adoc, "domain", ""); dom != "" {
		return dom
	}
	if doms := item.StrList(adoc, "domain"); len(doms) > 0 {
		return doms[0]
	}
	if src := item.Str(adoc, "source_id", ""); src != "" {
		return src
	}
	return item.DomainFromURL(item.Str(adoc, "url", ""))
}

// contentReview reviews the document through its check-worthy claims.
func (r *Reviewer) contentReview(ctx context.Context, adoc item.M) (item.M, error) {
	claims := r.selectClaims(adoc)
	sentReviews, err := r.agg.Review(ctx, claims)
	if err != nil {
		return nil, err
	}
	return r.aggregateSentReviews(sentReviews, adoc)
}

// selectClaims extracts the claim sentences of an analysed document,
// capped at the configured maximum per document.
func (r *Reviewer) selectClaims(adoc item.M) []item.M {
	inDoc := item.Str(adoc, "resolved_url",
		item.Str(adoc, "url", item.Str(adoc, "id", "")))
	extractor := item.Str(adoc, "extractor", "unknown")

	var claims []item.M
	for _, v := range item.List(adoc, "claims_content") {
		cc, ok := v.(item.M)
		if !ok {
			continue
		}
		text := cleanupContent(item.Str(cc, "content", ""))
		if text == "" {
			continue
		}
		claims = append(claims, item.M{
			"@type":     "Sentence",
			"text":      text,
			"in_doc":    inDoc,
			"extractor": extractor,
		})
	}
	if max := r.cfg.MaxClaimsPerDoc; max > 0 && len(claims) > max {
		claims = claims[:max]
	}
	return claims
}

// cleanupContent strips non-ASCII runes and line breaks out of indexed
// claim content.
func cleanupContent(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r > unicode.MaxASCII || r == '\n' || r == '\t' || r == '\r' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// aggregateSentReviews combines the claim credibility reviews into a
// review of the document content, selecting the least credible claim
// among those reviewed with enough confidence.
func (r *Reviewer) aggregateSentReviews(sentReviews []item.M, adoc item.M) (item.M, error) {
	docRef := markdownRef(adoc)
	rev := review.BaseReview("ArticleCredReview", r.Bot())
	rev["itemReviewed"] = adoc
	rev["reviewAspect"] = review.AspectCredibility
	rev["isBasedOn"] = asAnyList(sentReviews)

	if len(sentReviews) == 0 {
		explanation := "we could not find any relevant claims in it."
		rev["text"] = fmt.Sprintf("%s is *not verifiable* as %s", docRef, explanation)
		rev["reviewRating"] = item.M{
			"@type":             "Rating",
			"reviewAspect":      review.AspectCredibility,
			"ratingValue":       0.0,
			"confidence":        0.0,
			"ratingExplanation": explanation,
		}
		return item.WithIdentifier(rev)
	}

	subRatings := make([]item.M, 0, len(sentReviews))
	for _, sr := range sentReviews {
		if rating := review.RatingOf(sr); rating != nil {
			subRatings = append(subRatings, rating)
		}
	}
	confident, ignored := review.PartitionByMinConfidence(sentReviews, r.cfg.CredConfThreshold)

	if len(confident) == 0 {
		example := ""
		if len(ignored) > 0 {
			example = fmt.Sprintf(" An example: %s ", item.Str(ignored[0], "text", ""))
		}
		msg := fmt.Sprintf("we could not assess credibility of %d of its sentences with sufficient confidence.%s",
			len(sentReviews), example)
		rev["text"] = fmt.Sprintf("%s is *not verifiable* as %s.", docRef, msg)
		rev["reviewRating"] = item.M{
			"@type":             "AggregateRating",
			"reviewAspect":      review.AspectCredibility,
			"ratingValue":       0.0,
			"confidence":        0.0,
			"ratingExplanation": msg,
			"ratingCount":       review.TotalRatingCount(subRatings),
			"reviewCount":       review.TotalReviewCount(subRatings) + len(sentReviews),
		}
		return item.WithIdentifier(rev)
	}

	byValue := review.SortByRatingValue(confident)
	leastCred := byValue[0]
	msg := fmt.Sprintf("like its least credible Sentence `%s` which %s",
		item.StrIn(leastCred, []string{"itemReviewed", "text"}, "(missing sentence)"),
		review.ExplanationOf(leastCred))
	revRating := item.M{
		"@type":             "AggregateRating",
		"reviewAspect":      review.AspectCredibility,
		"ratingValue":       review.ValueOf(leastCred),
		"confidence":        review.ConfidenceOf(leastCred),
		"ratingExplanation": msg,
		"ratingCount":       review.TotalRatingCount(subRatings),
		"reviewCount":       review.TotalReviewCount(subRatings) + len(sentReviews),
	}
	rev["isBasedOn"] = asAnyList(append(byValue, ignored...))
	rev["text"] = fmt.Sprintf("%s is *%s* %s",
		docRef, review.RatingLabel(revRating, r.cfg.CredConfThreshold), msg)
	rev["reviewRating"] = revRating
	return item.WithIdentifier(rev)
}

// aggregateSubReviews combines the site and content credibility reviews
// into the document's overall rating. A confident content review wins;
// otherwise a confident site review stands in with dampened confidence,
// and with neither the document is not verifiable.
func (r *Reviewer) aggregateSubReviews(domcredRev, contentRev, adoc item.M) item.M {
	thresh := r.cfg.CredConfThreshold
	contentConf := review.ConfidenceOf(contentRev)
	domConf := review.ConfidenceOf(domcredRev)

	var credVal, credConf float64
	var explanation string
	switch {
	case contentConf >= thresh:
		credVal = review.ValueOf(contentRev)
		credConf = contentConf
		explanation = review.ExplanationOf(contentRev)
		if domConf >= thresh {
			explanation += fmt.Sprintf("\nTake into account that it appeared in website `%s`. %s",
				siteName(domcredRev), item.Str(domcredRev, "text", missingSiteText))
		}
	case domConf >= thresh:
		credVal = review.ValueOf(domcredRev)
		credConf = domConf
		// a credible site can still publish false claims, so only a low
		// site credibility transfers at full confidence
		if credVal >= r.cfg.WebsitePenaliseThreshold {
			credConf = domConf * r.cfg.WebsiteConfidenceFactor
		}
		explanation = fmt.Sprintf("as it appeared in website `%s`. %s",
			siteName(domcredRev), item.Str(domcredRev, "text", missingSiteText))
	default:
		explanation = "we have insufficient credibility signals from text and website analyses."
		contentExpl := item.Str(contentRev, "text", "")
		siteExpl := item.Str(domcredRev, "text", "")
		if contentExpl != "" || siteExpl != "" {
			explanation += fmt.Sprintf(
				"In case it is useful, we include the **weak** credibility signals we found:%s%s",
				bulleted(contentExpl), bulleted(siteExpl))
		}
	}

	subRatings := make([]item.M, 0, 2)
	for _, sr := range []item.M{domcredRev, contentRev} {
		if rating := review.RatingOf(sr); rating != nil {
			subRatings = append(subRatings, rating)
		}
	}
	return item.M{
		"@type":             "AggregateRating",
		"reviewAspect":      review.AspectCredibility,
		"ratingValue":       credVal,
		"confidence":        credConf,
		"ratingExplanation": explanation,
		"ratingCount":       review.TotalRatingCount(subRatings),
		"reviewCount":       review.TotalReviewCount(subRatings) + 2,
	}
}

// markdownRef renders a markdown reference to a document for review
// explanations.
func markdownRef(adoc item.M) string {
	title := item.Str(adoc, "headline", item.Str(adoc, "title", "Missing title"))
	return fmt.Sprintf("%s \"[%s](%s)\"",
		item.Str(adoc, "@type", "Article"), title, item.Str(adoc, "url", ""))
}

func siteName(domcredRev item.M) string {
	name := item.StrIn(domcredRev, []string{"itemReviewed", "name"}, "")
	if name == "" {
		name = item.StrIn(domcredRev, []string{"itemReviewed", "url"}, "(missing)")
	}
	return name
}

func bulleted(s string) string {
	if s == "" {
		return ""
	}
	return "\n * " + s
}

func asAnyList(reviews []item.M) []any {
	out := make([]any, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, r)
	}
	return out
}
