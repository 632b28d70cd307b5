// Package website reviews the credibility of web sites through the
// MisinfoMe source credibility service, which aggregates third-party
// reliability assessments per domain. Lookups go through the domain
// credibility cache; a site that cannot be assessed degrades to a
// zero-confidence review rather than failing the document review.
package website

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/veridex/veridex/internal/client"
	"github.com/veridex/veridex/internal/config"
	"github.com/veridex/veridex/internal/item"
	"github.com/veridex/veridex/internal/review"
	"github.com/veridex/veridex/internal/store"
	"github.com/veridex/veridex/pkg/errors"
)

// Reviewer produces WebSiteCredReviews for web sites.
type Reviewer struct {
	client *client.SiteCredibilityClient
	store  store.Store
	ttl    time.Duration
}

// NewReviewer creates a website credibility reviewer backed by the given
// source credibility client and cache store.
func NewReviewer(c *client.SiteCredibilityClient, s store.Store, cfg config.CacheConfig) *Reviewer {
	return &Reviewer{
		client: c,
		store:  s,
		ttl:    time.Duration(cfg.DomainCredibilityTTL) * time.Minute,
	}
}

// Bot returns the reviewer descriptor. The underlying rater is an
// external service whose results drift as sites are re-assessed, so the
// version rolls weekly rather than tracking a release.
func (r *Reviewer) Bot() item.M {
	week := review.StartOfWeekUTC(time.Now())
	return review.Bot{
		Type:        "MisinfoMeSourceCredReviewer",
		Name:        "MisinfoMe Source Credibility Reviewer",
		Description: "Reviews the credibility of a web site based on assessments by external raters, aggregated by the MisinfoMe service",
		DateCreated: week,
		Version:     week,
	}.MustItem()
}

// Review produces a WebSiteCredReview for a WebSite item.
func (r *Reviewer) Review(ctx context.Context, site item.M) (item.M, error) {
	if !item.IsWebSite(site) {
		return nil, errors.New(errors.ErrCodeValidation,
			fmt.Sprintf("expected a WebSite item, got %q", item.Type(site)))
	}
	siteURL := item.Str(site, "url", "")
	if siteURL == "" {
		return nil, errors.New(errors.ErrCodeValidation, "WebSite item has no url")
	}
	return r.FromDomainCredibility(r.DomainCredibility(ctx, siteURL))
}

// ReviewURL wraps a bare URL or domain into a WebSite item and reviews it.
func (r *Reviewer) ReviewURL(ctx context.Context, s string) (item.M, error) {
	return r.Review(ctx, item.StrAsWebsite(s))
}

// ForSimilarSent reviews the web site a related sentence was published
// on. Claim search results may carry a pre-computed domain credibility, a
// bare domain, or just the document URL.
func (r *Reviewer) ForSimilarSent(ctx context.Context, simSent item.M) (item.M, error) {
	if dc := item.Map(simSent, "domain_credibility"); dc != nil {
		return r.FromDomainCredibility(dc)
	}
	if dom := item.Map(simSent, "domain"); dom != nil {
		return r.Review(ctx, dom)
	}
	if dom := item.Str(simSent, "domain", ""); dom != "" {
		return r.Review(ctx, item.StrAsWebsite(dom))
	}
	docURL := item.Str(simSent, "doc_url", "")
	domain := item.DomainFromURL(docURL)
	if domain == "" {
		return nil, errors.New(errors.ErrCodeValidation,
			fmt.Sprintf("related sentence has no usable site reference: %v", simSent))
	}
	return r.Review(ctx, item.StrAsWebsite(domain))
}

// FromDomainCredibility converts the legacy DomainCredibility shape into
// a WebSiteCredReview.
func (r *Reviewer) FromDomainCredibility(domCred item.M) (item.M, error) {
	site := item.StrAsWebsite(item.Str(domCred, "itemReviewed", "missing_website"))
	ratingVal := item.FloatIn(domCred, []string{"credibility", "value"}, 0.0)
	assessments := item.List(domCred, "assessments")
	explanation := fmt.Sprintf("based on %d review(s) by external rater(s)%s",
		len(assessments), exampleRatersMarkdown(assessments))

	rev := review.BaseReview("WebSiteCredReview", r.Bot())
	rev["itemReviewed"] = site
	rev["text"] = fmt.Sprintf("Site `%s` seems *%s* %s",
		item.Str(site, "name", "??"),
		review.DescribeCredVal(ratingVal, nil),
		explanation)
	rev["reviewRating"] = review.AggregateRating{
		Rating: review.Rating{
			Value:       ratingVal,
			Confidence:  item.FloatIn(domCred, []string{"credibility", "confidence"}, 0.5),
			Explanation: explanation,
		},
		ReviewCount: len(assessments),
		RatingCount: len(assessments),
	}.Item()
	if dc := item.Str(domCred, "dateCreated", ""); dc != "" {
		rev["dateCreated"] = dc
	}
	rev["reviewAspect"] = review.AspectCredibility
	rev["isBasedOn"] = []any{}
	rev["isBasedOn_assessments"] = assessments
	return item.WithIdentifier(rev)
}

// exampleRatersMarkdown names up to two of the external raters behind an
// assessment list as markdown links, for review explanations.
func exampleRatersMarkdown(assessments []any) string {
	var links []string
	for _, a := range assessments {
		am, ok := a.(item.M)
		if !ok {
			continue
		}
		origin := item.Map(am, "origin")
		if origin == nil {
			continue
		}
		links = append(links, fmt.Sprintf("[%s](%s)",
			item.Str(origin, "name", ""), item.Str(origin, "homepage", "")))
	}
	switch len(links) {
	case 0:
		return " (missing data about raters)"
	case 1:
		return fmt.Sprintf(" (%s)", links[0])
	case 2:
		return fmt.Sprintf(" (%s)", strings.Join(links, " or "))
	default:
		return fmt.Sprintf(" (e.g. %s)", strings.Join(links[:2], " or "))
	}
}
