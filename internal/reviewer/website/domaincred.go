package website

import (
	"context"

	"go.uber.org/zap"

	"github.com/veridex/veridex/consts"
	"github.com/veridex/veridex/internal/item"
	"github.com/veridex/veridex/internal/model"
	"github.com/veridex/veridex/internal/review"
	"github.com/veridex/veridex/internal/store"
	"github.com/veridex/veridex/pkg/logger"
)

// DomainCredibility fetches the credibility assessment for a domain or
// source URL, serving cached payloads while they are fresh. An empty
// domain or a failed lookup yields the zero-confidence default, never an
// error.
func (r *Reviewer) DomainCredibility(ctx context.Context, domain string) item.M {
	if domain == "" {
		return DefaultDomainCredibility(domain, "Default credibility for unknown domain")
	}
	payload, err := store.CachedDomainCredibility(ctx, r.store, domain, r.ttl,
		func(ctx context.Context) (model.JSONMap, error) {
			resp, err := r.client.SourceCredibility(ctx, domain)
			if err != nil {
				return nil, err
			}
			return model.JSONMap(resp), nil
		})
	if err != nil {
		logger.Error("Failed to retrieve source credibility",
			zap.String("domain", domain), zap.Error(err))
		return DefaultDomainCredibility(domain, "Unable to retrieve credibility assessment")
	}
	domCred := item.Clone(item.M(payload))
	domCred["@context"] = consts.CoinformContext
	domCred["@type"] = "DomainCredibility"
	domCred["dateCreated"] = review.NowUTC()
	return domCred
}

// DefaultDomainCredibility is the assessment used when no external rater
// knows the domain.
func DefaultDomainCredibility(domain, explanation string) item.M {
	return item.M{
		"credibility": item.M{
			"@context":      consts.CoinformContext,
			"@type":         "DomainCredibility",
			"item_assessed": domain,
			"value":         0.0,
			"confidence":    0.0,
			"explanation":   explanation,
		},
		"assessments": []any{},
	}
}

// PenalizeDomainCredibility halves the confidence of a domain credibility
// and returns the adjusted copy. Fact-checker sites publish sentences of
// every credibility, so the site's own (usually stellar) rating says
// little about a sentence found there.
func PenalizeDomainCredibility(domCred item.M) item.M {
	out := item.Clone(domCred)
	cred := item.Clone(item.Map(domCred, "credibility"))
	cred["confidence"] = item.Float(cred, "confidence", 0.0) * 0.5
	cred["explanation"] = "Domain credibility for a factchecker should be mixed. Reduced from standard confidence."
	out["credibility"] = cred
	return out
}
