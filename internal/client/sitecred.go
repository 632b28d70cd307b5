package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/veridex/veridex/internal/config"
	"github.com/veridex/veridex/internal/item"
)

// SiteCredibilityClient talks to the external source credibility service,
// which aggregates third-party reliability assessments for websites.
type SiteCredibilityClient struct {
	*Client
}

// NewSiteCredibility creates a client for the source credibility service.
// The configured URL is the service root.
func NewSiteCredibility(cfg config.EndpointConfig) *SiteCredibilityClient {
	return &SiteCredibilityClient{Client: New("site_credibility", cfg)}
}

// SourceCredibility fetches the aggregated credibility assessment for a
// website domain. The response carries a credibility rating plus the list
// of third-party assessments it is based on.
func (c *SiteCredibilityClient) SourceCredibility(ctx context.Context, domain string) (item.M, error) {
	u := fmt.Sprintf("%s/api/credibility/sources/?source=%s",
		c.BaseURL(), url.QueryEscape(domain))
	var resp item.M
	if err := c.GetJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}
