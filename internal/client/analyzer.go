package client

import (
	"context"

	"github.com/veridex/veridex/internal/config"
	"github.com/veridex/veridex/internal/item"
)

// AnalyzerClient talks to the article analysis service, which scrapes a web
// document, extracts its main text and selects its check-worthy claims.
type AnalyzerClient struct {
	*Client
}

// NewAnalyzer creates a client for the article analysis service.
func NewAnalyzer(cfg config.EndpointConfig) *AnalyzerClient {
	return &AnalyzerClient{Client: New("analyzer", cfg)}
}

// AnalyzeArticle submits an article for scraping and claim extraction. The
// article must provide a url; content is passed along when already known so
// the service can skip scraping. The response echoes the article fields
// plus resolved_url, content, title and claims_content.
func (c *AnalyzerClient) AnalyzeArticle(ctx context.Context, article item.M) (item.M, error) {
	body := item.M{
		"url":           item.Str(article, "url", ""),
		"expand_claims": true,
	}
	if content := item.Str(article, "content", ""); content != "" {
		body["content"] = content
	}

	var resp item.M
	if err := c.PostJSON(ctx, c.BaseURL()+"/analyze_doc", body, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}
