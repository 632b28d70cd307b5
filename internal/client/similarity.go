package client

import (
	"context"

	"go.uber.org/zap"

	"github.com/veridex/veridex/internal/config"
	"github.com/veridex/veridex/internal/item"
	pkgerrors "github.com/veridex/veridex/pkg/errors"
	"github.com/veridex/veridex/pkg/logger"
)

// SimilarityClient talks to the semantic claim search service. The service
// matches query sentences against a database of previously collected
// sentences and claim reviews, and also hosts the similarity and stance
// sub-reviewer descriptors.
type SimilarityClient struct {
	*Client
}

// NewSimilarity creates a client for the claim search service. The
// configured URL is the full search endpoint, not a service root.
func NewSimilarity(cfg config.EndpointConfig) *SimilarityClient {
	return &SimilarityClient{Client: New("claim_search", cfg)}
}

// Search forwards a raw claim search request and returns the full response,
// including the results header. An empty claims list asks the service to
// describe its sub-reviewer bots instead.
func (c *SimilarityClient) Search(ctx context.Context, claims []string) (item.M, error) {
	body := item.M{}
	if len(claims) > 0 {
		body["claims"] = claims
	}
	var resp item.M
	if err := c.PostJSON(ctx, c.BaseURL(), body, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// FindRelatedSentences searches the sentence database for matches to each
// query sentence in a single batched request. The returned slice is aligned
// with the input: position i holds the similarity result for sents[i], or
// nil when the service returned nothing for it. An empty input performs no
// request.
func (c *SimilarityClient) FindRelatedSentences(ctx context.Context, sents []string) ([]item.M, error) {
	if len(sents) == 0 {
		return nil, nil
	}

	resp, err := c.Search(ctx, sents)
	if err != nil {
		return nil, err
	}
	if resp["results"] == nil {
		logger.Warn("Claim search response has no results field",
			zap.Int("claims", len(sents)),
		)
		return nil, nil
	}

	results := make([]item.M, 0, len(sents))
	for _, v := range item.List(resp, "results") {
		// result rows are raw search records, not typed items
		m, ok := v.(item.M)
		if !ok {
			continue
		}
		normaliseSimilarSents(m)
		results = append(results, m)
	}
	return alignResults(sents, results), nil
}

// Bots fetches the sub-reviewer descriptors hosted by the claim search
// service.
func (c *SimilarityClient) Bots(ctx context.Context) (item.M, error) {
	resp, err := c.Search(ctx, nil)
	if err != nil {
		return nil, err
	}
	bots := item.Map(resp, "bots")
	if bots == nil {
		return nil, pkgerrors.New(pkgerrors.ErrCodeUpstreamDecode,
			"claim search response has no bots field")
	}
	return bots, nil
}

// SimReviewer returns the descriptor of the semantic sentence similarity
// reviewer.
func (c *SimilarityClient) SimReviewer(ctx context.Context) (item.M, error) {
	bots, err := c.Bots(ctx)
	if err != nil {
		return nil, err
	}
	sim := item.Map(bots, "simReviewer")
	if sim == nil {
		return nil, pkgerrors.New(pkgerrors.ErrCodeUpstreamDecode,
			"claim search service did not describe a similarity reviewer")
	}
	return sim, nil
}

// SentenceEncoder returns the descriptor of the sentence encoder the
// similarity reviewer is based on.
func (c *SimilarityClient) SentenceEncoder(ctx context.Context) (item.M, error) {
	sim, err := c.SimReviewer(ctx)
	if err != nil {
		return nil, err
	}
	based := item.List(sim, "isBasedOn")
	if len(based) > 0 {
		if enc, ok := item.AsItem(based[0]); ok {
			return enc, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.ErrCodeUpstreamDecode,
		"similarity reviewer descriptor has no sentence encoder")
}

// StancePredictor returns the descriptor of the stance detection model.
func (c *SimilarityClient) StancePredictor(ctx context.Context) (item.M, error) {
	bots, err := c.Bots(ctx)
	if err != nil {
		return nil, err
	}
	stance := item.Map(bots, "stancePred")
	if stance == nil {
		return nil, pkgerrors.New(pkgerrors.ErrCodeUpstreamDecode,
			"claim search service did not describe a stance predictor")
	}
	return stance, nil
}

// normaliseSimilarSents rewrites the language tags of the matched sentences
// into canonical BCP 47 form. The sentence database carries tags in
// assorted legacy spellings ("en_US.UTF-8" and the like).
func normaliseSimilarSents(csr item.M) {
	for _, v := range item.List(csr, "results") {
		sent, ok := v.(item.M)
		if !ok {
			continue
		}
		if lang := item.Str(sent, "lang_orig", ""); lang != "" {
			sent["lang_orig"] = config.NormalizeLanguage(lang)
		}
	}
}

// alignResults pairs each query sentence with its similarity result. When
// the service returns one result per query they are matched positionally;
// otherwise they are matched through the echoed q_claim text.
func alignResults(sents []string, results []item.M) []item.M {
	if len(results) == len(sents) {
		return results
	}

	logger.Warn("Claim search returned a partial result set",
		zap.Int("claims", len(sents)),
		zap.Int("results", len(results)),
	)
	byClaim := make(map[string]item.M, len(results))
	for _, r := range results {
		if r == nil {
			continue
		}
		if q := item.Str(r, "q_claim", ""); q != "" {
			if _, seen := byClaim[q]; !seen {
				byClaim[q] = r
			}
		}
	}
	aligned := make([]item.M, len(sents))
	for i, s := range sents {
		aligned[i] = byClaim[s]
	}
	return aligned
}
