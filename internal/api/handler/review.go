package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/veridex/veridex/consts"
	"github.com/veridex/veridex/internal/client"
	"github.com/veridex/veridex/internal/config"
	"github.com/veridex/veridex/internal/indexer"
	"github.com/veridex/veridex/internal/item"
	"github.com/veridex/veridex/internal/pipeline"
	"github.com/veridex/veridex/pkg/errors"
	"github.com/veridex/veridex/pkg/logger"
)

// ReviewHandler serves the credibility review endpoints. Review requests
// are delegated to the pipeline; claim searches are proxied to the claim
// search service.
type ReviewHandler struct {
	pipeline   *pipeline.Pipeline
	similarity *client.SimilarityClient
	emitter    *indexer.Emitter
	cfg        config.ReviewConfig
}

// NewReviewHandler creates a new review handler. The emitter may be nil
// when no indexer is configured.
func NewReviewHandler(p *pipeline.Pipeline, similarity *client.SimilarityClient,
	emitter *indexer.Emitter, cfg config.ReviewConfig) *ReviewHandler {
	return &ReviewHandler{
		pipeline:   p,
		similarity: similarity,
		emitter:    emitter,
		cfg:        cfg,
	}
}

// ClaimSearch handles GET /api/v1/claim/search
func (h *ReviewHandler) ClaimSearch(c *gin.Context) {
	claims := c.QueryArray("claim")
	if len(claims) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    errors.ErrCodeValidation,
			"message": "claim parameter is mandatory",
		})
		return
	}
	logger.Info("Searching for matching claims", zap.Int("claims", len(claims)))

	resp, err := h.similarity.Search(c.Request.Context(), claims)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// InternalClaimSearchRequest represents the service-to-service search body
type InternalClaimSearchRequest struct {
	Claims []string `json:"claims"`
}

// InternalClaimSearch handles POST /api/v1/claim/internal-search.
// A request without claims asks for the descriptors of the bots involved
// in the search instead of search results.
func (h *ReviewHandler) InternalClaimSearch(c *gin.Context) {
	var req InternalClaimSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    errors.ErrCodeValidation,
			"message": "Invalid request body",
		})
		return
	}

	if req.Claims == nil {
		logger.Info("No claims provided, describing the claim search bots")
	} else {
		logger.Info("Searching for related sentences", zap.Int("claims", len(req.Claims)))
	}
	resp, err := h.similarity.Search(c.Request.Context(), req.Claims)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ClaimCredibility handles GET /api/v1/reviewer/credibility/claim and its
// alias /api/v1/claim/predict/credibility
func (h *ReviewHandler) ClaimCredibility(c *gin.Context) {
	claims := c.QueryArray("claim")
	if len(claims) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    errors.ErrCodeValidation,
			"message": "claim parameter is mandatory",
		})
		return
	}

	opts, ok := h.reviewOptions(c)
	if !ok {
		return
	}
	logger.Info("Reviewing claim credibility", zap.Int("claims", len(claims)))

	reviews, err := h.pipeline.ReviewClaims(c.Request.Context(), claims, opts)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.emit(reviews)

	formatted, err := h.pipeline.FormatGraph(reviews, opts)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, formatted)
}

// WebsiteCredibility handles GET /api/v1/reviewer/credibility/website
func (h *ReviewHandler) WebsiteCredibility(c *gin.Context) {
	urls := c.QueryArray("url")
	if len(urls) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    errors.ErrCodeValidation,
			"message": "url parameter is mandatory",
		})
		return
	}
	logger.Info("Reviewing website credibility", zap.Strings("urls", urls))

	reviews, err := h.pipeline.ReviewWebsites(c.Request.Context(), urls)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.emit(reviews)
	c.JSON(http.StatusOK, reviews)
}

// WebpageCredibilityRequest represents the webpage review request body.
// Full webpage documents and bare urls may be mixed in one request.
type WebpageCredibilityRequest struct {
	Webpages []item.M `json:"webpages"`
	URLs     []string `json:"url"`
}

// WebpageCredibility handles GET and POST /api/v1/reviewer/credibility/webpage
func (h *ReviewHandler) WebpageCredibility(c *gin.Context) {
	var req WebpageCredibilityRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    errors.ErrCodeValidation,
				"message": "Invalid request body",
			})
			return
		}
	}

	docs := make([]item.M, 0, len(req.Webpages)+len(req.URLs))
	docs = append(docs, req.Webpages...)
	for _, u := range append(req.URLs, c.QueryArray("url")...) {
		docs = append(docs, item.M{
			"@context": consts.SchemaContext,
			"@type":    "Webpage",
			"url":      u,
		})
	}
	if len(docs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    errors.ErrCodeValidation,
			"message": "at least one webpage or url is required",
		})
		return
	}

	gFormat, ok := h.graphFormat(c, config.ReviewFormatSchemaOrg)
	if !ok {
		return
	}
	// webpage reviews are always rendered as schema.org review graphs
	opts := pipeline.Options{
		ReviewFormat: config.ReviewFormatSchemaOrg,
		GraphFormat:  gFormat,
	}
	logger.Info("Reviewing webpage credibility", zap.Int("webpages", len(docs)))

	reviews, err := h.pipeline.ReviewDocs(c.Request.Context(), docs, opts)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.emit(reviews)

	formatted, err := h.pipeline.FormatGraph(reviews, opts)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, formatted)
}

// TweetCredibilityRequest represents the tweet review request body
type TweetCredibilityRequest struct {
	Tweets       []item.M `json:"tweets" binding:"required"`
	ReviewFormat string   `json:"reviewFormat"`
	BasedOnDepth *int     `json:"basedOn_depth"`
}

// TweetCredibility handles POST /api/v1/reviewer/credibility/tweet and its
// alias /api/v1/tweet/claim/credibility
func (h *ReviewHandler) TweetCredibility(c *gin.Context) {
	var req TweetCredibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    errors.ErrCodeValidation,
			"message": "Invalid request body: tweets field is required",
		})
		return
	}
	if req.ReviewFormat != "" && !config.ReviewFormatValid(req.ReviewFormat) {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": errors.ErrCodeValidation,
			"message": fmt.Sprintf("reviewFormat should be either %s, but was %s",
				strings.Join(config.ReviewFormats, " or "), req.ReviewFormat),
		})
		return
	}

	// submitted tweets usually omit the JSON-LD envelope
	docs := make([]item.M, 0, len(req.Tweets))
	for _, tw := range req.Tweets {
		doc := item.Clone(tw)
		if _, ok := doc["@context"]; !ok {
			doc["@context"] = consts.SchemaContext
		}
		if _, ok := doc["@type"]; !ok {
			doc["@type"] = "Tweet"
		}
		docs = append(docs, doc)
	}

	// evidence is trimmed at depth 1 unless the caller asks otherwise
	depth := 1
	if req.BasedOnDepth != nil {
		depth = *req.BasedOnDepth
	}
	opts := pipeline.Options{ReviewFormat: req.ReviewFormat}
	logger.Info("Reviewing tweet credibility", zap.Int("tweets", len(docs)))

	reviews, err := h.pipeline.ReviewDocs(c.Request.Context(), docs, opts)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.emit(reviews)

	preds := pipeline.BackwardCompatible(reviews)
	// depth 0 removes the evidence property entirely
	if req.ReviewFormat == config.ReviewFormatSchemaOrg && depth >= 0 {
		trimmed := make([]item.M, 0, len(preds))
		for _, pred := range preds {
			tr, err := item.TrimTree(pred, "isBasedOn", depth)
			if err != nil {
				_ = c.Error(err)
				return
			}
			trimmed = append(trimmed, tr.(item.M))
		}
		preds = trimmed
	}
	c.JSON(http.StatusOK, preds)
}

// reviewOptions reads the review option query parameters, rejecting
// invalid enum values with a message listing the allowed ones.
func (h *ReviewHandler) reviewOptions(c *gin.Context) (pipeline.Options, bool) {
	opts := pipeline.Options{}

	if v := c.Query("reviewFormat"); v != "" {
		if !config.ReviewFormatValid(v) {
			c.JSON(http.StatusBadRequest, gin.H{
				"code": errors.ErrCodeValidation,
				"message": fmt.Sprintf("reviewFormat should be either %s, but was %s",
					strings.Join(config.ReviewFormats, " or "), v),
			})
			return opts, false
		}
		opts.ReviewFormat = v
	}

	effective := opts.ReviewFormat
	if effective == "" {
		effective = h.cfg.ReviewFormat
	}
	gFormat, ok := h.graphFormat(c, effective)
	if !ok {
		return opts, false
	}
	opts.GraphFormat = gFormat

	if v := c.Query("reviewCheckWorthiness"); v != "" {
		b, err := strconv.ParseBool(strings.ToLower(v))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    errors.ErrCodeValidation,
				"message": fmt.Sprintf("reviewCheckWorthiness should be a boolean, but was %s", v),
			})
			return opts, false
		}
		opts.CheckWorthiness = &b
	}
	return opts, true
}

// graphFormat reads the graphFormat query parameter. The layout only
// applies to schema.org review graphs, so it is validated only then.
func (h *ReviewHandler) graphFormat(c *gin.Context, reviewFormat string) (string, bool) {
	v := c.Query("graphFormat")
	if v == "" {
		return "", true
	}
	if reviewFormat == config.ReviewFormatSchemaOrg && !config.GraphFormatValid(v) {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": errors.ErrCodeValidation,
			"message": fmt.Sprintf("graphFormat should be one of %s, but was %s",
				strings.Join(config.GraphFormats, ", "), v),
		})
		return "", false
	}
	return v, true
}

// emit hands finished review graphs to the indexer emitter, detached from
// the request so a slow indexer cannot delay the response.
func (h *ReviewHandler) emit(reviews []item.M) {
	if h.emitter == nil || !h.emitter.Enabled() {
		return
	}
	go h.emitter.Emit(context.Background(), reviews)
}
