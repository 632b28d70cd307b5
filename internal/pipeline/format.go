package pipeline

import (
	"go.uber.org/zap"

	"github.com/veridex/veridex/internal/config"
	"github.com/veridex/veridex/internal/item"
	"github.com/veridex/veridex/pkg/logger"
)

// FormatGraph renders finished review trees in the requested graph layout.
// Legacy cred_assessment output is returned as-is; an unknown graph format
// is logged and falls back to the nested tree.
func (p *Pipeline) FormatGraph(reviews []item.M, opts Options) ([]item.M, error) {
	if len(reviews) == 0 {
		return reviews, nil
	}
	if p.reviewFormat(opts) == config.ReviewFormatCredAssessment {
		return reviews, nil
	}

	gFormat := p.graphFormat(opts)
	if !config.GraphFormatValid(gFormat) {
		logger.Error("Unexpected graph format, falling back to nested tree",
			zap.String("graph_format", gFormat))
		gFormat = config.GraphFormatNestedTree
	}

	out := make([]item.M, 0, len(reviews))
	for _, rev := range reviews {
		formatted, err := p.formatReview(rev, gFormat, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, formatted)
	}
	return out, nil
}

func (p *Pipeline) formatReview(rev item.M, gFormat string, opts Options) (item.M, error) {
	switch gFormat {
	case config.GraphFormatNestedTree:
		// depth 0 strips the evidence property entirely; only a
		// negative depth leaves the tree untrimmed
		depth := p.basedOnDepth(opts)
		if depth < 0 {
			return rev, nil
		}
		trimmed, err := item.TrimTree(rev, "isBasedOn", depth)
		if err != nil {
			return nil, err
		}
		return trimmed.(item.M), nil
	case config.GraphFormatNodesWithRefs:
		return item.NormaliseNestedItem(rev, item.Options{})
	default: // nodesAndLinks
		return item.NestedItemAsGraph(rev, item.Options{
			CompositeRels: []string{"reviewRating"},
			EnsureURLs:    true,
		})
	}
}

// BackwardCompatible back-fills the flat prediction fields consumed by the
// legacy rule engine: tweet_id, credibility, confidence and explanation,
// read from the schema.org review when absent. The markdown explanation is
// exposed under ratingExplanation with its format declared.
func BackwardCompatible(reviews []item.M) []item.M {
	out := make([]item.M, 0, len(reviews))
	for _, rev := range reviews {
		out = append(out, backwardCompatible(rev))
	}
	return out
}

func backwardCompatible(rev item.M) item.M {
	pred := item.Clone(rev)
	if _, ok := pred["tweet_id"]; !ok {
		pred["tweet_id"] = item.GetIn(pred, []string{"itemReviewed", "tweet_id"}, nil)
	}
	if _, ok := pred["credibility"]; !ok {
		pred["credibility"] = item.GetIn(pred, []string{"reviewRating", "ratingValue"}, nil)
	}
	if _, ok := pred["confidence"]; !ok {
		pred["confidence"] = item.FloatIn(pred, []string{"reviewRating", "confidence"}, 0.0)
	}
	if _, ok := pred["explanation"]; !ok {
		pred["explanation"] = item.GetIn(pred, []string{"reviewRating", "ratingExplanation"}, nil)
	}
	if _, ok := pred["ratingExplanation"]; !ok {
		pred["ratingExplanation"] = item.Str(pred, "text",
			item.StrIn(pred, []string{"reviewRating", "ratingExplanation"}, ""))
	}
	if _, ok := pred["ratingExplanationFormat"]; !ok {
		pred["ratingExplanationFormat"] = "markdown"
	}
	return pred
}
