package review

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/veridex/veridex/internal/item"
	"github.com/veridex/veridex/pkg/logger"
)

// LabelNotVerifiable is the label for ratings below the confidence gate.
const LabelNotVerifiable = "not verifiable"

// RatingLabel summarises a credibility rating as a short label. A rating
// carrying a confidence below the threshold is not verifiable; otherwise
// the label depends on the rating value alone.
func RatingLabel(rating item.M, confThreshold float64) string {
	if _, ok := rating["confidence"]; ok {
		if item.Float(rating, "confidence", 0.0) < confThreshold {
			return LabelNotVerifiable
		}
	}
	return credibilityBand(item.Float(rating, "ratingValue", 0.0))
}

func credibilityBand(val float64) string {
	switch {
	case val >= 0.5:
		return "credible"
	case val >= 0.25:
		return "mostly credible"
	case val >= -0.25:
		return "uncertain"
	case val >= -0.5:
		return "mostly not credible"
	default:
		return "not credible"
	}
}

// DescribeCredVal phrases a credibility value in the legacy credibility
// dict wording. The credibility dict's source selects the phrasing; without
// one the bare band label is returned.
func DescribeCredVal(val float64, credDict item.M) string {
	switch source := item.Str(credDict, "source", ""); source {
	case "domain":
		return fmt.Sprintf("was published in a site (%s) that is %s",
			item.Str(credDict, "domainReviewed", "??"), DescribeReliability(val))
	case "claimReview":
		return fmt.Sprintf("was fact-checked and found to be %s", DescribeAccuracy(val))
	case "":
		return credibilityBand(val)
	default:
		logger.Warn("unsupported credibility source", zap.String("source", source))
		return credibilityBand(val)
	}
}

// DescribeReliability phrases a credibility value as a site reliability.
func DescribeReliability(credVal float64) string {
	switch {
	case credVal >= 0.5:
		return "reliable"
	case credVal >= 0.1:
		return "mostly reliable"
	case credVal >= -0.1:
		return "mixed reliability"
	case credVal >= -0.5:
		return "mostly unreliable"
	default:
		return "unreliable"
	}
}

// DescribeAccuracy phrases a credibility value as a fact-check accuracy.
func DescribeAccuracy(credVal float64) string {
	switch {
	case credVal >= 0.5:
		return "accurate"
	case credVal >= 0.1:
		return "accurate with considerations"
	case credVal >= -0.1:
		return "unsubstantiated"
	case credVal >= -0.5:
		return "inaccurate with considerations"
	default:
		return "inaccurate"
	}
}

// SimilarityLabel phrases a sentence similarity value.
func SimilarityLabel(simVal float64) string {
	switch {
	case simVal >= 0.9:
		return "very similar"
	case simVal >= 0.75:
		return "similar"
	case simVal >= 0.6:
		return "vaguely related"
	default:
		return "not so similar"
	}
}

// ClaimRelStr phrases the relation between a query sentence and a database
// sentence, preferring the predicted stance over plain similarity. An empty
// stance falls back to the similarity phrasing.
func ClaimRelStr(simVal float64, sentStance string) string {
	switch sentStance {
	case "":
		return fmt.Sprintf("is %s to", SimilarityLabel(simVal))
	case "agree":
		return "agrees with"
	case "disagree":
		return "disagrees with"
	case "unrelated":
		return "is similar(?) but unrelated to"
	default: // discuss
		return fmt.Sprintf("is %s to and discussed by", SimilarityLabel(simVal))
	}
}
