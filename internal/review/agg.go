package review

import (
	"sort"

	"go.uber.org/zap"

	"github.com/veridex/veridex/internal/item"
	"github.com/veridex/veridex/pkg/logger"
)

// MostConfidentRating returns the rating with the highest confidence, or
// nil for an empty list. Ratings without a confidence sort last; ties keep
// the earlier rating.
func MostConfidentRating(ratings []item.M) item.M {
	if len(ratings) == 0 {
		return nil
	}
	sorted := make([]item.M, len(ratings))
	copy(sorted, ratings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return item.Float(sorted[i], "confidence", -1.0) > item.Float(sorted[j], "confidence", -1.0)
	})
	return sorted[0]
}

// MostConfidentReview returns the review whose rating has the highest
// confidence, or nil for an empty list. Ties keep the earlier review.
func MostConfidentReview(reviews []item.M) item.M {
	if len(reviews) == 0 {
		return nil
	}
	for _, rev := range reviews {
		if !item.IsReview(rev) {
			logger.Warn("selecting most confident among non-review items",
				zap.String("type", item.Type(rev)))
		}
	}
	sorted := make([]item.M, len(reviews))
	copy(sorted, reviews)
	sort.SliceStable(sorted, func(i, j int) bool {
		return item.FloatIn(sorted[i], []string{"reviewRating", "confidence"}, -1.0) >
			item.FloatIn(sorted[j], []string{"reviewRating", "confidence"}, -1.0)
	})
	return sorted[0]
}

// FilterByMinConfidence returns a predicate accepting reviews whose rating
// confidence reaches the threshold.
func FilterByMinConfidence(threshold float64) func(item.M) bool {
	return func(rev item.M) bool {
		return ConfidenceOf(rev) >= threshold
	}
}

// PartitionByMinConfidence splits reviews into those at or above the
// confidence threshold and those below it, preserving order.
func PartitionByMinConfidence(reviews []item.M, threshold float64) (confident, ignored []item.M) {
	accept := FilterByMinConfidence(threshold)
	for _, rev := range reviews {
		if accept(rev) {
			confident = append(confident, rev)
		} else {
			ignored = append(ignored, rev)
		}
	}
	return confident, ignored
}

// SortByRatingValue returns the reviews ordered by ascending rating value,
// least credible first. The sort is stable and does not modify the input.
func SortByRatingValue(reviews []item.M) []item.M {
	sorted := make([]item.M, len(reviews))
	copy(sorted, reviews)
	sort.SliceStable(sorted, func(i, j int) bool {
		return ValueOf(sorted[i]) < ValueOf(sorted[j])
	})
	return sorted
}

// LeastCredibleAboveThreshold returns the review with the lowest rating
// value among those meeting the confidence threshold, or nil when none do.
func LeastCredibleAboveThreshold(reviews []item.M, threshold float64) item.M {
	confident, _ := PartitionByMinConfidence(reviews, threshold)
	if len(confident) == 0 {
		return nil
	}
	return SortByRatingValue(confident)[0]
}

// TotalReviewCount sums the reviewCount over a list of ratings.
func TotalReviewCount(ratings []item.M) int {
	total := 0
	for _, r := range ratings {
		if !item.IsRating(r) {
			logger.Warn("counting reviews over a non-rating item", zap.String("type", item.Type(r)))
		}
		total += int(item.Float(r, "reviewCount", 0))
	}
	return total
}

// TotalRatingCount sums the ratingCount over a list of ratings, counting
// each rating itself on top of its sub-ratings.
func TotalRatingCount(ratings []item.M) int {
	total := 0
	for _, r := range ratings {
		if !item.IsRating(r) {
			logger.Warn("counting ratings over a non-rating item", zap.String("type", item.Type(r)))
		}
		total += int(item.Float(r, "ratingCount", 0)) + 1
	}
	return total
}
