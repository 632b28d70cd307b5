package polarsim

import (
	"fmt"

	"github.com/veridex/veridex/consts"
	"github.com/veridex/veridex/internal/item"
	"github.com/veridex/veridex/internal/review"
)

// SimilarityReview converts one related sentence from a claim search
// result into a SentSimilarityReview of the query/database sentence pair.
// The rating carries no confidence: the semantic encoder always produces
// a similarity value, it is the stance prediction that is uncertain.
func SimilarityReview(simSent, simResult item.M) (item.M, error) {
	qSent := item.Str(simResult, "q_claim", "")
	dbSent := item.Str(simSent, "sentence", "")
	simVal := item.Float(simSent, "similarity", 0.0)

	rev := item.M{
		"@context":     consts.CoinformContext,
		"@type":        "SentSimilarityReview",
		"itemReviewed": item.AsSentencePair(dbSent, qSent, nil),
		"headline":     review.ClaimRelStr(simVal, ""),
		"reviewRating": item.M{
			"@type":        "Rating",
			"reviewAspect": AspectSimilarity,
			"ratingValue":  simVal,
		},
		"dateCreated": item.Str(simResult, "dateCreated", review.NowUTC()),
	}
	if a := item.Map(simResult, "simReviewer"); a != nil {
		rev["author"] = a
	}
	return item.WithIdentifier(rev)
}

// StanceReview converts the predicted stance in a related sentence into a
// SentStanceReview, or nil when the claim search result carries no stance
// prediction.
func StanceReview(simSent, simResult item.M) (item.M, error) {
	stance, ok := simSent["sent_stance"].(string)
	if !ok {
		return nil, nil
	}
	qSent := item.Str(simResult, "q_claim", "")
	dbSent := item.Str(simSent, "sentence", "")
	// pair roles are named literally, not expanded
	explanation := fmt.Sprintf("Sentence `dbSent` **%s** `qSent`.", stance)

	rev := item.M{
		"@context":       consts.CoinformContext,
		"@type":          "SentStanceReview",
		"additionalType": review.AdditionalTypes("SentStanceReview"),
		"reviewAspect":   AspectStance,
		"itemReviewed":   item.AsSentencePair(dbSent, qSent, nil),
		"reviewRating": item.M{
			"@type":             "Rating",
			"reviewAspect":      AspectStance,
			"ratingValue":       stance,
			"confidence":        item.Float(simSent, "sent_stance_confidence", 0.5),
			"ratingExplanation": explanation,
		},
		"dateCreated": item.Str(simResult, "dateCreated", review.NowUTC()),
	}
	if a := item.Map(simResult, "stanceReviewer"); a != nil {
		rev["author"] = a
	}
	return item.WithIdentifier(rev)
}
