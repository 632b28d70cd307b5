package client

import (
	"context"

	"github.com/veridex/veridex/internal/config"
	"github.com/veridex/veridex/internal/item"
)

// WorthinessClient talks to the check-worthiness prediction service, which
// labels sentences as factual statements worth fact-checking or not.
type WorthinessClient struct {
	*Client
}

// NewWorthiness creates a client for the check-worthiness service.
func NewWorthiness(cfg config.EndpointConfig) *WorthinessClient {
	return &WorthinessClient{Client: New("worthiness", cfg)}
}

// WorthinessPrediction is the label assigned to a single sentence. Label
// "CFS" marks a check-worthy factual sentence.
type WorthinessPrediction struct {
	Sentence   string
	Label      string
	Confidence float64
}

// Predictor fetches the service's self-description, used as the author of
// check-worthiness reviews.
func (c *WorthinessClient) Predictor(ctx context.Context) (item.M, error) {
	var bot item.M
	if err := c.GetJSON(ctx, c.BaseURL()+"/worthiness_predictor", &bot); err != nil {
		return nil, err
	}
	return bot, nil
}

// PredictWorthiness labels each sentence in a single batched request. The
// returned predictions follow the service's response order, which echoes
// the input order.
func (c *WorthinessClient) PredictWorthiness(ctx context.Context, sentences []string) ([]WorthinessPrediction, error) {
	if len(sentences) == 0 {
		return nil, nil
	}

	var resp struct {
		Checked struct {
			Labels      []string  `json:"predicted_labels"`
			Confidences []float64 `json:"prediction_confidences"`
			SentenceIDs []int     `json:"sentence_ids"`
			Sentences   []string  `json:"sentences"`
		} `json:"worthiness_checked_sentences"`
	}
	err := c.PostJSON(ctx, c.BaseURL()+"/predict_worthiness",
		item.M{"sentences": sentences}, &resp)
	if err != nil {
		return nil, err
	}

	checked := resp.Checked
	n := len(checked.Sentences)
	if len(checked.Labels) < n {
		n = len(checked.Labels)
	}
	if len(checked.Confidences) < n {
		n = len(checked.Confidences)
	}
	preds := make([]WorthinessPrediction, 0, n)
	for i := 0; i < n; i++ {
		preds = append(preds, WorthinessPrediction{
			Sentence:   checked.Sentences[i],
			Label:      checked.Labels[i],
			Confidence: checked.Confidences[i],
		})
	}
	return preds, nil
}
