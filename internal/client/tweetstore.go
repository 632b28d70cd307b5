package client

import (
	"context"
	"fmt"

	"github.com/veridex/veridex/internal/config"
	"github.com/veridex/veridex/internal/item"
	pkgerrors "github.com/veridex/veridex/pkg/errors"
)

// TweetStoreClient talks to the tweet store, which serves the content of
// previously collected tweets by id.
type TweetStoreClient struct {
	*Client
}

// NewTweetStore creates a client for the tweet store service.
func NewTweetStore(cfg config.EndpointConfig) *TweetStoreClient {
	return &TweetStoreClient{Client: New("tweet_store", cfg)}
}

// Tweet returns the stored tweet with the given id, or nil when the store
// has no copy of it. Transport failures are returned as errors; any
// unsuccessful response status counts as a miss.
func (c *TweetStoreClient) Tweet(ctx context.Context, tweetID int64) (item.M, error) {
	var resp item.M
	err := c.GetJSON(ctx, fmt.Sprintf("%s/tweet/%d", c.BaseURL(), tweetID), &resp)
	if err != nil {
		if IsStatusError(err) {
			return nil, nil
		}
		return nil, err
	}
	return resp, nil
}

// PutTweet uploads collected tweets to the store. Each tweet must carry a
// tweet_id.
func (c *TweetStoreClient) PutTweet(ctx context.Context, tweets []item.M) error {
	for _, t := range tweets {
		if _, ok := t["tweet_id"]; !ok {
			return pkgerrors.New(pkgerrors.ErrCodeValidation,
				"tweets must provide a tweet_id field")
		}
	}
	return c.PutJSON(ctx, c.BaseURL()+"/tweet", tweets, nil)
}
