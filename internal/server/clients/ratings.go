package clients

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/geotrade/marketplace/internal/msg"
)

// RatingsClient proxies the ratings microservice. Upstream failures are
// translated into this gateway's envelope codes so callers never see raw
// upstream errors.
type RatingsClient interface {
	AssetRatings(ctx context.Context, assetID string) ([]Rating, error)
	ProviderRatings(ctx context.Context, providerKey string) ([]Rating, error)
	RateAsset(ctx context.Context, assetID, accountKey string, value float32, comment string) error
	RateProvider(ctx context.Context, providerKey, accountKey string, value float32, comment string) error
}

type Rating struct {
	AccountKey string    `json:"accountKey"`
	Value      float32   `json:"value"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

type ratingsClient struct {
	httpClient
}

func NewRatingsClient(baseURL string, timeout time.Duration) RatingsClient {
	return &ratingsClient{newHTTPClient("ratings", baseURL, timeout)}
}

// translate maps any upstream failure to the gateway's error taxonomy.
func translateRatingsError(err error) error {
	if err == nil {
		return nil
	}

	var re *remoteError
	if errors.As(err, &re) && re.StatusCode == 404 {
		return msg.New(msg.CodeRatingsService, "Rating subject was not found")
	}
	return msg.New(msg.CodeRatingsService, "Ratings service is unavailable")
}

func (c *ratingsClient) AssetRatings(ctx context.Context, assetID string) ([]Rating, error) {
	var ratings []Rating
	if err := c.getJSON(ctx, "/ratings/assets/"+url.PathEscape(assetID), &ratings); err != nil {
		return nil, translateRatingsError(err)
	}
	return ratings, nil
}

func (c *ratingsClient) ProviderRatings(ctx context.Context, providerKey string) ([]Rating, error) {
	var ratings []Rating
	if err := c.getJSON(ctx, "/ratings/providers/"+url.PathEscape(providerKey), &ratings); err != nil {
		return nil, translateRatingsError(err)
	}
	return ratings, nil
}

type rateRequest struct {
	AccountKey string  `json:"accountKey"`
	Value      float32 `json:"value"`
	Comment    string  `json:"comment,omitempty"`
}

func (c *ratingsClient) RateAsset(ctx context.Context, assetID, accountKey string, value float32, comment string) error {
	req := rateRequest{AccountKey: accountKey, Value: value, Comment: comment}
	if err := c.postJSON(ctx, "/ratings/assets/"+url.PathEscape(assetID), &req, nil); err != nil {
		return translateRatingsError(err)
	}
	return nil
}

func (c *ratingsClient) RateProvider(ctx context.Context, providerKey, accountKey string, value float32, comment string) error {
	req := rateRequest{AccountKey: accountKey, Value: value, Comment: comment}
	if err := c.postJSON(ctx, "/ratings/providers/"+url.PathEscape(providerKey), &req, nil); err != nil {
		return translateRatingsError(err)
	}
	return nil
}
