package clients

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/geotrade/marketplace/internal/server/models"
)

// CatalogueClient talks to the catalogue service that owns published asset
// metadata.
type CatalogueClient interface {
	FindAll(ctx context.Context, query string, pageIndex, pageSize int) (*CatalogueResult, error)
	FindOne(ctx context.Context, id string) (*models.CatalogueItem, error)
	FindAllByID(ctx context.Context, ids []string) ([]models.CatalogueItem, error)
	Publish(ctx context.Context, item *models.CatalogueItem) error
	DeleteAsset(ctx context.Context, id string) error
}

// CatalogueResult is one page of a catalogue search.
type CatalogueResult struct {
	Items      []models.CatalogueItem `json:"items"`
	PageIndex  int                    `json:"pageIndex"`
	PageSize   int                    `json:"pageSize"`
	TotalCount int64                  `json:"totalCount"`
}

type catalogueClient struct {
	httpClient
}

func NewCatalogueClient(baseURL string, timeout time.Duration) CatalogueClient {
	return &catalogueClient{newHTTPClient("catalogue", baseURL, timeout)}
}

func (c *catalogueClient) FindAll(ctx context.Context, query string, pageIndex, pageSize int) (*CatalogueResult, error) {
	path := fmt.Sprintf("/catalogue?q=%s&page=%d&size=%d", url.QueryEscape(query), pageIndex, pageSize)

	var result CatalogueResult
	if err := c.getJSON(ctx, path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *catalogueClient) FindOne(ctx context.Context, id string) (*models.CatalogueItem, error) {
	var item models.CatalogueItem
	if err := c.getJSON(ctx, "/catalogue/"+url.PathEscape(id), &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *catalogueClient) FindAllByID(ctx context.Context, ids []string) ([]models.CatalogueItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	escaped := make([]string, len(ids))
	for i, id := range ids {
		escaped[i] = url.QueryEscape(id)
	}

	var items []models.CatalogueItem
	if err := c.getJSON(ctx, "/catalogue?ids="+strings.Join(escaped, ","), &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *catalogueClient) Publish(ctx context.Context, item *models.CatalogueItem) error {
	return c.postJSON(ctx, "/catalogue", item, nil)
}

func (c *catalogueClient) DeleteAsset(ctx context.Context, id string) error {
	return c.deleteJSON(ctx, "/catalogue/"+url.PathEscape(id))
}
