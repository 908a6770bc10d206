// Package metadata talks to the off-chain metadata store holding the asset
// descriptor documents. The store is searchable; resolution by DID is the
// authoritative read path after the on-chain registry lookup.
package metadata

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aquaprotocol/aqua-go/pkg/ddo"
	"github.com/aquaprotocol/aqua-go/pkg/errors"
	"github.com/aquaprotocol/aqua-go/pkg/ids"
	"github.com/aquaprotocol/aqua-go/pkg/logging"
	"github.com/aquaprotocol/aqua-go/pkg/webclient"
)

const ddoPath = "/api/v1/metadata/assets/ddo"

// Client is a connector to one metadata store instance.
type Client struct {
	base string
	web  *webclient.Client
	log  *logging.ColoredLogger
}

// NewClient creates a metadata store connector for the given base URI.
func NewClient(uri string, timeout time.Duration, log *logging.ColoredLogger) *Client {
	if log == nil {
		log = logging.Nop()
	}
	return &Client{
		base: strings.TrimRight(uri, "/"),
		web:  webclient.New(timeout, log),
		log:  log,
	}
}

// URL returns the service endpoint documents of this store reference.
func (c *Client) URL() string {
	return c.base + ddoPath
}

// StoreDDO publishes a new descriptor document.
func (c *Client) StoreDDO(ctx context.Context, document *ddo.DDO) (*ddo.DDO, error) {
	if document.ID == "" {
		return nil, errors.NewValidationError("id", "document has no identifier", nil)
	}
	var stored ddo.DDO
	if err := c.web.PostJSON(ctx, c.base+ddoPath, document, &stored); err != nil {
		return nil, err
	}
	c.log.ComponentInfo(logging.ComponentMetadata, "descriptor stored", zap.String("did", stored.ID))
	return &stored, nil
}

// GetDDO retrieves the descriptor document for one DID.
func (c *Client) GetDDO(ctx context.Context, did ids.DID) (*ddo.DDO, error) {
	var document ddo.DDO
	err := c.web.GetJSON(ctx, fmt.Sprintf("%s%s/%s", c.base, ddoPath, did.String()), &document)
	if err != nil {
		return nil, err
	}
	return &document, nil
}

// UpdateDDO replaces the stored descriptor document.
func (c *Client) UpdateDDO(ctx context.Context, document *ddo.DDO) (*ddo.DDO, error) {
	if document.ID == "" {
		return nil, errors.NewValidationError("id", "document has no identifier", nil)
	}
	var stored ddo.DDO
	err := c.web.PutJSON(ctx, fmt.Sprintf("%s%s/%s", c.base, ddoPath, document.ID), document, &stored)
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// DeleteDDO removes the descriptor document for one DID.
func (c *Client) DeleteDDO(ctx context.Context, did ids.DID) error {
	return c.web.Delete(ctx, fmt.Sprintf("%s%s/%s", c.base, ddoPath, did.String()))
}

// SearchQuery is a structured store query.
type SearchQuery struct {
	Text   string                 `json:"text,omitempty"`
	Query  map[string]interface{} `json:"query,omitempty"`
	Sort   map[string]int         `json:"sort,omitempty"`
	Offset int                    `json:"offset"`
	Page   int                    `json:"page"`
}

// SearchResult is one page of matching descriptor documents.
type SearchResult struct {
	Results      []ddo.DDO `json:"results"`
	Page         int       `json:"page"`
	TotalPages   int       `json:"total_pages"`
	TotalResults int       `json:"total_results"`
}

func normalize(query *SearchQuery) {
	if query.Offset <= 0 {
		query.Offset = 100
	}
	if query.Page <= 0 {
		query.Page = 1
	}
}

// SearchText runs a free-text search over the store.
func (c *Client) SearchText(ctx context.Context, text string, offset, page int) (*SearchResult, error) {
	query := SearchQuery{Text: text, Offset: offset, Page: page}
	normalize(&query)

	params := url.Values{}
	params.Set("text", query.Text)
	params.Set("offset", fmt.Sprint(query.Offset))
	params.Set("page", fmt.Sprint(query.Page))

	var result SearchResult
	err := c.web.GetJSON(ctx, fmt.Sprintf("%s%s/query?%s", c.base, ddoPath, params.Encode()), &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Search runs a structured query over the store.
func (c *Client) Search(ctx context.Context, query SearchQuery) (*SearchResult, error) {
	normalize(&query)
	var result SearchResult
	err := c.web.PostJSON(ctx, c.base+ddoPath+"/query", &query, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
