// Package client provides the HTTP client for the upstream product catalog.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"pricing_gateway/internal/catalog/transport"
	"pricing_gateway/platform/apperr"
	"pricing_gateway/platform/config"
	"pricing_gateway/platform/logger"
)

// excludes trims heavy sub-resources from the product detail payload.
const excludes = "taxonomy,price,promotion,bulk_ship,rating_and_review_reviews,rating_and_review_statistics,question_answer_statistics"

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 4 << 20
	opFetch        = "catalog.FetchProduct"
)

// Client is the HTTP client for the catalog API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	log        *logger.Logger
}

// New creates a catalog client for the configured base URL.
func New(cfg config.CatalogConfig, log *logger.Logger) *Client {
	timeout := cfg.GetCatalogTimeout()
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.GetProductsBaseURL(), "/"),
		log:        log,
	}
}

// FetchProduct loads the display name of a product. A 404 from the catalog
// yields an apperr.KindNotFound error; every other failure, including a body
// without a title, yields apperr.KindUpstream.
func (c *Client) FetchProduct(ctx context.Context, id int64) (transport.ProductDetail, error) {
	reqURL := c.productURL(id)
	log := c.log.WithContext(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return transport.ProductDetail{}, apperr.Upstream("create request", err).WithOp(opFetch)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.UpstreamError(reqURL, 0, err)
		return transport.ProductDetail{}, apperr.Upstream("catalog request failed", err).WithOp(opFetch)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		log.Debug("catalog product not found", "product_id", id)
		return transport.ProductDetail{}, apperr.NotFound("product not found").WithOp(opFetch)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		err := fmt.Errorf("unexpected status %d", resp.StatusCode)
		log.UpstreamError(reqURL, resp.StatusCode, err)
		return transport.ProductDetail{}, apperr.Upstream("catalog upstream error", err).WithOp(opFetch)
	}

	var body apiProductResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil {
		log.UpstreamError(reqURL, resp.StatusCode, err)
		return transport.ProductDetail{}, apperr.Upstream("decode catalog response", err).WithOp(opFetch)
	}

	title, err := body.title()
	if err != nil {
		log.UpstreamError(reqURL, resp.StatusCode, err)
		return transport.ProductDetail{}, apperr.Upstream("malformed catalog response", err).WithOp(opFetch)
	}

	return transport.ProductDetail{ID: id, Name: title}, nil
}

func (c *Client) productURL(id int64) string {
	params := url.Values{}
	params.Set("excludes", excludes)
	return fmt.Sprintf("%s/pdp/tcin/%s?%s", c.baseURL, strconv.FormatInt(id, 10), params.Encode())
}

// apiProductResponse is the raw product detail document; only the title is read.
type apiProductResponse struct {
	Product *struct {
		Item *struct {
			ProductDescription *struct {
				Title *string `json:"title"`
			} `json:"product_description"`
		} `json:"item"`
	} `json:"product"`
}

func (a *apiProductResponse) title() (string, error) {
	if a.Product == nil || a.Product.Item == nil || a.Product.Item.ProductDescription == nil {
		return "", errors.New("missing product.item.product_description")
	}
	t := a.Product.Item.ProductDescription.Title
	if t == nil || *t == "" {
		return "", errors.New("missing product title")
	}
	return *t, nil
}
