package midocean

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/nandeep-biztech/pim-etl/internal/logger"
)

// maxErrorBody bounds how much of an error response is kept in APIError.
const maxErrorBody = 512

// PriceList is the pricelist response.
type PriceList struct {
	Currency string           `json:"currency"`
	Date     string           `json:"date"`
	Price    []map[string]any `json:"price"`
}

// PrintPriceList is the printpricelist response.
type PrintPriceList struct {
	Currency            string           `json:"currency"`
	PriceListValidFrom  string           `json:"pricelist_valid_from"`
	PriceListValidUntil string           `json:"pricelist_valid_until"`
	PrintManipulations  []map[string]any `json:"print_manipulations"`
	PrintTechniques     []map[string]any `json:"print_techniques"`
}

// PrintData is the printdata response.
type PrintData struct {
	Products []map[string]any `json:"products"`
}

// Client is a rate limited MidOcean gateway client. Reference responses
// (products and printdata) are cached so every feed derived from them
// reuses one download.
type Client struct {
	cfg     *Config
	http    *http.Client
	limiter *rate.Limiter
	cache   *cache.Cache
}

// NewClient creates a client that authenticates with the configured API key
// as a bearer token.
func NewClient(cfg *Config) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.APIKey})
	hc := oauth2.NewClient(context.Background(), ts)
	hc.Timeout = cfg.Timeout

	return &Client{
		cfg:     cfg,
		http:    hc,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		cache:   cache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
	}
}

// Products fetches the product catalogue in the configured language.
func (c *Client) Products(ctx context.Context) ([]map[string]any, error) {
	if cached, ok := c.cache.Get(EndpointProducts); ok {
		return cached.([]map[string]any), nil
	}

	var products []map[string]any
	query := url.Values{"language": {c.cfg.Language}}
	if err := c.getJSON(ctx, EndpointProducts, query, &products); err != nil {
		return nil, err
	}

	c.cache.SetDefault(EndpointProducts, products)
	return products, nil
}

// PriceList fetches the unit price per SKU.
func (c *Client) PriceList(ctx context.Context) (*PriceList, error) {
	var prices PriceList
	if err := c.getJSON(ctx, EndpointPriceList, nil, &prices); err != nil {
		return nil, err
	}
	return &prices, nil
}

// PrintData fetches printing positions per master product.
func (c *Client) PrintData(ctx context.Context) (*PrintData, error) {
	if cached, ok := c.cache.Get(EndpointPrintData); ok {
		return cached.(*PrintData), nil
	}

	var data PrintData
	query := url.Values{"language": {c.cfg.Language}}
	if err := c.getJSON(ctx, EndpointPrintData, query, &data); err != nil {
		return nil, err
	}

	c.cache.SetDefault(EndpointPrintData, &data)
	return &data, nil
}

// PrintPriceList fetches print technique costs.
func (c *Client) PrintPriceList(ctx context.Context) (*PrintPriceList, error) {
	var prices PrintPriceList
	if err := c.getJSON(ctx, EndpointPrintPriceList, nil, &prices); err != nil {
		return nil, err
	}
	return &prices, nil
}

// Flush drops cached responses.
func (c *Client) Flush() {
	c.cache.Flush()
}

// getJSON performs one rate limited GET and decodes the JSON body into out.
func (c *Client) getJSON(ctx context.Context, endpoint string, query url.Values, out any) error {
	op := "midocean " + endpoint

	if err := c.limiter.Wait(ctx); err != nil {
		return classifyRequestError(ctx, op, fmt.Errorf("rate limit wait: %w", err))
	}

	u := c.cfg.EndpointURL(endpoint)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return classifyRequestError(ctx, op, err)
	}
	defer resp.Body.Close()

	logger.Debug("midocean: GET %s -> %d in %s", endpoint, resp.StatusCode, time.Since(start).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return classifyStatus(op, &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			URL:        req.URL.Redacted(),
		})
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// A truncated body is a broken connection, not a bad payload.
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return classifyRequestError(ctx, op, err)
		}
		return fmt.Errorf("%w: %s: %w", ErrUnexpectedPayload, endpoint, err)
	}
	return nil
}
