package midocean

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nandeep-biztech/pim-etl/internal/core/domain"
)

// SupplierID is the registry ID of the plugin.
const SupplierID = "midocean"

// Defaults for unset descriptor fields.
const (
	DefaultBaseURL           = "https://api.midocean.com/gateway"
	DefaultLanguage          = "en"
	DefaultRequestsPerSecond = 2.0
	DefaultTimeout           = 30 * time.Second
	DefaultPageSize          = 200
	DefaultCacheTTL          = 30 * time.Minute
)

// Endpoint names, used as keys of [suppliers.midocean.api.endpoints].
const (
	EndpointProducts       = "products"
	EndpointPriceList      = "pricelist"
	EndpointPrintData      = "printdata"
	EndpointPrintPriceList = "printpricelist"
)

// DefaultEndpoints maps endpoint names to paths below the base URL.
func DefaultEndpoints() map[string]string {
	return map[string]string{
		EndpointProducts:       "products/2.0",
		EndpointPriceList:      "pricelist/2.0",
		EndpointPrintData:      "printdata/1.0",
		EndpointPrintPriceList: "printpricelist/2.0",
	}
}

// Config is the parsed plugin configuration.
type Config struct {
	SupplierID        string
	SupplierName      string
	BaseURL           string
	APIKey            string
	Language          string
	Endpoints         map[string]string
	RequestsPerSecond float64
	Timeout           time.Duration

	// PageSize is the number of raw records returned per stream page.
	PageSize int

	// CacheTTL bounds how long reference responses are reused.
	CacheTTL time.Duration
}

// ParseConfig builds a Config from a supplier descriptor.
func ParseConfig(desc domain.SupplierDescriptor) (*Config, error) {
	cfg := &Config{
		SupplierID:        desc.ID,
		SupplierName:      desc.DisplayName(),
		BaseURL:           strings.TrimRight(desc.API.BaseURL, "/"),
		APIKey:            strings.TrimSpace(desc.API.APIKey),
		Language:          desc.Language,
		Endpoints:         DefaultEndpoints(),
		RequestsPerSecond: desc.API.RequestsPerSecond,
		Timeout:           desc.API.Timeout.Std(),
		PageSize:          DefaultPageSize,
		CacheTTL:          DefaultCacheTTL,
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("%w: supplier %s: invalid base_url: %w", domain.ErrConfig, desc.ID, err)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: supplier %s: api_key is required", domain.ErrConfig, desc.ID)
	}
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	for name, path := range desc.API.Endpoints {
		if _, ok := cfg.Endpoints[name]; !ok {
			return nil, fmt.Errorf("%w: supplier %s: unknown endpoint %q", domain.ErrConfig, desc.ID, name)
		}
		cfg.Endpoints[name] = strings.Trim(path, "/")
	}

	if v := desc.Option("page_size", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%w: supplier %s: page_size must be a positive integer", domain.ErrConfig, desc.ID)
		}
		cfg.PageSize = n
	}
	if v := desc.Option("cache_ttl", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("%w: supplier %s: cache_ttl must be a positive duration", domain.ErrConfig, desc.ID)
		}
		cfg.CacheTTL = d
	}

	return cfg, nil
}

// EndpointURL returns the absolute URL of a named endpoint.
func (c *Config) EndpointURL(name string) string {
	return c.BaseURL + "/" + c.Endpoints[name]
}
