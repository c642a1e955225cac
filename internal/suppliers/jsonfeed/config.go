package jsonfeed

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nandeep-biztech/pim-etl/internal/core/domain"
)

// PluginName is the value of options.plugin that selects this plugin.
const PluginName = "jsonfeed"

// DefaultPageSize is the number of lines returned per stream page.
const DefaultPageSize = 500

// FileExt is the extension of feed files.
const FileExt = ".jsonl"

// Config is the parsed plugin configuration.
type Config struct {
	SupplierID   string
	SupplierName string
	Dir          string
	PageSize     int
	Currency     domain.Currency
}

// ParseConfig builds a Config from a supplier descriptor.
//
// Options:
//   - dir (required): the feed directory
//   - page_size: lines per page, default 500
//   - currency: currency of payload prices, default GBP
func ParseConfig(desc domain.SupplierDescriptor) (*Config, error) {
	cfg := &Config{
		SupplierID:   desc.ID,
		SupplierName: desc.DisplayName(),
		Dir:          strings.TrimSpace(desc.Option("dir", "")),
		PageSize:     DefaultPageSize,
		Currency:     domain.Currency(strings.ToUpper(desc.Option("currency", string(domain.CurrencyGBP)))),
	}

	if cfg.Dir == "" {
		return nil, fmt.Errorf("%w: supplier %s: options.dir is required", domain.ErrConfig, desc.ID)
	}

	if v := desc.Option("page_size", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%w: supplier %s: page_size must be a positive integer", domain.ErrConfig, desc.ID)
		}
		cfg.PageSize = n
	}

	return cfg, nil
}
