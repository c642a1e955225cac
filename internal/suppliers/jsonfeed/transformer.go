package jsonfeed

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nandeep-biztech/pim-etl/internal/core/domain"
	"github.com/nandeep-biztech/pim-etl/internal/core/ports/driven"
)

// Ensure Transformer implements the interface.
var _ driven.Transformer = (*Transformer)(nil)

// Transformer maps feed payloads, which already use unified field names.
type Transformer struct {
	cfg *Config
	now func() time.Time
}

// NewTransformer adapts ParseConfig to driven.TransformerFactory.
func NewTransformer(desc domain.SupplierDescriptor) (driven.Transformer, error) {
	cfg, err := ParseConfig(desc)
	if err != nil {
		return nil, err
	}
	return &Transformer{cfg: cfg, now: time.Now}, nil
}

// SupplierID returns the supplier this transformer understands.
func (t *Transformer) SupplierID() string {
	return t.cfg.SupplierID
}

// Transform maps one correlated record.
//
// Base fields: name (required), title, short_description, long_description,
// brand, material, product_code, category (string or list, root first),
// keywords, colors, images, minimum_order_quantity, country_of_origin,
// status. Side feeds: price {price, currency, tiers[{min_quantity, price}]},
// stock {available}, media {images}.
func (t *Transformer) Transform(_ context.Context, rec domain.CorrelatedRecord) (domain.UnifiedProduct, error) {
	base := rec.Base
	if base == nil {
		return domain.UnifiedProduct{}, fmt.Errorf("%w: record %s has no base payload", domain.ErrValidation, rec.CorrelationKey)
	}

	code := stringField(base, "product_code")
	if code == "" {
		code = rec.CorrelationKey
	}

	p := domain.UnifiedProduct{
		ExternalID: rec.SupplierID + "_" + rec.CorrelationKey,
		Supplier: domain.SupplierRef{
			ID:   rec.SupplierID,
			Name: t.cfg.SupplierName,
		},
		SupplierProductCode: code,

		Name:             stringField(base, "name"),
		Title:            stringField(base, "title"),
		ShortDescription: stringField(base, "short_description"),
		LongDescription:  stringField(base, "long_description"),
		Keywords:         stringsField(base, "keywords"),
		Categories:       categoryPath(base["category"]),
		Brand:            stringField(base, "brand"),

		Material:        stringField(base, "material"),
		ColorsAvailable: stringsField(base, "colors"),
		Variants:        []domain.Variant{},
		BasePrices:      t.prices(rec.Side[domain.KindPrice]),

		PrintPositions: []domain.PrintPosition{},
		PrintOptions:   []domain.PrintOption{},

		Images:           images(base, rec.Side[domain.KindMedia]),
		ArtworkTemplates: []string{},

		MinimumOrderQuantity: 1,
		ShippingOptions:      []domain.ShippingOption{},
		CountryOfOrigin:      stringField(base, "country_of_origin"),

		Status:   status(base, rec.Side[domain.KindStock]),
		LastSync: t.now().UTC(),
	}
	if moq, ok := intField(base, "minimum_order_quantity"); ok && moq > 0 {
		p.MinimumOrderQuantity = moq
	}

	if err := p.Validate(); err != nil {
		return domain.UnifiedProduct{}, err
	}
	return p, nil
}

// prices reads a price side payload: a unit price plus optional tiers.
func (t *Transformer) prices(payload map[string]any) []domain.Price {
	prices := []domain.Price{}
	if payload == nil {
		return prices
	}

	currency := t.cfg.Currency
	if c := stringField(payload, "currency"); c != "" {
		currency = domain.Currency(strings.ToUpper(c))
	}

	if value, ok := floatField(payload, "price"); ok {
		prices = append(prices, domain.Price{Value: value, Currency: currency, MinQuantity: 1, Type: domain.PriceUnit})
	}
	tiers, _ := payload["tiers"].([]any)
	for _, raw := range tiers {
		tier, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		value, okValue := floatField(tier, "price")
		qty, okQty := intField(tier, "min_quantity")
		if !okValue || !okQty || qty <= 0 {
			continue
		}
		prices = append(prices, domain.Price{Value: value, Currency: currency, MinQuantity: qty, Type: domain.PriceUnit})
	}
	return prices
}

func categoryPath(v any) []domain.Category {
	var names []string
	switch x := v.(type) {
	case string:
		if s := strings.TrimSpace(x); s != "" {
			names = []string{s}
		}
	case []any:
		for _, item := range x {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				names = append(names, strings.TrimSpace(s))
			}
		}
	}

	cats := make([]domain.Category, 0, len(names))
	for i, name := range names {
		c := domain.Category{Name: name, Level: i + 1}
		if i > 0 {
			c.ParentID = names[i-1]
		}
		cats = append(cats, c)
	}
	return cats
}

// images merges base and media side image URLs, dropping duplicates.
func images(base, media map[string]any) []domain.Image {
	out := []domain.Image{}
	seen := make(map[string]bool)
	for _, payload := range []map[string]any{base, media} {
		for _, url := range stringsField(payload, "images") {
			if seen[url] {
				continue
			}
			seen[url] = true
			out = append(out, domain.Image{URL: url})
		}
	}
	return out
}

// status uses the base status when set, otherwise out_of_stock when a stock
// payload reports nothing available.
func status(base, stock map[string]any) domain.ProductStatus {
	switch domain.ProductStatus(strings.ToLower(stringField(base, "status"))) {
	case domain.ProductDiscontinued:
		return domain.ProductDiscontinued
	case domain.ProductOutOfStock:
		return domain.ProductOutOfStock
	}
	if available, ok := intField(stock, "available"); ok && available <= 0 {
		return domain.ProductOutOfStock
	}
	return domain.ProductActive
}

// ==================== Field helpers ====================

func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func stringsField(m map[string]any, key string) []string {
	out := []string{}
	raw, _ := m[key].([]any)
	for _, item := range raw {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

func floatField(m map[string]any, key string) (float64, bool) {
	switch v := m[key].(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func intField(m map[string]any, key string) (int, bool) {
	f, ok := floatField(m, key)
	if !ok {
		return 0, false
	}
	return int(f), true
}
