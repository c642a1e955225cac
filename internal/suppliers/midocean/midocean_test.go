package midocean

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nandeep-biztech/pim-etl/internal/core/domain"
	"github.com/nandeep-biztech/pim-etl/internal/core/ports/driven"
)

const testProductsJSON = `[
  {
    "master_code": "MO8422",
    "product_name": "ARCTIC ZONE MUG",
    "short_description": "Mug",
    "long_description": "Double wall mug",
    "printable": "yes",
    "product_class": "Drinkware",
    "material": "Stainless steel",
    "brand": "midocean",
    "length": "8,5",
    "width": "8,5",
    "height": "12",
    "length_unit": "cm",
    "gross_weight": "0,35",
    "gross_weight_unit": "kg",
    "outer_carton_quantity": "1.000",
    "country_of_origin": "CN",
    "commodity_code": "7323930000",
    "variants": [
      {
        "variant_id": "10001",
        "sku": "MO8422-03",
        "color_code": "03",
        "color_description": "Black",
        "pms_color": "BLACK",
        "gtin": "8719941000001",
        "category_level1": "Drinkware",
        "category_level2": "Mugs",
        "discontinued_date": "2099-12-31",
        "digital_assets": [
          {"url": "https://cdn.example/mo8422-03.jpg", "type": "image", "subtype": "item_picture_front"},
          {"url": "https://cdn.example/mo8422.pdf", "type": "document", "subtype": "declaration"}
        ]
      },
      {
        "variant_id": "10002",
        "sku": "MO8422-06",
        "color_code": "06",
        "color_description": "White",
        "plc_status_description": "DISCONTINUED",
        "digital_assets": []
      }
    ]
  },
  {
    "master_code": "KC2364",
    "product_name": "PEN",
    "printable": "no",
    "variants": [{"sku": "KC2364-04", "color_code": "04", "color_description": "Blue"}]
  }
]`

const testPriceListJSON = `{
  "currency": "GBP",
  "date": "2024-05-01",
  "price": [
    {"sku": "MO8422-03", "variant_id": "10001", "price": "12,50", "valid_until": "2024-12-31"},
    {"sku": "MO8422-06", "price": "12,00"},
    {"sku": "KC2364-04", "price": "0,99"},
    {"sku": "ZZ0000-01", "price": "1,00"}
  ]
}`

const testPrintDataJSON = `{
  "products": [
    {
      "master_code": "MO8422",
      "printing_positions": [
        {
          "position_id": "FRONT",
          "max_print_size_width": 60,
          "max_print_size_height": "40,5",
          "printing_techniques": [{"id": "S2", "max_colours": "4"}, {"id": "L1"}],
          "images": [{"print_position_image_with_area": "https://cdn.example/front.jpg"}]
        }
      ]
    },
    {
      "master_code": "KC2364",
      "printing_positions": [{"position_id": "BARREL", "printing_techniques": [{"id": "XX"}]}]
    }
  ]
}`

const testPrintPriceListJSON = `{
  "currency": "GBP",
  "pricelist_valid_from": "2024-01-01",
  "print_techniques": [
    {
      "id": "S2",
      "description": "Screen print",
      "setup": "30,00",
      "var_costs": [{"scales": [{"minimum_quantity": "1", "price": "0,50"}, {"minimum_quantity": "1.000", "price": "0,30"}]}]
    },
    {"id": "L1", "setup": "25,00", "var_costs": [{"scales": [{"minimum_quantity": "50", "price": "0,80"}]}]},
    {"id": "E", "setup": "40,00"}
  ]
}`

// fakeGateway serves the four endpoints and counts requests per path.
type fakeGateway struct {
	mu       sync.Mutex
	requests map[string]int
	// failures makes the next n requests to a path return the status.
	failures map[string][]int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		requests: make(map[string]int),
		failures: make(map[string][]int),
	}
}

func (g *fakeGateway) failNext(path string, statuses ...int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failures[path] = append(g.failures[path], statuses...)
}

func (g *fakeGateway) count(path string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.requests[path]
}

func (g *fakeGateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	g.requests[r.URL.Path]++
	var status int
	if queue := g.failures[r.URL.Path]; len(queue) > 0 {
		status = queue[0]
		g.failures[r.URL.Path] = queue[1:]
	}
	g.mu.Unlock()

	if r.Header.Get("Authorization") != "Bearer secret" {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
		return
	}
	if status != 0 {
		http.Error(w, "gateway says no", status)
		return
	}

	bodies := map[string]string{
		"/products/2.0":       testProductsJSON,
		"/pricelist/2.0":      testPriceListJSON,
		"/printdata/1.0":      testPrintDataJSON,
		"/printpricelist/2.0": testPrintPriceListJSON,
	}
	body, ok := bodies[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, body)
}

func testDescriptor(baseURL string) domain.SupplierDescriptor {
	return domain.SupplierDescriptor{
		ID:       SupplierID,
		Name:     "MidOcean",
		Language: "en",
		API: domain.APIConfig{
			BaseURL:           baseURL,
			APIKey:            "secret",
			RequestsPerSecond: 1000,
			Timeout:           domain.Duration(5 * time.Second),
		},
	}
}

func newTestExtractor(t *testing.T, gw *fakeGateway, pageSize string) *Extractor {
	t.Helper()
	srv := httptest.NewServer(gw)
	t.Cleanup(srv.Close)

	desc := testDescriptor(srv.URL)
	if pageSize != "" {
		desc.Options = map[string]string{"page_size": pageSize}
	}
	cfg, err := ParseConfig(desc)
	require.NoError(t, err)

	ext := New(cfg)
	t.Cleanup(func() { _ = ext.Close() })
	return ext
}

func drain(t *testing.T, s driven.RecordStream) ([]domain.RawRecord, int) {
	t.Helper()
	var all []domain.RawRecord
	pages := 0
	for {
		page, err := s.Next(context.Background())
		if errors.Is(err, io.EOF) {
			return all, pages
		}
		require.NoError(t, err)
		pages++
		all = append(all, page...)
	}
}

func byKind(records []domain.RawRecord) map[domain.RecordKind][]domain.RawRecord {
	out := make(map[domain.RecordKind][]domain.RawRecord)
	for _, r := range records {
		out[r.Kind] = append(out[r.Kind], r)
	}
	return out
}

// correlate merges records by key the way the pipeline does.
func correlate(records []domain.RawRecord) map[string]domain.CorrelatedRecord {
	out := make(map[string]domain.CorrelatedRecord)
	for _, r := range records {
		c := out[r.CorrelationKey]
		c.SupplierID = r.SupplierID
		c.CorrelationKey = r.CorrelationKey
		if c.Side == nil {
			c.Side = make(map[domain.RecordKind]map[string]any)
		}
		if r.Kind.IsBase() {
			c.Base = r.Payload
		} else {
			c.Side[r.Kind] = r.Payload
		}
		out[r.CorrelationKey] = c
	}
	return out
}

// ==================== Config Tests ====================

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := ParseConfig(domain.SupplierDescriptor{
		ID:  SupplierID,
		API: domain.APIConfig{APIKey: "secret"},
	})
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultLanguage, cfg.Language)
	assert.Equal(t, DefaultRequestsPerSecond, cfg.RequestsPerSecond)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultPageSize, cfg.PageSize)
	assert.Equal(t, DefaultBaseURL+"/products/2.0", cfg.EndpointURL(EndpointProducts))
}

func TestParseConfig_Overrides(t *testing.T) {
	desc := testDescriptor("https://gateway.example/")
	desc.API.Endpoints = map[string]string{EndpointPriceList: "/pricelist/3.0/"}
	desc.Options = map[string]string{"page_size": "50", "cache_ttl": "5m"}

	cfg, err := ParseConfig(desc)
	require.NoError(t, err)

	assert.Equal(t, "https://gateway.example/pricelist/3.0", cfg.EndpointURL(EndpointPriceList))
	assert.Equal(t, 50, cfg.PageSize)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
}

func TestParseConfig_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *domain.SupplierDescriptor)
	}{
		{"missing api key", func(d *domain.SupplierDescriptor) { d.API.APIKey = " " }},
		{"bad base url", func(d *domain.SupplierDescriptor) { d.API.BaseURL = "not a url" }},
		{"unknown endpoint", func(d *domain.SupplierDescriptor) { d.API.Endpoints = map[string]string{"stock": "stock/1.0"} }},
		{"bad page size", func(d *domain.SupplierDescriptor) { d.Options = map[string]string{"page_size": "0"} }},
		{"bad cache ttl", func(d *domain.SupplierDescriptor) { d.Options = map[string]string{"cache_ttl": "soon"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc := testDescriptor("https://gateway.example")
			tt.mutate(&desc)
			_, err := ParseConfig(desc)
			assert.ErrorIs(t, err, domain.ErrConfig)
		})
	}
}

// ==================== Extractor Tests ====================

func TestExtractor_Capabilities(t *testing.T) {
	ext := newTestExtractor(t, newFakeGateway(), "")

	caps := ext.Capabilities()
	assert.False(t, caps.SupportsIncremental)
	assert.True(t, caps.SupportsValidation)
	assert.Len(t, caps.Feeds, 4)
	assert.Equal(t, SupplierID, ext.SupplierID())
}

func TestExtractor_Extract_AllFeeds(t *testing.T) {
	gw := newFakeGateway()
	ext := newTestExtractor(t, gw, "")

	stream, err := ext.Extract(context.Background(), driven.ExtractOptions{})
	require.NoError(t, err)
	records, pages := drain(t, stream)

	assert.Equal(t, 4, pages)
	kinds := byKind(records)
	require.Len(t, kinds[domain.KindBase], 2)
	assert.Equal(t, "MO8422", kinds[domain.KindBase][0].CorrelationKey)
	assert.Equal(t, EndpointProducts, kinds[domain.KindBase][0].Endpoint)

	// Two variant prices grouped under MO8422, plus KC2364 and one unknown SKU
	prices := kinds[domain.KindPrice]
	require.Len(t, prices, 3)
	assert.Equal(t, "MO8422", prices[0].CorrelationKey)
	assert.Len(t, prices[0].Payload["prices"], 2)
	assert.Equal(t, "ZZ0000-01", prices[2].CorrelationKey)

	assert.Len(t, kinds[domain.KindPrintOption], 2)

	// KC2364 only uses a technique without a price table
	printPrices := kinds[domain.KindPrintPrice]
	require.Len(t, printPrices, 1)
	assert.Equal(t, "MO8422", printPrices[0].CorrelationKey)
	assert.Len(t, printPrices[0].Payload["print_techniques"], 2)

	for _, r := range records {
		assert.Equal(t, SupplierID, r.SupplierID)
	}

	// products and printdata are each downloaded once
	assert.Equal(t, 1, gw.count("/products/2.0"))
	assert.Equal(t, 1, gw.count("/printdata/1.0"))
}

func TestExtractor_Extract_Paged(t *testing.T) {
	ext := newTestExtractor(t, newFakeGateway(), "2")

	stream, err := ext.Extract(context.Background(), driven.ExtractOptions{})
	require.NoError(t, err)
	records, pages := drain(t, stream)

	// products 2, prices 2+1, print options 2, print prices 1
	assert.Equal(t, 5, pages)
	assert.Len(t, records, 8)
}

func TestExtractor_Extract_IncrementalUnsupported(t *testing.T) {
	gw := newFakeGateway()
	ext := newTestExtractor(t, gw, "")
	since := time.Now()

	_, err := ext.Extract(context.Background(), driven.ExtractOptions{Since: &since})

	assert.ErrorIs(t, err, domain.ErrUnsupportedOperation)
	assert.Equal(t, 0, gw.count("/products/2.0"))
}

func TestExtractor_ValidateReusesProducts(t *testing.T) {
	gw := newFakeGateway()
	ext := newTestExtractor(t, gw, "")

	require.NoError(t, ext.Validate(context.Background()))
	stream, err := ext.Extract(context.Background(), driven.ExtractOptions{})
	require.NoError(t, err)
	drain(t, stream)

	assert.Equal(t, 1, gw.count("/products/2.0"))
}

func TestExtractor_FailedPageIsRetried(t *testing.T) {
	gw := newFakeGateway()
	gw.failNext("/pricelist/2.0", http.StatusServiceUnavailable)
	ext := newTestExtractor(t, gw, "")
	ctx := context.Background()

	stream, err := ext.Extract(ctx, driven.ExtractOptions{})
	require.NoError(t, err)

	page, err := stream.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.KindBase, page[0].Kind)

	_, err = stream.Next(ctx)
	require.Error(t, err)
	var te *domain.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusServiceUnavailable, te.StatusCode)

	// The same feed is requested again
	page, err = stream.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.KindPrice, page[0].Kind)
	assert.Equal(t, 2, gw.count("/pricelist/2.0"))
}

func TestExtractor_ErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		transport bool
		auth      bool
	}{
		{"unauthorized", http.StatusUnauthorized, false, true},
		{"forbidden", http.StatusForbidden, false, true},
		{"rate limited", http.StatusTooManyRequests, true, false},
		{"server error", http.StatusBadGateway, true, false},
		{"not found", http.StatusNotFound, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := newFakeGateway()
			gw.failNext("/products/2.0", tt.status)
			ext := newTestExtractor(t, gw, "")

			err := ext.Validate(context.Background())

			require.Error(t, err)
			assert.Equal(t, tt.transport, errors.Is(err, domain.ErrTransport))
			assert.Equal(t, tt.auth, errors.Is(err, domain.ErrAuth))
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.auth, IsUnauthorized(err))
		})
	}
}

func TestExtractor_WrongKeyIsAuthError(t *testing.T) {
	srv := httptest.NewServer(newFakeGateway())
	defer srv.Close()

	desc := testDescriptor(srv.URL)
	desc.API.APIKey = "wrong"
	ext, err := NewExtractor(desc)
	require.NoError(t, err)
	defer ext.Close()

	assert.ErrorIs(t, ext.Validate(context.Background()), domain.ErrAuth)
}

func TestExtractor_UnreachableIsTransport(t *testing.T) {
	srv := httptest.NewServer(newFakeGateway())
	url := srv.URL
	srv.Close()

	ext, err := NewExtractor(testDescriptor(url))
	require.NoError(t, err)
	defer ext.Close()

	assert.ErrorIs(t, ext.Validate(context.Background()), domain.ErrTransport)
}

func TestExtractor_MalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"not": "a list"}`)
	}))
	defer srv.Close()

	ext, err := NewExtractor(testDescriptor(srv.URL))
	require.NoError(t, err)
	defer ext.Close()

	err = ext.Validate(context.Background())
	assert.ErrorIs(t, err, ErrUnexpectedPayload)
	assert.NotErrorIs(t, err, domain.ErrTransport)
}

// ==================== Transformer Tests ====================

func newTestTransformer(t *testing.T) *Transformer {
	t.Helper()
	tr, err := NewTransformer(testDescriptor("https://gateway.example"))
	require.NoError(t, err)
	transformer := tr.(*Transformer)
	transformer.now = func() time.Time { return time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC) }
	return transformer
}

func extractAll(t *testing.T) map[string]domain.CorrelatedRecord {
	t.Helper()
	ext := newTestExtractor(t, newFakeGateway(), "")
	stream, err := ext.Extract(context.Background(), driven.ExtractOptions{})
	require.NoError(t, err)
	records, _ := drain(t, stream)
	return correlate(records)
}

func TestTransformer_FullProduct(t *testing.T) {
	tr := newTestTransformer(t)
	rec := extractAll(t)["MO8422"]

	p, err := tr.Transform(context.Background(), rec)
	require.NoError(t, err)

	assert.Equal(t, "midocean_MO8422", p.ExternalID)
	assert.Equal(t, "MO8422", p.SupplierProductCode)
	assert.Equal(t, SupplierID, p.Supplier.ID)
	assert.Equal(t, "MidOcean", p.Supplier.Name)
	assert.Equal(t, "ARCTIC ZONE MUG", p.Name)
	assert.Equal(t, "Arctic Zone Mug", p.Title)
	assert.True(t, p.IsPrintable)
	assert.Equal(t, domain.ProductActive, p.Status)
	assert.Equal(t, "7323930000", p.TariffCode)
	assert.Equal(t, time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC), p.LastSync)

	require.NotNil(t, p.CartonQuantity)
	assert.Equal(t, 1000, *p.CartonQuantity)

	require.NotNil(t, p.Dimensions)
	assert.Equal(t, 8.5, *p.Dimensions.Length)
	assert.Equal(t, domain.UnitCM, p.Dimensions.Unit)
	require.NotNil(t, p.Weight)
	assert.Equal(t, domain.Weight{Value: 0.35, Unit: domain.UnitKG}, *p.Weight)

	require.Len(t, p.Categories, 3)
	assert.Equal(t, domain.Category{Name: "Mugs", Level: 2}, p.Categories[2])

	assert.Equal(t, []string{"Black", "White"}, p.ColorsAvailable)
	assert.Equal(t, []string{"MO8422-03", "MO8422-06"}, p.SKUs())
}

func TestTransformer_VariantsAndPrices(t *testing.T) {
	tr := newTestTransformer(t)
	p, err := tr.Transform(context.Background(), extractAll(t)["MO8422"])
	require.NoError(t, err)

	require.Len(t, p.Variants, 2)
	black := p.Variants[0]
	require.Len(t, black.Prices, 1)
	assert.Equal(t, 12.5, black.Prices[0].Value)
	assert.Equal(t, domain.CurrencyGBP, black.Prices[0].Currency)
	require.NotNil(t, black.Prices[0].ValidUntil)
	assert.Equal(t, "2024-12-31", black.Prices[0].ValidUntil.Format(time.DateOnly))
	assert.Equal(t, domain.ProductActive, black.Status)

	// Only image assets are kept
	require.Len(t, black.Images, 1)
	assert.Equal(t, "Item Picture Front", black.Images[0].Description)
	assert.Equal(t, "03", black.Images[0].ColorVariant)

	assert.Equal(t, domain.ProductDiscontinued, p.Variants[1].Status)

	require.Len(t, p.BasePrices, 1)
	assert.Equal(t, 12.5, p.BasePrices[0].Value)
	assert.Equal(t, black.Images, p.Images)
}

func TestTransformer_PrintData(t *testing.T) {
	tr := newTestTransformer(t)
	p, err := tr.Transform(context.Background(), extractAll(t)["MO8422"])
	require.NoError(t, err)

	require.Len(t, p.PrintPositions, 1)
	front := p.PrintPositions[0]
	assert.Equal(t, "FRONT", front.ID)
	assert.Equal(t, 60.0, *front.MaxWidth)
	assert.Equal(t, 40.5, *front.MaxHeight)
	assert.Equal(t, []domain.PrintTechnique{domain.TechniqueScreenPrint, domain.TechniqueLaserEngraving}, front.Techniques)
	require.Len(t, front.Images, 1)

	// Techniques arrive sorted by MidOcean ID: L1, S2
	require.Len(t, p.PrintOptions, 2)
	laser, screen := p.PrintOptions[0], p.PrintOptions[1]
	assert.Equal(t, domain.TechniqueLaserEngraving, laser.Technique)
	assert.Equal(t, 25.0, *laser.SetupCharge)
	assert.Equal(t, domain.TechniqueScreenPrint, screen.Technique)
	assert.Equal(t, 4, screen.MaxColors)
	require.Len(t, screen.Prices, 2)
	assert.Equal(t, 1000, screen.Prices[1].MinQuantity)
	assert.Equal(t, 0.3, screen.Prices[1].Value)
}

func TestTransformer_MinimalProduct(t *testing.T) {
	tr := newTestTransformer(t)
	rec := domain.CorrelatedRecord{
		SupplierID:     SupplierID,
		CorrelationKey: "AR1804",
		Base:           map[string]any{"master_code": "AR1804", "product_name": "Lanyard"},
	}

	p, err := tr.Transform(context.Background(), rec)
	require.NoError(t, err)

	assert.Empty(t, p.Variants)
	assert.Empty(t, p.BasePrices)
	assert.Empty(t, p.PrintOptions)
	assert.Nil(t, p.Dimensions)
	assert.Nil(t, p.Weight)
	assert.False(t, p.IsPrintable)
}

func TestTransformer_AllVariantsDiscontinued(t *testing.T) {
	tr := newTestTransformer(t)
	var base map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{
		"master_code": "OLD1", "product_name": "Old",
		"variants": [{"sku": "OLD1-01", "discontinued_date": "2023-01-01"}]
	}`), &base))

	p, err := tr.Transform(context.Background(), domain.CorrelatedRecord{SupplierID: SupplierID, Base: base})
	require.NoError(t, err)
	assert.Equal(t, domain.ProductDiscontinued, p.Status)
}

func TestTransformer_ExternalIDPerSupplier(t *testing.T) {
	rec := domain.CorrelatedRecord{
		CorrelationKey: "MO1",
		Base:           map[string]any{"master_code": "MO1", "product_name": "Mug"},
	}

	ids := make([]string, 0, 2)
	for _, id := range []string{"midocean-uk", "midocean-de"} {
		desc := testDescriptor("https://gateway.example")
		desc.ID = id
		tr, err := NewTransformer(desc)
		require.NoError(t, err)

		rec.SupplierID = id
		p, err := tr.Transform(context.Background(), rec)
		require.NoError(t, err)
		ids = append(ids, p.ExternalID)
	}

	assert.Equal(t, []string{"midocean-uk_MO1", "midocean-de_MO1"}, ids)
}

func TestTransformer_Invalid(t *testing.T) {
	tr := newTestTransformer(t)

	_, err := tr.Transform(context.Background(), domain.CorrelatedRecord{
		SupplierID: SupplierID,
		Base:       map[string]any{"product_name": "No code"},
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = tr.Transform(context.Background(), domain.CorrelatedRecord{
		SupplierID: SupplierID,
		Base:       map[string]any{"master_code": "X1"},
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestNewTransformer_InvalidLanguage(t *testing.T) {
	desc := testDescriptor("https://gateway.example")
	desc.Language = "not-a-language-tag!"

	_, err := NewTransformer(desc)
	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestMapTechnique(t *testing.T) {
	tests := []struct {
		id   string
		want domain.PrintTechnique
		ok   bool
	}{
		{"B", domain.TechniqueDebossing, true},
		{"E", domain.TechniqueEmbroidery, true},
		{"L3", domain.TechniqueLaserEngraving, true},
		{"P0", domain.TechniquePadPrint, true},
		{"PD7", domain.TechniqueDigitalPrint, true},
		{"S2", domain.TechniqueScreenPrint, true},
		{"ST1", domain.TechniqueScreenPrint, true},
		{"RS5", domain.TechniqueScreenPrint, true},
		{"RD3", domain.TechniqueDigitalPrint, true},
		{"TSM", domain.TechniqueSublimation, true},
		{"tt", domain.TechniqueTransfer, true},
		{"RD4", "", false},
		{"L8", "", false},
		{"XX", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, ok := MapTechnique(tt.id)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseHelpers(t *testing.T) {
	assert.Equal(t, 12.5, *parseFloat("12,50"))
	assert.Equal(t, 3.0, *parseFloat(3.0))
	assert.Nil(t, parseFloat("n/a"))
	assert.Nil(t, parseFloat(nil))

	assert.Equal(t, 1000, *parseInt("1.000"))
	assert.Equal(t, 25, *parseInt(25.0))
	assert.Nil(t, parseInt(""))

	assert.Equal(t, "7323930000", str(map[string]any{"code": 7323930000.0}, "code"))
	assert.Nil(t, parseDate("31/12/2024"))
}
