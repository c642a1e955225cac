package midocean

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/nandeep-biztech/pim-etl/internal/core/domain"
	"github.com/nandeep-biztech/pim-etl/internal/core/ports/driven"
	"github.com/nandeep-biztech/pim-etl/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor reads the four MidOcean feeds.
type Extractor struct {
	cfg    *Config
	client *Client
}

// NewExtractor adapts New to driven.ExtractorFactory.
func NewExtractor(desc domain.SupplierDescriptor) (driven.Extractor, error) {
	cfg, err := ParseConfig(desc)
	if err != nil {
		return nil, err
	}
	return New(cfg), nil
}

// New creates an extractor from a parsed config.
func New(cfg *Config) *Extractor {
	return &Extractor{
		cfg:    cfg,
		client: NewClient(cfg),
	}
}

// SupplierID returns the configured supplier ID.
func (e *Extractor) SupplierID() string {
	return e.cfg.SupplierID
}

// Capabilities returns the extractor capabilities.
func (e *Extractor) Capabilities() driven.ExtractorCapabilities {
	return driven.ExtractorCapabilities{
		SupportsIncremental: false,
		SupportsValidation:  true,
		Feeds: []domain.RecordKind{
			domain.KindBase,
			domain.KindPrice,
			domain.KindPrintOption,
			domain.KindPrintPrice,
		},
	}
}

// Validate fetches the product catalogue. The response is cached, so an
// Extract on the same extractor does not download it again.
func (e *Extractor) Validate(ctx context.Context) error {
	products, err := e.client.Products(ctx)
	if err != nil {
		return err
	}
	logger.Debug("midocean: validated %s, %d products available", e.cfg.SupplierID, len(products))
	return nil
}

// Extract opens a stream over all four feeds. Incremental extraction is
// not supported.
func (e *Extractor) Extract(_ context.Context, opts driven.ExtractOptions) (driven.RecordStream, error) {
	if opts.Incremental() {
		return nil, fmt.Errorf("%w: %s does not expose modification times", domain.ErrUnsupportedOperation, e.cfg.SupplierID)
	}
	return newStream(e.cfg, e.client), nil
}

// Close drops cached responses.
func (e *Extractor) Close() error {
	e.client.Flush()
	return nil
}

// ==================== Stream ====================

// phase is one feed of the stream, in emission order.
type phase int

const (
	phaseProducts phase = iota
	phasePrices
	phasePrintOptions
	phasePrintPrices
	phaseDone
)

// stream emits every record of one feed before moving to the next. Each
// feed is fetched when the previous one has been drained; a failed fetch
// leaves the phase unchanged so the next call retries it.
type stream struct {
	cfg     *Config
	client  *Client
	phase   phase
	pending []domain.RawRecord
}

func newStream(cfg *Config, client *Client) *stream {
	return &stream{cfg: cfg, client: client}
}

// Next returns the next page of records, or io.EOF when all feeds are drained.
func (s *stream) Next(ctx context.Context) ([]domain.RawRecord, error) {
	for len(s.pending) == 0 {
		if s.phase == phaseDone {
			return nil, io.EOF
		}
		records, err := s.fetch(ctx, s.phase)
		if err != nil {
			return nil, err
		}
		s.pending = records
		s.phase++
	}

	n := min(s.cfg.PageSize, len(s.pending))
	page := s.pending[:n:n]
	s.pending = s.pending[n:]
	return page, nil
}

func (s *stream) fetch(ctx context.Context, p phase) ([]domain.RawRecord, error) {
	switch p {
	case phaseProducts:
		products, err := s.client.Products(ctx)
		if err != nil {
			return nil, err
		}
		return baseRecords(s.cfg.SupplierID, products), nil

	case phasePrices:
		products, err := s.client.Products(ctx)
		if err != nil {
			return nil, err
		}
		prices, err := s.client.PriceList(ctx)
		if err != nil {
			return nil, err
		}
		return priceRecords(s.cfg.SupplierID, skuIndex(products), prices), nil

	case phasePrintOptions:
		data, err := s.client.PrintData(ctx)
		if err != nil {
			return nil, err
		}
		return printOptionRecords(s.cfg.SupplierID, data), nil

	case phasePrintPrices:
		data, err := s.client.PrintData(ctx)
		if err != nil {
			return nil, err
		}
		prices, err := s.client.PrintPriceList(ctx)
		if err != nil {
			return nil, err
		}
		return printPriceRecords(s.cfg.SupplierID, data, prices), nil
	}
	return nil, nil
}

// ==================== Record builders ====================

func baseRecords(supplierID string, products []map[string]any) []domain.RawRecord {
	records := make([]domain.RawRecord, 0, len(products))
	for _, p := range products {
		records = append(records, domain.RawRecord{
			SupplierID:     supplierID,
			Kind:           domain.KindBase,
			Endpoint:       EndpointProducts,
			CorrelationKey: str(p, "master_code"),
			Payload:        p,
		})
	}
	return records
}

// skuIndex maps every variant SKU to its master code.
func skuIndex(products []map[string]any) map[string]string {
	index := make(map[string]string)
	for _, p := range products {
		master := str(p, "master_code")
		for _, v := range list(p, "variants") {
			if sku := str(v, "sku"); sku != "" {
				index[sku] = master
			}
		}
	}
	return index
}

// priceRecords groups variant prices by master code. A price whose SKU is
// not in the catalogue is keyed by the SKU, so it surfaces as an orphan.
func priceRecords(supplierID string, skus map[string]string, prices *PriceList) []domain.RawRecord {
	grouped := make(map[string][]any)
	var order []string
	for _, item := range prices.Price {
		key, ok := skus[str(item, "sku")]
		if !ok {
			key = str(item, "sku")
		}
		if _, seen := grouped[key]; !seen {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], item)
	}

	records := make([]domain.RawRecord, 0, len(order))
	for _, key := range order {
		records = append(records, domain.RawRecord{
			SupplierID:     supplierID,
			Kind:           domain.KindPrice,
			Endpoint:       EndpointPriceList,
			CorrelationKey: key,
			Payload: map[string]any{
				"currency": prices.Currency,
				"date":     prices.Date,
				"prices":   grouped[key],
			},
		})
	}
	return records
}

func printOptionRecords(supplierID string, data *PrintData) []domain.RawRecord {
	records := make([]domain.RawRecord, 0, len(data.Products))
	for _, p := range data.Products {
		records = append(records, domain.RawRecord{
			SupplierID:     supplierID,
			Kind:           domain.KindPrintOption,
			Endpoint:       EndpointPrintData,
			CorrelationKey: str(p, "master_code"),
			Payload:        p,
		})
	}
	return records
}

// printPriceRecords emits, per master product, the cost tables of the
// techniques that product can be printed with.
func printPriceRecords(supplierID string, data *PrintData, prices *PrintPriceList) []domain.RawRecord {
	byID := make(map[string]map[string]any, len(prices.PrintTechniques))
	for _, t := range prices.PrintTechniques {
		byID[str(t, "id")] = t
	}

	records := make([]domain.RawRecord, 0, len(data.Products))
	for _, p := range data.Products {
		ids := techniqueIDs(p)
		techniques := make([]any, 0, len(ids))
		for _, id := range ids {
			if t, ok := byID[id]; ok {
				techniques = append(techniques, t)
			}
		}
		if len(techniques) == 0 {
			continue
		}
		records = append(records, domain.RawRecord{
			SupplierID:     supplierID,
			Kind:           domain.KindPrintPrice,
			Endpoint:       EndpointPrintPriceList,
			CorrelationKey: str(p, "master_code"),
			Payload: map[string]any{
				"currency":         prices.Currency,
				"valid_from":       prices.PriceListValidFrom,
				"print_techniques": techniques,
			},
		})
	}
	return records
}

// techniqueIDs returns the distinct technique IDs used across a product's
// printing positions, sorted.
func techniqueIDs(printProduct map[string]any) []string {
	seen := make(map[string]bool)
	for _, pos := range list(printProduct, "printing_positions") {
		for _, t := range list(pos, "printing_techniques") {
			if id := str(t, "id"); id != "" {
				seen[id] = true
			}
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
