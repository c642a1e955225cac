package domain

import "time"

// RecordKind tags which supplier feed a raw record came from.
// Any kind other than KindBase is a side channel merged into the base record.
type RecordKind string

// Known record kinds. Plugins may define their own side kinds.
const (
	KindBase        RecordKind = "base"
	KindPrice       RecordKind = "price"
	KindPrintOption RecordKind = "print-option"
	KindPrintPrice  RecordKind = "print-price"
	KindStock       RecordKind = "stock"
	KindMedia       RecordKind = "media"
)

// IsBase reports whether k is the primary product feed.
func (k RecordKind) IsBase() bool {
	return k == KindBase
}

// RawRecord is one untyped payload produced by an extractor.
type RawRecord struct {
	// SupplierID identifies the supplier that produced the record.
	SupplierID string

	// Kind is the feed this record came from.
	Kind RecordKind

	// Endpoint is the supplier feed name, for diagnostics.
	Endpoint string

	// CorrelationKey groups records describing the same product.
	CorrelationKey string

	// Payload is the decoded supplier data.
	Payload map[string]any

	// ModifiedAt is when the supplier last changed the record.
	// Zero when the feed does not expose modification times.
	ModifiedAt time.Time

	// Err is set when the extractor read the record but could not decode it.
	// Such records are counted as extracted and failed individually.
	Err error
}

// CorrelatedRecord is the merged view of every raw record sharing a key.
// It always has exactly one base payload.
type CorrelatedRecord struct {
	SupplierID     string
	CorrelationKey string

	// Base is the payload of the base record.
	Base map[string]any

	// Side holds one payload per side kind. Later records replace earlier ones.
	Side map[RecordKind]map[string]any

	// Sources is the number of raw records merged into this one.
	Sources int
}

// SidePayload returns the side payload of the given kind.
func (c CorrelatedRecord) SidePayload(kind RecordKind) (map[string]any, bool) {
	p, ok := c.Side[kind]
	return p, ok
}
